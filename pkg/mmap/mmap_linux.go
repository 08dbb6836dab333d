//go:build linux

package mmap

import "syscall"

const (
	ProtRead       = syscall.PROT_READ
	MapShared      = syscall.MAP_SHARED
	MadvSequential = syscall.MADV_SEQUENTIAL
)

func mmap(fd int, offset int64, length int, prot int, flags int) ([]byte, error) {
	return syscall.Mmap(fd, offset, length, prot, flags)
}

func munmap(b []byte) error {
	return syscall.Munmap(b)
}

func madvise(b []byte, advice int) error {
	return syscall.Madvise(b, advice)
}
