//go:build darwin

package mmap

import (
	"syscall"
	"unsafe"
)

const (
	ProtRead  = syscall.PROT_READ
	MapShared = syscall.MAP_SHARED

	// from <sys/mman.h>
	MadvSequential = 2
)

func mmap(fd int, offset int64, length int, prot int, flags int) ([]byte, error) {
	return syscall.Mmap(fd, offset, length, prot, flags)
}

func munmap(b []byte) error {
	return syscall.Munmap(b)
}

// madvise calls the syscall directly; the syscall package has no wrapper on
// darwin. b must not be empty.
func madvise(b []byte, advice int) error {
	_, _, errno := syscall.Syscall(syscall.SYS_MADVISE, uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)), uintptr(advice))
	if errno != 0 {
		return errno
	}
	return nil
}
