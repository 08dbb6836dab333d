// Package mmap provides read-only memory-mapped access to column files.
//
// The mapped region is handed to ingest without copying. It stays valid
// until Close, so a Reader must outlive any result built from its bytes.
package mmap

import (
	"fmt"
	"os"
	"sync"
)

// Reader is a read-only mapping of one file.
type Reader struct {
	file     *os.File
	data     []byte
	fileSize int64
	pageSize int

	// Stats
	bytesRead int64
	pagesRead int64

	mu     sync.RWMutex
	closed bool
}

// NewReader maps filename into memory. An empty file yields a reader with no
// bytes and no mapping.
func NewReader(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	r := &Reader{
		file:     file,
		fileSize: stat.Size(),
		pageSize: os.Getpagesize(),
	}
	if r.fileSize == 0 {
		return r, nil
	}

	data, err := mmap(int(file.Fd()), 0, int(r.fileSize), ProtRead, MapShared)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to mmap file: %w", err)
	}
	// Columns are scanned front to back; the hint is best effort.
	_ = madvise(data, MadvSequential)

	r.data = data
	return r, nil
}

// Size returns the file size in bytes
func (r *Reader) Size() int64 { return r.fileSize }

// ReadAll returns the whole mapping. The slice must not be modified or used
// after Close.
func (r *Reader) ReadAll() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bytesRead += r.fileSize
	r.pagesRead += r.pages(r.fileSize)
	return r.data
}

func (r *Reader) pages(n int64) int64 {
	return (n + int64(r.pageSize) - 1) / int64(r.pageSize)
}

// Stats returns the bytes and pages handed out so far.
func (r *Reader) Stats() (bytesRead, pagesRead int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bytesRead, r.pagesRead
}

// Close unmaps the file and closes it. Closing twice is a no-op.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var firstErr error
	if r.data != nil {
		if err := munmap(r.data); err != nil {
			firstErr = fmt.Errorf("failed to munmap: %w", err)
		}
		r.data = nil
	}
	if err := r.file.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close file: %w", err)
	}
	return firstErr
}
