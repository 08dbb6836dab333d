// Package strings provides small string utilities shared by the qflock reader:
// pooled formatting, column-name folding, and explicit padding removal for
// fixed-stride text values.
package strings

import (
	"fmt"
	"strings"
	"sync"
)

// Builder is an append-only byte buffer that implements io.Writer.
type Builder struct {
	buf []byte
}

// NewBuilder creates a new builder with the given capacity
func NewBuilder(capacity int) *Builder {
	return &Builder{
		buf: make([]byte, 0, capacity),
	}
}

// Write implements io.Writer interface
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteString appends a string to the builder
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// String returns a copy of the built contents
func (b *Builder) String() string {
	return string(b.buf)
}

// Len returns the number of buffered bytes
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset resets the builder for reuse
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// BuilderSize selects which builder pool to draw from.
type BuilderSize int

const (
	// Small builders start at 1KB
	Small BuilderSize = iota
	// Medium builders start at 16KB
	Medium
)

var (
	smallBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(1024)
		},
	}

	mediumBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(16 * 1024)
		},
	}
)

// GetBuilder returns a pooled builder of the requested size class
func GetBuilder(size BuilderSize) *Builder {
	if size == Medium {
		return mediumBuilderPool.Get().(*Builder)
	}
	return smallBuilderPool.Get().(*Builder)
}

// PutBuilder resets a builder and returns it to its pool
func PutBuilder(b *Builder, size BuilderSize) {
	b.Reset()
	if size == Medium {
		mediumBuilderPool.Put(b)
		return
	}
	smallBuilderPool.Put(b)
}

// Sprintf formats into a pooled builder.
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}

	size := Small
	if len(format)+len(args)*16 > 1024 {
		size = Medium
	}

	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	fmt.Fprintf(builder, format, args...)
	return builder.String()
}

// FoldName normalizes a column label for case-insensitive lookup.
func FoldName(name string) string {
	return strings.ToLower(name)
}

// TrimPadding removes trailing blank and NUL bytes from a fixed-stride text
// value. Text getters never trim on their own; callers that want unpadded
// values call this explicitly.
func TrimPadding(s string) string {
	end := len(s)
	for end > 0 && isPad(s[end-1]) {
		end--
	}
	return s[:end]
}

func isPad(c byte) bool {
	return c == ' ' || c == 0
}
