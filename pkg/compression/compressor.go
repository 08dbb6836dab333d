// Package compression provides the column codecs used by the qflock reader.
//
// # Overview
//
// Producers compress each column independently. The reader must rebuild a
// column into a target of exactly the declared size, so every codec offers
// DecompressInto, which never writes past the target and reports how many
// bytes the compressed input actually expands to.
//
// Supported algorithms:
//   - Zstd: the producer default (zstd frame format)
//   - LZ4: lz4 frame format
//   - S2 and Snappy: block formats
//   - Gzip: gzip member format
//   - None: identity
//
// # Basic Usage
//
//	comp, err := compression.NewCompressor(&compression.Config{
//	    Algorithm: compression.Zstd,
//	    Level:     compression.Default,
//	})
//
//	compressed, err := comp.Compress(column)
//
//	dst := make([]byte, declaredBytes)
//	n, err := comp.DecompressInto(dst, compressed)
//	if err == nil && n != declaredBytes {
//	    // size mismatch: the column is corrupt
//	}
package compression

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// LZ4 represents lz4 compression
	LZ4 Algorithm = "lz4"
	// S2 represents s2 block compression
	S2 Algorithm = "s2"
	// Snappy represents snappy block compression
	Snappy Algorithm = "snappy"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
)

// ParseAlgorithm resolves an algorithm name, case-insensitively.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case None, Zstd, LZ4, S2, Snappy, Gzip:
		return a, nil
	case "":
		return Zstd, nil
	default:
		return "", fmt.Errorf("unsupported compression algorithm: %s", name)
	}
}

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio. It only affects Compress.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

func (l Level) String() string {
	switch l {
	case Fastest:
		return "Fastest"
	case Default:
		return "Default"
	case Better:
		return "Better"
	case Best:
		return "Best"
	default:
		return "Unknown"
	}
}

// Compressor compresses and decompresses whole column buffers.
// All implementations are safe for concurrent use.
type Compressor interface {
	// Compress compresses data and returns the compressed bytes.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data of unknown size.
	Decompress(data []byte) ([]byte, error)

	// DecompressInto decompresses src into dst without writing past
	// len(dst). It returns the decompressed length of src; when src expands
	// to more than len(dst) bytes the result is len(dst)+1.
	DecompressInto(dst, src []byte) (int, error)

	// Algorithm returns the compression algorithm used.
	Algorithm() Algorithm

	// Level returns the compression level configured.
	Level() Level
}

// Config represents compressor configuration.
type Config struct {
	Algorithm Algorithm `yaml:"algorithm"`
	Level     Level     `yaml:"level"`
}

// DefaultConfig returns the configuration matching the producer: zstd at the
// default level.
func DefaultConfig() *Config {
	return &Config{
		Algorithm: Zstd,
		Level:     Default,
	}
}

// NewCompressor creates a new compressor based on the provided configuration.
// If config is nil, default configuration is used.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}

	base := baseCompressor{algorithm: config.Algorithm, level: config.Level}

	switch config.Algorithm {
	case None:
		return &noneCompressor{baseCompressor: base}, nil
	case Zstd:
		return newZstdCompressor(base), nil
	case LZ4:
		return &lz4Compressor{baseCompressor: base, compressionLevel: mapLZ4Level(config.Level)}, nil
	case S2:
		return &s2Compressor{baseCompressor: base}, nil
	case Snappy:
		return &snappyCompressor{baseCompressor: base}, nil
	case Gzip:
		return &gzipCompressor{baseCompressor: base, gzipLevel: mapGzipLevel(config.Level)}, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", config.Algorithm)
	}
}

// Base compressor implementation
type baseCompressor struct {
	algorithm Algorithm
	level     Level
}

// Algorithm returns the compression algorithm
func (bc *baseCompressor) Algorithm() Algorithm {
	return bc.algorithm
}

// Level returns the compression level
func (bc *baseCompressor) Level() Level {
	return bc.level
}

// readInto fills dst from r and then probes for one more byte, so callers
// can tell an exact fit from an overlong stream without buffering it.
func readInto(dst []byte, r io.Reader) (int, error) {
	n, err := io.ReadFull(r, dst)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		return n, nil
	default:
		return n, err
	}

	var probe [1]byte
	m, err := r.Read(probe[:])
	for m == 0 && err == nil {
		m, err = r.Read(probe[:])
	}
	if m > 0 {
		return len(dst) + 1, nil
	}
	if err != io.EOF {
		return n, err
	}
	return n, nil
}

// None compressor (no compression)
type noneCompressor struct {
	baseCompressor
}

func (nc *noneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (nc *noneCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

func (nc *noneCompressor) DecompressInto(dst, src []byte) (int, error) {
	n := copy(dst, src)
	if len(src) > len(dst) {
		return len(dst) + 1, nil
	}
	return n, nil
}

// Zstd compressor
type zstdCompressor struct {
	baseCompressor
	encoderPool sync.Pool
	decoderPool sync.Pool
}

func newZstdCompressor(base baseCompressor) *zstdCompressor {
	level := mapZstdLevel(base.level)

	zc := &zstdCompressor{baseCompressor: base}

	zc.encoderPool.New = func() interface{} {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
		return enc
	}

	zc.decoderPool.New = func() interface{} {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	}

	return zc
}

func (zc *zstdCompressor) Compress(data []byte) ([]byte, error) {
	enc := zc.encoderPool.Get().(*zstd.Encoder)
	defer zc.encoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (zc *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec := zc.decoderPool.Get().(*zstd.Decoder)
	defer zc.decoderPool.Put(dec)

	return dec.DecodeAll(data, nil)
}

func (zc *zstdCompressor) DecompressInto(dst, src []byte) (int, error) {
	dec := zc.decoderPool.Get().(*zstd.Decoder)
	defer zc.decoderPool.Put(dec)

	if err := dec.Reset(bytes.NewReader(src)); err != nil {
		return 0, err
	}
	return readInto(dst, dec)
}

// LZ4 compressor
type lz4Compressor struct {
	baseCompressor
	compressionLevel lz4.CompressionLevel
}

func (lc *lz4Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)

	if err := w.Apply(lz4.CompressionLevelOption(lc.compressionLevel)); err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lc *lz4Compressor) Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}

func (lc *lz4Compressor) DecompressInto(dst, src []byte) (int, error) {
	return readInto(dst, lz4.NewReader(bytes.NewReader(src)))
}

// S2 compressor (block format)
type s2Compressor struct {
	baseCompressor
}

func (sc *s2Compressor) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (sc *s2Compressor) Decompress(data []byte) ([]byte, error) {
	return s2.Decode(nil, data)
}

func (sc *s2Compressor) DecompressInto(dst, src []byte) (int, error) {
	n, err := s2.DecodedLen(src)
	if err != nil {
		return 0, err
	}
	if n != len(dst) {
		return min(n, len(dst)+1), nil
	}
	out, err := s2.Decode(dst, src)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// Snappy compressor (block format)
type snappyCompressor struct {
	baseCompressor
}

func (sc *snappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (sc *snappyCompressor) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

func (sc *snappyCompressor) DecompressInto(dst, src []byte) (int, error) {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return 0, err
	}
	if n != len(dst) {
		return min(n, len(dst)+1), nil
	}
	out, err := snappy.Decode(dst, src)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// Gzip compressor
type gzipCompressor struct {
	baseCompressor
	gzipLevel int
}

func (gc *gzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gc.gzipLevel)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gc *gzipCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r) //nolint:gosec // G110: callers bound sizes through DecompressInto
}

func (gc *gzipCompressor) DecompressInto(dst, src []byte) (int, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return readInto(dst, r)
}

// Helper functions to map compression levels

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
