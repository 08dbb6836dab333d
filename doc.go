// Package qflock reads columnar query results produced by the qflock
// engine.
//
// A result arrives as one buffer per column. Each column carries its declared
// (decoded) size and its wire size; when the two agree the bytes are used as
// sent, otherwise they are a zstd frame that must decompress to exactly the
// declared size. The whole result is decoded up front and then read row by
// row through a scroll-insensitive, read-only cursor.
//
// # Packages
//
//   - pkg/ingest: wire buffers to a decoded columnar.Payload, with diagnostics
//   - pkg/cursor: row navigation and big-endian typed field decode
//   - pkg/resultset: name lookup, warnings, close lifecycle, driver.Rows
//   - pkg/compression: zstd (default), lz4, s2, snappy and gzip codecs
//   - pkg/manifest and pkg/mmap: on-disk fixtures for the qflock CLI
//
// # Quick Start
//
//	rs, err := resultset.New(ctx, ingest.Input{
//	    Columns:       columns,
//	    NumRows:       numRows,
//	    DeclaredBytes: declared,
//	    WireBytes:     wire,
//	    Raw:           buffers,
//	})
//	if err != nil {
//	    return err
//	}
//	defer rs.Close()
//
//	for {
//	    ok, err := rs.Next()
//	    if err != nil || !ok {
//	        break
//	    }
//	    id, err := rs.Int64ByName("id")
//	    ...
//	}
//
// # Errors
//
// Failures are *errors.Error values whose Type tells decode failures, type
// mismatches, out-of-range access, unsupported types and use after close
// apart. See pkg/errors.
package qflock
