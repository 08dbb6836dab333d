// Package columnar defines the data model of a materialized query result.
//
// # Overview
//
// A result arrives as one byte region per column. Every region is a run of
// fixed-width slots, one per row:
//
//   - ColumnDescriptor: position, name, declared ColumnType and slot width
//   - ColumnBuffer: the slot region of one column, immutable once built
//   - Payload: the ordered buffers of a result with a shared row count
//   - Value: a decoded field, one concrete type per decodable ColumnType
//
// # Slot Widths
//
// Numeric types have natural widths (bigint, double and timestamp 8; integer
// and float 4; smallint 2; boolean 1). Text columns use a stride chosen by the
// producer. The stride is treated as opaque: text slots keep whatever padding
// the producer wrote.
//
// # Usage Example
//
//	cols := []columnar.ColumnDescriptor{
//	    {Index: 0, Name: "l_orderkey", Type: columnar.ColumnTypeInt32, Width: 4},
//	}
//	buf, err := columnar.NewColumnBuffer([]byte{0, 0, 0, 5, 0, 0, 0, 9}, 4, 2)
//	if err != nil {
//	    return err
//	}
//	payload, err := columnar.NewPayload(cols, []*columnar.ColumnBuffer{buf}, 2)
//
// Payloads are built by the ingest package and read through the cursor
// package.
package columnar
