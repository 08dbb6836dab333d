package columnar

import "time"

// Value is a decoded field. The set of implementations is closed: one per
// decodable ColumnType. Consumers switch on the concrete type.
type Value interface {
	// Type returns the column type the value was decoded from
	Type() ColumnType
	// Any returns the value as a plain Go type
	Any() interface{}

	sealed()
}

type (
	Int64Value     int64
	Int32Value     int32
	Int16Value     int16
	BoolValue      bool
	Float32Value   float32
	Float64Value   float64
	TextValue      string
	TimestampValue time.Time
)

func (Int64Value) Type() ColumnType     { return ColumnTypeInt64 }
func (Int32Value) Type() ColumnType     { return ColumnTypeInt32 }
func (Int16Value) Type() ColumnType     { return ColumnTypeInt16 }
func (BoolValue) Type() ColumnType      { return ColumnTypeBool }
func (Float32Value) Type() ColumnType   { return ColumnTypeFloat32 }
func (Float64Value) Type() ColumnType   { return ColumnTypeFloat64 }
func (TextValue) Type() ColumnType      { return ColumnTypeText }
func (TimestampValue) Type() ColumnType { return ColumnTypeTimestamp }

func (v Int64Value) Any() interface{}     { return int64(v) }
func (v Int32Value) Any() interface{}     { return int32(v) }
func (v Int16Value) Any() interface{}     { return int16(v) }
func (v BoolValue) Any() interface{}      { return bool(v) }
func (v Float32Value) Any() interface{}   { return float32(v) }
func (v Float64Value) Any() interface{}   { return float64(v) }
func (v TextValue) Any() interface{}      { return string(v) }
func (v TimestampValue) Any() interface{} { return time.Time(v) }

func (Int64Value) sealed()     {}
func (Int32Value) sealed()     {}
func (Int16Value) sealed()     {}
func (BoolValue) sealed()      {}
func (Float32Value) sealed()   {}
func (Float64Value) sealed()   {}
func (TextValue) sealed()      {}
func (TimestampValue) sealed() {}
