package columnar

import (
	"fmt"
	"strings"
)

// ColumnType is the declared type of a result column.
type ColumnType int

const (
	ColumnTypeInt64 ColumnType = iota
	ColumnTypeInt32
	ColumnTypeInt16
	ColumnTypeBool
	ColumnTypeFloat32
	ColumnTypeFloat64
	ColumnTypeText
	ColumnTypeTimestamp
	// ColumnTypeArray and ColumnTypeLOB can be declared by a producer but
	// have no decode rule.
	ColumnTypeArray
	ColumnTypeLOB
)

var columnTypeNames = map[ColumnType]string{
	ColumnTypeInt64:     "bigint",
	ColumnTypeInt32:     "integer",
	ColumnTypeInt16:     "smallint",
	ColumnTypeBool:      "boolean",
	ColumnTypeFloat32:   "float",
	ColumnTypeFloat64:   "double",
	ColumnTypeText:      "varchar",
	ColumnTypeTimestamp: "timestamp",
	ColumnTypeArray:     "array",
	ColumnTypeLOB:       "lob",
}

func (t ColumnType) String() string {
	if name, ok := columnTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// ParseColumnType resolves a type name as written in manifests and metadata.
func ParseColumnType(name string) (ColumnType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for t, tn := range columnTypeNames {
		if tn == n {
			return t, nil
		}
	}
	switch n {
	case "long", "int64":
		return ColumnTypeInt64, nil
	case "int", "int32":
		return ColumnTypeInt32, nil
	case "short", "int16", "tinyint":
		return ColumnTypeInt16, nil
	case "bool":
		return ColumnTypeBool, nil
	case "real", "float32":
		return ColumnTypeFloat32, nil
	case "float64":
		return ColumnTypeFloat64, nil
	case "string", "text", "nvarchar":
		return ColumnTypeText, nil
	}
	return 0, fmt.Errorf("unknown column type %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *ColumnType) UnmarshalText(b []byte) error {
	parsed, err := ParseColumnType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// FixedWidth returns the natural slot width of a numeric type. The second
// result is false for text, whose stride is supplied by the producer, and for
// types without a decode rule.
func (t ColumnType) FixedWidth() (int, bool) {
	switch t {
	case ColumnTypeInt64, ColumnTypeFloat64, ColumnTypeTimestamp:
		return 8, true
	case ColumnTypeInt32, ColumnTypeFloat32:
		return 4, true
	case ColumnTypeInt16:
		return 2, true
	case ColumnTypeBool:
		return 1, true
	default:
		return 0, false
	}
}

// Decodable reports whether values of this type can be extracted.
func (t ColumnType) Decodable() bool {
	switch t {
	case ColumnTypeArray, ColumnTypeLOB:
		return false
	default:
		_, known := columnTypeNames[t]
		return known
	}
}

// ColumnDescriptor describes one result column.
type ColumnDescriptor struct {
	// Index is the 0-based position of the column in the result.
	Index int
	Name  string
	Type  ColumnType
	// Width is the per-row slot size in bytes. For text columns it is the
	// stride chosen upstream.
	Width int
}

// Validate checks that the descriptor's width is usable for its type.
func (d ColumnDescriptor) Validate() error {
	if d.Width <= 0 {
		return fmt.Errorf("column %d (%s): width must be positive, got %d", d.Index+1, d.Name, d.Width)
	}
	if w, ok := d.Type.FixedWidth(); ok && w != d.Width {
		return fmt.Errorf("column %d (%s): %s requires width %d, got %d", d.Index+1, d.Name, d.Type, w, d.Width)
	}
	return nil
}
