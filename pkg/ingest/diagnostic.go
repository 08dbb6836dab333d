package ingest

import "fmt"

// Level is the severity of a Diagnostic.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Diagnostic is a note produced while building a payload. Diagnostics are
// returned in column order next to the payload they describe.
type Diagnostic struct {
	// Column is the 1-based column the note refers to
	Column        int
	Level         Level
	Message       string
	DeclaredBytes int
	WireBytes     int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] column %d: %s", d.Level, d.Column, d.Message)
}

func newDiagnostic(column int, level Level, declared, wire int, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Column:        column,
		Level:         level,
		Message:       fmt.Sprintf(format, args...),
		DeclaredBytes: declared,
		WireBytes:     wire,
	}
}

// compressedDiagnostic describes a decompressed column. A wire size at or
// above the declared size means the producer compressed to no benefit.
func compressedDiagnostic(column, declared, wire int) Diagnostic {
	if wire >= declared {
		return newDiagnostic(column, LevelWarning, declared, wire,
			"compressed size %d is not smaller than declared size %d", wire, declared)
	}
	return newDiagnostic(column, LevelInfo, declared, wire,
		"decompressed %d wire bytes to %d (ratio %.2f)", wire, declared, float64(wire)/float64(declared))
}
