// Package manifest reads and writes result fixtures on disk.
//
// A fixture is a directory holding one file per column plus a JSON manifest
// describing the columns and the declared and wire size of each file. Files
// whose two sizes agree hold raw column bytes; the rest hold the column
// compressed with the manifest codec.
//
//	{
//	  "num_rows": 3,
//	  "codec": "zstd",
//	  "columns": [
//	    {"name": "id", "type": "bigint", "width": 8,
//	     "declared_bytes": 24, "wire_bytes": 24, "file": "id.col"}
//	  ]
//	}
//
// A layout is a manifest with the sizes left out. Pack turns a layout plus
// raw column files into a fixture.
package manifest

import (
	"os"
	"path/filepath"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/qflock/pkg/columnar"
	"github.com/ajitpratap0/qflock/pkg/compression"
	"github.com/ajitpratap0/qflock/pkg/errors"
)

// FileName is the manifest name inside a fixture directory.
const FileName = "manifest.json"

// Manifest describes a fixture.
type Manifest struct {
	NumRows int                   `json:"num_rows"`
	Codec   compression.Algorithm `json:"codec,omitempty"`
	Columns []Column              `json:"columns"`
}

// Column describes one column file.
type Column struct {
	Name          string              `json:"name"`
	Type          columnar.ColumnType `json:"type"`
	Width         int                 `json:"width"`
	DeclaredBytes int                 `json:"declared_bytes"`
	WireBytes     int                 `json:"wire_bytes"`
	File          string              `json:"file"`
}

// Load reads a manifest from path. A directory is taken to hold FileName.
func Load(path string) (*Manifest, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read manifest").
			WithDetail("path", path)
	}

	var m Manifest
	if err := gojson.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to parse manifest").
			WithDetail("path", path)
	}
	return &m, nil
}

// Save writes m as indented JSON to path.
func Save(path string, m *Manifest) error {
	data, err := gojson.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write manifest").
			WithDetail("path", path)
	}
	return nil
}

// ValidateLayout checks everything but the sizes.
func (m *Manifest) ValidateLayout() error {
	if m.NumRows < 0 {
		return errors.Newf(errors.ErrorTypeValidation, "num_rows cannot be negative, got %d", m.NumRows)
	}
	if len(m.Columns) == 0 {
		return errors.New(errors.ErrorTypeValidation, "manifest has no columns")
	}
	if _, err := compression.ParseAlgorithm(string(m.Codec)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "invalid codec")
	}

	files := make(map[string]int, len(m.Columns))
	for i, desc := range m.Descriptors() {
		if err := desc.Validate(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeValidation, "invalid column")
		}
		file := m.Columns[i].File
		if file == "" || filepath.IsAbs(file) || filepath.Base(file) != file {
			return errors.Newf(errors.ErrorTypeValidation, "column %d (%s) file %q must be a plain file name",
				i+1, desc.Name, file)
		}
		if prev, ok := files[file]; ok {
			return errors.Newf(errors.ErrorTypeValidation, "columns %d and %d share file %q", prev, i+1, file)
		}
		files[file] = i + 1
	}
	return nil
}

// Validate checks a packed manifest: the layout plus non-negative sizes.
// Size consistency with rows and widths is left to ingest.
func (m *Manifest) Validate() error {
	if err := m.ValidateLayout(); err != nil {
		return err
	}
	for i, c := range m.Columns {
		if c.DeclaredBytes < 0 || c.WireBytes < 0 {
			return errors.Newf(errors.ErrorTypeValidation, "column %d (%s) has a negative size", i+1, c.Name)
		}
	}
	return nil
}

// Descriptors returns the column descriptors in manifest order.
func (m *Manifest) Descriptors() []columnar.ColumnDescriptor {
	descs := make([]columnar.ColumnDescriptor, len(m.Columns))
	for i, c := range m.Columns {
		descs[i] = columnar.ColumnDescriptor{Index: i, Name: c.Name, Type: c.Type, Width: c.Width}
	}
	return descs
}

// Algorithm returns the codec, defaulting to zstd.
func (m *Manifest) Algorithm() compression.Algorithm {
	a, err := compression.ParseAlgorithm(string(m.Codec))
	if err != nil {
		return m.Codec
	}
	return a
}
