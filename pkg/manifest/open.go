package manifest

import (
	"path/filepath"

	"github.com/ajitpratap0/qflock/pkg/errors"
	"github.com/ajitpratap0/qflock/pkg/ingest"
	"github.com/ajitpratap0/qflock/pkg/mmap"
)

// Fixture is an opened fixture: its manifest, the ingest input built from
// it, and the mappings backing that input.
type Fixture struct {
	Manifest *Manifest
	Input    ingest.Input

	readers []*mmap.Reader
}

// Open loads the manifest in dir and maps every column file. Raw column
// bytes alias the mappings, so the fixture must stay open until every
// result built from Input is closed.
func Open(dir string) (*Fixture, error) {
	m, err := Load(dir)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	f := &Fixture{
		Manifest: m,
		Input: ingest.Input{
			Columns:       m.Descriptors(),
			NumRows:       m.NumRows,
			DeclaredBytes: make([]int, len(m.Columns)),
			WireBytes:     make([]int, len(m.Columns)),
			Raw:           make([][]byte, len(m.Columns)),
		},
	}

	for i, c := range m.Columns {
		path := filepath.Join(dir, c.File)
		r, err := mmap.NewReader(path)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to map column file").
				WithDetail("column", i+1).
				WithDetail("path", path)
		}
		f.readers = append(f.readers, r)

		f.Input.DeclaredBytes[i] = c.DeclaredBytes
		f.Input.WireBytes[i] = c.WireBytes
		f.Input.Raw[i] = r.ReadAll()
	}
	return f, nil
}

// Stats returns the bytes and pages handed out by the column mappings.
func (f *Fixture) Stats() (bytesRead, pagesRead int64) {
	for _, r := range f.readers {
		b, p := r.Stats()
		bytesRead += b
		pagesRead += p
	}
	return bytesRead, pagesRead
}

// Close unmaps every column file.
func (f *Fixture) Close() error {
	var firstErr error
	for _, r := range f.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.readers = nil
	return firstErr
}
