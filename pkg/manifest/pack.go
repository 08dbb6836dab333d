package manifest

import (
	"os"
	"path/filepath"

	"github.com/ajitpratap0/qflock/pkg/compression"
	"github.com/ajitpratap0/qflock/pkg/errors"
	"github.com/ajitpratap0/qflock/pkg/mmap"
)

// Pack reads the raw column files named by layout from srcDir, compresses
// each with comp, and writes the fixture to dstDir. A column whose
// compressed form is not smaller than its raw form is stored raw, which the
// manifest records as equal declared and wire sizes.
func Pack(layout *Manifest, srcDir, dstDir string, comp compression.Compressor) (*Manifest, error) {
	if err := layout.ValidateLayout(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create fixture directory").
			WithDetail("path", dstDir)
	}

	packed := &Manifest{
		NumRows: layout.NumRows,
		Codec:   comp.Algorithm(),
		Columns: make([]Column, len(layout.Columns)),
	}

	for i, c := range layout.Columns {
		raw, err := readColumn(filepath.Join(srcDir, c.File))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read raw column").
				WithDetail("column", i+1)
		}
		if want := layout.NumRows * c.Width; len(raw) != want {
			return nil, errors.Newf(errors.ErrorTypeValidation,
				"column %d (%s) file holds %d bytes, want %d rows x %d bytes", i+1, c.Name, len(raw), layout.NumRows, c.Width)
		}

		wire := raw
		if len(raw) > 0 && comp.Algorithm() != compression.None {
			compressed, err := comp.Compress(raw)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to compress column").
					WithDetail("column", i+1)
			}
			if len(compressed) < len(raw) {
				wire = compressed
			}
		}

		dst := filepath.Join(dstDir, c.File)
		if err := os.WriteFile(dst, wire, 0o644); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to write column file").
				WithDetail("path", dst)
		}

		c.DeclaredBytes = len(raw)
		c.WireBytes = len(wire)
		packed.Columns[i] = c
	}

	if err := Save(filepath.Join(dstDir, FileName), packed); err != nil {
		return nil, err
	}
	return packed, nil
}

func readColumn(path string) ([]byte, error) {
	r, err := mmap.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data := r.ReadAll()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
