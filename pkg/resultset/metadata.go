package resultset

import (
	"github.com/ajitpratap0/qflock/pkg/columnar"
	"github.com/ajitpratap0/qflock/pkg/errors"
)

// Metadata describes the columns of a result. Column positions are 1-based.
// Column lookups fail with a closed error once the owning result is closed;
// ColumnCount and Names keep reporting the shape the result had.
type Metadata struct {
	columns []columnar.ColumnDescriptor
	owner   *ResultSet
}

func newMetadata(columns []columnar.ColumnDescriptor, owner *ResultSet) *Metadata {
	return &Metadata{columns: columns, owner: owner}
}

// ColumnCount returns the number of columns
func (m *Metadata) ColumnCount() int { return len(m.columns) }

// Names returns the column names in order.
func (m *Metadata) Names() []string {
	names := make([]string, len(m.columns))
	for i, c := range m.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the descriptor of 1-based column col.
func (m *Metadata) Column(col int) (columnar.ColumnDescriptor, error) {
	if m.owner != nil {
		if err := m.owner.checkOpen("Metadata.Column"); err != nil {
			return columnar.ColumnDescriptor{}, err
		}
	}
	if col < 1 || col > len(m.columns) {
		return columnar.ColumnDescriptor{}, errors.Newf(errors.ErrorTypeOutOfRange,
			"column %d outside [1, %d]", col, len(m.columns)).WithDetail("column", col)
	}
	return m.columns[col-1], nil
}

// ColumnName returns the name of 1-based column col.
func (m *Metadata) ColumnName(col int) (string, error) {
	c, err := m.Column(col)
	return c.Name, err
}

// ColumnType returns the declared type of 1-based column col.
func (m *Metadata) ColumnType(col int) (columnar.ColumnType, error) {
	c, err := m.Column(col)
	return c.Type, err
}

// ColumnWidth returns the per-row byte width of 1-based column col.
func (m *Metadata) ColumnWidth(col int) (int, error) {
	c, err := m.Column(col)
	return c.Width, err
}
