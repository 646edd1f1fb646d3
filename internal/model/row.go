package model

// Table is the decoded body of one division export: the header line and
// every data line split into fields. It is the unit stored in the cache.
type Table struct {
	Header  []string   `json:"header"`
	Records [][]string `json:"records"`
}

// Rows binds every record to the table header.
func (t *Table) Rows() []Row {
	if t == nil || len(t.Records) == 0 {
		return nil
	}
	index := headerIndex(t.Header)
	rows := make([]Row, len(t.Records))
	for i, rec := range t.Records {
		rows[i] = Row{header: t.Header, index: index, values: rec}
	}
	return rows
}

// Row is one raw line of the dataset, addressable by column header.
type Row struct {
	header []string
	index  map[string]int
	values []string
}

// NewRow builds a Row from a header and its values.
func NewRow(header, values []string) Row {
	return Row{header: header, index: headerIndex(header), values: values}
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, col := range header {
		// First occurrence wins on duplicated headers.
		if _, ok := index[col]; !ok {
			index[col] = i
		}
	}
	return index
}

// Get returns the value of the named column, or "" if the row has no such field.
func (r Row) Get(col string) string {
	v, _ := r.Lookup(col)
	return v
}

// Lookup returns the value of the named column and whether the row carries it.
func (r Row) Lookup(col string) (string, bool) {
	i, ok := r.index[col]
	if !ok || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// Len is the number of fields on the line.
func (r Row) Len() int {
	return len(r.values)
}

// Columns returns the header names the row has values for, in column order.
func (r Row) Columns() []string {
	n := len(r.values)
	if n > len(r.header) {
		n = len(r.header)
	}
	return r.header[:n]
}

// Map flattens the row into a column → value map. Used for diagnostics.
func (r Row) Map() map[string]string {
	cols := r.Columns()
	m := make(map[string]string, len(cols))
	for i, col := range cols {
		if _, ok := m[col]; !ok {
			m[col] = r.values[i]
		}
	}
	return m
}
