package domain

// FileFormat identifies the on-object serialization of a row table.
type FileFormat string

// Supported row-table formats.
const (
	FormatCSV     FileFormat = "csv"
	FormatJSONL   FileFormat = "jsonl"
	FormatParquet FileFormat = "parquet"
)

// Table is an in-memory row table: ordered named columns and loosely typed
// rows. Cell values are whatever the source format yielded (string, float64,
// bool, nil, ...).
type Table struct {
	Columns []string
	Rows    [][]any
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return t == nil || len(t.Rows) == 0 }

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// WithColumn returns a copy of the table with an extra column appended and
// every row's cell set to value. The receiver is not mutated.
func (t *Table) WithColumn(name string, value any) *Table {
	out := &Table{
		Columns: make([]string, 0, len(t.Columns)+1),
		Rows:    make([][]any, 0, len(t.Rows)),
	}
	out.Columns = append(append(out.Columns, t.Columns...), name)
	for _, row := range t.Rows {
		cells := make([]any, 0, len(row)+1)
		out.Rows = append(out.Rows, append(append(cells, row...), value))
	}
	return out
}

// Head returns a copy of the table truncated to at most n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// FileDescriptor describes one recognized landing object and its computed
// destination in the raw area. Derived entirely from the landing object key
// at discovery time; immutable thereafter.
type FileDescriptor struct {
	LandingKey string // full object key in the landing area
	Name       string // base file name
	TableType  string // table-type token parsed from the file stem
	FileDate   string // embedded or assumed ingestion date (YYYY-MM-DD)
	RawKey     string // target key: {raw_prefix}/ingestion_date={date}/{name}
}

// ExtractedTable is the raw→trusted intermediate: one raw table read into
// memory, tagged with its target trusted-table name.
type ExtractedTable struct {
	TableType    string
	TrustedTable string
	Data         *Table
}
