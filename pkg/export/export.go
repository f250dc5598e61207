package export

// Table is the tabular content an agenda export renders: ordered headers
// and rows of cells aligned with them.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a table into file bytes in one concrete format.
type Renderer interface {
	Render(table Table) ([]byte, error)
	Extension() string
}
