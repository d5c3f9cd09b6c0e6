package entity

import "strings"

// EmailColumn is the ledger's natural key column.
const EmailColumn = "email"

// CustomerTable is an ordered-column table of customer records. The column
// set is not fixed; it comes from whichever CSV first created the ledger.
type CustomerTable struct {
	Header []string
	Rows   []Customer
}

// Customer is one ledger row, cells aligned with the owning table's header.
type Customer []string

// ColumnIndex returns the position of name in the header, or -1.
func (t *CustomerTable) ColumnIndex(name string) int {
	for i, col := range t.Header {
		if col == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t *CustomerTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Get returns the cell for column name, or "" when the column is absent.
func (t *CustomerTable) Get(row Customer, name string) string {
	idx := t.ColumnIndex(name)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Contains reports whether any cell of row contains query, ignoring case.
// query must already be lower-cased.
func (c Customer) Contains(query string) bool {
	for _, cell := range c {
		if strings.Contains(strings.ToLower(cell), query) {
			return true
		}
	}
	return false
}
