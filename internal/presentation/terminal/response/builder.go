package response

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Builder helps construct consistent terminal output: a titled table when
// there are rows, a single status line otherwise.
type Builder struct {
	out     io.Writer
	title   string
	columns []string
	rows    [][]string
	message string
	empty   string
}

// New instantiates a Builder writing to out.
func New(out io.Writer) *Builder {
	return &Builder{out: out}
}

// WithTitle sets the table title.
func (b *Builder) WithTitle(title string) *Builder {
	b.title = title
	return b
}

// WithColumns sets the table header.
func (b *Builder) WithColumns(columns ...string) *Builder {
	b.columns = columns
	return b
}

// WithRow appends a table row.
func (b *Builder) WithRow(cells ...string) *Builder {
	b.rows = append(b.rows, cells)
	return b
}

// WithMessage sets a status line printed instead of a table.
func (b *Builder) WithMessage(format string, args ...any) *Builder {
	b.message = fmt.Sprintf(format, args...)
	return b
}

// WithEmpty sets the line printed when a table has no rows.
func (b *Builder) WithEmpty(message string) *Builder {
	b.empty = message
	return b
}

// Build writes the output.
func (b *Builder) Build() error {
	if b.message != "" {
		_, err := fmt.Fprintln(b.out, b.message)
		return err
	}
	if len(b.rows) == 0 {
		if b.empty == "" {
			return nil
		}
		_, err := fmt.Fprintln(b.out, b.empty)
		return err
	}
	return b.buildTable()
}

func (b *Builder) buildTable() error {
	if b.title != "" {
		if _, err := fmt.Fprintln(b.out, b.title); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(b.out, 0, 0, 2, ' ', 0)
	if len(b.columns) > 0 {
		fmt.Fprintln(tw, strings.Join(b.columns, "\t"))
		rule := make([]string, len(b.columns))
		for i, col := range b.columns {
			rule[i] = strings.Repeat("-", max(len(col), 3))
		}
		fmt.Fprintln(tw, strings.Join(rule, "\t"))
	}
	for _, row := range b.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = sanitize(cell)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// sanitize keeps a cell on one line and out of the column separator.
func sanitize(cell string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", "").Replace(cell)
}
