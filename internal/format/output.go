package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// Tabular is implemented by values that can be printed with --format table.
type Tabular interface {
	Columns() []string
	Rows() [][]string
}

// Write writes output in the requested format.
//
// Supported formats:
// - table (default; v must implement Tabular, otherwise JSON is written)
// - json
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "table":
		t, ok := v.(Tabular)
		if !ok {
			return WriteJSON(w, v, pretty)
		}
		return WriteTable(w, t)
	case "json":
		return WriteJSON(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteTable prints aligned columns. Cells may carry ANSI colour; widths are
// measured in terminal cells. The last column is never padded.
func WriteTable(w io.Writer, t Tabular) error {
	cols := t.Columns()
	rows := t.Rows()
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = xansi.StringWidth(c)
	}
	for _, r := range rows {
		for i := 0; i < len(r) && i < len(widths); i++ {
			if cw := xansi.StringWidth(r[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	line := func(cells []string) error {
		var b strings.Builder
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(cell)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-xansi.StringWidth(cell)+2))
			}
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
		return err
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = headerStyle.Sprint(c)
	}
	if err := line(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := line(r); err != nil {
			return err
		}
	}
	return nil
}
