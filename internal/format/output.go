package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

const (
	JSON  = "json"
	Table = "table"
)

// Rows is tabular output. Header cells are printed bold.
type Rows struct {
	Title  string
	Header []string
	Rows   [][]string
}

// Write writes v in the requested format. Table output prints tables in
// order and ignores v; JSON output ignores tables.
//
// Supported formats:
// - table (default)
// - json
func Write(w io.Writer, format string, v any, pretty bool, tables ...Rows) error {
	switch format {
	case "", Table:
		for _, t := range tables {
			if err := WriteTable(w, t); err != nil {
				return err
			}
		}
		return nil
	case JSON:
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

// WriteTable prints rows aligned in columns. Colors follow fatih/color,
// which disables itself when w is not a terminal or NO_COLOR is set.
func WriteTable(w io.Writer, r Rows) error {
	bold := color.New(color.Bold).SprintFunc()
	if r.Title != "" {
		if _, err := fmt.Fprintln(w, color.New(color.Bold, color.Underline).Sprint(r.Title)); err != nil {
			return err
		}
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	if len(r.Header) > 0 {
		tbl.AddRow(cells(r.Header, bold)...)
	}
	for _, row := range r.Rows {
		tbl.AddRow(cells(row, fmt.Sprint)...)
	}
	_, err := fmt.Fprintln(w, tbl)
	return err
}

func cells(row []string, f func(...any) string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		out[i] = f(c)
	}
	return out
}
