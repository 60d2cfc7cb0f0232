package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Formatter prints command output in one consistent shape.
type Formatter struct {
	writer io.Writer
	asJSON bool
}

// NewFormatter creates a Formatter. asJSON switches all output to JSON.
func NewFormatter(w io.Writer, asJSON bool) *Formatter {
	if w == nil {
		w = os.Stdout
	}
	return &Formatter{writer: w, asJSON: asJSON}
}

// JSON reports whether the formatter is in JSON mode.
func (f *Formatter) JSON() bool { return f.asJSON }

// PrintJSON prints data as indented JSON.
func (f *Formatter) PrintJSON(data any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintLine prints one formatted text line.
func (f *Formatter) PrintLine(format string, args ...any) {
	fmt.Fprintf(f.writer, format+"\n", args...)
}

// PrintTable prints aligned columns with a header row.
func (f *Formatter) PrintTable(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}
