// Package output provides tabular result formatters.
package output

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
)

// TableSink consumes one tabular result: a header then rows. Table builders
// are sink-agnostic; picking tab-delimited vs CSV is the caller's choice.
type TableSink interface {
	WriteHeader(columns []string) error
	WriteRow(values []string) error
	Flush() error
}

// TabSink writes tables in tab-delimited format.
type TabSink struct {
	w *bufio.Writer
}

// NewTabSink creates a tab-delimited sink.
func NewTabSink(w io.Writer) *TabSink {
	return &TabSink{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (ts *TabSink) WriteHeader(columns []string) error {
	_, err := ts.w.WriteString(strings.Join(columns, "\t") + "\n")
	return err
}

// WriteRow writes a single row.
func (ts *TabSink) WriteRow(values []string) error {
	_, err := ts.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (ts *TabSink) Flush() error {
	return ts.w.Flush()
}

// CSVSink writes tables in CSV format.
type CSVSink struct {
	w *csv.Writer
}

// NewCSVSink creates a CSV sink.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

func (cs *CSVSink) WriteHeader(columns []string) error {
	return cs.w.Write(columns)
}

func (cs *CSVSink) WriteRow(values []string) error {
	return cs.w.Write(values)
}

func (cs *CSVSink) Flush() error {
	cs.w.Flush()
	return cs.w.Error()
}
