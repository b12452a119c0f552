// Copyright 2026 OD Matrix

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stockparfait/errors"
)

// Row is implemented by anything that can render itself as one table row.
type Row interface {
	CSV() []string // an encoding/csv compatible cell list
}

// Table is an ordered collection of rows with an optional header.
//
// A typical use:
//
//	type Pair struct {
//	  From, To string
//	}
//
//	func (p Pair) CSV() []string { return []string{p.From, p.To} }
//	t := NewTable("From", "To")
//	t.AddRow(Pair{"home", "work"})
type Table struct {
	Header []string // optional, may be nil
	Rows   []Row
}

// NewTable creates a Table with the given column headers. When present, the
// number of headers is expected to match the number of cells in each row.
func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

// AddRow appends one or more rows.
func (t *Table) AddRow(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Params control table export.
type Params struct {
	Rows     int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader bool // skip the header in CSV and text output
}

// limit returns the number of rows to write under p.
func (t *Table) limit(p Params) int {
	if p.Rows > 0 && p.Rows < len(t.Rows) {
		return p.Rows
	}
	return len(t.Rows)
}

// WriteCSV writes the table to w in CSV format.
func (t *Table) WriteCSV(w io.Writer, p Params) error {
	cw := csv.NewWriter(w)
	if !p.NoHeader && len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
	}
	for _, r := range t.Rows[:t.limit(p)] {
		if err := cw.Write(r.CSV()); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// WriteJSON writes the table to w as a JSON array of objects keyed by the
// column headers. Empty cells become null values. A header is required, since
// it supplies the object keys.
func (t *Table) WriteJSON(w io.Writer, p Params) error {
	if len(t.Header) == 0 {
		return errors.Reason("JSON export requires a table header")
	}
	objs := make([]map[string]any, 0, t.limit(p))
	for _, r := range t.Rows[:t.limit(p)] {
		cells := r.CSV()
		if len(cells) != len(t.Header) {
			return errors.Reason("row size [%d] != header size [%d]",
				len(cells), len(t.Header))
		}
		obj := make(map[string]any, len(cells))
		for i, c := range cells {
			if c == "" {
				obj[t.Header[i]] = nil
			} else {
				obj[t.Header[i]] = c
			}
		}
		objs = append(objs, obj)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(objs); err != nil {
		return errors.Annotate(err, "failed to encode rows")
	}
	return nil
}

// WriteText writes the table as aligned columns for ease of reading.
func (t *Table) WriteText(w io.Writer, p Params) error {
	var widths []int
	update := func(row []string) error {
		if len(row) == 0 {
			return errors.Reason("row size = 0")
		}
		if widths == nil {
			widths = make([]int, len(row))
		}
		if len(row) != len(widths) {
			return errors.Reason("row size [%d] != expected size [%d]",
				len(row), len(widths))
		}
		for i, s := range row {
			if widths[i] < len(s) {
				widths[i] = len(s)
			}
		}
		return nil
	}

	if !p.NoHeader && len(t.Header) > 0 {
		if err := update(t.Header); err != nil {
			return errors.Annotate(err, "failed to size header")
		}
	}
	for _, r := range t.Rows[:t.limit(p)] {
		if err := update(r.CSV()); err != nil {
			return errors.Annotate(err, "failed to size row")
		}
	}

	write := func(row []string) error {
		padded := make([]string, len(row))
		for i, s := range row {
			padded[i] = fmt.Sprintf("%[2]*[1]s", s, widths[i])
		}
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(padded, " | "))
		return err
	}

	if !p.NoHeader && len(t.Header) > 0 {
		if err := write(t.Header); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
		sep := make([]string, len(widths))
		for i, n := range widths {
			sep[i] = strings.Repeat("-", n)
		}
		if err := write(sep); err != nil {
			return errors.Annotate(err, "failed to write header separator")
		}
	}
	for _, r := range t.Rows[:t.limit(p)] {
		if err := write(r.CSV()); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	return nil
}
