// Package ingest loads delimited text files into typed records,
// following a list of expected columns, and turns them into point features.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// Type is the type of a column.
type Type uint8

const (
	String  Type = iota // raw cell content
	Numeric             // float64
	Boolean             // true iff the cell is exactly "1"
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Numeric:
		return "numeric"
	case Boolean:
		return "boolean"
	default:
		return "<unknown Type>"
	}
}

// Column describes one expected column of the file.
type Column struct {
	Name     string // header in the file
	Type     Type
	Optional bool   // missing column (or empty numeric cell) is not an error
	Dest     string // key in the record, defaults to Name
}

func (c Column) key() string {
	if c.Dest != "" {
		return c.Dest
	}
	return c.Name
}

// Record is one parsed row. Values are string, float64 or bool,
// according to the column type.
type Record map[string]interface{}

// Options tunes the loading.
type Options struct {
	Optional bool   // a missing file gives an empty result
	Charset  string // encoding label, such as "latin1"; UTF-8 by default
	Comma    rune   // field delimiter, ',' by default
}

var ErrMissingColumn = errors.New("missing required column")

// Error locates a loading failure.
// Line is 0 when the failure is not tied to a line.
type Error struct {
	File   string
	Line   int
	Column string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
	} else {
		b.WriteString("<input>")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Load reads the file at `path`. Columns of the file not listed
// in `cols` are dropped. The first error stops the loading.
func Load(path string, cols []Column, opts Options) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if opts.Optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &Error{File: path, Err: err}
	}
	defer f.Close()
	return read(f, path, cols, opts)
}

// Read is like Load, for an already opened source.
func Read(r io.Reader, cols []Column, opts Options) ([]Record, error) {
	return read(r, "", cols, opts)
}

func read(r io.Reader, name string, cols []Column, opts Options) ([]Record, error) {
	if opts.Charset != "" {
		var err error
		r, err = charset.NewReaderLabel(opts.Charset, r)
		if err != nil {
			return nil, &Error{File: name, Err: err}
		}
	}
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1 // short rows have empty trailing cells

	header, err := cr.Read()
	if err == io.EOF {
		header = nil
	} else if err != nil {
		return nil, &Error{File: name, Line: 1, Err: err}
	}
	positions, err := locate(header, cols)
	if err != nil {
		err.(*Error).File = name
		return nil, err
	}

	var out []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil { // csv.ParseError carries the line
			return nil, &Error{File: name, Err: err}
		}
		line, _ := cr.FieldPos(0)
		rec, perr := parseRow(row, cols, positions)
		if perr != nil {
			perr.File, perr.Line = name, line
			return nil, perr
		}
		out = append(out, rec)
	}
	return out, nil
}

// locate returns the position of each column in the header,
// or -1 for missing optional columns.
func locate(header []string, cols []Column) ([]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff") // byte order mark
		}
		byName[strings.TrimSpace(h)] = i
	}
	positions := make([]int, len(cols))
	for i, c := range cols {
		pos, ok := byName[c.Name]
		if !ok {
			if !c.Optional {
				return nil, &Error{Line: 1, Column: c.Name, Err: ErrMissingColumn}
			}
			pos = -1
		}
		positions[i] = pos
	}
	return positions, nil
}

func parseRow(row []string, cols []Column, positions []int) (Record, *Error) {
	rec := make(Record, len(cols))
	for i, c := range cols {
		pos := positions[i]
		if pos < 0 {
			continue
		}
		var raw string
		if pos < len(row) {
			raw = row[pos]
		}
		switch c.Type {
		case String:
			rec[c.key()] = raw
		case Boolean:
			rec[c.key()] = raw == "1"
		case Numeric:
			raw = strings.TrimSpace(raw)
			if raw == "" && c.Optional {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &Error{Column: c.Name, Err: err}
			}
			rec[c.key()] = v
		}
	}
	return rec, nil
}
