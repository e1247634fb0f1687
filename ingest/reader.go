package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one complete question/answer pair from an upload.
type Row struct {
	Question string
	Answer   string
}

// Reader streams the complete rows of an uploaded CSV. Rows missing either
// the question or the answer value are skipped, not errors.
type Reader struct {
	csv     *csv.Reader
	qCol    int
	aCol    int
	skipped int
}

// NewReader parses the header of r and locates the question and answer
// columns by name, case-insensitively. Both columns must be present.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: reading csv header: %w", err)
	}

	qCol, aCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "question":
			qCol = i
		case "answer":
			aCol = i
		}
	}
	if qCol < 0 || aCol < 0 {
		return nil, fmt.Errorf("ingest: csv header must contain question and answer columns, got %v", header)
	}
	return &Reader{csv: cr, qCol: qCol, aCol: aCol}, nil
}

// Next returns the next complete row, or io.EOF when the file is exhausted.
// Incomplete rows are counted and skipped.
func (r *Reader) Next() (Row, error) {
	for {
		record, err := r.csv.Read()
		if err == io.EOF {
			return Row{}, io.EOF
		}
		if err != nil {
			return Row{}, fmt.Errorf("ingest: reading csv row: %w", err)
		}
		if r.qCol >= len(record) || r.aCol >= len(record) {
			r.skipped++
			continue
		}
		row := Row{
			Question: strings.TrimSpace(record[r.qCol]),
			Answer:   strings.TrimSpace(record[r.aCol]),
		}
		if row.Question == "" || row.Answer == "" {
			r.skipped++
			continue
		}
		return row, nil
	}
}

// Skipped reports how many incomplete rows were dropped so far.
func (r *Reader) Skipped() int { return r.skipped }
