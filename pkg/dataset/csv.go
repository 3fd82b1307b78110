// Package dataset aggregates the electoral authority's consolidated export,
// a long-format table of per-variable, per-sex counts, into the same
// entity/vote shape the report parser produces.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
)

// Column names expected in the consolidated export.
const (
	RoundColumn       = "VUELTA"
	VariableColumn    = "VARIABLE"
	ValueColumn       = "VALUE"
	SubdivisionColumn = "PROVINCIA_NOMBRE"
)

// ErrDecode wraps failures to read or parse the tabular file itself, as
// opposed to schema or content problems reported by Aggregate.
var ErrDecode = errors.New("error leyendo el archivo de datos")

// Record is one row of the export, keyed by column name. Missing columns
// read as the empty string.
type Record map[string]string

// Table is a fully decoded record stream: the schema plus every row.
type Table struct {
	Columns []string
	Rows    []Record
}

// HasColumn reports whether the schema carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// RecordSource supplies the decoded table. The file decode happens behind
// this interface; the aggregator only ever sees records with named fields.
type RecordSource interface {
	Read() (*Table, error)
}

// CSVSource decodes a comma-separated export with a header row.
type CSVSource struct {
	Path string
}

// Read decodes the whole file into a Table.
func (s *CSVSource) Read() (*Table, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Exports in the wild have ragged trailing columns; take rows as they come.
	reader.FieldsPerRecord = -1

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s no tiene encabezado", ErrDecode, s.Path)
	}

	columns := raw[0]
	rows := make([]Record, 0, len(raw)-1)
	for _, fields := range raw[1:] {
		record := make(Record, len(columns))
		for i, col := range columns {
			if i < len(fields) {
				record[col] = fields[i]
			}
		}
		rows = append(rows, record)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}
