package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/kshedden/datareader"
)

// chunkRows is the number of records requested from the decoder per Read.
const chunkRows = 10000

// readSAS7BDAT decodes a native SAS data set. Decoding, including page
// decompression, is done by datareader; this function only reshapes the
// series it returns into a Table.
func readSAS7BDAT(r io.ReadSeeker) (*Table, error) {
	sas, err := datareader.NewSAS7BDATReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	sas.TrimStrings = true
	sas.ConvertDates = false
	sas.FactorizeStrings = false

	names := sas.ColumnNames()
	labels := sas.ColumnLabels()

	table := &Table{Columns: make([]*Column, len(names))}
	for i, name := range names {
		col := &Column{Name: name, Kind: KindText}
		if i < len(labels) {
			col.Label = labels[i]
		}
		if i < len(sas.ColumnFormats) {
			col.Format = sas.ColumnFormats[i]
		}
		table.Columns[i] = col
	}

	if err := readChunks(table, sas, chunkRows); err != nil {
		return nil, err
	}
	return table, nil
}

// seriesReader yields up to n rows per call as one series per column.
// *datareader.SAS7BDAT implements it.
type seriesReader interface {
	Read(n int) ([]*datareader.Series, error)
}

// readChunks appends chunks of size rows from r to table until a short
// chunk, an empty chunk or io.EOF.
func readChunks(table *Table, r seriesReader, size int) error {
	typed := false
	for {
		chunk, err := r.Read(size)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read rows %d+: %w", table.Rows, err)
		}
		if len(chunk) == 0 {
			return nil
		}
		if len(chunk) != len(table.Columns) {
			return fmt.Errorf("decoder returned %d series for %d columns", len(chunk), len(table.Columns))
		}

		n := chunk[0].Length()
		for j, series := range chunk {
			if err := appendSeries(table.Columns[j], series, !typed); err != nil {
				return err
			}
		}
		typed = true
		table.Rows += n

		if errors.Is(err, io.EOF) || n < size {
			return nil
		}
	}
}

// appendSeries copies one decoded series onto the end of col. The first
// chunk fixes the column kind.
func appendSeries(col *Column, series *datareader.Series, first bool) error {
	missing := series.Missing()

	switch data := series.Data().(type) {
	case []float64:
		if first {
			col.Kind = KindNumber
		}
		if col.Kind != KindNumber {
			return fmt.Errorf("column %q changed type between chunks", col.Name)
		}
		for i, v := range data {
			col.Numbers = append(col.Numbers, v)
			col.Missing = append(col.Missing, isMissing(missing, i) || math.IsNaN(v))
		}
	case []string:
		if first {
			col.Kind = KindText
		}
		if col.Kind != KindText {
			return fmt.Errorf("column %q changed type between chunks", col.Name)
		}
		for i, v := range data {
			col.Texts = append(col.Texts, v)
			col.Missing = append(col.Missing, isMissing(missing, i))
		}
	default:
		return fmt.Errorf("column %q has unsupported series type %T", col.Name, data)
	}
	return nil
}

func isMissing(mask []bool, i int) bool {
	return mask != nil && i < len(mask) && mask[i]
}
