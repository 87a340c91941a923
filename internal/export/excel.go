package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sas7bdat-converter/internal/dataset"
)

const defaultSheet = "Sheet1"

// Number formats for time cells; Excel stores them as serial numbers.
var (
	excelDateFormat     = "yyyy-mm-dd"
	excelDateTimeFormat = "yyyy-mm-dd hh:mm:ss"
)

// writeExcel writes the table to a single worksheet. Row 1 holds the column
// names in bold. Numbers stay numeric, dates and datetimes become Excel
// date cells, and missing cells are left empty.
func writeExcel(w io.Writer, table *dataset.Table, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.SheetName
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		index, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
		f.SetActiveSheet(index)
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	styles, err := newExcelStyles(f)
	if err != nil {
		return err
	}

	stream, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q: %w", sheet, err)
	}

	header := make([]interface{}, len(table.Columns))
	for j, col := range table.Columns {
		header[j] = excelize.Cell{StyleID: styles.header, Value: col.Name}
	}
	if err := stream.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	values := make([]interface{}, len(table.Columns))
	for row := 0; row < table.Rows; row++ {
		for j, col := range table.Columns {
			values[j] = styles.cell(col, row)
		}
		cell, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return err
		}
		if err := stream.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row+1, err)
		}
	}

	if err := stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// excelStyles holds the style IDs registered on the workbook.
type excelStyles struct {
	header   int
	date     int
	dateTime int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var (
		styles excelStyles
		err    error
	)
	styles.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return styles, fmt.Errorf("failed to create header style: %w", err)
	}
	styles.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &excelDateFormat})
	if err != nil {
		return styles, fmt.Errorf("failed to create date style: %w", err)
	}
	styles.dateTime, err = f.NewStyle(&excelize.Style{CustomNumFmt: &excelDateTimeFormat})
	if err != nil {
		return styles, fmt.Errorf("failed to create datetime style: %w", err)
	}
	return styles, nil
}

// cell returns the stream value for one cell; nil leaves the cell empty.
func (s excelStyles) cell(col *dataset.Column, row int) interface{} {
	value, ok := col.Value(row)
	if !ok {
		return nil
	}
	switch col.Kind {
	case dataset.KindDate:
		return excelize.Cell{StyleID: s.date, Value: value}
	case dataset.KindDateTime:
		return excelize.Cell{StyleID: s.dateTime, Value: value}
	default:
		return value
	}
}
