package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ginjaninja78/sas7bdat-converter/internal/dataset"
)

// writeCSV writes a header row with the column names followed by one line per
// record. Missing cells are empty fields.
func writeCSV(w io.Writer, table *dataset.Table, opts Options) error {
	writer := csv.NewWriter(w)
	comma, err := parseDelimiter(opts.CSVDelimiter)
	if err != nil {
		return err
	}
	writer.Comma = comma

	if err := writer.Write(table.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for row := 0; row < table.Rows; row++ {
		for j, col := range table.Columns {
			record[j], _ = opts.FormatCell(col, row)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// parseDelimiter resolves the configured delimiter.
// Handle special names for the common delimiters.
func parseDelimiter(delimiter string) (rune, error) {
	switch delimiter {
	case "", ",":
		return ',', nil
	case "\\t", "tab", "TAB":
		return '\t', nil
	case "|", "pipe", "PIPE":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	}

	r, size := utf8.DecodeRuneInString(delimiter)
	if size != len(delimiter) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid CSV delimiter %q", delimiter)
	}
	return r, nil
}
