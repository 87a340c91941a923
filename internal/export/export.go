// =============================================================================
// SAS7BDAT Converter - Export Module
// =============================================================================
//
// This module writes a loaded dataset.Table to one of the supported output
// formats. Every writer receives the same Table and Options and streams its
// output to an io.Writer; WriteFile owns the destination file.
//
// FORMATS:
//   - csv:     header row plus one line per record (csv.go)
//   - excel:   one worksheet, header in row 1 (excel.go)
//   - json:    array of records keyed by column name (json.go)
//   - xml:     <data><row><COLUMN>value</COLUMN></row></data> (xml.go)
//   - parquet: one optional column per variable (parquet.go)
//
// =============================================================================

package export

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/sas7bdat-converter/internal/config"
	"github.com/ginjaninja78/sas7bdat-converter/internal/dataset"
	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options controls the output writers.
type Options struct {
	// CSVDelimiter is a single character or one of "tab", "pipe",
	// "semicolon".
	// Default: ","
	CSVDelimiter string

	// SheetName is the Excel worksheet holding the data.
	// Default: "Sheet1"
	SheetName string

	// JSONIndent indents JSON output when non-empty.
	JSONIndent string

	// XMLRootElement and XMLRowElement name the document and record
	// elements of XML output.
	// Default: "data" and "row"
	XMLRootElement string
	XMLRowElement  string

	// DateFormat and DateTimeFormat are Go time layouts used by the text
	// formats (csv, json, xml).
	DateFormat     string
	DateTimeFormat string

	// FloatFormat is "g" or "f".
	// Default: "g"
	FloatFormat string
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return FromSettings(config.Default().Export)
}

// FromSettings maps the export section of the configuration file.
func FromSettings(s config.ExportSettings) Options {
	return Options{
		CSVDelimiter:   s.CSVDelimiter,
		SheetName:      s.ExcelSheetName,
		JSONIndent:     s.JSONIndent,
		XMLRootElement: s.XMLRootElement,
		XMLRowElement:  s.XMLRowElement,
		DateFormat:     s.DateFormat,
		DateTimeFormat: s.DateTimeFormat,
		FloatFormat:    s.FloatFormat,
	}
}

// =============================================================================
// WRITER DISPATCH
// =============================================================================

// writerFunc streams a table in one format.
type writerFunc func(w io.Writer, table *dataset.Table, opts Options) error

// ErrUnsupportedFormat is returned for a Format with no writer.
var ErrUnsupportedFormat = errors.New("unsupported export format")

func writerFor(format types.Format) (writerFunc, error) {
	switch format {
	case types.FormatCSV:
		return writeCSV, nil
	case types.FormatExcel:
		return writeExcel, nil
	case types.FormatJSON:
		return writeJSON, nil
	case types.FormatXML:
		return writeXML, nil
	case types.FormatParquet:
		return writeParquet, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Write streams table to w in the given format.
func Write(w io.Writer, table *dataset.Table, format types.Format, opts Options) error {
	write, err := writerFor(format)
	if err != nil {
		return err
	}
	if err := write(w, table, opts); err != nil {
		return fmt.Errorf("failed to write %s: %w", format.Name(), err)
	}
	return nil
}

// WriteFile writes table to path, replacing any existing file.
//
// PARAMETERS:
//   - table: The loaded data set.
//   - format: The output format.
//   - path: The destination file.
//   - opts: The writer options.
//
// RETURNS:
//   - An error if the file cannot be created or written. A partially
//     written file is removed before returning.
func WriteFile(table *dataset.Table, format types.Format, path string, opts Options) (err error) {
	// Resolve the writer first so an unsupported format never creates a file.
	if _, err := writerFor(format); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", closeErr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	return Write(file, table, format, opts)
}
