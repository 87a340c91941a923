// =============================================================================
// SAS7BDAT Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It runs the pipeline for a
// single file, from reading the SAS data set to writing the output file.
//
// CONVERSION PIPELINE:
//   1. Open the source with the reader chosen by the request's SourceKind
//   2. Load the whole data set into a dataset.Table
//   3. Convert date and datetime columns (when enabled)
//   4. Write the table with the exporter chosen by the request's Format
//   5. Remove the destination file if writing failed
//
// The source file is never modified.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/sas7bdat-converter/internal/config"
	"github.com/ginjaninja78/sas7bdat-converter/internal/dataset"
	"github.com/ginjaninja78/sas7bdat-converter/internal/export"
	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Stats describes a successful conversion.
type Stats struct {
	// Rows is the number of records written.
	Rows int

	// Columns is the number of variables written.
	Columns int
}

// ConversionError is returned when a single file cannot be converted.
type ConversionError struct {
	// Source is the input file.
	Source string

	// Destination is the output file that was not produced.
	Destination string

	// Err is the underlying read or write error.
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("failed to convert %s: %v", filepath.Base(e.Source), e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// ErrPanic marks a reader or writer that panicked on malformed input.
var ErrPanic = errors.New("decoder panicked")

func panicError(req types.ConversionRequest, r interface{}) *ConversionError {
	return &ConversionError{
		Source:      req.Source,
		Destination: req.Destination,
		Err:         fmt.Errorf("%w: %v", ErrPanic, r),
	}
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Logger is the logging interface used by the converter and the batch
// runner. *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// Converter converts one validated request at a time.
type Converter struct {
	// readOptions controls how sources are decoded.
	readOptions dataset.Options

	// exportOptions controls the output writers.
	exportOptions export.Options

	logger Logger
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter.
//
// PARAMETERS:
//   - settings: The export section of the configuration.
//   - logger: The logger for progress messages.
//
// RETURNS:
//   - A new Converter instance.
func New(settings config.ExportSettings, logger Logger) *Converter {
	return &Converter{
		readOptions:   dataset.Options{ConvertDates: settings.ShouldConvertDates()},
		exportOptions: export.FromSettings(settings),
		logger:        logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Convert reads req.Source and writes req.Destination in req.Format.
//
// RETURNS:
//   - Statistics about the written table.
//   - A *ConversionError if the file could not be converted. No partial
//     destination file is left behind. A panic inside a reader or writer is
//     returned as a *ConversionError wrapping ErrPanic.
func (c *Converter) Convert(req types.ConversionRequest) (stats Stats, err error) {
	startTime := time.Now()

	writing := false
	defer func() {
		if r := recover(); r != nil {
			if writing {
				os.Remove(req.Destination)
			}
			c.logger.Debug("recovered panic", "source", req.Source, "panic", r)
			stats, err = Stats{}, panicError(req, r)
		}
	}()

	c.logger.Debug("reading source", "path", req.Source, "kind", req.Kind)

	table, err := dataset.Open(req.Kind, req.Source, c.readOptions)
	if err != nil {
		return Stats{}, &ConversionError{Source: req.Source, Destination: req.Destination, Err: err}
	}

	c.logger.Debug("loaded data set", "name", table.Name, "rows", table.Rows, "columns", len(table.Columns))

	writing = true
	if err := export.WriteFile(table, req.Format, req.Destination, c.exportOptions); err != nil {
		return Stats{}, &ConversionError{Source: req.Source, Destination: req.Destination, Err: err}
	}

	c.logger.Debug("converted",
		"source", req.Source,
		"destination", req.Destination,
		"rows", table.Rows,
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	return Stats{Rows: table.Rows, Columns: len(table.Columns)}, nil
}
