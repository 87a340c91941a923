// =============================================================================
// SAS7BDAT Converter - Input Validation
// =============================================================================
//
// This module validates command input before any conversion is attempted.
//
// VALIDATION RULES:
//   1. Source file: the extension must be .sas7bdat or .xpt
//   2. Destination file: the extension must match the requested format
//   3. Source directory: must exist and be a directory
//
// ERROR HANDLING:
//   - Every failure is returned as a *ValidationError
//   - The error unwraps to one of the sentinel errors below, so callers can
//     classify it with errors.Is without parsing messages
//   - Nothing here prints or exits; the command layer decides the exit code
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrInvalidSourceExtension is returned when the source is not a
	// .sas7bdat or .xpt file.
	ErrInvalidSourceExtension = errors.New("invalid source extension")

	// ErrInvalidDestinationExtension is returned when the destination
	// extension does not match the export format.
	ErrInvalidDestinationExtension = errors.New("invalid destination extension")

	// ErrSourceDirectoryMissing is returned when the directory to convert
	// does not exist or is not a directory.
	ErrSourceDirectoryMissing = errors.New("source directory missing")

	// ErrSourceDirectoryUnreadable is returned when the directory exists
	// but cannot be inspected (permissions, a file in the path).
	ErrSourceDirectoryUnreadable = errors.New("source directory unreadable")
)

// =============================================================================
// VALIDATION ERROR TYPE
// =============================================================================

// ValidationError represents a single rejected input.
type ValidationError struct {
	// Field names the rejected input ("file_path", "export_file", "dir").
	Field string

	// Value is the rejected path.
	Value string

	// Message is the user-facing message.
	Message string

	// Err is the sentinel classifying the failure.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel for errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// REQUEST VALIDATION
// =============================================================================

// ValidateSource checks that path names a convertible source file and returns
// its kind.
func ValidateSource(path string) (types.SourceKind, error) {
	kind, ok := types.SourceKindFromPath(path)
	if !ok {
		return types.KindUnknown, &ValidationError{
			Field:   "file_path",
			Value:   path,
			Message: "File must be either a sas7bdat file or a xpt file",
			Err:     ErrInvalidSourceExtension,
		}
	}
	return kind, nil
}

// ValidateDestination checks that path carries the extension of format.
func ValidateDestination(path string, format types.Format) error {
	if filepath.Ext(path) != format.Extension() {
		return &ValidationError{
			Field:   "export_file",
			Value:   path,
			Message: fmt.Sprintf("The export file must be a %s file", format.Label()),
			Err:     ErrInvalidDestinationExtension,
		}
	}
	return nil
}

// ValidateRequest builds a ConversionRequest for a single-file command.
//
// PARAMETERS:
//   - source: The path to the file to convert.
//   - destination: The path to the file to create.
//   - format: The export format selected by the command.
//
// RETURNS:
//   - The validated request.
//   - A *ValidationError if either extension is rejected. The source is
//     checked first, so a request with two bad paths reports the source.
func ValidateRequest(source, destination string, format types.Format) (types.ConversionRequest, error) {
	kind, err := ValidateSource(source)
	if err != nil {
		return types.ConversionRequest{}, err
	}

	if err := ValidateDestination(destination, format); err != nil {
		return types.ConversionRequest{}, err
	}

	return types.ConversionRequest{
		Source:      source,
		Destination: destination,
		Format:      format,
		Kind:        kind,
	}, nil
}

// =============================================================================
// BATCH VALIDATION
// =============================================================================

// ValidateSourceDir checks that dir exists and is a directory. Only a
// missing path is reported as "does not exist"; other stat failures carry
// the underlying error.
func ValidateSourceDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return &ValidationError{
			Field:   "dir",
			Value:   dir,
			Message: fmt.Sprintf("Directory '%s' is a file.", dir),
			Err:     ErrSourceDirectoryMissing,
		}
	case errors.Is(err, fs.ErrNotExist):
		return &ValidationError{
			Field:   "dir",
			Value:   dir,
			Message: fmt.Sprintf("Directory '%s' does not exist.", dir),
			Err:     ErrSourceDirectoryMissing,
		}
	default:
		return &ValidationError{
			Field:   "dir",
			Value:   dir,
			Message: fmt.Sprintf("Directory '%s' cannot be accessed: %v", dir, err),
			Err:     fmt.Errorf("%w: %w", ErrSourceDirectoryUnreadable, err),
		}
	}
}

// ValidateBatchJob builds a BatchJob for a directory command. An empty
// outputDir means "write next to the sources".
func ValidateBatchJob(dir, outputDir string, format types.Format, continueOnError, verbose bool) (types.BatchJob, error) {
	if err := ValidateSourceDir(dir); err != nil {
		return types.BatchJob{}, err
	}

	if outputDir == "" {
		outputDir = dir
	}

	return types.BatchJob{
		SourceDir:       dir,
		DestinationDir:  outputDir,
		Format:          format,
		ContinueOnError: continueOnError,
		Verbose:         verbose,
	}, nil
}
