// =============================================================================
// SAS7BDAT Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - validation
//   - converter
//   - dataset
//   - export
//
// =============================================================================

package types

import (
	"path/filepath"
	"strings"
)

// =============================================================================
// SOURCE KINDS
// =============================================================================

// SourceKind identifies the on-disk layout of an input file. It is resolved
// once from the file extension and then drives reader selection.
type SourceKind int

const (
	// KindUnknown is the zero value; it never reaches a reader.
	KindUnknown SourceKind = iota

	// KindSAS7BDAT is a native SAS data set (.sas7bdat).
	KindSAS7BDAT

	// KindXPT is a SAS transport file (.xpt).
	KindXPT
)

// String returns the extension-style name of the kind.
func (k SourceKind) String() string {
	switch k {
	case KindSAS7BDAT:
		return "sas7bdat"
	case KindXPT:
		return "xpt"
	default:
		return "unknown"
	}
}

// SourceKindFromPath resolves the kind of a source file from its extension.
// The comparison is exact, so "FILE.SAS7BDAT" does not resolve.
func SourceKindFromPath(path string) (SourceKind, bool) {
	switch filepath.Ext(path) {
	case ".sas7bdat":
		return KindSAS7BDAT, true
	case ".xpt":
		return KindXPT, true
	default:
		return KindUnknown, false
	}
}

// IsConvertible reports whether the path has a source extension.
func IsConvertible(path string) bool {
	_, ok := SourceKindFromPath(path)
	return ok
}

// =============================================================================
// OUTPUT FORMATS
// =============================================================================

// Format is one of the five export targets.
type Format int

const (
	FormatCSV Format = iota
	FormatExcel
	FormatJSON
	FormatXML
	FormatParquet
)

// Formats lists every export target in command order.
var Formats = []Format{FormatCSV, FormatExcel, FormatJSON, FormatXML, FormatParquet}

// Name is the command stem of the format ("to-<name>", "dir-to-<name>").
func (f Format) Name() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatExcel:
		return "excel"
	case FormatJSON:
		return "json"
	case FormatXML:
		return "xml"
	case FormatParquet:
		return "parquet"
	default:
		return "unknown"
	}
}

// Extension is the file extension, including the leading dot, that a
// destination file of this format must carry.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatExcel:
		return ".xlsx"
	case FormatJSON:
		return ".json"
	case FormatXML:
		return ".xml"
	case FormatParquet:
		return ".parquet"
	default:
		return ""
	}
}

// Label is the human readable name used in help text and messages.
func (f Format) Label() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatExcel:
		return "xlsx"
	case FormatJSON:
		return "json"
	case FormatXML:
		return "XML"
	case FormatParquet:
		return "parquet"
	default:
		return "unknown"
	}
}

func (f Format) String() string {
	return f.Name()
}

// =============================================================================
// REQUESTS AND JOBS
// =============================================================================

// ConversionRequest describes the conversion of one source file into one
// destination file. Build it through validation.ValidateRequest so that the
// extension invariants hold.
type ConversionRequest struct {
	// Source is the path to the .sas7bdat or .xpt file.
	Source string

	// Destination is the path of the file to create.
	Destination string

	// Format is the export target; Destination carries its extension.
	Format Format

	// Kind is the source layout resolved from Source's extension.
	Kind SourceKind
}

// BatchJob describes the conversion of every eligible file in a directory.
type BatchJob struct {
	// SourceDir is the directory to scan. It is read once, up front.
	SourceDir string

	// DestinationDir receives the converted files. It may equal SourceDir.
	DestinationDir string

	// Format is the export target for every file.
	Format Format

	// ContinueOnError skips failing files instead of aborting the batch.
	ContinueOnError bool

	// Verbose prints one line per attempted file.
	Verbose bool
}

// DestinationFor derives the output path for a source file: the source stem
// with the format extension, placed directly under dir.
func DestinationFor(dir, source string, format Format) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+format.Extension())
}
