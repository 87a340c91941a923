// =============================================================================
// SAS7BDAT Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the SAS7BDAT Converter CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   sas7bdat-converter to-<format> <file_path> <export_file>
//   sas7bdat-converter dir-to-<format> <dir> [flags]
//   sas7bdat-converter version
//
// ARCHITECTURE:
//   - cmd/                : CLI command definitions (Cobra) and exit codes
//   - internal/config     : YAML configuration file
//   - internal/validation : Argument validation
//   - internal/converter  : Single file and batch conversion
//   - internal/dataset    : Reading sas7bdat and xpt files into tables
//   - internal/xport      : SAS transport file decoder
//   - internal/export     : csv, excel, json, xml and parquet writers
//   - internal/fileutil   : File discovery and report writing
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sas7bdat-converter/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
