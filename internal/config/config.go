// =============================================================================
// SAS7BDAT Converter - Configuration Module
// =============================================================================
//
// This module loads the optional YAML configuration file. Every setting has a
// default, so the converter runs without a configuration file at all.
//
// PRECEDENCE (highest first):
//   1. Command-line flags (applied by the cmd package)
//   2. Values from the configuration file
//   3. Defaults from applyDefaults
//
// EXAMPLE (.sas7bdat-converter.yaml):
//   log_level: info
//   continue_on_error: false
//   verbose: false
//   fail_on_partial: false
//   export:
//     csv_delimiter: ","
//     excel_sheet_name: Sheet1
//     xml_root_element: data
//     xml_row_element: row
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the working directory
// when --config is not given.
const DefaultFile = ".sas7bdat-converter.yaml"

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// ContinueOnError is the default for --continue-on-error on the
	// directory commands.
	// Default: false
	ContinueOnError bool `yaml:"continue_on_error"`

	// Verbose is the default for --verbose on the directory commands.
	// Default: false
	Verbose bool `yaml:"verbose"`

	// FailOnPartial makes a directory command exit with status 2 when the
	// batch finished but skipped failing files.
	// Default: false
	FailOnPartial bool `yaml:"fail_on_partial"`

	// Export holds the settings handed to the output writers.
	Export ExportSettings `yaml:"export"`
}

// ExportSettings controls how tables are written.
type ExportSettings struct {
	// CSVDelimiter separates CSV fields: one character, or "tab", "pipe",
	// "semicolon".
	// Default: ","
	CSVDelimiter string `yaml:"csv_delimiter" validate:"required"`

	// ExcelSheetName is the name of the worksheet holding the data.
	// Excel limits sheet names to 31 characters.
	// Default: "Sheet1"
	ExcelSheetName string `yaml:"excel_sheet_name" validate:"min=1,max=31"`

	// JSONIndent indents JSON output when non-empty.
	// Default: "" (compact)
	JSONIndent string `yaml:"json_indent"`

	// XMLRootElement is the document element of XML output.
	// Default: "data"
	XMLRootElement string `yaml:"xml_root_element" validate:"required"`

	// XMLRowElement wraps each record in XML output.
	// Default: "row"
	XMLRowElement string `yaml:"xml_row_element" validate:"required"`

	// ConvertDates turns numeric columns with SAS date formats into dates.
	// Default: true
	ConvertDates *bool `yaml:"convert_dates"`

	// DateFormat is the Go layout for date-only values in text outputs.
	// Default: "2006-01-02"
	DateFormat string `yaml:"date_format" validate:"required"`

	// DateTimeFormat is the Go layout for timestamps in text outputs.
	// Default: "2006-01-02T15:04:05"
	DateTimeFormat string `yaml:"datetime_format" validate:"required"`

	// FloatFormat is the strconv verb used for numbers in text outputs.
	// Valid values: "g" (shortest representation), "f"
	// Default: "g"
	FloatFormat string `yaml:"float_format" validate:"oneof=g f"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//   - required: When false, a missing file yields the defaults.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string, required bool) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	export := &config.Export
	if export.CSVDelimiter == "" {
		export.CSVDelimiter = ","
	}
	if export.ExcelSheetName == "" {
		export.ExcelSheetName = "Sheet1"
	}
	if export.XMLRootElement == "" {
		export.XMLRootElement = "data"
	}
	if export.XMLRowElement == "" {
		export.XMLRowElement = "row"
	}
	if export.ConvertDates == nil {
		convert := true
		export.ConvertDates = &convert
	}
	if export.DateFormat == "" {
		export.DateFormat = "2006-01-02"
	}
	if export.DateTimeFormat == "" {
		export.DateTimeFormat = "2006-01-02T15:04:05"
	}
	if export.FloatFormat == "" {
		export.FloatFormat = "g"
	}
}

// validate checks the struct tags of the configuration.
func validate(config *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	return v.Struct(config)
}

// ShouldConvertDates reports the effective convert_dates setting.
func (e ExportSettings) ShouldConvertDates() bool {
	return e.ConvertDates == nil || *e.ConvertDates
}
