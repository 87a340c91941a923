// =============================================================================
// SAS7BDAT Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all conversion commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (sas7bdat-converter)
//   ├── to-csv / to-excel / to-json / to-xml / to-parquet
//   ├── dir-to-csv / dir-to-excel / dir-to-json / dir-to-xml / dir-to-parquet
//   └── version
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --log-level, --version)
//   2. Loading the configuration file
//   3. Setting up logging
//   4. Mapping the command's error to the process exit code
//
// EXIT CODES:
//   0: success (a batch that skipped files still succeeds by default)
//   1: invalid input, failed conversion, configuration or usage error
//   2: a batch skipped files and --fail-on-partial is set
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sas7bdat-converter/internal/config"
	"github.com/ginjaninja78/sas7bdat-converter/internal/converter"
	"github.com/ginjaninja78/sas7bdat-converter/internal/logging"
	"github.com/ginjaninja78/sas7bdat-converter/internal/validation"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	exitOK      = 0
	exitFailure = 1
	exitPartial = 2
)

// =============================================================================
// APPLICATION STATE
// =============================================================================

// app holds what the root command prepares for the conversion commands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// cfgFile holds the path given with --config.
	cfgFile string

	// logLevel holds the value given with --log-level.
	logLevel string

	cfg    *config.Config
	logger *log.Logger
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// newRootCmd builds the command tree writing to stdout and stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "sas7bdat-converter",
		Short: "Convert SAS data sets (sas7bdat, xpt) to csv, excel, json, xml or parquet",
		Long: `sas7bdat-converter converts SAS data sets into common file formats.

A single file is converted with one of the to-* commands; every sas7bdat
and xpt file of a directory is converted with the matching dir-to-* command.

Example Usage:
  sas7bdat-converter to-csv class.sas7bdat class.csv
  sas7bdat-converter dir-to-parquet ./data -o ./out --continue-on-error
  sas7bdat-converter --config ./converter.yaml dir-to-excel ./data`,

		Version: Version,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},

		// If no subcommand is provided, print the help message.
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	// --version and -v print the bare version string.
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&a.cfgFile,
		"config",
		"",
		fmt.Sprintf("Path to the configuration file (default %s if present)", config.DefaultFile),
	)

	rootCmd.PersistentFlags().StringVar(
		&a.logLevel,
		"log-level",
		"",
		"Log level: debug, info, warn or error (overrides the configuration file)",
	)

	addConvertCommands(rootCmd, a)
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(a.cfgFile, true)
	} else {
		cfg, err = config.Load(config.DefaultFile, false)
	}
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = a.logLevel
	}

	logger, err := logging.New(a.stderr, level)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI with the process arguments and exits with the
// resulting status. This is called by main.main().
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command tree and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	return exitCode(rootCmd.Execute(), stdout, stderr)
}

// exitCode reports err and maps it to the process exit code. This is the
// only place where errors are classified.
//
// MAPPING:
//   - nil: 0
//   - *validation.ValidationError: message on stdout, 1
//   - converter.ErrPartialFailure: "Error: ..." on stderr, 2
//   - anything else: "Error: ..." on stderr, 1
func exitCode(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}

	var validationErr *validation.ValidationError
	if errors.As(err, &validationErr) {
		fmt.Fprintln(stdout, validationErr.Message)
		return exitFailure
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	if errors.Is(err, converter.ErrPartialFailure) {
		return exitPartial
	}
	return exitFailure
}
