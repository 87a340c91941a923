// =============================================================================
// SAS7BDAT Converter - Conversion Commands
// =============================================================================
//
// This file defines the ten conversion commands, two per output format.
//
// COMMAND USAGE:
//   sas7bdat-converter to-<format> <file_path> <export_file>
//   sas7bdat-converter dir-to-<format> <dir> [flags]
//
// DIRECTORY FLAGS:
//   -o, --output-dir        : Directory for the converted files (default: <dir>)
//   -c, --continue-on-error : Skip files that fail instead of stopping
//   -v, --verbose           : Print one line per file and a final summary
//       --report            : Write a YAML report of the run to this path
//       --fail-on-partial   : Exit with status 2 when files were skipped
//
// PROCESSING PIPELINE:
//   1. Validate the arguments (extensions, directory)
//   2. Merge flags over the configuration file
//   3. Convert the file, or run the batch over the directory
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sas7bdat-converter/internal/converter"
	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
	"github.com/ginjaninja78/sas7bdat-converter/internal/validation"
)

// addConvertCommands registers to-<format> and dir-to-<format> for every
// output format.
func addConvertCommands(rootCmd *cobra.Command, a *app) {
	for _, format := range types.Formats {
		rootCmd.AddCommand(newFileCmd(a, format))
		rootCmd.AddCommand(newDirCmd(a, format))
	}
}

// =============================================================================
// SINGLE FILE COMMANDS
// =============================================================================

// newFileCmd builds "to-<format> <file_path> <export_file>".
func newFileCmd(a *app, format types.Format) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("to-%s <file_path> <export_file>", format.Name()),
		Short: fmt.Sprintf("Convert a sas7bdat or xpt file to a %s file", format.Label()),
		Long: fmt.Sprintf(`Convert a single sas7bdat or xpt file to a %s file.

The source must end in .sas7bdat or .xpt and the export file must end in %s.
The export file is created or replaced; the source is never modified.`,
			format.Label(), format.Extension()),
		Args: cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := validation.ValidateRequest(args[0], args[1], format)
			if err != nil {
				return err
			}

			conv := converter.New(a.cfg.Export, a.logger)
			_, err = conv.Convert(req)
			return err
		},
	}
}

// =============================================================================
// DIRECTORY COMMANDS
// =============================================================================

// dirFlags holds the local flags of one dir-to-<format> command.
type dirFlags struct {
	outputDir       string
	continueOnError bool
	verbose         bool
	report          string
	failOnPartial   bool
}

// newDirCmd builds "dir-to-<format> <dir>".
func newDirCmd(a *app, format types.Format) *cobra.Command {
	flags := &dirFlags{}

	dirCmd := &cobra.Command{
		Use:   fmt.Sprintf("dir-to-%s <dir>", format.Name()),
		Short: fmt.Sprintf("Convert all sas7bdat and xpt files in a directory to %s files", format.Label()),
		Long: fmt.Sprintf(`Convert every sas7bdat and xpt file directly inside <dir> to a %s file.

Each output is named after its source with the %s extension. Subdirectories
are not searched. By default the first failing file stops the run; with
--continue-on-error failing files are skipped and the run exits 0 unless
--fail-on-partial is set.`,
			format.Label(), format.Extension()),
		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDir(cmd, args[0], format, flags)
		},
	}

	// ==========================================================================
	// LOCAL FLAGS
	// ==========================================================================

	dirCmd.Flags().StringVarP(
		&flags.outputDir,
		"output-dir",
		"o",
		"",
		"Directory for the converted files (default is the source directory)",
	)

	dirCmd.Flags().BoolVarP(
		&flags.continueOnError,
		"continue-on-error",
		"c",
		false,
		"Skip files that fail to convert instead of stopping",
	)

	dirCmd.Flags().BoolVarP(
		&flags.verbose,
		"verbose",
		"v",
		false,
		"Print one line per file and a final summary",
	)

	dirCmd.Flags().StringVar(
		&flags.report,
		"report",
		"",
		"Write a YAML report of the run to this path",
	)

	dirCmd.Flags().BoolVar(
		&flags.failOnPartial,
		"fail-on-partial",
		false,
		"Exit with status 2 when some files were skipped",
	)

	return dirCmd
}

// runDir validates the directory, runs the batch and writes the report.
func (a *app) runDir(cmd *cobra.Command, dir string, format types.Format, flags *dirFlags) error {
	// Flags override the configuration file.
	continueOnError := a.cfg.ContinueOnError
	if cmd.Flags().Changed("continue-on-error") {
		continueOnError = flags.continueOnError
	}
	verbose := a.cfg.Verbose
	if cmd.Flags().Changed("verbose") {
		verbose = flags.verbose
	}
	failOnPartial := a.cfg.FailOnPartial
	if cmd.Flags().Changed("fail-on-partial") {
		failOnPartial = flags.failOnPartial
	}

	job, err := validation.ValidateBatchJob(dir, flags.outputDir, format, continueOnError, verbose)
	if err != nil {
		return err
	}

	batch := converter.NewBatch(converter.New(a.cfg.Export, a.logger), a.logger, a.stdout)
	result, runErr := batch.Run(job)

	if flags.report != "" {
		if err := result.WriteReport(flags.report); err != nil {
			if runErr == nil {
				return err
			}
			a.logger.Error("failed to write report", "path", flags.report, "err", err)
		} else {
			a.logger.Debug("wrote report", "path", flags.report, "run", result.RunID)
		}
	}

	if runErr != nil {
		return runErr
	}

	if failOnPartial {
		return result.PartialFailure()
	}
	return nil
}
