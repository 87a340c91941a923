// =============================================================================
// SAS7BDAT Converter - Batch Module
// =============================================================================
//
// This module converts every eligible file of a directory. It owns the
// continue-or-abort policy:
//
//   ContinueOnError=false: the first failure stops the batch. Files converted
//                          before it stay in the output directory.
//   ContinueOnError=true:  failures are recorded and skipped; with N eligible
//                          files and K failures exactly N-K outputs exist.
//
// Files are converted one at a time in name order. There are no retries.
// When two sources share a stem (a.sas7bdat, a.xpt) the later one fails
// with ErrDuplicateDestination instead of overwriting the first output.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/sas7bdat-converter/internal/fileutil"
	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// ErrPartialFailure marks a batch that finished but skipped failing files.
var ErrPartialFailure = errors.New("batch completed with failures")

// ErrDuplicateDestination marks a source whose output name was already
// produced by an earlier file of the batch, e.g. a.sas7bdat and a.xpt.
var ErrDuplicateDestination = errors.New("another source already writes this destination")

// FileConverter converts a single request. *Converter implements it.
type FileConverter interface {
	Convert(req types.ConversionRequest) (Stats, error)
}

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Outcome records the conversion of one file.
type Outcome struct {
	Source      string
	Destination string
	Rows        int
	Duration    time.Duration

	// Err is nil when the file was converted.
	Err error
}

// Success reports whether the file was converted.
func (o Outcome) Success() bool {
	return o.Err == nil
}

// BatchResult is the outcome of a directory conversion.
type BatchResult struct {
	// RunID identifies the run in logs and reports.
	RunID string

	Job      types.BatchJob
	Started  time.Time
	Finished time.Time

	// Discovered is the number of eligible files found at batch start.
	Discovered int

	// Outcomes holds one entry per attempted file, in order.
	Outcomes []Outcome

	// Aborted is set when a failure stopped the batch early.
	Aborted bool
}

// Succeeded returns the number of converted files.
func (r *BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success() {
			n++
		}
	}
	return n
}

// Failed returns the number of files that could not be converted.
func (r *BatchResult) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// PartialFailure returns an error wrapping ErrPartialFailure when the batch
// completed but skipped files, and nil otherwise.
func (r *BatchResult) PartialFailure() error {
	if r.Aborted || r.Failed() == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d file(s) failed", ErrPartialFailure, r.Failed(), len(r.Outcomes))
}

// =============================================================================
// BATCH RUNNER
// =============================================================================

// Batch runs directory conversions.
type Batch struct {
	converter FileConverter
	logger    Logger

	// out receives the verbose progress lines.
	out io.Writer
}

// NewBatch creates a batch runner.
//
// PARAMETERS:
//   - converter: Converts each file.
//   - logger: Receives failure details and the run summary.
//   - out: Receives one line per file and a final aggregate line when the
//     job is verbose.
func NewBatch(converter FileConverter, logger Logger, out io.Writer) *Batch {
	return &Batch{converter: converter, logger: logger, out: out}
}

// Run converts every eligible file of job.SourceDir.
//
// RETURNS:
//   - The BatchResult, also when the batch aborted.
//   - A *ConversionError when ContinueOnError is false and a file failed,
//     or an error if the directories cannot be read or created.
//
// PROCESSING STEPS:
//   1. Enumerate eligible files once
//   2. Create the destination directory
//   3. Convert each file in turn, applying the error policy
func (b *Batch) Run(job types.BatchJob) (*BatchResult, error) {
	result := &BatchResult{
		RunID:   uuid.NewString(),
		Job:     job,
		Started: time.Now(),
	}
	defer func() { result.Finished = time.Now() }()

	files, err := fileutil.DiscoverConvertible(job.SourceDir)
	if err != nil {
		return result, err
	}
	result.Discovered = len(files)

	b.logger.Debug("discovered files", "run", result.RunID, "dir", job.SourceDir, "count", len(files))

	if err := fileutil.EnsureDir(job.DestinationDir); err != nil {
		return result, err
	}

	claimed := make(map[string]string, len(files))
	for _, source := range files {
		outcome := b.convert(source, job, claimed)
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Success() {
			b.verbosef(job, "Converted %s -> %s (%d rows)\n",
				filepath.Base(outcome.Source), filepath.Base(outcome.Destination), outcome.Rows)
			continue
		}

		b.verbosef(job, "Failed %s: %v\n", filepath.Base(outcome.Source), outcome.Err)

		if !job.ContinueOnError {
			result.Aborted = true
			b.summarize(job, result)
			return result, outcome.Err
		}

		b.logger.Debug("skipping file", "source", outcome.Source, "err", outcome.Err)
	}

	b.summarize(job, result)
	return result, nil
}

// convert attempts one file and records the outcome. claimed maps each
// destination to the source that first wrote it.
func (b *Batch) convert(source string, job types.BatchJob, claimed map[string]string) Outcome {
	kind, _ := types.SourceKindFromPath(source)
	req := types.ConversionRequest{
		Source:      source,
		Destination: types.DestinationFor(job.DestinationDir, source, job.Format),
		Format:      job.Format,
		Kind:        kind,
	}

	if first, ok := claimed[req.Destination]; ok {
		return Outcome{
			Source:      req.Source,
			Destination: req.Destination,
			Err: &ConversionError{
				Source:      req.Source,
				Destination: req.Destination,
				Err:         fmt.Errorf("%w (%s)", ErrDuplicateDestination, filepath.Base(first)),
			},
		}
	}
	claimed[req.Destination] = req.Source

	startTime := time.Now()
	stats, err := b.safeConvert(req)
	outcome := Outcome{
		Source:      req.Source,
		Destination: req.Destination,
		Rows:        stats.Rows,
		Duration:    time.Since(startTime),
	}

	if err != nil {
		var convErr *ConversionError
		if !errors.As(err, &convErr) {
			err = &ConversionError{Source: req.Source, Destination: req.Destination, Err: err}
		}
		outcome.Err = err
	}

	return outcome
}

// safeConvert runs the converter, turning a panic into a *ConversionError
// so one malformed file cannot stop the batch.
func (b *Batch) safeConvert(req types.ConversionRequest) (stats Stats, err error) {
	defer func() {
		if r := recover(); r != nil {
			stats, err = Stats{}, panicError(req, r)
		}
	}()
	return b.converter.Convert(req)
}

func (b *Batch) summarize(job types.BatchJob, result *BatchResult) {
	b.logger.Debug("batch finished",
		"run", result.RunID,
		"attempted", len(result.Outcomes),
		"succeeded", result.Succeeded(),
		"failed", result.Failed(),
		"aborted", result.Aborted,
	)

	if result.Aborted {
		b.verbosef(job, "Aborted: converted %d of %d file(s)\n", result.Succeeded(), result.Discovered)
		return
	}
	b.verbosef(job, "Converted %d of %d file(s), %d failed\n", result.Succeeded(), result.Discovered, result.Failed())
}

func (b *Batch) verbosef(job types.BatchJob, format string, args ...interface{}) {
	if !job.Verbose || b.out == nil {
		return
	}
	fmt.Fprintf(b.out, format, args...)
}
