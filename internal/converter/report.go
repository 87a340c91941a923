package converter

import (
	"time"

	"github.com/ginjaninja78/sas7bdat-converter/internal/fileutil"
)

// Report is the YAML form of a BatchResult.
type Report struct {
	RunID           string          `yaml:"run_id"`
	SourceDir       string          `yaml:"source_dir"`
	DestinationDir  string          `yaml:"destination_dir"`
	Format          string          `yaml:"format"`
	ContinueOnError bool            `yaml:"continue_on_error"`
	Started         time.Time       `yaml:"started"`
	Finished        time.Time       `yaml:"finished"`
	Discovered      int             `yaml:"discovered"`
	Succeeded       int             `yaml:"succeeded"`
	Failed          int             `yaml:"failed"`
	Aborted         bool            `yaml:"aborted"`
	Files           []ReportOutcome `yaml:"files"`
}

// ReportOutcome is one file entry of a Report.
type ReportOutcome struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination,omitempty"`
	Rows        int    `yaml:"rows"`
	DurationMS  int64  `yaml:"duration_ms"`
	Error       string `yaml:"error,omitempty"`
}

// Report builds the report for r.
func (r *BatchResult) Report() Report {
	report := Report{
		RunID:           r.RunID,
		SourceDir:       r.Job.SourceDir,
		DestinationDir:  r.Job.DestinationDir,
		Format:          r.Job.Format.Name(),
		ContinueOnError: r.Job.ContinueOnError,
		Started:         r.Started,
		Finished:        r.Finished,
		Discovered:      r.Discovered,
		Succeeded:       r.Succeeded(),
		Failed:          r.Failed(),
		Aborted:         r.Aborted,
		Files:           make([]ReportOutcome, 0, len(r.Outcomes)),
	}

	for _, o := range r.Outcomes {
		entry := ReportOutcome{
			Source:     o.Source,
			Rows:       o.Rows,
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Success() {
			entry.Destination = o.Destination
		} else {
			entry.Error = o.Err.Error()
		}
		report.Files = append(report.Files, entry)
	}

	return report
}

// WriteReport writes the YAML report of r to path.
func (r *BatchResult) WriteReport(path string) error {
	return fileutil.WriteYAML(path, r.Report())
}
