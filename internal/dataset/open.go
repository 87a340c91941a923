package dataset

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// Options controls how sources are decoded.
type Options struct {
	// ConvertDates turns numeric columns with date or datetime formats into
	// time columns.
	ConvertDates bool
}

// Open reads the whole data set at path. kind selects the decoder; it is
// resolved from the extension when the request is validated.
func Open(kind types.SourceKind, path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	var table *Table
	switch kind {
	case types.KindSAS7BDAT:
		table, err = readSAS7BDAT(f)
	case types.KindXPT:
		table, err = readXPT(f)
	default:
		return nil, fmt.Errorf("unsupported source kind %s", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", kind, err)
	}

	if opts.ConvertDates {
		for _, col := range table.Columns {
			convertTimeColumn(col)
		}
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load %s file: %w", kind, err)
	}

	return table, nil
}
