package export

import (
	"math"
	"strconv"

	"github.com/ginjaninja78/sas7bdat-converter/internal/dataset"
)

// =============================================================================
// CELL FORMATTING
// =============================================================================

// FormatCell renders one cell for the text formats.
//
// PARAMETERS:
//   - col: The column holding the cell.
//   - row: The zero-based record index.
//
// RETURNS:
//   - The text of the cell.
//   - false when the cell is missing; the text is then "".
//
// RULES:
//   - numbers use strconv with FloatFormat ("g": 14, 13.5, 1e+21)
//   - dates use DateFormat, datetimes use DateTimeFormat
//   - text is written unchanged (trailing blanks are already trimmed)
func (o Options) FormatCell(col *dataset.Column, row int) (string, bool) {
	if col.Missing[row] {
		return "", false
	}

	switch col.Kind {
	case dataset.KindNumber:
		return o.formatNumber(col.Numbers[row]), true
	case dataset.KindText:
		return col.Texts[row], true
	case dataset.KindDate:
		return col.Times[row].Format(o.dateLayout()), true
	case dataset.KindDateTime:
		return col.Times[row].Format(o.dateTimeLayout()), true
	default:
		return "", false
	}
}

func (o Options) formatNumber(v float64) string {
	verb := byte('g')
	if o.FloatFormat == "f" {
		verb = 'f'
	}
	// Integral values print without an exponent up to 1e15 in either mode.
	if verb == 'g' && v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, verb, -1, 64)
}

func (o Options) dateLayout() string {
	if o.DateFormat == "" {
		return "2006-01-02"
	}
	return o.DateFormat
}

func (o Options) dateTimeLayout() string {
	if o.DateTimeFormat == "" {
		return "2006-01-02T15:04:05"
	}
	return o.DateTimeFormat
}

// isFinite reports whether v can be written as a JSON number.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
