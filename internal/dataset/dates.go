package dataset

import (
	"math"
	"strings"
	"time"
)

// sasEpochUnix is 1960-01-01T00:00:00Z in Unix seconds. SAS stores dates as
// days and datetimes as seconds since that instant.
const sasEpochUnix = -315619200

var dateFormats = map[string]bool{
	"DATE": true, "DAY": true, "DDMMYY": true, "DDMMYYB": true, "DDMMYYC": true,
	"DDMMYYD": true, "DDMMYYN": true, "DDMMYYP": true, "DDMMYYS": true,
	"DOWNAME": true, "JULDAY": true, "JULIAN": true, "MMDDYY": true,
	"MMDDYYB": true, "MMDDYYC": true, "MMDDYYD": true, "MMDDYYN": true,
	"MMDDYYP": true, "MMDDYYS": true, "MMYY": true, "MONNAME": true,
	"MONTH": true, "MONYY": true, "QTR": true, "WEEKDATE": true,
	"WEEKDATX": true, "WEEKDAY": true, "WORDDATE": true, "WORDDATX": true,
	"YEAR": true, "YYMM": true, "YYMMDD": true, "YYMMDDB": true,
	"YYMMDDC": true, "YYMMDDD": true, "YYMMDDN": true, "YYMMDDP": true,
	"YYMMDDS": true, "YYMON": true, "YYQ": true, "E8601DA": true,
	"B8601DA": true, "IS8601DA": true, "NLDATE": true, "MINGUO": true,
}

var dateTimeFormats = map[string]bool{
	"DATETIME": true, "DATEAMPM": true, "DTDATE": true, "DTMONYY": true,
	"DTWKDATX": true, "DTYEAR": true, "E8601DT": true, "B8601DT": true,
	"IS8601DT": true, "NLDATM": true, "MDYAMPM": true,
}

// KindForFormat maps a SAS display format of a numeric column to the kind
// the column should be exported as. "DATE9." and "DATE" are equivalent.
func KindForFormat(format string) Kind {
	name := normalizeFormat(format)
	switch {
	case dateFormats[name]:
		return KindDate
	case dateTimeFormats[name]:
		return KindDateTime
	default:
		return KindNumber
	}
}

// normalizeFormat strips the width and decimals from a format name.
func normalizeFormat(format string) string {
	name := strings.ToUpper(strings.TrimSpace(format))
	return strings.TrimRight(name, "0123456789.")
}

// DateFromSAS converts a SAS date (days since 1960-01-01).
func DateFromSAS(days float64) (time.Time, bool) {
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return time.Time{}, false
	}
	return time.Unix(sasEpochUnix, 0).UTC().AddDate(0, 0, int(math.Floor(days))), true
}

// DateTimeFromSAS converts a SAS datetime (seconds since 1960-01-01).
// Fractions are kept to the millisecond.
func DateTimeFromSAS(seconds float64) (time.Time, bool) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return time.Time{}, false
	}
	whole := math.Floor(seconds)
	millis := math.Round((seconds - whole) * 1000)
	return time.Unix(sasEpochUnix+int64(whole), int64(millis)*int64(time.Millisecond)).UTC(), true
}

// convertTimeColumn rewrites a numeric column whose format is a date or
// datetime format into a time column. Other columns are left alone.
func convertTimeColumn(col *Column) {
	if col.Kind != KindNumber {
		return
	}
	kind := KindForFormat(col.Format)
	if !kind.IsTime() {
		return
	}

	times := make([]time.Time, len(col.Numbers))
	for i, v := range col.Numbers {
		if col.Missing[i] {
			continue
		}
		var (
			t  time.Time
			ok bool
		)
		if kind == KindDate {
			t, ok = DateFromSAS(v)
		} else {
			t, ok = DateTimeFromSAS(v)
		}
		if !ok {
			col.Missing[i] = true
			continue
		}
		times[i] = t
	}

	col.Kind = kind
	col.Times = times
	col.Numbers = nil
}
