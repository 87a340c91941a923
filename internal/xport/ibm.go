package xport

import "math"

// IBMToFloat converts a big-endian IBM/370 hexadecimal float of 2 to 8 bytes
// (shorter values are truncated on the right) to an IEEE float64.
//
// Layout: 1 sign bit, 7-bit base-16 exponent biased by 64, 56-bit fraction.
// A first byte of '.', '_' or 'A'..'Z' followed by zero bytes is a SAS
// missing value; ok is false for those.
func IBMToFloat(b []byte) (value float64, ok bool) {
	if len(b) == 0 {
		return 0, false
	}
	if isMissingValue(b) {
		return 0, false
	}

	var buf [8]byte
	copy(buf[:], b)

	var fraction uint64
	for _, c := range buf[1:] {
		fraction = fraction<<8 | uint64(c)
	}
	if fraction == 0 {
		return 0, true
	}

	exponent := int(buf[0]&0x7f) - 64
	value = math.Ldexp(float64(fraction), 4*exponent-56)
	if buf[0]&0x80 != 0 {
		value = -value
	}
	return value, true
}

// isMissingValue reports whether b encodes one of the 28 SAS missing values.
func isMissingValue(b []byte) bool {
	first := b[0]
	if first != '.' && first != '_' && (first < 'A' || first > 'Z') {
		return false
	}
	for _, c := range b[1:] {
		if c != 0 {
			return false
		}
	}
	return true
}
