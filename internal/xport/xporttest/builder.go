// Package xporttest builds small SAS transport files for tests.
package xporttest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ginjaninja78/sas7bdat-converter/internal/xport"
)

const stamp = "01JAN24:00:00:00"

// Var describes one variable of the data set being built.
type Var struct {
	Name   string
	Label  string
	Format string
	Char   bool

	// Length defaults to 8 for numeric variables and 8 for character ones.
	Length int
}

// Builder accumulates variables and rows.
type Builder struct {
	name string
	vars []Var
	rows [][]interface{}
}

// New starts a data set called name.
func New(name string, vars ...Var) *Builder {
	for i := range vars {
		if vars[i].Length == 0 {
			vars[i].Length = 8
		}
	}
	return &Builder{name: name, vars: vars}
}

// Row appends one observation. Values are float64 (or int) for numeric
// variables, string for character variables, and nil for a missing number.
func (b *Builder) Row(values ...interface{}) *Builder {
	b.rows = append(b.rows, values)
	return b
}

// Bytes renders the transport file.
func (b *Builder) Bytes() []byte {
	var out bytes.Buffer

	record(&out, xport.LibraryHeader+"000000000000000000000000000000  ")
	record(&out, "SAS     SAS     SASLIB  9.4     X64_10PR"+strings.Repeat(" ", 24)+stamp)
	record(&out, stamp)
	record(&out, xport.MemberHeader+"000000000000000001600000000140  ")
	record(&out, xport.DescHeader+"000000000000000000000000000000  ")
	record(&out, "SAS     "+pad(b.name, 8)+"SASDATA 9.4     X64_10PR"+strings.Repeat(" ", 24)+stamp)
	record(&out, stamp+strings.Repeat(" ", 16)+pad("", 40)+pad("DATA", 8))
	record(&out, xport.NamestrHeader+fmt.Sprintf("000000%04d00000000000000000000  ", len(b.vars)))

	var names bytes.Buffer
	pos := 0
	for i, v := range b.vars {
		ns := make([]byte, 140)
		typ := uint16(1)
		if v.Char {
			typ = 2
		}
		binary.BigEndian.PutUint16(ns[0:2], typ)
		binary.BigEndian.PutUint16(ns[4:6], uint16(v.Length))
		binary.BigEndian.PutUint16(ns[6:8], uint16(i+1))
		copy(ns[8:16], pad(v.Name, 8))
		copy(ns[16:56], pad(v.Label, 40))
		copy(ns[56:64], pad(v.Format, 8))
		copy(ns[72:80], pad("", 8))
		binary.BigEndian.PutUint32(ns[84:88], uint32(pos))
		pos += v.Length
		names.Write(ns)
	}
	padTo(&names)
	out.Write(names.Bytes())

	record(&out, xport.ObsHeader+"000000000000000000000000000000  ")

	var obs bytes.Buffer
	for _, row := range b.rows {
		for i, v := range b.vars {
			obs.Write(b.encode(v, row[i]))
		}
	}
	padTo(&obs)
	out.Write(obs.Bytes())

	return out.Bytes()
}

// WriteFile renders the transport file to path.
func (b *Builder) WriteFile(path string) error {
	return os.WriteFile(path, b.Bytes(), 0o644)
}

func (b *Builder) encode(v Var, value interface{}) []byte {
	if v.Char {
		s, _ := value.(string)
		return []byte(pad(s, v.Length)[:v.Length])
	}
	switch n := value.(type) {
	case nil:
		missing := make([]byte, v.Length)
		missing[0] = '.'
		return missing
	case int:
		return FloatToIBM(float64(n))[:v.Length]
	case float64:
		return FloatToIBM(n)[:v.Length]
	default:
		panic(fmt.Sprintf("xporttest: unsupported value %T for %s", value, v.Name))
	}
}

// FloatToIBM encodes v as an 8-byte IBM/370 hexadecimal float.
func FloatToIBM(v float64) []byte {
	out := make([]byte, 8)
	if v == 0 {
		return out
	}

	var sign byte
	if v < 0 {
		sign = 0x80
		v = -v
	}

	frac, exp2 := math.Frexp(v)
	q := int(math.Ceil(float64(exp2) / 4))
	m := math.Ldexp(frac, exp2-4*q)
	fraction := uint64(math.Ldexp(m, 56))

	out[0] = sign | byte(q+64)
	for i := 7; i >= 1; i-- {
		out[i] = byte(fraction)
		fraction >>= 8
	}
	return out
}

func record(out *bytes.Buffer, s string) {
	out.WriteString(pad(s, xport.RecordSize))
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func padTo(buf *bytes.Buffer) {
	if rem := buf.Len() % xport.RecordSize; rem != 0 {
		buf.WriteString(strings.Repeat(" ", xport.RecordSize-rem))
	}
}
