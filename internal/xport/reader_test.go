package xport_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sas7bdat-converter/internal/xport"
	"github.com/ginjaninja78/sas7bdat-converter/internal/xport/xporttest"
)

func TestIBMToFloat_KnownValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
		want float64
	}{
		{"one", []byte{0x41, 0x10, 0, 0, 0, 0, 0, 0}, 1},
		{"minus one", []byte{0xC1, 0x10, 0, 0, 0, 0, 0, 0}, -1},
		{"zero", []byte{0, 0, 0, 0, 0, 0, 0, 0}, 0},
		{"one hundred", []byte{0x42, 0x64, 0, 0, 0, 0, 0, 0}, 100},
		{"half", []byte{0x40, 0x80, 0, 0, 0, 0, 0, 0}, 0.5},
		{"truncated to 4 bytes", []byte{0x41, 0x10, 0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := xport.IBMToFloat(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIBMToFloat_MissingValues(t *testing.T) {
	t.Parallel()

	for _, first := range []byte{'.', '_', 'A', 'Z'} {
		_, ok := xport.IBMToFloat([]byte{first, 0, 0, 0, 0, 0, 0, 0})
		assert.False(t, ok, "byte %q should mark a missing value", first)
	}
}

func TestIBMToFloat_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{1, -2.5, 3.14159, 1e10, -1e-5, 123456.789, 0.1} {
		got, ok := xport.IBMToFloat(xporttest.FloatToIBM(v))
		require.True(t, ok)
		assert.InEpsilon(t, v, got, 1e-12, "value %v", v)
	}
}

func TestDecode_ReadsVariablesAndRows(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	data := xporttest.New("CLASS",
		xporttest.Var{Name: "NAME", Label: "Student name", Char: true, Length: 10},
		xporttest.Var{Name: "AGE", Label: "Age in years"},
		xporttest.Var{Name: "BORN", Format: "DATE9"},
	).
		Row("Alfred", 14, 1000.0).
		Row("Alice", nil, -365.0).
		Row("Barbara", 13.5, nil).
		Bytes()

	// --- Act ---
	member, err := xport.Decode(data)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "CLASS", member.Name)
	require.Len(t, member.Variables, 3)
	assert.Equal(t, "NAME", member.Variables[0].Name)
	assert.Equal(t, xport.Character, member.Variables[0].Type)
	assert.Equal(t, "Student name", member.Variables[0].Label)
	assert.Equal(t, xport.Numeric, member.Variables[1].Type)
	assert.Equal(t, 10, member.Variables[1].Position)
	assert.Equal(t, "DATE9", member.Variables[2].Format)
	assert.Equal(t, 26, member.RowLength)
	require.Len(t, member.Observations, 3)

	name, err := member.Variables[0].String(member.Observations[2])
	require.NoError(t, err)
	assert.Equal(t, "Barbara", name)

	age, ok := member.Variables[1].Float(member.Observations[0])
	require.True(t, ok)
	assert.Equal(t, 14.0, age)

	_, ok = member.Variables[1].Float(member.Observations[1])
	assert.False(t, ok)

	age, ok = member.Variables[1].Float(member.Observations[2])
	require.True(t, ok)
	assert.Equal(t, 13.5, age)
}

func TestDecode_DropsPaddingRows(t *testing.T) {
	t.Parallel()

	// A 3-byte row leaves 77 bytes of blank padding: 25 phantom rows.
	data := xporttest.New("PAD", xporttest.Var{Name: "C", Char: true, Length: 3}).
		Row("abc").
		Bytes()

	member, err := xport.Decode(data)
	require.NoError(t, err)
	require.Len(t, member.Observations, 1)
}

func TestDecode_EmptyDataSet(t *testing.T) {
	t.Parallel()

	data := xporttest.New("EMPTY", xporttest.Var{Name: "X"}).Bytes()

	member, err := xport.Decode(data)
	require.NoError(t, err)
	assert.Len(t, member.Variables, 1)
	assert.Empty(t, member.Observations)
}

func TestDecode_Latin1Text(t *testing.T) {
	t.Parallel()

	data := xporttest.New("ENC", xporttest.Var{Name: "CITY", Char: true, Length: 8}).
		Row("Z\xfcrich").
		Bytes()

	member, err := xport.Decode(data)
	require.NoError(t, err)

	city, err := member.Variables[0].String(member.Observations[0])
	require.NoError(t, err)
	assert.Equal(t, "Zürich", city)
}

func TestDecode_RejectsBadInput(t *testing.T) {
	t.Parallel()

	valid := xporttest.New("OK", xporttest.Var{Name: "X"}).Row(1).Bytes()
	v8 := append([]byte(xport.LibV8Header), bytes.Repeat([]byte(" "), 32)...)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, xport.ErrNotTransport},
		{"garbage", bytes.Repeat([]byte("x"), 160), xport.ErrNotTransport},
		{"v8 library", v8, xport.ErrUnsupportedVersion},
		{"not whole records", valid[:len(valid)-1], xport.ErrTruncated},
		{"headers only", valid[:3*xport.RecordSize], xport.ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := xport.Decode(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecode_RejectsBadVariableCount(t *testing.T) {
	t.Parallel()

	for _, count := range []string{"  -1", "-999", "abcd"} {
		data := xporttest.New("CLASS", xporttest.Var{Name: "AGE"}).Row(14).Bytes()
		// Record 8 is the NAMESTR header; bytes 54-58 hold the variable count.
		copy(data[7*xport.RecordSize+54:7*xport.RecordSize+58], count)

		var err error
		require.NotPanics(t, func() { _, err = xport.Decode(data) }, count)
		assert.ErrorIs(t, err, xport.ErrNotTransport, count)
	}
}

func TestFloatToIBM_Sign(t *testing.T) {
	t.Parallel()

	b := xporttest.FloatToIBM(-1)
	assert.Equal(t, byte(0xC1), b[0])
	got, ok := xport.IBMToFloat(b)
	require.True(t, ok)
	assert.True(t, math.Signbit(got))
}
