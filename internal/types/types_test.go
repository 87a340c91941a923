package types

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceKindFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want SourceKind
		ok   bool
	}{
		{"class.sas7bdat", KindSAS7BDAT, true},
		{"/data/ae.xpt", KindXPT, true},
		{"CLASS.SAS7BDAT", KindUnknown, false},
		{"class.sas7bdat.bak", KindUnknown, false},
		{"notes.txt", KindUnknown, false},
		{"xpt", KindUnknown, false},
	}

	for _, tt := range tests {
		got, ok := SourceKindFromPath(tt.path)
		assert.Equal(t, tt.want, got, tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.ok, IsConvertible(tt.path), tt.path)
	}
}

func TestFormatNames(t *testing.T) {
	t.Parallel()

	var names, extensions []string
	for _, f := range Formats {
		names = append(names, f.Name())
		extensions = append(extensions, f.Extension())
	}

	assert.Equal(t, []string{"csv", "excel", "json", "xml", "parquet"}, names)
	assert.Equal(t, []string{".csv", ".xlsx", ".json", ".xml", ".parquet"}, extensions)
	assert.Equal(t, "XML", FormatXML.Label())
	assert.Equal(t, "xlsx", FormatExcel.Label())
	assert.Equal(t, "unknown", Format(42).Name())
}

func TestDestinationFor(t *testing.T) {
	t.Parallel()

	got := DestinationFor("out", filepath.Join("in", "class.sas7bdat"), FormatExcel)
	assert.Equal(t, filepath.Join("out", "class.xlsx"), got)

	got = DestinationFor("out", "adsl.v2.xpt", FormatJSON)
	assert.Equal(t, filepath.Join("out", "adsl.v2.json"), got)
}
