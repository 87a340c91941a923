package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ginjaninja78/sas7bdat-converter/internal/dataset"
)

// writeJSON writes an array with one object per record. Keys follow the
// column order of the table; missing cells are null, numbers are JSON
// numbers and dates use the configured layouts.
//
// OUTPUT (compact):
//   [{"NAME":"Alfred","AGE":14,"BORN":"1962-09-27"},{"NAME":"Alice","AGE":null,"BORN":null}]
func writeJSON(w io.Writer, table *dataset.Table, opts Options) error {
	keys := make([][]byte, len(table.Columns))
	for j, col := range table.Columns {
		key, err := json.Marshal(col.Name)
		if err != nil {
			return fmt.Errorf("failed to encode column name %q: %w", col.Name, err)
		}
		keys[j] = key
	}

	var buffer bytes.Buffer
	buffer.WriteByte('[')
	for row := 0; row < table.Rows; row++ {
		if row > 0 {
			buffer.WriteByte(',')
		}
		buffer.WriteByte('{')
		for j, col := range table.Columns {
			if j > 0 {
				buffer.WriteByte(',')
			}
			buffer.Write(keys[j])
			buffer.WriteByte(':')
			if err := writeJSONValue(&buffer, col, row, opts); err != nil {
				return fmt.Errorf("row %d, column %q: %w", row+1, col.Name, err)
			}
		}
		buffer.WriteByte('}')
	}
	buffer.WriteByte(']')

	if opts.JSONIndent != "" {
		var indented bytes.Buffer
		if err := json.Indent(&indented, buffer.Bytes(), "", opts.JSONIndent); err != nil {
			return fmt.Errorf("failed to indent JSON: %w", err)
		}
		buffer = indented
	}
	buffer.WriteByte('\n')

	_, err := w.Write(buffer.Bytes())
	return err
}

func writeJSONValue(buffer *bytes.Buffer, col *dataset.Column, row int, opts Options) error {
	if col.Missing[row] {
		buffer.WriteString("null")
		return nil
	}

	var value interface{}
	switch col.Kind {
	case dataset.KindNumber:
		v := col.Numbers[row]
		if !isFinite(v) {
			buffer.WriteString("null")
			return nil
		}
		value = v
	default:
		value, _ = opts.FormatCell(col, row)
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buffer.Write(encoded)
	return nil
}
