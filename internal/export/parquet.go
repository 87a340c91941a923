package export

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/ginjaninja78/sas7bdat-converter/internal/dataset"
)

// parquetBatchRows is the number of rows handed to the writer at once.
const parquetBatchRows = 1024

// parquetField maps a column kind to a struct field type and parquet tag
// options. Every leaf is optional.
//
//   number   -> DOUBLE
//   text     -> BYTE_ARRAY (STRING)
//   date     -> INT32 (DATE, days since 1970-01-01)
//   datetime -> INT64 (TIMESTAMP, milliseconds, UTC)
func parquetField(kind dataset.Kind) (reflect.Type, string) {
	switch kind {
	case dataset.KindText:
		return reflect.TypeOf(""), "optional"
	case dataset.KindDate:
		return reflect.TypeOf(int32(0)), "optional,date"
	case dataset.KindDateTime:
		return reflect.TypeOf(int64(0)), "optional,timestamp(millisecond)"
	default:
		return reflect.TypeOf(float64(0)), "optional"
	}
}

// parquetSchema builds the schema for table with leaves in column order.
// parquet.Group sorts its fields by name, so the schema is derived from a
// struct type built at runtime instead. The returned slice holds the leaf
// column index of each table column.
func parquetSchema(table *dataset.Table) (*parquet.Schema, []int, error) {
	seen := make(map[string]bool, len(table.Columns))
	fields := make([]reflect.StructField, len(table.Columns))
	for j, col := range table.Columns {
		if seen[col.Name] {
			return nil, nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[col.Name] = true
		if col.Name == "" || strings.ContainsAny(col.Name, ",\"\\") {
			return nil, nil, fmt.Errorf("column name %q cannot be written to parquet", col.Name)
		}

		typ, options := parquetField(col.Kind)
		fields[j] = reflect.StructField{
			Name: fmt.Sprintf("C%d", j),
			Type: typ,
			Tag:  reflect.StructTag(fmt.Sprintf(`parquet:"%s,%s"`, col.Name, options)),
		}
	}

	schema := parquet.SchemaOf(reflect.New(reflect.StructOf(fields)).Elem().Interface())

	indexes := make([]int, len(table.Columns))
	for j, col := range table.Columns {
		leaf, ok := schema.Lookup(col.Name)
		if !ok {
			return nil, nil, fmt.Errorf("column %q missing from parquet schema", col.Name)
		}
		indexes[j] = leaf.ColumnIndex
	}
	return schema, indexes, nil
}

func writeParquet(w io.Writer, table *dataset.Table, _ Options) error {
	schema, indexes, err := parquetSchema(table)
	if err != nil {
		return err
	}

	writer := parquet.NewWriter(w, schema)

	batch := make([]parquet.Row, 0, parquetBatchRows)
	for row := 0; row < table.Rows; row++ {
		batch = append(batch, parquetRow(table, indexes, row))
		if len(batch) == parquetBatchRows {
			if _, err := writer.WriteRows(batch); err != nil {
				return fmt.Errorf("failed to write rows: %w", err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if _, err := writer.WriteRows(batch); err != nil {
			return fmt.Errorf("failed to write rows: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// parquetRow builds one record. Each optional leaf has definition level 1
// when present and 0 when null.
func parquetRow(table *dataset.Table, indexes []int, row int) parquet.Row {
	values := make(parquet.Row, len(table.Columns))
	for j, col := range table.Columns {
		index := indexes[j]
		if col.Missing[row] {
			values[index] = parquet.NullValue().Level(0, 0, index)
			continue
		}

		var value parquet.Value
		switch col.Kind {
		case dataset.KindText:
			value = parquet.ByteArrayValue([]byte(col.Texts[row]))
		case dataset.KindDate:
			value = parquet.Int32Value(int32(col.Times[row].Unix() / 86400))
		case dataset.KindDateTime:
			value = parquet.Int64Value(col.Times[row].UnixMilli())
		default:
			value = parquet.DoubleValue(col.Numbers[row])
		}
		values[index] = value.Level(0, 1, index)
	}
	return values
}
