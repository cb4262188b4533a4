package serialize

import (
	"bytes"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// IPC serializes a Table as an Arrow IPC stream.
//
// Column types are inferred from the first non-NULL value per column:
// booleans, integers (widened to int64) and floats (widened to float64)
// keep their type, everything else is rendered as a string. All-NULL
// columns become string columns.
func IPC(t *Table, allocator memory.Allocator) ([]byte, error) {
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, len(t.Columns))
	for i, name := range t.Columns {
		fields[i] = arrow.Field{Name: name, Type: columnType(t, i), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(allocator, schema)
	defer builder.Release()

	for _, row := range t.Rows {
		for i, v := range row {
			if err := appendValue(builder.Field(i), v); err != nil {
				return nil, fmt.Errorf("serialize: column %q: %w", t.Columns[i], err)
			}
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(allocator))
	if err := w.Write(record); err != nil {
		w.Close()
		return nil, fmt.Errorf("serialize: write record: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("serialize: close writer: %w", err)
	}
	return buf.Bytes(), nil
}

// columnType infers the Arrow type of column i from its first non-NULL value.
func columnType(t *Table, i int) arrow.DataType {
	for _, row := range t.Rows {
		switch row[i].(type) {
		case nil:
			continue
		case bool:
			return arrow.FixedWidthTypes.Boolean
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
			return arrow.PrimitiveTypes.Int64
		case float32, float64:
			return arrow.PrimitiveTypes.Float64
		default:
			return arrow.BinaryTypes.String
		}
	}
	return arrow.BinaryTypes.String
}

// appendValue appends one driver value to a column builder.
func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch b := b.(type) {
	case *array.BooleanBuilder:
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		b.Append(bv)

	case *array.Int64Builder:
		iv, ok := toInt64(v)
		if !ok {
			return fmt.Errorf("expected integer, got %T", v)
		}
		b.Append(iv)

	case *array.Float64Builder:
		switch fv := v.(type) {
		case float64:
			b.Append(fv)
		case float32:
			b.Append(float64(fv))
		default:
			return fmt.Errorf("expected float, got %T", v)
		}

	case *array.StringBuilder:
		b.Append(stringValue(v))

	default:
		return fmt.Errorf("unsupported builder %T", b)
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	default:
		return 0, false
	}
}

func stringValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}
