package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// modelField is one writable column of a tagged struct.
type modelField struct {
	column string
	index  []int
}

var modelFields sync.Map // reflect.Type -> []modelField

// InsertModel builds a single-row INSERT from the `db` tags of a struct.
// Fields tagged `db:"-"` or `db:"name,readonly"` are skipped.
func InsertModel(table string, model any, suffix string, suffixArgs ...any) (string, []any, error) {
	value := reflect.Indirect(reflect.ValueOf(model))
	if !value.IsValid() {
		return "", nil, fmt.Errorf("model cannot be nil")
	}
	if value.Kind() != reflect.Struct {
		return "", nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	fields := fieldsOf(value.Type())
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("model %s has no db columns", value.Type().Name())
	}
	cols := make([]string, len(fields))
	vals := make([]any, len(fields))
	for i, f := range fields {
		cols[i] = f.column
		vals[i] = value.FieldByIndex(f.index).Interface()
	}

	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix, suffixArgs...).ToSQL()
}

func fieldsOf(typ reflect.Type) []modelField {
	if cached, ok := modelFields.Load(typ); ok {
		return cached.([]modelField)
	}
	var out []modelField
	for _, sf := range reflect.VisibleFields(typ) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" || strings.Contains(opts, "readonly") {
			continue
		}
		out = append(out, modelField{column: name, index: sf.Index})
	}
	modelFields.Store(typ, out)
	return out
}
