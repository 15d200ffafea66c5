package output

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// Table is pre-built tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table with headers.
func (t *Table) Render(w io.Writer) error {
	return t.render(w, false)
}

func (t *Table) render(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// TableFormatter formats data as an aligned text table.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format implements Formatter. It accepts *Table, a struct, a slice of
// structs, a slice of scalars or a map; anything else is printed with %v.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}
	switch t := data.(type) {
	case *Table:
		return t.render(w, f.NoHeaders)
	case Table:
		return t.render(w, f.NoHeaders)
	}

	v := reflect.Indirect(reflect.ValueOf(data))
	var t *Table
	switch v.Kind() {
	case reflect.Struct:
		t = structTable(v, f.Wide)
	case reflect.Slice, reflect.Array:
		t = sliceTable(v, f.Wide)
	case reflect.Map:
		t = mapTable(v)
	default:
		_, err := fmt.Fprintln(w, cell(v))
		return err
	}
	return t.render(w, f.NoHeaders)
}

type column struct {
	index int
	name  string
}

// columns lists the visible fields of a struct type.
func columns(t reflect.Type, wide bool) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("table")
		if tag == "-" || (tag == "wide" && !wide) {
			continue
		}
		name := sf.Name
		if j, _, _ := strings.Cut(sf.Tag.Get("json"), ","); j != "" && j != "-" {
			name = j
		}
		cols = append(cols, column{index: i, name: name})
	}
	return cols
}

func structTable(v reflect.Value, wide bool) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, c := range columns(v.Type(), wide) {
		t.AddRow(c.name, cell(v.Field(c.index)))
	}
	return t
}

func sliceTable(v reflect.Value, wide bool) *Table {
	elem := v.Type().Elem()
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		t := &Table{Headers: []string{"VALUE"}}
		for i := 0; i < v.Len(); i++ {
			t.AddRow(cell(v.Index(i)))
		}
		return t
	}

	cols := columns(elem, wide)
	t := &Table{}
	for _, c := range cols {
		t.Headers = append(t.Headers, strings.ToUpper(c.name))
	}
	for i := 0; i < v.Len(); i++ {
		row := reflect.Indirect(v.Index(i))
		if !row.IsValid() {
			continue
		}
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = cell(row.Field(c.index))
		}
		t.AddRow(cells...)
	}
	return t
}

func mapTable(v reflect.Value) *Table {
	t := &Table{Headers: []string{"KEY", "VALUE"}}
	it := v.MapRange()
	for it.Next() {
		t.AddRow(cell(it.Key()), cell(it.Value()))
	}
	return t
}

var durationType = reflect.TypeOf(time.Duration(0))

// cell renders one value.
func cell(v reflect.Value) string {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return "-"
	}
	if v.Type() == durationType {
		return time.Duration(v.Int()).Round(time.Microsecond).String()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', 2, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice, reflect.Array, reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	}
	return fmt.Sprint(v.Interface())
}
