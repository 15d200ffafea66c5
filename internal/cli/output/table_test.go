package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestTableFormatter_Struct(t *testing.T) {
	var buf bytes.Buffer
	in := &sample{Name: "long-set", Count: 42, Ratio: 0.875, Elapsed: 1500 * time.Millisecond, Secret: "s"}
	if err := (&TableFormatter{}).Format(&buf, in); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	got := lines(buf.String())
	want := [][]string{
		{"FIELD", "VALUE"},
		{"name", "long-set"},
		{"count", "42"},
		{"ratio", "0.88"},
		{"elapsed", "1.5s"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i, w := range want {
		if f := strings.Fields(got[i]); len(f) != 2 || f[0] != w[0] || f[1] != w[1] {
			t.Errorf("line %d = %q, want %v", i, got[i], w)
		}
	}
	if strings.Contains(buf.String(), "path") {
		t.Error("wide column shown without Wide")
	}
}

func TestTableFormatter_SliceWide(t *testing.T) {
	in := []*sample{
		{Name: "a", Count: 1, Path: "/tmp/a"},
		{Name: "b", Count: 2},
	}

	var narrow, wide bytes.Buffer
	if err := (&TableFormatter{}).Format(&narrow, in); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if err := (&TableFormatter{Wide: true}).Format(&wide, in); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if h := strings.Fields(lines(narrow.String())[0]); strings.Join(h, " ") != "NAME COUNT RATIO ELAPSED" {
		t.Errorf("narrow headers = %v", h)
	}
	if h := strings.Fields(lines(wide.String())[0]); h[len(h)-1] != "PATH" {
		t.Errorf("wide headers = %v", h)
	}
	if !strings.Contains(wide.String(), "/tmp/a") {
		t.Errorf("wide output missing path:\n%s", wide.String())
	}
	// Empty strings render as "-".
	if f := strings.Fields(lines(wide.String())[2]); f[len(f)-1] != "-" {
		t.Errorf("row 2 = %v, want trailing -", f)
	}
}

func TestTableFormatter_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	tbl := &Table{Headers: []string{"ID", "COUNT"}}
	tbl.AddRow("01H", "10")
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, tbl); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "01H  10" {
		t.Errorf("output = %q", got)
	}
}

func TestTableFormatter_Scalars(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []int64{3, 1}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := lines(buf.String()); len(got) != 3 || strings.TrimSpace(got[2]) != "1" {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	if err := (&TableFormatter{}).Format(&buf, "done"); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.String() != "done\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTableFormatter_Map(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, map[string]int{"entries": 5}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	got := lines(buf.String())
	if len(got) != 2 || strings.Join(strings.Fields(got[1]), " ") != "entries 5" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTableFormatter_Nil(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, nil); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("output = %q, want empty", buf.String())
	}
}
