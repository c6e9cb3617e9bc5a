package snote

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var valueCmp = cmp.AllowUnexported(Value{})

func TestExtractKeyValues(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want KeyValues
	}{
		{"simple", "<A:1><B:two>", KeyValues{"A": Scalar("1"), "B": Scalar("two")}},
		{"duplicate", "<A:1><A:2>", KeyValues{"A": List("1", "2")}},
		{"triplicate", "<A:1><B:x><A:2><A:3>", KeyValues{"A": List("1", "2", "3"), "B": Scalar("x")}},
		{"empty_value", "<A:>", KeyValues{"A": Scalar("")}},
		{"extra_colon", "<A:1:2><B:3>", KeyValues{"B": Scalar("3")}},
		{"nested_brackets", "<A:<B:1>>", KeyValues{"B": Scalar("1")}},
		{"noise", "xx<A:1>yy\x00<B:2>", KeyValues{"A": Scalar("1"), "B": Scalar("2")}},
		{"nothing", "plain text", KeyValues{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractKeyValues([]byte(tc.in))
			if diff := cmp.Diff(tc.want, got, valueCmp); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractKeyValues_InvalidUTF8(t *testing.T) {
	kv := ExtractKeyValues([]byte("<TITLE:a\xffb>"))
	if got, _ := kv.Get("TITLE"); got != "a\uFFFDb" {
		t.Fatalf("got %q", got)
	}
}

func TestValueAccessors(t *testing.T) {
	s := Scalar("x")
	if s.IsList() || s.String() != "x" {
		t.Fatalf("scalar: %#v", s)
	}
	l := List("a", "b")
	if !l.IsList() || l.String() != "a" {
		t.Fatalf("list: %#v", l)
	}
	items := l.List()
	items[0] = "changed"
	if l.String() != "a" {
		t.Fatal("List must return a copy")
	}
	if (Value{}).String() != "" {
		t.Fatal("zero value must be empty")
	}
	if _, ok := (KeyValues{}).Get("missing"); ok {
		t.Fatal("expected missing")
	}
}

func TestGroupNested(t *testing.T) {
	kv := KeyValues{
		"FILE_FEATURE":     Scalar("24"),
		"FILE_ID":          Scalar("F1"),
		"PAGE1":            Scalar("100"),
		"PAGE10":           Scalar("200"),
		"STYLE_style_grid": Scalar("300"),
		"DIRTY":            Scalar("1"),
		"COVER_0":          List("0", "1"),
	}
	got := GroupNested(kv, "_", []string{"PAGE"})
	want := map[string]map[string]Value{
		"FILE":  {"FEATURE": Scalar("24"), "ID": Scalar("F1")},
		"PAGE":  {"1": Scalar("100"), "10": Scalar("200")},
		"STYLE": {"style_grid": Scalar("300")},
		"COVER": {"0": List("0", "1")},
	}
	if diff := cmp.Diff(want, got, valueCmp); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupNested_PrefixOrder(t *testing.T) {
	kv := KeyValues{"PAGEX1": Scalar("a"), "LAYER2": Scalar("b"), "OTHER": Scalar("c")}
	got := GroupNested(kv, "_", []string{"PAGEX", "PAGE", "LAYER"})
	want := map[string]map[string]Value{
		"PAGEX": {"1": Scalar("a")},
		"LAYER": {"2": Scalar("b")},
	}
	if diff := cmp.Diff(want, got, valueCmp); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupNested_Empty(t *testing.T) {
	if got := GroupNested(nil, "_", nil); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}
