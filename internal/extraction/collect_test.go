package extraction

import (
	"slices"
	"testing"
)

func TestCollect_TrimsNestedStrings(t *testing.T) {
	input := Object(
		Field("a", String("  x ")),
		Field("b", Array(Null(), Number("1"), String(" y"), Object(Field("c", String("z  "))))),
	)

	got := Collect(input)
	want := []string{"x", "y", "z"}
	if !slices.Equal(got, want) {
		t.Errorf("Collect() = %q, want %q", got, want)
	}
}

func TestCollect_IgnoresNonStrings(t *testing.T) {
	input := Object(
		Field("a", Number("0")),
		Field("b", Bool(false)),
		Field("d", Null()),
		Field("e", Array(String("   "))),
	)

	if got := Collect(input); len(got) != 0 {
		t.Errorf("expected no strings, got %q", got)
	}
}

func TestCollect_NullRoot(t *testing.T) {
	got := Collect(Null())
	if got == nil {
		t.Fatal("expected empty non-nil result")
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestCollect_ArrayRoot(t *testing.T) {
	got := Collect(Array(String(" a "), Number("1"), Object(Field("x", String(" b ")))))
	want := []string{"a", "b"}
	if !slices.Equal(got, want) {
		t.Errorf("Collect() = %q, want %q", got, want)
	}
}

func TestCollect_PreservesMemberOrder(t *testing.T) {
	input := Object(
		Field("zeta", String("first")),
		Field("alpha", String("second")),
		Field("mid", String("third")),
	)

	got := Collect(input)
	want := []string{"first", "second", "third"}
	if !slices.Equal(got, want) {
		t.Errorf("Collect() = %q, want %q", got, want)
	}
}

func nested(depth int, leaf Value) Value {
	v := leaf
	for i := 0; i < depth; i++ {
		v = Array(v)
	}
	return v
}

func TestCollect_DepthGuard(t *testing.T) {
	// Leaf at exactly MaxDepth is still collected
	got := Collect(Array(String("shallow"), nested(MaxDepth-1, String("edge"))))
	want := []string{"shallow", "edge"}
	if !slices.Equal(got, want) {
		t.Errorf("Collect() = %q, want %q", got, want)
	}

	// Anything deeper is dropped without panicking
	got = Collect(Array(String("shallow"), nested(MaxDepth+50, String("deep"))))
	want = []string{"shallow"}
	if !slices.Equal(got, want) {
		t.Errorf("Collect() = %q, want %q", got, want)
	}
}

func TestFromAny(t *testing.T) {
	input := map[string]any{
		"b": []any{" two ", 2.5, nil, true},
		"a": "one",
		"c": map[string]any{"x": "three", "y": 3},
		"d": struct{}{},
	}

	got := Collect(FromAny(input))
	want := []string{"one", "two", "three"}
	if !slices.Equal(got, want) {
		t.Errorf("Collect(FromAny()) = %q, want %q", got, want)
	}
}
