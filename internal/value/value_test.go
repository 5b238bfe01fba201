package value

import "testing"

func TestMergeDeepPreservesSiblings(t *testing.T) {
	lower := Mapping{"a": Map(Mapping{"x": Int(1)})}
	higher := Mapping{"a": Map(Mapping{"y": Int(2)})}

	merged := Merge(lower, higher)

	if got := GetInt(merged, "a.x", 0); got != 1 {
		t.Fatalf("a.x = %d, want 1", got)
	}
	if got := GetInt(merged, "a.y", 0); got != 2 {
		t.Fatalf("a.y = %d, want 2", got)
	}
}

func TestMergeScalarReplacesScalar(t *testing.T) {
	lower := Mapping{"db": Map(Mapping{"host": String("h1"), "port": Int(1)})}
	higher := Mapping{"db": Map(Mapping{"host": String("h2")})}

	merged := Merge(lower, higher)

	if got := Get(merged, "db.host", Null()).Str; got != "h2" {
		t.Fatalf("db.host = %q, want h2", got)
	}
	if got := GetInt(merged, "db.port", 0); got != 1 {
		t.Fatalf("db.port = %d, want 1 (untouched by higher)", got)
	}
}

func TestMergeSequenceReplacesNotConcatenates(t *testing.T) {
	lower := Mapping{"features": Seq(Sequence{String("a"), String("b")})}
	higher := Mapping{"features": Seq(Sequence{String("c")})}

	merged := Merge(lower, higher)

	got := GetList(merged, "features", nil)
	if len(got) != 1 || got[0] != "c" {
		t.Fatalf("features = %v, want [c]", got)
	}
}

func TestMergeNullReplacesNonNull(t *testing.T) {
	lower := Mapping{"x": String("hello")}
	higher := Mapping{"x": Null()}

	merged := Merge(lower, higher)
	if got := merged["x"]; got.Kind != KindNull {
		t.Fatalf("x = %+v, want null", got)
	}
}

func TestGetMissingSegmentReturnsDefault(t *testing.T) {
	m := Mapping{"a": Map(Mapping{"b": Int(1)})}
	if got := GetInt(m, "a.missing", 42); got != 42 {
		t.Fatalf("a.missing = %d, want default 42", got)
	}
	if got := GetInt(m, "a.b.c", 42); got != 42 {
		t.Fatalf("intermediate non-mapping: got %d, want default 42", got)
	}
}

func TestGetBoolLenientCoercion(t *testing.T) {
	m := Mapping{"debug": String("YES")}
	if !GetBool(m, "debug", false) {
		t.Fatal("expected debug=YES to coerce to true")
	}
}

func TestGetListCommaSeparated(t *testing.T) {
	m := Mapping{"tags": String(" a, b ,, c")}
	got := GetList(m, "tags", nil)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestAccessorCoercionIdempotence(t *testing.T) {
	m := Mapping{"n": String("42")}
	first := GetInt(m, "n", 0)
	m2 := Mapping{"n": Int(first)}
	second := GetInt(m2, "n", 0)
	if first != second {
		t.Fatalf("coercion not idempotent: %d != %d", first, second)
	}
}

func TestCanonicalizeRoundTripStable(t *testing.T) {
	v := Map(Mapping{
		"b": Int(2),
		"a": Seq(Sequence{String("x"), Bool(true)}),
	})
	c1 := Canonicalize(v)
	c2 := Canonicalize(v.Clone())
	if c1 != c2 {
		t.Fatalf("canonical form not stable: %q != %q", c1, c2)
	}
}
