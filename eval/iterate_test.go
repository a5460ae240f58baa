package eval

import "testing"

func TestIterateList(t *testing.T) {
	items, err := Iterate(&List{Items: []Value{int64(1), int64(2)}})
	if err != nil || len(items) != 2 {
		t.Fatalf("Iterate(list) = %v, %v", items, err)
	}
}

func TestIterateString(t *testing.T) {
	items, err := Iterate("abc")
	if err != nil {
		t.Fatalf("Iterate(string) error: %s", err)
	}
	if len(items) != 3 || items[0] != "a" {
		t.Errorf("Iterate(\"abc\") = %+v", items)
	}
}

func TestIterateDictYieldsKeys(t *testing.T) {
	d := NewDict()
	d.Set("a", int64(1))
	d.Set("b", int64(2))
	items, err := Iterate(d)
	if err != nil {
		t.Fatalf("Iterate(dict) error: %s", err)
	}
	if len(items) != 2 || items[0] != "a" || items[1] != "b" {
		t.Errorf("Iterate(dict) = %+v", items)
	}
}

func TestIterateRejectsNonIterable(t *testing.T) {
	if _, err := Iterate(int64(5)); err == nil {
		t.Error("expected an error iterating a non-iterable value")
	}
}
