package registry

import (
	"errors"
	"testing"
)

func TestOrderedAdd(t *testing.T) {
	r := New[int]()

	if err := r.Add("a", 1, false); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := r.Add("b", 2, false); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	err := r.Add("a", 3, false)
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}

	if err := r.Add("a", 3, true); err != nil {
		t.Fatalf("forced add failed: %v", err)
	}
	v, err := r.Get("a")
	if err != nil || v != 3 {
		t.Errorf("expected 3, got %d (%v)", v, err)
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("forced add should keep position, got %v", names)
	}
}

func TestOrderedRemove(t *testing.T) {
	r := New[string]()
	for _, name := range []string{"x", "y", "z"} {
		if err := r.Add(name, name+"!", false); err != nil {
			t.Fatal(err)
		}
	}

	item, err := r.Remove("y")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if item != "y!" {
		t.Errorf("expected y!, got %s", item)
	}

	if _, err := r.Remove("y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Get("y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	z, err := r.Get("z")
	if err != nil || z != "z!" {
		t.Errorf("index not rebuilt after remove: %s (%v)", z, err)
	}

	items := r.Items()
	if len(items) != 2 || items[0] != "x!" || items[1] != "z!" {
		t.Errorf("unexpected items %v", items)
	}
}

func TestOrderedIteration(t *testing.T) {
	r := New[float64]()
	names := []string{"c", "a", "b"}
	for i, name := range names {
		_ = r.Add(name, float64(i), false)
	}

	i := 0
	for name, v := range r.All() {
		if name != names[i] || v != float64(i) {
			t.Errorf("position %d: got (%s, %f)", i, name, v)
		}
		i++
	}
	if i != 3 {
		t.Errorf("expected 3 items, iterated %d", i)
	}

	r.Clear()
	if r.Len() != 0 || r.Has("a") {
		t.Error("expected empty registry after clear")
	}
}
