package jester

import "testing"

type score struct{ points int }

func TestResourcesInsertGet(t *testing.T) {
	r := NewResources()
	InsertResource(r, score{points: 3})
	InsertResource(r, "title")

	s, ok := GetResource[score](r)
	if !ok || s.points != 3 {
		t.Errorf("GetResource[score] = %+v, %v", s, ok)
	}
	if name, _ := GetResource[string](r); name != "title" {
		t.Errorf("GetResource[string] = %q", name)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
}

func TestResourcesReplace(t *testing.T) {
	r := NewResources()
	InsertResource(r, score{points: 1})
	InsertResource(r, score{points: 2})
	if s, _ := GetResource[score](r); s.points != 2 {
		t.Errorf("points = %d, want 2", s.points)
	}
}

func TestResourceMut(t *testing.T) {
	r := NewResources()
	InsertResource(r, score{})
	p, ok := ResourceMut[score](r)
	if !ok {
		t.Fatal("ResourceMut not found")
	}
	p.points += 10
	if s, _ := GetResource[score](r); s.points != 10 {
		t.Errorf("points = %d, want 10", s.points)
	}
}

func TestResourcesTake(t *testing.T) {
	r := NewResources()
	InsertResource(r, score{points: 5})
	s, ok := TakeResource[score](r)
	if !ok || s.points != 5 {
		t.Errorf("TakeResource = %+v, %v", s, ok)
	}
	if _, ok := GetResource[score](r); ok {
		t.Error("resource still present after Take")
	}
	if _, ok := TakeResource[score](r); ok {
		t.Error("second Take succeeded")
	}
}

func TestResourcesMissing(t *testing.T) {
	r := NewResources()
	if _, ok := GetResource[int](r); ok {
		t.Error("GetResource on empty store succeeded")
	}
	if p, ok := ResourceMut[int](r); ok || p != nil {
		t.Error("ResourceMut on empty store succeeded")
	}
}
