package jester

import "reflect"

// Resources is a type-keyed store for values shared between scenes, such as a
// score or loaded texture handles. At most one value per type is kept.
type Resources struct {
	m map[reflect.Type]any // values are *T
}

// NewResources creates an empty store.
func NewResources() *Resources {
	return &Resources{m: make(map[reflect.Type]any)}
}

// InsertResource stores v, replacing any previous value of type T.
func InsertResource[T any](r *Resources, v T) {
	r.m[reflect.TypeFor[T]()] = &v
}

// GetResource returns a copy of the stored T.
func GetResource[T any](r *Resources) (T, bool) {
	p, ok := ResourceMut[T](r)
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

// ResourceMut returns a pointer to the stored T for in-place updates.
func ResourceMut[T any](r *Resources) (*T, bool) {
	v, ok := r.m[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// TakeResource removes and returns the stored T.
func TakeResource[T any](r *Resources) (T, bool) {
	v, ok := GetResource[T](r)
	if ok {
		delete(r.m, reflect.TypeFor[T]())
	}
	return v, ok
}

// Len returns the number of stored values.
func (r *Resources) Len() int {
	return len(r.m)
}
