package property

import (
	"maps"
	"slices"
)

// Instances maps property names to values. A missing key means no value is set, which
// is different from a key holding Null(). A nil Instances reads as empty and Set
// allocates it.
//
// Instances is not safe for concurrent mutation.
type Instances map[string]Value

// NewInstances creates an empty property store.
func NewInstances() Instances {
	return make(Instances)
}

// InstancesFrom converts a map of Go values with From.
func InstancesFrom(values map[string]any) (Instances, error) {
	props := make(Instances, len(values))
	for name, raw := range values {
		v, err := From(raw)
		if err != nil {
			return nil, err
		}
		props[name] = v
	}
	return props, nil
}

// Get returns the raw value of the named property.
func (p Instances) Get(name string) (Value, bool) {
	v, ok := p[name]
	return v, ok
}

// Set inserts or overwrites the named property, allocating the map of a nil
// Instances first.
func (p *Instances) Set(name string, value Value) {
	if *p == nil {
		*p = make(Instances)
	}
	(*p)[name] = value
}

// Has reports whether a value is set for name.
func (p Instances) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Delete removes the named property.
func (p Instances) Delete(name string) {
	delete(p, name)
}

// Names returns the property names in sorted order.
func (p Instances) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

// Len returns the number of properties.
func (p Instances) Len() int {
	return len(p)
}

// Clone returns a shallow copy. Values are immutable so the copy is independent.
func (p Instances) Clone() Instances {
	if p == nil {
		return NewInstances()
	}
	return maps.Clone(p)
}

// Require is the strict two-stage accessor: it returns ErrPropertyNotFound when the
// property is missing and a *TypeMismatchError when it has a different kind.
func (p Instances) Require(name string, kind Kind) (Value, error) {
	v, ok := p[name]
	if !ok {
		return Value{}, ErrPropertyNotFound
	}
	if v.kind != kind {
		return Value{}, &TypeMismatchError{Name: name, Expected: kind, Actual: v.kind}
	}
	return v, nil
}

// AsBool returns the named property if it is a bool.
func (p Instances) AsBool(name string) (bool, bool) {
	return p[name].AsBool()
}

// AsUint returns the named property if it is an unsigned integer.
func (p Instances) AsUint(name string) (uint64, bool) {
	return p[name].AsUint()
}

// AsInt returns the named property if it is a signed integer.
func (p Instances) AsInt(name string) (int64, bool) {
	return p[name].AsInt()
}

// AsFloat returns the named property if it is a float.
func (p Instances) AsFloat(name string) (float64, bool) {
	return p[name].AsFloat()
}

// AsString returns the named property if it is a string.
func (p Instances) AsString(name string) (string, bool) {
	return p[name].AsString()
}

// AsArray returns the named property if it is an array.
func (p Instances) AsArray(name string) ([]Value, bool) {
	return p[name].AsArray()
}

// AsObject returns the named property if it is an object.
func (p Instances) AsObject(name string) (map[string]Value, bool) {
	return p[name].AsObject()
}
