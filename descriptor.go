package jsonbind

import "reflect"

// Descriptor is the immutable lookup key for adapter resolution. Two
// descriptors are equal iff they describe structurally identical types;
// Go's canonical reflect.Type values make that equality (and map
// hashing) exact, including for instantiated generic types, so no type
// variable ever reaches the registry unresolved.
type Descriptor struct {
	t reflect.Type
}

// Describe returns the descriptor for t.
func Describe(t reflect.Type) Descriptor {
	return Descriptor{t: t}
}

// DescriptorOf returns the descriptor for the dynamic type of v. A nil
// v yields the descriptor for any.
func DescriptorOf(v any) Descriptor {
	if v == nil {
		return DescriptorFor[any]()
	}
	return Descriptor{t: reflect.TypeOf(v)}
}

// DescriptorFor returns the descriptor for the type parameter T. Unlike
// DescriptorOf it preserves interface types instead of collapsing to
// the dynamic type.
func DescriptorFor[T any]() Descriptor {
	return Descriptor{t: reflect.TypeOf((*T)(nil)).Elem()}
}

// Reflect returns the underlying reflect.Type.
func (d Descriptor) Reflect() reflect.Type { return d.t }

// Kind returns the reflect.Kind of the described type.
func (d Descriptor) Kind() reflect.Kind {
	if d.t == nil {
		return reflect.Invalid
	}
	return d.t.Kind()
}

// IsValid reports whether the descriptor describes a type.
func (d Descriptor) IsValid() bool { return d.t != nil }

// IsInterface reports whether the described type is an interface. A
// value slotted into an interface-typed field carries its own runtime
// type, which drives the runtime-type serialization rule.
func (d Descriptor) IsInterface() bool {
	return d.t != nil && d.t.Kind() == reflect.Interface
}

// Args returns the parameter descriptors of a composite type: the
// element for pointers, slices and arrays, key and element for maps.
// Non-composite types have none.
func (d Descriptor) Args() []Descriptor {
	if d.t == nil {
		return nil
	}
	switch d.t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array:
		return []Descriptor{{t: d.t.Elem()}}
	case reflect.Map:
		return []Descriptor{{t: d.t.Key()}, {t: d.t.Elem()}}
	default:
		return nil
	}
}

// Equal reports structural equality.
func (d Descriptor) Equal(o Descriptor) bool { return d.t == o.t }

func (d Descriptor) String() string {
	if d.t == nil {
		return "<invalid>"
	}
	return d.t.String()
}
