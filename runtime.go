package jsonbind

import (
	"reflect"

	"github.com/jsonbind/jsonbind/stream"
)

// runtimeTypeAdapter arbitrates, once per write, between the adapter
// resolved for a slot's declared type and the adapter for the value's
// actual runtime type. Container adapters wrap every element and field
// adapter in one of these before writing.
//
// The decision rule:
//  1. Declared any: always use the runtime type's adapter. The
//     declared type says nothing about the value.
//  2. Declared-type adapter is a built-in default (reflective or
//     dynamic) and the runtime type differs: use the runtime type's
//     adapter, so that fields present only on the concrete type still
//     serialize.
//  3. Otherwise the declared-type adapter is user-supplied: it wins
//     regardless of the runtime type. A custom adapter registered for
//     an interface applies to every implementation.
//
// Reads always go through the declared-type adapter; the runtime type
// of a value that does not exist yet is meaningless.
type runtimeTypeAdapter struct {
	codec    *Codec
	declared Descriptor
	delegate Adapter
}

func wrapRuntimeType(c *Codec, declared Descriptor, delegate Adapter) Adapter {
	return &runtimeTypeAdapter{codec: c, declared: declared, delegate: delegate}
}

func (a *runtimeTypeAdapter) Read(r *stream.Reader) (any, error) {
	return a.delegate.Read(r)
}

func (a *runtimeTypeAdapter) Write(w *stream.Writer, v any) error {
	chosen := a.delegate
	if v != nil {
		runtime := Descriptor{t: reflect.TypeOf(v)}
		switch {
		case a.declared.Reflect() == anyType:
			resolved, err := a.codec.Adapter(runtime)
			if err != nil {
				return err
			}
			chosen = resolved
		case isDefaultAdapter(a.delegate) && !runtime.Equal(a.declared):
			resolved, err := a.codec.Adapter(runtime)
			if err != nil {
				return err
			}
			chosen = resolved
		}
	}
	return chosen.Write(w, v)
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()
