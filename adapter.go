package jsonbind

import (
	"github.com/jsonbind/jsonbind/stream"
)

// Adapter converts between in-memory values and a JSON token stream
// for a single type. Read consumes exactly one value from the reader;
// Write emits exactly one value to the writer. An Adapter placed in a
// Codec is shared by all callers for the process lifetime and must be
// stateless or internally synchronized.
type Adapter interface {
	Read(r *stream.Reader) (any, error)
	Write(w *stream.Writer, v any) error
}

// ReadFunc is the read side of an Adapter as a plain function.
type ReadFunc func(r *stream.Reader) (any, error)

// WriteFunc is the write side of an Adapter as a plain function.
type WriteFunc func(w *stream.Writer, v any) error

// AdapterFuncs builds an Adapter from a read and a write function.
func AdapterFuncs(read ReadFunc, write WriteFunc) Adapter {
	return funcAdapter{read: read, write: write}
}

type funcAdapter struct {
	read  ReadFunc
	write WriteFunc
}

func (a funcAdapter) Read(r *stream.Reader) (any, error)  { return a.read(r) }
func (a funcAdapter) Write(w *stream.Writer, v any) error { return a.write(w, v) }

// NullSafe wraps an adapter so that JSON null reads as a nil value and
// nil values write as JSON null, without the wrapped adapter seeing
// either.
func NullSafe(a Adapter) Adapter {
	if _, ok := a.(nullSafeAdapter); ok {
		return a
	}
	return nullSafeAdapter{next: a}
}

type nullSafeAdapter struct {
	next Adapter
}

func (a nullSafeAdapter) Read(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == stream.KindNull {
		if err := r.Null(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return a.next.Read(r)
}

func (a nullSafeAdapter) Write(w *stream.Writer, v any) error {
	if v == nil {
		return w.Null()
	}
	return a.next.Write(w, v)
}

// defaultAdapter is the marker carried by the built-in reflective and
// dynamic adapters. The runtime-type serialization rule uses it to
// distinguish "the default converter" from user-supplied ones without
// comparing adapter identities.
type defaultAdapter interface {
	builtinDefault()
}

// isDefaultAdapter reports whether a, unwrapped of lazy and null-safe
// indirection, is one of the built-in default adapters.
func isDefaultAdapter(a Adapter) bool {
	for {
		switch x := a.(type) {
		case *lazyAdapter:
			next := x.resolved()
			if next == nil {
				return false
			}
			a = next
		case nullSafeAdapter:
			a = x.next
		default:
			_, ok := a.(defaultAdapter)
			return ok
		}
	}
}
