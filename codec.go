package jsonbind

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/jsonbind/jsonbind/stream"
)

// Factory produces adapters for descriptors on demand. Create returns
// (nil, nil) when the factory does not handle the descriptor, letting
// resolution continue down the chain. The Resolver handle is valid for
// the duration of the Create call; adapters that need resolution later
// (delegate fallback) should capture the Codec instead.
type Factory interface {
	Create(r Resolver, d Descriptor) (Adapter, error)
}

// Resolver is the handle a Factory uses to resolve adapters for other
// types while constructing its own. Resolutions made through it share
// one cycle-breaking context, so a factory may safely request a type
// that is currently being resolved further up the stack.
type Resolver interface {
	// Adapter resolves the adapter for d, consulting the cache and the
	// factory chain.
	Adapter(d Descriptor) (Adapter, error)

	// DelegateAdapter resolves the adapter for d starting one past skip
	// in the factory chain. The result is never cached.
	DelegateAdapter(skip Factory, d Descriptor) (Adapter, error)

	// Codec returns the owning codec, for capture in lazily-resolved
	// delegates.
	Codec() *Codec
}

// Codec resolves, caches and applies adapters. It is immutable after
// construction and safe for concurrent use. Build one with New,
// NewWithOptions or a Builder.
type Codec struct {
	factories []Factory
	cache     sync.Map // Descriptor -> Adapter
	options   Options
}

// Adapter resolves the adapter for d. Results are memoized: repeated
// calls for structurally equal descriptors return adapters with
// identical behavior. Concurrent first-time resolutions of the same
// descriptor may both run the factory chain; the cache insert is
// first-write-wins and the duplicate is discarded.
func (c *Codec) Adapter(d Descriptor) (Adapter, error) {
	if v, ok := c.cache.Load(d); ok {
		return v.(Adapter), nil
	}
	if !d.IsValid() {
		return nil, fmt.Errorf("%w: invalid descriptor", ErrUnsupportedType)
	}
	res := &resolution{codec: c, active: make(map[Descriptor]*lazyAdapter)}
	a, err := res.Adapter(d)
	if err != nil {
		return nil, err
	}
	res.commit()
	return a, nil
}

// AdapterFor resolves the adapter for the type parameter T.
func AdapterFor[T any](c *Codec) (Adapter, error) {
	return c.Adapter(DescriptorFor[T]())
}

// DelegateAdapter resolves the adapter for d as if the chain search
// had continued one past skip. This is the fallback lookup used by
// one-sided tree adapters: it finds the adapter that would have won
// without the registration that produced the caller, so a factory can
// never select itself as its own fallback. Results are not cached.
func (c *Codec) DelegateAdapter(skip Factory, d Descriptor) (Adapter, error) {
	res := &resolution{codec: c, active: make(map[Descriptor]*lazyAdapter)}
	return res.DelegateAdapter(skip, d)
}

// ObjectNumberPolicy returns the policy applied to numbers decoded
// into untyped (any) targets.
func (c *Codec) ObjectNumberPolicy() NumberPolicy { return c.options.ObjectNumbers }

// NumberNumberPolicy returns the policy applied to numbers decoded
// into Number targets.
func (c *Codec) NumberNumberPolicy() NumberPolicy { return c.options.NumberNumbers }

// resolution is the cycle-breaking context of one top-level resolution
// call. It lives on a single goroutine; racing resolutions each get
// their own, and duplicate construction is resolved by the cache's
// insert-if-absent.
type resolution struct {
	codec   *Codec
	active  map[Descriptor]*lazyAdapter
	created []createdEntry
}

type createdEntry struct {
	d Descriptor
	a Adapter
}

func (r *resolution) Codec() *Codec { return r.codec }

func (r *resolution) Adapter(d Descriptor) (Adapter, error) {
	if v, ok := r.codec.cache.Load(d); ok {
		return v.(Adapter), nil
	}
	if lz, ok := r.active[d]; ok {
		return lz, nil
	}

	lz := newLazyAdapter(d)
	r.active[d] = lz
	defer delete(r.active, d)

	for _, f := range r.codec.factories {
		a, err := f.Create(r, d)
		if err != nil {
			return nil, err
		}
		if a == nil {
			continue
		}
		lz.set(a)
		r.created = append(r.created, createdEntry{d: d, a: a})
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, d)
}

func (r *resolution) DelegateAdapter(skip Factory, d Descriptor) (Adapter, error) {
	start := -1
	for i, f := range r.codec.factories {
		if sameFactory(f, skip) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: factory chain does not contain the skipped factory", ErrUnsupportedType)
	}
	for _, f := range r.codec.factories[start:] {
		a, err := f.Create(r, d)
		if err != nil {
			return nil, err
		}
		if a != nil {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: no delegate for %s", ErrUnsupportedType, d)
}

// commit publishes every adapter constructed during a successful
// resolution. Publishing only after success keeps half-built adapters
// out of the shared cache; insert-if-absent keeps racing resolutions
// idempotent.
func (r *resolution) commit() {
	for _, e := range r.created {
		r.codec.cache.LoadOrStore(e.d, e.a)
	}
}

// Marshal serializes v to compact JSON using the adapter for v's
// runtime type.
func (c *Codec) Marshal(v any) ([]byte, error) {
	w := stream.NewWriter()
	if c.options.Lenient {
		w.SetLenient(true)
	}
	if err := c.MarshalWriter(w, v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// MarshalWriter serializes v as the next value on w.
func (c *Codec) MarshalWriter(w *stream.Writer, v any) error {
	if v == nil {
		return w.Null()
	}
	a, err := c.Adapter(DescriptorOf(v))
	if err != nil {
		return err
	}
	return a.Write(w, v)
}

// Unmarshal deserializes data into the value pointed to by v.
func (c *Codec) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("jsonbind: unmarshal target must be a non-nil pointer, got %T", v)
	}
	a, err := c.Adapter(Describe(rv.Type().Elem()))
	if err != nil {
		return err
	}
	r := stream.NewReader(data)
	if c.options.Lenient {
		r.SetLenient(true)
	}
	out, err := a.Read(r)
	if err != nil {
		return err
	}
	if err := r.ExpectEOF(); err != nil {
		return err
	}
	return assign(rv.Elem(), out)
}

// assign stores v into dst, converting when the types are compatible
// but not identical (an int64 from the wire into an int field, a
// string into a named string type).
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(dst.Type()):
		dst.Set(rv)
	case rv.Type().ConvertibleTo(dst.Type()) && convertible(rv.Type(), dst.Type()):
		dst.Set(rv.Convert(dst.Type()))
	default:
		return fmt.Errorf("jsonbind: cannot assign %s to %s", rv.Type(), dst.Type())
	}
	return nil
}

// convertible limits reflect conversions to value-preserving ones:
// numeric widths, named types over the same kind. It rules out the
// string/number cross-conversions reflect would otherwise permit.
func convertible(from, to reflect.Type) bool {
	fk, tk := from.Kind(), to.Kind()
	if isNumericKind(fk) && isNumericKind(tk) {
		return true
	}
	return fk == tk
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
