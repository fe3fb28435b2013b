package jsonbind

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/jsonbind/jsonbind/stream"
)

// The built-in factories always occupy the tail of the chain, in this
// fixed relative order. Each Codec gets fresh instances so per-factory
// caches are not shared across configurations.
func builtinFactories() []Factory {
	return []Factory{
		&numberTargetFactory{},
		&timeFactory{},
		&primitiveFactory{},
		&dynamicFactory{},
		&ptrFactory{},
		&sliceFactory{},
		&mapFactory{},
		&structFactory{},
	}
}

// --- Number targets ---

var numberType = reflect.TypeOf(Number(""))

// numberTargetFactory serves fields declared as Number, applying the
// codec's number-target policy. It sits ahead of the primitive factory
// because Number's underlying kind is string.
type numberTargetFactory struct{}

func (f *numberTargetFactory) Create(r Resolver, d Descriptor) (Adapter, error) {
	if d.Reflect() != numberType {
		return nil, nil
	}
	return &numberTargetAdapter{codec: r.Codec()}, nil
}

type numberTargetAdapter struct {
	codec *Codec
}

func (a *numberTargetAdapter) Read(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == stream.KindNull {
		return nil, r.Null()
	}
	v, err := a.codec.options.NumberNumbers.ReadNumber(r)
	if err != nil {
		return nil, err
	}
	n, err := coerceNumber(v)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (a *numberTargetAdapter) Write(w *stream.Writer, v any) error {
	n, ok := v.(Number)
	if !ok {
		return fmt.Errorf("jsonbind: Number adapter cannot write %T", v)
	}
	if n == "" {
		return w.NumberText("0")
	}
	return w.NumberText(string(n))
}

// coerceNumber renders a policy result as raw lexical text.
func coerceNumber(v any) (Number, error) {
	switch x := v.(type) {
	case Number:
		return x, nil
	case int64:
		return Number(strconv.FormatInt(x, 10)), nil
	case float64:
		return Number(strconv.FormatFloat(x, 'g', -1, 64)), nil
	case fmt.Stringer:
		return Number(x.String()), nil
	default:
		return "", fmt.Errorf("jsonbind: cannot render %T as a number", v)
	}
}

// --- time.Time ---

var timeType = reflect.TypeOf(time.Time{})

type timeFactory struct{}

func (f *timeFactory) Create(r Resolver, d Descriptor) (Adapter, error) {
	if d.Reflect() != timeType {
		return nil, nil
	}
	return timeAdapter{}, nil
}

// timeAdapter reads and writes RFC 3339 timestamps.
type timeAdapter struct{}

func (timeAdapter) Read(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == stream.KindNull {
		return nil, r.Null()
	}
	s, err := r.String()
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("jsonbind: cannot parse %q as RFC 3339 time: %w", s, err)
	}
	return t, nil
}

func (timeAdapter) Write(w *stream.Writer, v any) error {
	t, ok := v.(time.Time)
	if !ok {
		return fmt.Errorf("jsonbind: time adapter cannot write %T", v)
	}
	return w.String(t.Format(time.RFC3339Nano))
}

// --- primitives ---

// primitiveFactory covers string, bool and all numeric kinds,
// including named types over those kinds. JSON null reads as the zero
// value.
type primitiveFactory struct{}

func (f *primitiveFactory) Create(r Resolver, d Descriptor) (Adapter, error) {
	t := d.Reflect()
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return &primitiveAdapter{typ: t}, nil
	default:
		return nil, nil
	}
}

type primitiveAdapter struct {
	typ reflect.Type
}

func (a *primitiveAdapter) Read(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == stream.KindNull {
		if err := r.Null(); err != nil {
			return nil, err
		}
		return reflect.Zero(a.typ).Interface(), nil
	}

	out := reflect.New(a.typ).Elem()
	switch a.typ.Kind() {
	case reflect.String:
		s, err := r.String()
		if err != nil {
			return nil, err
		}
		out.SetString(s)
	case reflect.Bool:
		b, err := r.Bool()
		if err != nil {
			return nil, err
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := r.Int64()
		if err != nil {
			return nil, err
		}
		if out.OverflowInt(n) {
			return nil, fmt.Errorf("jsonbind: %d overflows %s", n, a.typ)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := r.Uint64()
		if err != nil {
			return nil, err
		}
		if out.OverflowUint(n) {
			return nil, fmt.Errorf("jsonbind: %d overflows %s", n, a.typ)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		fv, err := r.Float64()
		if err != nil {
			return nil, err
		}
		if out.OverflowFloat(fv) {
			return nil, fmt.Errorf("jsonbind: %v overflows %s", fv, a.typ)
		}
		out.SetFloat(fv)
	}
	return out.Interface(), nil
}

func (a *primitiveAdapter) Write(w *stream.Writer, v any) error {
	if v == nil {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != a.typ {
		if !rv.Type().ConvertibleTo(a.typ) || rv.Kind() != a.typ.Kind() {
			return fmt.Errorf("jsonbind: adapter for %s cannot write %T", a.typ, v)
		}
		rv = rv.Convert(a.typ)
	}
	switch a.typ.Kind() {
	case reflect.String:
		return w.String(rv.String())
	case reflect.Bool:
		return w.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return w.Int64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return w.Uint64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return w.Float64(rv.Float())
	default:
		return fmt.Errorf("jsonbind: adapter for %s cannot write %T", a.typ, v)
	}
}

// --- interfaces ---

// dynamicFactory covers every interface type. Values read through it
// materialize as the generic JSON shapes; values written through it
// re-resolve against their runtime type.
type dynamicFactory struct{}

func (f *dynamicFactory) Create(r Resolver, d Descriptor) (Adapter, error) {
	if d.Kind() != reflect.Interface {
		return nil, nil
	}
	return &dynamicAdapter{codec: r.Codec()}, nil
}

type dynamicAdapter struct {
	codec *Codec
}

func (a *dynamicAdapter) builtinDefault() {}

func (a *dynamicAdapter) Read(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch k {
	case stream.KindNull:
		return nil, r.Null()
	case stream.KindBool:
		return r.Bool()
	case stream.KindString:
		return r.String()
	case stream.KindNumber:
		return a.codec.options.ObjectNumbers.ReadNumber(r)
	case stream.KindBeginArray:
		if err := r.BeginArray(); err != nil {
			return nil, err
		}
		out := []any{}
		for {
			k, err := r.Peek()
			if err != nil {
				return nil, err
			}
			if k == stream.KindEndArray {
				return out, r.EndArray()
			}
			elem, err := a.Read(r)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
	case stream.KindBeginObject:
		if err := r.BeginObject(); err != nil {
			return nil, err
		}
		out := map[string]any{}
		for {
			k, err := r.Peek()
			if err != nil {
				return nil, err
			}
			if k == stream.KindEndObject {
				return out, r.EndObject()
			}
			name, err := r.Name()
			if err != nil {
				return nil, err
			}
			member, err := a.Read(r)
			if err != nil {
				return nil, err
			}
			out[name] = member
		}
	default:
		return nil, fmt.Errorf("jsonbind: expected a value, got %s token", k)
	}
}

func (a *dynamicAdapter) Write(w *stream.Writer, v any) error {
	if v == nil {
		return w.Null()
	}
	// reflect.TypeOf never yields an interface type here, so this
	// resolution cannot come back to a dynamicAdapter.
	resolved, err := a.codec.Adapter(Descriptor{t: reflect.TypeOf(v)})
	if err != nil {
		return err
	}
	return resolved.Write(w, v)
}

// --- pointers ---

type ptrFactory struct{}

func (f *ptrFactory) Create(r Resolver, d Descriptor) (Adapter, error) {
	t := d.Reflect()
	if t.Kind() != reflect.Ptr {
		return nil, nil
	}
	elemDesc := Describe(t.Elem())
	elem, err := r.Adapter(elemDesc)
	if err != nil {
		return nil, err
	}
	return &ptrAdapter{codec: r.Codec(), typ: t, elemDesc: elemDesc, elem: elem}, nil
}

type ptrAdapter struct {
	codec    *Codec
	typ      reflect.Type
	elemDesc Descriptor
	elem     Adapter
}

func (a *ptrAdapter) Read(r *stream.Reader) (any, error) {
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
	v, err := a.elem.Read(r)
	if err != nil {
		return nil, err
	}
	p := reflect.New(a.typ.Elem())
	if err := assign(p.Elem(), v); err != nil {
		return nil, err
	}
	return p.Interface(), nil
}

func (a *ptrAdapter) Write(w *stream.Writer, v any) error {
	if v == nil {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return w.Null()
		}
		rv = rv.Elem()
	}
	wrapped := wrapRuntimeType(a.codec, a.elemDesc, a.elem)
	return wrapped.Write(w, rv.Interface())
}

// --- slices and arrays ---

type sliceFactory struct{}

func (f *sliceFactory) Create(r Resolver, d Descriptor) (Adapter, error) {
	t := d.Reflect()
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return nil, nil
	}
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return &byteSliceAdapter{typ: t}, nil
	}
	elemDesc := Describe(t.Elem())
	elem, err := r.Adapter(elemDesc)
	if err != nil {
		return nil, err
	}
	return &sliceAdapter{codec: r.Codec(), typ: t, elemDesc: elemDesc, elem: elem}, nil
}

// byteSliceAdapter round-trips byte slices through base64, the way
// every mainstream JSON codec does.
type byteSliceAdapter struct {
	typ reflect.Type
}

func (a *byteSliceAdapter) Read(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == stream.KindNull {
		return nil, r.Null()
	}
	s, err := r.String()
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("jsonbind: malformed base64 for %s: %w", a.typ, err)
	}
	out := reflect.MakeSlice(a.typ, len(data), len(data))
	reflect.Copy(out, reflect.ValueOf(data))
	return out.Interface(), nil
}

func (a *byteSliceAdapter) Write(w *stream.Writer, v any) error {
	if v == nil {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != a.typ {
		return fmt.Errorf("jsonbind: adapter for %s cannot write %T", a.typ, v)
	}
	return w.String(base64.StdEncoding.EncodeToString(rv.Bytes()))
}

type sliceAdapter struct {
	codec    *Codec
	typ      reflect.Type
	elemDesc Descriptor
	elem     Adapter
}

func (a *sliceAdapter) Read(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == stream.KindNull {
		if err := r.Null(); err != nil {
			return nil, err
		}
		if a.typ.Kind() == reflect.Array {
			return reflect.Zero(a.typ).Interface(), nil
		}
		return nil, nil
	}
	if err := r.BeginArray(); err != nil {
		return nil, err
	}

	var out reflect.Value
	if a.typ.Kind() == reflect.Array {
		out = reflect.New(a.typ).Elem()
	} else {
		out = reflect.MakeSlice(a.typ, 0, 8)
	}
	i := 0
	for {
		k, err := r.Peek()
		if err != nil {
			return nil, err
		}
		if k == stream.KindEndArray {
			break
		}
		v, err := a.elem.Read(r)
		if err != nil {
			return nil, fmt.Errorf("element %d of %s: %w", i, a.typ, err)
		}
		if a.typ.Kind() == reflect.Array {
			if i < out.Len() {
				if err := assign(out.Index(i), v); err != nil {
					return nil, fmt.Errorf("element %d of %s: %w", i, a.typ, err)
				}
			}
		} else {
			ev := reflect.New(a.typ.Elem()).Elem()
			if err := assign(ev, v); err != nil {
				return nil, fmt.Errorf("element %d of %s: %w", i, a.typ, err)
			}
			out = reflect.Append(out, ev)
		}
		i++
	}
	if err := r.EndArray(); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func (a *sliceAdapter) Write(w *stream.Writer, v any) error {
	if v == nil {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != a.typ {
		return fmt.Errorf("jsonbind: adapter for %s cannot write %T", a.typ, v)
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return w.Null()
	}
	if err := w.BeginArray(); err != nil {
		return err
	}
	wrapped := wrapRuntimeType(a.codec, a.elemDesc, a.elem)
	for i := 0; i < rv.Len(); i++ {
		if err := wrapped.Write(w, valueInterface(rv.Index(i))); err != nil {
			return fmt.Errorf("element %d of %s: %w", i, a.typ, err)
		}
	}
	return w.EndArray()
}

// --- maps ---

type mapFactory struct{}

func (f *mapFactory) Create(r Resolver, d Descriptor) (Adapter, error) {
	t := d.Reflect()
	if t.Kind() != reflect.Map {
		return nil, nil
	}
	switch t.Key().Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return nil, fmt.Errorf("%w: map key type %s", ErrUnsupportedType, t.Key())
	}
	elemDesc := Describe(t.Elem())
	elem, err := r.Adapter(elemDesc)
	if err != nil {
		return nil, err
	}
	return &mapAdapter{codec: r.Codec(), typ: t, elemDesc: elemDesc, elem: elem}, nil
}

type mapAdapter struct {
	codec    *Codec
	typ      reflect.Type
	elemDesc Descriptor
	elem     Adapter
}

func (a *mapAdapter) Read(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == stream.KindNull {
		return nil, r.Null()
	}
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	out := reflect.MakeMap(a.typ)
	for {
		k, err := r.Peek()
		if err != nil {
			return nil, err
		}
		if k == stream.KindEndObject {
			break
		}
		name, err := r.Name()
		if err != nil {
			return nil, err
		}
		key, err := a.parseKey(name)
		if err != nil {
			return nil, err
		}
		v, err := a.elem.Read(r)
		if err != nil {
			return nil, fmt.Errorf("member %q of %s: %w", name, a.typ, err)
		}
		ev := reflect.New(a.typ.Elem()).Elem()
		if err := assign(ev, v); err != nil {
			return nil, fmt.Errorf("member %q of %s: %w", name, a.typ, err)
		}
		out.SetMapIndex(key, ev)
	}
	if err := r.EndObject(); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func (a *mapAdapter) parseKey(name string) (reflect.Value, error) {
	kt := a.typ.Key()
	switch kt.Kind() {
	case reflect.String:
		return reflect.ValueOf(name).Convert(kt), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("jsonbind: cannot parse map key %q as %s", name, kt)
		}
		kv := reflect.New(kt).Elem()
		if kv.OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("jsonbind: map key %q overflows %s", name, kt)
		}
		kv.SetInt(n)
		return kv, nil
	default:
		n, err := strconv.ParseUint(name, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("jsonbind: cannot parse map key %q as %s", name, kt)
		}
		kv := reflect.New(kt).Elem()
		if kv.OverflowUint(n) {
			return reflect.Value{}, fmt.Errorf("jsonbind: map key %q overflows %s", name, kt)
		}
		kv.SetUint(n)
		return kv, nil
	}
}

func (a *mapAdapter) formatKey(key reflect.Value) string {
	switch key.Kind() {
	case reflect.String:
		return key.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(key.Int(), 10)
	default:
		return strconv.FormatUint(key.Uint(), 10)
	}
}

func (a *mapAdapter) Write(w *stream.Writer, v any) error {
	if v == nil {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != a.typ {
		return fmt.Errorf("jsonbind: adapter for %s cannot write %T", a.typ, v)
	}
	if rv.IsNil() {
		return w.Null()
	}
	if err := w.BeginObject(); err != nil {
		return err
	}

	type member struct {
		name string
		key  reflect.Value
	}
	members := make([]member, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		members = append(members, member{name: a.formatKey(k), key: k})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].name < members[j].name })

	wrapped := wrapRuntimeType(a.codec, a.elemDesc, a.elem)
	for _, m := range members {
		if err := w.Name(m.name); err != nil {
			return err
		}
		if err := wrapped.Write(w, valueInterface(rv.MapIndex(m.key))); err != nil {
			return fmt.Errorf("member %q of %s: %w", m.name, a.typ, err)
		}
	}
	return w.EndObject()
}
