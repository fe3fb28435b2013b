package jsonbind

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"
	"github.com/goccy/go-json"

	"github.com/jsonbind/jsonbind/stream"
)

type fieldInfo struct {
	index            []int
	name             string
	jsonName         string
	typ              reflect.Type
	omitEmpty        bool
	ignore           bool
	isAdditionalData bool
}

// serializedName is the object member name the field reads from and
// writes to.
func (f *fieldInfo) serializedName() string {
	if f.jsonName != "" {
		return f.jsonName
	}
	return f.name
}

type structMetadata struct {
	fields              []fieldInfo
	fieldsByName        map[string]*fieldInfo
	additionalDataField *fieldInfo
}

// structFactory is the reflective catch-all at the tail of the chain.
// It builds adapters for struct types from field metadata, resolving
// one nested adapter per field through the surrounding resolution so
// that self-referential types terminate.
type structFactory struct {
	metadataCache sync.Map // reflect.Type -> *structMetadata
}

func (f *structFactory) Create(r Resolver, d Descriptor) (Adapter, error) {
	t := d.Reflect()
	if t.Kind() != reflect.Struct {
		return nil, nil
	}
	meta := f.getOrBuildMetadata(t)

	bound := make([]boundField, 0, len(meta.fields))
	bySerialized := make(map[string]*boundField, len(meta.fields))
	byGoName := make(map[string]*boundField, len(meta.fields))
	for i := range meta.fields {
		fi := &meta.fields[i]
		if fi.ignore || fi.isAdditionalData {
			continue
		}
		fa, err := r.Adapter(Describe(fi.typ))
		if err != nil {
			return nil, fmt.Errorf("field %s of %s: %w", fi.name, t, err)
		}
		bound = append(bound, boundField{info: fi, adapter: fa})
	}
	for i := range bound {
		bf := &bound[i]
		bySerialized[bf.info.serializedName()] = bf
		byGoName[bf.info.name] = bf
	}

	return &structAdapter{
		codec:          r.Codec(),
		typ:            t,
		fields:         bound,
		bySerialized:   bySerialized,
		byGoName:       byGoName,
		additionalData: meta.additionalDataField,
	}, nil
}

func (f *structFactory) getOrBuildMetadata(typ reflect.Type) *structMetadata {
	if cached, ok := f.metadataCache.Load(typ); ok {
		return cached.(*structMetadata)
	}
	meta := &structMetadata{
		fieldsByName: make(map[string]*fieldInfo),
	}
	buildFieldMetadata(typ, meta, nil)
	for i := range meta.fields {
		meta.fieldsByName[meta.fields[i].name] = &meta.fields[i]
	}
	if ad, ok := meta.fieldsByName["AdditionalData"]; ok && ad.isAdditionalData {
		meta.additionalDataField = ad
	}
	actual, _ := f.metadataCache.LoadOrStore(typ, meta)
	return actual.(*structMetadata)
}

func buildFieldMetadata(typ reflect.Type, meta *structMetadata, prefix []int) {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		idx := append(append([]int(nil), prefix...), i)
		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				buildFieldMetadata(ft, meta, idx)
				continue
			}
		}
		if f.PkgPath != "" {
			continue
		}
		adapterTag := f.Tag.Get("adapter")
		ignore := adapterTag == "ignore" || adapterTag == "-"
		jsonName := ""
		omitEmpty := false
		if jt, ok := f.Tag.Lookup("json"); ok {
			name, rest, _ := cutTag(jt)
			if name == "-" && rest == "" {
				ignore = true
			} else if name != "-" {
				jsonName = name
			}
			for rest != "" {
				var opt string
				opt, rest, _ = cutTag(rest)
				if opt == "omitempty" {
					omitEmpty = true
				}
			}
		}
		isAD := f.Name == "AdditionalData" &&
			(f.Type == reflect.TypeOf(null.JSON{}) || f.Type == reflect.TypeOf(boilertypes.JSON{}))
		meta.fields = append(meta.fields, fieldInfo{
			index:            idx,
			name:             f.Name,
			jsonName:         jsonName,
			typ:              f.Type,
			omitEmpty:        omitEmpty,
			ignore:           ignore,
			isAdditionalData: isAD,
		})
	}
}

func cutTag(s string) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

type boundField struct {
	info    *fieldInfo
	adapter Adapter
}

// structAdapter is the default reflective converter for struct types.
type structAdapter struct {
	codec          *Codec
	typ            reflect.Type
	fields         []boundField
	bySerialized   map[string]*boundField
	byGoName       map[string]*boundField
	additionalData *fieldInfo
}

func (a *structAdapter) builtinDefault() {}

// fieldFor resolves an input member name against serialized (tag)
// names first, then plain Go field names, so a tag rename can never be
// shadowed by another field's Go name.
func (a *structAdapter) fieldFor(name string) *boundField {
	if bf, ok := a.bySerialized[name]; ok {
		return bf
	}
	return a.byGoName[name]
}

func (a *structAdapter) Read(r *stream.Reader) (any, error) {
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
	if err := r.BeginObject(); err != nil {
		return nil, err
	}

	out := reflect.New(a.typ).Elem()
	var extras map[string]json.RawMessage

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
		bf := a.fieldFor(name)
		if bf == nil {
			if a.additionalData != nil {
				raw, err := r.RawValue()
				if err != nil {
					return nil, err
				}
				if extras == nil {
					extras = make(map[string]json.RawMessage)
				}
				extras[name] = append(json.RawMessage(nil), raw...)
				continue
			}
			if err := r.SkipValue(); err != nil {
				return nil, err
			}
			continue
		}
		v, err := bf.adapter.Read(r)
		if err != nil {
			return nil, fmt.Errorf("reading field %s of %s: %w", bf.info.name, a.typ, err)
		}
		dst, ok := fieldByIndexAlloc(out, bf.info.index)
		if !ok {
			continue
		}
		if err := assign(dst, v); err != nil {
			return nil, fmt.Errorf("field %s of %s: %w", bf.info.name, a.typ, err)
		}
	}
	if err := r.EndObject(); err != nil {
		return nil, err
	}

	if len(extras) > 0 && a.additionalData != nil {
		if err := a.storeAdditionalData(out, extras); err != nil {
			return nil, err
		}
	}
	return out.Interface(), nil
}

func (a *structAdapter) storeAdditionalData(out reflect.Value, extras map[string]json.RawMessage) error {
	data, err := json.Marshal(extras)
	if err != nil {
		return fmt.Errorf("marshaling unmatched members of %s: %w", a.typ, err)
	}
	dst, ok := fieldByIndexAlloc(out, a.additionalData.index)
	if !ok {
		return nil
	}
	switch a.additionalData.typ {
	case reflect.TypeOf(null.JSON{}):
		dst.Set(reflect.ValueOf(null.JSONFrom(data)))
	case reflect.TypeOf(boilertypes.JSON{}):
		dst.Set(reflect.ValueOf(boilertypes.JSON(data)))
	}
	return nil
}

func (a *structAdapter) Write(w *stream.Writer, v any) error {
	if v == nil {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return w.Null()
		}
		rv = rv.Elem()
	}
	if rv.Type() != a.typ {
		return fmt.Errorf("jsonbind: adapter for %s cannot write %T", a.typ, v)
	}

	if err := w.BeginObject(); err != nil {
		return err
	}
	for i := range a.fields {
		bf := &a.fields[i]
		fv, ok := safeFieldByIndex(rv, bf.info.index)
		if !ok {
			continue
		}
		if bf.info.omitEmpty && fv.IsZero() {
			continue
		}
		if err := w.Name(bf.info.serializedName()); err != nil {
			return err
		}
		wrapped := wrapRuntimeType(a.codec, Describe(bf.info.typ), bf.adapter)
		if err := wrapped.Write(w, valueInterface(fv)); err != nil {
			return fmt.Errorf("writing field %s of %s: %w", bf.info.name, a.typ, err)
		}
	}
	if a.additionalData != nil {
		if err := a.writeAdditionalData(w, rv); err != nil {
			return err
		}
	}
	return w.EndObject()
}

func (a *structAdapter) writeAdditionalData(w *stream.Writer, rv reflect.Value) error {
	fv, ok := safeFieldByIndex(rv, a.additionalData.index)
	if !ok {
		return nil
	}
	var raw []byte
	switch x := fv.Interface().(type) {
	case null.JSON:
		if !x.Valid {
			return nil
		}
		raw = x.JSON
	case boilertypes.JSON:
		if len(x) == 0 {
			return nil
		}
		raw = x
	default:
		return nil
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return fmt.Errorf("unmarshaling AdditionalData of %s: %w", a.typ, err)
	}
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if a.fieldFor(name) != nil {
			// A literal member always wins over AdditionalData.
			continue
		}
		if err := w.Name(name); err != nil {
			return err
		}
		if err := w.Raw(members[name]); err != nil {
			return err
		}
	}
	return nil
}

// valueInterface returns fv as an any, mapping a nil interface or nil
// pointer field to a plain nil so adapters see the absence uniformly.
func valueInterface(fv reflect.Value) any {
	switch fv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map:
		if fv.IsNil() {
			return nil
		}
	}
	return fv.Interface()
}

// safeFieldByIndex walks an index path, stopping at nil embedded
// pointers.
func safeFieldByIndex(val reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return reflect.Value{}, false
			}
			val = val.Elem()
		}
		val = val.Field(x)
	}
	return val, true
}

// fieldByIndexAlloc walks an index path for writing, allocating nil
// embedded pointers along the way.
func fieldByIndexAlloc(val reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && val.Kind() == reflect.Ptr {
			if val.IsNil() {
				if !val.CanSet() {
					return reflect.Value{}, false
				}
				val.Set(reflect.New(val.Type().Elem()))
			}
			val = val.Elem()
		}
		val = val.Field(x)
	}
	return val, true
}
