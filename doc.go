// Package jsonbind converts between Go values and JSON through a
// chain of type adapter factories.
//
// A Codec holds an ordered factory chain. Resolving a type walks the
// chain and the first factory that accepts the type supplies its
// adapter; later registrations are consulted first, so a custom
// adapter always beats the built-ins.
//
// Basic Usage
//
//	codec := jsonbind.New()
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Custom Adapters
//
// Register full adapters, or one-sided serialize/deserialize
// functions that work on generic JSON trees:
//
//	codec := jsonbind.NewBuilder().
//		RegisterAdapter(jsonbind.DescriptorFor[ID](), idAdapter).
//		RegisterSerializer(jsonbind.DescriptorFor[Point](), pointToTree).
//		Build()
//
// A one-sided registration keeps the other direction on whatever
// adapter the rest of the chain would have produced.
//
// # Number Policies
//
// Numbers decoded into untyped (any) or Number targets go through a
// configurable policy: Double, LazilyParsed, LongOrDouble or
// BigDecimal. See NumberPolicy.
//
// # Struct Binding
//
// Exported struct fields bind by name, honouring json tags for
// renames and omitempty. Fields tagged `adapter:"ignore"` or
// `adapter:"-"` are skipped. Embedded structs, including pointers to
// structs, are flattened. An AdditionalData field of type null.JSON
// or sqlboiler types.JSON captures input members that match no field
// and is spliced back into the output.
//
// # Thread Safety
//
// A Codec is immutable after construction and safe for concurrent
// use. Adapter resolution is memoized; concurrent first resolutions
// of one type may build duplicate adapters, with one winning the
// cache.
package jsonbind
