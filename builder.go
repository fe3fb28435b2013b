package jsonbind

// Options configures a Codec. The zero value gives a float64 policy
// for both number targets; Build and NewWithOptions start from a
// lazily-parsed policy for Number targets before applying options.
type Options struct {
	ObjectNumbers NumberPolicy // policy for numbers decoded into any
	NumberNumbers NumberPolicy // policy for numbers decoded into Number
	Lenient       bool         // tolerate non-finite float64 values
}

// Option mutates Options.
type Option func(*Options)

// WithObjectNumberPolicy sets the policy for numbers decoded into
// untyped (any) targets.
func WithObjectNumberPolicy(p NumberPolicy) Option {
	return func(o *Options) { o.ObjectNumbers = p }
}

// WithNumberNumberPolicy sets the policy for numbers decoded into
// Number targets.
func WithNumberNumberPolicy(p NumberPolicy) Option {
	return func(o *Options) { o.NumberNumbers = p }
}

// WithLenient controls whether readers and writers produced by the
// codec tolerate non-finite float64 values.
func WithLenient(v bool) Option { return func(o *Options) { o.Lenient = v } }

// New creates a Codec with default options and no user registrations.
func New() *Codec { return NewWithOptions() }

// NewWithOptions creates a Codec with the provided options.
func NewWithOptions(opts ...Option) *Codec {
	return NewBuilder().WithOptions(opts...).Build()
}

// Builder accumulates registrations and options, then freezes them
// into an immutable Codec. Registration order matters: factories are
// consulted most-recent-first, so a later registration for a type wins
// over an earlier one, and every user registration wins over the
// built-ins. Builders are intended for single-threaded configuration.
type Builder struct {
	opts      []Option
	factories []Factory // user factories, in registration order
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithOptions appends codec options to the builder.
func (b *Builder) WithOptions(opts ...Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// RegisterFactory appends an adapter factory. Later factories take
// precedence over earlier ones.
func (b *Builder) RegisterFactory(f Factory) *Builder {
	b.factories = append(b.factories, f)
	return b
}

// RegisterAdapter registers a complete adapter for exactly the type
// described by d. It is wrapped into a single-type factory, so the
// usual precedence rules apply.
func (b *Builder) RegisterAdapter(d Descriptor, a Adapter) *Builder {
	return b.RegisterFactory(&singleTypeFactory{target: d, adapter: a})
}

// RegisterTreeAdapter registers a tree-shaped serializer and/or
// deserializer for exactly the type described by d. Either side may be
// nil; the missing side falls back to whatever adapter would have won
// without this registration.
func (b *Builder) RegisterTreeAdapter(d Descriptor, ser SerializeFunc, deser DeserializeFunc) *Builder {
	return b.RegisterFactory(&treeFactory{target: d, serialize: ser, deserialize: deser})
}

// RegisterSerializer registers only the write side for d; reads fall
// through to the next-best adapter.
func (b *Builder) RegisterSerializer(d Descriptor, ser SerializeFunc) *Builder {
	return b.RegisterTreeAdapter(d, ser, nil)
}

// RegisterDeserializer registers only the read side for d; writes fall
// through to the next-best adapter.
func (b *Builder) RegisterDeserializer(d Descriptor, deser DeserializeFunc) *Builder {
	return b.RegisterTreeAdapter(d, nil, deser)
}

// RegisterNumberPolicy applies p to untyped and/or Number decode
// targets.
func (b *Builder) RegisterNumberPolicy(p NumberPolicy, objectTarget, numberTarget bool) *Builder {
	if objectTarget {
		b.opts = append(b.opts, WithObjectNumberPolicy(p))
	}
	if numberTarget {
		b.opts = append(b.opts, WithNumberNumberPolicy(p))
	}
	return b
}

// Build freezes the configuration into a Codec. The factory chain is
// user registrations in reverse registration order followed by the
// built-in factories, which always occupy the tail in a fixed relative
// order. The builder may be reused afterwards; the codec is unaffected
// by later mutation.
func (b *Builder) Build() *Codec {
	state := Options{NumberNumbers: LazilyParsedPolicy}
	for _, f := range b.opts {
		f(&state)
	}

	chain := make([]Factory, 0, len(b.factories)+len(builtinFactories())+1)
	for i := len(b.factories) - 1; i >= 0; i-- {
		chain = append(chain, b.factories[i])
	}
	chain = append(chain, builtinFactories()...)

	return &Codec{factories: chain, options: state}
}
