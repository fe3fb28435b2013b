package jsonbind

import "errors"

// Resolution and decoding failures are fatal to the call that hit
// them; nothing here is retried or recovered internally.
var (
	// ErrUnsupportedType reports that no factory, including the
	// built-ins, can produce an adapter for a descriptor.
	ErrUnsupportedType = errors.New("jsonbind: unsupported type")

	// ErrMalformedNumber reports numeric lexical text that a number
	// policy cannot accept.
	ErrMalformedNumber = errors.New("jsonbind: malformed JSON number")

	// ErrUnexpectedNull reports a null token where a non-null value is
	// required. Callers are expected to check the token kind first, so
	// hitting this is a contract violation rather than bad data.
	ErrUnexpectedNull = errors.New("jsonbind: unexpected JSON null")

	// ErrAdapterCycle reports that an adapter needed its own
	// not-yet-resolved delegate while still being constructed. The type
	// graph cannot be resolved even lazily.
	ErrAdapterCycle = errors.New("jsonbind: adapter resolution cycle")
)
