package stream

// Kind identifies the kind of the next JSON token in a Reader, or the
// kind of token a Writer emits.
type Kind uint8

const (
	KindEOF Kind = iota

	// Structural
	KindBeginObject // {
	KindEndObject   // }
	KindBeginArray  // [
	KindEndArray    // ]
	KindName        // object member name

	// Values
	KindString
	KindNumber
	KindBool
	KindNull
)

// String returns the token kind name.
func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindBeginObject:
		return "BEGIN_OBJECT"
	case KindEndObject:
		return "END_OBJECT"
	case KindBeginArray:
		return "BEGIN_ARRAY"
	case KindEndArray:
		return "END_ARRAY"
	case KindName:
		return "NAME"
	case KindString:
		return "STRING"
	case KindNumber:
		return "NUMBER"
	case KindBool:
		return "BOOL"
	case KindNull:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}
