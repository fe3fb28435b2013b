package stream

// Error message constants shared by Reader and Writer.
const (
	ErrMsgUnexpectedEOF    = "unexpected end of JSON input"
	ErrMsgTrailingData     = "trailing data after top-level value"
	ErrMsgNonFiniteNumber  = "JSON forbids NaN and infinities"
	ErrMsgMalformedNumber  = "malformed JSON number literal"
	ErrMsgNameOutsideValue = "name written outside of an object"
	ErrMsgValueWithoutName = "expected a member name before a value"
	ErrMsgDanglingName     = "value expected after object member name"
)
