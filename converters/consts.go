package converters

const (
	ErrMsgNotAString   = "Given value is not a string."
	ErrMsgNotABool     = "Given value is not a bool."
	ErrMsgNotAnInt64   = "Given value is not an int64."
	ErrMsgNotAFloat64  = "Given value is not a float64."
	ErrMsgBadTime      = "Bad timestamp, expected RFC 3339."
	ErrMsgBadDecimal   = "Bad decimal literal."
	ErrMsgBadJSON      = "Value is not valid JSON."
	ErrMsgWrongGoValue = "Adapter cannot serialize this Go value."
)
