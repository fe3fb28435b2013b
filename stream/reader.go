package stream

import (
	"math"
	"strconv"

	"github.com/Station-Manager/errors"
	"github.com/goccy/go-json"
)

// Reader is a pull-based token reader over a complete JSON document.
// Peek reports the kind of the next token without consuming it; the
// typed consume methods (String, Bool, NumberText, ...) advance past
// exactly one token. Structural separators (commas, colons) are
// consumed implicitly.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	data    []byte
	pos     int
	peeked  Kind
	hasPeek bool
	lenient bool

	stack     []frame
	afterName bool
	docDone   bool
}

type frame struct {
	object bool
	n      int // children consumed (members for objects, elements for arrays)
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewReaderString returns a Reader over s.
func NewReaderString(s string) *Reader {
	return &Reader{data: []byte(s)}
}

// SetLenient controls whether numeric parsing tolerates values outside
// the float64 range. The default is strict: parsing a number whose
// magnitude overflows to infinity is an error.
func (r *Reader) SetLenient(v bool) { r.lenient = v }

// Pos returns the current byte offset, for error reporting.
func (r *Reader) Pos() int { return r.pos }

func (r *Reader) skipWhitespace() {
	for r.pos < len(r.data) {
		switch r.data[r.pos] {
		case ' ', '\t', '\n', '\r':
			r.pos++
		default:
			return
		}
	}
}

// Peek reports the kind of the next token without consuming it.
func (r *Reader) Peek() (Kind, error) {
	if r.hasPeek {
		return r.peeked, nil
	}
	k, err := r.lex()
	if err != nil {
		return KindEOF, err
	}
	r.peeked = k
	r.hasPeek = true
	return k, nil
}

func (r *Reader) lex() (Kind, error) {
	const op errors.Op = "stream.Reader.Peek"
	r.skipWhitespace()
	if r.pos >= len(r.data) {
		if len(r.stack) == 0 {
			return KindEOF, nil
		}
		return 0, errors.New(op).Msg(ErrMsgUnexpectedEOF)
	}
	if len(r.stack) == 0 && r.docDone {
		return 0, errors.New(op).Msg(ErrMsgTrailingData)
	}

	// Member-name position inside an object.
	if len(r.stack) > 0 {
		top := &r.stack[len(r.stack)-1]
		if top.object && !r.afterName {
			c := r.data[r.pos]
			if c == '}' {
				return KindEndObject, nil
			}
			if top.n > 0 {
				if c != ',' {
					return 0, errors.New(op).Errorf("expected ',' or '}' at offset %d, got %q", r.pos, c)
				}
				r.pos++
				r.skipWhitespace()
				if r.pos >= len(r.data) {
					return 0, errors.New(op).Msg(ErrMsgUnexpectedEOF)
				}
				c = r.data[r.pos]
			}
			if c != '"' {
				return 0, errors.New(op).Errorf("expected object member name at offset %d, got %q", r.pos, c)
			}
			return KindName, nil
		}
		if !top.object {
			c := r.data[r.pos]
			if c == ']' {
				return KindEndArray, nil
			}
			if top.n > 0 {
				if c != ',' {
					return 0, errors.New(op).Errorf("expected ',' or ']' at offset %d, got %q", r.pos, c)
				}
				r.pos++
				r.skipWhitespace()
				if r.pos >= len(r.data) {
					return 0, errors.New(op).Msg(ErrMsgUnexpectedEOF)
				}
			}
		}
	}

	switch c := r.data[r.pos]; {
	case c == '{':
		return KindBeginObject, nil
	case c == '[':
		return KindBeginArray, nil
	case c == '"':
		return KindString, nil
	case c == 't' || c == 'f':
		return KindBool, nil
	case c == 'n':
		return KindNull, nil
	case c == '-' || (c >= '0' && c <= '9'):
		return KindNumber, nil
	default:
		return 0, errors.New(op).Errorf("unexpected character %q at offset %d", c, r.pos)
	}
}

func (r *Reader) require(op errors.Op, want Kind) error {
	got, err := r.Peek()
	if err != nil {
		return err
	}
	if got != want {
		return errors.New(op).Errorf("expected %s but next token is %s at offset %d", want, got, r.pos)
	}
	r.hasPeek = false
	return nil
}

// valueDone records that one complete value has been consumed in the
// current context.
func (r *Reader) valueDone() {
	if len(r.stack) == 0 {
		r.docDone = true
		return
	}
	top := &r.stack[len(r.stack)-1]
	if top.object {
		r.afterName = false
	}
	top.n++
}

// BeginObject consumes the opening brace of an object.
func (r *Reader) BeginObject() error {
	const op errors.Op = "stream.Reader.BeginObject"
	if err := r.require(op, KindBeginObject); err != nil {
		return err
	}
	r.pos++
	r.stack = append(r.stack, frame{object: true})
	return nil
}

// EndObject consumes the closing brace of the current object.
func (r *Reader) EndObject() error {
	const op errors.Op = "stream.Reader.EndObject"
	if err := r.require(op, KindEndObject); err != nil {
		return err
	}
	r.pos++
	r.stack = r.stack[:len(r.stack)-1]
	r.valueDone()
	return nil
}

// BeginArray consumes the opening bracket of an array.
func (r *Reader) BeginArray() error {
	const op errors.Op = "stream.Reader.BeginArray"
	if err := r.require(op, KindBeginArray); err != nil {
		return err
	}
	r.pos++
	r.stack = append(r.stack, frame{})
	return nil
}

// EndArray consumes the closing bracket of the current array.
func (r *Reader) EndArray() error {
	const op errors.Op = "stream.Reader.EndArray"
	if err := r.require(op, KindEndArray); err != nil {
		return err
	}
	r.pos++
	r.stack = r.stack[:len(r.stack)-1]
	r.valueDone()
	return nil
}

// Name consumes an object member name together with its separating colon.
func (r *Reader) Name() (string, error) {
	const op errors.Op = "stream.Reader.Name"
	if err := r.require(op, KindName); err != nil {
		return "", err
	}
	s, err := r.parseString(op)
	if err != nil {
		return "", err
	}
	r.skipWhitespace()
	if r.pos >= len(r.data) || r.data[r.pos] != ':' {
		return "", errors.New(op).Errorf("expected ':' after member name %q at offset %d", s, r.pos)
	}
	r.pos++
	r.afterName = true
	return s, nil
}

// String consumes a string value.
func (r *Reader) String() (string, error) {
	const op errors.Op = "stream.Reader.String"
	if err := r.require(op, KindString); err != nil {
		return "", err
	}
	s, err := r.parseString(op)
	if err != nil {
		return "", err
	}
	r.valueDone()
	return s, nil
}

// Bool consumes a boolean value.
func (r *Reader) Bool() (bool, error) {
	const op errors.Op = "stream.Reader.Bool"
	if err := r.require(op, KindBool); err != nil {
		return false, err
	}
	if r.hasLiteral("true") {
		r.pos += 4
		r.valueDone()
		return true, nil
	}
	if r.hasLiteral("false") {
		r.pos += 5
		r.valueDone()
		return false, nil
	}
	return false, errors.New(op).Errorf("malformed literal at offset %d", r.pos)
}

// Null consumes a null value.
func (r *Reader) Null() error {
	const op errors.Op = "stream.Reader.Null"
	if err := r.require(op, KindNull); err != nil {
		return err
	}
	if !r.hasLiteral("null") {
		return errors.New(op).Errorf("malformed literal at offset %d", r.pos)
	}
	r.pos += 4
	r.valueDone()
	return nil
}

func (r *Reader) hasLiteral(lit string) bool {
	return r.pos+len(lit) <= len(r.data) && string(r.data[r.pos:r.pos+len(lit)]) == lit
}

// NumberText consumes a number value and returns its raw lexical text.
// The text is validated syntactically; its magnitude is not restricted.
func (r *Reader) NumberText() (string, error) {
	const op errors.Op = "stream.Reader.NumberText"
	if err := r.require(op, KindNumber); err != nil {
		return "", err
	}
	start := r.pos
	for r.pos < len(r.data) {
		c := r.data[r.pos]
		if c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' || (c >= '0' && c <= '9') {
			r.pos++
			continue
		}
		break
	}
	s := string(r.data[start:r.pos])
	// Syntax check only; the magnitude of the literal is unrestricted.
	if !validNumber(s) {
		return "", errors.New(op).Errorf("%s: %q at offset %d", ErrMsgMalformedNumber, s, start)
	}
	r.valueDone()
	return s, nil
}

// validNumber checks s against the JSON number grammar. Leading zeros,
// bare signs and dangling fraction or exponent parts are all rejected.
func validNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	switch {
	case i < len(s) && s[i] == '0':
		i++
	case i < len(s) && s[i] >= '1' && s[i] <= '9':
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		if i >= len(s) || s[i] < '0' || s[i] > '9' {
			return false
		}
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if i >= len(s) || s[i] < '0' || s[i] > '9' {
			return false
		}
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	return i == len(s)
}

// Float64 consumes a number value as a float64. In strict mode a
// literal whose magnitude overflows to infinity is rejected.
func (r *Reader) Float64() (float64, error) {
	const op errors.Op = "stream.Reader.Float64"
	s, err := r.NumberText()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			if r.lenient {
				return f, nil
			}
			return 0, errors.New(op).Errorf("%s: %q", ErrMsgNonFiniteNumber, s)
		}
		return 0, errors.New(op).Errorf("%s: %q", ErrMsgMalformedNumber, s)
	}
	if !r.lenient && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return 0, errors.New(op).Errorf("%s: %q", ErrMsgNonFiniteNumber, s)
	}
	return f, nil
}

// Int64 consumes a number value as an int64. The literal must be a
// whole number within the int64 range.
func (r *Reader) Int64() (int64, error) {
	const op errors.Op = "stream.Reader.Int64"
	s, err := r.NumberText()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.New(op).Errorf("cannot read %q as int64", s)
	}
	return n, nil
}

// Uint64 consumes a number value as a uint64.
func (r *Reader) Uint64() (uint64, error) {
	const op errors.Op = "stream.Reader.Uint64"
	s, err := r.NumberText()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.New(op).Errorf("cannot read %q as uint64", s)
	}
	return n, nil
}

// parseString parses a quoted JSON string starting at the current
// position. Escape handling and validation are delegated to the JSON
// library.
func (r *Reader) parseString(op errors.Op) (string, error) {
	start := r.pos
	if r.pos >= len(r.data) || r.data[r.pos] != '"' {
		return "", errors.New(op).Errorf("expected '\"' at offset %d", r.pos)
	}
	r.pos++
	for r.pos < len(r.data) {
		switch r.data[r.pos] {
		case '\\':
			r.pos += 2
		case '"':
			r.pos++
			raw := r.data[start:r.pos]
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return "", errors.New(op).Err(err)
			}
			return s, nil
		default:
			r.pos++
		}
	}
	return "", errors.New(op).Msg(ErrMsgUnexpectedEOF)
}

// SkipValue consumes and discards the next value, including nested
// containers.
func (r *Reader) SkipValue() error {
	k, err := r.Peek()
	if err != nil {
		return err
	}
	switch k {
	case KindBeginObject:
		if err := r.BeginObject(); err != nil {
			return err
		}
		for {
			k, err := r.Peek()
			if err != nil {
				return err
			}
			if k == KindEndObject {
				return r.EndObject()
			}
			if _, err := r.Name(); err != nil {
				return err
			}
			if err := r.SkipValue(); err != nil {
				return err
			}
		}
	case KindBeginArray:
		if err := r.BeginArray(); err != nil {
			return err
		}
		for {
			k, err := r.Peek()
			if err != nil {
				return err
			}
			if k == KindEndArray {
				return r.EndArray()
			}
			if err := r.SkipValue(); err != nil {
				return err
			}
		}
	case KindString:
		_, err := r.String()
		return err
	case KindNumber:
		_, err := r.NumberText()
		return err
	case KindBool:
		_, err := r.Bool()
		return err
	case KindNull:
		return r.Null()
	default:
		const op errors.Op = "stream.Reader.SkipValue"
		return errors.New(op).Errorf("expected a value but next token is %s at offset %d", k, r.pos)
	}
}

// RawValue consumes the next value and returns its raw bytes, exactly
// as they appear in the input (including any interior whitespace).
func (r *Reader) RawValue() ([]byte, error) {
	if _, err := r.Peek(); err != nil {
		return nil, err
	}
	start := r.pos
	if err := r.SkipValue(); err != nil {
		return nil, err
	}
	return r.data[start:r.pos], nil
}

// ExpectEOF reports an error unless the input is exhausted apart from
// trailing whitespace.
func (r *Reader) ExpectEOF() error {
	const op errors.Op = "stream.Reader.ExpectEOF"
	k, err := r.Peek()
	if err != nil {
		return err
	}
	if k != KindEOF {
		return errors.New(op).Errorf("%s: next token is %s at offset %d", ErrMsgTrailingData, k, r.pos)
	}
	return nil
}
