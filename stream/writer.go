package stream

import (
	"math"
	"strconv"

	"github.com/Station-Manager/errors"
	"github.com/goccy/go-json"
)

// Writer is a push-based token writer producing a compact JSON
// document. Calls must form a well-nested token sequence; structural
// separators are emitted implicitly.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	buf     []byte
	lenient bool

	stack     []frame
	afterName bool
	docDone   bool
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// SetLenient controls whether non-finite float64 values are written.
// The default is strict: NaN and infinities are rejected.
func (w *Writer) SetLenient(v bool) { w.lenient = v }

// Bytes returns the document written so far.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) beforeValue(op errors.Op) error {
	if w.afterName {
		w.afterName = false
		return nil
	}
	if len(w.stack) == 0 {
		if w.docDone {
			return errors.New(op).Msg(ErrMsgTrailingData)
		}
		return nil
	}
	top := &w.stack[len(w.stack)-1]
	if top.object {
		return errors.New(op).Msg(ErrMsgValueWithoutName)
	}
	if top.n > 0 {
		w.buf = append(w.buf, ',')
	}
	return nil
}

func (w *Writer) valueDone() {
	if len(w.stack) == 0 {
		w.docDone = true
		return
	}
	w.stack[len(w.stack)-1].n++
}

// BeginObject emits an opening brace.
func (w *Writer) BeginObject() error {
	const op errors.Op = "stream.Writer.BeginObject"
	if err := w.beforeValue(op); err != nil {
		return err
	}
	w.buf = append(w.buf, '{')
	w.stack = append(w.stack, frame{object: true})
	return nil
}

// EndObject emits a closing brace.
func (w *Writer) EndObject() error {
	const op errors.Op = "stream.Writer.EndObject"
	if len(w.stack) == 0 || !w.stack[len(w.stack)-1].object {
		return errors.New(op).Msg("no open object")
	}
	if w.afterName {
		return errors.New(op).Msg(ErrMsgDanglingName)
	}
	w.buf = append(w.buf, '}')
	w.stack = w.stack[:len(w.stack)-1]
	w.valueDone()
	return nil
}

// BeginArray emits an opening bracket.
func (w *Writer) BeginArray() error {
	const op errors.Op = "stream.Writer.BeginArray"
	if err := w.beforeValue(op); err != nil {
		return err
	}
	w.buf = append(w.buf, '[')
	w.stack = append(w.stack, frame{})
	return nil
}

// EndArray emits a closing bracket.
func (w *Writer) EndArray() error {
	const op errors.Op = "stream.Writer.EndArray"
	if len(w.stack) == 0 || w.stack[len(w.stack)-1].object {
		return errors.New(op).Msg("no open array")
	}
	w.buf = append(w.buf, ']')
	w.stack = w.stack[:len(w.stack)-1]
	w.valueDone()
	return nil
}

// Name emits an object member name together with its separating colon.
func (w *Writer) Name(s string) error {
	const op errors.Op = "stream.Writer.Name"
	if len(w.stack) == 0 || !w.stack[len(w.stack)-1].object {
		return errors.New(op).Msg(ErrMsgNameOutsideValue)
	}
	if w.afterName {
		return errors.New(op).Msg(ErrMsgDanglingName)
	}
	if w.stack[len(w.stack)-1].n > 0 {
		w.buf = append(w.buf, ',')
	}
	if err := w.appendQuoted(op, s); err != nil {
		return err
	}
	w.buf = append(w.buf, ':')
	w.afterName = true
	return nil
}

// String emits a string value.
func (w *Writer) String(s string) error {
	const op errors.Op = "stream.Writer.String"
	if err := w.beforeValue(op); err != nil {
		return err
	}
	if err := w.appendQuoted(op, s); err != nil {
		return err
	}
	w.valueDone()
	return nil
}

// Bool emits a boolean value.
func (w *Writer) Bool(v bool) error {
	const op errors.Op = "stream.Writer.Bool"
	if err := w.beforeValue(op); err != nil {
		return err
	}
	if v {
		w.buf = append(w.buf, "true"...)
	} else {
		w.buf = append(w.buf, "false"...)
	}
	w.valueDone()
	return nil
}

// Null emits a null value.
func (w *Writer) Null() error {
	const op errors.Op = "stream.Writer.Null"
	if err := w.beforeValue(op); err != nil {
		return err
	}
	w.buf = append(w.buf, "null"...)
	w.valueDone()
	return nil
}

// Int64 emits an integer value.
func (w *Writer) Int64(v int64) error {
	const op errors.Op = "stream.Writer.Int64"
	if err := w.beforeValue(op); err != nil {
		return err
	}
	w.buf = strconv.AppendInt(w.buf, v, 10)
	w.valueDone()
	return nil
}

// Uint64 emits an unsigned integer value.
func (w *Writer) Uint64(v uint64) error {
	const op errors.Op = "stream.Writer.Uint64"
	if err := w.beforeValue(op); err != nil {
		return err
	}
	w.buf = strconv.AppendUint(w.buf, v, 10)
	w.valueDone()
	return nil
}

// Float64 emits a floating point value. In strict mode NaN and
// infinities are rejected.
func (w *Writer) Float64(v float64) error {
	const op errors.Op = "stream.Writer.Float64"
	if math.IsInf(v, 0) || math.IsNaN(v) {
		if !w.lenient {
			return errors.New(op).Errorf("%s: %v", ErrMsgNonFiniteNumber, v)
		}
		if err := w.beforeValue(op); err != nil {
			return err
		}
		w.buf = strconv.AppendFloat(w.buf, v, 'g', -1, 64)
		w.valueDone()
		return nil
	}
	if err := w.beforeValue(op); err != nil {
		return err
	}
	w.buf = strconv.AppendFloat(w.buf, v, 'g', -1, 64)
	w.valueDone()
	return nil
}

// NumberText emits a number value from its raw lexical text.
func (w *Writer) NumberText(s string) error {
	const op errors.Op = "stream.Writer.NumberText"
	if !validNumber(s) {
		return errors.New(op).Errorf("%s: %q", ErrMsgMalformedNumber, s)
	}
	if err := w.beforeValue(op); err != nil {
		return err
	}
	w.buf = append(w.buf, s...)
	w.valueDone()
	return nil
}

// Raw emits a pre-encoded JSON value verbatim. The value must itself
// be valid JSON.
func (w *Writer) Raw(b []byte) error {
	const op errors.Op = "stream.Writer.Raw"
	if !json.Valid(b) {
		return errors.New(op).Msg("raw value is not valid JSON")
	}
	if err := w.beforeValue(op); err != nil {
		return err
	}
	w.buf = append(w.buf, b...)
	w.valueDone()
	return nil
}

func (w *Writer) appendQuoted(op errors.Op, s string) error {
	q, err := json.Marshal(s)
	if err != nil {
		return errors.New(op).Err(err)
	}
	w.buf = append(w.buf, q...)
	return nil
}
