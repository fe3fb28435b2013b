package converters

import (
	"github.com/Station-Manager/errors"
	"github.com/ericlagergren/decimal"

	"github.com/jsonbind/jsonbind"
	"github.com/jsonbind/jsonbind/stream"
)

// Decimal maps *decimal.Big to a JSON number, preserving every digit
// of the literal in both directions.
var Decimal jsonbind.Adapter = decimalAdapter{}

type decimalAdapter struct{}

func (decimalAdapter) Read(r *stream.Reader) (any, error) {
	const op errors.Op = "converters.Decimal.Read"
	k, err := r.Peek()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	if k == stream.KindNull {
		if err := r.Null(); err != nil {
			return nil, errors.New(op).Err(err)
		}
		return (*decimal.Big)(nil), nil
	}
	text, err := r.NumberText()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	d := new(decimal.Big)
	if _, ok := d.SetString(text); !ok {
		return nil, errors.New(op).Msg(ErrMsgBadDecimal)
	}
	return d, nil
}

func (decimalAdapter) Write(w *stream.Writer, v any) error {
	const op errors.Op = "converters.Decimal.Write"
	d, ok := v.(*decimal.Big)
	if !ok {
		return errors.New(op).Msg(ErrMsgWrongGoValue)
	}
	if d == nil {
		return w.Null()
	}
	if d.IsInf(0) || d.IsNaN(0) {
		return errors.New(op).Msg(ErrMsgBadDecimal)
	}
	return w.NumberText(d.String())
}
