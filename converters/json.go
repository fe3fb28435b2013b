package converters

import (
	"github.com/Station-Manager/errors"
	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"

	"github.com/jsonbind/jsonbind"
	"github.com/jsonbind/jsonbind/stream"
)

// NullJSON embeds a null.JSON column verbatim into the output, and
// captures the raw bytes of whatever value sits at its position on
// input. Invalid or empty payloads render as JSON null.
var NullJSON jsonbind.Adapter = nullJSONAdapter{}

type nullJSONAdapter struct{}

func (nullJSONAdapter) Read(r *stream.Reader) (any, error) {
	const op errors.Op = "converters.NullJSON.Read"
	k, err := r.Peek()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	if k == stream.KindNull {
		if err := r.Null(); err != nil {
			return nil, errors.New(op).Err(err)
		}
		return null.JSON{}, nil
	}
	raw, err := r.RawValue()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	data := make([]byte, len(raw))
	copy(data, raw)
	return null.JSONFrom(data), nil
}

func (nullJSONAdapter) Write(w *stream.Writer, v any) error {
	const op errors.Op = "converters.NullJSON.Write"
	nj, ok := v.(null.JSON)
	if !ok {
		return errors.New(op).Msg(ErrMsgWrongGoValue)
	}
	if !nj.Valid || len(nj.JSON) == 0 {
		return w.Null()
	}
	if err := w.Raw(nj.JSON); err != nil {
		return errors.New(op).Msg(ErrMsgBadJSON)
	}
	return nil
}

// BoilerJSON is NullJSON for sqlboiler's non-nullable JSON column
// type. A JSON null on input yields an empty value.
var BoilerJSON jsonbind.Adapter = boilerJSONAdapter{}

type boilerJSONAdapter struct{}

func (boilerJSONAdapter) Read(r *stream.Reader) (any, error) {
	const op errors.Op = "converters.BoilerJSON.Read"
	k, err := r.Peek()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	if k == stream.KindNull {
		if err := r.Null(); err != nil {
			return nil, errors.New(op).Err(err)
		}
		return boilertypes.JSON(nil), nil
	}
	raw, err := r.RawValue()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	data := make([]byte, len(raw))
	copy(data, raw)
	return boilertypes.JSON(data), nil
}

func (boilerJSONAdapter) Write(w *stream.Writer, v any) error {
	const op errors.Op = "converters.BoilerJSON.Write"
	bj, ok := v.(boilertypes.JSON)
	if !ok {
		return errors.New(op).Msg(ErrMsgWrongGoValue)
	}
	if len(bj) == 0 {
		return w.Null()
	}
	if err := w.Raw([]byte(bj)); err != nil {
		return errors.New(op).Msg(ErrMsgBadJSON)
	}
	return nil
}
