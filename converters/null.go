// Package converters supplies ready-made adapters for the nullable
// database types the surrounding applications use: the aarondl/null
// wrappers, sqlboiler's raw JSON column type and arbitrary-precision
// decimals. Register the whole set with RegisterAll, or pick single
// adapters via the exported variables.
package converters

import (
	"time"

	"github.com/Station-Manager/errors"
	"github.com/aarondl/null/v8"

	"github.com/jsonbind/jsonbind"
	"github.com/jsonbind/jsonbind/stream"
)

// NullString maps null.String to a JSON string, with invalid values
// rendered as JSON null.
var NullString jsonbind.Adapter = nullStringAdapter{}

type nullStringAdapter struct{}

func (nullStringAdapter) Read(r *stream.Reader) (any, error) {
	const op errors.Op = "converters.NullString.Read"
	k, err := r.Peek()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	if k == stream.KindNull {
		if err := r.Null(); err != nil {
			return nil, errors.New(op).Err(err)
		}
		return null.String{}, nil
	}
	s, err := r.String()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	return null.StringFrom(s), nil
}

func (nullStringAdapter) Write(w *stream.Writer, v any) error {
	const op errors.Op = "converters.NullString.Write"
	ns, ok := v.(null.String)
	if !ok {
		return errors.New(op).Msg(ErrMsgNotAString)
	}
	if !ns.Valid {
		return w.Null()
	}
	return w.String(ns.String)
}

// NullBool maps null.Bool to a JSON boolean.
var NullBool jsonbind.Adapter = nullBoolAdapter{}

type nullBoolAdapter struct{}

func (nullBoolAdapter) Read(r *stream.Reader) (any, error) {
	const op errors.Op = "converters.NullBool.Read"
	k, err := r.Peek()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	if k == stream.KindNull {
		if err := r.Null(); err != nil {
			return nil, errors.New(op).Err(err)
		}
		return null.Bool{}, nil
	}
	b, err := r.Bool()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	return null.BoolFrom(b), nil
}

func (nullBoolAdapter) Write(w *stream.Writer, v any) error {
	const op errors.Op = "converters.NullBool.Write"
	nb, ok := v.(null.Bool)
	if !ok {
		return errors.New(op).Msg(ErrMsgNotABool)
	}
	if !nb.Valid {
		return w.Null()
	}
	return w.Bool(nb.Bool)
}

// NullInt64 maps null.Int64 to a JSON number.
var NullInt64 jsonbind.Adapter = nullInt64Adapter{}

type nullInt64Adapter struct{}

func (nullInt64Adapter) Read(r *stream.Reader) (any, error) {
	const op errors.Op = "converters.NullInt64.Read"
	k, err := r.Peek()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	if k == stream.KindNull {
		if err := r.Null(); err != nil {
			return nil, errors.New(op).Err(err)
		}
		return null.Int64{}, nil
	}
	n, err := r.Int64()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	return null.Int64From(n), nil
}

func (nullInt64Adapter) Write(w *stream.Writer, v any) error {
	const op errors.Op = "converters.NullInt64.Write"
	ni, ok := v.(null.Int64)
	if !ok {
		return errors.New(op).Msg(ErrMsgNotAnInt64)
	}
	if !ni.Valid {
		return w.Null()
	}
	return w.Int64(ni.Int64)
}

// NullFloat64 maps null.Float64 to a JSON number.
var NullFloat64 jsonbind.Adapter = nullFloat64Adapter{}

type nullFloat64Adapter struct{}

func (nullFloat64Adapter) Read(r *stream.Reader) (any, error) {
	const op errors.Op = "converters.NullFloat64.Read"
	k, err := r.Peek()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	if k == stream.KindNull {
		if err := r.Null(); err != nil {
			return nil, errors.New(op).Err(err)
		}
		return null.Float64{}, nil
	}
	f, err := r.Float64()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	return null.Float64From(f), nil
}

func (nullFloat64Adapter) Write(w *stream.Writer, v any) error {
	const op errors.Op = "converters.NullFloat64.Write"
	nf, ok := v.(null.Float64)
	if !ok {
		return errors.New(op).Msg(ErrMsgNotAFloat64)
	}
	if !nf.Valid {
		return w.Null()
	}
	return w.Float64(nf.Float64)
}

// NullTime maps null.Time to an RFC 3339 JSON string.
var NullTime jsonbind.Adapter = nullTimeAdapter{}

type nullTimeAdapter struct{}

func (nullTimeAdapter) Read(r *stream.Reader) (any, error) {
	const op errors.Op = "converters.NullTime.Read"
	k, err := r.Peek()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	if k == stream.KindNull {
		if err := r.Null(); err != nil {
			return nil, errors.New(op).Err(err)
		}
		return null.Time{}, nil
	}
	s, err := r.String()
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, errors.New(op).Msg(ErrMsgBadTime)
	}
	return null.TimeFrom(t), nil
}

func (nullTimeAdapter) Write(w *stream.Writer, v any) error {
	const op errors.Op = "converters.NullTime.Write"
	nt, ok := v.(null.Time)
	if !ok {
		return errors.New(op).Msg(ErrMsgWrongGoValue)
	}
	if !nt.Valid {
		return w.Null()
	}
	return w.String(nt.Time.Format(time.RFC3339Nano))
}
