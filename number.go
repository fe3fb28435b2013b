package jsonbind

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ericlagergren/decimal"

	"github.com/jsonbind/jsonbind/stream"
)

// Number holds the raw lexical text of a JSON number, deferring
// parsing. It survives round-trips losslessly, including magnitudes
// and precisions beyond float64.
type Number string

// String returns the raw lexical text.
func (n Number) String() string { return string(n) }

// Int64 parses the number as an int64.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Float64 parses the number as a float64.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Decimal parses the number as an arbitrary-precision decimal.
func (n Number) Decimal() (*decimal.Big, error) {
	d, ok := new(decimal.Big).SetString(string(n))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedNumber, string(n))
	}
	return d, nil
}

// NumberPolicy selects how a JSON number is materialized when the
// target type is not statically a concrete numeric type. The set is
// closed; ReadNumber switches exhaustively over it.
type NumberPolicy int

const (
	// DoublePolicy reads every number as a float64. Literals whose
	// magnitude overflows to infinity are rejected by the strict
	// reader, not by the policy itself.
	DoublePolicy NumberPolicy = iota

	// LazilyParsedPolicy keeps the raw lexical text as a Number and
	// defers parsing. It accepts any syntactically valid literal.
	LazilyParsedPolicy

	// LongOrDoublePolicy reads whole numbers that fit an int64 as
	// int64 and everything else as float64, rejecting results that
	// evaluate to infinity or NaN.
	LongOrDoublePolicy

	// BigDecimalPolicy reads every number as an exact
	// arbitrary-precision *decimal.Big.
	BigDecimalPolicy
)

func (p NumberPolicy) String() string {
	switch p {
	case DoublePolicy:
		return "Double"
	case LazilyParsedPolicy:
		return "LazilyParsed"
	case LongOrDoublePolicy:
		return "LongOrDouble"
	case BigDecimalPolicy:
		return "BigDecimal"
	default:
		return "Unknown"
	}
}

// ReadNumber consumes exactly one number token from r and materializes
// it according to the policy. It never returns a nil value alongside a
// nil error. Invoking any policy on a null token is a contract
// violation and fails with ErrUnexpectedNull; null handling belongs to
// the caller.
func (p NumberPolicy) ReadNumber(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == stream.KindNull {
		return nil, fmt.Errorf("%w: %s policy invoked on a null token", ErrUnexpectedNull, p)
	}
	if k != stream.KindNumber {
		return nil, fmt.Errorf("jsonbind: %s policy expects a number token, got %s", p, k)
	}

	switch p {
	case DoublePolicy:
		return r.Float64()

	case LazilyParsedPolicy:
		s, err := r.NumberText()
		if err != nil {
			return nil, err
		}
		return Number(s), nil

	case LongOrDoublePolicy:
		s, err := r.NumberText()
		if err != nil {
			return nil, err
		}
		if isWholeNumber(s) {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				return nil, fmt.Errorf("%w: JSON forbids NaN and infinities: %q", ErrMalformedNumber, s)
			}
			return nil, fmt.Errorf("%w: cannot parse %q", ErrMalformedNumber, s)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("%w: JSON forbids NaN and infinities: %q", ErrMalformedNumber, s)
		}
		return f, nil

	case BigDecimalPolicy:
		s, err := r.NumberText()
		if err != nil {
			return nil, err
		}
		d, ok := new(decimal.Big).SetString(s)
		if !ok {
			return nil, fmt.Errorf("%w: cannot parse %q", ErrMalformedNumber, s)
		}
		return d, nil

	default:
		return nil, fmt.Errorf("jsonbind: unknown number policy %d", p)
	}
}

// isWholeNumber reports whether s is an optionally signed run of
// digits, with no fraction or exponent.
func isWholeNumber(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
