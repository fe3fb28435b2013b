package converters

import (
	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"
	"github.com/ericlagergren/decimal"

	"github.com/jsonbind/jsonbind"
)

// RegisterAll binds every adapter in this package onto b.
func RegisterAll(b *jsonbind.Builder) *jsonbind.Builder {
	b.RegisterAdapter(jsonbind.DescriptorFor[null.String](), NullString)
	b.RegisterAdapter(jsonbind.DescriptorFor[null.Bool](), NullBool)
	b.RegisterAdapter(jsonbind.DescriptorFor[null.Int64](), NullInt64)
	b.RegisterAdapter(jsonbind.DescriptorFor[null.Float64](), NullFloat64)
	b.RegisterAdapter(jsonbind.DescriptorFor[null.Time](), NullTime)
	b.RegisterAdapter(jsonbind.DescriptorFor[null.JSON](), NullJSON)
	b.RegisterAdapter(jsonbind.DescriptorFor[boilertypes.JSON](), BoilerJSON)
	b.RegisterAdapter(jsonbind.DescriptorFor[*decimal.Big](), Decimal)
	return b
}
