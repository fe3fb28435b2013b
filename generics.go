package jsonbind

// Generic helpers as top-level functions (methods cannot have type parameters yet)

// FromJSON decodes data into a fresh T using c.
func FromJSON[T any](c *Codec, data []byte) (T, error) {
	var d T
	err := c.Unmarshal(data, &d)
	return d, err
}

// Make round-trips src through JSON into a fresh T. It is the quick
// way to rebind one shape onto another when the two share member
// names.
func Make[T any](c *Codec, src any) (T, error) {
	var d T
	data, err := c.Marshal(src)
	if err != nil {
		return d, err
	}
	err = c.Unmarshal(data, &d)
	return d, err
}

// MakePtr is Make for callers that want a pointer result.
func MakePtr[T any](c *Codec, src any) (*T, error) {
	d, err := Make[T](c, src)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
