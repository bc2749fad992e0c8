package dto

import "encoding/json"

// Optional records whether a JSON field was present and whether it was
// null, which a plain pointer cannot tell apart.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// UnmarshalJSON is only called for keys present in the body, null included.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns the value, or nil when the field was absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}
