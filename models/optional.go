package models

import (
	"bytes"
	"encoding/json"
)

// Optional tracks whether a JSON field was present in a request body and
// whether it was explicitly null, so patches can tell "absent" (no change)
// apart from "cleared".
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Present reports whether the field was supplied with a non-null value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// setFields collects the supplied fields of a patch; unset ones are left out
// so the receiver sees them as absent.
type setFields map[string]any

func (f setFields) add(name string, set bool, value any) {
	if set {
		f[name] = value
	}
}
