package util

import (
	"database/sql/driver"
	"encoding/json"
)

// Optional distinguishes "absent" from the zero value, both in query
// params and in nullable database columns.
type Optional[T any] struct {
	Val   T
	IsSet bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Val: v, IsSet: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) UnwrapOr(fallback T) T {
	if !o.IsSet {
		return fallback
	}
	return o.Val
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.IsSet {
		return []byte("null"), nil
	}
	return json.Marshal(o.Val)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Optional[T]{}
		return nil
	}
	if err := json.Unmarshal(data, &o.Val); err != nil {
		return err
	}
	o.IsSet = true
	return nil
}

// Scan implements sql.Scanner so nullable columns scan directly into an
// Optional field.
func (o *Optional[T]) Scan(value any) error {
	if value == nil {
		*o = Optional[T]{}
		return nil
	}

	switch dst := any(&o.Val).(type) {
	case interface{ Scan(any) error }:
		if err := dst.Scan(value); err != nil {
			return err
		}
	default:
		o.Val = value.(T)
	}
	o.IsSet = true
	return nil
}

// Value implements driver.Valuer; an unset Optional writes SQL NULL.
func (o Optional[T]) Value() (driver.Value, error) {
	if !o.IsSet {
		return nil, nil
	}
	switch v := any(o.Val).(type) {
	case driver.Valuer:
		return v.Value()
	default:
		return o.Val, nil
	}
}
