package option

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCannotMatchUnsetValue is returned by Match if an unset value meets a
// pattern without a None case.
var ErrCannotMatchUnsetValue = errors.New("cannot match unset value")

// MaybeOption labels the cases of a Maybe pattern.
type MaybeOption int

const (
	None MaybeOption = iota
	Some
)

// T is an optional value of type V.
type T[V comparable] struct {
	v   V
	set bool
}

// Of creates an optional value with an initial value of x.
func Of[V comparable](x V) T[V] {
	return T[V]{v: x, set: true}
}

// Empty creates an optional value without an initial value.
func Empty[V comparable]() T[V] {
	return T[V]{}
}

// IsNone is true if o holds no value.
func (o T[V]) IsNone() bool {
	return !o.set
}

// IsSome is true if o holds a value.
func (o T[V]) IsSome() bool {
	return o.set
}

// Unwrap returns the underlying value of o. For unset values, the zero
// value of V is returned.
func (o T[V]) Unwrap() V {
	return o.v
}

// Get returns the value and true, or the zero value and false.
func (o T[V]) Get() (V, bool) {
	return o.v, o.set
}

// OrElse returns the value of o, or def if o is unset.
func (o T[V]) OrElse(def V) V {
	if o.set {
		return o.v
	}
	return def
}

// Or returns o if it is set, other otherwise.
func (o T[V]) Or(other T[V]) T[V] {
	if o.set {
		return o
	}
	return other
}

// Equal compares two optional values. Two unset values are equal.
func (o T[V]) Equal(other T[V]) bool {
	if o.set != other.set {
		return false
	}
	return !o.set || o.v == other.v
}

func (o T[V]) String() string {
	if !o.set {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.v)
}

// Maybe is a pattern for matching optional values. Keys are None or Some,
// values are functions receiving the unwrapped value.
type Maybe[V comparable] map[MaybeOption]func(V) V

// Match matches o against pattern and returns the result of the selected
// case.
func (o T[V]) Match(pattern Maybe[V]) (V, error) {
	if !o.set {
		if f, ok := pattern[None]; ok {
			return f(o.v), nil
		}
		tracer().Debugf("unset %T meets pattern without None case", o.v)
		return o.v, ErrCannotMatchUnsetValue
	}
	if f, ok := pattern[Some]; ok {
		return f(o.v), nil
	}
	return o.v, nil
}

// MarshalJSON writes unset values as null.
func (o T[V]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

// UnmarshalJSON reads null as an unset value.
func (o *T[V]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = T[V]{}
		return nil
	}
	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Of(v)
	return nil
}

// FromPtr converts a pointer into an optional value; nil is None.
func FromPtr[V comparable](p *V) T[V] {
	if p == nil {
		return T[V]{}
	}
	return Of(*p)
}

// Ptr converts o into a pointer; None is nil.
func (o T[V]) Ptr() *V {
	if !o.set {
		return nil
	}
	v := o.v
	return &v
}
