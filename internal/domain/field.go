package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is an optional decoded value. See the package documentation for the
// difference between a nil Field and a Missing one.
type Field[T any] struct {
	Value   T
	Missing bool
}

// Present wraps a decoded value.
func Present[T any](v T) *Field[T] {
	return &Field[T]{Value: v}
}

// Absent marks a value that the report explicitly encoded as not available.
func Absent[T any]() *Field[T] {
	return &Field[T]{Missing: true}
}

// Get returns the value and whether it is available.
func (f *Field[T]) Get() (T, bool) {
	if f == nil || f.Missing {
		var zero T
		return zero, false
	}
	return f.Value, true
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Missing {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value = zero
		f.Missing = true
		return nil
	}
	f.Missing = false
	return json.Unmarshal(data, &f.Value)
}

// variableWind is how the source marks a variable wind direction (dd=99).
const variableWind = "Variable"

// WindDirection is a wind direction in degrees, or variable.
type WindDirection struct {
	Degrees  int
	Variable bool
}

func (w WindDirection) String() string {
	if w.Variable {
		return variableWind
	}
	return fmt.Sprintf("%d", w.Degrees)
}

func (w WindDirection) MarshalJSON() ([]byte, error) {
	if w.Variable {
		return json.Marshal(variableWind)
	}
	return json.Marshal(w.Degrees)
}

func (w *WindDirection) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != variableWind {
			return fmt.Errorf("unknown wind direction %q", s)
		}
		*w = WindDirection{Variable: true}
		return nil
	}
	var deg int
	if err := json.Unmarshal(data, &deg); err != nil {
		return fmt.Errorf("decode wind direction: %w", err)
	}
	*w = WindDirection{Degrees: deg}
	return nil
}
