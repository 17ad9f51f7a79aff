package tools

import (
	"fmt"
	"math"
)

// Args raw tool arguments as decoded from JSON
type Args map[string]any

// ArgumentError an argument has the wrong JSON type
type ArgumentError struct {
	Name string
	Want string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s must be %s", e.Name, e.Want)
}

func (a Args) present(name string) bool {
	v, ok := a[name]
	return ok && v != nil
}

// String returns the named string, "" when absent
func (a Args) String(name string) (string, error) {
	if !a.present(name) {
		return "", nil
	}
	s, ok := a[name].(string)
	if !ok {
		return "", &ArgumentError{Name: name, Want: "a string"}
	}
	return s, nil
}

// Int returns the named whole number, def when absent
func (a Args) Int(name string, def int) (int, error) {
	if !a.present(name) {
		return def, nil
	}

	switch v := a[name].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, &ArgumentError{Name: name, Want: "a whole number"}
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, &ArgumentError{Name: name, Want: "a number"}
	}
}

// Bool returns the named flag, false when absent
func (a Args) Bool(name string) (bool, error) {
	if !a.present(name) {
		return false, nil
	}
	b, ok := a[name].(bool)
	if !ok {
		return false, &ArgumentError{Name: name, Want: "a boolean"}
	}
	return b, nil
}

// Strings returns the named list. Absent gives nil; an empty list gives a
// non-nil empty slice so callers can tell the two apart.
func (a Args) Strings(name string) ([]string, error) {
	if !a.present(name) {
		return nil, nil
	}

	switch v := a[name].(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &ArgumentError{Name: name, Want: "a list of strings"}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &ArgumentError{Name: name, Want: "a list of strings"}
	}
}
