package mapping

import (
	"encoding/json"
	"fmt"
)

// Constructor turns one plain value (decoded JSON) into a domain object.
type Constructor func(plain any) (any, error)

// Plain returns the extracted value unchanged.
func Plain() Constructor {
	return func(plain any) (any, error) {
		return plain, nil
	}
}

// Into decodes the extracted value into a T using its json struct tags.
func Into[T any]() Constructor {
	return func(plain any) (any, error) {
		raw, err := json.Marshal(plain)
		if err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode into %T: %w", v, err)
		}
		return v, nil
	}
}

// Func adapts an infallible function.
func Func[T any](fn func(plain any) T) Constructor {
	return func(plain any) (any, error) {
		return fn(plain), nil
	}
}
