package mapping

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("mapping: invalid configuration")

	// ErrDataShape matches every *DataShapeError via errors.Is.
	ErrDataShape = errors.New("mapping: unexpected data shape")
)

// ConfigurationError reports a mapper specification that cannot be used:
// an unknown shape or a path that does not compile.
type ConfigurationError struct {
	Key    string
	Reason string
	Cause  error
}

func (e *ConfigurationError) Error() string {
	msg := "mapping: invalid rule"
	if e.Key != "" {
		msg = fmt.Sprintf("mapping: invalid rule %q", e.Key)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// DataShapeError reports extracted data that does not fit the rule's shape,
// such as an object where a Collection needs a sequence.
type DataShapeError struct {
	Key   string
	Path  string
	Shape Shape
	Got   any
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("mapping: rule %q expects %s at %q, got %s", e.Key, e.Shape, e.Path, describe(e.Got))
}

func (e *DataShapeError) Is(target error) bool { return target == ErrDataShape }

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64, int, int64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
