package mapping

import (
	"fmt"
	"strings"
)

// Shape selects how extracted data becomes domain objects.
type Shape int

const (
	// Simple builds exactly one instance.
	Simple Shape = iota + 1
	// Collection builds one instance per element of a sequence.
	Collection
)

func (s Shape) String() string {
	switch s {
	case Simple:
		return "simple"
	case Collection:
		return "collection"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Valid reports whether s is one of the known shapes.
func (s Shape) Valid() bool {
	return s == Simple || s == Collection
}

// ParseShape resolves a shape by name, case-insensitively.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "simple":
		return Simple, nil
	case "collection":
		return Collection, nil
	default:
		return 0, &ConfigurationError{Reason: fmt.Sprintf("unknown shape %q", name)}
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown shape %d", int(s))}
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so shapes can be read
// from configuration files by name.
func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
