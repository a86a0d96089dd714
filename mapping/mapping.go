// Package mapping converts decoded response bodies into domain objects
// using declarative, path-based rules.
//
// A Spec names result keys and, for each, where to find the data (a
// JSONPath expression, or the whole body when empty), whether it is one
// object or a sequence, and how to construct each object:
//
//	m, err := mapping.New(mapping.Spec{
//	    "user":  {Path: "$.data.user", Shape: mapping.Simple, New: mapping.Into[User]()},
//	    "posts": {Path: "$.data.posts", Shape: mapping.Collection, New: mapping.Into[Post]()},
//	})
//	res, err := m.Transform(body)
//
// A Mapper is built once per response contract and is safe for concurrent
// use; each Transform returns a fresh Result and never mutates its input.
package mapping

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Rule describes one entry of a Spec.
type Rule struct {
	// Path is the extraction expression; empty selects the whole body.
	// Bracketed member names take double quotes: $["a.b"].
	Path string
	// Shape is Simple or Collection.
	Shape Shape
	// New builds each instance. Nil means Plain.
	New Constructor
}

// Spec maps result keys to rules.
type Spec map[string]Rule

// Result maps result keys to one instance (Simple) or a []any of instances
// (Collection).
type Result map[string]any

// One returns the value stored under key.
func (r Result) One(key string) any {
	return r[key]
}

// Many returns the sequence stored under key, or nil when key holds no
// sequence.
func (r Result) Many(key string) []any {
	items, _ := r[key].([]any)
	return items
}

// Get returns the value under key as a T.
func Get[T any](r Result, key string) (T, bool) {
	v, ok := r[key].(T)
	return v, ok
}

// All returns the sequence under key with every element that is a T.
func All[T any](r Result, key string) []T {
	items := r.Many(key)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if v, ok := item.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithEvaluator replaces the JSONPath evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(m *Mapper) {
		m.evaluator = e
	}
}

// Mapper is a compiled Spec.
type Mapper struct {
	evaluator Evaluator
	keys      []string
	rules     map[string]compiledRule
}

type compiledRule struct {
	Rule
	query Query
}

// New validates spec and compiles its paths. Unknown shapes and invalid
// paths are reported as *ConfigurationError.
func New(spec Spec, opts ...Option) (*Mapper, error) {
	m := &Mapper{
		evaluator: JSONPath(),
		rules:     make(map[string]compiledRule, len(spec)),
	}
	for _, opt := range opts {
		opt(m)
	}

	for key, rule := range spec {
		if !rule.Shape.Valid() {
			return nil, &ConfigurationError{Key: key, Reason: fmt.Sprintf("unknown shape %s", rule.Shape)}
		}
		if rule.New == nil {
			rule.New = Plain()
		}

		compiled := compiledRule{Rule: rule}
		if rule.Path != "" {
			q, err := m.evaluator.Compile(rule.Path)
			if err != nil {
				return nil, &ConfigurationError{Key: key, Reason: "invalid path " + rule.Path, Cause: err}
			}
			compiled.query = q
		}

		m.rules[key] = compiled
		m.keys = append(m.keys, key)
	}
	sort.Strings(m.keys)

	return m, nil
}

// MustNew is like New but panics on error. Intended for package-level
// mapper variables.
func MustNew(spec Spec, opts ...Option) *Mapper {
	m, err := New(spec, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Keys returns the result keys in transform order.
func (m *Mapper) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Transform applies every rule to body, in sorted key order.
func (m *Mapper) Transform(body any) (Result, error) {
	result := make(Result, len(m.keys))
	for _, key := range m.keys {
		v, err := m.apply(key, m.rules[key], body)
		if err != nil {
			return nil, err
		}
		result[key] = v
	}
	return result, nil
}

// TransformJSON decodes data and transforms it.
func (m *Mapper) TransformJSON(data []byte) (Result, error) {
	body, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return m.Transform(body)
}

func (m *Mapper) apply(key string, rule compiledRule, body any) (any, error) {
	switch rule.Shape {
	case Simple:
		data, found := m.single(rule, body)
		if !found {
			return nil, nil
		}
		return construct(key, -1, rule.New, data)

	case Collection:
		data := body
		if rule.query != nil {
			data = extract(rule.query, body)
		}
		items, ok := data.([]any)
		if !ok {
			return nil, &DataShapeError{Key: key, Path: rule.Path, Shape: Collection, Got: data}
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			v, err := construct(key, i, rule.New, item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	default:
		return nil, &ConfigurationError{Key: key, Reason: fmt.Sprintf("unknown shape %s", rule.Shape)}
	}
}

// single resolves the input of a Simple rule: the addressed value for a
// definite path, the first match otherwise.
func (m *Mapper) single(rule compiledRule, body any) (any, bool) {
	if rule.query == nil {
		return body, true
	}
	matches := rule.query.Select(body)
	if len(matches) == 0 {
		return nil, false
	}
	return matches[0], true
}

func construct(key string, index int, ctor Constructor, data any) (any, error) {
	v, err := ctor(data)
	if err != nil {
		if index >= 0 {
			return nil, fmt.Errorf("mapping: construct %s[%d]: %w", key, index, err)
		}
		return nil, fmt.Errorf("mapping: construct %s: %w", key, err)
	}
	return v, nil
}

// Transform compiles spec and applies it to body.
func Transform(body any, spec Spec) (Result, error) {
	m, err := New(spec)
	if err != nil {
		return nil, err
	}
	return m.Transform(body)
}

// Decode parses JSON into the plain form rules operate on.
func Decode(data []byte) (any, error) {
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("mapping: decode body: %w", err)
	}
	return body, nil
}
