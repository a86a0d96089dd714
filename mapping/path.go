package mapping

import (
	"context"

	"github.com/PaesslerAG/jsonpath"
)

// Query is a compiled path expression.
type Query interface {
	// Select returns every value the query matches in doc, in document
	// order. No match yields an empty slice.
	Select(doc any) []any
	// Definite reports whether the expression addresses at most one value,
	// i.e. it uses no wildcard, descent, filter, slice or union.
	Definite() bool
}

// Evaluator compiles path expressions.
type Evaluator interface {
	Compile(expr string) (Query, error)
}

// JSONPath returns the default evaluator, implementing Goessner JSONPath
// over decoded JSON (map[string]any / []any).
func JSONPath() Evaluator {
	return jsonPathEvaluator{}
}

type jsonPathEvaluator struct{}

func (jsonPathEvaluator) Compile(expr string) (Query, error) {
	eval, err := jsonpath.New(expr)
	if err != nil {
		return nil, err
	}
	return &jsonPathQuery{
		eval:     eval,
		definite: !ambiguous(expr),
	}, nil
}

type jsonPathQuery struct {
	eval     func(context.Context, interface{}) (interface{}, error)
	definite bool
}

func (q *jsonPathQuery) Definite() bool { return q.definite }

func (q *jsonPathQuery) Select(doc any) []any {
	v, err := q.eval(context.Background(), doc)
	if err != nil {
		// unknown key, index out of range or a non-container on the way
		return []any{}
	}
	if !q.definite {
		if matches, ok := v.([]interface{}); ok {
			return matches
		}
	}
	return []any{v}
}

// Lookup evaluates expr against doc. A definite expression yields the value
// it addresses, or an empty sequence when absent; any other expression
// yields the sequence of matches.
func Lookup(doc any, expr string) (any, error) {
	q, err := JSONPath().Compile(expr)
	if err != nil {
		return nil, &ConfigurationError{Reason: "invalid path " + expr, Cause: err}
	}
	return extract(q, doc), nil
}

// extract applies the value-or-sequence convention to a query result.
func extract(q Query, doc any) any {
	matches := q.Select(doc)
	if q.Definite() && len(matches) == 1 {
		return matches[0]
	}
	return matches
}

// ambiguous reports whether a JSONPath expression may address several
// values. Bracketed member names must be double-quoted ($["a.b"]); their
// contents are ignored.
func ambiguous(expr string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"':
			quote = c
		case '*', '?':
			return true
		case '.':
			if i+1 < len(expr) && expr[i+1] == '.' {
				return true
			}
		case '[':
			depth++
		case ']':
			depth--
		case ':', ',':
			if depth > 0 {
				return true
			}
		}
	}
	return false
}
