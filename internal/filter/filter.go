// Package filter turns command line predicate tokens into a SQL boolean
// expression.
//
// The accepted grammar is
//
//	WHERE <term>...
//
// where a term is a compact key=value token, a comparison operator (=, !=,
// like) whose following token is taken as the value, or any other token
// passed through verbatim (column names, and, or, parentheses). Only values
// are quoted; keys and operators are trusted to be identifier-like.
package filter

import (
	"errors"
	"strings"
)

// ErrSyntax is the base error for malformed filters. Messages never include
// the offending tokens.
var ErrSyntax = errors.New("invalid filter")

var (
	ErrConditionRequired = &SyntaxError{msg: "filter condition is required"}
	ErrMissingWhere      = &SyntaxError{msg: "filter must begin with WHERE"}
	ErrMissingValue      = &SyntaxError{msg: "comparison operator requires a value"}
)

// SyntaxError is a filter that violates the grammar.
type SyntaxError struct {
	msg string
}

func (e *SyntaxError) Error() string { return e.msg }
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// matchAll is the predicate used when an optional filter is omitted.
const matchAll = "1"

// operators take the next token as their value.
var operators = map[string]bool{
	"=":    true,
	"!=":   true,
	"like": true,
}

// Filter is a parsed predicate, ready to be placed after WHERE.
type Filter struct {
	query string
}

// New wraps an already-built SQL predicate.
func New(query string) Filter {
	return Filter{query: query}
}

// All returns the filter that matches every row.
func All() Filter {
	return New(matchAll)
}

// Query returns the SQL predicate.
func (f Filter) Query() string {
	return f.query
}

func (f Filter) String() string {
	return f.query
}

// Parse parses a token list that must start with WHERE.
func Parse(args []string) (Filter, error) {
	if len(args) == 0 {
		return Filter{}, ErrConditionRequired
	}
	if !strings.EqualFold(args[0], "where") {
		return Filter{}, ErrMissingWhere
	}

	var query strings.Builder
	expectValue := false

	for _, arg := range args[1:] {
		if expectValue {
			query.WriteByte(' ')
			query.WriteString(Quote(arg))
			expectValue = false
			continue
		}

		// Operators come before the compact form so "!=" is not split.
		if operators[strings.ToLower(arg)] {
			expectValue = true
			query.WriteByte(' ')
			query.WriteString(arg)
			continue
		}

		if idx := strings.IndexByte(arg, '='); idx > 0 {
			query.WriteByte(' ')
			query.WriteString(arg[:idx])
			query.WriteString(" = ")
			query.WriteString(Quote(arg[idx+1:]))
			continue
		}

		query.WriteByte(' ')
		query.WriteString(arg)
	}
	if expectValue {
		return Filter{}, ErrMissingValue
	}

	return New(query.String()), nil
}

// ParseOptional is Parse, except that an empty token list matches everything.
func ParseOptional(args []string) (Filter, error) {
	if len(args) == 0 {
		return All(), nil
	}
	return Parse(args)
}

// Quote returns value as a SQL string literal. Single quotes are doubled;
// nothing else is escaped.
func Quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
