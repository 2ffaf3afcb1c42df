package filter

import (
	"fmt"

	"github.com/vectorkit/vectorkit/internal/apperrors"
)

// ParseMap builds an AST from a plain map, treated as a conjunction of
// field equalities.
func ParseMap(m map[string]any) (Expr, error) {
	if len(m) == 0 {
		return And{}, nil
	}
	exprs := make([]Expr, 0, len(m))
	for field, value := range m {
		exprs = append(exprs, Cmp{Field: field, Op: OpEq, Value: value})
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return And{Exprs: exprs}, nil
}

// structuredOps maps the "$op" keys of a structured comparison map to Op.
var structuredOps = map[string]Op{
	"$eq":   OpEq,
	"$ne":   OpNe,
	"$lt":   OpLt,
	"$le":   OpLe,
	"$gt":   OpGt,
	"$ge":   OpGe,
	"$in":   OpIn,
	"$nin":  OpNin,
	"$like": OpLike,
}

// ParseStructured builds an AST from a structured map using $and/$or/$not
// boolean operators and $eq/$ne/$lt/$le/$gt/$ge/$in/$nin/$like/$exists/
// $null comparison operators.
func ParseStructured(m map[string]any) (Expr, error) {
	if len(m) == 0 {
		return And{}, nil
	}

	var exprs []Expr
	for key, value := range m {
		switch key {
		case "$and":
			sub, err := parseStructuredList(value)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, And{Exprs: sub})
		case "$or":
			sub, err := parseStructuredList(value)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, Or{Exprs: sub})
		case "$not":
			sub, ok := value.(map[string]any)
			if !ok {
				return nil, apperrors.InvalidFilter("$not requires an object operand", nil)
			}
			inner, err := ParseStructured(sub)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, Not{Expr: inner})
		default:
			e, err := parseFieldExpr(key, value)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
	}

	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return And{Exprs: exprs}, nil
}

func parseStructuredList(value any) ([]Expr, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, apperrors.InvalidFilter("$and/$or require an array operand", nil)
	}
	exprs := make([]Expr, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, apperrors.InvalidFilter("$and/$or array elements must be objects", nil)
		}
		e, err := ParseStructured(m)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// parseFieldExpr parses `field: value-or-operator-map`.
func parseFieldExpr(field string, value any) (Expr, error) {
	opMap, ok := value.(map[string]any)
	if !ok {
		return Cmp{Field: field, Op: OpEq, Value: value}, nil
	}

	// A field value that happens to be a plain object (no $-prefixed keys)
	// is still an equality against that object.
	hasOperator := false
	for k := range opMap {
		if len(k) > 0 && k[0] == '$' {
			hasOperator = true
			break
		}
	}
	if !hasOperator {
		return Cmp{Field: field, Op: OpEq, Value: value}, nil
	}

	var exprs []Expr
	for opKey, opVal := range opMap {
		switch opKey {
		case "$exists":
			want, ok := opVal.(bool)
			if !ok {
				return nil, apperrors.InvalidFilter(fmt.Sprintf("%s: $exists requires a bool", field), nil)
			}
			exprs = append(exprs, Exists{Field: field, Want: want})
		case "$null":
			want, ok := opVal.(bool)
			if !ok {
				return nil, apperrors.InvalidFilter(fmt.Sprintf("%s: $null requires a bool", field), nil)
			}
			exprs = append(exprs, IsNull{Field: field, Want: want})
		default:
			op, ok := structuredOps[opKey]
			if !ok {
				return nil, apperrors.InvalidFilter(fmt.Sprintf("%s: unknown operator %s", field, opKey), nil)
			}
			exprs = append(exprs, Cmp{Field: field, Op: op, Value: opVal})
		}
	}

	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return And{Exprs: exprs}, nil
}
