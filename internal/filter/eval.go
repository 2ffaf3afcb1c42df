package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Row is the minimal metadata view the evaluator needs: a row index (for
// bitmap pre-filtering) plus its metadata map.
type Row struct {
	Index    uint32
	Metadata map[string]any
}

// Evaluate reports whether row's metadata satisfies expr. Evaluation
// errors on a single row (e.g. an unparsable numeric comparison) cause
// the row to be treated as non-matching rather than aborting the query.
func Evaluate(expr Expr, metadata map[string]any) bool {
	ok, _ := evaluate(expr, metadata)
	return ok
}

func evaluate(expr Expr, metadata map[string]any) (bool, error) {
	switch e := expr.(type) {
	case And:
		for _, sub := range e.Exprs {
			ok, err := evaluate(sub, metadata)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case Or:
		if len(e.Exprs) == 0 {
			return true, nil
		}
		for _, sub := range e.Exprs {
			ok, err := evaluate(sub, metadata)
			if err == nil && ok {
				return true, nil
			}
		}
		return false, nil

	case Not:
		ok, err := evaluate(e.Expr, metadata)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case Exists:
		_, present := lookup(metadata, e.Field)
		return present == e.Want, nil

	case IsNull:
		v, present := lookup(metadata, e.Field)
		isNull := !present || v == nil
		return isNull == e.Want, nil

	case Cmp:
		return evalCmp(e, metadata)

	default:
		return false, fmt.Errorf("filter: unknown expression type %T", expr)
	}
}

// lookup resolves a dotted field path against nested metadata maps.
func lookup(metadata map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = metadata
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func evalCmp(c Cmp, metadata map[string]any) (bool, error) {
	actual, present := lookup(metadata, c.Field)
	if !present {
		// Unknown fields: EXISTS -> false, IS_NULL -> true, comparisons -> false.
		return false, nil
	}

	switch c.Op {
	case OpEq:
		return looseEqual(actual, c.Value), nil
	case OpNe:
		return !looseEqual(actual, c.Value), nil
	case OpLt, OpLe, OpGt, OpGe:
		return compareOrdered(actual, c.Value, c.Op)
	case OpIn:
		return inSet(actual, c.Value), nil
	case OpNin:
		return !inSet(actual, c.Value), nil
	case OpLike:
		pattern, ok := c.Value.(string)
		if !ok {
			return false, fmt.Errorf("filter: LIKE operand must be a string")
		}
		s, ok := actual.(string)
		if !ok {
			return false, nil
		}
		return likeMatch(s, pattern), nil
	default:
		return false, fmt.Errorf("filter: unknown operator %s", c.Op)
	}
}

// looseEqual compares values coercing numeric types, since JSON decoding
// and the SQL parser both produce a mix of int64/float64/string.
func looseEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func compareOrdered(a, b any, op Op) (bool, error) {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return compareFloats(af, bf, op), nil
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return compareStrings(as, bs, op), nil
	}

	return false, fmt.Errorf("filter: incomparable values %v, %v", a, b)
}

func compareFloats(a, b float64, op Op) bool {
	switch op {
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	default:
		return false
	}
}

func compareStrings(a, b string, op Op) bool {
	switch op {
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	default:
		return false
	}
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func inSet(actual any, set any) bool {
	list, ok := set.([]any)
	if !ok {
		return false
	}
	for _, item := range list {
		if looseEqual(actual, item) {
			return true
		}
	}
	return false
}

// likeMatch implements SQL LIKE semantics: '%' matches any run of
// characters, '_' matches exactly one, case-insensitive.
func likeMatch(s, pattern string) bool {
	var sb strings.Builder
	sb.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// EvaluateBitmap intersects a roaring.Bitmap of live row indices with rows
// whose metadata satisfies expr, avoiding an O(N) membership scan over the
// full candidate set when a live-vector bitmap is already on hand.
func EvaluateBitmap(expr Expr, rows []Row, live *roaring.Bitmap) *roaring.Bitmap {
	result := roaring.New()
	for _, row := range rows {
		if live != nil && !live.Contains(row.Index) {
			continue
		}
		if Evaluate(expr, row.Metadata) {
			result.Add(row.Index)
		}
	}
	return result
}
