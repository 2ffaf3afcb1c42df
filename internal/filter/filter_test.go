package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMapConjunction(t *testing.T) {
	expr, err := ParseMap(map[string]any{"category": "tech", "priority": int64(2)})
	require.NoError(t, err)

	assert.True(t, Evaluate(expr, map[string]any{"category": "tech", "priority": int64(2)}))
	assert.False(t, Evaluate(expr, map[string]any{"category": "art", "priority": int64(2)}))
}

func TestParseStructuredBooleanOps(t *testing.T) {
	raw := map[string]any{
		"$and": []any{
			map[string]any{"category": map[string]any{"$eq": "tech"}},
			map[string]any{"priority": map[string]any{"$gt": int64(1)}},
		},
	}
	expr, err := ParseStructured(raw)
	require.NoError(t, err)

	assert.True(t, Evaluate(expr, map[string]any{"category": "tech", "priority": int64(2)}))
	assert.False(t, Evaluate(expr, map[string]any{"category": "tech", "priority": int64(1)}))
	assert.False(t, Evaluate(expr, map[string]any{"category": "art", "priority": int64(5)}))
}

func TestParseStructuredNot(t *testing.T) {
	raw := map[string]any{"$not": map[string]any{"category": "tech"}}
	expr, err := ParseStructured(raw)
	require.NoError(t, err)

	assert.True(t, Evaluate(expr, map[string]any{"category": "art"}))
	assert.False(t, Evaluate(expr, map[string]any{"category": "tech"}))
}

func TestParseStructuredExistsAndNull(t *testing.T) {
	expr, err := ParseStructured(map[string]any{"tags": map[string]any{"$exists": true}})
	require.NoError(t, err)
	assert.True(t, Evaluate(expr, map[string]any{"tags": "x"}))
	assert.False(t, Evaluate(expr, map[string]any{}))

	expr, err = ParseStructured(map[string]any{"tags": map[string]any{"$null": true}})
	require.NoError(t, err)
	assert.True(t, Evaluate(expr, map[string]any{}))
	assert.True(t, Evaluate(expr, map[string]any{"tags": nil}))
	assert.False(t, Evaluate(expr, map[string]any{"tags": "x"}))
}

func TestParseSQLConjunctionMatchesSpecScenario(t *testing.T) {
	expr, err := ParseSQL(`category = 'tech' AND priority > 1`)
	require.NoError(t, err)

	assert.True(t, Evaluate(expr, map[string]any{"category": "tech", "priority": int64(2)}))
	assert.False(t, Evaluate(expr, map[string]any{"category": "tech", "priority": int64(1)}))
	assert.False(t, Evaluate(expr, map[string]any{"category": "art", "priority": int64(5)}))
}

func TestParseSQLParensAndOr(t *testing.T) {
	expr, err := ParseSQL(`(category = 'tech' OR category = 'art') AND priority >= 3`)
	require.NoError(t, err)

	assert.True(t, Evaluate(expr, map[string]any{"category": "art", "priority": int64(3)}))
	assert.False(t, Evaluate(expr, map[string]any{"category": "news", "priority": int64(3)}))
}

func TestParseSQLNotInAndLike(t *testing.T) {
	expr, err := ParseSQL(`status NOT IN ('archived', 'deleted') AND name LIKE 'foo%'`)
	require.NoError(t, err)

	assert.True(t, Evaluate(expr, map[string]any{"status": "active", "name": "foobar"}))
	assert.False(t, Evaluate(expr, map[string]any{"status": "archived", "name": "foobar"}))
	assert.False(t, Evaluate(expr, map[string]any{"status": "active", "name": "barfoo"}))
}

func TestParseSQLIsNull(t *testing.T) {
	expr, err := ParseSQL(`deleted_at IS NULL`)
	require.NoError(t, err)
	assert.True(t, Evaluate(expr, map[string]any{}))
	assert.False(t, Evaluate(expr, map[string]any{"deleted_at": "2024-01-01"}))

	expr, err = ParseSQL(`deleted_at IS NOT NULL`)
	require.NoError(t, err)
	assert.False(t, Evaluate(expr, map[string]any{}))
	assert.True(t, Evaluate(expr, map[string]any{"deleted_at": "2024-01-01"}))
}

func TestParseSQLExistsFunctionForm(t *testing.T) {
	expr, err := ParseSQL(`EXISTS(tags)`)
	require.NoError(t, err)
	assert.True(t, Evaluate(expr, map[string]any{"tags": "x"}))
	assert.False(t, Evaluate(expr, map[string]any{}))
}

func TestParseSQLSyntaxErrorSurfacesInvalidFilter(t *testing.T) {
	_, err := ParseSQL(`category = `)
	assert.Error(t, err)
}

func TestDottedFieldPath(t *testing.T) {
	expr, err := ParseSQL(`user.profile.age > 18`)
	require.NoError(t, err)
	assert.True(t, Evaluate(expr, map[string]any{
		"user": map[string]any{"profile": map[string]any{"age": int64(21)}},
	}))
	assert.False(t, Evaluate(expr, map[string]any{
		"user": map[string]any{"profile": map[string]any{"age": int64(10)}},
	}))
}

func TestUnknownFieldSemantics(t *testing.T) {
	eqExpr := Cmp{Field: "missing", Op: OpEq, Value: "x"}
	assert.False(t, Evaluate(eqExpr, map[string]any{}))

	existsExpr := Exists{Field: "missing", Want: true}
	assert.False(t, Evaluate(existsExpr, map[string]any{}))

	isNullExpr := IsNull{Field: "missing", Want: true}
	assert.True(t, Evaluate(isNullExpr, map[string]any{}))
}

func TestLikeCaseInsensitiveWildcards(t *testing.T) {
	assert.True(t, likeMatch("FooBar", "foo%"))
	assert.True(t, likeMatch("fob", "f_b"))
	assert.False(t, likeMatch("foob", "f_b"))
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	expr, err := ParseSQL("")
	require.NoError(t, err)
	assert.True(t, Evaluate(expr, map[string]any{"anything": "goes"}))
}
