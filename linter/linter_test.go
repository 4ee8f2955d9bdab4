package linter

import (
	"testing"

	"github.com/druarnfield/mdx2dax/cst"
	"github.com/druarnfield/mdx2dax/mdxparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *cst.Query {
	t.Helper()
	q, err := mdxparser.Parse(src, mdxparser.DefaultConfig())
	require.NoError(t, err)
	return q
}

func TestLintParenthesesCleanerStripsRedundantParen(t *testing.T) {
	q := parse(t, `SELECT {([Measures].[Sales Amount])} ON 0 FROM [Cube]`)
	out, report := Lint(q, DefaultConfig())
	assert.True(t, report.fired("parentheses-cleaner"))
	rendered := cst.Render(out)
	assert.NotContains(t, rendered, "(")
}

func TestLintDuplicateSetMemberRemoved(t *testing.T) {
	q := parse(t, `SELECT {[Measures].[A], [Measures].[A], [Measures].[B]} ON 0 FROM [Cube]`)
	out, report := Lint(q, DefaultConfig())
	assert.True(t, report.fired("duplicate-set-member"))
	outQuery := out.(*cst.Query)
	set := outQuery.Select.Axes[0].Set.(*cst.Set)
	assert.Len(t, set.Items, 2)
}

func TestLintDuplicateCalcMemberDropped(t *testing.T) {
	q := parse(t, `WITH MEMBER [Measures].[X] AS 1 MEMBER [Measures].[X] AS 2 SELECT {[Measures].[X]} ON 0 FROM [Cube]`)
	out, report := Lint(q, DefaultConfig())
	assert.True(t, report.fired("duplicate-calc-member"))
	outQuery := out.(*cst.Query)
	assert.Len(t, outQuery.With.Defs, 1)
}

func TestLintVacuousIifRequiresModerate(t *testing.T) {
	q := parse(t, `WITH MEMBER [Measures].[X] AS IIF([Measures].[A] > 0, [Measures].[B], [Measures].[B]) SELECT {[Measures].[X]} ON 0 FROM [Cube]`)
	_, conservativeReport := Lint(q, DefaultConfig())
	assert.False(t, conservativeReport.fired("vacuous-function-calls"))

	out, moderateReport := Lint(q, Config{OptimizationLevel: LevelModerate})
	assert.True(t, moderateReport.fired("vacuous-function-calls"))
	outQuery := out.(*cst.Query)
	call, ok := outQuery.With.Defs[0].Expr.(*cst.Member)
	require.True(t, ok)
	assert.Equal(t, "B", call.Segments[1].Value)
}

func TestLintDisabledRuleDoesNotFire(t *testing.T) {
	q := parse(t, `SELECT {[Measures].[A], [Measures].[A]} ON 0 FROM [Cube]`)
	cfg := DefaultConfig()
	cfg.DisabledRules = []string{"duplicate-set-member"}
	_, report := Lint(q, cfg)
	assert.False(t, report.fired("duplicate-set-member"))
}

func TestLintFastConfigNeverRewrites(t *testing.T) {
	q := parse(t, `SELECT {([Measures].[A]), [Measures].[A]} ON 0 FROM [Cube]`)
	_, report := Lint(q, FastConfig())
	assert.Empty(t, report.Applied)
}

func TestLintCrossJoinSimplifierToTuple(t *testing.T) {
	q := parse(t, `SELECT CROSSJOIN({[Product].[Category].[Bikes]}, {[Date].[Calendar Year].[2023]}) ON 0 FROM [Cube]`)
	out, report := Lint(q, DefaultConfig())
	assert.True(t, report.fired("crossjoin-simplifier"))
	outQuery := out.(*cst.Query)
	_, ok := outQuery.Select.Axes[0].Set.(*cst.Tuple)
	assert.True(t, ok)
}
