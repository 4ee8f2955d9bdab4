package mdxparser

import (
	"testing"

	"github.com/druarnfield/mdx2dax/cst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *cst.Query {
	t.Helper()
	q, err := Parse(src, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, q)
	return q
}

func TestParseMeasureOnly(t *testing.T) {
	q := mustParse(t, `SELECT {[Measures].[Sales Amount]} ON 0 FROM [Adventure Works]`)
	require.Len(t, q.Select.Axes, 1)
	assert.Equal(t, 0, q.Select.Axes[0].AxisNum)
	set, ok := q.Select.Axes[0].Set.(*cst.Set)
	require.True(t, ok)
	require.Len(t, set.Items, 1)
	member, ok := set.Items[0].(*cst.Member)
	require.True(t, ok)
	require.Len(t, member.Segments, 2)
	assert.Equal(t, "Measures", member.Segments[0].Value)
	assert.Equal(t, "Sales Amount", member.Segments[1].Value)
	assert.Equal(t, []string{"Adventure Works"}, segValues(q.Select.From.Segments))
}

func TestParseMeasureByDimension(t *testing.T) {
	q := mustParse(t, `SELECT {[Measures].[Sales Amount]} ON COLUMNS, {[Product].[Category].Members} ON ROWS FROM [Adventure Works]`)
	require.Len(t, q.Select.Axes, 2)
	assert.Equal(t, "COLUMNS", q.Select.Axes[0].AxisName)
	assert.Equal(t, "ROWS", q.Select.Axes[1].AxisName)

	set := q.Select.Axes[1].Set.(*cst.Set)
	member := set.Items[0].(*cst.Member)
	require.NotNil(t, member.Fn)
	assert.Equal(t, cst.MemberFunctionMembers, member.Fn.FnKind)
}

func TestParseNestedSetsMultipleMeasures(t *testing.T) {
	q := mustParse(t, `SELECT {{{[Measures].[Sales Amount]},{[Measures].[Order Quantity]}}} ON 0, {[Date].[Calendar Year].Members} ON 1 FROM [Adventure Works]`)
	outer := q.Select.Axes[0].Set.(*cst.Set)
	require.Len(t, outer.Items, 1)
	middle := outer.Items[0].(*cst.Set)
	require.Len(t, middle.Items, 2)
	_, ok1 := middle.Items[0].(*cst.Set)
	_, ok2 := middle.Items[1].(*cst.Set)
	assert.True(t, ok1)
	assert.True(t, ok2)
}

func TestParseSlicerKeyRefTuple(t *testing.T) {
	q := mustParse(t, `SELECT {[Measures].[Sales Amount]} ON 0, {[Product].[Category].Members} ON 1 FROM [Adventure Works] WHERE ([Date].[Calendar Year].&[2023])`)
	require.NotNil(t, q.Select.Where)
	tuple, ok := q.Select.Where.Slicer.(*cst.Tuple)
	require.True(t, ok)
	require.Len(t, tuple.Members, 1)
	member := tuple.Members[0].(*cst.Member)
	require.NotNil(t, member.Fn)
	require.Equal(t, cst.MemberFunctionKeyRef, member.Fn.FnKind)
	assert.Equal(t, "2023", member.Fn.Key.Value)
}

func TestParseSpecificMembersSet(t *testing.T) {
	q := mustParse(t, `SELECT {[Measures].[Sales Amount]} ON 0, {[Product].[Category].[Bikes], [Product].[Category].[Accessories]} ON 1 FROM [Adventure Works]`)
	set := q.Select.Axes[1].Set.(*cst.Set)
	require.Len(t, set.Items, 2)
	m0 := set.Items[0].(*cst.Member)
	m1 := set.Items[1].(*cst.Member)
	assert.Equal(t, "Bikes", m0.Segments[2].Value)
	assert.Equal(t, "Accessories", m1.Segments[2].Value)
}

func TestParseWithCalculatedMeasure(t *testing.T) {
	q := mustParse(t, `WITH MEMBER [Measures].[Profit] AS [Measures].[Sales Amount] - [Measures].[Total Cost] SELECT {[Measures].[Profit]} ON 0 FROM [Adventure Works]`)
	require.NotNil(t, q.With)
	require.Len(t, q.With.Defs, 1)
	def := q.With.Defs[0]
	assert.Equal(t, "Profit", def.Target.Segments[1].Value)
	bin, ok := def.Expr.(*cst.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "-", bin.Op)
}

func TestParsePrecedenceAndAssociativity(t *testing.T) {
	q := mustParse(t, `WITH MEMBER [Measures].[X] AS 1 + 2 * 3 SELECT {[Measures].[X]} ON 0 FROM [Cube]`)
	bin := q.With.Defs[0].Expr.(*cst.BinaryOp)
	assert.Equal(t, "+", bin.Op)
	rhs := bin.Right.(*cst.BinaryOp)
	assert.Equal(t, "*", rhs.Op)
}

func TestParseIif(t *testing.T) {
	q := mustParse(t, `WITH MEMBER [Measures].[X] AS IIF([Measures].[A] > 0, [Measures].[A], 0) SELECT {[Measures].[X]} ON 0 FROM [Cube]`)
	call := q.With.Defs[0].Expr.(*cst.FunctionCall)
	assert.Equal(t, "IIF", call.Name)
	require.Len(t, call.Args, 3)
}

func TestParseCase(t *testing.T) {
	q := mustParse(t, `WITH MEMBER [Measures].[X] AS CASE WHEN [Measures].[A] > 0 THEN 1 WHEN [Measures].[A] < 0 THEN -1 ELSE 0 END SELECT {[Measures].[X]} ON 0 FROM [Cube]`)
	call := q.With.Defs[0].Expr.(*cst.FunctionCall)
	assert.Equal(t, "CASE", call.Name)
	require.Len(t, call.Args, 5) // cond,val,cond,val,else
}

func TestParseFunctionCallInSet(t *testing.T) {
	q := mustParse(t, `SELECT TOPN(5, {[Product].[Category].Members}, [Measures].[Sales Amount]) ON 0 FROM [Cube]`)
	call := q.Select.Axes[0].Set.(*cst.FunctionCall)
	assert.Equal(t, "TOPN", call.Name)
	require.Len(t, call.Args, 3)
}

func TestParseCrossjoinOperator(t *testing.T) {
	q := mustParse(t, `SELECT {[Product].[Category].Members} * {[Date].[Calendar Year].Members} ON 0 FROM [Cube]`)
	bin := q.Select.Axes[0].Set.(*cst.BinaryOp)
	assert.Equal(t, "*", bin.Op)
}

func TestParseComments(t *testing.T) {
	q := mustParse(t, "SELECT -- hint: keep\n{[Measures].[A]} ON 0 FROM [Cube]")
	set := q.Select.Axes[0].Set.(*cst.Set)
	assert.NotEmpty(t, set.Comments())
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse(`SELECT {[Measures].[A]} ON 0 FROM`, DefaultConfig())
	require.Error(t, err)
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse("", DefaultConfig())
	require.Error(t, err)
}

func TestParseMaxInputSizeChars(t *testing.T) {
	cfg := Config{MaxInputSizeChars: 5}
	_, err := Parse(`SELECT {[Measures].[A]} ON 0 FROM [Cube]`, cfg)
	require.Error(t, err)
}

func TestValidateUnbalancedParens(t *testing.T) {
	issues := Validate(`SELECT {[Measures].[A]} ON 0 FROM [Cube]) WHERE (`)
	assert.NotEmpty(t, issues)
}

func TestValidateMissingSelect(t *testing.T) {
	issues := Validate(`FROM [Cube]`)
	found := false
	for _, i := range issues {
		if i.Message == "missing SELECT clause" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestStrictModeRejectsSpacedKeyRef(t *testing.T) {
	src := `SELECT {[Measures].[Sales Amount]} ON 0 FROM [Adventure Works] WHERE ([Date].[Calendar Year].& [2023])`

	_, err := Parse(src, DefaultConfig())
	require.NoError(t, err, "lenient mode should accept whitespace before the key bracket")

	_, err = Parse(src, Config{StrictMode: true})
	require.Error(t, err, "strict mode should reject whitespace between '&' and '['")
}

func TestStrictModeAcceptsAdjacentKeyRef(t *testing.T) {
	src := `SELECT {[Measures].[Sales Amount]} ON 0 FROM [Adventure Works] WHERE ([Date].[Calendar Year].&[2023])`
	_, err := Parse(src, Config{StrictMode: true})
	require.NoError(t, err)
}

func segValues(segs []*cst.BracketedIdent) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Value
	}
	return out
}
