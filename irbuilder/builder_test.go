package irbuilder

import (
	"testing"

	"github.com/druarnfield/mdx2dax/ir"
	"github.com/druarnfield/mdx2dax/mdxparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, src string) *ir.Query {
	t.Helper()
	q, err := mdxparser.Parse(src, mdxparser.DefaultConfig())
	require.NoError(t, err)
	out, err := Build(q)
	require.NoError(t, err)
	return out
}

func TestBuildMeasureOnly(t *testing.T) {
	q := build(t, `SELECT {[Measures].[Sales Amount]} ON 0 FROM [Adventure Works]`)
	assert.Equal(t, "Adventure Works", q.Cube.Cube)
	require.Len(t, q.Measures, 1)
	assert.Equal(t, "Sales Amount", q.Measures[0].Name)
	assert.Empty(t, q.Dimensions)
}

func TestBuildMeasureByDimension(t *testing.T) {
	q := build(t, `SELECT {[Measures].[Sales Amount]} ON COLUMNS, {[Product].[Category].Members} ON ROWS FROM [Adventure Works]`)
	require.Len(t, q.Dimensions, 1)
	assert.Equal(t, "Product", q.Dimensions[0].Hierarchy.Table)
	assert.Equal(t, "Category", q.Dimensions[0].Level.Name)
	assert.Equal(t, ir.SelectAll, q.Dimensions[0].Members.Kind)
}

func TestBuildSpecificMembersMerged(t *testing.T) {
	q := build(t, `SELECT {[Measures].[Sales Amount]} ON 0, {[Product].[Category].[Bikes], [Product].[Category].[Accessories]} ON 1 FROM [Adventure Works]`)
	require.Len(t, q.Dimensions, 1)
	assert.Equal(t, ir.SelectSpecific, q.Dimensions[0].Members.Kind)
	assert.ElementsMatch(t, []string{"Bikes", "Accessories"}, q.Dimensions[0].Members.Members)
}

func TestBuildSlicerFilter(t *testing.T) {
	q := build(t, `SELECT {[Measures].[Sales Amount]} ON 0, {[Product].[Category].Members} ON 1 FROM [Adventure Works] WHERE ([Date].[Calendar Year].&[2023])`)
	require.Len(t, q.Filters, 1)
	f := q.Filters[0]
	assert.Equal(t, ir.KindDimensionFilter, f.Kind)
	assert.Equal(t, ir.OpEq, f.Operator)
	assert.Equal(t, []string{"2023"}, f.Values)
	assert.Equal(t, "Date", f.Dimension.Hierarchy.Table)
}

func TestBuildCalculatedMeasure(t *testing.T) {
	q := build(t, `WITH MEMBER [Measures].[Profit] AS [Measures].[Sales Amount] - [Measures].[Total Cost] SELECT {[Measures].[Profit]} ON 0 FROM [Adventure Works]`)
	require.Len(t, q.Calculations, 1)
	calc := q.Calculations[0]
	assert.Equal(t, "Profit", calc.Name)
	assert.Equal(t, ir.CalcMeasure, calc.Kind)
	assert.Equal(t, ir.ExprBinary, calc.Expression.Kind)
	assert.Equal(t, "-", calc.Expression.Op)
}

func TestBuildNestedSetsFlattened(t *testing.T) {
	q := build(t, `SELECT {{{[Measures].[Sales Amount]},{[Measures].[Order Quantity]}}} ON 0, {[Date].[Calendar Year].Members} ON 1 FROM [Adventure Works]`)
	require.Len(t, q.Measures, 2)
	assert.Equal(t, "Sales Amount", q.Measures[0].Name)
	assert.Equal(t, "Order Quantity", q.Measures[1].Name)
}

func TestBuildNilQueryIsBuildError(t *testing.T) {
	_, err := Build(nil)
	require.Error(t, err)
}

func TestBuildCyclicCalculationIsBuildError(t *testing.T) {
	src := `WITH MEMBER [Measures].[A] AS [Measures].[B] MEMBER [Measures].[B] AS [Measures].[A] SELECT {[Measures].[A]} ON 0 FROM [Cube]`
	cq, err := mdxparser.Parse(src, mdxparser.DefaultConfig())
	require.NoError(t, err)
	_, err = Build(cq)
	require.Error(t, err)
}
