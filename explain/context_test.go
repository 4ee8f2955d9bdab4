package explain

import (
	"testing"

	"github.com/druarnfield/mdx2dax/irbuilder"
	"github.com/druarnfield/mdx2dax/mdxparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMeasureByDimensionContext(t *testing.T) {
	q, err := mdxparser.Parse(`SELECT {[Measures].[Sales Amount]} ON COLUMNS, {[Product].[Category].Members} ON ROWS FROM [Adventure Works]`, mdxparser.DefaultConfig())
	require.NoError(t, err)
	query, err := irbuilder.Build(q)
	require.NoError(t, err)

	ctx := Build(query)
	require.Len(t, ctx.Measures, 1)
	assert.Equal(t, "sum of Sales Amount", ctx.Measures[0].Text)
	require.Len(t, ctx.Dimensions, 1)
	assert.Equal(t, "Product.Category", ctx.Dimensions[0].Text)
	assert.Contains(t, ctx.SQLSketch, "SELECT Category, SUM(Sales Amount) AS Sales Amount")
	assert.Contains(t, ctx.SQLSketch, "FROM Adventure Works")
	assert.Contains(t, ctx.SQLSketch, "GROUP BY Category")
}

func TestBuildSlicerFilterContext(t *testing.T) {
	q, err := mdxparser.Parse(`SELECT {[Measures].[Sales Amount]} ON 0, {[Product].[Category].Members} ON 1 FROM [Adventure Works] WHERE ([Date].[Calendar Year].&[2023])`, mdxparser.DefaultConfig())
	require.NoError(t, err)
	query, err := irbuilder.Build(q)
	require.NoError(t, err)

	ctx := Build(query)
	require.Len(t, ctx.Filters, 1)
	assert.Equal(t, "Date.Calendar Year = 2023", ctx.Filters[0].Text)
	assert.Contains(t, ctx.SQLSketch, "WHERE Date.Calendar Year = 2023")
}

func TestBuildCalculatedMeasureContext(t *testing.T) {
	q, err := mdxparser.Parse(`WITH MEMBER [Measures].[Profit] AS [Measures].[Sales Amount] - [Measures].[Total Cost] SELECT {[Measures].[Profit]} ON 0 FROM [Adventure Works]`, mdxparser.DefaultConfig())
	require.NoError(t, err)
	query, err := irbuilder.Build(q)
	require.NoError(t, err)

	ctx := Build(query)
	require.Len(t, ctx.Calculations, 1)
	assert.Equal(t, "Profit is computed as a custom expression", ctx.Calculations[0].Text)
}
