package dax

import (
	"regexp"
	"strings"
	"testing"

	"github.com/druarnfield/mdx2dax/irbuilder"
	"github.com/druarnfield/mdx2dax/mdxparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wsRe = regexp.MustCompile(`[ \t]+`)

// normalize collapses indentation/spacing differences while keeping line
// breaks significant, so the generator's exact indent width doesn't need
// to match a test's hand-written expectation character for character.
func normalize(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = wsRe.ReplaceAllString(strings.TrimSpace(l), " ")
	}
	return strings.Join(lines, "\n")
}

func generate(t *testing.T, src string) Result {
	t.Helper()
	q, err := mdxparser.Parse(src, mdxparser.DefaultConfig())
	require.NoError(t, err)
	query, err := irbuilder.Build(q)
	require.NoError(t, err)
	res, err := Generate(query, DefaultConfig())
	require.NoError(t, err)
	return res
}

func TestGenerateMeasureOnly(t *testing.T) {
	res := generate(t, `SELECT {[Measures].[Sales Amount]} ON 0 FROM [Adventure Works]`)
	assert.Equal(t, normalize(`
EVALUATE
{ [Sales Amount] }
`), normalize(res.Text))
}

func TestGenerateMeasureByDimension(t *testing.T) {
	res := generate(t, `SELECT {[Measures].[Sales Amount]} ON COLUMNS, {[Product].[Category].Members} ON ROWS FROM [Adventure Works]`)
	assert.Equal(t, normalize(`
EVALUATE
SUMMARIZECOLUMNS(
    Product[Category],
    "Sales Amount", [Sales Amount]
)
`), normalize(res.Text))
}

func TestGenerateMultipleMeasuresQuotedTable(t *testing.T) {
	res := generate(t, `SELECT {[Measures].[Sales Amount], [Measures].[Order Quantity]} ON COLUMNS, {[Date].[Calendar Year].Members} ON ROWS FROM [Adventure Works]`)
	assert.Equal(t, normalize(`
EVALUATE
SUMMARIZECOLUMNS(
    'Date'[Calendar Year],
    "Sales Amount", [Sales Amount],
    "Order Quantity", [Order Quantity]
)
`), normalize(res.Text))
}

func TestGenerateSlicerToFilter(t *testing.T) {
	res := generate(t, `SELECT {[Measures].[Sales Amount]} ON 0, {[Product].[Category].Members} ON 1 FROM [Adventure Works] WHERE ([Date].[Calendar Year].&[2023])`)
	assert.Equal(t, normalize(`
EVALUATE
CALCULATETABLE(
    SUMMARIZECOLUMNS(
        Product[Category],
        "Sales Amount", [Sales Amount]
    ),
    'Date'[Calendar Year] = 2023
)
`), normalize(res.Text))
}

func TestGenerateSpecificMembersInFilter(t *testing.T) {
	res := generate(t, `SELECT {[Measures].[Sales Amount]} ON 0, {[Product].[Category].[Bikes], [Product].[Category].[Accessories]} ON 1 FROM [Adventure Works]`)
	assert.Equal(t, normalize(`
EVALUATE
CALCULATETABLE(
    SUMMARIZECOLUMNS(
        "Sales Amount", [Sales Amount]
    ),
    Product[Category] IN {"Bikes", "Accessories"}
)
`), normalize(res.Text))
}

func TestGenerateCalculatedMeasure(t *testing.T) {
	res := generate(t, `WITH MEMBER [Measures].[Profit] AS [Measures].[Sales Amount] - [Measures].[Total Cost] SELECT {[Measures].[Profit]} ON 0 FROM [Adventure Works]`)
	assert.Equal(t, normalize(`
DEFINE
    MEASURE _Calcs[Profit] = ([Sales Amount] - [Total Cost])
EVALUATE
{ [Profit] }
`), normalize(res.Text))
}

func TestGenerateNonEmptyWrapsFilter(t *testing.T) {
	res := generate(t, `SELECT NON EMPTY {[Measures].[Sales Amount]} ON 0 FROM [Adventure Works]`)
	assert.Contains(t, res.Text, "FILTER(")
	assert.Contains(t, res.Text, "<> BLANK()")
}

func TestGenerateUnknownFunctionWarns(t *testing.T) {
	res := generate(t, `WITH MEMBER [Measures].[X] AS SOMEMADEUPFN([Measures].[Sales Amount]) SELECT {[Measures].[X]} ON 0 FROM [Adventure Works]`)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "SOMEMADEUPFN")
}
