package pipeline

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/druarnfield/mdx2dax/errs"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wsRe = regexp.MustCompile(`[ \t]+`)

func normalize(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = wsRe.ReplaceAllString(strings.TrimSpace(l), " ")
	}
	return strings.Join(lines, "\n")
}

func newTestDriver() *Driver {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(log)
}

func TestMdxToDaxScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "measure only",
			src:  `SELECT {[Measures].[Sales Amount]} ON 0 FROM [Adventure Works]`,
			want: `
EVALUATE
{ [Sales Amount] }
`,
		},
		{
			name: "measure by dimension",
			src:  `SELECT {[Measures].[Sales Amount]} ON COLUMNS, {[Product].[Category].Members} ON ROWS FROM [Adventure Works]`,
			want: `
EVALUATE
SUMMARIZECOLUMNS(
    Product[Category],
    "Sales Amount", [Sales Amount]
)
`,
		},
		{
			name: "slicer to filter",
			src:  `SELECT {[Measures].[Sales Amount]} ON 0, {[Product].[Category].Members} ON 1 FROM [Adventure Works] WHERE ([Date].[Calendar Year].&[2023])`,
			want: `
EVALUATE
CALCULATETABLE(
    SUMMARIZECOLUMNS(
        Product[Category],
        "Sales Amount", [Sales Amount]
    ),
    'Date'[Calendar Year] = 2023
)
`,
		},
		{
			name: "specific members to IN filter",
			src:  `SELECT {[Measures].[Sales Amount]} ON 0, {[Product].[Category].[Bikes], [Product].[Category].[Accessories]} ON 1 FROM [Adventure Works]`,
			want: `
EVALUATE
CALCULATETABLE(
    SUMMARIZECOLUMNS(
        "Sales Amount", [Sales Amount]
    ),
    Product[Category] IN {"Bikes", "Accessories"}
)
`,
		},
		{
			name: "calculated measure",
			src:  `WITH MEMBER [Measures].[Profit] AS [Measures].[Sales Amount] - [Measures].[Total Cost] SELECT {[Measures].[Profit]} ON 0 FROM [Adventure Works]`,
			want: `
DEFINE
    MEASURE _Calcs[Profit] = ([Sales Amount] - [Total Cost])
EVALUATE
{ [Profit] }
`,
		},
	}

	d := newTestDriver()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := d.MdxToDax(tc.src, DefaultConfig())
			require.True(t, res.Success, strings.Join(res.Warnings, "; "))
			assert.Equal(t, normalize(tc.want), normalize(res.Output))
			assert.Len(t, res.Timings, 4) // parse, lint, build, generate
			assert.NotEmpty(t, res.SourceHash)
		})
	}
}

func TestMdxToDaxMultipleMeasuresQuotedTable(t *testing.T) {
	d := newTestDriver()
	res := d.MdxToDax(`SELECT {[Measures].[Sales Amount], [Measures].[Order Quantity]} ON COLUMNS, {[Date].[Calendar Year].Members} ON ROWS FROM [Adventure Works]`, DefaultConfig())
	require.True(t, res.Success)
	assert.Equal(t, normalize(`
EVALUATE
SUMMARIZECOLUMNS(
    'Date'[Calendar Year],
    "Sales Amount", [Sales Amount],
    "Order Quantity", [Order Quantity]
)
`), normalize(res.Output))
}

func TestMdxToDaxCacheHit(t *testing.T) {
	d := newTestDriver()
	cfg := DefaultConfig()
	cfg.EnableCache = true

	src := `SELECT {[Measures].[Sales Amount]} ON 0 FROM [Adventure Works]`
	first := d.MdxToDax(src, cfg)
	require.True(t, first.Success)
	second := d.MdxToDax(src, cfg)
	require.True(t, second.Success)
	assert.Equal(t, first.Output, second.Output)
}

func TestMdxToDaxParseErrorIsUnsuccessful(t *testing.T) {
	d := newTestDriver()
	res := d.MdxToDax(`SELECT {[Measures].[Sales Amount]} ON 0`, DefaultConfig())
	assert.False(t, res.Success)
	require.Error(t, res.Err)

	var parseErr *errs.ParseError
	require.True(t, errors.As(res.Err, &parseErr), "expected *errs.ParseError, got %T", res.Err)
	assert.Equal(t, errs.Parse, parseErr.Detail.Kind())
	assert.NotNil(t, parseErr.Detail.Pos)
	assert.NotEmpty(t, parseErr.Detail.Suggestions)
}

func TestParseOnlyReturnsQuery(t *testing.T) {
	d := newTestDriver()
	query, res := d.ParseOnly(`SELECT {[Measures].[Sales Amount]} ON 0 FROM [Adventure Works]`, DefaultConfig())
	require.True(t, res.Success)
	require.NotNil(t, query)
	require.Len(t, query.Measures, 1)
	assert.Equal(t, "Sales Amount", query.Measures[0].Name)
	assert.NotEmpty(t, res.Output)
}

func TestOptimiseDropsRedundantParens(t *testing.T) {
	d := newTestDriver()
	out, report, res := d.Optimise(`SELECT {([Measures].[Sales Amount])} ON 0 FROM [Adventure Works]`, DefaultConfig())
	require.True(t, res.Success)
	assert.NotContains(t, out, "((")
	found := false
	for _, a := range report.Applied {
		if a.Rule == "parentheses-cleaner" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExplainBuildsContext(t *testing.T) {
	d := newTestDriver()
	ctx, res := d.Explain(`SELECT {[Measures].[Sales Amount]} ON COLUMNS, {[Product].[Category].Members} ON ROWS FROM [Adventure Works]`, DefaultConfig())
	require.True(t, res.Success)
	require.Len(t, ctx.Measures, 1)
	assert.Contains(t, ctx.SQLSketch, "FROM Adventure Works")
}

func TestFastConfigSkipsLinting(t *testing.T) {
	d := newTestDriver()
	res := d.MdxToDax(`SELECT {([Measures].[Sales Amount])} ON 0 FROM [Adventure Works]`, FastConfig())
	require.True(t, res.Success)
	assert.Len(t, res.Timings, 3) // parse, build, generate -- no lint stage
}
