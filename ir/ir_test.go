package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpecificSelectionPanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { NewSpecificSelection(nil) })
}

func TestValidateMeasureFilterUnknownMeasure(t *testing.T) {
	q := &Query{
		Filters: []Filter{NewMeasureFilter("Nope", OpGt, 0)},
	}
	issues := q.Errors()
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "Nope")
}

func TestValidateCyclicCalculations(t *testing.T) {
	q := &Query{
		Calculations: []Calculation{
			{Name: "A", Kind: CalcMeasure, Expression: MeasureRefExpr("B")},
			{Name: "B", Kind: CalcMeasure, Expression: MeasureRefExpr("A")},
		},
	}
	issues := q.Errors()
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "cyclic")
}

func TestOrderCalculationsTopological(t *testing.T) {
	calcs := []Calculation{
		{Name: "Profit", Kind: CalcMeasure, Expression: BinaryExpr("-", MeasureRefExpr("Margin"), MeasureRefExpr("Tax"))},
		{Name: "Margin", Kind: CalcMeasure, Expression: MeasureRefExpr("Sales")},
		{Name: "Tax", Kind: CalcMeasure, Expression: MeasureRefExpr("Sales")},
	}
	sorted, _, ok := OrderCalculations(calcs)
	require.True(t, ok)
	require.Len(t, sorted, 3)
	assert.Equal(t, "Profit", sorted[2].Name)
}

func TestDependenciesDistinctFirstSeen(t *testing.T) {
	q := &Query{
		Measures: []Measure{{Name: "Sales Amount"}, {Name: "Sales Amount"}},
		Dimensions: []Dimension{
			{Hierarchy: HierarchyRef{Table: "Product"}, Level: LevelRef{Name: "Category"}},
		},
	}
	deps := q.Dependencies()
	assert.Equal(t, []string{"Sales Amount"}, deps.Measures)
	assert.Equal(t, []string{"Product.Category"}, deps.Dimensions)
}

func TestComplexityCountsExprNodes(t *testing.T) {
	q := &Query{
		Calculations: []Calculation{
			{Name: "X", Expression: BinaryExpr("-", MeasureRefExpr("A"), MeasureRefExpr("B"))},
		},
	}
	assert.Equal(t, 3, q.Complexity())
}

func TestSourceHashStable(t *testing.T) {
	h1 := SourceHash("SELECT {[Measures].[A]} ON 0 FROM [Cube]")
	h2 := SourceHash("SELECT {[Measures].[A]} ON 0 FROM [Cube]")
	assert.Equal(t, h1, h2)
	assert.NotEmpty(t, h1)
}
