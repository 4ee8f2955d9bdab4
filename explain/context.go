// Package explain implements SPEC_FULL's supplemented explainer feature:
// building a structured ExplanationContext from an ir.Query, the same
// shape original_source/src/unmdx/explainer/generator.py assembles
// before handing it to prose rendering (out of scope here per spec.md
// §1 — mdx2dax stops at the structured value).
package explain

import (
	"fmt"
	"strings"

	"github.com/druarnfield/mdx2dax/ir"
	"github.com/druarnfield/mdx2dax/util"
)

// MeasureExplanation is one human-scannable line about a projected measure.
type MeasureExplanation struct {
	Text string
}

// DimensionExplanation is one human-scannable line about a grouping.
type DimensionExplanation struct {
	Text string
}

// FilterExplanation is one human-scannable line about a filter.
type FilterExplanation struct {
	Text string
}

// CalculationExplanation is one human-scannable line about a WITH MEMBER.
type CalculationExplanation struct {
	Text string
}

// Context is the structured explanation handed to an external renderer
// (spec.md §1's "human-readable explanation" contract surface).
// Building it is mdx2dax's job; turning it into prose is not.
type Context struct {
	Measures     []MeasureExplanation
	Dimensions   []DimensionExplanation
	Filters      []FilterExplanation
	Calculations []CalculationExplanation
	OrderBy      []string
	Limit        string
	SQLSketch    string
}

// Build assembles a Context from an ir.Query (the Go counterpart of
// HumanReadableGenerator.generate in original_source/explainer/generator.py).
func Build(q *ir.Query) Context {
	var ctx Context

	ctx.Measures = util.TransformSlice(q.Measures, func(m ir.Measure) MeasureExplanation {
		return MeasureExplanation{Text: measureText(m)}
	})
	ctx.Dimensions = util.TransformSlice(q.Dimensions, func(d ir.Dimension) DimensionExplanation {
		return DimensionExplanation{Text: dimensionText(d)}
	})
	ctx.Filters = util.TransformSlice(q.Filters, func(f ir.Filter) FilterExplanation {
		return FilterExplanation{Text: filterText(f)}
	})
	ctx.Calculations = util.TransformSlice(q.Calculations, func(c ir.Calculation) CalculationExplanation {
		return CalculationExplanation{Text: fmt.Sprintf("%s is computed as a custom expression", c.Name)}
	})
	ctx.OrderBy = util.TransformSlice(q.OrderBy, func(o ir.OrderKey) string { return string(o.Dir) })
	if q.Limit != nil {
		if q.Limit.Offset > 0 {
			ctx.Limit = fmt.Sprintf("Limit to %d rows, skipping the first %d", q.Limit.Count, q.Limit.Offset)
		} else {
			ctx.Limit = fmt.Sprintf("Limit to %d rows", q.Limit.Count)
		}
	}

	ctx.SQLSketch = sqlSketch(q)
	return ctx
}

func measureText(m ir.Measure) string {
	alias := m.Alias
	if alias == "" {
		alias = m.Name
	}
	if m.Aggregation == ir.AggCustom {
		return alias
	}
	return fmt.Sprintf("%s of %s", strings.ToLower(string(m.Aggregation)), m.Name)
}

func dimensionText(d ir.Dimension) string {
	switch d.Members.Kind {
	case ir.SelectSpecific:
		return fmt.Sprintf("%s.%s restricted to %s", d.Hierarchy.Table, d.Level.Name, strings.Join(d.Members.Members, ", "))
	case ir.SelectChildren:
		return fmt.Sprintf("children of %s.%s", d.Hierarchy.Table, d.Members.Parent)
	default:
		return fmt.Sprintf("%s.%s", d.Hierarchy.Table, d.Level.Name)
	}
}

func filterText(f ir.Filter) string {
	switch f.Kind {
	case ir.KindDimensionFilter:
		return fmt.Sprintf("%s.%s %s %s", f.Dimension.Hierarchy.Table, f.Dimension.Level.Name, f.Operator, strings.Join(f.Values, ", "))
	case ir.KindMeasureFilter:
		return fmt.Sprintf("%s %s %v", f.Measure, f.MeasureOp, f.MeasureVal)
	case ir.KindNonEmptyFilter:
		if f.NonEmptyMeasure != "" {
			return fmt.Sprintf("only rows where %s is non-empty", f.NonEmptyMeasure)
		}
		return "only non-empty rows"
	default:
		return ""
	}
}

// sqlSketch builds the SQL-shaped sketch string (original_source's
// _generate_sql_like), used only as illustrative context, never parsed.
func sqlSketch(q *ir.Query) string {
	var lines []string

	var selectItems []string
	for _, d := range q.Dimensions {
		selectItems = append(selectItems, d.Level.Name)
	}
	for _, m := range q.Measures {
		alias := m.Alias
		if alias == "" {
			alias = m.Name
		}
		if m.Aggregation == ir.AggCustom {
			selectItems = append(selectItems, alias)
		} else {
			selectItems = append(selectItems, fmt.Sprintf("%s(%s) AS %s", m.Aggregation, m.Name, alias))
		}
	}
	lines = append(lines, "SELECT "+strings.Join(selectItems, ", "))
	lines = append(lines, "FROM "+q.Cube.Cube)

	if len(q.Filters) > 0 {
		var conds []string
		for _, f := range q.Filters {
			conds = append(conds, filterText(f))
		}
		lines = append(lines, "WHERE "+strings.Join(conds, " AND "))
	}

	if len(q.Dimensions) > 0 {
		groupItems := util.TransformSlice(q.Dimensions, func(d ir.Dimension) string { return d.Level.Name })
		lines = append(lines, "GROUP BY "+strings.Join(groupItems, ", "))
	}

	if len(q.OrderBy) > 0 {
		orderItems := util.TransformSlice(q.OrderBy, func(o ir.OrderKey) string { return string(o.Dir) })
		lines = append(lines, "ORDER BY "+strings.Join(orderItems, ", "))
	}

	if q.Limit != nil {
		if q.Limit.Offset > 0 {
			lines = append(lines, fmt.Sprintf("LIMIT %d OFFSET %d", q.Limit.Count, q.Limit.Offset))
		} else {
			lines = append(lines, fmt.Sprintf("LIMIT %d", q.Limit.Count))
		}
	}

	return strings.Join(lines, "\n")
}
