// Package dax implements Component F (spec §4.F): emitting DAX text from
// an ir.Query, honouring DAX's quoting, precedence, function-name
// mapping, and idiomatic table-expression shapes
// (SUMMARIZECOLUMNS/CALCULATETABLE/ROW/TOPN/FILTER/DIVIDE). Grounded
// algorithmically on original_source/src/unmdx/dax_generator/*.py for
// the exact DAX idiom choices, in the teacher's mode-dispatched
// Generator-struct shape (schema/generator.go).
package dax

import (
	"strings"

	"github.com/druarnfield/mdx2dax/errs"
	"github.com/druarnfield/mdx2dax/ir"
	"github.com/druarnfield/mdx2dax/util"
)

// Result is the output of Generate: the DAX text plus any non-fatal
// warnings accumulated along the way (e.g. an offset limit that can't be
// expressed, or a measure filter needing manual verification).
type Result struct {
	Text     string
	Warnings []string
}

// Generate implements spec §4.F's contract `generate(query, options) ->
// Result<string, GenError>`.
func Generate(q *ir.Query, cfg Config) (Result, error) {
	if q == nil {
		return Result{}, errs.New(errs.Generation, "nil query").Typed()
	}

	var warnings []string

	orderedCalcs, cycleAt, ok := ir.OrderCalculations(q.Calculations)
	if !ok {
		return Result{}, errs.Newf(errs.Generation, "cyclic calculation dependency involving %q", cycleAt).Typed()
	}

	var b strings.Builder

	if len(orderedCalcs) > 0 {
		b.WriteString("DEFINE\n")
		for _, c := range orderedCalcs {
			exprText := exprToDax(c.Expression, &warnings)
			b.WriteString("    MEASURE ")
			b.WriteString(quoteTable(cfg.CalcTableName))
			b.WriteString(bracketColumn(c.Name))
			b.WriteString(" = ")
			b.WriteString(exprText)
			if c.Format != "" {
				b.WriteString(" FORMAT_STRING = ")
				b.WriteString(formatString(c.Format))
			}
			b.WriteString("\n")
		}
	}

	tableExpr, tableWarnings := buildTableExpr(q, cfg)
	warnings = append(warnings, tableWarnings...)

	b.WriteString("EVALUATE\n")
	b.WriteString(tableExpr)

	if len(q.OrderBy) > 0 {
		b.WriteString("\nORDER BY ")
		parts := make([]string, len(q.OrderBy))
		for i, key := range q.OrderBy {
			parts[i] = exprToDax(key.Expr, &warnings) + " " + string(key.Dir)
		}
		b.WriteString(strings.Join(parts, ", "))
	}

	return Result{Text: b.String(), Warnings: warnings}, nil
}

// buildTableExpr implements spec §4.F's "Shape of <table-expr>" rules.
func buildTableExpr(q *ir.Query, cfg Config) (string, []string) {
	var warnings []string

	var groupCols []string
	var filterArgs []string
	var nonEmptyMeasure string
	hasNonEmpty := false

	for _, d := range q.Dimensions {
		if d.Members.Kind == ir.SelectSpecific {
			filterArgs = append(filterArgs, specificMemberFilterArg(d))
			continue
		}
		groupCols = append(groupCols, groupColumn(d.Hierarchy.Table, d.Level.Name))
	}

	for _, f := range q.Filters {
		switch f.Kind {
		case ir.KindDimensionFilter:
			filterArgs = append(filterArgs, dimensionFilterArg(f))
		case ir.KindMeasureFilter:
			filterArgs = append(filterArgs, measureFilterArg(f))
			warnings = append(warnings, "measure filter on "+f.Measure+" may require manual verification")
		case ir.KindNonEmptyFilter:
			hasNonEmpty = true
			nonEmptyMeasure = f.NonEmptyMeasure
		}
	}

	measureArgs := util.TransformSlice(q.Measures, func(m ir.Measure) string {
		alias := m.Alias
		if alias == "" {
			alias = m.Name
		}
		return formatString(alias) + ", " + bracketColumn(m.Name)
	})

	needsAlias := false
	for _, m := range q.Measures {
		if m.Alias != "" {
			needsAlias = true
		}
	}

	hasLimit := q.Limit != nil && q.Limit.Count > 0
	nonEmptyOK := false
	measure := nonEmptyMeasure
	if hasNonEmpty {
		if measure == "" && len(q.Measures) > 0 {
			measure = q.Measures[0].Name
		}
		nonEmptyOK = measure != ""
	}

	// Layers from outermost to innermost; base is built at an indentLevel
	// equal to how many of these enclose it, and each layer is then applied
	// from innermost to outermost, one indentLevel shallower each time.
	var layers []string
	if nonEmptyOK {
		layers = append(layers, "nonempty")
	}
	if hasLimit {
		layers = append(layers, "limit")
	}
	if len(filterArgs) > 0 {
		layers = append(layers, "filter")
	}

	baseLevel := len(layers)
	var inner string
	switch {
	case len(q.Dimensions) == 0:
		if needsAlias {
			inner = formatCall("ROW", measureArgs, baseLevel, cfg)
		} else {
			parts := util.TransformSlice(q.Measures, func(m ir.Measure) string { return bracketColumn(m.Name) })
			inner = "{ " + strings.Join(parts, ", ") + " }"
		}
	default:
		args := append(append([]string{}, groupCols...), measureArgs...)
		inner = formatCall("SUMMARIZECOLUMNS", args, baseLevel, cfg)
	}

	level := baseLevel
	for i := len(layers) - 1; i >= 0; i-- {
		level--
		switch layers[i] {
		case "filter":
			args := append([]string{inner}, filterArgs...)
			inner = formatCall("CALCULATETABLE", args, level, cfg)
		case "limit":
			if q.Limit.Offset != 0 {
				warnings = append(warnings, "LIMIT offset is not representable in DAX TOPN; offset ignored")
			}
			inner = formatCall("TOPN", []string{formatNumber(float64(q.Limit.Count)), inner}, level, cfg)
		case "nonempty":
			cond := bracketColumn(measure) + " <> BLANK()"
			inner = formatCall("FILTER", []string{inner, cond}, level, cfg)
		}
	}

	return inner, warnings
}

func specificMemberFilterArg(d ir.Dimension) string {
	col := groupColumn(d.Hierarchy.Table, d.Level.Name)
	if len(d.Members.Members) == 1 {
		return col + " = " + filterLiteral(d.Members.Members[0])
	}
	lits := util.TransformSlice(d.Members.Members, filterLiteral)
	return col + " IN {" + strings.Join(lits, ", ") + "}"
}

func dimensionFilterArg(f ir.Filter) string {
	col := groupColumn(f.Dimension.Hierarchy.Table, f.Dimension.Level.Name)
	switch f.Operator {
	case ir.OpEq:
		if len(f.Values) == 1 {
			return col + " = " + filterLiteral(f.Values[0])
		}
		fallthrough
	case ir.OpIn:
		lits := util.TransformSlice(f.Values, filterLiteral)
		return col + " IN {" + strings.Join(lits, ", ") + "}"
	case ir.OpNotIn:
		lits := util.TransformSlice(f.Values, filterLiteral)
		return "NOT(" + col + " IN {" + strings.Join(lits, ", ") + "})"
	case ir.OpContains, ir.OpStartsWith, ir.OpEndsWith:
		val := ""
		if len(f.Values) > 0 {
			val = f.Values[0]
		}
		return "NOT(ISERROR(SEARCH(" + formatString(val) + ", " + col + ")))"
	default:
		val := ""
		if len(f.Values) > 0 {
			val = f.Values[0]
		}
		return col + " " + string(f.Operator) + " " + filterLiteral(val)
	}
}

func measureFilterArg(f ir.Filter) string {
	return bracketColumn(f.Measure) + " " + string(f.MeasureOp) + " " + formatNumber(f.MeasureVal)
}
