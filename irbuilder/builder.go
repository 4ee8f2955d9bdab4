// Package irbuilder implements Component D (spec §4.D): lowering a parsed
// CST into the ir package's typed model, following the nine-step
// algorithm spec.md lays out (locate sections, extract cube, classify
// axis contents, construct dimensions, lower slicers to filters, lower
// calculations, lower expressions, validate, and separate errors from
// warnings). Grounded algorithmically on
// original_source/src/unmdx/transformer/mdx_transformer.py,
// hierarchy_normalizer.py, and set_flattener.py, in the teacher's
// thin-entry-point package-doc register.
package irbuilder

import (
	"strings"

	"github.com/druarnfield/mdx2dax/cst"
	"github.com/druarnfield/mdx2dax/errs"
	"github.com/druarnfield/mdx2dax/ir"
)

// Build lowers a parsed query CST into an ir.Query (spec §4.D contract
// `build(cst) -> Result<Query, BuildError>`).
func Build(q *cst.Query) (*ir.Query, error) {
	if q == nil || q.Select == nil {
		return nil, errs.New(errs.Build, "query has no SELECT").Typed()
	}

	out := &ir.Query{}

	cube, err := extractCube(q.Select.From)
	if err != nil {
		return nil, err
	}
	out.Cube = cube

	measureSeen := make(map[string]bool)
	dimKeys := make(map[string]int) // (table|level) -> index into out.Dimensions, for Specific merging

	for _, axis := range q.Select.Axes {
		members := flattenSet(axis.Set)
		for _, m := range members {
			if isMeasureRef(m) {
				name := lastSegmentValue(m)
				if !measureSeen[name] {
					measureSeen[name] = true
					out.Measures = append(out.Measures, ir.Measure{Name: name, Aggregation: ir.AggSum})
				}
				continue
			}
			dim, err := dimensionFromMember(m)
			if err != nil {
				return nil, err
			}
			key := dim.Hierarchy.Table + "|" + dim.Level.Name
			if dim.Members.Kind == ir.SelectSpecific {
				if idx, ok := dimKeys[key]; ok && out.Dimensions[idx].Members.Kind == ir.SelectSpecific {
					out.Dimensions[idx].Members.Members = append(out.Dimensions[idx].Members.Members, dim.Members.Members...)
					continue
				}
			}
			dimKeys[key] = len(out.Dimensions)
			out.Dimensions = append(out.Dimensions, dim)
		}
		if axis.NonEmpty {
			out.Filters = append(out.Filters, ir.NewNonEmptyFilter(""))
		}
	}

	if q.Select.Where != nil {
		filters, err := filtersFromSlicer(q.Select.Where.Slicer)
		if err != nil {
			return nil, err
		}
		out.Filters = append(out.Filters, filters...)
	}

	if q.With != nil {
		for _, def := range q.With.Defs {
			calc, err := calculationFromDef(def)
			if err != nil {
				return nil, err
			}
			out.Calculations = append(out.Calculations, calc)
		}
	}

	issues := out.Validate()
	var warnings []string
	for _, issue := range issues {
		if issue.Severity == ir.SeverityError {
			return nil, errs.New(errs.Build, issue.Message).Typed()
		}
		warnings = append(warnings, issue.Message)
	}
	out.Metadata.Warnings = warnings

	return out, nil
}

func extractCube(from *cst.From) (ir.CubeRef, error) {
	if from == nil || len(from.Segments) == 0 {
		return ir.CubeRef{}, errs.New(errs.Build, "missing FROM clause").Typed()
	}
	segs := from.Segments
	switch len(segs) {
	case 1:
		return ir.CubeRef{Cube: segs[0].Value}, nil
	case 2:
		return ir.CubeRef{Schema: segs[0].Value, Cube: segs[1].Value}, nil
	default:
		return ir.CubeRef{Database: segs[0].Value, Schema: segs[1].Value, Cube: segs[len(segs)-1].Value}, nil
	}
}

func isMeasureRef(m *cst.Member) bool {
	if len(m.Segments) == 0 {
		return false
	}
	return strings.EqualFold(m.Segments[0].Value, "Measures")
}

func lastSegmentValue(m *cst.Member) string {
	if m.Fn != nil && m.Fn.FnKind == cst.MemberFunctionKeyRef {
		return m.Fn.Key.Value
	}
	if len(m.Segments) == 0 {
		return ""
	}
	return m.Segments[len(m.Segments)-1].Value
}
