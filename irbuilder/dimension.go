package irbuilder

import (
	"strings"

	"github.com/druarnfield/mdx2dax/cst"
	"github.com/druarnfield/mdx2dax/errs"
	"github.com/druarnfield/mdx2dax/ir"
)

// flattenSet walks a set_expr (SPEC_FULL supplemented feature 4) and
// collects every member expression it contains, in source order.
// Containers transparent to flattening: nested Set literals, tuples, the
// '*' crossjoin operator, redundant parens, and the set-combinator
// function calls (CROSSJOIN/UNION/INTERSECT/EXCEPT); TOPN/FILTER/ORDER/
// DISTINCT recurse into their conventional set-argument position only.
func flattenSet(n cst.Node) []*cst.Member {
	switch v := n.(type) {
	case *cst.Member:
		return []*cst.Member{v}
	case *cst.Set:
		var out []*cst.Member
		for _, item := range v.Items {
			out = append(out, flattenSet(item)...)
		}
		return out
	case *cst.Tuple:
		var out []*cst.Member
		for _, m := range v.Members {
			if mem, ok := m.(*cst.Member); ok {
				out = append(out, mem)
			}
		}
		return out
	case *cst.BinaryOp:
		if v.Op == "*" {
			return append(flattenSet(v.Left), flattenSet(v.Right)...)
		}
		return nil
	case *cst.Paren:
		return flattenSet(v.Inner)
	case *cst.FunctionCall:
		switch strings.ToUpper(v.Name) {
		case "CROSSJOIN", "UNION", "INTERSECT", "EXCEPT":
			var out []*cst.Member
			for _, a := range v.Args {
				out = append(out, flattenSet(a)...)
			}
			return out
		case "TOPN":
			if len(v.Args) > 1 {
				return flattenSet(v.Args[1])
			}
		case "FILTER", "ORDER", "DISTINCT":
			if len(v.Args) > 0 {
				return flattenSet(v.Args[0])
			}
		}
		return nil
	default:
		return nil
	}
}

// normalizeHierarchyPath collapses a redundant "[Dim].[Dim].[Level]" path
// where the hierarchy segment just repeats the dimension name, as SSAS's
// default attribute hierarchies produce, down to "[Dim].[Level]" before
// dimension classification runs.
func normalizeHierarchyPath(segs []*cst.BracketedIdent) []*cst.BracketedIdent {
	if len(segs) >= 2 && segs[0].Value == segs[1].Value {
		return segs[1:]
	}
	return segs
}

// dimensionFromMember implements spec §4.D step 4: derive table/level from
// the first two segments (after hierarchy-path normalization) and the
// MemberSelection from any trailing member function or bare third segment.
func dimensionFromMember(m *cst.Member) (ir.Dimension, error) {
	if len(m.Segments) == 0 {
		return ir.Dimension{}, errs.New(errs.Build, "member reference has no segments").Typed()
	}
	segs := normalizeHierarchyPath(m.Segments)
	table := segs[0].Value
	levelName := table
	if len(segs) >= 2 {
		levelName = segs[1].Value
	}

	sel, err := memberSelectionFor(segs, m.Fn)
	if err != nil {
		return ir.Dimension{}, err
	}

	return ir.Dimension{
		Hierarchy: ir.HierarchyRef{Table: table, Name: table},
		Level:     ir.LevelRef{Name: levelName},
		Members:   sel,
	}, nil
}

func memberSelectionFor(segs []*cst.BracketedIdent, fn *cst.MemberFunction) (ir.MemberSelection, error) {
	if fn == nil {
		if len(segs) >= 3 {
			return ir.NewSpecificSelection([]string{segs[len(segs)-1].Value}), nil
		}
		return ir.MemberSelection{Kind: ir.SelectAll}, nil
	}
	switch fn.FnKind {
	case cst.MemberFunctionMembers:
		return ir.MemberSelection{Kind: ir.SelectAll}, nil
	case cst.MemberFunctionChildren:
		parent := segs[len(segs)-1].Value
		return ir.MemberSelection{Kind: ir.SelectChildren, Parent: parent}, nil
	case cst.MemberFunctionKeyRef:
		return ir.NewSpecificSelection([]string{fn.Key.Value}), nil
	default:
		// A trailing function-call member_fn (e.g. .Lag(1)) has no
		// MemberSelection analogue in spec §3; treat it as the full level
		// (All), the most conservative reading.
		return ir.MemberSelection{Kind: ir.SelectAll}, nil
	}
}

// filtersFromSlicer implements spec §4.D step 5.
func filtersFromSlicer(slicer cst.Node) ([]ir.Filter, error) {
	var members []*cst.Member
	switch v := slicer.(type) {
	case *cst.Tuple:
		for _, mn := range v.Members {
			if mem, ok := mn.(*cst.Member); ok {
				members = append(members, mem)
			}
		}
	case *cst.Member:
		members = append(members, v)
	default:
		return nil, errs.New(errs.Build, "WHERE slicer must be a member or tuple").Typed()
	}

	var filters []ir.Filter
	for _, m := range members {
		dim, err := dimensionFromMember(m)
		if err != nil {
			return nil, err
		}
		if dim.Members.Kind != ir.SelectSpecific {
			// A slicer referencing a whole level ({Members}/{Children}) has no
			// single scalar value; spec §4.D only specifies the single-value
			// case, so this is left as a structural Build error.
			return nil, errs.New(errs.Build, "WHERE slicer member must resolve to a single value").Typed()
		}
		filters = append(filters, ir.NewDimensionFilter(dim, ir.OpEq, dim.Members.Members))
	}
	return filters, nil
}
