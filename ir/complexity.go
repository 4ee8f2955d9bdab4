package ir

// Complexity is a diagnostic-only metric (SPEC_FULL supplemented feature
// 6; Open Question 3 decision: scores here are implementation-defined and
// not part of any contract other callers may depend on). It counts
// dimensions, filters, and calculation expression nodes as a rough proxy
// for how expensive the generated DAX is likely to be to evaluate.
func (q *Query) Complexity() int {
	score := len(q.Dimensions) + len(q.Filters)
	for _, c := range q.Calculations {
		score += exprNodeCount(c.Expression)
	}
	for _, m := range q.Measures {
		if m.Aggregation == AggCustom {
			score += exprNodeCount(m.Expression)
		}
	}
	return score
}

func exprNodeCount(e Expr) int {
	n := 1
	switch e.Kind {
	case ExprBinary:
		n += exprNodeCount(*e.Left) + exprNodeCount(*e.Right)
	case ExprUnary:
		n += exprNodeCount(*e.Operand)
	case ExprFunctionCall:
		for _, a := range e.Args {
			n += exprNodeCount(a)
		}
	case ExprIif:
		n += exprNodeCount(*e.IifCond) + exprNodeCount(*e.IifThen) + exprNodeCount(*e.IifElse)
	case ExprCase:
		for _, arm := range e.CaseArms {
			n += exprNodeCount(arm.Cond) + exprNodeCount(arm.Then)
		}
		if e.CaseElse != nil {
			n += exprNodeCount(*e.CaseElse)
		}
	}
	return n
}
