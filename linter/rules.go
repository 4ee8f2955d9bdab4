package linter

import (
	"strings"

	"github.com/druarnfield/mdx2dax/cst"
)

// applyParenCleaner strips a Paren wrapping a node that never needs
// grouping: a member, a literal, a function call, a set, a tuple or another
// paren (spec §4.E "Parentheses cleaner"). It also unwraps a single-member
// Tuple, which is how the parser represents `(x)` in a set or tuple
// position. Binary operands are left alone —
// whether they need grouping depends on the parent's required precedence,
// which a single bottom-up pass over the Paren node alone can't always
// determine safely, and the rule must leave the tree unchanged when
// uncertain.
func applyParenCleaner(root cst.Node, report *Report) cst.Node {
	return cst.Transform(root, func(n cst.Node) cst.Node {
		if t, ok := n.(*cst.Tuple); ok && len(t.Members) == 1 {
			record(report, "parentheses-cleaner", "stripped the parens of a single-member tuple", n, t.Members[0])
			return t.Members[0]
		}
		p, ok := n.(*cst.Paren)
		if !ok {
			return n
		}
		if !parenIsRedundant(p.Inner) {
			return n
		}
		record(report, "parentheses-cleaner", "stripped a redundant paren", n, p.Inner)
		return p.Inner
	})
}

func parenIsRedundant(inner cst.Node) bool {
	switch inner.(type) {
	case *cst.Member, *cst.Literal, *cst.FunctionCall, *cst.Paren, *cst.Set, *cst.Tuple:
		return true
	default:
		return false
	}
}

// applyCrossJoinSimplifier implements spec §4.E "CrossJoin simplifier":
// CROSSJOIN(A,B) with simple operands becomes a tuple (A,B); a chain of
// nested CROSSJOIN calls flattens to A * B * C.
func applyCrossJoinSimplifier(root cst.Node, report *Report) cst.Node {
	return cst.Transform(root, func(n cst.Node) cst.Node {
		call, ok := n.(*cst.FunctionCall)
		if !ok || strings.ToUpper(call.Name) != "CROSSJOIN" || len(call.Args) != 2 {
			return n
		}
		operands := flattenCrossjoin(call)
		if len(operands) < 2 {
			return n
		}
		for _, op := range operands {
			if !isSimpleSetOperand(op) {
				return n
			}
		}
		var replacement cst.Node
		if len(operands) == 2 {
			replacement = cst.NewTuple(n.Pos(), operands)
		} else {
			replacement = operands[0]
			for _, op := range operands[1:] {
				replacement = cst.NewBinaryOp(n.Pos(), "*", replacement, op)
			}
		}
		record(report, "crossjoin-simplifier", "flattened CROSSJOIN", n, replacement)
		return replacement
	})
}

func flattenCrossjoin(call *cst.FunctionCall) []cst.Node {
	var out []cst.Node
	for _, a := range call.Args {
		if nested, ok := a.(*cst.FunctionCall); ok && strings.ToUpper(nested.Name) == "CROSSJOIN" && len(nested.Args) == 2 {
			out = append(out, flattenCrossjoin(nested)...)
			continue
		}
		out = append(out, a)
	}
	return out
}

func isSimpleSetOperand(n cst.Node) bool {
	switch v := n.(type) {
	case *cst.Member:
		return v != nil
	case *cst.Set:
		return len(v.Items) == 1
	default:
		return false
	}
}

// applyDuplicateSetMember implements spec §4.E "Duplicate set member":
// remove items inside `{...}` with the same rendered text as an earlier
// item, keeping the first occurrence.
func applyDuplicateSetMember(root cst.Node, report *Report) cst.Node {
	return cst.Transform(root, func(n cst.Node) cst.Node {
		s, ok := n.(*cst.Set)
		if !ok {
			return n
		}
		seen := make(map[string]bool, len(s.Items))
		var deduped []cst.Node
		changed := false
		for _, item := range s.Items {
			text := cst.Render(item)
			if seen[text] {
				changed = true
				continue
			}
			seen[text] = true
			deduped = append(deduped, item)
		}
		if !changed {
			return n
		}
		replacement := cst.NewSet(n.Pos(), deduped)
		record(report, "duplicate-set-member", "removed duplicate set members", n, replacement)
		return replacement
	})
}

// applyDuplicateCalcMember implements spec §4.E "Duplicate calc member":
// in a WITH clause, drop later MEMBER definitions whose target name
// repeats an earlier one.
func applyDuplicateCalcMember(root cst.Node, report *Report) cst.Node {
	return cst.Transform(root, func(n cst.Node) cst.Node {
		w, ok := n.(*cst.With)
		if !ok {
			return n
		}
		seen := make(map[string]bool, len(w.Defs))
		var deduped []*cst.CalcMemberDef
		changed := false
		for _, def := range w.Defs {
			name := ""
			if len(def.Target.Segments) > 0 {
				name = def.Target.Segments[len(def.Target.Segments)-1].Value
			}
			if seen[name] {
				changed = true
				continue
			}
			seen[name] = true
			deduped = append(deduped, def)
		}
		if !changed {
			return n
		}
		replacement := cst.NewWith(n.Pos(), deduped)
		record(report, "duplicate-calc-member", "dropped duplicate MEMBER definitions", n, replacement)
		return replacement
	})
}

// applyVacuousFunctionCalls implements spec §4.E "Vacuous function calls".
// A call carrying an explicit `-- keep` hint comment (supplemented
// feature 2a) is left untouched even when it would otherwise simplify.
func applyVacuousFunctionCalls(root cst.Node, report *Report) cst.Node {
	return cst.Transform(root, func(n cst.Node) cst.Node {
		call, ok := n.(*cst.FunctionCall)
		if !ok {
			return n
		}
		if cst.HasHint(call, "keep") {
			return n
		}
		replacement := simplifyVacuousCall(call)
		if replacement == nil {
			return n
		}
		record(report, "vacuous-function-calls", "simplified a vacuous call", n, replacement)
		return replacement
	})
}

func simplifyVacuousCall(call *cst.FunctionCall) cst.Node {
	upper := strings.ToUpper(call.Name)
	switch upper {
	case "IIF":
		if len(call.Args) == 3 && textEqual(call.Args[1], call.Args[2]) {
			return call.Args[1]
		}
	case "UNION":
		if len(call.Args) == 2 {
			if isEmptySet(call.Args[1]) {
				return call.Args[0]
			}
			if isEmptySet(call.Args[0]) {
				return call.Args[1]
			}
		}
	case "FILTER":
		if len(call.Args) == 2 {
			if isBoolLiteral(call.Args[1], true) {
				return call.Args[0]
			}
			if isBoolLiteral(call.Args[1], false) {
				return cst.NewSet(call.Pos(), nil)
			}
		}
	case "INTERSECT":
		if len(call.Args) == 2 && textEqual(call.Args[0], call.Args[1]) {
			return call.Args[0]
		}
	case "EXCEPT":
		if len(call.Args) == 2 {
			if isEmptySet(call.Args[1]) {
				return call.Args[0]
			}
			if textEqual(call.Args[0], call.Args[1]) {
				return cst.NewSet(call.Pos(), nil)
			}
		}
	case "DISTINCT":
		if len(call.Args) == 1 {
			if _, ok := call.Args[0].(*cst.Member); ok {
				return call.Args[0]
			}
			if isEmptySet(call.Args[0]) {
				return call.Args[0]
			}
		}
	}
	return nil
}

func textEqual(a, b cst.Node) bool {
	return cst.Render(a) == cst.Render(b)
}

func isEmptySet(n cst.Node) bool {
	s, ok := n.(*cst.Set)
	return ok && len(s.Items) == 0
}

func isBoolLiteral(n cst.Node, want bool) bool {
	lit, ok := n.(*cst.Literal)
	if !ok || lit.LitKind != cst.LiteralBool {
		if ok && lit.LitKind == cst.LiteralNumber {
			if want {
				return lit.Num == 1
			}
			return lit.Num == 0
		}
		return false
	}
	return lit.Bool == want
}
