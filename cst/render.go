package cst

import (
	"fmt"
	"strconv"
	"strings"
)

// Render reserializes a CST node back into MDX source text. This answers
// SPEC_FULL's Open Question 1 decision (c): the linter's rewritten tree can
// be turned back into text via Render, independent of the Report summary.
//
// Render always normalizes whitespace/casing (one space between tokens,
// canonical keyword case) rather than reproducing the original byte-for-
// byte layout — spec §1 Non-goals excludes "preserving source formatting".
func Render(n Node) string {
	if n == nil {
		return ""
	}
	switch v := n.(type) {
	case *Query:
		var sb strings.Builder
		if v.With != nil {
			sb.WriteString(Render(v.With))
			sb.WriteString(" ")
		}
		sb.WriteString(Render(v.Select))
		return sb.String()
	case *With:
		parts := make([]string, len(v.Defs))
		for i, d := range v.Defs {
			parts[i] = Render(d)
		}
		return "WITH " + strings.Join(parts, " ")
	case *CalcMemberDef:
		s := fmt.Sprintf("MEMBER %s AS %s", Render(v.Target), Render(v.Expr))
		for _, p := range v.Props {
			s += fmt.Sprintf(", %s = %s", p.Name, Render(p.Value))
		}
		return s
	case *Select:
		axes := make([]string, len(v.Axes))
		for i, a := range v.Axes {
			axes[i] = Render(a)
		}
		s := "SELECT " + strings.Join(axes, ", ") + " " + Render(v.From)
		if v.Where != nil {
			s += " " + Render(v.Where)
		}
		return s
	case *Axis:
		s := ""
		if v.NonEmpty {
			s += "NON EMPTY "
		}
		s += Render(v.Set) + " ON "
		if v.AxisName != "" {
			s += v.AxisName
		} else {
			s += strconv.Itoa(v.AxisNum)
		}
		return s
	case *Set:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = Render(it)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Tuple:
		parts := make([]string, len(v.Members))
		for i, m := range v.Members {
			parts[i] = Render(m)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *Member:
		parts := make([]string, len(v.Segments))
		for i, s := range v.Segments {
			parts[i] = Render(s)
		}
		s := strings.Join(parts, ".")
		if v.Fn != nil {
			switch v.Fn.FnKind {
			case MemberFunctionMembers:
				s += ".Members"
			case MemberFunctionChildren:
				s += ".Children"
			case MemberFunctionKeyRef:
				s += ".&[" + v.Fn.Key.Raw + "]"
			case MemberFunctionCall:
				s += "." + Render(v.Fn.Call)
			}
		}
		return s
	case *MemberFunction:
		switch v.FnKind {
		case MemberFunctionMembers:
			return "Members"
		case MemberFunctionChildren:
			return "Children"
		case MemberFunctionKeyRef:
			return "&[" + v.Key.Raw + "]"
		case MemberFunctionCall:
			return Render(v.Call)
		}
		return ""
	case *FunctionCall:
		parts := make([]string, len(v.Args))
		for i, a := range v.Args {
			parts[i] = Render(a)
		}
		return v.Name + "(" + strings.Join(parts, ", ") + ")"
	case *BinaryOp:
		return Render(v.Left) + " " + v.Op + " " + Render(v.Right)
	case *UnaryOp:
		return v.Op + " " + Render(v.Operand)
	case *Literal:
		switch v.LitKind {
		case LiteralString:
			return "\"" + strings.ReplaceAll(v.Str, "\"", "\"\"") + "\""
		case LiteralBool:
			if v.Bool {
				return "TRUE"
			}
			return "FALSE"
		default:
			return v.Raw
		}
	case *BracketedIdent:
		return "[" + v.Raw + "]"
	case *Paren:
		return "(" + Render(v.Inner) + ")"
	case *From:
		parts := make([]string, len(v.Segments))
		for i, s := range v.Segments {
			parts[i] = Render(s)
		}
		return "FROM " + strings.Join(parts, ".")
	case *Where:
		return "WHERE " + Render(v.Slicer)
	default:
		return ""
	}
}
