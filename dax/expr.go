package dax

import (
	"strings"

	"github.com/druarnfield/mdx2dax/ir"
)

// functionNameTable maps MDX function names to their DAX equivalents
// (spec §4.F "FunctionCall: mapped through a name table"). Names absent
// from this table pass through verbatim with a warning.
var functionNameTable = map[ir.FunctionKind]string{
	ir.FnMembers:  "VALUES",
	ir.FnDistinct: "DISTINCT",
}

// exprToDax lowers an IR expression to DAX text (spec §4.F "Expression
// lowering"). Unknown-function notices accumulate in warn, which the caller
// folds into the generator's Result.
func exprToDax(e ir.Expr, warn *[]string) string {
	switch e.Kind {
	case ir.ExprConstant:
		switch e.ConstKind {
		case ir.ConstNumber:
			return formatNumber(e.Num)
		case ir.ConstString:
			return formatString(e.Str)
		case ir.ConstBool:
			return formatBool(e.Bool)
		}
		return ""

	case ir.ExprMeasureRef:
		return bracketColumn(e.MeasureName)

	case ir.ExprMemberRef:
		return groupColumn(e.RefDimension, e.RefMember)

	case ir.ExprBinary:
		l := exprToDax(*e.Left, warn)
		r := exprToDax(*e.Right, warn)
		switch e.Op {
		case "+", "-", "*":
			return "(" + l + " " + e.Op + " " + r + ")"
		case "/":
			return "DIVIDE(" + l + ", " + r + ")"
		case "&":
			return "CONCATENATE(" + l + ", " + r + ")"
		case "AND":
			return "(" + l + " && " + r + ")"
		case "OR":
			return "(" + l + " || " + r + ")"
		case "=", "<>", "<", "<=", ">", ">=":
			return "(" + l + " " + e.Op + " " + r + ")"
		default:
			return "(" + l + " " + e.Op + " " + r + ")"
		}

	case ir.ExprUnary:
		x := exprToDax(*e.Operand, warn)
		switch e.UnaryOp {
		case "-":
			return "-(" + x + ")"
		case "NOT":
			return "NOT(" + x + ")"
		}
		return x

	case ir.ExprFunctionCall:
		return functionCallToDax(e, warn)

	case ir.ExprIif:
		cond := exprToDax(*e.IifCond, warn)
		then := exprToDax(*e.IifThen, warn)
		els := exprToDax(*e.IifElse, warn)
		return "IF(" + cond + ", " + then + ", " + els + ")"

	case ir.ExprCase:
		return caseToDax(e.CaseArms, e.CaseElse, warn)

	default:
		return ""
	}
}

// caseToDax builds the right-associative nested IF chain spec §4.F
// describes for Case([(c1,v1),...], else).
func caseToDax(arms []ir.CaseArm, els *ir.Expr, warn *[]string) string {
	tail := "BLANK()"
	if els != nil {
		tail = exprToDax(*els, warn)
	}
	for i := len(arms) - 1; i >= 0; i-- {
		cond := exprToDax(arms[i].Cond, warn)
		then := exprToDax(arms[i].Then, warn)
		tail = "IF(" + cond + ", " + then + ", " + tail + ")"
	}
	return tail
}

func functionCallToDax(e ir.Expr, warn *[]string) string {
	if name, ok := functionNameTable[e.FuncKind]; ok {
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = exprToDax(a, warn)
		}
		return name + "(" + strings.Join(args, ", ") + ")"
	}
	*warn = append(*warn, "function "+e.FuncName+" has no DAX equivalent; passed through verbatim")
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = exprToDax(a, warn)
	}
	return e.FuncName + "(" + strings.Join(args, ", ") + ")"
}
