package irbuilder

import (
	"strings"

	"github.com/druarnfield/mdx2dax/cst"
	"github.com/druarnfield/mdx2dax/errs"
	"github.com/druarnfield/mdx2dax/ir"
)

// calculationFromDef implements spec §4.D step 6.
func calculationFromDef(def *cst.CalcMemberDef) (ir.Calculation, error) {
	if def.Target == nil || len(def.Target.Segments) == 0 {
		return ir.Calculation{}, errs.New(errs.Build, "MEMBER definition has no target name").Typed()
	}
	name := def.Target.Segments[len(def.Target.Segments)-1].Value
	kind := ir.CalcMember
	for _, seg := range def.Target.Segments {
		if strings.EqualFold(seg.Value, "Measures") {
			kind = ir.CalcMeasure
			break
		}
	}
	expr, err := lowerExpr(def.Expr)
	if err != nil {
		return ir.Calculation{}, err
	}
	calc := ir.Calculation{Name: name, Kind: kind, Expression: expr}
	for _, prop := range def.Props {
		switch strings.ToUpper(prop.Name) {
		case "SOLVE_ORDER":
			if lit, ok := prop.Value.(*cst.Literal); ok && lit.LitKind == cst.LiteralNumber {
				calc.SolveOrder = int(lit.Num)
			}
		case "FORMAT_STRING":
			if lit, ok := prop.Value.(*cst.Literal); ok && lit.LitKind == cst.LiteralString {
				calc.Format = lit.Str
			}
		}
	}
	return calc, nil
}

// lowerExpr implements spec §4.D step 7: value_expr -> Expr.
func lowerExpr(n cst.Node) (ir.Expr, error) {
	switch v := n.(type) {
	case *cst.Literal:
		switch v.LitKind {
		case cst.LiteralNumber:
			return ir.ConstantNumber(v.Num), nil
		case cst.LiteralString:
			return ir.ConstantString(v.Str), nil
		case cst.LiteralBool:
			return ir.ConstantBool(v.Bool), nil
		}
		return ir.Expr{}, errs.New(errs.Build, "unrecognized literal kind").Typed()

	case *cst.Member:
		if isMeasureRef(v) {
			return ir.MeasureRefExpr(lastSegmentValue(v)), nil
		}
		table := ""
		if len(v.Segments) > 0 {
			table = v.Segments[0].Value
		}
		return ir.MemberRefExpr(table, table, lastSegmentValue(v)), nil

	case *cst.BinaryOp:
		l, err := lowerExpr(v.Left)
		if err != nil {
			return ir.Expr{}, err
		}
		r, err := lowerExpr(v.Right)
		if err != nil {
			return ir.Expr{}, err
		}
		return ir.BinaryExpr(v.Op, l, r), nil

	case *cst.UnaryOp:
		operand, err := lowerExpr(v.Operand)
		if err != nil {
			return ir.Expr{}, err
		}
		return ir.UnaryExpr(v.Op, operand), nil

	case *cst.Paren:
		return lowerExpr(v.Inner)

	case *cst.FunctionCall:
		return lowerFunctionCall(v)

	default:
		return ir.Expr{}, errs.New(errs.Build, "unsupported value expression node").Typed()
	}
}

func lowerFunctionCall(v *cst.FunctionCall) (ir.Expr, error) {
	upper := strings.ToUpper(v.Name)
	switch upper {
	case "IIF":
		if len(v.Args) != 3 {
			return ir.Expr{}, errs.New(errs.Build, "IIF requires exactly 3 arguments").Typed()
		}
		cond, err := lowerExpr(v.Args[0])
		if err != nil {
			return ir.Expr{}, err
		}
		then, err := lowerExpr(v.Args[1])
		if err != nil {
			return ir.Expr{}, err
		}
		els, err := lowerExpr(v.Args[2])
		if err != nil {
			return ir.Expr{}, err
		}
		return ir.IifExpr(cond, then, els), nil

	case "CASE":
		if len(v.Args) < 2 {
			return ir.Expr{}, errs.New(errs.Build, "CASE requires at least one WHEN/THEN pair").Typed()
		}
		hasElse := len(v.Args)%2 == 1
		pairCount := len(v.Args) / 2
		var arms []ir.CaseArm
		for i := 0; i < pairCount; i++ {
			cond, err := lowerExpr(v.Args[2*i])
			if err != nil {
				return ir.Expr{}, err
			}
			then, err := lowerExpr(v.Args[2*i+1])
			if err != nil {
				return ir.Expr{}, err
			}
			arms = append(arms, ir.CaseArm{Cond: cond, Then: then})
		}
		var elsePtr *ir.Expr
		if hasElse {
			els, err := lowerExpr(v.Args[len(v.Args)-1])
			if err != nil {
				return ir.Expr{}, err
			}
			elsePtr = &els
		}
		return ir.CaseExpr(arms, elsePtr), nil

	default:
		args := make([]ir.Expr, len(v.Args))
		for i, a := range v.Args {
			e, err := lowerExpr(a)
			if err != nil {
				return ir.Expr{}, err
			}
			args[i] = e
		}
		return ir.FunctionCallExpr(v.Name, functionKindFor(upper), args), nil
	}
}

func functionKindFor(upperName string) ir.FunctionKind {
	switch upperName {
	case "SUM":
		return ir.FnAggregationSum
	case "AVG":
		return ir.FnAggregationAvg
	case "COUNT":
		return ir.FnAggregationCount
	case "MEMBERS":
		return ir.FnMembers
	case "CHILDREN":
		return ir.FnChildren
	case "CROSSJOIN":
		return ir.FnCrossjoin
	case "UNION":
		return ir.FnUnion
	case "INTERSECT":
		return ir.FnIntersect
	case "EXCEPT":
		return ir.FnExcept
	case "FILTER":
		return ir.FnFilter
	case "TOPN":
		return ir.FnTopN
	case "DISTINCT":
		return ir.FnDistinct
	default:
		return ir.FnUnknown
	}
}
