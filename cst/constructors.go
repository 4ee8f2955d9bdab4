package cst

import "github.com/druarnfield/mdx2dax/token"

// Constructors below are the only way outside this package to build a node
// (the base field is unexported), matching the teacher's
// constructor-per-type shape in schema/ast.go.

func NewQuery(pos token.Position, with *With, sel *Select) *Query {
	return &Query{base: base{pos: pos}, With: with, Select: sel}
}

func NewWith(pos token.Position, defs []*CalcMemberDef) *With {
	return &With{base: base{pos: pos}, Defs: defs}
}

func NewCalcMemberDef(pos token.Position, target *Member, expr Node, props []CalcMemberDefProp) *CalcMemberDef {
	return &CalcMemberDef{base: base{pos: pos}, Target: target, Expr: expr, Props: props}
}

func NewSelect(pos token.Position, axes []*Axis, from *From, where *Where) *Select {
	return &Select{base: base{pos: pos}, Axes: axes, From: from, Where: where}
}

func NewAxis(pos token.Position, nonEmpty bool, set Node, axisName string, axisNum int) *Axis {
	return &Axis{base: base{pos: pos}, NonEmpty: nonEmpty, Set: set, AxisName: axisName, AxisNum: axisNum}
}

func NewSet(pos token.Position, items []Node) *Set {
	return &Set{base: base{pos: pos}, Items: items}
}

func NewTuple(pos token.Position, members []Node) *Tuple {
	return &Tuple{base: base{pos: pos}, Members: members}
}

func NewMember(pos token.Position, segments []*BracketedIdent, fn *MemberFunction) *Member {
	return &Member{base: base{pos: pos}, Segments: segments, Fn: fn}
}

func NewMemberFunctionMembers(pos token.Position) *MemberFunction {
	return &MemberFunction{base: base{pos: pos}, FnKind: MemberFunctionMembers}
}

func NewMemberFunctionChildren(pos token.Position) *MemberFunction {
	return &MemberFunction{base: base{pos: pos}, FnKind: MemberFunctionChildren}
}

func NewMemberFunctionKeyRef(pos token.Position, key *BracketedIdent) *MemberFunction {
	return &MemberFunction{base: base{pos: pos}, FnKind: MemberFunctionKeyRef, Key: key}
}

func NewMemberFunctionCall(pos token.Position, call *FunctionCall) *MemberFunction {
	return &MemberFunction{base: base{pos: pos}, FnKind: MemberFunctionCall, Call: call}
}

func NewFunctionCall(pos token.Position, name string, args []Node) *FunctionCall {
	return &FunctionCall{base: base{pos: pos}, Name: name, Args: args}
}

func NewBinaryOp(pos token.Position, op string, left, right Node) *BinaryOp {
	return &BinaryOp{base: base{pos: pos}, Op: op, Left: left, Right: right}
}

func NewUnaryOp(pos token.Position, op string, operand Node) *UnaryOp {
	return &UnaryOp{base: base{pos: pos}, Op: op, Operand: operand}
}

func NewLiteralNumber(pos token.Position, raw string, num float64) *Literal {
	return &Literal{base: base{pos: pos}, LitKind: LiteralNumber, Raw: raw, Num: num}
}

func NewLiteralString(pos token.Position, raw, str string) *Literal {
	return &Literal{base: base{pos: pos}, LitKind: LiteralString, Raw: raw, Str: str}
}

func NewLiteralBool(pos token.Position, raw string, b bool) *Literal {
	return &Literal{base: base{pos: pos}, LitKind: LiteralBool, Raw: raw, Bool: b}
}

func NewBracketedIdent(pos token.Position, value, raw string) *BracketedIdent {
	return &BracketedIdent{base: base{pos: pos}, Value: value, Raw: raw}
}

func NewParen(pos token.Position, inner Node) *Paren {
	return &Paren{base: base{pos: pos}, Inner: inner}
}

func NewFrom(pos token.Position, segments []*BracketedIdent) *From {
	return &From{base: base{pos: pos}, Segments: segments}
}

func NewWhere(pos token.Position, slicer Node) *Where {
	return &Where{base: base{pos: pos}, Slicer: slicer}
}
