// Package cst implements the concrete syntax tree produced by mdxparser
// (spec §3 "CST node", §4.A/§4.B). Node kinds mirror the grammar table in
// spec §4.A exactly: Query, With, CalcMemberDef, Select, Axis, Set, Tuple,
// Member, MemberFunction, FunctionCall, BinaryOp, UnaryOp, Literal,
// BracketedIdent, Paren, From, Where.
//
// Every concrete node type is a tagged struct (no polymorphic class
// hierarchy, per spec §9 "Dynamic dispatch / tagged trees"), grounded on
// the teacher's schema/ast.go struct-per-kind shape. Node is the common
// interface the linter's bottom-up rewriter (cst/walk.go) and the
// generic Dump/Render helpers operate against.
package cst

import "github.com/druarnfield/mdx2dax/token"

// Kind tags the node kinds of the CST, per spec §3.
type Kind int

const (
	KindQuery Kind = iota
	KindWith
	KindCalcMemberDef
	KindSelect
	KindAxis
	KindSet
	KindTuple
	KindMember
	KindMemberFunction
	KindFunctionCall
	KindBinaryOp
	KindUnaryOp
	KindLiteral
	KindBracketedIdent
	KindParen
	KindFrom
	KindWhere
)

func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "Query"
	case KindWith:
		return "With"
	case KindCalcMemberDef:
		return "CalcMemberDef"
	case KindSelect:
		return "Select"
	case KindAxis:
		return "Axis"
	case KindSet:
		return "Set"
	case KindTuple:
		return "Tuple"
	case KindMember:
		return "Member"
	case KindMemberFunction:
		return "MemberFunction"
	case KindFunctionCall:
		return "FunctionCall"
	case KindBinaryOp:
		return "BinaryOp"
	case KindUnaryOp:
		return "UnaryOp"
	case KindLiteral:
		return "Literal"
	case KindBracketedIdent:
		return "BracketedIdent"
	case KindParen:
		return "Paren"
	case KindFrom:
		return "From"
	case KindWhere:
		return "Where"
	default:
		return "Unknown"
	}
}

// Node is implemented by every CST node. Children/WithChildren expose the
// node generically for the linter's bottom-up rewrite (cst/walk.go);
// WithChildren returns a shallow copy of the receiver with its children
// slice replaced, never mutating the original — the linter relies on this
// for its "a node is replaced only when at least one child changed"
// invariant (spec §4.E, §9).
type Node interface {
	Kind() Kind
	Pos() token.Position
	Children() []Node
	WithChildren(children []Node) Node
	// Comments returns leading/trailing comment tokens harvested by the
	// parser and attached to this node (spec §4.B; SPEC_FULL feature 2a).
	Comments() []token.Token
}

// base is embedded by every concrete node type to carry position and
// harvested comments without repeating the boilerplate accessor.
type base struct {
	pos      token.Position
	comments []token.Token
}

func (b base) Pos() token.Position     { return b.pos }
func (b base) Comments() []token.Token { return b.comments }

// AddComment attaches a harvested leading/trailing comment token to the
// node (spec §4.B; SPEC_FULL supplemented feature 2a).
func (b *base) AddComment(t token.Token) { b.comments = append(b.comments, t) }
