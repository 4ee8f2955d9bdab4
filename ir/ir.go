// Package ir implements Component C (spec §3, §4.C): the pure, immutable
// value-object model of a translated query. Every type here is a tagged
// sum or plain struct, never a polymorphic class hierarchy (spec §9), in
// the same "value objects with constructors" idiom as the teacher's
// schema/ast.go Table/Column/Index types.
//
// IR is produced fresh per translation by irbuilder and owned by the
// pipeline driver until handed to dax/explain; it never holds a
// back-reference into source text (spec §3 "Ownership and lifecycle").
package ir

import "github.com/druarnfield/mdx2dax/token"

// CubeRef identifies the cube a query targets; Database and Schema are
// optional qualifiers (spec §3 "cube: CubeRef").
type CubeRef struct {
	Database string
	Schema   string
	Cube     string
}

// AggregationType enumerates the measure aggregation kinds (spec §3).
type AggregationType string

const (
	AggSum           AggregationType = "SUM"
	AggAvg           AggregationType = "AVG"
	AggCount         AggregationType = "COUNT"
	AggDistinctCount AggregationType = "DISTINCT_COUNT"
	AggMin           AggregationType = "MIN"
	AggMax           AggregationType = "MAX"
	AggCustom        AggregationType = "CUSTOM"
)

// Measure is a projected measure reference or a custom expression measure.
// Invariant: Expression is non-nil iff Aggregation == AggCustom (spec §3).
type Measure struct {
	Name        string
	Aggregation AggregationType
	Alias       string
	Format      string
	Expression  Expr // non-nil only when Aggregation == AggCustom
}

// HierarchyRef and LevelRef locate a dimension's hierarchy/level.
type HierarchyRef struct {
	Table string
	Name  string
}

type LevelRef struct {
	Name    string
	Ordinal int // 0 when not specified
}

// MemberSelectionKind tags the MemberSelection sum type (spec §3).
type MemberSelectionKind int

const (
	SelectAll MemberSelectionKind = iota
	SelectSpecific
	SelectChildren
	SelectDescendants
	SelectRange
)

// MemberSelection is a sum type over the five selection forms. Only the
// fields relevant to Kind are meaningful.
type MemberSelection struct {
	Kind    MemberSelectionKind
	Members []string // SelectSpecific: non-empty (invariant enforced at construction)
	Parent  string   // SelectChildren / SelectDescendants
	Lo, Hi  string   // SelectRange
}

// NewSpecificSelection builds a Specific selection; panics if members is
// empty, matching spec §3's "Specific carries at least one member"
// invariant being enforced at construction, not lazily (spec §4.C).
func NewSpecificSelection(members []string) MemberSelection {
	if len(members) == 0 {
		panic("ir: Specific member selection requires at least one member")
	}
	return MemberSelection{Kind: SelectSpecific, Members: append([]string(nil), members...)}
}

// Dimension is a projected hierarchy/level with a member selection
// (spec §3 "Dimension").
type Dimension struct {
	Hierarchy HierarchyRef
	Level     LevelRef
	Members   MemberSelection
	Alias     string
}

// FilterOperator is shared between DimensionFilter and MeasureFilter,
// though MeasureFilter only ever uses the scalar comparison subset.
type FilterOperator string

const (
	OpEq         FilterOperator = "="
	OpNeq        FilterOperator = "<>"
	OpIn         FilterOperator = "IN"
	OpNotIn      FilterOperator = "NOT IN"
	OpContains   FilterOperator = "CONTAINS"
	OpStartsWith FilterOperator = "STARTS_WITH"
	OpEndsWith   FilterOperator = "ENDS_WITH"
	OpGt         FilterOperator = ">"
	OpLt         FilterOperator = "<"
	OpGte        FilterOperator = ">="
	OpLte        FilterOperator = "<="
)

// FilterKind tags the Filter tagged union (spec §3).
type FilterKind int

const (
	KindDimensionFilter FilterKind = iota
	KindMeasureFilter
	KindNonEmptyFilter
)

// Filter is a tagged union over DimensionFilter/MeasureFilter/NonEmptyFilter.
// Only the fields relevant to Kind are meaningful; this matches spec §9's
// direction to use tagged structs instead of three separate interface
// implementations; the constructors NewDimensionFilter, NewMeasureFilter
// and NewNonEmptyFilter below set Kind and the matching fields.
type Filter struct {
	Kind FilterKind

	// DimensionFilter
	Dimension Dimension // Hierarchy/Level identify the filtered column
	Operator  FilterOperator
	Values    []string

	// MeasureFilter
	Measure     string
	MeasureOp   FilterOperator
	MeasureVal  float64

	// NonEmptyFilter
	NonEmptyMeasure string // "" when unspecified
}

// NewDimensionFilter builds a DimensionFilter.
func NewDimensionFilter(dim Dimension, op FilterOperator, values []string) Filter {
	return Filter{Kind: KindDimensionFilter, Dimension: dim, Operator: op, Values: append([]string(nil), values...)}
}

// NewMeasureFilter builds a MeasureFilter.
func NewMeasureFilter(measure string, op FilterOperator, val float64) Filter {
	return Filter{Kind: KindMeasureFilter, Measure: measure, MeasureOp: op, MeasureVal: val}
}

// NewNonEmptyFilter builds a NonEmptyFilter; measure may be "".
func NewNonEmptyFilter(measure string) Filter {
	return Filter{Kind: KindNonEmptyFilter, NonEmptyMeasure: measure}
}

// CalculationKind tags a WITH MEMBER definition's role (spec §3).
type CalculationKind int

const (
	CalcMeasure CalculationKind = iota
	CalcMember
)

// Calculation is a WITH MEMBER definition (spec §3).
type Calculation struct {
	Name       string
	Kind       CalculationKind
	Expression Expr
	SolveOrder int    // 0 when unspecified
	Format     string // "" when unspecified
}

// ExprKind tags the Expr recursive sum type (spec §3).
type ExprKind int

const (
	ExprConstant ExprKind = iota
	ExprMeasureRef
	ExprMemberRef
	ExprBinary
	ExprUnary
	ExprFunctionCall
	ExprIif
	ExprCase
)

// ConstantKind tags which field of a Constant Expr is meaningful.
type ConstantKind int

const (
	ConstNumber ConstantKind = iota
	ConstString
	ConstBool
)

// CaseArm is one `WHEN cond THEN val` arm of a Case expression.
type CaseArm struct {
	Cond Expr
	Then Expr
}

// Expr is the recursive IR expression sum type (spec §3). Only the
// fields relevant to Kind are meaningful; this is the same "one struct,
// tag-gated fields" shape used throughout this package and grounded on
// the variant classes of original_source's expressions.py, flattened
// into Go's value-type idiom instead of a class hierarchy.
type Expr struct {
	Kind ExprKind

	// ExprConstant
	ConstKind ConstantKind
	Num       float64
	Str       string
	Bool      bool

	// ExprMeasureRef
	MeasureName string

	// ExprMemberRef
	RefDimension string
	RefHierarchy string
	RefMember    string

	// ExprBinary
	Op    string
	Left  *Expr
	Right *Expr

	// ExprUnary
	UnaryOp string
	Operand *Expr

	// ExprFunctionCall
	FuncName string
	FuncKind FunctionKind
	Args     []Expr

	// ExprIif
	IifCond *Expr
	IifThen *Expr
	IifElse *Expr

	// ExprCase
	CaseArms []CaseArm
	CaseElse *Expr
}

// FunctionKind classifies a FunctionCall by the name-table lookup in
// spec §4.D step 7 ("kind derived from the function name"); dax uses it
// to pick the right DAX idiom (e.g. MEMBERS -> VALUES).
type FunctionKind string

const (
	FnAggregationSum   FunctionKind = "AGG_SUM"
	FnAggregationAvg   FunctionKind = "AGG_AVG"
	FnAggregationCount FunctionKind = "AGG_COUNT"
	FnMembers          FunctionKind = "MEMBERS"
	FnChildren         FunctionKind = "CHILDREN"
	FnCrossjoin        FunctionKind = "CROSSJOIN"
	FnUnion            FunctionKind = "UNION"
	FnIntersect        FunctionKind = "INTERSECT"
	FnExcept           FunctionKind = "EXCEPT"
	FnFilter           FunctionKind = "FILTER"
	FnTopN             FunctionKind = "TOPN"
	FnDistinct         FunctionKind = "DISTINCT"
	FnUnknown          FunctionKind = "UNKNOWN"
)

// Constant constructors.
func ConstantNumber(n float64) Expr { return Expr{Kind: ExprConstant, ConstKind: ConstNumber, Num: n} }
func ConstantString(s string) Expr  { return Expr{Kind: ExprConstant, ConstKind: ConstString, Str: s} }
func ConstantBool(b bool) Expr       { return Expr{Kind: ExprConstant, ConstKind: ConstBool, Bool: b} }

func MeasureRefExpr(name string) Expr { return Expr{Kind: ExprMeasureRef, MeasureName: name} }

func MemberRefExpr(dimension, hierarchy, member string) Expr {
	return Expr{Kind: ExprMemberRef, RefDimension: dimension, RefHierarchy: hierarchy, RefMember: member}
}

func BinaryExpr(op string, l, r Expr) Expr {
	return Expr{Kind: ExprBinary, Op: op, Left: &l, Right: &r}
}

func UnaryExpr(op string, operand Expr) Expr {
	return Expr{Kind: ExprUnary, UnaryOp: op, Operand: &operand}
}

func FunctionCallExpr(name string, kind FunctionKind, args []Expr) Expr {
	return Expr{Kind: ExprFunctionCall, FuncName: name, FuncKind: kind, Args: args}
}

func IifExpr(cond, then, els Expr) Expr {
	return Expr{Kind: ExprIif, IifCond: &cond, IifThen: &then, IifElse: &els}
}

func CaseExpr(arms []CaseArm, els *Expr) Expr {
	return Expr{Kind: ExprCase, CaseArms: arms, CaseElse: els}
}

// SortDirection for an OrderKey (spec §3 "order_by").
type SortDirection string

const (
	Asc  SortDirection = "ASC"
	Desc SortDirection = "DESC"
)

// OrderKey is one entry of Query.OrderBy.
type OrderKey struct {
	Expr Expr
	Dir  SortDirection
}

// Limit caps the result set (spec §3 "limit: Option<Limit>").
type Limit struct {
	Count  int
	Offset int // non-zero offsets are not representable in DAX TOPN; dax surfaces a warning
}

// Metadata carries diagnostics that never affect emitted DAX semantics
// (spec §3 "metadata: timings, warnings, source hash").
type Metadata struct {
	SourceHash string
	Warnings   []string
}

// Query is the IR root (spec §3).
type Query struct {
	Cube         CubeRef
	Measures     []Measure
	Dimensions   []Dimension
	Filters      []Filter
	Calculations []Calculation
	OrderBy      []OrderKey
	Limit        *Limit
	Metadata     Metadata
}

// Issue is a single validation finding (spec §4.C "Query.validate()").
type Issue struct {
	Message  string
	Severity IssueSeverity
	Pos      *token.Position
}

type IssueSeverity int

const (
	SeverityError IssueSeverity = iota
	SeverityWarning
)
