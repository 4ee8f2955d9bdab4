// Package mdxparser implements Component B (spec §4.B): a recursive-
// descent, precedence-climbing parser that turns MDX source text into a
// cst.Query. Structurally grounded on ha1tch/tsqlparser's lexer/parser
// split (a Pratt-style parseExpression(precedence), reference-only, not a
// teacher) with the driving shape and package-doc register of the
// teacher's parser/sqldef.go and schema/parser.go ("thin entry point +
// one-line package doc").
package mdxparser

import (
	"strconv"
	"time"

	"github.com/druarnfield/mdx2dax/cst"
	"github.com/druarnfield/mdx2dax/errs"
	"github.com/druarnfield/mdx2dax/lexer"
	"github.com/druarnfield/mdx2dax/token"
)

// Precedence levels for value_expr, lowest to highest, per spec §4.A.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precComparison
	precSum  // + - &
	precProduct // * /
	precPrefix  // unary -
)

// precedence for set_expr's single binary_set_op ('*', crossjoin shorthand).
const precSetProduct = 1

var valuePrecedence = map[token.Kind]int{
	token.OR:    precOr,
	token.AND:   precAnd,
	token.EQ:    precComparison,
	token.NEQ:   precComparison,
	token.LT:    precComparison,
	token.LTE:   precComparison,
	token.GT:    precComparison,
	token.GTE:   precComparison,
	token.PLUS:  precSum,
	token.MINUS: precSum,
	token.AMP:   precSum,
	token.STAR:  precProduct,
	token.SLASH: precProduct,
}

// Parser holds the lexer, two-token lookahead, and per-call resource
// limits (spec §5 parse_timeout / §6 max_input_size_chars).
type Parser struct {
	l   *lexer.Lexer
	cfg Config

	cur  token.Token
	peek token.Token

	pendingComments []token.Token

	deadline    time.Time
	hasDeadline bool
}

// Parse is the package's single entry point: source text + config in,
// CST + typed error out (spec §4.B contract).
func Parse(src string, cfg Config) (*cst.Query, error) {
	if src == "" {
		return nil, errs.New(errs.Validation, "input is empty").Typed()
	}
	if cfg.MaxInputSizeChars > 0 && len([]rune(src)) > cfg.MaxInputSizeChars {
		return nil, errs.Newf(errs.Resource, "input exceeds max_input_size_chars (%d)", cfg.MaxInputSizeChars).Typed()
	}

	p := &Parser{l: lexer.New(src), cfg: cfg}
	if cfg.ParseTimeout > 0 {
		p.deadline = time.Now().Add(cfg.ParseTimeout)
		p.hasDeadline = true
	}
	p.advance()
	p.advance()

	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.EOF {
		return nil, p.errAt(errs.Parse, "unexpected trailing input after query")
	}
	return q, nil
}

// advance shifts cur <- peek <- next non-comment token, buffering
// comments so the next constructed node can harvest them as hints
// (spec §4.B, SPEC_FULL feature 2a).
func (p *Parser) advance() {
	p.cur = p.peek
	for {
		t := p.l.NextToken()
		if t.Kind == token.LINE_COMMENT || t.Kind == token.BLOCK_COMMENT {
			p.pendingComments = append(p.pendingComments, t)
			continue
		}
		p.peek = t
		return
	}
}

// takeComments drains and returns comments harvested since the last call.
func (p *Parser) takeComments() []token.Token {
	c := p.pendingComments
	p.pendingComments = nil
	return c
}

func (p *Parser) attach(n cst.Node) cst.Node {
	type commenter interface {
		AddComment(token.Token)
	}
	if c, ok := n.(commenter); ok {
		for _, tok := range p.takeComments() {
			c.AddComment(tok)
		}
	}
	return n
}

func (p *Parser) checkDeadline() error {
	if p.hasDeadline && time.Now().After(p.deadline) {
		return errs.New(errs.Resource, "parse_timeout exceeded").Typed()
	}
	return nil
}

func (p *Parser) errAt(kind errs.Kind, msg string) error {
	return errs.New(kind, msg).WithPos(p.cur.Pos).WithSuggestions(suggestionsFor(p.cur)).Typed()
}

func suggestionsFor(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "unexpected end of input; check for an unterminated clause"
	}
	return "unexpected token " + tok.Kind.String()
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	if p.cur.Kind != kind {
		return token.Token{}, p.errAt(errs.Parse, "expected "+kind.String()+" but found "+p.cur.Kind.String())
	}
	t := p.cur
	p.advance()
	return t, nil
}

// --- query := with_clause? select_stmt ---

func (p *Parser) parseQuery() (*cst.Query, error) {
	pos := p.cur.Pos
	var with *cst.With
	if p.cur.Kind == token.WITH {
		w, err := p.parseWith()
		if err != nil {
			return nil, err
		}
		with = w
	}
	sel, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	return cst.NewQuery(pos, with, sel), nil
}

// --- with_clause := WITH calc_def+ ---

func (p *Parser) parseWith() (*cst.With, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.WITH); err != nil {
		return nil, err
	}
	var defs []*cst.CalcMemberDef
	for p.cur.Kind == token.MEMBER {
		d, err := p.parseCalcMemberDef()
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	if len(defs) == 0 {
		return nil, p.errAt(errs.Parse, "WITH clause requires at least one MEMBER definition")
	}
	return cst.NewWith(pos, defs), nil
}

// --- calc_def := MEMBER qualified_member AS value_expr (',' prop)* ---

func (p *Parser) parseCalcMemberDef() (*cst.CalcMemberDef, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.MEMBER); err != nil {
		return nil, err
	}
	target, err := p.parseMemberPath()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}
	expr, err := p.parseValueExpr(precLowest)
	if err != nil {
		return nil, err
	}
	var props []cst.CalcMemberDefProp
	for p.cur.Kind == token.COMMA {
		p.advance()
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		val, err := p.parseValueExpr(precLowest)
		if err != nil {
			return nil, err
		}
		props = append(props, cst.CalcMemberDefProp{Name: nameTok.Literal, Value: val})
	}
	return p.attach(cst.NewCalcMemberDef(pos, target, expr, props)).(*cst.CalcMemberDef), nil
}

// --- select_stmt := SELECT axis (',' axis)* FROM cube (WHERE slicer)? ---

func (p *Parser) parseSelect() (*cst.Select, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.SELECT); err != nil {
		return nil, err
	}
	var axes []*cst.Axis
	for {
		if err := p.checkDeadline(); err != nil {
			return nil, err
		}
		a, err := p.parseAxis()
		if err != nil {
			return nil, err
		}
		axes = append(axes, a)
		if p.cur.Kind != token.COMMA {
			break
		}
		p.advance()
	}
	from, err := p.parseFrom()
	if err != nil {
		return nil, err
	}
	var where *cst.Where
	if p.cur.Kind == token.WHERE {
		w, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		where = w
	}
	return cst.NewSelect(pos, axes, from, where), nil
}

// --- axis := NON EMPTY? set_expr ON axis_id ---

func (p *Parser) parseAxis() (*cst.Axis, error) {
	pos := p.cur.Pos
	nonEmpty := false
	if p.cur.Kind == token.NON {
		p.advance()
		if _, err := p.expect(token.EMPTY); err != nil {
			return nil, err
		}
		nonEmpty = true
	}
	set, err := p.parseSetExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ON); err != nil {
		return nil, err
	}
	axisName, axisNum, err := p.parseAxisID()
	if err != nil {
		return nil, err
	}
	return p.attach(cst.NewAxis(pos, nonEmpty, set, axisName, axisNum)).(*cst.Axis), nil
}

var namedAxes = map[token.Kind]string{
	token.COLUMNS:  "COLUMNS",
	token.ROWS:     "ROWS",
	token.PAGES:    "PAGES",
	token.CHAPTERS: "CHAPTERS",
	token.SECTIONS: "SECTIONS",
}

// axis_id := COLUMNS | ROWS | PAGES | CHAPTERS | SECTIONS | number | AXIS '(' number ')'
func (p *Parser) parseAxisID() (name string, num int, err error) {
	if name, ok := namedAxes[p.cur.Kind]; ok {
		p.advance()
		return name, 0, nil
	}
	if p.cur.Kind == token.NUMBER {
		n, convErr := strconv.Atoi(p.cur.Literal)
		if convErr != nil {
			return "", 0, p.errAt(errs.Parse, "invalid axis number "+p.cur.Literal)
		}
		p.advance()
		return "", n, nil
	}
	if p.cur.Kind == token.AXIS {
		p.advance()
		if _, err := p.expect(token.LPAREN); err != nil {
			return "", 0, err
		}
		numTok, err := p.expect(token.NUMBER)
		if err != nil {
			return "", 0, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return "", 0, err
		}
		n, convErr := strconv.Atoi(numTok.Literal)
		if convErr != nil {
			return "", 0, p.errAt(errs.Parse, "invalid axis number "+numTok.Literal)
		}
		return "", n, nil
	}
	return "", 0, p.errAt(errs.Parse, "expected an axis identifier (COLUMNS, ROWS, a number, or AXIS(n))")
}

// --- cube := bracketed_ident ('.' bracketed_ident){0,2} ---

func (p *Parser) parseFrom() (*cst.From, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	segs, err := p.parseBracketedPath(1, 3)
	if err != nil {
		return nil, err
	}
	return cst.NewFrom(pos, segs), nil
}

// --- (WHERE slicer) ---

func (p *Parser) parseWhere() (*cst.Where, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.WHERE); err != nil {
		return nil, err
	}
	slicer, err := p.parseSlicer()
	if err != nil {
		return nil, err
	}
	return cst.NewWhere(pos, slicer), nil
}

// slicer := tuple_expr | member_expr
func (p *Parser) parseSlicer() (cst.Node, error) {
	if p.cur.Kind == token.LPAREN {
		return p.parseTuple()
	}
	return p.parseMemberExpr()
}
