package mdxparser

import (
	"strconv"
	"strings"

	"github.com/druarnfield/mdx2dax/cst"
	"github.com/druarnfield/mdx2dax/errs"
	"github.com/druarnfield/mdx2dax/token"
)

// parseBracketedPath reads between min and max dot-separated bracketed
// identifiers, used by both FROM's cube reference and member paths.
func (p *Parser) parseBracketedPath(min, max int) ([]*cst.BracketedIdent, error) {
	var segs []*cst.BracketedIdent
	for {
		b, err := p.parseBracketedIdent()
		if err != nil {
			return nil, err
		}
		segs = append(segs, b)
		if len(segs) >= max || p.cur.Kind != token.DOT {
			break
		}
		// Lookahead: only consume the DOT if what follows is another
		// bracketed segment, not a member_fn like `.Members`/`.Children`.
		if p.peek.Kind != token.BRACKETED_IDENT {
			break
		}
		p.advance()
	}
	if len(segs) < min {
		return nil, p.errAt(errs.Parse, "expected at least one bracketed identifier")
	}
	return segs, nil
}

func (p *Parser) parseBracketedIdent() (*cst.BracketedIdent, error) {
	tok, err := p.expect(token.BRACKETED_IDENT)
	if err != nil {
		return nil, err
	}
	// tok.Raw carries the full `[...]` delimited text (opening/closing
	// brackets included, per lexer.readBracketedIdent); strip them here so
	// cst.BracketedIdent.Raw holds only the inner escaped content, matching
	// what cst.Render re-wraps in brackets.
	raw := tok.Raw
	if len(raw) >= 2 && strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		raw = raw[1 : len(raw)-1]
	}
	return cst.NewBracketedIdent(tok.Pos, tok.Literal, raw), nil
}

// parseMemberPath is a bare member path with no trailing member_fn, used
// for MEMBER definition targets (`MEMBER [Measures].[Profit] AS ...`).
func (p *Parser) parseMemberPath() (*cst.Member, error) {
	pos := p.cur.Pos
	segs, err := p.parseBracketedPath(1, 8)
	if err != nil {
		return nil, err
	}
	return cst.NewMember(pos, segs, nil), nil
}

// member_expr := bracketed_ident ('.' bracketed_ident)* member_fn?
func (p *Parser) parseMemberExpr() (*cst.Member, error) {
	pos := p.cur.Pos
	segs, err := p.parseBracketedPath(1, 8)
	if err != nil {
		return nil, err
	}
	var fn *cst.MemberFunction
	if p.cur.Kind == token.DOT {
		p.advance()
		var f *cst.MemberFunction
		var err error
		if p.cur.Kind == token.AMP {
			f, err = p.parseKeyRef()
		} else {
			f, err = p.parseMemberFn()
		}
		if err != nil {
			return nil, err
		}
		fn = f
	} else if p.cur.Kind == token.AMP {
		f, err := p.parseKeyRef()
		if err != nil {
			return nil, err
		}
		fn = f
	}
	return cst.NewMember(pos, segs, fn), nil
}

// member_fn := MEMBERS | CHILDREN | function_call
func (p *Parser) parseMemberFn() (*cst.MemberFunction, error) {
	pos := p.cur.Pos
	if p.cur.Kind != token.IDENT {
		return nil, p.errAt(errs.Parse, "expected MEMBERS, CHILDREN, or a function name after '.'")
	}
	name := p.cur.Literal
	upper := strings.ToUpper(name)
	if p.peek.Kind != token.LPAREN {
		p.advance()
		switch upper {
		case "MEMBERS":
			return cst.NewMemberFunctionMembers(pos), nil
		case "CHILDREN":
			return cst.NewMemberFunctionChildren(pos), nil
		default:
			return nil, p.errAt(errs.Parse, "unknown member function "+name)
		}
	}
	call, err := p.parseFunctionCallWithName(pos, name)
	if err != nil {
		return nil, err
	}
	return cst.NewMemberFunctionCall(pos, call), nil
}

// '&' '[' key ']', e.g. [Date].[Calendar Year].&[2023]
func (p *Parser) parseKeyRef() (*cst.MemberFunction, error) {
	pos := p.cur.Pos
	amp := p.cur
	if _, err := p.expect(token.AMP); err != nil {
		return nil, err
	}
	if p.cfg.StrictMode && !adjacentTokens(amp, p.cur) {
		return nil, p.errAt(errs.Parse, "strict mode: '&' must immediately precede '[' in a key reference")
	}
	key, err := p.parseBracketedIdent()
	if err != nil {
		return nil, err
	}
	return cst.NewMemberFunctionKeyRef(pos, key), nil
}

// adjacentTokens reports whether b immediately follows a in the source
// text, with no intervening whitespace or comments. StrictMode (spec §6
// parser.strict_mode) uses this to reject the permissive `& [key]` spacing
// the lenient lexer otherwise accepts silently.
func adjacentTokens(a, b token.Token) bool {
	return a.Pos.Line == b.Pos.Line && a.Pos.Column+len(a.Raw) == b.Pos.Column
}

func (p *Parser) parseFunctionCallWithName(pos token.Position, name string) (*cst.FunctionCall, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []cst.Node
	if p.cur.Kind != token.RPAREN {
		for {
			if err := p.checkDeadline(); err != nil {
				return nil, err
			}
			arg, err := p.parseCallArg()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur.Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return p.attach(cst.NewFunctionCall(pos, name, args)).(*cst.FunctionCall), nil
}

// parseCallArg accepts either a set_expr or a value_expr argument: MDX
// functions mix both freely (e.g. TOPN(5, set, measure)), so arguments are
// disambiguated the same way parsePrimarySet/parsePrimaryValue would, by
// trying set-shaped syntax first and falling back to a value expression.
func (p *Parser) parseCallArg() (cst.Node, error) {
	switch p.cur.Kind {
	case token.LBRACE:
		return p.parseSetExpr(precLowest)
	case token.LPAREN:
		return p.parseTuple()
	case token.BRACKETED_IDENT:
		// Ambiguous between a bare member reference (set-shaped) and a
		// value_expr headed by a member (e.g. a measure reference used
		// arithmetically); parse the member, then let the value_expr
		// climbing loop pick up any trailing binary operator.
		return p.parseValueExpr(precLowest)
	default:
		return p.parseValueExpr(precLowest)
	}
}

// --- set_expr, precedence-climbing over the single '*' binary_set_op ---

func (p *Parser) parseSetExpr(minPrec int) (cst.Node, error) {
	left, err := p.parsePrimarySet()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == token.STAR && precSetProduct >= minPrec {
		pos := p.cur.Pos
		p.advance()
		right, err := p.parsePrimarySet()
		if err != nil {
			return nil, err
		}
		left = cst.NewBinaryOp(pos, "*", left, right)
	}
	return left, nil
}

func (p *Parser) parsePrimarySet() (cst.Node, error) {
	if err := p.checkDeadline(); err != nil {
		return nil, err
	}
	switch p.cur.Kind {
	case token.LBRACE:
		return p.parseSetLiteral()
	case token.LPAREN:
		pos := p.cur.Pos
		p.advance()
		inner, err := p.parseSetExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return p.attach(cst.NewParen(pos, inner)).(*cst.Paren), nil
	case token.BRACKETED_IDENT:
		return p.parseMemberExpr()
	case token.IDENT:
		pos := p.cur.Pos
		name := p.cur.Literal
		p.advance()
		return p.parseFunctionCallWithName(pos, name)
	default:
		return nil, p.errAt(errs.Parse, "expected a set expression ('{...}', a member, or a function call)")
	}
}

// set_body := '{' (set_item (',' set_item)*)? '}'
func (p *Parser) parseSetLiteral() (*cst.Set, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var items []cst.Node
	if p.cur.Kind != token.RBRACE {
		for {
			if err := p.checkDeadline(); err != nil {
				return nil, err
			}
			item, err := p.parseSetItem()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if p.cur.Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return p.attach(cst.NewSet(pos, items)).(*cst.Set), nil
}

func (p *Parser) parseSetItem() (cst.Node, error) {
	if p.cur.Kind == token.LPAREN {
		return p.parseTuple()
	}
	return p.parseSetExpr(precLowest)
}

// tuple_expr := '(' member_expr (',' member_expr)* ')'
func (p *Parser) parseTuple() (*cst.Tuple, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var members []cst.Node
	for {
		m, err := p.parseMemberExpr()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
		if p.cur.Kind != token.COMMA {
			break
		}
		p.advance()
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return p.attach(cst.NewTuple(pos, members)).(*cst.Tuple), nil
}

// --- value_expr, precedence climbing per the table in spec §4.A ---

func (p *Parser) parseValueExpr(minPrec int) (cst.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := valuePrecedence[p.cur.Kind]
		if !ok || prec < minPrec {
			break
		}
		opTok := p.cur
		p.advance()
		right, err := p.parseValueExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = cst.NewBinaryOp(opTok.Pos, opText(opTok), left, right)
	}
	return left, nil
}

func opText(t token.Token) string {
	switch t.Kind {
	case token.EQ:
		return "="
	case token.NEQ:
		return "<>"
	case token.LT:
		return "<"
	case token.LTE:
		return "<="
	case token.GT:
		return ">"
	case token.GTE:
		return ">="
	case token.PLUS:
		return "+"
	case token.MINUS:
		return "-"
	case token.STAR:
		return "*"
	case token.SLASH:
		return "/"
	case token.AMP:
		return "&"
	case token.AND:
		return "AND"
	case token.OR:
		return "OR"
	default:
		return t.Literal
	}
}

// unary := ('-' | NOT) unary | primary
func (p *Parser) parseUnary() (cst.Node, error) {
	if err := p.checkDeadline(); err != nil {
		return nil, err
	}
	if p.cur.Kind == token.MINUS {
		pos := p.cur.Pos
		p.advance()
		operand, err := p.parseUnaryAtPrec(precPrefix)
		if err != nil {
			return nil, err
		}
		return cst.NewUnaryOp(pos, "-", operand), nil
	}
	if p.cur.Kind == token.NOT {
		pos := p.cur.Pos
		p.advance()
		operand, err := p.parseUnaryAtPrec(precNot)
		if err != nil {
			return nil, err
		}
		return cst.NewUnaryOp(pos, "NOT", operand), nil
	}
	return p.parsePrimaryValue()
}

// parseUnaryAtPrec parses the operand of a prefix operator, allowing any
// tighter-binding infix chain to attach to it before the prefix is applied.
func (p *Parser) parseUnaryAtPrec(prec int) (cst.Node, error) {
	return p.parseValueExpr(prec)
}

func (p *Parser) parsePrimaryValue() (cst.Node, error) {
	if err := p.checkDeadline(); err != nil {
		return nil, err
	}
	switch p.cur.Kind {
	case token.NUMBER:
		tok := p.cur
		p.advance()
		n, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, errs.New(errs.Parse, "invalid numeric literal "+tok.Literal).WithPos(tok.Pos).Typed()
		}
		return cst.NewLiteralNumber(tok.Pos, tok.Literal, n), nil
	case token.STRING:
		tok := p.cur
		p.advance()
		return cst.NewLiteralString(tok.Pos, tok.Raw, tok.Literal), nil
	case token.TRUE, token.FALSE:
		tok := p.cur
		p.advance()
		return cst.NewLiteralBool(tok.Pos, tok.Literal, tok.Kind == token.TRUE), nil
	case token.LPAREN:
		pos := p.cur.Pos
		p.advance()
		inner, err := p.parseValueExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return p.attach(cst.NewParen(pos, inner)).(*cst.Paren), nil
	case token.BRACKETED_IDENT:
		return p.parseMemberExpr()
	case token.IIF:
		return p.parseIif()
	case token.CASE:
		return p.parseCase()
	case token.IDENT:
		pos := p.cur.Pos
		name := p.cur.Literal
		p.advance()
		return p.parseFunctionCallWithName(pos, name)
	default:
		return nil, p.errAt(errs.Parse, "expected a value expression")
	}
}

// IIF(cond, then, else) desugars to a FunctionCall named "IIF"; irbuilder
// recognizes it by name (spec §4.D, function_type dispatch).
func (p *Parser) parseIif() (*cst.FunctionCall, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.IIF); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseValueExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA); err != nil {
		return nil, err
	}
	thenExpr, err := p.parseValueExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseValueExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return p.attach(cst.NewFunctionCall(pos, "IIF", []cst.Node{cond, thenExpr, elseExpr})).(*cst.FunctionCall), nil
}

// CASE WHEN cond THEN val (WHEN cond THEN val)* (ELSE val)? END desugars to
// a FunctionCall named "CASE" whose args alternate cond, val, ..., with a
// trailing else value (irbuilder folds this into ir.CaseExpr).
func (p *Parser) parseCase() (*cst.FunctionCall, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.CASE); err != nil {
		return nil, err
	}
	var args []cst.Node
	for p.cur.Kind == token.WHEN {
		p.advance()
		cond, err := p.parseValueExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		val, err := p.parseValueExpr(precLowest)
		if err != nil {
			return nil, err
		}
		args = append(args, cond, val)
	}
	if len(args) == 0 {
		return nil, p.errAt(errs.Parse, "CASE requires at least one WHEN clause")
	}
	if p.cur.Kind == token.ELSE {
		p.advance()
		elseVal, err := p.parseValueExpr(precLowest)
		if err != nil {
			return nil, err
		}
		args = append(args, elseVal)
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return p.attach(cst.NewFunctionCall(pos, "CASE", args)).(*cst.FunctionCall), nil
}
