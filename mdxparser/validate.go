package mdxparser

import (
	"strings"

	"github.com/druarnfield/mdx2dax/lexer"
	"github.com/druarnfield/mdx2dax/token"
)

// Issue is a single pre-flight structural finding from Validate.
type Issue struct {
	Message string
	Pos     token.Position
}

// Validate runs a cheap, lexer-only structural check ahead of a full parse
// (SPEC_FULL supplemented feature 2): balanced brackets/parens/braces and
// the presence of a SELECT keyword. It never builds a CST and never
// returns an error itself — callers (the pipeline driver, when
// parser.strict_mode is set) decide whether any Issue should abort the run.
func Validate(text string) []Issue {
	var issues []Issue
	type opener struct {
		kind rune
		pos  token.Position
	}
	var stack []opener
	sawSelect := false

	l := lexer.New(text)
	for {
		tok := l.NextToken()
		if tok.Kind == token.EOF {
			break
		}
		switch tok.Kind {
		case token.LPAREN:
			stack = append(stack, opener{'(', tok.Pos})
		case token.LBRACE:
			stack = append(stack, opener{'{', tok.Pos})
		case token.RPAREN:
			if len(stack) == 0 || stack[len(stack)-1].kind != '(' {
				issues = append(issues, Issue{Message: "unmatched ')'", Pos: tok.Pos})
			} else {
				stack = stack[:len(stack)-1]
			}
		case token.RBRACE:
			if len(stack) == 0 || stack[len(stack)-1].kind != '{' {
				issues = append(issues, Issue{Message: "unmatched '}'", Pos: tok.Pos})
			} else {
				stack = stack[:len(stack)-1]
			}
		case token.SELECT:
			sawSelect = true
		case token.ILLEGAL:
			issues = append(issues, Issue{Message: "illegal character " + strings.TrimSpace(tok.Raw), Pos: tok.Pos})
		}
	}
	for _, o := range stack {
		issues = append(issues, Issue{Message: "unclosed '" + string(o.kind) + "'", Pos: o.pos})
	}
	if !sawSelect {
		issues = append(issues, Issue{Message: "missing SELECT clause"})
	}
	return issues
}
