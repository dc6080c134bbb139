package scimfilter

import "github.com/samber/oops"

// tokenStream is a cursor over a pre-lexed token slice. The grammar never
// looks ahead further than the next token, so from the parser's point of
// view tokens are produced on demand even though lex() runs eagerly up
// front (spec §4.1: "the lexer is purely synchronous and side-effect-
// free"; filters are short strings, so eager lexing costs nothing and
// keeps offset bookkeeping simple).
type tokenStream struct {
	toks []Token
	pos  int
}

func (s *tokenStream) peek() Token {
	return s.toks[s.pos]
}

func (s *tokenStream) next() Token {
	t := s.toks[s.pos]
	if s.pos < len(s.toks)-1 {
		s.pos++
	}
	return t
}

func (s *tokenStream) atEnd() bool {
	return s.peek().Kind == TokEnd
}

// ParseFilter parses a SCIM filter string into a Filter AST (spec §6).
//
// Grammar and precedence (spec §4.2):
//
//	Filter  := OrExpr
//	OrExpr  := AndExpr ( "or" AndExpr )*
//	AndExpr := NotExpr ( "and" NotExpr )*
//	NotExpr := "not" "(" Filter ")" | Primary
//	Primary := "(" Filter ")"
//	         | Path "[" Filter "]"
//	         | Path "pr"
//	         | Path CompOp Value
//	         | Path                    -- error
func ParseFilter(src string) (Filter, error) {
	toks, err := lex(src)
	if err != nil {
		return Filter{}, oops.Wrapf(err, "lexing filter %q", src)
	}
	if len(toks) == 1 { // just TokEnd
		return Filter{}, newParseError(UnexpectedEnd, 0, "empty filter string")
	}
	ts := &tokenStream{toks: toks}
	f, err := parseFilterExpr(ts)
	if err != nil {
		return Filter{}, err
	}
	if !ts.atEnd() {
		tok := ts.peek()
		return Filter{}, newParseError(UnexpectedToken, tok.Offset(), "unexpected trailing input %q", tok.Text)
	}
	return f, nil
}

// parseFilterExpr parses a Filter (the OrExpr production). It is also the
// recursion point used by value filters (`[ ... ]`) and parenthesized
// sub-expressions, so paths found while parsing an inner Filter resolve
// relative to whatever root the Evaluator later supplies — the AST carries
// no notion of "relative to the enclosing element" itself; that re-rooting
// happens at evaluation time (spec §9, "Complex value filter scoping").
func parseFilterExpr(ts *tokenStream) (Filter, error) {
	return parseOr(ts)
}

func parseOr(ts *tokenStream) (Filter, error) {
	left, err := parseAnd(ts)
	if err != nil {
		return Filter{}, err
	}
	children := []Filter{left}
	for isWordKeyword(ts.peek(), "or") {
		ts.next()
		right, err := parseAnd(ts)
		if err != nil {
			return Filter{}, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	f, err := NewOr(children...)
	if err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseAnd(ts *tokenStream) (Filter, error) {
	left, err := parseNot(ts)
	if err != nil {
		return Filter{}, err
	}
	children := []Filter{left}
	for isWordKeyword(ts.peek(), "and") {
		ts.next()
		right, err := parseNot(ts)
		if err != nil {
			return Filter{}, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	f, err := NewAnd(children...)
	if err != nil {
		return Filter{}, err
	}
	return f, nil
}

// parseNot implements `"not" "(" Filter ")" | Primary`. Consecutive
// `not not (X)` are two separate Not nodes, never folded at parse time
// (spec §4.2).
func parseNot(ts *tokenStream) (Filter, error) {
	if isWordKeyword(ts.peek(), "not") {
		ts.next()
		if ts.peek().Kind != TokLParen {
			return Filter{}, newParseError(UnexpectedToken, ts.peek().Offset(),
				"expected '(' after 'not', got %s", describeToken(ts.peek()))
		}
		ts.next()
		inner, err := parseFilterExpr(ts)
		if err != nil {
			return Filter{}, err
		}
		if ts.peek().Kind != TokRParen {
			tok := ts.peek()
			return Filter{}, newParseError(BracketMismatch, tok.Offset(),
				"expected ')' to close 'not (', got %s", describeToken(tok))
		}
		ts.next()
		return NewNot(inner), nil
	}
	return parsePrimary(ts)
}

// parsePrimary implements the Primary production (spec §4.2), including
// the path-then-what-follows disambiguation described in DESIGN.md: a
// parsed Path's last element may carry an inline value filter; if nothing
// recognizable as an operator follows, that value filter is promoted to
// the surrounding ComplexValue node rather than left dangling on the path.
func parsePrimary(ts *tokenStream) (Filter, error) {
	tok := ts.peek()

	if tok.Kind == TokLParen {
		ts.next()
		inner, err := parseFilterExpr(ts)
		if err != nil {
			return Filter{}, err
		}
		if ts.peek().Kind != TokRParen {
			return Filter{}, newParseError(BracketMismatch, tok.Offset(), "unmatched '('")
		}
		ts.next()
		return inner, nil
	}

	if tok.Kind != TokWord {
		return Filter{}, newParseError(UnexpectedToken, tok.Offset(), "unexpected %s", describeToken(tok))
	}

	pathStart := tok.Offset()
	path, err := parsePathTokens(ts)
	if err != nil {
		return Filter{}, err
	}

	next := ts.peek()
	switch {
	case isWordKeyword(next, "pr"):
		ts.next()
		return NewPresent(path), nil

	case compOpKind(next) != nil:
		ts.next()
		kind := *compOpKind(next)
		val, err := parseValue(ts)
		if err != nil {
			return Filter{}, err
		}
		return NewComparison(kind, path, val), nil

	default:
		last := &path.Elements[len(path.Elements)-1]
		if last.ValueFilter != nil {
			inner := *last.ValueFilter
			last.ValueFilter = nil
			return NewComplexValue(path, inner), nil
		}
		return Filter{}, newParseError(MissingOperator, pathStart,
			"attribute path %q is not followed by an operator", path.String())
	}
}

// compOpKind maps a Word token's text to a comparison FilterKind, or nil
// if it is not one of eq/ne/co/sw/ew/gt/ge/lt/le.
func compOpKind(t Token) *FilterKind {
	if t.Kind != TokWord {
		return nil
	}
	var k FilterKind
	switch toASCIILower(t.Text) {
	case "eq":
		k = KindEqual
	case "ne":
		k = KindNotEqual
	case "co":
		k = KindContains
	case "sw":
		k = KindStartsWith
	case "ew":
		k = KindEndsWith
	case "gt":
		k = KindGreaterThan
	case "ge":
		k = KindGreaterOrEqual
	case "lt":
		k = KindLessThan
	case "le":
		k = KindLessOrEqual
	default:
		return nil
	}
	return &k
}

func isWordKeyword(t Token, kw string) bool {
	return t.Kind == TokWord && keywordEquals(t.Text, kw)
}

// parseValue implements the Value production: String | Number | Bool |
// Null (spec §4.2).
func parseValue(ts *tokenStream) (Value, error) {
	tok := ts.peek()
	switch tok.Kind {
	case TokString:
		ts.next()
		return StringValue(tok.Text), nil
	case TokNumber:
		ts.next()
		if tok.NumberIsInt {
			return IntValue(tok.NumberInt), nil
		}
		return FloatValue(tok.NumberFloat), nil
	case TokBool:
		ts.next()
		return BoolValue(tok.BoolValue), nil
	case TokNull:
		ts.next()
		return NullValue(), nil
	case TokEnd:
		return Value{}, newParseError(UnexpectedEnd, tok.Offset(), "expected a value, reached end of input")
	default:
		return Value{}, newParseError(UnexpectedToken, tok.Offset(), "expected a value, got %s", describeToken(tok))
	}
}
