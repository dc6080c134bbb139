package scimfilter

import participlelexer "github.com/alecthomas/participle/v2/lexer"

// TokenKind enumerates the lexical categories of spec §4.1.
type TokenKind int

const (
	TokEnd TokenKind = iota
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokWord
	TokString
	TokNumber
	TokBool
	TokNull
	TokDot
)

func (k TokenKind) String() string {
	switch k {
	case TokEnd:
		return "End"
	case TokLParen:
		return "LParen"
	case TokRParen:
		return "RParen"
	case TokLBracket:
		return "LBracket"
	case TokRBracket:
		return "RBracket"
	case TokWord:
		return "Word"
	case TokString:
		return "String"
	case TokNumber:
		return "Number"
	case TokBool:
		return "Bool"
	case TokNull:
		return "Null"
	case TokDot:
		return "Dot"
	default:
		return "Unknown"
	}
}

// Token is one lexeme of a filter or path string.
//
// Pos uses participle's lexer.Position (the same type the teacher embeds
// in every grammar struct as `Pos lexer.Position`) purely as a byte/line/
// column bookkeeping value — this package does not use participle's
// declarative struct-tag grammar engine (see DESIGN.md), only this one
// stable, dependency-light type from its lexer subpackage.
type Token struct {
	Kind TokenKind
	Pos  participlelexer.Position

	// Text is the raw source text for Word/Number tokens, and the
	// *decoded* content for String tokens (escapes already resolved).
	Text string

	BoolValue   bool
	NumberIsInt bool
	NumberInt   int64
	NumberFloat float64
}

// Offset is shorthand for Pos.Offset, the 0-indexed character position
// ParseError reports (spec §7).
func (t Token) Offset() int { return t.Pos.Offset }

var keywordSet = map[string]struct{}{
	"and": {}, "or": {}, "not": {},
	"eq": {}, "ne": {}, "co": {}, "sw": {}, "ew": {},
	"pr": {}, "gt": {}, "ge": {}, "lt": {}, "le": {},
}

// isKeyword reports whether the ASCII-lowercased word is a reserved
// operator keyword (spec §4.1).
func isKeyword(word string) bool {
	_, ok := keywordSet[toASCIILower(word)]
	return ok
}

// keywordEquals reports whether word case-insensitively matches kw.
func keywordEquals(word, kw string) bool {
	return asciiEqualFold(word, kw)
}

func toASCIILower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
