package scimfilter

import (
	"strconv"
	"strings"
	"unicode/utf8"

	participlelexer "github.com/alecthomas/participle/v2/lexer"
)

// The token grammar mirrors the regex table the teacher builds with
// lexer.MustSimple([]lexer.SimpleRule{...}) (filterexpression.go's `Lexer`
// var, reused verbatim in style by holomush-holomush's dslLexer): one rule
// per token class, longest-match-first where patterns overlap. Offset-exact
// error reporting and backslash-escape decoding (spec §4.1) need control
// participle's declarative lexer does not expose, so scanning here is
// hand-rolled over runes (see DESIGN.md); only the lexer.Position
// bookkeeping type is reused from the dependency.

// lex tokenizes src into a slice ending with a TokEnd token.
func lex(src string) ([]Token, error) {
	runes := []rune(src)
	var toks []Token
	i := 0
	line, col := 1, 1

	pos := func(offset int) participlelexer.Position {
		return participlelexer.Position{Offset: offset, Line: line, Column: col}
	}

	advance := func(n int) {
		for k := 0; k < n; k++ {
			if runes[i+k] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		i += n
	}

	for i < len(runes) {
		c := runes[i]

		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			advance(1)
			continue

		case c == '(':
			toks = append(toks, Token{Kind: TokLParen, Pos: pos(i), Text: "("})
			advance(1)

		case c == ')':
			toks = append(toks, Token{Kind: TokRParen, Pos: pos(i), Text: ")"})
			advance(1)

		case c == '[':
			toks = append(toks, Token{Kind: TokLBracket, Pos: pos(i), Text: "["})
			advance(1)

		case c == ']':
			toks = append(toks, Token{Kind: TokRBracket, Pos: pos(i), Text: "]"})
			advance(1)

		case c == '.':
			toks = append(toks, Token{Kind: TokDot, Pos: pos(i), Text: "."})
			advance(1)

		case c == '"':
			start := i
			decoded, consumed, err := decodeStringLiteral(runes[i:], start)
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: TokString, Pos: pos(start), Text: decoded})
			advance(consumed)

		case isWordStart(c):
			start := i
			j := i
			for j < len(runes) && (isWordRune(runes[j]) || isVersionDot(runes, j)) {
				j++
			}
			word := string(runes[start:j])
			tok, err := classifyWord(word, pos(start))
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			advance(j - i)

		case c == '+' || c == '-' || isDigit(c):
			start := i
			j, err := scanNumberEnd(runes, i)
			if err != nil {
				return nil, err
			}
			numText := string(runes[start:j])
			tok, err := classifyNumber(numText, pos(start))
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			advance(j - i)

		default:
			return nil, newParseError(UnexpectedToken, i, "unexpected character %q", c)
		}
	}

	toks = append(toks, Token{Kind: TokEnd, Pos: pos(len(runes)), Text: ""})
	return toks, nil
}

func isWordStart(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}

// isWordRune matches spec §4.1's Word character class minus '.':
// [A-Za-z_][A-Za-z0-9_\-:/$]*
//
// The literal spec text folds '.' into Word so a whole dotted path lexes
// as one token. That collides with paths interrupted by an inline value
// filter, e.g. `emails[type eq "work"].value`, where the text immediately
// after `]` is `.value` and a token can't start mid-pattern on '.' alone.
// This lexer instead emits '.' as its own TokDot (see the path parser in
// path.go, which implements Path's `Element ("." Element)*` directly over
// Word/Dot tokens) — documented as a deliberate deviation in DESIGN.md,
// not an oversight. The one exception is a '.' directly followed by a
// digit (see isVersionDot), which stays inside the Word so that schema
// URNs such as `urn:ietf:params:scim:schemas:core:2.0:User` lex as one
// token; an attribute name never starts with a digit, so such a '.' is
// never a path separator.
func isWordRune(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '_' || c == '-' || c == ':' || c == '/' || c == '$'
}

// isVersionDot reports whether runes[j] is a '.' followed by a digit.
func isVersionDot(runes []rune, j int) bool {
	return runes[j] == '.' && j+1 < len(runes) && isDigit(runes[j+1])
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

// classifyWord turns a raw Word lexeme into a Word, Bool, or Null token,
// matching keywords case-insensitively (spec §4.1).
func classifyWord(word string, pos participlelexer.Position) (Token, error) {
	switch {
	case keywordEquals(word, "true"):
		return Token{Kind: TokBool, Pos: pos, Text: word, BoolValue: true}, nil
	case keywordEquals(word, "false"):
		return Token{Kind: TokBool, Pos: pos, Text: word, BoolValue: false}, nil
	case keywordEquals(word, "null"):
		return Token{Kind: TokNull, Pos: pos, Text: word}, nil
	default:
		return Token{Kind: TokWord, Pos: pos, Text: word}, nil
	}
}

// scanNumberEnd returns the rune index just past a Number lexeme starting
// at start (spec §4.1: decimal integer or float, optional sign, optional
// exponent).
func scanNumberEnd(runes []rune, start int) (int, error) {
	i := start
	if runes[i] == '+' || runes[i] == '-' {
		i++
	}
	digitsStart := i
	for i < len(runes) && isDigit(runes[i]) {
		i++
	}
	if i == digitsStart {
		return 0, newParseError(InvalidNumber, start, "expected digits in number")
	}
	if i < len(runes) && runes[i] == '.' {
		i++
		fracStart := i
		for i < len(runes) && isDigit(runes[i]) {
			i++
		}
		if i == fracStart {
			return 0, newParseError(InvalidNumber, start, "expected digits after decimal point")
		}
	}
	if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
		j := i + 1
		if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
			j++
		}
		expStart := j
		for j < len(runes) && isDigit(runes[j]) {
			j++
		}
		if j == expStart {
			return 0, newParseError(InvalidNumber, start, "expected digits in exponent")
		}
		i = j
	}
	return i, nil
}

func classifyNumber(text string, pos participlelexer.Position) (Token, error) {
	if !strings.ContainsAny(text, ".eE") {
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return Token{Kind: TokNumber, Pos: pos, Text: text, NumberIsInt: true, NumberInt: n}, nil
		}
		// Overflows int64 (e.g. a very long digit run) fall back to float,
		// matching DecodeJSON's own float fallback for large integers.
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, newParseError(InvalidNumber, pos.Offset, "invalid number %q", text)
	}
	return Token{Kind: TokNumber, Pos: pos, Text: text, NumberIsInt: false, NumberFloat: f}, nil
}

// decodeStringLiteral decodes a double-quoted string starting at runes[0]
// (which must be '"'), honoring the escapes in spec §4.1. offset is the
// absolute rune offset of runes[0], used for error reporting. Returns the
// decoded text (without quotes), and the number of runes consumed
// (including both quotes).
func decodeStringLiteral(runes []rune, offset int) (string, int, error) {
	if len(runes) == 0 || runes[0] != '"' {
		return "", 0, newParseError(UnterminatedString, offset, "expected opening quote")
	}
	var b strings.Builder
	i := 1
	for {
		if i >= len(runes) {
			return "", 0, newParseError(UnterminatedString, offset, "unterminated string literal")
		}
		c := runes[i]
		if c == '"' {
			i++
			return b.String(), i, nil
		}
		if c == '\\' {
			if i+1 >= len(runes) {
				return "", 0, newParseError(UnterminatedString, offset, "unterminated escape sequence")
			}
			esc := runes[i+1]
			switch esc {
			case '"':
				b.WriteByte('"')
				i += 2
			case '\\':
				b.WriteByte('\\')
				i += 2
			case '/':
				b.WriteByte('/')
				i += 2
			case 'b':
				b.WriteByte('\b')
				i += 2
			case 'f':
				b.WriteByte('\f')
				i += 2
			case 'n':
				b.WriteByte('\n')
				i += 2
			case 'r':
				b.WriteByte('\r')
				i += 2
			case 't':
				b.WriteByte('\t')
				i += 2
			case 'u':
				if i+6 > len(runes) {
					return "", 0, newParseError(InvalidEscape, offset+i, "incomplete \\u escape")
				}
				hex := string(runes[i+2 : i+6])
				cp, err := strconv.ParseUint(hex, 16, 32)
				if err != nil {
					return "", 0, newParseError(InvalidEscape, offset+i, "invalid \\u escape %q", hex)
				}
				r := rune(cp)
				if !utf8.ValidRune(r) {
					r = utf8.RuneError
				}
				b.WriteRune(r)
				i += 6
			default:
				return "", 0, newParseError(InvalidEscape, offset+i, "invalid escape \\%c", esc)
			}
			continue
		}
		b.WriteRune(c)
		i++
	}
}
