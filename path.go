package scimfilter

import (
	"hash/fnv"

	"github.com/samber/oops"
)

// PathElement is one dotted segment of a Path (spec §3). ValueFilter is
// non-nil only when the element was written with an inline `[...]`
// bracket; whether the underlying attribute is actually multi-valued is
// not checked here (spec §3: "not enforced at parse time").
type PathElement struct {
	Attribute   string
	ValueFilter *Filter
}

// Equal compares two elements: attribute names ASCII-case-insensitively
// (spec §8 invariant 8), value filters structurally.
func (e PathElement) Equal(other PathElement) bool {
	if !asciiEqualFold(e.Attribute, other.Attribute) {
		return false
	}
	if (e.ValueFilter == nil) != (other.ValueFilter == nil) {
		return false
	}
	if e.ValueFilter == nil {
		return true
	}
	return e.ValueFilter.Equal(*other.ValueFilter)
}

// Path is an ordered sequence of PathElements, with an optional schema
// URN on the whole path (spec §3). The empty Path (no elements) denotes
// the root object.
type Path struct {
	Schema   string
	Elements []PathElement
}

// Equal compares two paths: schema and attribute names ASCII-case-
// insensitively, element order-sensitive (unlike Filter And/Or, a Path's
// elements are positional, not a bag).
func (p Path) Equal(other Path) bool {
	if !asciiEqualFold(p.Schema, other.Schema) {
		return false
	}
	if len(p.Elements) != len(other.Elements) {
		return false
	}
	for i := range p.Elements {
		if !p.Elements[i].Equal(other.Elements[i]) {
			return false
		}
	}
	return true
}

// Hash is consistent with Equal.
func (p Path) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(toASCIILower(p.Schema)))
	h.Write([]byte{0})
	for _, e := range p.Elements {
		h.Write([]byte(toASCIILower(e.Attribute)))
		h.Write([]byte{0})
		if e.ValueFilter != nil {
			writeUint64(h, e.ValueFilter.Hash())
		}
		h.Write([]byte{1})
	}
	return h.Sum64()
}

// String renders the canonical path text (spec §4.4).
func (p Path) String() string {
	return RenderPath(p)
}

// IsRoot reports whether p has no elements (denotes the root object).
func (p Path) IsRoot() bool {
	return len(p.Elements) == 0
}

// ParsePath parses a standalone attribute path string (spec §6:
// `parsePath(string) -> Path | ParseError`).
func ParsePath(src string) (Path, error) {
	toks, err := lex(src)
	if err != nil {
		return Path{}, oops.Wrapf(err, "lexing path %q", src)
	}
	ts := &tokenStream{toks: toks}
	p, err := parsePathTokens(ts)
	if err != nil {
		return Path{}, err
	}
	if !ts.atEnd() {
		tok := ts.peek()
		return Path{}, newParseError(UnexpectedToken, tok.Offset(), "unexpected trailing input %q", tok.Text)
	}
	return p, nil
}

// isNameStart/isNameRune validate attribute names against spec §3's Path
// invariant ("must start with a letter") combined with §4.3's broader
// Name character class ([A-Za-z0-9_-$] after the first letter).
func isNameStart(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isNameRune(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '_' || c == '-' || c == '$'
}

func validateName(name string, offset int) error {
	if name == "" {
		return newParseError(InvalidPath, offset, "empty attribute name")
	}
	runes := []rune(name)
	if !isNameStart(runes[0]) {
		return newParseError(InvalidPath, offset, "attribute name %q must start with a letter", name)
	}
	for _, r := range runes[1:] {
		if !isNameRune(r) {
			return newParseError(InvalidPath, offset, "attribute name %q contains invalid character %q", name, r)
		}
	}
	return nil
}

// parsePathTokens implements the Path grammar of spec §4.3:
//
//	Path    := (URN ":")? Element ("." Element)*
//	Element := Name ("[" Filter "]")?
//
// It consumes tokens from ts, recursing into parseFilterExpr (parser.go)
// for inline value filters. The lexer emits '.' as its own token (see
// DESIGN.md) so dotted chains interrupted by a `[...]` bracket, e.g.
// `emails[type eq "work"].value`, remain lexable; Word's character class
// is narrowed accordingly relative to the literal text of spec §4.1.
func parsePathTokens(ts *tokenStream) (Path, error) {
	head := ts.peek()
	if head.Kind != TokWord {
		return Path{}, newParseError(InvalidPath, head.Offset(), "expected attribute path, got %s", describeToken(head))
	}
	ts.next()

	schema, firstName := splitSchemaURN(head.Text)
	if err := validateName(firstName, head.Offset()); err != nil {
		return Path{}, err
	}

	first, err := parseElementTail(ts, firstName)
	if err != nil {
		return Path{}, err
	}

	elements := []PathElement{first}
	for ts.peek().Kind == TokDot {
		dot := ts.next()
		nameTok := ts.peek()
		if nameTok.Kind != TokWord {
			return Path{}, newParseError(InvalidPath, dot.Offset(), "expected attribute name after '.'")
		}
		ts.next()
		if err := validateName(nameTok.Text, nameTok.Offset()); err != nil {
			return Path{}, err
		}
		el, err := parseElementTail(ts, nameTok.Text)
		if err != nil {
			return Path{}, err
		}
		elements = append(elements, el)
	}

	return Path{Schema: schema, Elements: elements}, nil
}

// parseElementTail parses the optional `[ Filter ]` suffix of a path
// element whose name has already been consumed.
func parseElementTail(ts *tokenStream, name string) (PathElement, error) {
	el := PathElement{Attribute: name}
	if ts.peek().Kind != TokLBracket {
		return el, nil
	}
	open := ts.next()
	inner, err := parseFilterExpr(ts)
	if err != nil {
		return PathElement{}, err
	}
	if ts.peek().Kind != TokRBracket {
		return PathElement{}, newParseError(BracketMismatch, open.Offset(), "unmatched '[' for value filter")
	}
	ts.next()
	el.ValueFilter = &inner
	return el, nil
}

// splitSchemaURN detects a leading schema URN on a single Word lexeme and
// splits it from the first element name, per spec §4.3: "The URN prefix
// is detected by a leading urn: literal and terminated at the last :
// before the first element name."
func splitSchemaURN(text string) (schema, rest string) {
	if len(text) < 4 || toASCIILower(text[:4]) != "urn:" {
		return "", text
	}
	lastColon := -1
	for i, c := range text {
		if c == ':' {
			lastColon = i
		}
	}
	if lastColon < 0 || lastColon == len(text)-1 {
		return "", text
	}
	return text[:lastColon], text[lastColon+1:]
}

func describeToken(t Token) string {
	if t.Kind == TokEnd {
		return "end of input"
	}
	return t.Kind.String() + " " + t.Text
}
