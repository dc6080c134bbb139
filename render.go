package scimfilter

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Render produces the canonical textual form of a Filter (spec §4.4).
// parse(render(ast)) == ast under AST equality for every ast returned by
// ParseFilter (spec §8, round-trip law).
func Render(f Filter) string {
	return renderFilter(f)
}

// String implements fmt.Stringer for Filter via Render.
func (f Filter) String() string {
	return Render(f)
}

// RenderPath produces the canonical textual form of a Path (spec §4.4).
func RenderPath(p Path) string {
	var b strings.Builder
	if p.Schema != "" {
		b.WriteString(p.Schema)
		b.WriteByte(':')
	}
	for i, el := range p.Elements {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(el.Attribute)
		if el.ValueFilter != nil {
			b.WriteByte('[')
			b.WriteString(renderFilter(*el.ValueFilter))
			b.WriteByte(']')
		}
	}
	return b.String()
}

func renderFilter(f Filter) string {
	switch f.kind {
	case KindAnd, KindOr:
		parts := make([]string, len(f.children))
		for i, c := range f.children {
			parts[i] = renderChild(f.kind, c)
		}
		return strings.Join(parts, " "+f.kind.String()+" ")

	case KindNot:
		return "not (" + renderFilter(*f.negated) + ")"

	case KindPresent:
		return RenderPath(*f.path) + " pr"

	case KindComplexValue:
		return RenderPath(*f.path) + "[" + renderFilter(*f.inner) + "]"

	default: // comparisons
		return RenderPath(*f.path) + " " + f.kind.String() + " " + renderValue(f.value)
	}
}

// renderChild parenthesizes a direct child of And/Or when it is itself an
// And/Or/Not of a different kind than the parent (spec §4.4). Same-kind
// And/Or nesting never reaches the renderer because the smart
// constructors flatten it at build time (spec §3).
func renderChild(parentKind FilterKind, child Filter) string {
	s := renderFilter(child)
	switch child.kind {
	case KindAnd, KindOr, KindNot:
		if child.kind != parentKind {
			return "(" + s + ")"
		}
	}
	return s
}

func renderValue(v Value) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			// Keep an integral float a float on re-parse ("10" would lex as Int).
			s += ".0"
		}
		return s
	case KindString:
		return quoteString(v.s)
	case KindBinary:
		return quoteString(base64.StdEncoding.EncodeToString(v.bin))
	default:
		// Comparison values are restricted to scalar kinds by the parser
		// and by NewComparison's callers; reaching here means a caller
		// built a Filter by hand with an Array/Object comparison value.
		return fmt.Sprintf("%q", v.asText())
	}
}

// quoteString double-quotes s with JSON-style escaping (spec §4.4, §6),
// the inverse of decodeStringLiteral in lexer.go.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
