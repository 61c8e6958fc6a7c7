package generator

import (
	"strings"
)

// IdentKind selects the target-language position an identifier is
// sanitized for.
type IdentKind int

const (
	// IdentField is a struct field: lower_snake_case.
	IdentField IdentKind = iota
	// IdentType is a type name: UpperCamelCase.
	IdentType
	// IdentVariable is a local or package-level name: lower_snake_case.
	IdentVariable
)

// goReserved holds the Go keywords plus predeclared identifiers and names
// used by the prelude of the emitted code. Sanitized identifiers that would
// collide get a trailing underscore.
var goReserved = map[string]bool{
	// Keywords.
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
	// Predeclared identifiers.
	"any": true, "bool": true, "byte": true, "comparable": true,
	"complex64": true, "complex128": true, "error": true, "float32": true,
	"float64": true, "int": true, "int8": true, "int16": true, "int32": true,
	"int64": true, "rune": true, "string": true, "uint": true, "uint8": true,
	"uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"true": true, "false": true, "iota": true, "nil": true,
	"append": true, "cap": true, "clear": true, "close": true,
	"complex": true, "copy": true, "delete": true, "imag": true,
	"len": true, "make": true, "max": true, "min": true, "new": true,
	"panic": true, "print": true, "println": true, "real": true,
	"recover": true,
	// Emitted-code prelude.
	"model": true, "id": true, "out": true,
}

// Sanitize maps a source identifier to a safe Go identifier for the given
// position. Runs of dots and dashes become underscores, a leading digit is
// guarded with an underscore, case is normalized per kind, and reserved
// words in field and variable positions get a trailing underscore (type
// names are UpperCamelCase and cannot collide). Sanitize is idempotent.
func Sanitize(name string, kind IdentKind) string {
	s := collapseSeparators(name)
	if s == "" {
		s = "_"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	if kind == IdentType {
		// Adjacent one-letter parts form an acronym run ("a_b" -> "AB") that
		// converts differently a second time, so convert until stable.
		out := toCamelCase(s)
		for next := toCamelCase(out); next != out; next = toCamelCase(out) {
			out = next
		}
		return out
	}
	s = toSnakeCase(s)
	if goReserved[strings.TrimSuffix(s, "_")] && !strings.HasSuffix(s, "_") {
		s += "_"
	}
	return s
}

// collapseSeparators replaces every run of '.' and '-' with one underscore.
func collapseSeparators(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	inRun := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '.' || c == '-' {
			if !inRun {
				b.WriteByte('_')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteByte(c)
	}
	return b.String()
}

// toSnakeCase converts CamelCase or mixed identifiers to snake_case,
// keeping acronym runs together (HTTPServer -> http_server).
func toSnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			prevLower := i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z'
			nextLower := i+1 < len(s) && s[i+1] >= 'a' && s[i+1] <= 'z'
			prevUpper := i > 0 && s[i-1] >= 'A' && s[i-1] <= 'Z'
			if i > 0 && s[i-1] != '_' && (prevLower || (prevUpper && nextLower)) {
				b.WriteByte('_')
			}
			b.WriteByte(c - 'A' + 'a')
			continue
		}
		b.WriteByte(c)
	}
	// Collapse duplicate underscores introduced by mixed input.
	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return out
}

// toCamelCase converts a snake_case or mixed identifier to UpperCamelCase.
func toCamelCase(s string) string {
	parts := strings.Split(toSnakeCase(s), "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		c := part[0]
		if c >= 'a' && c <= 'z' {
			c = c - 'a' + 'A'
		}
		b.WriteByte(c)
		b.WriteString(part[1:])
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}
