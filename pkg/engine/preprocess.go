package engine

import "strings"

// preprocessSource rewrites script source before it reaches zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: mesh-from -> mesh_from
//     zygomys reads a hyphen inside an identifier as subtraction, so
//     kebab-case identifiers are rewritten outside strings and comments.
//
//  3. ; line comments become // comments.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)
	b := source
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == '"':
			j := skipQuoted(b, i, '"', true)
			out.WriteString(b[i:j])
			i = j
		case c == '`':
			j := skipQuoted(b, i, '`', false)
			out.WriteString(b[i:j])
			i = j
		case c == ';':
			j := i
			for j < len(b) && b[j] == ';' {
				j++
			}
			k := strings.IndexByte(b[j:], '\n')
			if k < 0 {
				k = len(b) - j
			}
			out.WriteString("//")
			out.WriteString(b[j : j+k])
			i = j + k
		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out.WriteString(":=")
			i += 2
		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out.WriteString(`"` + kwPrefix + b[i+1:j] + `"`)
			i = j
		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// skipQuoted returns the index just past the literal opened at b[i].
// Backslash escapes are honoured when escapes is set.
func skipQuoted(b string, i int, quote byte, escapes bool) int {
	j := i + 1
	for j < len(b) && b[j] != quote {
		if escapes && b[j] == '\\' && j+1 < len(b) {
			j++
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
