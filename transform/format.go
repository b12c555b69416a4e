package transform

import "strings"

// expandFormat renders a *string or *type format against the string capture
// space. The grammar: <name> substitutes the capture named name, %< is a
// literal '<', %% is a literal '%', anything else is literal. Parsing is a
// single left-to-right pass.
func expandFormat(format string, caps *MatchMap) (string, error) {
	var out strings.Builder
	for i := 0; i < len(format); i++ {
		switch c := format[i]; c {
		case '<':
			end := strings.IndexByte(format[i+1:], '>')
			if end < 0 {
				return "", formatErrorf("unterminated reference in format %q", format)
			}
			name := format[i+1 : i+1+end]
			value, ok := caps.String(name)
			if !ok {
				return "", bindingErrorf("match %s, required by format %q, is missing", name, format)
			}
			out.WriteString(value)
			i += end + 1
		case '%':
			i++
			if i >= len(format) {
				return "", formatErrorf("dangling %% in format %q", format)
			}
			switch format[i] {
			case '<', '%':
				out.WriteByte(format[i])
			default:
				return "", formatErrorf("unknown escape %%%c in format %q", format[i], format)
			}
		default:
			out.WriteByte(c)
		}
	}
	return out.String(), nil
}
