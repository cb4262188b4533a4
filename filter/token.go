package filter

import (
	"regexp"
	"strings"
)

// tokenRe matches either a double-quoted span (with \" escapes) or a bare
// whitespace-delimited word.
var tokenRe = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"|(\S+)`)

// Tokenize splits a previously-serialized value list into its values.
// Bare words are whitespace-delimited; double-quoted spans may contain
// whitespace, with embedded quotes escaped as \".
//
// Parsing is best-effort: a quoted span with no closing quote is not
// matched as a quoted span and no error is raised. Empty input yields nil.
func Tokenize(s string) []string {
	var tokens []string
	for _, m := range tokenRe.FindAllStringSubmatchIndex(s, -1) {
		if m[2] >= 0 {
			tokens = append(tokens, strings.ReplaceAll(s[m[2]:m[3]], `\"`, `"`))
			continue
		}
		tokens = append(tokens, s[m[4]:m[5]])
	}
	return tokens
}

// QuoteTokens renders a value list in the form Tokenize parses.
// Values containing whitespace or quotes are double-quoted, with embedded
// quotes escaped, so Tokenize(QuoteTokens(v)) == v.
func QuoteTokens(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v == "" || strings.ContainsAny(v, " \t\n") || strings.Contains(v, `"`) {
			parts[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
			continue
		}
		parts[i] = v
	}
	return strings.Join(parts, " ")
}
