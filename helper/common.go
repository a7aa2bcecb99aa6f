package helper

import "regexp"

var IdentifierRegex = regexp.MustCompile(`^[a-zA-Z_$][a-zA-Z0-9_$]*$`)

// LegacyWrapperRegex matches `name(<json>)` bodies, optionally followed by a semicolon.
var LegacyWrapperRegex = regexp.MustCompile(`(?s)^\s*[a-zA-Z_$][a-zA-Z0-9_$.]*\s*\((.*)\)\s*;?\s*$`)

func IsValidIdentifier(s string) bool {
	return IdentifierRegex.MatchString(s)
}

// UnwrapLegacy returns the text between the outer parentheses of a wrapped body.
func UnwrapLegacy(s string) (string, bool) {
	m := LegacyWrapperRegex.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}
