package apt

import "strings"

// SplitList splits a comma-separated control field (Depends, Provides, ...)
// into trimmed, non-empty entries.
func SplitList(field string) []string {
	var out []string
	for _, part := range strings.Split(field, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Alternatives parses one dependency group such as "debconf (>= 0.5) |
// debconf-2.0" into its candidate package names, left to right, with
// version, architecture and build-profile qualifiers removed.
func Alternatives(group string) []string {
	var out []string
	for _, alt := range strings.Split(group, "|") {
		if name := StripQualifiers(alt); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// StripQualifiers returns the bare package name of a dependency token.
//
//	"libc6 (>= 2.34)"    -> "libc6"
//	"python3:any"        -> "python3"
//	"foo [amd64] <!nocheck>" -> "foo"
func StripQualifiers(token string) string {
	token = strings.TrimSpace(token)
	if i := strings.IndexAny(token, " \t([<:"); i >= 0 {
		token = token[:i]
	}
	return token
}
