package glob

import "strings"

// expandBraces expands a single top-level "{a,b,c}" alternation into
// multiple patterns, recursing into nested braces, before base-directory
// extraction runs. This is reimplemented by hand because doublestar resolves
// "{...}" as part of a single match rather than as distinct sibling patterns
// with distinct base directories — and narrowing the watch footprint
// specifically requires the latter.
//
// An escaped "\{" or "\}" is left literal and does not open/close a group.
func expandBraces(pattern string) []string {
	open, close, ok := findTopLevelBraceGroup(pattern)
	if !ok {
		return []string{pattern}
	}

	prefix := pattern[:open]
	alternatives := splitTopLevelCommas(pattern[open+1 : close])
	suffix := pattern[close+1:]

	var out []string
	for _, alt := range alternatives {
		combined := prefix + alt + suffix
		out = append(out, expandBraces(combined)...)
	}
	return out
}

// findTopLevelBraceGroup locates the first unescaped '{' and its matching
// unescaped '}', accounting for nested braces in between.
func findTopLevelBraceGroup(pattern string) (open, close int, ok bool) {
	depth := 0
	open = -1
	for i := 0; i < len(pattern); i++ {
		if isEscaped(pattern, i) {
			continue
		}
		switch pattern[i] {
		case '{':
			if depth == 0 {
				open = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue // stray unmatched close, ignore
			}
			depth--
			if depth == 0 && open >= 0 {
				return open, i, true
			}
		}
	}
	return 0, 0, false
}

// splitTopLevelCommas splits s on commas that are not nested inside an inner
// brace group and not escaped.
func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		if isEscaped(s, i) {
			continue
		}
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// isEscaped reports whether the byte at i is preceded by an odd number of
// backslashes (i.e. is itself escaped).
func isEscaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// unescapeBraces removes the backslash in front of a literal "\{" or "\}"
// left over after expansion, so the pattern handed to the match engine no
// longer carries expansion-only escape markers.
func unescapeBraces(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '\\' && i+1 < len(pattern) && (pattern[i+1] == '{' || pattern[i+1] == '}') {
			continue
		}
		b.WriteByte(pattern[i])
	}
	return b.String()
}
