package glob

// BaseDirectory returns the longest glob-metacharacter-free prefix of
// pattern, normalized against cwd. This is the public single-pattern form of
// the extractor Matcher.BaseDirectories applies across an include list.
func BaseDirectory(pattern, cwd string) string {
	resolved := unescapeBraces(resolveAgainst(cwd, pattern))
	return baseDirectory(resolved)
}

// Normalize exposes the package's POSIX-form path normalization for callers
// (e.g. the watch package) that need to compare paths the same way the
// matcher does.
func Normalize(p string) string {
	return normalize(p)
}
