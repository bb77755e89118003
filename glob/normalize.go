package glob

import (
	"path"
	"strings"
)

// normalize rewrites p into the uniform POSIX form all matching proceeds
// in: backslashes become forward slashes, a Windows drive-letter prefix
// ("C:\") becomes a leading "/C:/", and a trailing slash is stripped except
// for the root itself. An empty result becomes ".".
func normalize(p string) string {
	p = toSlash(p)
	p = rewriteDriveLetter(p)

	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	if p == "" {
		return "."
	}
	return p
}

// toSlash rewrites backslash separators to forward slashes. path/filepath's
// own ToSlash is a no-op on non-Windows GOOS; matching must be
// platform-independent of the *build* OS (a pattern compiled on Linux must
// still match paths normalized from a Windows-style watch root in tests), so
// this is a plain byte rewrite rather than filepath.ToSlash.
func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// rewriteDriveLetter turns a leading "C:/..." into "/C:/..." so drive-letter
// paths sort and match consistently alongside POSIX absolute paths.
func rewriteDriveLetter(p string) string {
	if len(p) >= 2 && p[1] == ':' && isASCIILetter(p[0]) {
		return "/" + p
	}
	return p
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// resolveAgainst resolves pattern against cwd if it is not already absolute
// (in either POSIX or drive-letter form), then normalizes the result.
func resolveAgainst(cwd, pattern string) string {
	p := toSlash(pattern)
	if isAbsolute(p) {
		return normalize(p)
	}
	base := normalize(cwd)
	return normalize(path.Join(base, p))
}

func isAbsolute(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	if len(p) >= 2 && p[1] == ':' && isASCIILetter(p[0]) {
		return true
	}
	return false
}
