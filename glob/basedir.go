package glob

import "strings"

// metaChars are the glob special characters that make a path segment a
// pattern rather than a literal directory name.
const metaChars = "*?[]{}\\"

// baseDirectory returns the longest prefix of pattern containing no glob
// metacharacters, i.e. the deepest directory we can root a watch at without
// missing any match the pattern could produce. pattern must already be
// normalized (absolute, POSIX form, brace-expanded).
func baseDirectory(pattern string) string {
	segments := strings.Split(pattern, "/")

	var literal []string
	for _, seg := range segments {
		if containsMeta(seg) {
			break
		}
		literal = append(literal, seg)
	}

	if len(literal) == 0 {
		return "/"
	}

	dir := strings.Join(literal, "/")
	if dir == "" {
		return "/"
	}
	return dir
}

func containsMeta(segment string) bool {
	return strings.ContainsAny(segment, metaChars)
}
