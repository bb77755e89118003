// Package glob compiles include/exclude pattern lists into the two
// predicates (IsMatch, ShouldSkip) and the base-directory extractor the
// directory watcher and recursive glob watcher use to decide what to watch
// and what to emit.
package glob

import (
	"fmt"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/watchkit/fswatch/internal/matchcache"
)

// defaultCacheSize bounds the memoized-match cache per Matcher.
const defaultCacheSize = 10000

// Matcher compiles include/exclude pattern lists into predicates. Patterns
// are POSIX-style glob: *, ** (any number of directory segments), ?,
// character classes, \ escaping, and brace alternation {a,b}.
type Matcher struct {
	includes []string // normalized, brace-expanded, absolute POSIX patterns
	excludes []string // same, with any trailing "/**" also tracked separately
	// excludeDirPrefixes holds each "/**"-suffixed exclude with the suffix
	// stripped, used by ShouldSkip to prune whole subtrees.
	excludeDirPrefixes []string

	// cacheMu guards cache: a Matcher is shared across the recursive glob
	// watcher's concurrent base-directory descent.
	cacheMu sync.Mutex
	cache   *matchcache.Cache
}

// New compiles includes and excludes (both relative to cwd unless already
// absolute) into a Matcher. Invalid patterns are a construction-time error;
// the returned predicates never fail at runtime.
func New(includes, excludes []string, cwd string) (*Matcher, error) {
	m := &Matcher{cache: matchcache.New(defaultCacheSize)}

	for _, raw := range includes {
		expanded := expandBraces(raw)
		for _, p := range expanded {
			p = unescapeBraces(resolveAgainst(cwd, p))
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("glob: invalid include pattern %q", raw)
			}
			m.includes = append(m.includes, p)
		}
	}

	for _, raw := range excludes {
		expanded := expandBraces(raw)
		for _, p := range expanded {
			p = unescapeBraces(resolveAgainst(cwd, p))
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("glob: invalid exclude pattern %q", raw)
			}
			m.excludes = append(m.excludes, p)
			if trimmed, ok := trimTrailingDoubleStar(p); ok {
				m.excludeDirPrefixes = append(m.excludeDirPrefixes, trimmed)
			}
		}
	}

	return m, nil
}

// IsMatch reports whether path should be emitted: some include pattern
// matches AND no exclude pattern matches. With no excludes configured this
// reduces to "any include matches" — the hot-path fast case.
func (m *Matcher) IsMatch(p string) bool {
	np := normalize(p)

	if cached, ok := m.cacheGet("match\x00" + np); ok {
		return cached
	}

	result := m.anyMatches(m.includes, np) && !m.anyMatches(m.excludes, np)
	m.cacheSet("match\x00"+np, result)
	return result
}

// ShouldSkip reports whether dir's entire subtree can be pruned: some
// exclude pattern (or, for a "/**"-suffixed exclude, the pattern with that
// suffix removed) matches dir.
func (m *Matcher) ShouldSkip(dir string) bool {
	np := normalize(dir)

	if cached, ok := m.cacheGet("skip\x00" + np); ok {
		return cached
	}

	result := m.anyMatches(m.excludes, np) || m.anyMatches(m.excludeDirPrefixes, np)
	m.cacheSet("skip\x00"+np, result)
	return result
}

func (m *Matcher) cacheGet(key string) (bool, bool) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	return m.cache.Get(key)
}

func (m *Matcher) cacheSet(key string, value bool) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	m.cache.Set(key, value)
}

// BaseDirectories returns the distinct, most-general base directories
// derived from the include patterns: the longest glob-metacharacter-free
// prefix of each (post brace-expansion) pattern, with any base directory
// that is itself inside another base directory dropped.
func (m *Matcher) BaseDirectories() []string {
	var all []string
	for _, p := range m.includes {
		all = append(all, baseDirectory(p))
	}
	return dedupeNarrowest(all)
}

func (m *Matcher) anyMatches(patterns []string, p string) bool {
	for _, pat := range patterns {
		ok, err := doublestar.Match(pat, p)
		if err != nil {
			continue // construction already validated patterns; defensive only
		}
		if ok {
			return true
		}
	}
	return false
}

func trimTrailingDoubleStar(pattern string) (string, bool) {
	const suffix = "/**"
	if len(pattern) > len(suffix) && pattern[len(pattern)-len(suffix):] == suffix {
		return pattern[:len(pattern)-len(suffix)], true
	}
	return "", false
}

// dedupeNarrowest removes duplicates and any directory already covered by a
// broader (prefix) directory in the set, so the recursive glob watcher never
// spawns two watchers where one already covers the other.
func dedupeNarrowest(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	var uniq []string
	for _, d := range dirs {
		if !seen[d] {
			seen[d] = true
			uniq = append(uniq, d)
		}
	}

	var out []string
	for _, d := range uniq {
		covered := false
		for _, other := range uniq {
			if other != d && isAncestorOrSelf(other, d) && other != d {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, d)
		}
	}
	return out
}

// isAncestorOrSelf reports whether ancestor is dir itself or a path prefix
// of dir on a "/"-segment boundary.
func isAncestorOrSelf(ancestor, dir string) bool {
	if ancestor == dir {
		return true
	}
	if ancestor == "/" {
		return true
	}
	return len(dir) > len(ancestor) && dir[:len(ancestor)] == ancestor && dir[len(ancestor)] == '/'
}
