package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// compiledPattern is a glob pattern compiled to a path matcher.
type compiledPattern struct {
	re       *regexp.Regexp
	original string
	anchored bool // matched against the whole relative path
	dirOnly  bool // pattern ends with /
}

// compilePattern converts an rsync-style glob into a matcher. A leading
// slash, or any slash inside the pattern, anchors it to the collection
// root; otherwise it matches the basename or any trailing path suffix.
func compilePattern(pattern string) (*compiledPattern, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty filter pattern")
	}
	cp := &compiledPattern{original: pattern}

	if strings.HasSuffix(pattern, "/") {
		cp.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	if strings.HasPrefix(pattern, "/") {
		cp.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	} else if strings.Contains(pattern, "/") {
		cp.anchored = true
	}

	prefix := "(^|/)"
	if cp.anchored {
		prefix = "^"
	}

	re, err := regexp.Compile(prefix + globToRegex(pattern) + "$")
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", cp.original, err)
	}
	cp.re = re
	return cp, nil
}

// match tests whether a relative path matches this pattern.
func (cp *compiledPattern) match(relPath string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	return cp.re.MatchString(relPath)
}

// globToRegex translates glob syntax to a regular expression body:
// "**/" matches zero or more directories, "**" anything, "*" anything
// within one path element, "?" one character and "[...]" a class,
// with "[!...]" as negation.
func globToRegex(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			switch {
			case strings.HasPrefix(glob[i:], "**/"):
				b.WriteString("(.*/)?")
				i += 2
			case strings.HasPrefix(glob[i:], "**"):
				b.WriteString(".*")
				i++
			default:
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := classEnd(glob, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			cls := glob[i+1 : end]
			if strings.HasPrefix(cls, "!") {
				cls = "^" + cls[1:]
			}
			b.WriteString("[" + cls + "]")
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}

// classEnd returns the index of the ']' closing the class opened at
// glob[start], or -1. A ']' directly after "[" or "[!" is literal.
func classEnd(glob string, start int) int {
	j := start + 1
	if j < len(glob) && glob[j] == '!' {
		j++
	}
	if j < len(glob) && glob[j] == ']' {
		j++
	}
	for ; j < len(glob); j++ {
		if glob[j] == ']' {
			return j
		}
	}
	return -1
}
