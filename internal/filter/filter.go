// Package filter decides which paths a collection includes, using
// rsync-style glob rules and size bounds.
package filter

import "strings"

// Rule represents a single include or exclude filter rule.
type Rule struct {
	Pattern *compiledPattern
	Include bool // true=include, false=exclude
}

// String renders the rule in filter-file syntax.
func (r Rule) String() string {
	if r.Include {
		return "+ " + r.Pattern.original
	}
	return "- " + r.Pattern.original
}

// Chain holds an ordered list of filter rules plus size filters.
// A Chain is built once and then only read, so Match is safe for
// concurrent use by scanner workers.
type Chain struct {
	rules   []Rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude adds an exclude rule for the given pattern.
func (c *Chain) AddExclude(pattern string) error {
	return c.add(pattern, false)
}

// AddInclude adds an include rule for the given pattern.
func (c *Chain) AddInclude(pattern string) error {
	return c.add(pattern, true)
}

// AddRule adds a rule written in filter-file syntax: "+ pat" includes,
// "- pat" or a bare pattern excludes.
func (c *Chain) AddRule(line string) error {
	pattern, include := splitRule(line)
	return c.add(pattern, include)
}

func (c *Chain) add(pattern string, include bool) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: include})
	return nil
}

// SetMinSize sets the minimum file size filter.
func (c *Chain) SetMinSize(n int64) {
	c.minSize = n
}

// SetMaxSize sets the maximum file size filter.
func (c *Chain) SetMaxSize(n int64) {
	c.maxSize = n
}

// Rules returns the rules in evaluation order.
func (c *Chain) Rules() []Rule {
	return c.rules
}

// Empty reports whether the chain has no rules and no size filters.
func (c *Chain) Empty() bool {
	return len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0
}

// Match returns true if the path should be INCLUDED (not filtered out).
// relPath is slash-separated and relative to the collection root; isDir
// marks directories, and size is ignored for them. The root itself
// ("." or "") is always included.
func (c *Chain) Match(relPath string, isDir bool, size int64) bool {
	if relPath == "" || relPath == "." {
		return true
	}
	relPath = strings.TrimPrefix(relPath, "./")

	if !isDir {
		if c.minSize > 0 && size < c.minSize {
			return false
		}
		if c.maxSize > 0 && size > c.maxSize {
			return false
		}
	}

	// First match wins.
	for _, rule := range c.rules {
		if rule.Pattern.match(relPath, isDir) {
			return rule.Include
		}
	}
	return true
}
