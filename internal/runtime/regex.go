// Package runtime provides the collaborators the VM delegates to: the
// extended-regular-expression matcher and line-oriented input.
package runtime

import (
	"fmt"
	"sync"

	"github.com/coregx/coregex"
)

// dotallPrefix is prepended to patterns for AWK semantics (dot matches newline).
const dotallPrefix = "(?s)"

// DefaultCacheSize is the number of compiled patterns a RegexCache keeps.
const DefaultCacheSize = 1000

// RegexConfig controls regex behavior.
type RegexConfig struct {
	// POSIX enables leftmost-longest matching (ERE semantics).
	// When false, uses leftmost-first matching (faster, Perl-like).
	POSIX bool
}

// DefaultConfig returns the default POSIX-compliant configuration.
func DefaultConfig() RegexConfig {
	return RegexConfig{POSIX: true}
}

// Regex wraps a compiled coregex pattern.
type Regex struct {
	re *coregex.Regexp
}

// Compile creates a new Regex from pattern with default POSIX config.
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// CompileWithConfig creates a new Regex with the specified configuration.
// Dot matches any character including newlines.
func CompileWithConfig(pattern string, config RegexConfig) (*Regex, error) {
	re, err := coregex.Compile(dotallPrefix + pattern)
	if err != nil {
		return nil, err
	}
	if config.POSIX {
		re.Longest()
	}
	return &Regex{re: re}, nil
}

// MatchString reports whether s contains any match.
func (r *Regex) MatchString(s string) bool {
	return r.re.MatchString(s)
}

// RegexCache provides thread-safe compiled regex caching with FIFO eviction.
// Lookups are lock-free via sync.Map; only insertions take the lock.
type RegexCache struct {
	cache   sync.Map   // map[string]*Regex
	orderMu sync.Mutex // Protects order and size
	order   []string   // FIFO order for eviction
	size    int
	maxSize int
	config  RegexConfig
}

// NewRegexCache creates a cache with specified max size and default POSIX config.
func NewRegexCache(maxSize int) *RegexCache {
	return NewRegexCacheWithConfig(maxSize, DefaultConfig())
}

// NewRegexCacheWithConfig creates a cache with specified max size and config.
func NewRegexCacheWithConfig(maxSize int, config RegexConfig) *RegexCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &RegexCache{
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		config:  config,
	}
}

// Get returns a compiled regex, compiling and caching if needed.
func (c *RegexCache) Get(pattern string) (*Regex, error) {
	if re, ok := c.cache.Load(pattern); ok {
		return re.(*Regex), nil
	}

	re, err := CompileWithConfig(pattern, c.config)
	if err != nil {
		return nil, err
	}

	// Another goroutine might have stored it already
	if existing, loaded := c.cache.LoadOrStore(pattern, re); loaded {
		return existing.(*Regex), nil
	}

	c.orderMu.Lock()
	c.order = append(c.order, pattern)
	c.size++
	for c.size > c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		c.cache.Delete(oldest)
		c.size--
	}
	c.orderMu.Unlock()

	return re, nil
}

// Match reports whether subject contains a match of pattern. It is the
// matcher the VM uses for MatchEre.
func (c *RegexCache) Match(pattern, subject string) (bool, error) {
	re, err := c.Get(pattern)
	if err != nil {
		return false, fmt.Errorf("compile /%s/: %w", pattern, err)
	}
	return re.MatchString(subject), nil
}

// Len returns the approximate number of cached regexes.
func (c *RegexCache) Len() int {
	c.orderMu.Lock()
	n := c.size
	c.orderMu.Unlock()
	return n
}

// Clear removes all cached regexes.
func (c *RegexCache) Clear() {
	c.orderMu.Lock()
	defer c.orderMu.Unlock()
	for _, p := range c.order {
		c.cache.Delete(p)
	}
	c.order = c.order[:0]
	c.size = 0
}
