package stream

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/golang/groupcache/lru"
)

// FindSettings selects how find and substitute patterns are interpreted.
type FindSettings struct {
	// Regex treats patterns as regular expressions; otherwise they are
	// literal substrings.
	Regex bool
	// MatchCase makes matching case sensitive.
	MatchCase bool
}

// patternCache holds compiled patterns keyed by settings and source text.
// lru.Cache is not safe for concurrent use; a Stream is single-threaded.
type patternCache struct {
	cache *lru.Cache
}

func newPatternCache(size int) *patternCache {
	if size <= 0 {
		return &patternCache{}
	}
	return &patternCache{cache: lru.New(size)}
}

// compile returns the expression for pattern under settings. Literal
// patterns are quoted so both modes share one matcher.
func (c *patternCache) compile(pattern string, settings FindSettings) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, &PatternError{Pattern: pattern, Err: ErrInvalidPattern}
	}

	key := cacheKey(pattern, settings)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v.(*regexp.Regexp), nil
		}
	}

	expr := pattern
	if !settings.Regex {
		expr = regexp.QuoteMeta(pattern)
	}
	if !settings.MatchCase {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}

	if c.cache != nil {
		c.cache.Add(key, re)
	}
	return re, nil
}

func (c *patternCache) len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

func cacheKey(pattern string, settings FindSettings) string {
	var b strings.Builder
	if settings.Regex {
		b.WriteByte('r')
	} else {
		b.WriteByte('l')
	}
	if settings.MatchCase {
		b.WriteByte('c')
	} else {
		b.WriteByte('i')
	}
	b.WriteByte(':')
	b.WriteString(pattern)
	return b.String()
}

// Substitution replaces matches of a pattern within a line.
type Substitution struct {
	re       *regexp.Regexp
	template []byte
	literal  bool
	global   bool
}

// apply substitutes within line, keeping its line terminator, and returns
// the result and the number of replacements made.
func (s *Substitution) apply(line []byte) ([]byte, int) {
	body, eol := splitEOL(line)

	if s.global {
		matches := s.re.FindAllSubmatchIndex(body, -1)
		if len(matches) == 0 {
			return line, 0
		}
		out := make([]byte, 0, len(line)+len(s.template))
		last := 0
		for _, loc := range matches {
			out = append(out, body[last:loc[0]]...)
			out = s.expand(out, body, loc)
			last = loc[1]
		}
		out = append(out, body[last:]...)
		return append(out, eol...), len(matches)
	}

	loc := s.re.FindSubmatchIndex(body)
	if loc == nil {
		return line, 0
	}
	out := make([]byte, 0, len(line)+len(s.template))
	out = append(out, body[:loc[0]]...)
	out = s.expand(out, body, loc)
	out = append(out, body[loc[1]:]...)
	return append(out, eol...), 1
}

func (s *Substitution) expand(dst, body []byte, loc []int) []byte {
	if s.literal {
		return append(dst, s.template...)
	}
	return s.re.Expand(dst, s.template, body, loc)
}

// newSubstitution builds a substitution for pattern and replacement under
// settings. Regex replacements use ex syntax: & is the whole match, \1..\9
// are groups.
func newSubstitution(re *regexp.Regexp, replacement string, global bool, settings FindSettings) *Substitution {
	if !settings.Regex {
		return &Substitution{re: re, template: []byte(replacement), literal: true, global: global}
	}
	return &Substitution{re: re, template: []byte(exReplacement(replacement)), global: global}
}

// exReplacement converts ex replacement text into regexp.Expand syntax.
func exReplacement(rep string) string {
	var b strings.Builder
	for i := 0; i < len(rep); i++ {
		c := rep[i]
		switch {
		case c == '$':
			b.WriteString("$$")
		case c == '&':
			b.WriteString("${0}")
		case c == '\\' && i+1 < len(rep):
			i++
			n := rep[i]
			switch {
			case n >= '0' && n <= '9':
				b.WriteString("${")
				b.WriteByte(n)
				b.WriteByte('}')
			case n == 'n':
				b.WriteByte('\n')
			case n == 't':
				b.WriteByte('\t')
			case n == '$':
				b.WriteString("$$")
			default:
				b.WriteByte(n)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// splitEOL separates a line from its terminator.
func splitEOL(line []byte) ([]byte, []byte) {
	switch {
	case bytes.HasSuffix(line, []byte("\r\n")):
		return line[:len(line)-2], line[len(line)-2:]
	case bytes.HasSuffix(line, []byte("\n")):
		return line[:len(line)-1], line[len(line)-1:]
	default:
		return line, nil
	}
}

// Patterns compiles find and substitute patterns for editors that keep
// their text in memory, sharing the stream's matching rules.
type Patterns struct {
	cache *patternCache
}

// NewPatterns creates a compiler that keeps size compiled patterns.
func NewPatterns(size int) *Patterns {
	return &Patterns{cache: newPatternCache(size)}
}

// Compile returns the expression for pattern under settings. A pattern
// that does not compile returns a *PatternError.
func (p *Patterns) Compile(pattern string, settings FindSettings) (*regexp.Regexp, error) {
	return p.cache.compile(pattern, settings)
}

// Substitution builds a substitution of pattern by replacement.
func (p *Patterns) Substitution(pattern, replacement string, global bool, settings FindSettings) (*Substitution, error) {
	re, err := p.cache.compile(pattern, settings)
	if err != nil {
		return nil, err
	}
	return newSubstitution(re, replacement, global, settings), nil
}

// Apply substitutes within one line and returns the result and the number
// of replacements.
func (s *Substitution) Apply(line string) (string, int) {
	out, n := s.apply([]byte(line))
	return string(out), n
}
