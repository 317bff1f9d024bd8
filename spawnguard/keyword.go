package spawnguard

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/scylladb/go-set/strset"

	"github.com/anchore/spawnguard/internal/log"
)

// Keyword is a single case-insensitive substring pattern.
type Keyword struct {
	// Value is the normalized (trimmed, lower cased) keyword
	Value string
	glob  glob.Glob
}

// NewKeyword builds a keyword from raw configuration input. The second return value is false
// for blank input, which never matches anything and is dropped from rule sets.
func NewKeyword(raw string) (Keyword, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return Keyword{}, false
	}
	k := Keyword{Value: value}
	g, err := glob.Compile("*" + glob.QuoteMeta(value) + "*")
	if err != nil {
		// lower casing turns invalid utf-8 into U+FFFD, which the glob lexer refuses;
		// such keywords fall back to plain containment
		log.WithFields("keyword", value, "error", err).Trace("keyword is not compilable as a glob")
		return k, true
	}
	k.glob = g
	return k, true
}

// Match reports whether the keyword is contained in the given lower cased field.
func (k Keyword) Match(field string) bool {
	if k.glob == nil {
		return k.Value != "" && strings.Contains(field, k.Value)
	}
	return k.glob.Match(field)
}

func (k Keyword) String() string {
	return k.Value
}

// Keywords is an ordered list of keywords
type Keywords []Keyword

// NewKeywords normalizes the raw list: blank entries are ignored and duplicates (after
// normalization) keep their first position.
func NewKeywords(raw ...string) Keywords {
	seen := strset.New()
	keywords := make(Keywords, 0, len(raw))
	for _, r := range raw {
		k, ok := NewKeyword(r)
		if !ok || seen.Has(k.Value) {
			continue
		}
		seen.Add(k.Value)
		keywords = append(keywords, k)
	}
	return keywords
}

// IsEmpty returns true if there are no usable keywords
func (ks Keywords) IsEmpty() bool {
	return len(ks) == 0
}

// Strings returns the normalized keyword values
func (ks Keywords) Strings() []string {
	values := make([]string, 0, len(ks))
	for _, k := range ks {
		values = append(values, k.Value)
	}
	return values
}

// FirstMatch returns the first keyword contained in any of the given lower cased fields.
func (ks Keywords) FirstMatch(fields ...string) (Keyword, bool) {
	for _, k := range ks {
		for _, f := range fields {
			if k.Match(f) {
				return k, true
			}
		}
	}
	return Keyword{}, false
}
