package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"
)

const (
	fuzzyTokenRatio    = 0.8
	fuzzyMinOverlap    = 0.5
	defaultSemanticMin = 0.75
)

// CategoryModel resolves a free-text category label to a profile. It never
// fails: unknown labels resolve to the generic profile.
type CategoryModel interface {
	Resolve(ctx context.Context, label string) CategoryProfile
}

// CategoryLookup finds the catalog category semantically closest to a label.
type CategoryLookup interface {
	NearestCategory(ctx context.Context, label string) (string, float32, error)
}

// CatalogSpec is the raw catalog content before validation.
type CatalogSpec struct {
	Generic    CategoryProfile   `yaml:"generic" validate:"-"`
	Categories []CategoryProfile `yaml:"categories" validate:"dive"`
}

type catalogEntry struct {
	profile CategoryProfile
	names   [][]string
}

// Catalog is an immutable set of category profiles. It is safe for concurrent
// use without locking.
type Catalog struct {
	entries  []catalogEntry
	byName   map[string]int
	generic  CategoryProfile
	lookup   CategoryLookup
	minScore float32
}

type CatalogOption func(*Catalog)

// WithCategoryLookup enables semantic resolution for labels that no alias
// matches. Results scoring below minScore are ignored.
func WithCategoryLookup(lookup CategoryLookup, minScore float32) CatalogOption {
	return func(c *Catalog) {
		c.lookup = lookup
		if minScore > 0 {
			c.minScore = minScore
		}
	}
}

// DefaultGenericProfile is used when a catalog defines no generic profile.
func DefaultGenericProfile() CategoryProfile {
	return CategoryProfile{
		Name: "General",
		Keywords: []Keyword{
			{Term: "communication", Weight: 1, Synonyms: []string{"communicator"}, Related: []string{"presentation", "written"}},
			{Term: "problem solving", Weight: 1, Synonyms: []string{"problem-solving", "troubleshooting"}, Related: []string{"analytical"}},
			{Term: "collaboration", Weight: 1, Synonyms: []string{"teamwork", "cross-functional"}, Related: []string{"team"}},
			{Term: "leadership", Weight: 1, Synonyms: []string{"led", "mentored"}, Related: []string{"mentor", "lead"}},
			{Term: "time management", Weight: 1, Synonyms: []string{"prioritization", "deadlines"}, Related: []string{"organized", "schedule"}},
		},
		Generic: true,
	}
}

// NewCatalog validates spec and builds the catalog. Keywords without a weight
// get weight 1.
func NewCatalog(spec CatalogSpec, opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		byName:   make(map[string]int),
		minScore: defaultSemanticMin,
	}

	for i, profile := range spec.Categories {
		profile, err := prepareProfile(profile)
		if err != nil {
			return nil, fmt.Errorf("category %d: %w", i, err)
		}
		profile.Generic = false

		entry := catalogEntry{profile: profile}
		for _, name := range append([]string{profile.Name}, profile.Aliases...) {
			tokens := labelTokens(name)
			if len(tokens) == 0 {
				continue
			}
			key := strings.Join(tokens, " ")
			if owner, exists := c.byName[key]; exists && owner != len(c.entries) {
				return nil, fmt.Errorf("category %q: name %q already used by %q",
					profile.Name, name, c.entries[owner].profile.Name)
			}
			c.byName[key] = len(c.entries)
			entry.names = append(entry.names, tokens)
		}
		c.entries = append(c.entries, entry)
	}

	generic := spec.Generic
	if len(generic.Keywords) == 0 {
		generic = DefaultGenericProfile()
	}
	if generic.Name == "" {
		generic.Name = "General"
	}
	generic, err := prepareProfile(generic)
	if err != nil {
		return nil, fmt.Errorf("generic profile: %w", err)
	}
	generic.Generic = true
	c.generic = generic

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func prepareProfile(profile CategoryProfile) (CategoryProfile, error) {
	profile = profile.clone()
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return profile, errors.New("name is required")
	}
	if len(profile.Keywords) == 0 {
		return profile, fmt.Errorf("category %q has no keywords", profile.Name)
	}

	terms := make(map[string]bool, len(profile.Keywords))
	for i := range profile.Keywords {
		kw := &profile.Keywords[i]
		kw.Term = strings.TrimSpace(kw.Term)
		if kw.Term == "" {
			return profile, fmt.Errorf("category %q: keyword %d has no term", profile.Name, i)
		}
		key := strings.ToLower(kw.Term)
		if terms[key] {
			return profile, fmt.Errorf("category %q: duplicate keyword %q", profile.Name, kw.Term)
		}
		terms[key] = true
		if kw.Weight < 0 {
			return profile, fmt.Errorf("category %q: keyword %q has negative weight", profile.Name, kw.Term)
		}
		if kw.Weight == 0 {
			kw.Weight = 1
		}
	}
	return profile, nil
}

// Resolve implements CategoryModel. Labels are tried against names and
// aliases exactly, then as contained phrases, then fuzzily, then through the
// semantic lookup when one is configured.
func (c *Catalog) Resolve(ctx context.Context, label string) CategoryProfile {
	tokens := labelTokens(label)
	if len(tokens) == 0 {
		return c.generic.clone()
	}

	if idx, ok := c.byName[strings.Join(tokens, " ")]; ok {
		return c.entries[idx].profile.clone()
	}

	if idx, ok := c.containedMatch(tokens); ok {
		return c.entries[idx].profile.clone()
	}

	if idx, ok := c.fuzzyMatch(tokens); ok {
		return c.entries[idx].profile.clone()
	}

	if profile, ok := c.semanticMatch(ctx, label); ok {
		return profile
	}

	log.Printf("⚠️ No category matched %q, using %s profile", label, c.generic.Name)
	return c.generic.clone()
}

func (c *Catalog) containedMatch(label []string) (int, bool) {
	best, bestLen := -1, 0
	for i, entry := range c.entries {
		for _, name := range entry.names {
			if !containsPhrase(label, name) && !containsPhrase(name, label) {
				continue
			}
			length := utf8.RuneCountInString(strings.Join(name, " "))
			if length > bestLen {
				best, bestLen = i, length
			}
		}
	}
	return best, best >= 0
}

func (c *Catalog) fuzzyMatch(label []string) (int, bool) {
	best, bestScore := -1, 0.0
	for i, entry := range c.entries {
		for _, name := range entry.names {
			score := fuzzyOverlap(label, name)
			if score >= fuzzyMinOverlap && score > bestScore {
				best, bestScore = i, score
			}
		}
	}
	return best, best >= 0
}

func (c *Catalog) semanticMatch(ctx context.Context, label string) (CategoryProfile, bool) {
	if c.lookup == nil {
		return CategoryProfile{}, false
	}

	name, score, err := c.lookup.NearestCategory(ctx, label)
	if err != nil {
		log.Printf("⚠️ Semantic category lookup failed for %q: %v", label, err)
		return CategoryProfile{}, false
	}
	if score < c.minScore {
		return CategoryProfile{}, false
	}

	profile, ok := c.Lookup(name)
	if ok {
		log.Printf("🔍 Resolved %q to %s by similarity %.2f", label, profile.Name, score)
	}
	return profile, ok
}

// Lookup returns the profile whose name or alias equals name.
func (c *Catalog) Lookup(name string) (CategoryProfile, bool) {
	idx, ok := c.byName[strings.Join(labelTokens(name), " ")]
	if !ok {
		return CategoryProfile{}, false
	}
	return c.entries[idx].profile.clone(), true
}

// Profiles returns copies of all non-generic profiles in catalog order.
func (c *Catalog) Profiles() []CategoryProfile {
	out := make([]CategoryProfile, 0, len(c.entries))
	for _, entry := range c.entries {
		out = append(out, entry.profile.clone())
	}
	return out
}

func (c *Catalog) Generic() CategoryProfile {
	return c.generic.clone()
}

func labelTokens(label string) []string {
	return compactPhrase(strings.ToLower(strings.TrimSpace(label)))
}

// containsPhrase reports whether needle occurs as a contiguous run in haystack.
func containsPhrase(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// fuzzyOverlap is a Jaccard overlap where two tokens count as equal when
// their edit-distance ratio is at least fuzzyTokenRatio.
func fuzzyOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	used := make([]bool, len(b))
	shared := 0
	for _, x := range a {
		for j, y := range b {
			if !used[j] && similarity(x, y) >= fuzzyTokenRatio {
				used[j] = true
				shared++
				break
			}
		}
	}

	return float64(shared) / float64(len(a)+len(b)-shared)
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
