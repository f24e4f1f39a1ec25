package ui

import (
	"sort"
	"strings"
)

const (
	// DefaultMaxDistance is the default maximum edit distance to consider for fuzzy matching
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions is the default maximum number of suggestions to return
	DefaultMaxSuggestions = 3
)

// FuzzyMatchOptions configures fuzzy matching behavior
type FuzzyMatchOptions struct {
	MaxDistance    int  // Maximum edit distance to consider (default: 3)
	MaxSuggestions int  // Maximum number of suggestions to return (default: 3)
	CaseSensitive  bool // Whether matching is case-sensitive (default: false)
}

// Candidate is a name offered as a suggestion together with the alternative
// spellings it may be matched by, e.g. a source-convention bone name and
// its canonical form
type Candidate struct {
	Name    string
	Aliases []string
}

type suggestion struct {
	value    string
	distance int
}

// FindSimilar finds candidates within edit distance of target. Closer
// candidates come first; ties keep candidate order.
//
// Example:
//
//	FindSimilar("UperArm_L", []string{"UpperArm_L", "LowerArm_L", "Hips"}, nil)
//	// Returns: ["UpperArm_L", "LowerArm_L"]
func FindSimilar(target string, candidates []string, opts *FuzzyMatchOptions) []string {
	list := make([]Candidate, len(candidates))
	for i, c := range candidates {
		list[i] = Candidate{Name: c}
	}
	return FindSimilarCandidates(target, list, opts)
}

// FindSimilarCandidates is FindSimilar over candidates with aliases. A
// candidate scores the distance of its closest spelling.
func FindSimilarCandidates(target string, candidates []Candidate, opts *FuzzyMatchOptions) []string {
	maxDistance, maxSuggestions, caseSensitive := DefaultMaxDistance, DefaultMaxSuggestions, false
	if opts != nil {
		if opts.MaxDistance > 0 {
			maxDistance = opts.MaxDistance
		}
		if opts.MaxSuggestions > 0 {
			maxSuggestions = opts.MaxSuggestions
		}
		caseSensitive = opts.CaseSensitive
	}

	fold := func(s string) string {
		if caseSensitive {
			return s
		}
		return strings.ToLower(s)
	}
	target = fold(target)

	var found []suggestion
	for _, c := range candidates {
		best := LevenshteinDistance(target, fold(c.Name))
		for _, alias := range c.Aliases {
			if d := LevenshteinDistance(target, fold(alias)); d < best {
				best = d
			}
		}
		if best <= maxDistance {
			found = append(found, suggestion{value: c.Name, distance: best})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].distance < found[j].distance
	})

	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(found) && i < maxSuggestions; i++ {
		result = append(result, found[i].value)
	}
	return result
}

// LevenshteinDistance counts the single-rune insertions, deletions and
// substitutions needed to turn s1 into s2
func LevenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// FindBestMatch returns the single best match for a target string, or ""
func FindBestMatch(target string, candidates []string, opts *FuzzyMatchOptions) string {
	matches := FindSimilar(target, candidates, opts)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}
