// Package match associates monitored locations with reservoir telemetry rows
// by fuzzy display-name matching. It is a heuristic, not guaranteed-correct
// entity resolution: the threshold floor makes it prefer returning no match
// over a low-confidence false positive.
package match

import (
	"regexp"
	"strings"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

// DefaultThreshold is the minimum combined similarity for a match.
const DefaultThreshold = 0.45

// substringScore is the fixed similarity when one normalized name contains
// the other.
const substringScore = 0.9

// regionBonus is added when location and record regions match exactly after
// normalization.
const regionBonus = 0.2

// suffixWords are generic reservoir naming suffixes stripped before comparison.
var suffixWords = map[string]bool{
	"dam":       true,
	"reservoir": true,
	"lake":      true,
	"barrage":   true,
	"project":   true,
}

// stationCodeRe matches station-code-like tokens such as "kl07" or "0431b".
var stationCodeRe = regexp.MustCompile(`^[a-z]{0,3}\d+[a-z0-9]*$`)

var punctRe = regexp.MustCompile(`[^a-z0-9 ]+`)

// Matcher resolves the best reservoir record for a location, if any.
type Matcher interface {
	Match(loc domain.MonitoredLocation, candidates []domain.ReservoirRecord) (domain.ReservoirMatch, bool)
}

// NameMatcher implements Matcher with token-set similarity over normalized
// display names.
type NameMatcher struct {
	threshold float64
}

// NewNameMatcher creates a matcher with the given minimum score. A threshold
// of 0 or below falls back to DefaultThreshold.
func NewNameMatcher(threshold float64) *NameMatcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &NameMatcher{threshold: threshold}
}

// Match scores every candidate against the location's name variants and
// returns the best one if it meets the threshold. Ties break by encounter
// order: the first maximum wins. Returning no match is a normal outcome,
// not an error.
func (m *NameMatcher) Match(loc domain.MonitoredLocation, candidates []domain.ReservoirRecord) (domain.ReservoirMatch, bool) {
	variants := nameVariants(loc)
	locRegion := normalizeName(loc.Region)

	best := domain.ReservoirMatch{Score: -1}
	found := false

	for _, cand := range candidates {
		candName := normalizeName(cand.Name)
		if candName == "" {
			continue
		}

		score := 0.0
		for _, v := range variants {
			if s := similarity(v, candName); s > score {
				score = s
			}
		}
		if locRegion != "" && normalizeName(cand.Region) == locRegion {
			score += regionBonus
		}

		if score > best.Score {
			best = domain.ReservoirMatch{Record: cand, Score: score}
			found = true
		}
	}

	if !found || best.Score < m.threshold {
		return domain.ReservoirMatch{}, false
	}
	return best, true
}

// nameVariants returns the normalized primary name plus any alias forms,
// dropping empties.
func nameVariants(loc domain.MonitoredLocation) []string {
	raw := append([]string{loc.Name}, loc.Aliases...)
	variants := make([]string, 0, len(raw))
	for _, r := range raw {
		if n := normalizeName(r); n != "" {
			variants = append(variants, n)
		}
	}
	return variants
}

// normalizeName lower-cases, strips punctuation, generic suffix words, and
// station-code-like tokens, discards tokens of length <= 2, and collapses
// whitespace.
func normalizeName(s string) string {
	s = strings.ToLower(s)
	s = punctRe.ReplaceAllString(s, " ")

	kept := make([]string, 0, 4)
	for _, tok := range strings.Fields(s) {
		if len(tok) <= 2 || suffixWords[tok] || stationCodeRe.MatchString(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// similarity is the maximum of token-set Jaccard similarity and the fixed
// substring score when one normalized name contains the other.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	s := jaccard(strings.Fields(a), strings.Fields(b))
	if strings.Contains(a, b) || strings.Contains(b, a) {
		if substringScore > s {
			return substringScore
		}
	}
	return s
}

func jaccard(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	union := make(map[string]bool, len(a)+len(b))
	for _, t := range a {
		union[t] = true
	}
	inter := 0
	for _, t := range b {
		if set[t] {
			inter++
			// Count each shared token once even if repeated.
			set[t] = false
		}
		union[t] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(inter) / float64(len(union))
}
