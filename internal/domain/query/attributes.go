// Package query models the user's natural-language query: deterministic
// text normalization and the structured attribute set extracted from it.
package query

import "strings"

// CategoryPerfume is the only catalog category served by this system.
const CategoryPerfume = "perfume"

// Closed vocabularies for the recognized attribute fields. Values outside
// these sets are treated as not confidently extracted.
var (
	Genders         = []string{"male", "female", "unisex"}
	LongevityLevels = []string{"very weak", "weak", "moderate", "long lasting", "eternal"}
	SillageLevels   = []string{"intimate", "moderate", "strong", "very strong", "enormous"}
	Seasons         = []string{"spring", "summer", "autumn", "winter"}
	Times           = []string{"day", "night"}
)

// MaxSeasons bounds the suitable_season list.
const MaxSeasons = 2

// Attributes is the structured attribute set extracted from one query.
// A nil pointer or nil slice is the explicit absent sentinel: the field
// is recognized but was not confidently extracted. Immutable after
// extraction.
type Attributes struct {
	Category    string   `json:"category"`
	Gender      *string  `json:"gender"`
	Longevity   *string  `json:"longevity"`
	Sillage     *string  `json:"sillage"`
	Seasons     []string `json:"suitable_season"`
	Times       []string `json:"suitable_time"`
	MainAccords []string `json:"main_accords"`
}

// Sanitize lowercases all values, discards anything outside the closed
// vocabularies, truncates the season list, and forces the category.
// It never fails: invalid values simply become absent.
func (a *Attributes) Sanitize() {
	a.Category = CategoryPerfume
	a.Gender = sanitizeScalar(a.Gender, Genders)
	a.Longevity = sanitizeScalar(a.Longevity, LongevityLevels)
	a.Sillage = sanitizeScalar(a.Sillage, SillageLevels)
	a.Seasons = sanitizeList(a.Seasons, Seasons, MaxSeasons)
	a.Times = sanitizeList(a.Times, Times, len(Times))
	a.MainAccords = sanitizeAccords(a.MainAccords)
}

func sanitizeScalar(v *string, vocab []string) *string {
	if v == nil {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(*v))
	if !inVocab(lowered, vocab) {
		return nil
	}
	return &lowered
}

func sanitizeList(values, vocab []string, limit int) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range values {
		lowered := strings.ToLower(strings.TrimSpace(v))
		if !inVocab(lowered, vocab) {
			continue
		}
		if _, dup := seen[lowered]; dup {
			continue
		}
		seen[lowered] = struct{}{}
		out = append(out, lowered)
		if len(out) == limit {
			break
		}
	}
	return out
}

// sanitizeAccords keeps accords open-vocabulary but normalized: the
// catalog stores free-text accord names, so anything non-empty passes.
func sanitizeAccords(values []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range values {
		lowered := strings.ToLower(strings.TrimSpace(v))
		if lowered == "" {
			continue
		}
		if _, dup := seen[lowered]; dup {
			continue
		}
		seen[lowered] = struct{}{}
		out = append(out, lowered)
	}
	return out
}

func inVocab(v string, vocab []string) bool {
	for _, entry := range vocab {
		if v == entry {
			return true
		}
	}
	return false
}
