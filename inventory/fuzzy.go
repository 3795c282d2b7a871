/*
fuzzy.go - Four-tier ingredient name resolution

PURPOSE:
  Ingredient names arrive from free-form chat text and rarely match the
  stocked name exactly ("딸기" vs "설향딸기"). Resolution walks four
  tiers and returns from the FIRST tier that yields any match:

    1. exact match
    2. case-insensitive exact match
    3. substring containment, either direction
    4. containment after stripping whitespace/hyphen/underscore and
       lowercasing

  Within the containment tiers several candidates can match; the one
  with the smallest edit distance to the query wins. The distance only
  ranks candidates that already contain (or are contained in) the query,
  so a closer non-containing name can never jump the queue.
*/
package inventory

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/warp/life-engine/state"
)

// FindIngredientFuzzy resolves a free-text name to an inventory item.
// Returns nil when no tier matches.
func (e *Engine) FindIngredientFuzzy(name string) *state.Item {
	if name == "" {
		return nil
	}

	// Tier 1: exact.
	for i := range e.s.Items {
		if e.s.Items[i].Name == name {
			return &e.s.Items[i]
		}
	}

	// Tier 2: case-insensitive exact.
	for i := range e.s.Items {
		if strings.EqualFold(e.s.Items[i].Name, name) {
			return &e.s.Items[i]
		}
	}

	// Tier 3: substring containment, either direction.
	if item := e.closestContaining(name, func(candidate string) bool {
		return strings.Contains(candidate, name) || strings.Contains(name, candidate)
	}); item != nil {
		return item
	}

	// Tier 4: containment after normalization.
	norm := normalizeName(name)
	return e.closestContaining(name, func(candidate string) bool {
		c := normalizeName(candidate)
		return strings.Contains(c, norm) || strings.Contains(norm, c)
	})
}

// closestContaining returns the matching item with the smallest edit
// distance to the query, or nil when nothing matches.
func (e *Engine) closestContaining(name string, matches func(string) bool) *state.Item {
	var best *state.Item
	bestDist := -1
	for i := range e.s.Items {
		if !matches(e.s.Items[i].Name) {
			continue
		}
		dist := levenshtein.ComputeDistance(name, e.s.Items[i].Name)
		if best == nil || dist < bestDist {
			best = &e.s.Items[i]
			bestDist = dist
		}
	}
	return best
}

var nameStripper = strings.NewReplacer(" ", "", "\t", "", "-", "", "_", "")

func normalizeName(s string) string {
	return strings.ToLower(nameStripper.Replace(s))
}
