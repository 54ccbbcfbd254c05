package search

import (
	"strings"

	"github.com/poiesic/larder/core"
)

// verbatimBoost is added to a text match whose name contains the whole query.
const verbatimBoost = 0.3

// containsVerbatim reports whether the normalized name contains the normalized query.
func containsVerbatim(name, query string) bool {
	q := core.NormalizeName(query)
	if q == "" {
		return false
	}
	return strings.Contains(core.NormalizeName(name), q)
}

// containsAllQueryWords checks if all query tokens appear in the name.
func containsAllQueryWords(name, query string) bool {
	queryWords := core.Tokenize(query)
	if len(queryWords) == 0 {
		return false
	}

	nameWords := core.Tokenize(name)
	nameWordSet := make(map[string]bool, len(nameWords))
	for _, word := range nameWords {
		nameWordSet[word] = true
	}

	for _, qWord := range queryWords {
		if !nameWordSet[qWord] {
			return false
		}
	}
	return true
}
