package core

import "strings"

// stopWords are skipped when tokenizing names and queries.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "and": true, "in": true,
	"for": true, "with": true, "or": true, "to": true, "from": true, "by": true,
}

// Tokenize lowercases text, trims punctuation from each word and drops stop
// words and duplicates. Order of first appearance is kept.
func Tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}&/"))
		if cleaned == "" || stopWords[cleaned] || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		tokens = append(tokens, cleaned)
	}

	return tokens
}
