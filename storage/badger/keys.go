package badger

import (
	"encoding/binary"

	"github.com/poiesic/larder/core"
)

// Key prefixes for different data types.
// Every prefix ends in ':' so no prefix is a prefix of another.
const (
	ingredientRecordPrefix      = "ingrec:"
	ingredientNoEmbeddingPrefix = "ingnoemb:"
	ingredientNoCategoryPrefix  = "ingnocat:"
	ingredientNoPricePrefix     = "ingnopri:"
	ingredientPriceablePrefix   = "ingpriq:"
	ingredientEmbeddingPrefix   = "ingemb:"
	ingredientCategoryPrefix    = "ingcat:"
	ingredientNamePrefix        = "ingnam:"
	ingredientTokenPrefix       = "ingtok:"
	ingredientIDSeq             = "ingseq"
	recipeRecordPrefix          = "recrec:"
	recipeIDSeq                 = "recseq"
)

// keySeparator terminates variable-length key parts such as category names.
const keySeparator = 0x00

// appendID writes id in BigEndian order so lexicographic sort follows ID order.
func appendID(buf []byte, id core.ID) []byte {
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// makeIDKey generates a key of the form prefix + id.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, 0, len(prefix)+8)
	buf = append(buf, prefix...)
	return appendID(buf, id)
}

// makeIngredientKey generates a key for an ingredient record by ID.
func makeIngredientKey(id core.ID) []byte {
	return makeIDKey(ingredientRecordPrefix, id)
}

// makeRecipeKey generates a key for a recipe record by ID.
func makeRecipeKey(id core.ID) []byte {
	return makeIDKey(recipeRecordPrefix, id)
}

// makeCategoryKey generates a composite key for the category index.
// Format: prefix + category + 0x00 + id
func makeCategoryKey(category string, id core.ID) []byte {
	return appendID(makePartialCategoryKey(category), id)
}

// makePartialCategoryKey generates a partial key for category queries.
func makePartialCategoryKey(category string) []byte {
	buf := make([]byte, 0, len(ingredientCategoryPrefix)+len(category)+9)
	buf = append(buf, ingredientCategoryPrefix...)
	buf = append(buf, category...)
	return append(buf, keySeparator)
}

// makeNameKey generates a composite key for the exact name index.
// Format: prefix + NameKey(name) + id
func makeNameKey(name string, id core.ID) []byte {
	return appendID(makePartialNameKey(name), id)
}

// makePartialNameKey generates a partial key for exact name lookups.
func makePartialNameKey(name string) []byte {
	buf := make([]byte, 0, len(ingredientNamePrefix)+16)
	buf = append(buf, ingredientNamePrefix...)
	return appendID(buf, core.NameKey(name))
}

// makeTokenKey generates a composite key for the name token index.
// Format: prefix + token + 0x00 + id
func makeTokenKey(token string, id core.ID) []byte {
	return appendID(makePartialTokenKey(token), id)
}

// makePartialTokenKey generates a partial key for token lookups.
func makePartialTokenKey(token string) []byte {
	buf := make([]byte, 0, len(ingredientTokenPrefix)+len(token)+9)
	buf = append(buf, ingredientTokenPrefix...)
	buf = append(buf, token...)
	return append(buf, keySeparator)
}
