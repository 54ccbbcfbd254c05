package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
)

const categorizationResponseSchema = `{
  "type": "object",
  "properties": {
    "ingredients": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "category": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1}
        },
        "required": ["id", "category", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["ingredients"],
  "additionalProperties": false
}`

const categorizationPromptTemplate = `Role and Objective:
Categorize the provided ingredient names into one of the predefined categories and estimate the confidence of each categorization.

Instructions:
- Use only these categories: %s.
- For each input ingredient, return the most appropriate category and a confidence between 0.0 (least confident) and 1.0 (most confident).
- If an ingredient is ambiguous or a compound product, choose the category of its main component and lower the confidence to reflect the uncertainty.
- If the ingredient cannot be identified, use "other" as the category with a low confidence.
- Copy each ingredient id exactly as given.

Output ONLY valid JSON matching this schema, with no preamble or explanation:

%s`

const estimationResponseSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "price": {"type": "number", "minimum": 0},
    "quantity": {"type": "number", "exclusiveMinimum": 0},
    "unit": {"type": "string", "enum": ["g", "ml", "whole"]}
  },
  "required": ["id", "price", "quantity", "unit"],
  "additionalProperties": false
}`

const estimationPromptTemplate = `Role and Objective:
You are a price estimator for grocery ingredients.
You will be given one ingredient and similar ingredients whose prices are known.
Estimate the price of the ingredient from the similar ingredients and return its id, price, quantity and unit.

Notes:
- For the unit only use g, ml, or whole.
- Keep the quantity at 100 for g and ml and at 1 for whole.
- Prices are for the %s region.

Output ONLY valid JSON matching this schema, with no preamble or explanation:

%s`

type promptIngredient struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type promptNeighbor struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// buildCategorizationPrompts returns the system and user prompts for one batch.
func buildCategorizationPrompts(inputs []ai.CategorizeInput, taxonomy []string) (string, string, error) {
	categories, err := marshalPlain(taxonomy)
	if err != nil {
		return "", "", err
	}

	items := make([]promptIngredient, len(inputs))
	for i, in := range inputs {
		items[i] = promptIngredient{Id: formatID(in.Id), Name: sanitizeName(in.Name)}
	}
	ingredients, err := marshalPlain(items)
	if err != nil {
		return "", "", err
	}

	system := fmt.Sprintf(categorizationPromptTemplate, categories, categorizationResponseSchema)
	user := fmt.Sprintf("The ingredients to categorize are:\n%s\nReturn the categorization for each ingredient.", ingredients)
	return system, user, nil
}

// buildEstimationPrompts returns the system and user prompts for one target.
func buildEstimationPrompts(target ai.PriceTarget, neighbors []ai.PricedNeighbor, region string) (string, string, error) {
	items := make([]promptNeighbor, len(neighbors))
	for i, n := range neighbors {
		items[i] = promptNeighbor{
			Name:     sanitizeName(n.Name),
			Price:    n.Price,
			Quantity: n.Quantity,
			Unit:     string(n.Unit),
		}
	}
	similar, err := marshalPlain(items)
	if err != nil {
		return "", "", err
	}

	system := fmt.Sprintf(estimationPromptTemplate, region, estimationResponseSchema)
	user := fmt.Sprintf("The ingredient to estimate the price for is:\nIngredientId:%s, Name:%s.\nThe similar ingredients are:\n%s",
		formatID(target.Id), sanitizeName(target.Name), similar)
	return system, user, nil
}

func formatID(id core.ID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// marshalPlain encodes v as compact JSON without escaping &, < and >.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}
