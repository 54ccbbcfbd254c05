package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
)

const (
	stageCategorize = "categorize"
	stageEstimate   = "estimate"
)

// wireID accepts an ingredient id encoded as a JSON string or number.
type wireID core.ID

func (w *wireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", data)
	}
	*w = wireID(v)
	return nil
}

type categorizationItem struct {
	Id         *wireID  `json:"id"`
	Category   *string  `json:"category"`
	Confidence *float64 `json:"confidence"`
}

type categorizationResponse struct {
	Ingredients []categorizationItem `json:"ingredients"`
}

type estimationResponse struct {
	Id       *wireID  `json:"id"`
	Price    *float64 `json:"price"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
}

// parseCategorization decodes a categorization response. Any structural
// problem fails the whole response; label and confidence floor checks are
// left to the caller.
func parseCategorization(raw string) ([]ai.CategoryAssignment, error) {
	text, err := prepare(raw)
	if err != nil {
		return nil, ai.NewSchemaError(stageCategorize, raw, err)
	}

	var resp categorizationResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, ai.NewSchemaError(stageCategorize, raw, err)
	}
	if len(resp.Ingredients) == 0 {
		return nil, ai.NewSchemaError(stageCategorize, raw, errors.New("no ingredients in response"))
	}

	assignments := make([]ai.CategoryAssignment, 0, len(resp.Ingredients))
	for i, item := range resp.Ingredients {
		switch {
		case item.Id == nil:
			return nil, ai.NewSchemaError(stageCategorize, raw, fmt.Errorf("item %d: missing id", i))
		case item.Category == nil || *item.Category == "":
			return nil, ai.NewSchemaError(stageCategorize, raw, fmt.Errorf("item %d: missing category", i))
		case item.Confidence == nil:
			return nil, ai.NewSchemaError(stageCategorize, raw, fmt.Errorf("item %d: missing confidence", i))
		case math.IsNaN(*item.Confidence) || *item.Confidence < 0 || *item.Confidence > 1:
			return nil, ai.NewSchemaError(stageCategorize, raw, fmt.Errorf("item %d: confidence %v outside [0,1]", i, *item.Confidence))
		}
		assignments = append(assignments, ai.CategoryAssignment{
			Id:         core.ID(*item.Id),
			Category:   *item.Category,
			Confidence: *item.Confidence,
		})
	}
	return assignments, nil
}

// parseEstimate decodes a price estimation response for target.
func parseEstimate(raw string, target core.ID) (*core.PriceEstimate, error) {
	text, err := prepare(raw)
	if err != nil {
		return nil, ai.NewSchemaError(stageEstimate, raw, err)
	}

	var resp estimationResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, ai.NewSchemaError(stageEstimate, raw, err)
	}

	switch {
	case resp.Id == nil:
		return nil, ai.NewSchemaError(stageEstimate, raw, errors.New("missing id"))
	case core.ID(*resp.Id) != target:
		return nil, ai.NewSchemaError(stageEstimate, raw, fmt.Errorf("id %d does not match ingredient %d", *resp.Id, target))
	case resp.Price == nil:
		return nil, ai.NewSchemaError(stageEstimate, raw, errors.New("missing price"))
	case resp.Quantity == nil:
		return nil, ai.NewSchemaError(stageEstimate, raw, errors.New("missing quantity"))
	case resp.Unit == nil:
		return nil, ai.NewSchemaError(stageEstimate, raw, errors.New("missing unit"))
	}

	estimate := &core.PriceEstimate{
		Price:    *resp.Price,
		Quantity: *resp.Quantity,
		Unit:     core.Unit(*resp.Unit),
	}
	if err := core.ValidatePriceEstimate(estimate); err != nil {
		return nil, ai.NewSchemaError(stageEstimate, raw, err)
	}
	return estimate, nil
}

// prepare strips fences and repairs common slips. Blank output is an error.
func prepare(raw string) (string, error) {
	text := cleanResponse(raw)
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return repairJSON(text), nil
}
