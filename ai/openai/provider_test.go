package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer serves the two OpenAI endpoints the provider uses.
type fakeServer struct {
	mu         sync.Mutex
	dimensions int
	// requestedDimensions is the "dimensions" field of the last embeddings request.
	requestedDimensions int
	reply               string
	requests            []map[string]any
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input      []string `json:"input"`
			Dimensions int      `json:"dimensions"`
		}
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &req))

		f.mu.Lock()
		f.requestedDimensions = req.Dimensions
		f.mu.Unlock()

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, f.dimensions)
			vec[i%f.dimensions] = 1
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": vec}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  "text-embedding-3-small",
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	})

	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &req))

		f.mu.Lock()
		f.requests = append(f.requests, req)
		reply := f.reply
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   req["model"],
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
		})
	})

	return mux
}

func (f *fakeServer) lastRequest() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func setupProvider(t *testing.T, dims int) (*Provider, *fakeServer) {
	t.Helper()
	fake := &fakeServer{dimensions: dims}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	cfg := ai.NewConfig(
		ai.WithHost(server.URL),
		ai.WithAPIKey("test-key"),
		ai.WithEmbeddingDimensions(8),
	)
	provider, err := newProvider(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { provider.Close() })
	return provider, fake
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(&ai.Config{})
	assert.Error(t, err)
}

func TestEmbedder(t *testing.T) {
	provider, _ := setupProvider(t, 8)
	ctx := context.Background()

	vec, err := provider.Embedder().EmbedText(ctx, "Carrot")
	require.NoError(t, err)
	assert.Len(t, vec, 8)

	vecs, err := provider.Embedder().EmbedTexts(ctx, []string{"Carrot", "Milk"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
}

func TestEmbedder_RequestsConfiguredDimensions(t *testing.T) {
	provider, fake := setupProvider(t, 8)

	_, err := provider.Embedder().EmbedText(context.Background(), "Carrot")
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 8, fake.requestedDimensions)
}

func TestEmbedder_EmptyInput(t *testing.T) {
	provider, _ := setupProvider(t, 8)

	_, err := provider.Embedder().EmbedText(context.Background(), "  ")
	assert.ErrorIs(t, err, ai.ErrEmptyInput)

	_, err = provider.Embedder().EmbedTexts(context.Background(), nil)
	assert.ErrorIs(t, err, ai.ErrEmptyInput)
}

func TestEmbedder_DimensionMismatch(t *testing.T) {
	provider, _ := setupProvider(t, 4)

	_, err := provider.Embedder().EmbedText(context.Background(), "Carrot")
	assert.ErrorIs(t, err, ai.ErrDimensionMismatch)
}

func TestCategorizer(t *testing.T) {
	provider, fake := setupProvider(t, 8)
	fake.reply = `{"ingredients":[{"id":"1","category":"Produce","confidence":0.95},{"id":"2","category":"other","confidence":0.2}]}`

	got, err := provider.Categorizer().Categorize(context.Background(), []ai.CategorizeInput{
		{Id: 1, Name: "Carrot"},
		{Id: 2, Name: "Xyzzyplorp"},
	}, ai.DefaultTaxonomy)
	require.NoError(t, err)
	assert.Equal(t, []ai.CategoryAssignment{
		{Id: 1, Category: "Produce", Confidence: 0.95},
		{Id: 2, Category: "other", Confidence: 0.2},
	}, got)

	req := fake.lastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "gpt-5-nano", req["model"])
	encoded, _ := json.Marshal(req["messages"])
	assert.Contains(t, string(encoded), "Xyzzyplorp")
	assert.Contains(t, string(encoded), "Plant-Based Proteins")
}

func TestCategorizer_SchemaFailure(t *testing.T) {
	provider, fake := setupProvider(t, 8)
	fake.reply = `Sure! Carrot is a vegetable.`

	_, err := provider.Categorizer().Categorize(context.Background(), []ai.CategorizeInput{{Id: 1, Name: "Carrot"}}, ai.DefaultTaxonomy)
	assert.ErrorIs(t, err, ai.ErrSchemaValidation)
}

func TestPriceEstimator(t *testing.T) {
	provider, fake := setupProvider(t, 8)
	fake.reply = `{"id":"5","price":0.4,"quantity":100,"unit":"g"}`

	got, err := provider.PriceEstimator().EstimatePrice(context.Background(),
		ai.PriceTarget{Id: 5, Name: "Carrot"},
		[]ai.PricedNeighbor{{Name: "Parsnip", Price: 0.6, Quantity: 100, Unit: core.UnitGrams}},
	)
	require.NoError(t, err)
	assert.Equal(t, &core.PriceEstimate{Price: 0.4, Quantity: 100, Unit: core.UnitGrams}, got)

	req := fake.lastRequest()
	assert.Equal(t, "gpt-5-mini", req["model"])
	encoded, _ := json.Marshal(req["messages"])
	assert.True(t, strings.Contains(string(encoded), "Ontario, Canada"))
	assert.Contains(t, string(encoded), "Parsnip")
}

func TestPriceEstimator_WrongID(t *testing.T) {
	provider, fake := setupProvider(t, 8)
	fake.reply = `{"id":"6","price":0.4,"quantity":100,"unit":"g"}`

	_, err := provider.PriceEstimator().EstimatePrice(context.Background(), ai.PriceTarget{Id: 5, Name: "Carrot"}, nil)
	assert.ErrorIs(t, err, ai.ErrSchemaValidation)
}
