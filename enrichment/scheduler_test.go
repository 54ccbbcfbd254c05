package enrichment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *Config {
	config := DefaultConfig()
	config.EmbedInterval = 10 * time.Millisecond
	config.CategorizeInterval = 10 * time.Millisecond
	config.PriceInterval = 10 * time.Millisecond
	config.PassTimeout = time.Second
	return config
}

type passLog struct {
	mu     sync.Mutex
	counts map[Pass]int
}

func (l *passLog) hook(pass Pass, _ *PassResult, _ error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[pass]++
}

func (l *passLog) count(pass Pass) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[pass]
}

func TestNewScheduler(t *testing.T) {
	o, _, _ := setupOrchestrator(t)

	_, err := NewScheduler(nil, ai.DefaultTaxonomy)
	assert.ErrorIs(t, err, ErrOrchestratorRequired)

	_, err = NewScheduler(o, nil)
	assert.ErrorIs(t, err, ErrEmptyTaxonomy)

	bad := fastConfig()
	bad.PassTimeout = 0
	_, err = NewScheduler(o, ai.DefaultTaxonomy, WithSchedulerConfig(bad))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	s, err := NewScheduler(o, ai.DefaultTaxonomy)
	require.NoError(t, err)
	s.Release()
}

func TestScheduler_EnrichesThroughAllPasses(t *testing.T) {
	o, repo, provider := setupOrchestrator(t, WithConfig(fastConfig()))
	provider.GetMockCategorizer().WithLabel("Carrot", "Produce", 0.9)

	added, err := repo.AddIngredients(context.Background(),
		&core.Ingredient{Name: "Carrot", IsPriceEstimated: true},
		priced("Parsnip", "Produce", 0.40, 100, core.UnitGrams, nil),
	)
	require.NoError(t, err)

	s, err := NewScheduler(o, ai.DefaultTaxonomy, WithSchedulerLogger(quietLogger))
	require.NoError(t, err)
	defer s.Release()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool {
		in, err := repo.GetIngredient(context.Background(), added[0].Id)
		return err == nil && !in.NeedsEmbedding() && in.Category == "Produce" && in.HasPriceTriple()
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_DisabledPass(t *testing.T) {
	config := fastConfig()
	config.PriceInterval = 0
	config.RunOnStart = true
	o, _, _ := setupOrchestrator(t, WithConfig(config))

	log := &passLog{counts: make(map[Pass]int)}
	s, err := NewScheduler(o, ai.DefaultTaxonomy, WithSchedulerLogger(quietLogger), WithPassHook(log.hook))
	require.NoError(t, err)
	defer s.Release()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return log.count(PassEmbed) >= 2 && log.count(PassCategorize) >= 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, log.count(PassPrice))
}

func TestScheduler_WaitsForInflightPass(t *testing.T) {
	config := fastConfig()
	config.RunOnStart = true
	config.CategorizeInterval = 0
	config.PriceInterval = 0
	o, repo, provider := setupOrchestrator(t, WithConfig(config))
	addNamed(t, repo, "Carrot")

	started := make(chan struct{})
	var once sync.Once
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		once.Do(func() { close(started) })
		time.Sleep(100 * time.Millisecond)
		return []float32{1, 0, 0}, nil
	}

	log := &passLog{counts: make(map[Pass]int)}
	s, err := NewScheduler(o, ai.DefaultTaxonomy, WithSchedulerLogger(quietLogger), WithPassHook(log.hook))
	require.NoError(t, err)
	defer s.Release()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	<-started
	cancel()
	require.NoError(t, <-done)

	// Run returned only after the slow firing reported back.
	assert.GreaterOrEqual(t, log.count(PassEmbed), 1)
}
