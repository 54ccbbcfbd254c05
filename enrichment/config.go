package enrichment

import (
	"fmt"
	"runtime"
	"time"
)

// Config holds batch sizes, similarity settings and schedule for enrichment.
type Config struct {
	// BatchSize is the maximum number of records selected per pass.
	BatchSize int `toml:"batch_size"`

	// SimilarLimit is how many nearest neighbours the price pass requests.
	SimilarLimit int `toml:"similar_limit"`

	// MinSimilarity is the score a neighbour must exceed to be used as pricing context.
	MinSimilarity float32 `toml:"min_similarity"`

	// CategoryContextLimit caps same-category neighbours per price estimate. 0 means no cap.
	CategoryContextLimit int `toml:"category_context_limit"`

	// EmbedInterval, CategorizeInterval and PriceInterval space scheduler firings.
	// A zero interval disables that pass.
	EmbedInterval      time.Duration `toml:"embed_interval"`
	CategorizeInterval time.Duration `toml:"categorize_interval"`
	PriceInterval      time.Duration `toml:"price_interval"`

	// PassTimeout bounds a single scheduled pass.
	PassTimeout time.Duration `toml:"pass_timeout"`

	// PoolSize is the number of passes that may run at once under the scheduler.
	PoolSize int `toml:"pool_size"`

	// RunOnStart fires every enabled pass once when the scheduler starts.
	RunOnStart bool `toml:"run_on_start"`
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() *Config {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 3 {
		poolSize = 3
	}
	return &Config{
		BatchSize:            20,
		SimilarLimit:         10,
		MinSimilarity:        0.45,
		CategoryContextLimit: 50,
		EmbedInterval:        20 * time.Second,
		CategorizeInterval:   20 * time.Second,
		PriceInterval:        20 * time.Second,
		PassTimeout:          2 * time.Minute,
		PoolSize:             poolSize,
	}
}

// Validate checks that every setting is in range.
func (c *Config) Validate() error {
	switch {
	case c.BatchSize < 1:
		return fmt.Errorf("%w: BatchSize must be at least 1", ErrInvalidConfig)
	case c.SimilarLimit < 1:
		return fmt.Errorf("%w: SimilarLimit must be at least 1", ErrInvalidConfig)
	case c.MinSimilarity < -1 || c.MinSimilarity >= 1:
		return fmt.Errorf("%w: MinSimilarity must be in [-1, 1)", ErrInvalidConfig)
	case c.CategoryContextLimit < 0:
		return fmt.Errorf("%w: CategoryContextLimit cannot be negative", ErrInvalidConfig)
	case c.EmbedInterval < 0 || c.CategorizeInterval < 0 || c.PriceInterval < 0:
		return fmt.Errorf("%w: intervals cannot be negative", ErrInvalidConfig)
	case c.PassTimeout <= 0:
		return fmt.Errorf("%w: PassTimeout must be positive", ErrInvalidConfig)
	case c.PoolSize < 1:
		return fmt.Errorf("%w: PoolSize must be at least 1", ErrInvalidConfig)
	}
	return nil
}
