// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
)

// Scheduler fires each pass on its own interval. Firings run on a worker
// pool, so passes overlap in time; a firing that finds the pool full is
// dropped and the next tick tries again.
type Scheduler struct {
	orchestrator *Orchestrator
	taxonomy     []string
	config       Config
	pool         *ants.Pool
	logger       *slog.Logger
	inflight     sync.WaitGroup

	// onFinish is called after every firing; tests use it to observe passes.
	onFinish func(pass Pass, result *PassResult, err error)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler) error

// WithSchedulerLogger sets a custom logger.
// Default is slog.Default().
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithSchedulerConfig overrides the intervals, timeout and pool size taken
// from the orchestrator's configuration.
func WithSchedulerConfig(config *Config) SchedulerOption {
	return func(s *Scheduler) error {
		if config == nil {
			return nil
		}
		if err := config.Validate(); err != nil {
			return err
		}
		s.config = *config
		return nil
	}
}

// WithPassHook registers fn to be called after every firing completes.
func WithPassHook(fn func(pass Pass, result *PassResult, err error)) SchedulerOption {
	return func(s *Scheduler) error {
		s.onFinish = fn
		return nil
	}
}

// NewScheduler creates a scheduler driving o. taxonomy is passed to every
// categorize firing.
func NewScheduler(o *Orchestrator, taxonomy []string, opts ...SchedulerOption) (*Scheduler, error) {
	if o == nil {
		return nil, ErrOrchestratorRequired
	}
	if len(taxonomy) == 0 {
		return nil, ErrEmptyTaxonomy
	}

	s := &Scheduler{
		orchestrator: o,
		taxonomy:     append([]string(nil), taxonomy...),
		config:       o.Config(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "scheduler")

	pool, err := ants.NewPool(s.config.PoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	s.pool = pool
	return s, nil
}

// Run starts a ticker per enabled pass and blocks until ctx is cancelled.
// It returns after every in-flight firing has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	enabled := 0
	for _, pass := range Passes {
		interval := s.interval(pass)
		if interval <= 0 {
			s.logger.Info("pass disabled", "pass", pass)
			continue
		}
		enabled++
		g.Go(func() error {
			return s.loop(gctx, pass, interval)
		})
	}
	s.logger.Info("scheduler started", "passes", enabled, "pool", s.config.PoolSize)

	err := g.Wait()
	s.inflight.Wait()
	s.logger.Info("scheduler stopped")

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Release frees the worker pool. Call it after Run has returned.
func (s *Scheduler) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

func (s *Scheduler) interval(pass Pass) time.Duration {
	switch pass {
	case PassEmbed:
		return s.config.EmbedInterval
	case PassCategorize:
		return s.config.CategorizeInterval
	case PassPrice:
		return s.config.PriceInterval
	}
	return 0
}

func (s *Scheduler) loop(ctx context.Context, pass Pass, interval time.Duration) error {
	if s.config.RunOnStart {
		s.fire(ctx, pass)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.fire(ctx, pass)
		}
	}
}

// fire submits one run of pass to the pool.
func (s *Scheduler) fire(ctx context.Context, pass Pass) {
	firing := uuid.NewString()
	logger := s.logger.With("pass", pass, "firing", firing)

	s.inflight.Add(1)
	err := s.pool.Submit(func() {
		defer s.inflight.Done()

		passCtx, cancel := context.WithTimeout(ctx, s.config.PassTimeout)
		defer cancel()

		logger.Debug("pass starting")
		result, err := s.orchestrator.Run(passCtx, pass, s.taxonomy)
		switch {
		case err != nil:
			logger.Warn("pass failed", "err", err)
		case result != nil && result.Selected > 0:
			logger.Debug("pass finished", result.LogAttrs()...)
		}
		if s.onFinish != nil {
			s.onFinish(pass, result, err)
		}
	})
	if err != nil {
		s.inflight.Done()
		logger.Warn("firing dropped", "err", err)
	}
}
