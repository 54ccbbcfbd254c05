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

package larder

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/enrichment"
)

// Config is the on-disk configuration of a larder database.
//
//	db = "./larder-data"
//	taxonomy = ["Produce", "Pantry"]
//
//	[ai]
//	embedding_host = "http://localhost:11434"
//	classifier_model = "qwen2.5:3b"
//
//	[enrichment]
//	batch_size = 20
//	price_interval = "1m"
type Config struct {
	DB         string            `toml:"db"`
	Taxonomy   []string          `toml:"taxonomy"`
	AI         ai.Config         `toml:"ai"`
	Enrichment enrichment.Config `toml:"enrichment"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Taxonomy:   append([]string(nil), ai.DefaultTaxonomy...),
		AI:         *ai.DefaultConfig(),
		Enrichment: *enrichment.DefaultConfig(),
	}
}

// LoadConfig reads path over the defaults. An empty path returns the defaults.
// Keys the file sets but larder does not know are an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("%w in %s: %s", ErrUnknownConfigKey, path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the taxonomy and the enrichment settings.
// AI settings are validated when the provider is created.
func (c *Config) Validate() error {
	if len(c.Taxonomy) == 0 {
		return fmt.Errorf("%w: taxonomy cannot be empty", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Taxonomy))
	for _, label := range c.Taxonomy {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("%w: taxonomy has a blank label", ErrInvalidConfig)
		}
		if seen[label] {
			return fmt.Errorf("%w: duplicate taxonomy label %q", ErrInvalidConfig, label)
		}
		seen[label] = true
	}
	if err := c.Enrichment.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
