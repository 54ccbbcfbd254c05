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

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/larder"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "larder",
		Usage: "Ingredient catalogue with automatic embedding, categorization and price estimation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file",
				EnvVars: []string{"LARDER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides the config file)",
				EnvVars: []string{"LARDER_DB"},
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI-compatible host for both embeddings and chat (overrides the config file)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			addCommand(),
			listCommand(),
			searchCommand(),
			similarCommand(),
			recipeCommand(),
			enrichCommand(),
			serveCommand(),
			resetCategoriesCommand(),
			seedCommand(),
		},
	}
}

// openDatabase opens the database described by the global flags.
// Tests replace it to avoid network-backed providers.
var openDatabase = func(c *cli.Context) (*larder.Database, error) {
	cfg, err := larder.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.DB = db
	}
	if host := c.String("host"); host != "" {
		cfg.AI.EmbeddingHost = host
		cfg.AI.ClassifierHost = host
	}
	if cfg.DB == "" {
		return nil, fmt.Errorf("database path is required: set --db or db in the config file")
	}
	return larder.OpenConfig(cfg)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
