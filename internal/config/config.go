// Package config loads the assistant configuration from the environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds environment-driven settings. Variables use the ATLAS_ prefix
// (ATLAS_PREFERENCES_PATH and so on); OAuth client credentials keep their
// conventional unprefixed names and are read in main.
type Config struct {
	// Local JSON documents for the preference and memory stores.
	PreferencesPath string `envconfig:"PREFERENCES_PATH" default:"./data/preferences.json"`
	MemoryPath      string `envconfig:"MEMORY_PATH" default:"./data/user_memory.json"`

	// Google Custom Search. Empty values disable the web_search tool
	// with an instructive message instead of an error.
	SearchAPIKey   string `envconfig:"SEARCH_API_KEY" default:""`
	SearchEngineID string `envconfig:"SEARCH_ENGINE_ID" default:""`
}

// New parses the configuration from the environment.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("atlas", &cfg); err != nil {
		return nil, fmt.Errorf("envconfig.Process failed: %w", err)
	}
	return &cfg, nil
}
