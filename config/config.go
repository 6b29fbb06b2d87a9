// Package config loads DocMesh runtime configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds the runtime configuration for DocMesh.
type Config struct {
	// Provider selects the LLM backend ("openai" or "anthropic").
	Provider string
	// OpenAIAPIKey authenticates against the OpenAI API.
	OpenAIAPIKey string
	// AnthropicAPIKey authenticates against the Anthropic API.
	AnthropicAPIKey string
	// Model overrides the provider's default model id when non-empty.
	Model string
	// StorageDir is the root directory for document persistence.
	StorageDir string
}

// Default values applied when the environment leaves a field unset.
const (
	DefaultProvider   = ProviderOpenAI
	DefaultStorageDir = "documents"
)

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; explicit environment variables take
// precedence over .env entries.
//
// Recognized variables: DOCMESH_PROVIDER, OPENAI_API_KEY, ANTHROPIC_API_KEY,
// DOCMESH_MODEL, DOCMESH_STORAGE_DIR.
func Load() *Config {
	// Missing .env is the common case, not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Provider:        os.Getenv("DOCMESH_PROVIDER"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		Model:           os.Getenv("DOCMESH_MODEL"),
		StorageDir:      os.Getenv("DOCMESH_STORAGE_DIR"),
	}
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = DefaultStorageDir
	}

	return cfg
}

// Validate checks that the configuration can drive the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.Provider)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.StorageDir == "" {
		return fmt.Errorf("storage dir must not be empty")
	}

	return nil
}
