package audio

import (
	"context"
	"fmt"
)

// Generator synthesises pronunciation audio for a word. It backs the cache
// synchronizer when a word cannot be fetched from the online source.
type Generator interface {
	// Generate returns the encoded audio for word.
	Generate(ctx context.Context, word string) ([]byte, error)

	// Name returns the generator name
	Name() string

	// IsAvailable checks if the generator is properly configured
	IsAvailable() error
}

// Config holds the generator configuration
type Config struct {
	Provider     string // Provider name: "openai"
	OutputFormat string // cache file extension: "mp3", "opus", "aac", "flac" or "wav"

	// OpenAI-specific settings
	OpenAIKey     string
	OpenAIModel   string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice   string  // "alloy", "ash", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer"
	OpenAISpeed   float64 // 0.25 to 4.0
	OpenAIBaseURL string  // overrides the API endpoint, empty for the default
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:     "openai",
		OutputFormat: "mp3",
		OpenAIModel:  "tts-1",
		OpenAIVoice:  "alloy",
		OpenAISpeed:  0.9, // slightly slower for learners
	}
}

// NewGenerator creates the generator selected by the configuration
func NewGenerator(config *Config) (Generator, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai", "":
		return NewOpenAIGenerator(config)
	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}
