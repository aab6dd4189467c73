package audio

import (
	"testing"
)

func TestDefaultProviderConfig(t *testing.T) {
	config := DefaultProviderConfig()

	if config.Provider != "openai" {
		t.Errorf("Expected provider 'openai', got '%s'", config.Provider)
	}

	if config.OutputFormat != "mp3" {
		t.Errorf("Expected output format 'mp3', got '%s'", config.OutputFormat)
	}

	if config.OpenAIModel != "tts-1" {
		t.Errorf("Expected OpenAI model 'tts-1', got '%s'", config.OpenAIModel)
	}

	if config.OpenAIVoice != "alloy" {
		t.Errorf("Expected OpenAI voice 'alloy', got '%s'", config.OpenAIVoice)
	}
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "nil config uses defaults without key",
			config:  nil,
			wantErr: true,
			errMsg:  "OpenAI API key is required",
		},
		{
			name:    "openai with key",
			config:  &Config{Provider: "openai", OpenAIKey: "test-key"},
			wantErr: false,
		},
		{
			name:    "empty provider means openai",
			config:  &Config{OpenAIKey: "test-key"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			config:  &Config{Provider: "espeak", OpenAIKey: "test-key"},
			wantErr: true,
			errMsg:  "unknown audio provider: espeak",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewGenerator(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGenerator() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if err.Error() != tt.errMsg {
					t.Errorf("NewGenerator() error = %v, want %v", err, tt.errMsg)
				}
				return
			}
			if gen.Name() != "openai" {
				t.Errorf("Name() = %v, want openai", gen.Name())
			}
			if err := gen.IsAvailable(); err != nil {
				t.Errorf("IsAvailable() = %v", err)
			}
		})
	}
}
