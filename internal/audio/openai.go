package audio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator implements Generator with OpenAI text-to-speech
type OpenAIGenerator struct {
	client *openai.Client
	config *Config
}

// NewOpenAIGenerator creates a new OpenAI TTS generator
func NewOpenAIGenerator(config *Config) (*OpenAIGenerator, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Generate implements Generator
func (g *OpenAIGenerator) Generate(ctx context.Context, word string) ([]byte, error) {
	if err := ValidateWord(word); err != nil {
		return nil, err
	}

	format, err := responseFormat(g.config.OutputFormat)
	if err != nil {
		return nil, err
	}

	speed := g.config.OpenAISpeed
	if speed == 0 {
		speed = 1.0
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(g.config.OpenAIModel),
		Input:          cleanForSpeech(word),
		Voice:          openai.SpeechVoice(g.config.OpenAIVoice),
		ResponseFormat: format,
		Speed:          speed,
	}

	response, err := g.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	data, err := io.ReadAll(response)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no audio data received from OpenAI")
	}
	return data, nil
}

// Name implements Generator
func (g *OpenAIGenerator) Name() string {
	return "openai"
}

// IsAvailable implements Generator
func (g *OpenAIGenerator) IsAvailable() error {
	if g.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}

func responseFormat(ext string) (openai.SpeechResponseFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "mp3", "":
		return openai.SpeechResponseFormatMp3, nil
	case "opus":
		return openai.SpeechResponseFormatOpus, nil
	case "aac":
		return openai.SpeechResponseFormatAac, nil
	case "flac":
		return openai.SpeechResponseFormatFlac, nil
	case "wav":
		return openai.SpeechResponseFormatWav, nil
	default:
		return "", fmt.Errorf("no speech format for extension %q", ext)
	}
}

// cleanForSpeech drops punctuation that would otherwise be read aloud.
func cleanForSpeech(word string) string {
	cleaned := strings.TrimSpace(word)
	for _, punct := range []string{"!", "?", ".", ",", ";", ":", "\"", "(", ")", "[", "]", "{", "}"} {
		cleaned = strings.ReplaceAll(cleaned, punct, "")
	}
	return strings.TrimSpace(cleaned)
}
