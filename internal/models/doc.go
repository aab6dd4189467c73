// Package models lists the OpenAI text-to-speech models available to the
// configured API key, for choosing the TTS fallback model.
package models
