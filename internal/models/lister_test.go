package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestNewLister(t *testing.T) {
	lister := NewLister("test-api-key", "")

	if lister == nil {
		t.Fatal("NewLister returned nil")
	}

	if lister.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", lister.apiKey)
	}

	if lister.client == nil {
		t.Error("OpenAI client not initialized")
	}
}

func TestSpeechModels_NoAPIKey(t *testing.T) {
	lister := NewLister("", "")

	if _, err := lister.SpeechModels(context.Background()); err == nil {
		t.Error("Expected error for missing API key")
	}
}

func TestSpeechModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "tts-1-hd", "object": "model"},
				{"id": "gpt-4o", "object": "model"},
				{"id": "gpt-4o-mini-tts", "object": "model"},
				{"id": "tts-1", "object": "model"},
			},
		})
	}))
	defer server.Close()

	lister := NewLister("test-key", server.URL+"/v1")
	got, err := lister.SpeechModels(context.Background())
	if err != nil {
		t.Fatalf("SpeechModels() error = %v", err)
	}

	want := []string{"gpt-4o-mini-tts", "tts-1", "tts-1-hd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SpeechModels() = %v, want %v", got, want)
	}
}

func TestSpeechModels_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	if _, err := NewLister("test-key", server.URL+"/v1").SpeechModels(context.Background()); err == nil {
		t.Error("Expected error for rejected key")
	}
}
