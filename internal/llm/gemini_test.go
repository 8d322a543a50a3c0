package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"memberhub/internal/config"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) (*GeminiBackend, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend, err := NewGeminiBackend(config.Config{
		GeminiAPIKey:   "test-key",
		TutorModel:     "gemini-2.5-flash",
		TutorLiveModel: "gemini-2.5-flash",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	backend.baseOverride = server.URL
	return backend, server
}

func TestGeminiGenerateAnswer(t *testing.T) {
	var captured geminiRequest
	backend, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query: %s", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "Stay focused on the basics."}]},
				"groundingMetadata": {"groundingChunks": [
					{"web": {"uri": "https://example.com/a", "title": "Example A"}},
					{"web": {"uri": "", "title": "dropped"}}
				]}
			}]
		}`))
	})

	answer, err := backend.GenerateAnswer(context.Background(), "Be concise.", "What is lesson one about?", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Text != "Stay focused on the basics." {
		t.Fatalf("unexpected text: %q", answer.Text)
	}
	if len(answer.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(answer.Sources))
	}
	if answer.Sources[0].URI != "https://example.com/a" || answer.Sources[0].Title != "Example A" {
		t.Fatalf("unexpected source: %#v", answer.Sources[0])
	}

	if captured.SystemInstruction == nil || len(captured.SystemInstruction.Parts) != 1 {
		t.Fatalf("system instruction not forwarded: %#v", captured.SystemInstruction)
	}
	if len(captured.Tools) != 1 || captured.Tools[0].GoogleSearch == nil {
		t.Fatalf("expected google_search tool, got %#v", captured.Tools)
	}
}

func TestGeminiGenerateAnswerWithoutSearch(t *testing.T) {
	backend, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Tools) != 0 {
			t.Errorf("expected no tools, got %#v", req.Tools)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	})

	answer, err := backend.GenerateAnswer(context.Background(), "", "question", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Text != "ok" {
		t.Fatalf("unexpected text: %q", answer.Text)
	}
	if len(answer.Sources) != 0 {
		t.Fatalf("expected no sources, got %#v", answer.Sources)
	}
}

func TestGeminiGenerateAnswerAPIError(t *testing.T) {
	backend, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	})

	_, err := backend.GenerateAnswer(context.Background(), "", "question", false)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected api message in error, got %v", err)
	}
}

func TestGeminiGenerateAnswerEmptyCandidates(t *testing.T) {
	backend, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	if _, err := backend.GenerateAnswer(context.Background(), "", "question", false); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestGeminiGenerateSpeech(t *testing.T) {
	var captured geminiRequest
	backend, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[
			{"inlineData":{"mimeType":"audio/pcm;rate=24000","data":"QUJD"}},
			{"inlineData":{"mimeType":"audio/pcm;rate=24000","data":"REVG"}}
		]}}]}`))
	})

	chunks, err := backend.GenerateSpeech(context.Background(), SpeechTurn{
		AudioFrames: []string{"AAAA", "BBBB"},
		Snapshot:    "CCCC",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 || chunks[0] != "QUJD" || chunks[1] != "REVG" {
		t.Fatalf("unexpected chunks: %#v", chunks)
	}

	if len(captured.Contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(captured.Contents))
	}
	parts := captured.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.MimeType != "audio/pcm;rate=16000" {
		t.Fatalf("unexpected first part: %#v", parts[0])
	}
	if parts[2].InlineData == nil || parts[2].InlineData.MimeType != "image/jpeg" {
		t.Fatalf("snapshot should be last part: %#v", parts[2])
	}
	if captured.GenerationConfig == nil || len(captured.GenerationConfig.ResponseModalities) != 1 ||
		captured.GenerationConfig.ResponseModalities[0] != "AUDIO" {
		t.Fatalf("expected AUDIO response modality, got %#v", captured.GenerationConfig)
	}
}

func TestGeminiGenerateSpeechNoAudio(t *testing.T) {
	backend, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent for empty turn")
	})

	if _, err := backend.GenerateSpeech(context.Background(), SpeechTurn{}); err == nil {
		t.Fatal("expected error for turn without audio frames")
	}
}
