// Package llm 封装对外部生成式服务的调用：问答后端与实时语音后端。
package llm

import (
	"context"

	"memberhub/internal/entity"
)

// Answer is the result of one tutoring question.
type Answer struct {
	Text    string
	Sources []entity.TutorSource
}

// TextBackend answers a single question against provided lesson context.
type TextBackend interface {
	// GenerateAnswer forwards the prompt to the collaborator. When
	// useSearch is set the backend may consult a web-search tool and
	// return cited sources in the collaborator's order.
	GenerateAnswer(ctx context.Context, systemInstruction, prompt string, useSearch bool) (*Answer, error)
}

// SpeechTurn carries one live-tutor turn: buffered microphone audio
// (base64 16kHz mono PCM frames, in capture order) and an optional
// base64 JPEG camera snapshot.
type SpeechTurn struct {
	AudioFrames []string
	Snapshot    string
}

// SpeechBackend synthesises a spoken reply for a live turn. The returned
// chunks are base64 PCM in playback order.
type SpeechBackend interface {
	GenerateSpeech(ctx context.Context, turn SpeechTurn) ([]string, error)
}
