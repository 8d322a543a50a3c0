package llm

import (
	"fmt"
	"strings"

	"memberhub/internal/config"
)

const (
	DriverGemini = "gemini"
	DriverArk    = "ark"
)

// NewTextBackend instantiates the tutor question-answering backend for the
// configured driver.
func NewTextBackend(cfg config.Config) (TextBackend, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.TutorDriver))
	switch driver {
	case "", DriverGemini:
		return NewGeminiBackend(cfg)
	case DriverArk:
		return NewArkBackend(cfg)
	default:
		return nil, fmt.Errorf("unsupported tutor driver: %s", cfg.TutorDriver)
	}
}

// NewSpeechBackend instantiates the live-session speech backend. Only Gemini
// supports audio response modalities, so the driver setting is not consulted.
func NewSpeechBackend(cfg config.Config) (SpeechBackend, error) {
	return NewGeminiBackend(cfg)
}
