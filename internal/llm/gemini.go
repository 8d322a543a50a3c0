package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"memberhub/internal/config"
	"memberhub/internal/entity"

	"github.com/sirupsen/logrus"
)

const geminiEndpointBase = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiBackend 通过 Gemini generateContent 接口实现问答与语音合成。
type GeminiBackend struct {
	httpClient *http.Client
	apiKey     string
	textModel  string
	liveModel  string

	// baseOverride replaces the real endpoint in tests.
	baseOverride string
}

// NewGeminiBackend builds the backend from config.
func NewGeminiBackend(cfg config.Config) (*GeminiBackend, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, errors.New("gemini api key is not configured")
	}

	textModel := strings.TrimSpace(cfg.TutorModel)
	if textModel == "" {
		textModel = "gemini-2.5-flash"
	}
	liveModel := strings.TrimSpace(cfg.TutorLiveModel)
	if liveModel == "" {
		liveModel = textModel
	}

	return &GeminiBackend{
		httpClient: &http.Client{},
		apiKey:     cfg.GeminiAPIKey,
		textModel:  textModel,
		liveModel:  liveModel,
	}, nil
}

// GenerateAnswer implements TextBackend.
func (g *GeminiBackend) GenerateAnswer(ctx context.Context, systemInstruction, prompt string, useSearch bool) (*Answer, error) {
	logger := backendLogger(ctx, "gemini", g.textModel)
	logger.WithFields(logrus.Fields{
		"prompt_length":  len([]rune(prompt)),
		"prompt_preview": logSnippet(prompt),
		"use_search":     useSearch,
	}).Info("tutor_generate_answer_start")

	payload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiContentPart{{Text: prompt}}},
		},
		GenerationConfig: &geminiConfig{
			Temperature: 0.7,
		},
	}
	if strings.TrimSpace(systemInstruction) != "" {
		payload.SystemInstruction = &geminiContent{
			Parts: []geminiContentPart{{Text: systemInstruction}},
		}
	}
	if useSearch {
		payload.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}

	resp, err := g.invoke(ctx, logger, g.textModel, payload)
	if err != nil {
		return nil, err
	}

	answer := &Answer{}
	var textBuilder strings.Builder
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				if textBuilder.Len() > 0 {
					textBuilder.WriteString("\n")
				}
				textBuilder.WriteString(text)
			}
		}
		if candidate.GroundingMetadata != nil {
			for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
				if chunk.Web == nil || strings.TrimSpace(chunk.Web.URI) == "" {
					continue
				}
				answer.Sources = append(answer.Sources, entity.TutorSource{
					URI:   chunk.Web.URI,
					Title: chunk.Web.Title,
				})
			}
		}
	}
	answer.Text = textBuilder.String()

	if answer.Text == "" {
		logger.Warn("tutor_generate_answer_empty")
		return nil, errors.New("gemini response did not include any text")
	}

	logger.WithFields(logrus.Fields{
		"text_length":  len([]rune(answer.Text)),
		"text_preview": logSnippet(answer.Text),
		"source_count": len(answer.Sources),
	}).Info("tutor_generate_answer_success")
	return answer, nil
}

// GenerateSpeech implements SpeechBackend. The turn's audio frames are
// forwarded inline in capture order, followed by the camera snapshot.
func (g *GeminiBackend) GenerateSpeech(ctx context.Context, turn SpeechTurn) ([]string, error) {
	logger := backendLogger(ctx, "gemini", g.liveModel)
	logger.WithFields(logrus.Fields{
		"audio_frames": len(turn.AudioFrames),
		"has_snapshot": strings.TrimSpace(turn.Snapshot) != "",
	}).Info("tutor_generate_speech_start")

	if len(turn.AudioFrames) == 0 {
		return nil, errors.New("speech turn has no audio frames")
	}

	parts := make([]geminiContentPart, 0, len(turn.AudioFrames)+1)
	for _, frame := range turn.AudioFrames {
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}
		parts = append(parts, geminiContentPart{
			InlineData: &geminiInlineData{
				MimeType: "audio/pcm;rate=16000",
				Data:     frame,
			},
		})
	}
	if snapshot := strings.TrimSpace(turn.Snapshot); snapshot != "" {
		parts = append(parts, geminiContentPart{
			InlineData: &geminiInlineData{
				MimeType: "image/jpeg",
				Data:     snapshot,
			},
		})
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: parts},
		},
		GenerationConfig: &geminiConfig{
			ResponseModalities: []string{"AUDIO"},
		},
	}

	resp, err := g.invoke(ctx, logger, g.liveModel, payload)
	if err != nil {
		return nil, err
	}

	var chunks []string
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				chunks = append(chunks, part.InlineData.Data)
			}
		}
	}
	if len(chunks) == 0 {
		logger.Warn("tutor_generate_speech_empty")
		return nil, errors.New("gemini response did not include audio data")
	}

	logger.WithField("chunk_count", len(chunks)).Info("tutor_generate_speech_success")
	return chunks, nil
}

func (g *GeminiBackend) invoke(ctx context.Context, logger *logrus.Entry, model string, payload geminiRequest) (*geminiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).Error("tutor_payload_marshal_failed")
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", g.endpointBase(), model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		logger.WithError(err).Error("tutor_request_build_failed")
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Error("tutor_request_failed")
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.WithField("status", resp.StatusCode).WithError(err).Error("tutor_response_read_failed")
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		logger.WithFields(logrus.Fields{
			"status":       resp.StatusCode,
			"body_preview": logSnippet(string(respBody)),
		}).Warn("tutor_response_error")
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, errors.New(apiErr.Error.Message)
		}
		return nil, fmt.Errorf("gemini request failed with status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		logger.WithError(err).Error("tutor_response_unmarshal_failed")
		return nil, err
	}
	return &parsed, nil
}

// endpointBase is overridable in tests.
func (g *GeminiBackend) endpointBase() string {
	if g.baseOverride != "" {
		return g.baseOverride
	}
	return geminiEndpointBase
}

type geminiContentPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string              `json:"role,omitempty"`
	Parts []geminiContentPart `json:"parts"`
}

type geminiConfig struct {
	MaxOutputTokens    int      `json:"maxOutputTokens,omitempty"`
	Temperature        float32  `json:"temperature,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Tools             []geminiTool    `json:"tools,omitempty"`
	GenerationConfig  *geminiConfig   `json:"generationConfig,omitempty"`
}

type geminiGroundingWeb struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type geminiGroundingChunk struct {
	Web *geminiGroundingWeb `json:"web,omitempty"`
}

type geminiGroundingMetadata struct {
	GroundingChunks []geminiGroundingChunk `json:"groundingChunks"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiContentPart `json:"parts"`
		} `json:"content"`
		FinishReason      string                   `json:"finishReason,omitempty"`
		GroundingMetadata *geminiGroundingMetadata `json:"groundingMetadata,omitempty"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
