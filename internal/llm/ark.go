package llm

import (
	"context"
	"errors"
	"strings"

	"memberhub/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	volcModel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
)

//文档:https://www.volcengine.com/docs/82379/1494384

// ArkBackend 使用火山方舟 chat completions 接口回答课程问题。
// 方舟模型不支持 grounding 引用，Sources 始终为空。
type ArkBackend struct {
	client *arkruntime.Client
	model  string
}

// NewArkBackend builds the backend from config.
func NewArkBackend(cfg config.Config) (*ArkBackend, error) {
	if strings.TrimSpace(cfg.VolcengineAPIKey) == "" {
		return nil, errors.New("volcengine api key is not configured")
	}
	model := strings.TrimSpace(cfg.ArkModel)
	if model == "" {
		return nil, errors.New("ark model is not configured")
	}
	return &ArkBackend{
		client: arkruntime.NewClientWithApiKey(cfg.VolcengineAPIKey),
		model:  model,
	}, nil
}

// GenerateAnswer implements TextBackend. useSearch is ignored.
func (a *ArkBackend) GenerateAnswer(ctx context.Context, systemInstruction, prompt string, useSearch bool) (*Answer, error) {
	logger := backendLogger(ctx, "ark", a.model)
	logger.WithFields(logrus.Fields{
		"prompt_length":  len([]rune(prompt)),
		"prompt_preview": logSnippet(prompt),
	}).Info("tutor_generate_answer_start")

	messages := make([]*volcModel.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(systemInstruction) != "" {
		messages = append(messages, &volcModel.ChatCompletionMessage{
			Role: volcModel.ChatMessageRoleSystem,
			Content: &volcModel.ChatCompletionMessageContent{
				StringValue: volcengine.String(systemInstruction),
			},
		})
	}
	messages = append(messages, &volcModel.ChatCompletionMessage{
		Role: volcModel.ChatMessageRoleUser,
		Content: &volcModel.ChatCompletionMessageContent{
			StringValue: volcengine.String(prompt),
		},
	})

	resp, err := a.client.CreateChatCompletion(ctx, volcModel.CreateChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		logger.WithError(err).Error("tutor_request_failed")
		return nil, err
	}

	var text string
	for _, choice := range resp.Choices {
		if choice.Message.Content != nil && choice.Message.Content.StringValue != nil {
			text = strings.TrimSpace(*choice.Message.Content.StringValue)
			if text != "" {
				break
			}
		}
	}
	if text == "" {
		logger.Warn("tutor_generate_answer_empty")
		return nil, errors.New("ark response did not include any text")
	}

	logger.WithFields(logrus.Fields{
		"text_length":  len([]rune(text)),
		"text_preview": logSnippet(text),
	}).Info("tutor_generate_answer_success")
	return &Answer{Text: text}, nil
}
