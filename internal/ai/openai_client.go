package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

type OpenAIClient struct {
	client *openai.Client
	model  string
	log    logrus.FieldLogger
}

func NewOpenAIClient(apiKey, model string, log logrus.FieldLogger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("ai: OPENAI_API_KEY not set")
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log.WithField("component", "openai"),
	}, nil
}

func (c *OpenAIClient) GetReply(
	ctx context.Context,
	systemPrompt string,
	inputJSON string,
) (string, error) {

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: inputJSON},
		},
		Temperature: 0,
	})
	if err != nil {
		c.log.WithError(err).Warn("chat completion failed")
		return "", err
	}

	if len(resp.Choices) == 0 {
		c.log.Warn("empty choices")
		return "", nil
	}

	raw := resp.Choices[0].Message.Content
	c.log.WithField("raw", short(raw)).Debug("model reply")

	return raw, nil
}

func short(s string) string {
	if len(s) > 180 {
		return s[:180] + "..."
	}
	return s
}
