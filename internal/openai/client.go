package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client wraps the OpenAI SDK for single-turn completions.
type Client struct {
	client *openai.Client
	model  openai.ChatModel
}

// ErrClientNotInitialised is returned when attempting to call the API without a configured client.
var ErrClientNotInitialised = errors.New("openai client not initialised")

// New returns a Client. Without an API key the client is inert and every call
// returns ErrClientNotInitialised.
func New(apiKey, baseURL, model string) *Client {
	if apiKey == "" {
		return &Client{}
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	chatModel := openai.ChatModel(model)
	if model == "" {
		chatModel = openai.ChatModelGPT4oMini
	}
	client := openai.NewClient(opts...)
	return &Client{
		client: &client,
		model:  chatModel,
	}
}

// Complete sends one system+user exchange and returns the reply content.
func (c *Client) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", fmt.Errorf("content cannot be empty")
	}
	if c.client == nil {
		return "", ErrClientNotInitialised
	}

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(userText),
					},
				},
			},
		},
		Temperature:         openai.Float(0.0),
		MaxCompletionTokens: openai.Int(200),
	}

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
