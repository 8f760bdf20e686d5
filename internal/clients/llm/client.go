// Package llm provides a thin chat-completion client used by the image and
// note analyzers. It speaks to any OpenAI-compatible endpoint so local
// inference servers work with the same code path.
package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Client wraps an OpenAI-compatible chat API.
type Client struct {
	api *openai.Client
	log zerolog.Logger
}

// Config holds connection settings for the completion API.
type Config struct {
	APIKey  string
	BaseURL string
}

// NewClient creates a completion client. An empty BaseURL targets the
// default OpenAI endpoint.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api: openai.NewClientWithConfig(apiCfg),
		log: log.With().Str("client", "llm").Logger(),
	}
}

// Complete runs a single-turn chat completion and returns the raw text of
// the first choice.
func (c *Client) Complete(ctx context.Context, model, system, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	return c.send(ctx, req)
}

// CompleteWithImage runs a single-turn vision completion. The image is
// passed by URL, which also accepts data URLs for inline base64 payloads.
func (c *Client) CompleteWithImage(ctx context.Context, model, system, prompt, imageURL string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	return c.send(ctx, req)
}

func (c *Client) send(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	c.log.Debug().Str("model", req.Model).Msg("sending chat completion request")

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	c.log.Debug().
		Str("model", req.Model).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("received chat completion response")

	return resp.Choices[0].Message.Content, nil
}
