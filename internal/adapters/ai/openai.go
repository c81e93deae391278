// Package ai provides chat completion backends for the summarizer.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"matchpulse/internal/services/summary"
	"matchpulse/pkg/errors"
)

const openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// Ensure OpenAIClient implements the summarizer's provider contract
var _ summary.ChatProvider = (*OpenAIClient)(nil)

const defaultTimeout = 30 * time.Second

// OpenAIClient calls the OpenAI chat completions API. It implements the
// summarizer's ChatProvider contract with a single non-streaming call.
type OpenAIClient struct {
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

func NewOpenAIClient(apiKey, model string, maxResponseTokens int) *OpenAIClient {
	return &OpenAIClient{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxResponseTokens,
		client:    &http.Client{Timeout: defaultTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion request and returns the first
// choice's content
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "openai API key not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal openai request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", openaiAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "create HTTP request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "send openai request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read openai response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return "", errors.Wrapf(errors.ErrUnavailable, "openai API error (%d): %s - %s",
				resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return "", errors.Wrapf(errors.ErrUnavailable, "openai API error (%d): %s",
			resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.Wrap(err, "unmarshal openai response")
	}
	if len(parsed.Choices) == 0 {
		return "", errors.Wrap(errors.ErrUnavailable, "openai response had no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
