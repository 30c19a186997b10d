package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"rephrasecoach/config"
)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// OpenAIClient talks to a chat-completions endpoint.
type OpenAIClient struct {
	APIKey     string
	URL        string
	Model      string
	HTTPClient *http.Client
}

func NewOpenAIClient(cfg config.OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		APIKey:     cfg.APIKey,
		URL:        strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		Model:      cfg.Model,
		HTTPClient: &http.Client{},
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	requestData := chatRequest{
		Model:    c.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	if opts.JSON {
		requestData.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", providerError("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", providerError("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", providerError("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var responseData chatResponse
	if err := json.Unmarshal(body, &responseData); err != nil {
		return "", providerError("failed to parse response: %v", err)
	}
	if len(responseData.Choices) == 0 {
		return "", providerError("unexpected response format")
	}

	text := cleanModelOutput(responseData.Choices[0].Message.Content)
	if text == "" {
		return "", providerError("no response")
	}
	return text, nil
}
