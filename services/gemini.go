package services

import (
	"context"
	"errors"
	"fmt"

	"rephrasecoach/config"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient uses the generative-content API through google.golang.org/genai.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	var genCfg *genai.GenerateContentConfig
	if opts.JSON {
		genCfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", providerError("gemini generate: %v", err)
	}
	text := cleanModelOutput(resp.Text())
	if text == "" {
		return "", providerError("no response")
	}
	return text, nil
}
