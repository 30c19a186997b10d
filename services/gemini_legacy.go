package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rephrasecoach/config"

	legacy "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultLegacyGeminiModel = "gemini-1.5-flash"

// LegacyGeminiClient uses the older github.com/google/generative-ai-go SDK.
type LegacyGeminiClient struct {
	client *legacy.Client
	model  string
}

// NewLegacyGeminiClient builds the client. Extra options are appended after
// the API key and endpoint.
func NewLegacyGeminiClient(ctx context.Context, cfg config.GeminiConfig, opts ...option.ClientOption) (*LegacyGeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := legacy.NewClient(ctx, append(clientOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultLegacyGeminiModel
	}
	return &LegacyGeminiClient{client: client, model: model}, nil
}

func (g *LegacyGeminiClient) Close() error {
	return g.client.Close()
}

func (g *LegacyGeminiClient) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SafetySettings = []*legacy.SafetySetting{
		{Category: legacy.HarmCategoryHarassment, Threshold: legacy.HarmBlockMediumAndAbove},
		{Category: legacy.HarmCategoryHateSpeech, Threshold: legacy.HarmBlockMediumAndAbove},
		{Category: legacy.HarmCategorySexuallyExplicit, Threshold: legacy.HarmBlockMediumAndAbove},
		{Category: legacy.HarmCategoryDangerousContent, Threshold: legacy.HarmBlockMediumAndAbove},
	}
	if opts.JSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, legacy.Text(prompt))
	if err != nil {
		return "", providerError("gemini generate: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", providerError("no candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(legacy.Text); ok {
			sb.WriteString(string(text))
		}
	}
	text := cleanModelOutput(sb.String())
	if text == "" {
		return "", providerError("no response")
	}
	return text, nil
}
