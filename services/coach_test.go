package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"rephrasecoach/config"
	"rephrasecoach/internal/logger"
	"rephrasecoach/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	opts     []CompletionOptions
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	return f.response, f.err
}

func testBank(t *testing.T) *ChallengeBank {
	t.Helper()
	bank, err := LoadChallengeBank([]byte("challenges:\n  - First challenge.\n  - Second challenge.\n"))
	require.NoError(t, err)
	bank.pick = func(int) int { return 1 }
	return bank
}

func TestGenerateTopic_Static(t *testing.T) {
	llm := &fakeCompleter{}
	svc := NewCoachService(llm, testBank(t), config.TopicsConfig{Source: "static"}, logger.NewNop())

	topic, err := svc.GenerateTopic(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Second challenge.", topic)
	assert.Empty(t, llm.prompts)
}

func TestGenerateTopic_ModelCleansOutput(t *testing.T) {
	llm := &fakeCompleter{response: "\n\"Learning a new language is quite difficult.\"\nExtra line"}
	svc := NewCoachService(llm, testBank(t), config.TopicsConfig{Source: "model"}, logger.NewNop())

	topic, err := svc.GenerateTopic(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Learning a new language is quite difficult.", topic)
	require.Len(t, llm.opts, 1)
	assert.False(t, llm.opts[0].JSON)
}

func TestGenerateTopic_Failure(t *testing.T) {
	tests := []struct {
		name     string
		fallback bool
		llm      *fakeCompleter
		want     string
		wantErr  error
	}{
		{name: "provider error", llm: &fakeCompleter{err: providerError("API error (500)")}, wantErr: ErrProviderFailure},
		{name: "blank answer", llm: &fakeCompleter{response: "  \n "}, wantErr: ErrEmptyTopic},
		{name: "fallback to bank", fallback: true, llm: &fakeCompleter{err: errors.New("timeout")}, want: "Second challenge."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCoachService(tt.llm, testBank(t), config.TopicsConfig{Source: "model", FallbackToStatic: tt.fallback}, logger.NewNop())

			topic, err := svc.GenerateTopic(context.Background())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, topic)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, topic)
		})
	}
}

func TestEvaluate_RequestsJSONForStructuredShapes(t *testing.T) {
	llm := &fakeCompleter{response: `{"level1":{"evaluation":"ok","samples":"1. a"}}`}
	svc := NewCoachService(llm, testBank(t), config.TopicsConfig{}, logger.NewNop())

	rs, err := svc.Evaluate(context.Background(), EvaluationInput{Sentence: "s", Attempts: models.Attempts{Vocabulary: "a"}}, models.ShapePerLevel)

	require.NoError(t, err)
	assert.False(t, rs.IsEmpty())
	assert.True(t, llm.opts[0].JSON)

	llm.response = "Great work."
	rs, err = svc.Evaluate(context.Background(), EvaluationInput{Sentence: "s", Attempts: models.Attempts{Vocabulary: "a"}}, models.ShapeMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "Great work.", rs.Analysis)
	assert.False(t, llm.opts[1].JSON)
}

func TestEvaluate_Errors(t *testing.T) {
	in := EvaluationInput{Sentence: "s", Attempts: models.Attempts{Vocabulary: "a"}}

	svc := NewCoachService(&fakeCompleter{response: "Sure! Here you go."}, testBank(t), config.TopicsConfig{}, logger.NewNop())
	_, err := svc.Evaluate(context.Background(), in, models.ShapeFlat)
	assert.ErrorIs(t, err, ErrMalformedOutput)

	svc = NewCoachService(&fakeCompleter{err: providerError("API error (401)")}, testBank(t), config.TopicsConfig{}, logger.NewNop())
	_, err = svc.Evaluate(context.Background(), in, models.ShapeFlat)
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.NotErrorIs(t, err, ErrMalformedOutput)
}

func TestDirectRewrite(t *testing.T) {
	llm := &fakeCompleter{response: `{"level1":{"samples":"1. a"},"level2":{"samples":"1. b"},"level3":{"samples":"1. c"}}`}
	svc := NewCoachService(llm, testBank(t), config.TopicsConfig{}, logger.NewNop())

	rs, err := svc.DirectRewrite(context.Background(), "I want a better job.", models.RubricFCE)

	require.NoError(t, err)
	assert.Len(t, rs.Levels, 3)
	assert.Contains(t, llm.prompts[0], "Cambridge B2 First (FCE)")
	assert.True(t, llm.opts[0].JSON)

	llm.response = "oops"
	_, err = svc.DirectRewrite(context.Background(), "x", models.RubricFCE)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}
