package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rephrasecoach/config"
	"rephrasecoach/internal/logger"
	"rephrasecoach/models"
)

// ErrEmptyTopic means the model answered a topic request with nothing usable.
var ErrEmptyTopic = errors.New("no topic generated")

// CoachService runs the three model-backed use cases: new challenge,
// evaluation of three attempts, and direct rewrite.
type CoachService struct {
	llm    Completer
	bank   *ChallengeBank
	topics config.TopicsConfig
	log    *logger.Logger
}

func NewCoachService(llm Completer, bank *ChallengeBank, topics config.TopicsConfig, log *logger.Logger) *CoachService {
	return &CoachService{llm: llm, bank: bank, topics: topics, log: log}
}

// Bank exposes the static challenge list.
func (s *CoachService) Bank() *ChallengeBank {
	return s.bank
}

// GenerateTopic returns a new practice sentence.
func (s *CoachService) GenerateTopic(ctx context.Context) (string, error) {
	if s.topics.Source == "static" {
		return s.bank.Random(), nil
	}

	response, err := s.llm.Complete(ctx, BuildTopicPrompt(), CompletionOptions{})
	if err == nil {
		if topic := cleanTopic(response); topic != "" {
			return topic, nil
		}
		err = ErrEmptyTopic
	}

	if s.topics.FallbackToStatic {
		s.log.Warn("topic generation failed, using static challenge", "error", err)
		return s.bank.Random(), nil
	}
	s.log.Error("topic generation failed", "error", err)
	return "", fmt.Errorf("failed to generate topic: %w", err)
}

// Evaluate asks for feedback on the attempts in the given shape.
func (s *CoachService) Evaluate(ctx context.Context, in EvaluationInput, shape models.ResponseShape) (models.ResultSet, error) {
	prompt := BuildEvaluationPrompt(in, shape)
	response, err := s.llm.Complete(ctx, prompt, CompletionOptions{JSON: shape.IsJSON()})
	if err != nil {
		s.log.Error("evaluation request failed", "shape", shape, "rubric", in.Rubric, "error", err)
		return models.ResultSet{}, fmt.Errorf("failed to evaluate attempts: %w", err)
	}

	rs, err := ParseResultSet(response, shape)
	if err != nil {
		s.log.Error("evaluation output unparseable", "shape", shape, "error", err, "raw", truncate(response, 500))
		return models.ResultSet{}, fmt.Errorf("invalid evaluation format: %w", err)
	}
	return rs, nil
}

// DirectRewrite asks for model answers for a single sentence, samples only.
func (s *CoachService) DirectRewrite(ctx context.Context, sentence string, rubric models.Rubric) (models.ResultSet, error) {
	response, err := s.llm.Complete(ctx, BuildDirectPrompt(sentence, rubric), CompletionOptions{JSON: true})
	if err != nil {
		s.log.Error("direct rewrite request failed", "rubric", rubric, "error", err)
		return models.ResultSet{}, fmt.Errorf("failed to rewrite sentence: %w", err)
	}

	rs, err := ParseSamplesOnly(response)
	if err != nil {
		s.log.Error("direct rewrite output unparseable", "error", err, "raw", truncate(response, 500))
		return models.ResultSet{}, fmt.Errorf("invalid rewrite format: %w", err)
	}
	return rs, nil
}

// cleanTopic keeps the first non-empty line and strips wrapping quotes.
func cleanTopic(raw string) string {
	for _, line := range strings.Split(cleanModelOutput(raw), "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'“”‘’`")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
