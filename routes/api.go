package routes

import (
	"context"
	"net/http"
	"strings"

	"rephrasecoach/internal/flow"
	"rephrasecoach/internal/logger"
	"rephrasecoach/models"
	"rephrasecoach/services"

	"github.com/gin-gonic/gin"
)

// GenericFailureMessage is returned for every model or parsing failure.
const GenericFailureMessage = "Parsing failed, check the API key or retry later."

// Coach is the model-backed work the handlers need.
type Coach interface {
	GenerateTopic(ctx context.Context) (string, error)
	Evaluate(ctx context.Context, in services.EvaluationInput, shape models.ResponseShape) (models.ResultSet, error)
	DirectRewrite(ctx context.Context, sentence string, rubric models.Rubric) (models.ResultSet, error)
}

type Handlers struct {
	coach Coach
	shape models.ResponseShape
	log   *logger.Logger
}

func NewHandlers(coach Coach, shape models.ResponseShape, log *logger.Logger) *Handlers {
	return &Handlers{coach: coach, shape: shape, log: log}
}

// GenerateTopic returns a fresh challenge sentence.
func (h *Handlers) GenerateTopic(c *gin.Context) {
	topic, err := h.coach.GenerateTopic(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": flow.TopicFailureMessage})
		return
	}
	c.JSON(http.StatusOK, models.TopicResponse{Topic: topic})
}

// Rephrase evaluates three attempts. The response layout follows ?shape,
// falling back to the configured default.
func (h *Handlers) Rephrase(c *gin.Context) {
	var req models.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	shape := h.shape
	if raw := c.Query("shape"); raw != "" {
		parsed, err := models.ParseResponseShape(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		shape = parsed
	}

	attempts := req.Attempts.Trimmed()
	if attempts.Vocabulary == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lv1 is required"})
		return
	}
	sentence := req.Sentence()
	if sentence == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "originalSentence is required"})
		return
	}

	rs, err := h.coach.Evaluate(c.Request.Context(), services.EvaluationInput{
		Sentence: sentence,
		Attempts: attempts,
		Rubric:   req.SelectedRubric(),
	}, shape)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": GenericFailureMessage})
		return
	}
	c.JSON(http.StatusOK, rs)
}

// Direct rewrites one sentence into per-level samples.
func (h *Handlers) Direct(c *gin.Context) {
	var req models.DirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	sentence := req.Target()
	if sentence == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sentence is required"})
		return
	}

	rs, err := h.coach.DirectRewrite(c.Request.Context(), sentence, req.SelectedRubric())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": GenericFailureMessage})
		return
	}
	c.JSON(http.StatusOK, rs)
}

func Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// dispatch runs a flow submission against the coach. Every failure, whatever
// its cause, is shown with the same generic message.
func (h *Handlers) dispatch(ctx context.Context, cfg flow.Config, in flow.Input) (models.ResultSet, error) {
	var (
		rs  models.ResultSet
		err error
	)
	switch cfg.Required {
	case flow.RequireSentence:
		rs, err = h.coach.DirectRewrite(ctx, strings.TrimSpace(in.Sentence), in.Rubric)
	default:
		rs, err = h.coach.Evaluate(ctx, services.EvaluationInput{
			Sentence: in.Sentence,
			Attempts: in.Attempts.Trimmed(),
			Rubric:   in.Rubric,
		}, cfg.Shape)
	}
	if err != nil {
		return models.ResultSet{}, &flow.MessageError{Message: GenericFailureMessage, Err: err}
	}
	return rs, nil
}
