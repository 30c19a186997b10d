package routes

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"rephrasecoach/internal/flow"
	"rephrasecoach/internal/stress"
	"rephrasecoach/middlewares"
	"rephrasecoach/models"
	"rephrasecoach/services"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"rubricLabel": func(r models.Rubric) string { return r.Label() },
	}).ParseFS(templatesFS, "templates/*.html")
}

type rubricOption struct {
	Value    models.Rubric
	Label    string
	Selected bool
}

type resultBlock struct {
	Title         string
	HasEvaluation bool
	Evaluation    []stress.Line
	Samples       []stress.Line
}

type flowPage struct {
	View     flow.View
	Rubrics  []rubricOption
	Analysis []stress.Line
	Blocks   []resultBlock
}

type pageData struct {
	Mode     flow.Mode
	Topic    flow.TopicView
	Practice flowPage
	Direct   flowPage
	Levels   []models.Level
}

func rubricOptions(selected models.Rubric) []rubricOption {
	out := make([]rubricOption, 0, len(models.Rubrics))
	for _, r := range models.Rubrics {
		out = append(out, rubricOption{Value: r, Label: r.Label(), Selected: r == selected})
	}
	return out
}

func newFlowPage(v flow.View) flowPage {
	p := flowPage{View: v, Rubrics: rubricOptions(v.Rubric)}
	if v.Result == nil {
		return p
	}
	rs := *v.Result
	withEval := v.Config.RequireEvaluation

	switch rs.Shape {
	case models.ShapeMarkdown:
		p.Analysis = stress.Render(rs.Analysis, stress.Commentary)
	case models.ShapeFlat:
		p.Blocks = append(p.Blocks, block("Feedback", rs.Flat, withEval))
	case models.ShapePerLevel:
		for _, level := range models.Levels {
			entry, ok := rs.Entry(level)
			if !ok {
				entry = awaitingEntry()
			}
			p.Blocks = append(p.Blocks, block(level.Title(), entry, withEval))
		}
	case models.ShapePerLevelRubric:
		for _, level := range models.Levels {
			entry, ok := rs.RubricEntry(level, v.ResultRubric)
			if !ok {
				entry = awaitingEntry()
			}
			p.Blocks = append(p.Blocks, block(level.Title()+" ("+v.ResultRubric.Label()+")", entry, withEval))
		}
	}
	return p
}

func awaitingEntry() models.FeedbackEntry {
	return models.FeedbackEntry{Evaluation: services.AwaitingResult, Samples: services.AwaitingResult}
}

func block(title string, e models.FeedbackEntry, withEval bool) resultBlock {
	b := resultBlock{Title: title, Samples: stress.Render(orAwaiting(e.Samples), stress.Sample)}
	if withEval {
		b.HasEvaluation = true
		b.Evaluation = stress.Render(orAwaiting(e.Evaluation), stress.Commentary)
	}
	return b
}

func orAwaiting(s string) string {
	if s == "" {
		return services.AwaitingResult
	}
	return s
}

// Index renders the page for the session's mode. It never changes state.
func (h *Handlers) Index(c *gin.Context) {
	sess := middlewares.CurrentSession(c)
	c.HTML(http.StatusOK, "index.html", pageData{
		Mode:     sess.Mode(),
		Topic:    sess.Topic.View(),
		Practice: newFlowPage(sess.Practice.View()),
		Direct:   newFlowPage(sess.Direct.View()),
		Levels:   models.Levels,
	})
}

// SwitchMode changes the visible mode, discarding the result of the one left.
func (h *Handlers) SwitchMode(c *gin.Context) {
	sess := middlewares.CurrentSession(c)
	sess.SetMode(flow.ParseMode(c.PostForm("mode")))
	c.Redirect(http.StatusSeeOther, "/")
}

// NewTopic requests a new challenge and clears the practice flow.
func (h *Handlers) NewTopic(c *gin.Context) {
	sess := middlewares.CurrentSession(c)
	sess.SetMode(flow.ModePractice)
	if err := sess.Topic.Generate(c.Request.Context(), h.coach.GenerateTopic); err != nil {
		h.log.Warn("new challenge failed", "session", sess.ID, "error", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitPractice evaluates the posted attempts against the current challenge.
func (h *Handlers) SubmitPractice(c *gin.Context) {
	sess := middlewares.CurrentSession(c)
	sess.SetMode(flow.ModePractice)
	attempts := models.Attempts{
		Vocabulary: c.PostForm("lv1"),
		Structure:  c.PostForm("lv2"),
		Idiomatic:  c.PostForm("lv3"),
	}
	err := sess.SubmitPractice(c.Request.Context(), attempts, models.ParseRubric(c.PostForm("rubric")), h.dispatch)
	h.logSubmit(sess, "practice", err)
	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitDirect rewrites the posted sentence.
func (h *Handlers) SubmitDirect(c *gin.Context) {
	sess := middlewares.CurrentSession(c)
	sess.SetMode(flow.ModeDirect)
	err := sess.SubmitDirect(c.Request.Context(), c.PostForm("sentence"), models.ParseRubric(c.PostForm("rubric")), h.dispatch)
	h.logSubmit(sess, "direct", err)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) logSubmit(sess *flow.Session, name string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, flow.ErrMissingInput), errors.Is(err, flow.ErrInFlight):
		h.log.Debug("submission refused", "flow", name, "session", sess.ID, "reason", err)
	default:
		h.log.Warn("submission failed", "flow", name, "session", sess.ID, "error", err)
	}
}
