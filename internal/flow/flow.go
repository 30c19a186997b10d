// Package flow drives the submit/response cycle of each UI mode. A Flow holds
// one mode's input, result, selected rubric and error, and never touches any
// other Flow's state.
package flow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"rephrasecoach/models"
)

var (
	// ErrMissingInput blocks a submission that lacks its required field.
	ErrMissingInput = errors.New("missing required input")
	// ErrInFlight blocks a second submission while one is outstanding.
	ErrInFlight = errors.New("a request is already in flight")
)

// GenericNetworkMessage is shown when a failure carries no server text.
const GenericNetworkMessage = "Network or API error, please retry later."

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Requirement is the minimum input a flow accepts.
type Requirement int

const (
	RequireFirstAttempt Requirement = iota
	RequireSentence
)

// Config describes one flow variant.
type Config struct {
	Name              string
	Shape             models.ResponseShape
	RequireEvaluation bool
	RubricSplit       bool
	Required          Requirement
}

// PracticeConfig is the three-attempt flow answering in shape.
func PracticeConfig(shape models.ResponseShape) Config {
	return Config{
		Name:              "practice",
		Shape:             shape,
		RequireEvaluation: shape != models.ShapeMarkdown,
		RubricSplit:       shape == models.ShapePerLevelRubric,
		Required:          RequireFirstAttempt,
	}
}

// DirectConfig is the single-sentence rewrite flow; it has no evaluation field.
func DirectConfig() Config {
	return Config{
		Name:     "direct",
		Shape:    models.ShapePerLevel,
		Required: RequireSentence,
	}
}

// Policy settles what a failure does to an earlier success.
type Policy struct {
	RetainResultOnFailure bool
}

type Input struct {
	Sentence string
	Attempts models.Attempts
	Rubric   models.Rubric
}

// Ticket identifies one submission. Completions with an outdated ticket are dropped.
type Ticket struct {
	generation uint64
	Input      Input
}

// Dispatcher performs the request for a submission.
type Dispatcher func(ctx context.Context, cfg Config, in Input) (models.ResultSet, error)

// MessageError carries text meant for the user as is.
type MessageError struct {
	Message string
	Err     error
}

func (e *MessageError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *MessageError) Unwrap() error { return e.Err }

// UserMessage picks the text shown for a failure.
func UserMessage(err error, fallback string) string {
	var me *MessageError
	if errors.As(err, &me) && me.Message != "" {
		return me.Message
	}
	return fallback
}

type Flow struct {
	cfg    Config
	policy Policy

	mu           sync.Mutex
	state        State
	draft        Input
	rubric       models.Rubric
	result       *models.ResultSet
	resultRubric models.Rubric
	errMsg       string
	generation   uint64
}

func New(cfg Config, policy Policy) *Flow {
	return &Flow{cfg: cfg, policy: policy, state: StateIdle, rubric: models.RubricIELTS}
}

func (f *Flow) Config() Config { return f.cfg }

// View is a copy of a flow's displayed state.
type View struct {
	Config       Config
	State        State
	Draft        Input
	Rubric       models.Rubric
	Result       *models.ResultSet
	ResultRubric models.Rubric
	Error        string
}

func (v View) Busy() bool { return v.State == StateSubmitting }

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := View{
		Config:       f.cfg,
		State:        f.state,
		Draft:        f.draft,
		Rubric:       f.rubric,
		ResultRubric: f.resultRubric,
		Error:        f.errMsg,
	}
	if f.result != nil {
		rs := *f.result
		v.Result = &rs
	}
	return v
}

// SetDraft remembers what the user typed, without submitting it.
func (f *Flow) SetDraft(in Input) {
	f.mu.Lock()
	f.draft = in
	f.mu.Unlock()
}

// SetRubric changes the selected rubric. A displayed result keeps its own.
func (f *Flow) SetRubric(r models.Rubric) {
	f.mu.Lock()
	f.rubric = r
	f.mu.Unlock()
}

func (f *Flow) validate(in Input) error {
	switch f.cfg.Required {
	case RequireSentence:
		if strings.TrimSpace(in.Sentence) == "" {
			return ErrMissingInput
		}
	default:
		if strings.TrimSpace(in.Attempts.Vocabulary) == "" {
			return ErrMissingInput
		}
	}
	return nil
}

// Begin moves the flow to submitting. It refuses incomplete input and
// concurrent submissions without changing any state.
func (f *Flow) Begin(in Input) (Ticket, error) {
	if err := f.validate(in); err != nil {
		return Ticket{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return Ticket{}, ErrInFlight
	}
	f.generation++
	f.state = StateSubmitting
	f.errMsg = ""
	f.rubric = in.Rubric
	return Ticket{generation: f.generation, Input: in}, nil
}

// Complete applies the outcome of t. It reports false when t is stale.
func (f *Flow) Complete(t Ticket, rs models.ResultSet, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.generation != f.generation {
		return false
	}
	if err != nil {
		f.state = StateFailed
		f.errMsg = UserMessage(err, GenericNetworkMessage)
		if !f.policy.RetainResultOnFailure {
			f.result = nil
			f.resultRubric = ""
		}
		return true
	}
	f.state = StateSuccess
	f.result = &rs
	f.resultRubric = t.Input.Rubric
	return true
}

// Submit runs one full cycle. The dispatcher is called without the lock held.
func (f *Flow) Submit(ctx context.Context, in Input, dispatch Dispatcher) error {
	t, err := f.Begin(in)
	if err != nil {
		return err
	}
	rs, err := dispatch(ctx, f.cfg, t.Input)
	f.Complete(t, rs, err)
	return err
}

// Reset clears input, result and error, and fences any outstanding request.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.state = StateIdle
	f.draft = Input{}
	f.result = nil
	f.resultRubric = ""
	f.errMsg = ""
}

// Discard drops the result and error but keeps the draft, and fences any
// outstanding request.
func (f *Flow) Discard() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.state = StateIdle
	f.result = nil
	f.resultRubric = ""
	f.errMsg = ""
}
