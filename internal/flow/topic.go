package flow

import (
	"context"
	"sync"
)

// TopicFailureMessage is shown when a new challenge cannot be produced.
const TopicFailureMessage = "Failed to get a new challenge."

type TopicState string

const (
	TopicIdle       TopicState = "idle"
	TopicGenerating TopicState = "generating"
	TopicSet        TopicState = "topic-set"
	TopicFailed     TopicState = "generation-failed"
)

// Generator produces a new challenge sentence.
type Generator func(ctx context.Context) (string, error)

// TopicFlow owns the current challenge. Requesting a new one resets the
// practice flow it feeds, since old answers no longer apply.
type TopicFlow struct {
	practice *Flow

	mu         sync.Mutex
	state      TopicState
	topic      string
	errMsg     string
	generation uint64
}

func NewTopicFlow(initial string, practice *Flow) *TopicFlow {
	return &TopicFlow{practice: practice, state: TopicIdle, topic: initial}
}

type TopicView struct {
	State TopicState
	Topic string
	Error string
}

func (v TopicView) Busy() bool { return v.State == TopicGenerating }

func (t *TopicFlow) View() TopicView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TopicView{State: t.state, Topic: t.topic, Error: t.errMsg}
}

// Current returns the challenge practice submissions should use.
func (t *TopicFlow) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.topic
}

// Generate requests a new challenge. A response that arrives after a newer
// request was made is ignored.
func (t *TopicFlow) Generate(ctx context.Context, gen Generator) error {
	t.mu.Lock()
	if t.state == TopicGenerating {
		t.mu.Unlock()
		return ErrInFlight
	}
	t.generation++
	ticket := t.generation
	t.state = TopicGenerating
	t.errMsg = ""
	t.mu.Unlock()

	if t.practice != nil {
		t.practice.Reset()
	}

	topic, err := gen(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket != t.generation {
		return err
	}
	if err != nil {
		t.state = TopicFailed
		t.errMsg = UserMessage(err, TopicFailureMessage)
		return err
	}
	t.state = TopicSet
	t.topic = topic
	return nil
}

// SetTopic installs a challenge directly, for example from the static bank.
func (t *TopicFlow) SetTopic(topic string) {
	t.mu.Lock()
	t.generation++
	t.state = TopicSet
	t.topic = topic
	t.errMsg = ""
	t.mu.Unlock()

	if t.practice != nil {
		t.practice.Reset()
	}
}
