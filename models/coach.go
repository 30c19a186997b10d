package models

import "strings"

// Rubric is the exam standard a rewrite is judged against. It only changes
// prompt wording, never the shape of a result.
type Rubric string

const (
	RubricFCE   Rubric = "fce"
	RubricIELTS Rubric = "ielts"
)

// Rubrics lists the supported standards in display order.
var Rubrics = []Rubric{RubricFCE, RubricIELTS}

// ParseRubric maps user input to a Rubric. Anything other than FCE is IELTS.
func ParseRubric(s string) Rubric {
	if strings.EqualFold(strings.TrimSpace(s), string(RubricFCE)) {
		return RubricFCE
	}
	return RubricIELTS
}

func (r Rubric) Label() string {
	if r == RubricFCE {
		return "FCE"
	}
	return "IELTS"
}

// Level is one of the three rewrite dimensions.
type Level string

const (
	LevelVocabulary Level = "level1"
	LevelStructure  Level = "level2"
	LevelIdiomatic  Level = "level3"
)

// Levels lists the levels in ascending difficulty.
var Levels = []Level{LevelVocabulary, LevelStructure, LevelIdiomatic}

func (l Level) Title() string {
	switch l {
	case LevelVocabulary:
		return "Vocabulary"
	case LevelStructure:
		return "Structure"
	case LevelIdiomatic:
		return "Idiomatic"
	default:
		return string(l)
	}
}

// Attempts holds the user's three rewrites of the current challenge.
type Attempts struct {
	Vocabulary string `json:"lv1"`
	Structure  string `json:"lv2"`
	Idiomatic  string `json:"lv3"`
}

func (a Attempts) Get(l Level) string {
	switch l {
	case LevelVocabulary:
		return a.Vocabulary
	case LevelStructure:
		return a.Structure
	case LevelIdiomatic:
		return a.Idiomatic
	default:
		return ""
	}
}

// Trimmed returns a copy with surrounding whitespace removed.
func (a Attempts) Trimmed() Attempts {
	return Attempts{
		Vocabulary: strings.TrimSpace(a.Vocabulary),
		Structure:  strings.TrimSpace(a.Structure),
		Idiomatic:  strings.TrimSpace(a.Idiomatic),
	}
}

// EvaluationRequest is the payload of POST /api/rephrase.
type EvaluationRequest struct {
	Topic            string `json:"topic"`
	OriginalSentence string `json:"originalSentence"`
	Rubric           string `json:"rubric"`
	Standard         string `json:"standard"`
	Attempts
}

// Sentence returns whichever sentence field the client filled in.
func (r EvaluationRequest) Sentence() string {
	if s := strings.TrimSpace(r.OriginalSentence); s != "" {
		return s
	}
	return strings.TrimSpace(r.Topic)
}

// SelectedRubric prefers "rubric" and falls back to the older "standard" key.
func (r EvaluationRequest) SelectedRubric() Rubric {
	if r.Rubric != "" {
		return ParseRubric(r.Rubric)
	}
	return ParseRubric(r.Standard)
}

// DirectRequest is the payload of POST /api/direct.
type DirectRequest struct {
	Sentence string `json:"sentence"`
	Topic    string `json:"topic"`
	Rubric   string `json:"rubric"`
	Standard string `json:"standard"`
}

func (r DirectRequest) Target() string {
	if s := strings.TrimSpace(r.Sentence); s != "" {
		return s
	}
	return strings.TrimSpace(r.Topic)
}

func (r DirectRequest) SelectedRubric() Rubric {
	if r.Rubric != "" {
		return ParseRubric(r.Rubric)
	}
	return ParseRubric(r.Standard)
}

// TopicResponse is the body of GET /api/generate.
type TopicResponse struct {
	Topic string `json:"topic"`
}
