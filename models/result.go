package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResponseShape names the layout a model is asked to answer in.
type ResponseShape string

const (
	ShapeMarkdown       ResponseShape = "markdown"
	ShapeFlat           ResponseShape = "flat"
	ShapePerLevel       ResponseShape = "per_level"
	ShapePerLevelRubric ResponseShape = "per_level_rubric"
)

var shapes = []ResponseShape{ShapeMarkdown, ShapeFlat, ShapePerLevel, ShapePerLevelRubric}

func ParseResponseShape(s string) (ResponseShape, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, shape := range shapes {
		if string(shape) == s {
			return shape, nil
		}
	}
	return "", fmt.Errorf("unknown response shape %q", s)
}

// IsJSON reports whether the shape is a strict JSON document.
func (s ResponseShape) IsJSON() bool {
	return s != ShapeMarkdown
}

// FeedbackEntry is the display-ready result for one level. Both fields are
// plain text by the time they get here.
type FeedbackEntry struct {
	Evaluation string `json:"evaluation,omitempty"`
	Samples    string `json:"samples"`
}

// ResultSet is one successful response, normalized. Only the fields matching
// Shape are populated.
type ResultSet struct {
	Shape    ResponseShape
	Analysis string
	Flat     FeedbackEntry
	Levels   map[Level]FeedbackEntry
	ByRubric map[Level]map[Rubric]FeedbackEntry
}

// Entry returns the per-level entry, if present.
func (r ResultSet) Entry(l Level) (FeedbackEntry, bool) {
	e, ok := r.Levels[l]
	return e, ok
}

// RubricEntry returns the entry for a level under one rubric, if present.
func (r ResultSet) RubricEntry(l Level, rubric Rubric) (FeedbackEntry, bool) {
	byRubric, ok := r.ByRubric[l]
	if !ok {
		return FeedbackEntry{}, false
	}
	e, ok := byRubric[rubric]
	return e, ok
}

// IsEmpty reports whether nothing was produced.
func (r ResultSet) IsEmpty() bool {
	switch r.Shape {
	case ShapeMarkdown:
		return r.Analysis == ""
	case ShapeFlat:
		return r.Flat == FeedbackEntry{}
	case ShapePerLevel:
		return len(r.Levels) == 0
	case ShapePerLevelRubric:
		return len(r.ByRubric) == 0
	default:
		return true
	}
}

// MarshalJSON writes the variant layout the HTTP API has always returned.
func (r ResultSet) MarshalJSON() ([]byte, error) {
	switch r.Shape {
	case ShapeMarkdown:
		return json.Marshal(map[string]string{"analysis": r.Analysis})
	case ShapeFlat:
		return json.Marshal(r.Flat)
	case ShapePerLevel:
		out := make(map[string]FeedbackEntry, len(r.Levels))
		for level, entry := range r.Levels {
			out[string(level)] = entry
		}
		return json.Marshal(out)
	case ShapePerLevelRubric:
		out := make(map[string]map[string]FeedbackEntry, len(r.ByRubric))
		for level, byRubric := range r.ByRubric {
			inner := make(map[string]FeedbackEntry, len(byRubric))
			for rubric, entry := range byRubric {
				inner[string(rubric)] = entry
			}
			out[string(level)] = inner
		}
		return json.Marshal(out)
	default:
		return nil, fmt.Errorf("result set has no shape")
	}
}
