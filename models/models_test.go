package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRubric(t *testing.T) {
	assert.Equal(t, RubricFCE, ParseRubric(" FCE "))
	assert.Equal(t, RubricIELTS, ParseRubric("ielts"))
	assert.Equal(t, RubricIELTS, ParseRubric(""))
	assert.Equal(t, RubricIELTS, ParseRubric("toefl"))
	assert.Equal(t, "FCE", RubricFCE.Label())
}

func TestEvaluationRequest_Fallbacks(t *testing.T) {
	var req EvaluationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"topic":" Walking is good. ","standard":"fce","lv1":"a","lv3":"c"}`), &req))

	assert.Equal(t, "Walking is good.", req.Sentence())
	assert.Equal(t, RubricFCE, req.SelectedRubric())
	assert.Equal(t, "a", req.Get(LevelVocabulary))
	assert.Equal(t, "c", req.Get(LevelIdiomatic))

	req.OriginalSentence = "Preferred."
	req.Rubric = "ielts"
	assert.Equal(t, "Preferred.", req.Sentence())
	assert.Equal(t, RubricIELTS, req.SelectedRubric())
}

func TestParseResponseShape(t *testing.T) {
	shape, err := ParseResponseShape("Per_Level_Rubric")
	require.NoError(t, err)
	assert.Equal(t, ShapePerLevelRubric, shape)
	assert.True(t, shape.IsJSON())
	assert.False(t, ShapeMarkdown.IsJSON())

	_, err = ParseResponseShape("table")
	assert.Error(t, err)
}

func TestResultSet_MarshalJSON(t *testing.T) {
	rs := ResultSet{
		Shape: ShapePerLevelRubric,
		ByRubric: map[Level]map[Rubric]FeedbackEntry{
			LevelStructure: {RubricFCE: {Evaluation: "ok", Samples: "1. x"}},
		},
	}
	out, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"level2":{"fce":{"evaluation":"ok","samples":"1. x"}}}`, string(out))
	assert.False(t, rs.IsEmpty())

	_, err = json.Marshal(ResultSet{})
	assert.Error(t, err)
	assert.True(t, ResultSet{Shape: ShapePerLevel}.IsEmpty())
}
