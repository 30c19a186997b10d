package services

import (
	"encoding/json"
	"strings"
	"testing"

	"rephrasecoach/internal/stress"
	"rephrasecoach/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeField_FalsyValuesAwaitResult(t *testing.T) {
	for _, v := range []any{nil, "", false, json.Number("0"), float64(0), []any{}, []any{""}, []any{"", "  "}, "   "} {
		assert.Equal(t, AwaitingResult, NormalizeField(v), "value %#v", v)
	}
}

func TestNormalizeField_Variants(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "text", in: "1. I am **fascinated by** board games.", want: "1. I am **fascinated by** board games."},
		{name: "sequence skips empty strings", in: []any{"first", "", "second"}, want: "first\n\nsecond"},
		{name: "sequence keeps falsy items", in: []any{"first", nil, json.Number("0"), false}, want: "first\n\nnull\n\n0\n\nfalse"},
		{name: "nested sequence", in: []any{[]any{"a", "b"}, map[string]any{"n": json.Number("1")}}, want: "a\n\nb\n\n{\n  \"n\": 1\n}"},
		{name: "string slice", in: []string{"a", "b"}, want: "a\n\nb"},
		{name: "number", in: json.Number("8.5"), want: "8.5"},
		{name: "true", in: true, want: "true"},
		{name: "object", in: map[string]any{"note": "ok"}, want: "{\n  \"note\": \"ok\"\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeField(tt.in))
		})
	}
}

func TestClassify_Kinds(t *testing.T) {
	assert.Equal(t, FieldAbsent, Classify(nil).Kind)
	assert.Equal(t, FieldText, Classify("x").Kind)
	assert.Equal(t, FieldSequence, Classify([]any{"x"}).Kind)
	assert.Equal(t, FieldStructured, Classify(map[string]any{}).Kind)
	assert.Equal(t, "structured", FieldStructured.String())
}

func TestParseResultSet_Markdown(t *testing.T) {
	rs, err := ParseResultSet("  ## Evaluation\nGood job.  ", models.ShapeMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "## Evaluation\nGood job.", rs.Analysis)

	rs, err = ParseResultSet("", models.ShapeMarkdown)
	require.NoError(t, err)
	assert.Equal(t, AwaitingResult, rs.Analysis)
}

func TestParseResultSet_Flat(t *testing.T) {
	rs, err := ParseResultSet(`{"evaluation":"Nice.","samples":["1. a","2. b"]}`, models.ShapeFlat)
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackEntry{Evaluation: "Nice.", Samples: "1. a\n\n2. b"}, rs.Flat)
}

func TestParseResultSet_PerLevelAbsorbsDrift(t *testing.T) {
	raw := "```json\n" + `{
  "Level1": {"Evaluation": "Accurate.", "samples": "1. x\n2. y\n3. z"},
  "level2": {"evaluation": "", "samples": ["[Cleft] It is **x** that", "[Inversion] Rarely do I"]},
  "level3": "1. right up my alley"
}` + "\n```"

	rs, err := ParseResultSet(raw, models.ShapePerLevel)
	require.NoError(t, err)

	l1, ok := rs.Entry(models.LevelVocabulary)
	require.True(t, ok)
	assert.Equal(t, "Accurate.", l1.Evaluation)
	assert.Equal(t, "1. x\n2. y\n3. z", l1.Samples)

	l2, _ := rs.Entry(models.LevelStructure)
	assert.Equal(t, AwaitingResult, l2.Evaluation)
	assert.Equal(t, "[Cleft] It is **x** that\n\n[Inversion] Rarely do I", l2.Samples)

	l3, _ := rs.Entry(models.LevelIdiomatic)
	assert.Equal(t, AwaitingResult, l3.Evaluation)
	assert.Equal(t, "1. right up my alley", l3.Samples)
}

func TestParseResultSet_PerLevelRubric(t *testing.T) {
	raw := `{"level1":{"fce":{"evaluation":"B2 ok","samples":"1. fce"},"ielts":{"evaluation":"band 7","samples":"1. ielts"}}}`

	rs, err := ParseResultSet(raw, models.ShapePerLevelRubric)
	require.NoError(t, err)

	fce, ok := rs.RubricEntry(models.LevelVocabulary, models.RubricFCE)
	require.True(t, ok)
	assert.Equal(t, "1. fce", fce.Samples)
	ielts, ok := rs.RubricEntry(models.LevelVocabulary, models.RubricIELTS)
	require.True(t, ok)
	assert.Equal(t, "band 7", ielts.Evaluation)
	_, ok = rs.RubricEntry(models.LevelStructure, models.RubricFCE)
	assert.False(t, ok)
}

func TestParseResultSet_Malformed(t *testing.T) {
	for _, raw := range []string{"", "not json", `["level1"]`, `{"level1": {}} {"x":1}`, `"text"`} {
		_, err := ParseResultSet(raw, models.ShapePerLevel)
		assert.ErrorIs(t, err, ErrMalformedOutput, "raw %q", raw)
	}
}

func TestParseSamplesOnly_RendersThreeLines(t *testing.T) {
	raw := `{"level1":{"samples":"1. I am **fascinated by** board games.\n2. I **relish** board games.\n3. I **adore** board games."}}`

	rs, err := ParseSamplesOnly(raw)
	require.NoError(t, err)

	entry, ok := rs.Entry(models.LevelVocabulary)
	require.True(t, ok)
	assert.Empty(t, entry.Evaluation)

	lines := stress.Render(entry.Samples, stress.Sample)
	require.Len(t, lines, 3)
	for _, line := range lines {
		var emphasized []string
		for _, seg := range line.Segments {
			if seg.Emphasized() {
				emphasized = append(emphasized, seg.Text)
			}
		}
		assert.Len(t, emphasized, 1)
		assert.False(t, strings.Contains(stress.PlainText([]stress.Line{line}), "**"))
	}

	_, ok = rs.Entry(models.LevelStructure)
	assert.False(t, ok)
}
