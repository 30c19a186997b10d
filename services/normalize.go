package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"rephrasecoach/models"
)

// AwaitingResult stands in for any field the model left empty.
const AwaitingResult = "Awaiting result..."

// FieldKind classifies a value decoded from model output.
type FieldKind int

const (
	FieldAbsent FieldKind = iota
	FieldText
	FieldSequence
	FieldStructured
)

func (k FieldKind) String() string {
	switch k {
	case FieldAbsent:
		return "absent"
	case FieldText:
		return "text"
	case FieldSequence:
		return "sequence"
	default:
		return "structured"
	}
}

// FieldValue is the boundary form of a field whose shape the model does not
// guarantee. Convert it with Text before anything else touches it.
type FieldValue struct {
	Kind  FieldKind
	text  string
	items []any
	raw   any
}

// Classify tags a decoded JSON value. Falsy values (nil, "", false, 0) are absent.
func Classify(v any) FieldValue {
	switch t := v.(type) {
	case nil:
		return FieldValue{Kind: FieldAbsent}
	case string:
		if t == "" {
			return FieldValue{Kind: FieldAbsent}
		}
		return FieldValue{Kind: FieldText, text: t}
	case bool:
		if !t {
			return FieldValue{Kind: FieldAbsent}
		}
		return FieldValue{Kind: FieldText, text: "true"}
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return FieldValue{Kind: FieldAbsent}
		}
		return FieldValue{Kind: FieldText, text: t.String()}
	case float64:
		if t == 0 {
			return FieldValue{Kind: FieldAbsent}
		}
		return FieldValue{Kind: FieldText, text: fmt.Sprint(t)}
	case []any:
		return FieldValue{Kind: FieldSequence, items: t}
	case []string:
		items := make([]any, 0, len(t))
		for _, item := range t {
			items = append(items, item)
		}
		return FieldValue{Kind: FieldSequence, items: items}
	default:
		return FieldValue{Kind: FieldStructured, raw: v}
	}
}

// Text is the canonical display string. It is never empty.
func (f FieldValue) Text() string {
	s := f.render()
	if strings.TrimSpace(s) == "" {
		return AwaitingResult
	}
	return s
}

func (f FieldValue) render() string {
	switch f.Kind {
	case FieldText:
		return f.text
	case FieldSequence:
		parts := make([]string, 0, len(f.items))
		for _, item := range f.items {
			if s := renderItem(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n\n")
	case FieldStructured:
		return prettyJSON(f.raw)
	default:
		return ""
	}
}

// renderItem renders one sequence element. Unlike a top-level field, a falsy
// element is kept as its JSON text; only an empty string is dropped.
func renderItem(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any, []string:
		return Classify(t).render()
	default:
		return prettyJSON(t)
	}
}

func prettyJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}

// NormalizeField turns any decoded value into display text.
func NormalizeField(v any) string {
	return Classify(v).Text()
}

// ParseResultSet converts raw model output into a ResultSet of the given shape.
// Markdown never fails. JSON shapes fail with ErrMalformedOutput when the
// document is not a JSON object; field-level shape drift is absorbed.
func ParseResultSet(raw string, shape models.ResponseShape) (models.ResultSet, error) {
	if shape == models.ShapeMarkdown {
		return models.ResultSet{Shape: shape, Analysis: NormalizeField(strings.TrimSpace(raw))}, nil
	}

	doc, err := decodeObject(raw)
	if err != nil {
		return models.ResultSet{}, err
	}

	rs := models.ResultSet{Shape: shape}
	switch shape {
	case models.ShapeFlat:
		rs.Flat = entryFrom(doc)
	case models.ShapePerLevel:
		rs.Levels = make(map[models.Level]models.FeedbackEntry)
		for _, level := range models.Levels {
			if obj, ok := lookupObject(doc, string(level)); ok {
				rs.Levels[level] = entryFrom(obj)
			}
		}
	case models.ShapePerLevelRubric:
		rs.ByRubric = make(map[models.Level]map[models.Rubric]models.FeedbackEntry)
		for _, level := range models.Levels {
			levelObj, ok := lookupObject(doc, string(level))
			if !ok {
				continue
			}
			byRubric := make(map[models.Rubric]models.FeedbackEntry)
			for _, rubric := range models.Rubrics {
				if obj, ok := lookupObject(levelObj, string(rubric)); ok {
					byRubric[rubric] = entryFrom(obj)
				}
			}
			if len(byRubric) > 0 {
				rs.ByRubric[level] = byRubric
			}
		}
	default:
		return models.ResultSet{}, fmt.Errorf("unsupported response shape %q", shape)
	}
	return rs, nil
}

// ParseSamplesOnly reads the per-level {samples} document of the direct flow.
func ParseSamplesOnly(raw string) (models.ResultSet, error) {
	doc, err := decodeObject(raw)
	if err != nil {
		return models.ResultSet{}, err
	}
	rs := models.ResultSet{Shape: models.ShapePerLevel, Levels: make(map[models.Level]models.FeedbackEntry)}
	for _, level := range models.Levels {
		if obj, ok := lookupObject(doc, string(level)); ok {
			rs.Levels[level] = models.FeedbackEntry{Samples: NormalizeField(lookup(obj, "samples"))}
		}
	}
	return rs, nil
}

func decodeObject(raw string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(cleanModelOutput(raw))))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON document", ErrMalformedOutput)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %s", ErrMalformedOutput, Classify(v).Kind)
	}
	return obj, nil
}

func entryFrom(obj map[string]any) models.FeedbackEntry {
	return models.FeedbackEntry{
		Evaluation: NormalizeField(lookup(obj, "evaluation")),
		Samples:    NormalizeField(lookup(obj, "samples")),
	}
}

// lookup finds key exactly, then case-insensitively.
func lookup(obj map[string]any, key string) any {
	if v, ok := obj[key]; ok {
		return v
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

// lookupObject returns the value at key when present. A non-object value is
// wrapped as the samples of an entry, so a level answered with a bare string
// or list still shows up.
func lookupObject(obj map[string]any, key string) (map[string]any, bool) {
	v := lookup(obj, key)
	switch t := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return t, true
	default:
		return map[string]any{"samples": t}, true
	}
}
