package services

import (
	"fmt"
	"strings"

	"rephrasecoach/models"
)

// EvaluationInput is everything the evaluation prompt embeds.
type EvaluationInput struct {
	Sentence string
	Attempts models.Attempts
	Rubric   models.Rubric
}

var topicAreas = []string{
	"environment", "technology", "lifestyle", "the workplace", "education",
	"travel", "animal protection", "social life",
}

func rubricStandard(r models.Rubric) string {
	if r == models.RubricFCE {
		return "Cambridge B2 First (FCE), Grade A"
	}
	return "IELTS Speaking band 8.0"
}

var levelBriefs = map[models.Level]string{
	models.LevelVocabulary: "vocabulary upgrade: swap plain words for precise, higher-band vocabulary. Bold (**) every upgraded word.",
	models.LevelStructure:  "structural transformation: passive voice, cleft sentences, inversion, relative clauses and similar. Start each sample with a [Structure name] tag and bold (**) the key structural words.",
	models.LevelIdiomatic:  "idiomatic, native-speaker phrasing: idioms, phrasal verbs, natural fillers. Bold (**) every idiom or phrase.",
}

// BuildTopicPrompt asks for one fresh practice sentence.
func BuildTopicPrompt() string {
	return fmt.Sprintf(
		`You are an IELTS and Cambridge FCE speaking examiner.
Write one simple declarative English sentence of the kind that commonly appears in IELTS or FCE speaking tasks (B1-B2 difficulty, 10 to 15 words).
Students will use it as the original sentence for a rephrasing exercise.
Pick the subject at random from: %s.

Output only the sentence itself. No quotation marks, no explanation, no translation.`,
		strings.Join(topicAreas, ", "),
	)
}

func attemptLine(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not attempted)"
	}
	return s
}

// BuildEvaluationPrompt asks for feedback on the three attempts in the given shape.
func BuildEvaluationPrompt(in EvaluationInput, shape models.ResponseShape) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert %s speaking coach.\n", rubricStandard(in.Rubric))
	fmt.Fprintf(&b, "Analyze the student's three attempts to rephrase this sentence: \"%s\"\n\n", in.Sentence)
	b.WriteString("Student's attempts:\n")
	fmt.Fprintf(&b, "- Level 1 (Vocabulary): %s\n", attemptLine(in.Attempts.Vocabulary))
	fmt.Fprintf(&b, "- Level 2 (Structure): %s\n", attemptLine(in.Attempts.Structure))
	fmt.Fprintf(&b, "- Level 3 (Idiomatic): %s\n\n", attemptLine(in.Attempts.Idiomatic))

	switch shape {
	case models.ShapeMarkdown:
		b.WriteString(`Please provide:
1. **Evaluation**: brief feedback for each level (accuracy, tone).
2. **Score**: the estimated band or grade.
3. **Stress Guide**: rewrite each of their sentences and use **bold** to mark sentence stress (e.g. I **really** like it).
4. **3 Professional Samples**: three high-level alternatives with stress markings.

Use a friendly, encouraging tone. Format the answer as Markdown.`)
	case models.ShapeFlat:
		b.WriteString(`Respond with a single valid JSON object with exactly two string fields: "evaluation" and "samples".
- "evaluation": brief feedback covering all three attempts.
- "samples": at least 3 high-level alternatives, one per line, numbered "1.", "2.", "3.". Bold (**) the key words.

Example JSON:
{
  "evaluation": "Your vocabulary choice is accurate, but ...",
  "samples": "1. I am **fascinated by** ...\n2. ...\n3. ..."
}`)
	case models.ShapePerLevel:
		b.WriteString("Respond with a single valid JSON object with the fields \"level1\", \"level2\" and \"level3\".\n")
		b.WriteString("Each level field is an object with two string fields: \"evaluation\" (feedback on that attempt) and \"samples\" (at least 3 alternatives, one per line).\n\n")
		writeLevelBriefs(&b)
		b.WriteString(`
Example JSON:
{
  "level1": { "evaluation": "...", "samples": "1. I am **fascinated by** ...\n2. ...\n3. ..." },
  "level2": { "evaluation": "...", "samples": "[Cleft sentence] **It is** the strategy **that** ...\n..." },
  "level3": { "evaluation": "...", "samples": "1. It is **right up my alley** ...\n..." }
}`)
	case models.ShapePerLevelRubric:
		b.WriteString("Judge every attempt against both standards: Cambridge B2 First (FCE) and IELTS Speaking.\n")
		b.WriteString("Respond with a single valid JSON object with the fields \"level1\", \"level2\" and \"level3\".\n")
		b.WriteString("Each level field is an object with the fields \"fce\" and \"ielts\"; each of those is an object with two string fields: \"evaluation\" and \"samples\" (at least 3 alternatives, one per line).\n\n")
		writeLevelBriefs(&b)
		b.WriteString(`
Example JSON:
{
  "level1": {
    "fce":   { "evaluation": "...", "samples": "1. ...\n2. ...\n3. ..." },
    "ielts": { "evaluation": "...", "samples": "1. ...\n2. ...\n3. ..." }
  },
  "level2": { "fce": { "evaluation": "...", "samples": "..." }, "ielts": { "evaluation": "...", "samples": "..." } },
  "level3": { "fce": { "evaluation": "...", "samples": "..." }, "ielts": { "evaluation": "...", "samples": "..." } }
}`)
	}
	if shape.IsJSON() {
		b.WriteString("\n\nProvide ONLY the JSON output without additional text or markdown formatting.")
	}
	return b.String()
}

// BuildDirectPrompt asks for model rewrites of a single sentence, no evaluation.
func BuildDirectPrompt(sentence string, rubric models.Rubric) string {
	var b strings.Builder
	b.WriteString("You are a professional English speaking coach.\n")
	fmt.Fprintf(&b, "Rewrite the student's simple sentence directly into high-scoring expressions that meet the %s standard.\n", rubricStandard(rubric))
	fmt.Fprintf(&b, "Original sentence: \"%s\"\n\n", sentence)
	b.WriteString("Respond with a single valid JSON object with the fields \"level1\", \"level2\" and \"level3\".\n")
	b.WriteString("Each level field contains only a \"samples\" string field, written entirely in English.\n\n")
	writeLevelBriefs(&b)
	b.WriteString(`
Do not add explanations or translations.
Example JSON:
{
  "level1": { "samples": "1. I am **fascinated by** ...\n2. ..." },
  "level2": { "samples": "[Cleft sentence] **It is** the strategy **that** ...\n..." },
  "level3": { "samples": "1. It is **right up my alley** ...\n..." }
}

Provide ONLY the JSON output without additional text or markdown formatting.`)
	return b.String()
}

func writeLevelBriefs(b *strings.Builder) {
	for i, level := range models.Levels {
		fmt.Fprintf(b, "%d. %s (at least 3 samples): %s\n", i+1, level, levelBriefs[level])
	}
}
