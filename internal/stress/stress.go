// Package stress splits model text into lines of plain and emphasized
// segments, following the **bold** convention models use to mark stressed
// words and high-value vocabulary.
package stress

import (
	"regexp"
	"strings"
)

// Context says where the text is shown, which decides how emphasis looks.
type Context int

const (
	// Commentary is evaluative feedback.
	Commentary Context = iota
	// Sample is a model answer; emphasis there marks the term to learn.
	Sample
)

type Style int

const (
	Plain Style = iota
	Emphasis
	Highlight
)

// Class is the CSS class the page template uses for the style.
func (s Style) Class() string {
	switch s {
	case Emphasis:
		return "stress"
	case Highlight:
		return "key-term"
	default:
		return ""
	}
}

type Segment struct {
	Text  string
	Style Style
}

func (s Segment) Emphasized() bool {
	return s.Style != Plain
}

// Line is one newline-delimited line. An empty line has no segments.
type Line struct {
	Segments []Segment
}

func (l Line) Empty() bool {
	return len(l.Segments) == 0
}

// boldPattern needs a closing marker on the same line; a lone ** stays literal.
var boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

// Render splits text into lines and each line into styled segments.
func Render(text string, ctx Context) []Line {
	emphasis := Emphasis
	if ctx == Sample {
		emphasis = Highlight
	}

	rawLines := strings.Split(text, "\n")
	lines := make([]Line, 0, len(rawLines))
	for _, raw := range rawLines {
		lines = append(lines, renderLine(strings.TrimSuffix(raw, "\r"), emphasis))
	}
	return lines
}

func renderLine(line string, emphasis Style) Line {
	if line == "" {
		return Line{}
	}
	var segs []Segment
	last := 0
	for _, m := range boldPattern.FindAllStringSubmatchIndex(line, -1) {
		if m[0] > last {
			segs = append(segs, Segment{Text: line[last:m[0]], Style: Plain})
		}
		segs = append(segs, Segment{Text: line[m[2]:m[3]], Style: emphasis})
		last = m[1]
	}
	if last < len(line) {
		segs = append(segs, Segment{Text: line[last:], Style: Plain})
	}
	return Line{Segments: segs}
}

// PlainText joins the rendered lines back without markers.
func PlainText(lines []Line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, s := range l.Segments {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
