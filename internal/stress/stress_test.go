package stress

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_BoldSpanIsOneEmphasizedSegment(t *testing.T) {
	got := Render("I **really** like it", Commentary)

	want := []Line{{Segments: []Segment{
		{Text: "I ", Style: Plain},
		{Text: "really", Style: Emphasis},
		{Text: " like it", Style: Plain},
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SampleContextHighlights(t *testing.T) {
	got := Render("1. I am **fascinated by** board games", Sample)

	require.Len(t, got, 1)
	require.Len(t, got[0].Segments, 3)
	assert.Equal(t, Segment{Text: "fascinated by", Style: Highlight}, got[0].Segments[1])
	assert.Equal(t, "key-term", got[0].Segments[1].Style.Class())
}

func TestRender_UnterminatedMarkerStaysLiteral(t *testing.T) {
	got := Render("this is **not closed", Commentary)

	want := []Line{{Segments: []Segment{{Text: "this is **not closed", Style: Plain}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_MarkerDoesNotSpanLines(t *testing.T) {
	got := Render("start **open\nclose** end", Commentary)

	require.Len(t, got, 2)
	for _, line := range got {
		for _, seg := range line.Segments {
			assert.False(t, seg.Emphasized(), "segment %q should be plain", seg.Text)
		}
	}
}

func TestRender_NonGreedyPairs(t *testing.T) {
	got := Render("**It is** the strategy **that** wins", Sample)

	want := []Line{{Segments: []Segment{
		{Text: "It is", Style: Highlight},
		{Text: " the strategy ", Style: Plain},
		{Text: "that", Style: Highlight},
		{Text: " wins", Style: Plain},
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_PreservesLineCountAndBlankLines(t *testing.T) {
	text := "1. first\n\n2. **second**\n\n3. third"
	got := Render(text, Sample)

	require.Len(t, got, 5)
	assert.False(t, got[0].Empty())
	assert.True(t, got[1].Empty())
	assert.Equal(t, "second", got[2].Segments[1].Text)
	assert.True(t, got[3].Empty())
	assert.Equal(t, "1. first\n\n2. second\n\n3. third", PlainText(got))
}

func TestRender_EmptyMarkersStayLiteral(t *testing.T) {
	got := Render("****", Commentary)

	require.Len(t, got, 1)
	assert.Equal(t, []Segment{{Text: "****", Style: Plain}}, got[0].Segments)
}

func TestRender_DropsCarriageReturn(t *testing.T) {
	got := Render("a\r\nb", Commentary)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Segments[0].Text)
	assert.Equal(t, "b", got[1].Segments[0].Text)
}
