package pseudocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlock_Indentation(t *testing.T) {
	b, err := ParseBlock("for i in A\n  swap\n    deep\nend\n")
	require.NoError(t, err)
	require.Len(t, b.Lines, 4)
	assert.Equal(t, 0, b.Lines[0].Level)
	assert.Equal(t, 1, b.Lines[1].Level)
	assert.Equal(t, 2, b.Lines[2].Level)
	assert.Equal(t, 0, b.Lines[3].Level)
}

func TestParseBlock_TabIndent(t *testing.T) {
	b, err := ParseBlock("a\n\tb\n\t\tc")
	require.NoError(t, err)
	assert.Equal(t, 0, b.Lines[0].Level)
	assert.Equal(t, 1, b.Lines[1].Level)
	assert.Equal(t, 2, b.Lines[2].Level)
}

func TestParseBlock_Markers(t *testing.T) {
	b, err := ParseBlock("! key step\n~ continued\n! ~ both")
	require.NoError(t, err)
	require.Len(t, b.Lines, 3)

	assert.True(t, b.Lines[0].Highlight)
	assert.False(t, b.Lines[0].Continuation)

	assert.True(t, b.Lines[1].Continuation)
	assert.False(t, b.Lines[1].Highlight)

	assert.True(t, b.Lines[2].Highlight)
	assert.True(t, b.Lines[2].Continuation)
}

func TestParseBlock_MarkerOrder(t *testing.T) {
	_, err := ParseBlock("~ ! wrong order")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "highlight marker must precede")
}

func TestParseBlock_Labels(t *testing.T) {
	b, err := ParseBlock("swap A[i], A[j] {swap-step}\nplain line\nbraces {not a label} here")
	require.NoError(t, err)

	assert.Equal(t, "swap-step", b.Lines[0].Label)
	textOf := func(ln Line) string {
		var s string
		for _, seg := range ln.Segments {
			s += seg.Text
		}
		return s
	}
	assert.Equal(t, "swap A[i], A[j]", textOf(b.Lines[0]))
	assert.Empty(t, b.Lines[1].Label)
	// A brace group that is not at end of line stays as text.
	assert.Empty(t, b.Lines[2].Label)
}

func TestParseBlock_CommentsAndMath(t *testing.T) {
	b, err := ParseBlock("x := x + 1 # advance\ncost is $O(n^2)$ total")
	require.NoError(t, err)

	var kinds []SegmentKind
	for _, seg := range b.Lines[0].Segments {
		kinds = append(kinds, seg.Kind)
	}
	assert.Contains(t, kinds, SegComment)
	assert.Equal(t, "# advance", b.Lines[0].Segments[len(b.Lines[0].Segments)-1].Text)

	var math *Segment
	for i, seg := range b.Lines[1].Segments {
		if seg.Kind == SegMath {
			math = &b.Lines[1].Segments[i]
		}
	}
	require.NotNil(t, math)
	assert.Equal(t, "O(n^2)", math.Text)
}

func TestParseBlock_UnterminatedMath(t *testing.T) {
	_, err := ParseBlock("cost is $O(n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated math span")
	assert.Contains(t, err.Error(), "line 1")
}

func TestParseBlock_Keywords(t *testing.T) {
	b, err := ParseBlock("if found then return index")
	require.NoError(t, err)

	var kw []string
	for _, seg := range b.Lines[0].Segments {
		if seg.Kind == SegKeyword {
			kw = append(kw, seg.Text)
		}
	}
	assert.Equal(t, []string{"if", "then", "return"}, kw)
}

func TestParseBlock_KeywordInsideWordNotMarked(t *testing.T) {
	b, err := ParseBlock("iffy formula")
	require.NoError(t, err)
	for _, seg := range b.Lines[0].Segments {
		assert.NotEqual(t, SegKeyword, seg.Kind)
	}
}

func TestMeasureIndent_OddSpaceKept(t *testing.T) {
	level, rest := measureIndent("   x")
	assert.Equal(t, 1, level)
	assert.Equal(t, " x", rest)
}
