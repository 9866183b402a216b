// Package pseudocode renders pseudocode and code blocks with line numbers,
// indentation tracking, and line highlighting.
//
// Rendering is a single pass over the block's lines with three pieces of
// mutable state: the current line number (continuation lines do not advance
// it), the indentation depth (a line either adjusts it by a delta or
// overrides it outright), and the highlight run (consecutive highlighted
// lines form one visual group). Labeled lines register anchors on the
// rendering pass so prose can cross-reference "line 7" before or after the
// block appears.
package pseudocode

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/quillforge/quill/internal/engine"
)

// SegmentKind classifies a piece of a pseudocode line.
type SegmentKind int

const (
	SegPlain SegmentKind = iota
	SegKeyword
	SegComment
	SegMath
)

// Segment is a typed piece of line text.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Convenience segment constructors for hand-built blocks.
func Plain(text string) Segment   { return Segment{Kind: SegPlain, Text: text} }
func Keyword(text string) Segment { return Segment{Kind: SegKeyword, Text: text} }
func Comment(text string) Segment { return Segment{Kind: SegComment, Text: text} }
func Math(text string) Segment    { return Segment{Kind: SegMath, Text: text} }

// Line is one rendered line of a block.
type Line struct {
	Segments []Segment
	// Delta adjusts the indentation depth before the line renders. Ignored
	// when Level is set.
	Delta int
	// Level, when >= 0, overrides the running indentation depth. A level
	// may jump down several steps at once.
	Level int
	// Continuation marks a wrapped line: it renders without a line number
	// and does not advance the counter.
	Continuation bool
	// Highlight marks the line as emphasized. Adjacent highlighted lines
	// render as one group.
	Highlight bool
	// Label registers the line's number as a cross-reference anchor.
	Label string
}

// L builds a line from segments with the depth inherited from the previous
// line.
func L(segments ...Segment) Line {
	return Line{Segments: segments, Level: -1}
}

// Block is a pseudocode listing.
type Block struct {
	// Title renders above the listing when non-empty.
	Title string
	// StartAt is the first line number; zero means 1.
	StartAt int
	Lines   []Line
}

const maxDepth = 32

// Pseudocode renders the block. Indentation underflow, a depth beyond any
// plausible listing, or a continuation line before the first numbered line
// halt the pass with a diagnostic.
func Pseudocode(b Block) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lineno := b.StartAt
		if lineno <= 0 {
			lineno = 1
		}
		depth := 0
		lastNumber := 0

		if _, err := io.WriteString(w, `<figure class="pseudocode">`); err != nil {
			return err
		}
		if b.Title != "" {
			if _, err := fmt.Fprintf(w, `<figcaption class="pc-title">%s</figcaption>`, templ.EscapeString(b.Title)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<pre class="pc-body">`); err != nil {
			return err
		}

		for i, ln := range b.Lines {
			if ln.Level >= 0 {
				depth = ln.Level
			} else {
				depth += ln.Delta
			}
			if depth < 0 {
				return engine.Failf(ctx, "pseudocode", "indentation underflow at source line %d", i+1)
			}
			if depth > maxDepth {
				return engine.Failf(ctx, "pseudocode", "indentation depth %d exceeds %d at source line %d", depth, maxDepth, i+1)
			}

			gutter := ""
			if ln.Continuation {
				if lastNumber == 0 {
					return engine.Failf(ctx, "pseudocode", "continuation before any numbered line (source line %d)", i+1)
				}
			} else {
				lastNumber = lineno
				gutter = strconv.Itoa(lineno)
				lineno++
			}

			if ln.Label != "" {
				p := engine.FromContext(ctx)
				if p != nil {
					a := engine.Anchor{ID: ln.Label, Kind: "line", Label: ln.Label, Number: lastNumber}
					if err := p.RegisterAnchor(a); err != nil {
						return engine.Failf(ctx, "pseudocode", "%s", err.Error())
					}
				}
			}

			classes := "pc-line"
			if ln.Continuation {
				classes += " pc-cont"
			}
			if ln.Highlight {
				classes += " pc-hl"
				if i == 0 || !b.Lines[i-1].Highlight {
					classes += " pc-hl-first"
				}
				if i == len(b.Lines)-1 || !b.Lines[i+1].Highlight {
					classes += " pc-hl-last"
				}
			}

			if _, err := fmt.Fprintf(w, `<span class="%s" style="--indent:%d"`, classes, depth); err != nil {
				return err
			}
			if ln.Label != "" {
				if _, err := fmt.Fprintf(w, ` id="%s"`, templ.EscapeString(ln.Label)); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, `><span class="pc-lineno">%s</span><span class="pc-text">`, gutter); err != nil {
				return err
			}
			for _, seg := range ln.Segments {
				if err := writeSegment(w, seg); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</span></span>\n"); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "</pre></figure>")
		return err
	})
}

func writeSegment(w io.Writer, seg Segment) error {
	text := templ.EscapeString(seg.Text)
	switch seg.Kind {
	case SegKeyword:
		_, err := fmt.Fprintf(w, `<span class="pc-kw">%s</span>`, text)
		return err
	case SegComment:
		_, err := fmt.Fprintf(w, `<span class="pc-com">%s</span>`, text)
		return err
	case SegMath:
		_, err := fmt.Fprintf(w, `<span class="pc-math">%s</span>`, text)
		return err
	default:
		_, err := io.WriteString(w, text)
		return err
	}
}
