//go:build property

package pseudocode

import (
	"context"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/quillforge/quill/internal/engine"
)

var linenoRe = regexp.MustCompile(`<span class="pc-lineno">(\d*)</span>`)

func buildBlock(rng *rand.Rand, lineCount, startAt int) Block {
	b := Block{StartAt: startAt}
	numbered := false
	for i := 0; i < lineCount; i++ {
		ln := Line{Segments: []Segment{Plain("step " + strconv.Itoa(i))}, Level: rng.Intn(5)}
		if numbered && rng.Intn(4) == 0 {
			ln.Continuation = true
		} else {
			numbered = true
		}
		if rng.Intn(3) == 0 {
			ln.Highlight = true
		}
		b.Lines = append(b.Lines, ln)
	}
	return b
}

// TestPseudocodeProperties validates the line numbering state machine
func TestPseudocodeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9753)
	parameters.MinSuccessfulTests = 150

	properties := gopter.NewProperties(parameters)

	// Property: numbered gutters count up by one from StartAt; continuation
	// gutters are empty and never advance the counter
	properties.Property("line numbers are consecutive from the start line", prop.ForAll(
		func(seed int64, lineCount, startAt int) bool {
			b := buildBlock(rand.New(rand.NewSource(seed)), lineCount, startAt)

			ctx, _ := engine.NewPass(context.Background())
			var sb strings.Builder
			if err := Pseudocode(b).Render(ctx, &sb); err != nil {
				return false
			}

			next := startAt
			for _, m := range linenoRe.FindAllStringSubmatch(sb.String(), -1) {
				if m[1] == "" {
					continue
				}
				n, err := strconv.Atoi(m[1])
				if err != nil || n != next {
					return false
				}
				next++
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 40),
		gen.IntRange(1, 500),
	))

	// Property: pc-hl-first and pc-hl-last counts match, one pair per
	// contiguous highlighted run
	properties.Property("highlight groups open and close in pairs", prop.ForAll(
		func(seed int64, lineCount int) bool {
			b := buildBlock(rand.New(rand.NewSource(seed)), lineCount, 1)

			runs := 0
			for i, ln := range b.Lines {
				if ln.Highlight && (i == 0 || !b.Lines[i-1].Highlight) {
					runs++
				}
			}

			ctx, _ := engine.NewPass(context.Background())
			var sb strings.Builder
			if err := Pseudocode(b).Render(ctx, &sb); err != nil {
				return false
			}
			html := sb.String()
			return strings.Count(html, "pc-hl-first") == runs &&
				strings.Count(html, "pc-hl-last") == runs
		},
		gen.Int64(),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}
