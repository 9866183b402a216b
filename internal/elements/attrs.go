package elements

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// mergeClass returns a copy of attrs with the given classes prepended to
// any author-supplied class attribute. attrs may be nil.
func mergeClass(attrs templ.Attributes, classes ...string) templ.Attributes {
	out := make(templ.Attributes, len(attrs)+1)
	for k, v := range attrs {
		out[k] = v
	}
	parts := append([]string{}, classes...)
	if existing, ok := out["class"].(string); ok && existing != "" {
		parts = append(parts, existing)
	}
	if joined := strings.Join(parts, " "); joined != "" {
		out["class"] = joined
	}
	return out
}

// openTag writes `<tag attrs...>`. Attribute rendering (ordering, escaping,
// boolean handling) is delegated to the templ runtime.
func openTag(ctx context.Context, w io.Writer, tag string, attrs templ.Attributes) error {
	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if len(attrs) > 0 {
		if err := templ.RenderAttributes(ctx, w, attrs); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">")
	return err
}

func closeTag(w io.Writer, tag string) error {
	_, err := io.WriteString(w, "</"+tag+">")
	return err
}

func writeText(w io.Writer, s string) error {
	_, err := io.WriteString(w, templ.EscapeString(s))
	return err
}

// Slug derives a fragment identifier from heading text: lower-cased, with
// runs of non-alphanumerics collapsed to single hyphens.
func Slug(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
