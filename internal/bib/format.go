package bib

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

// formatItem renders one reference-list entry as HTML. This is the built-in
// house style, not a CSL implementation; documents needing a real citation
// style should post-process through a citation engine.
func formatItem(it Item) string {
	var b strings.Builder
	if authors := formatAuthors(it.Authors); authors != "" {
		fmt.Fprintf(&b, `<span class="bib-authors">%s</span>. `, templ.EscapeString(authors))
	}
	fmt.Fprintf(&b, `<cite>%s</cite>.`, templ.EscapeString(it.Title))
	if it.Container != "" {
		fmt.Fprintf(&b, ` <span class="bib-container">%s</span>,`, templ.EscapeString(it.Container))
	}
	fmt.Fprintf(&b, ` %s.`, templ.EscapeString(yearLabel(it.Year)))
	switch {
	case it.DOI != "":
		url := "https://doi.org/" + it.DOI
		fmt.Fprintf(&b, ` <a href="%s">doi:%s</a>.`, templ.EscapeString(url), templ.EscapeString(it.DOI))
	case it.URL != "":
		fmt.Fprintf(&b, ` <a href="%s">%s</a>.`, templ.EscapeString(it.URL), templ.EscapeString(it.URL))
	}
	return b.String()
}

// authorYear builds the inline author-year form: "Knuth 1974",
// "Aho and Ullman 1972", or "Aho et al. 1974".
func authorYear(it Item) string {
	year := yearLabel(it.Year)
	switch len(it.Authors) {
	case 0:
		title := it.Title
		if len(title) > 24 {
			title = title[:24] + "…"
		}
		return title + " " + year
	case 1:
		return lastName(it.Authors[0]) + " " + year
	case 2:
		return lastName(it.Authors[0]) + " and " + lastName(it.Authors[1]) + " " + year
	default:
		return lastName(it.Authors[0]) + " et al. " + year
	}
}

// formatAuthors joins the full author list in prose style.
func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	case 2:
		return authors[0] + " and " + authors[1]
	default:
		return strings.Join(authors[:len(authors)-1], ", ") + ", and " + authors[len(authors)-1]
	}
}

func lastName(author string) string {
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return author
	}
	return fields[len(fields)-1]
}

func yearLabel(year int) string {
	if year == 0 {
		return "n.d."
	}
	return fmt.Sprintf("%d", year)
}
