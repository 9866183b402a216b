package document

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/quillforge/quill/internal/types"
)

// Page wraps rendered body content in the HTML document shell: head with
// title and styles, a header built from the metadata, the body, and the
// live-reload slot the preview server injects into.
func Page(meta types.Meta, body templ.Component, stylesheet string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := meta.Lang
		if lang == "" {
			lang = "en"
		}
		title := meta.Title
		if title == "" {
			title = "Untitled"
		}

		if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n<meta charset=\"utf-8\"/>\n<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"/>\n<title>%s</title>\n",
			templ.EscapeString(lang), templ.EscapeString(title)); err != nil {
			return err
		}
		if stylesheet != "" {
			if _, err := fmt.Fprintf(w, "<link rel=\"stylesheet\" href=\"%s\"/>\n", templ.EscapeString(stylesheet)); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(w, "<style>%s</style>\n", defaultCSS); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</head>\n<body>\n<header>\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n", templ.EscapeString(title)); err != nil {
			return err
		}
		for _, author := range meta.Authors {
			if _, err := fmt.Fprintf(w, "<p class=\"author\">%s</p>\n", templ.EscapeString(author)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</header>\n<main>\n"); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</main>\n</body>\n</html>\n")
		return err
	})
}

// defaultCSS is the built-in stylesheet covering the macro output classes.
// Kept deliberately small; authors who care supply their own.
const defaultCSS = `
body{max-width:46rem;margin:0 auto;padding:1rem 1.25rem;font:17px/1.55 Georgia,serif;color:#222}
header{margin:2rem 0}
header .author{margin:0;color:#555;font-style:italic}
a{color:#1a4d8f}
span.caps{font-variant:small-caps}
span.mono{font-family:ui-monospace,Menlo,monospace;font-size:.92em}
blockquote{margin:1rem 2rem;color:#444}
blockquote footer.attribution{text-align:right;font-style:italic}
figure{margin:1.5rem 0}
figcaption{color:#555;font-size:.9em}
table{border-collapse:collapse}
th,td{border:1px solid #ccc;padding:.3em .6em;text-align:left}
.pseudocode .pc-title{font-weight:bold;color:#333;margin-bottom:.25rem}
.pc-body{font:14px/1.5 ui-monospace,Menlo,monospace;background:#fafafa;border:1px solid #e2e2e2;border-radius:4px;padding:.6rem .4rem;overflow-x:auto}
.pc-line{display:block;padding-left:calc(3.2rem + var(--indent,0)*1.2rem);text-indent:-1.2rem}
.pc-lineno{display:inline-block;width:2rem;margin-right:.8rem;text-align:right;color:#999;user-select:none;text-indent:0}
.pc-cont .pc-lineno::after{content:""}
.pc-hl{background:#fff3c4}
.pc-hl-first{border-top-left-radius:3px;border-top-right-radius:3px}
.pc-hl-last{border-bottom-left-radius:3px;border-bottom-right-radius:3px}
.pc-kw{font-weight:bold;color:#8f1a3c}
.pc-com{color:#7a7a7a;font-style:italic}
.pc-math{font-style:italic;font-family:Georgia,serif}
.pc-str{color:#1a7a3c}
.pc-num{color:#8a5a00}
.pc-op{color:#555}
pre.structured,code.structured{font-family:ui-monospace,Menlo,monospace}
pre.structured{background:#fafafa;border:1px solid #e2e2e2;border-radius:4px;padding:.6rem .8rem;overflow-x:auto}
.qd-0{color:#b02a2a}.qd-1{color:#b06a00}.qd-2{color:#3c8a00}
.qd-3{color:#007a8a}.qd-4{color:#1a4d8f}.qd-5{color:#7a2a8f}
.qd-str{color:#1a7a3c}.qd-com{color:#7a7a7a;font-style:italic}
.cite a{text-decoration:none}
.bibliography{margin-top:3rem;border-top:1px solid #ddd;padding-top:1rem}
.bib-list li{margin:.4rem 0}
.quill-diag{color:#b02a2a;font-family:ui-monospace,Menlo,monospace;font-size:.85em}
`
