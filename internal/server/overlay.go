package server

import (
	"fmt"
	"html"
	"strings"

	"github.com/quillforge/quill/internal/errors"
)

// overlayPage renders the error overlay shown when a document fails to
// render: every collected diagnostic, newest save wins via live reload.
func overlayPage(diags []errors.Diag, err error) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"/><title>render error</title>
<style>
body{font:15px/1.5 ui-monospace,Menlo,monospace;background:#1e1e1e;color:#ddd;padding:2rem}
h1{color:#ff6b6b;font-size:1.2rem}
ul{list-style:none;padding:0}
li{margin:.5rem 0;padding:.5rem .75rem;background:#2a2a2a;border-left:3px solid #ff6b6b;border-radius:2px}
li.warning{border-left-color:#e5c07b}
.pos{color:#61afef}
.sev{color:#ff6b6b;text-transform:uppercase;font-size:.8em;margin-right:.5em}
li.warning .sev{color:#e5c07b}
</style>
</head>
<body>
<h1>Document failed to render</h1>
`)
	if len(diags) == 0 && err != nil {
		fmt.Fprintf(&b, "<ul><li>%s</li></ul>\n", html.EscapeString(err.Error()))
	} else {
		b.WriteString("<ul>\n")
		for _, d := range diags {
			class := ""
			if d.Severity == errors.SeverityWarning {
				class = ` class="warning"`
			}
			pos := d.Doc
			if d.Line > 0 {
				pos = fmt.Sprintf("%s:%d:%d", d.Doc, d.Line, d.Column)
			}
			fmt.Fprintf(&b, `<li%s><span class="sev">%s</span><span class="pos">%s</span> %s</li>`+"\n",
				class, html.EscapeString(d.Severity.String()), html.EscapeString(pos), html.EscapeString(d.Message))
		}
		b.WriteString("</ul>\n")
	}
	b.WriteString(reloadScript)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
