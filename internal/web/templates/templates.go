// Package templates holds the HTML components served by the web layer.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/colarrange/internal/core"
)

// IndexParams feeds the index page.
type IndexParams struct {
	Arrangements []core.Arrangement
	MaxFileSize  int64
}

// Index renders the single-page workspace UI.
func Index(p IndexParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<title>CSV Column Arranger</title>`)
		b.WriteString(`<style>` + pageStyle + `</style></head><body>`)
		b.WriteString(`<h1>CSV Column Arranger</h1>`)

		fmt.Fprintf(&b, `<form id="upload" data-max-size="%d">`, p.MaxFileSize)
		b.WriteString(`<input type="file" name="file" accept=".csv,.txt,text/csv">`)
		b.WriteString(`<button type="submit">Open</button></form>`)
		b.WriteString(`<div id="alerts"></div><div id="workspace"></div>`)

		b.WriteString(`<h2>Saved arrangements</h2>`)
		if err := arrangementList(p.Arrangements).Render(ctx, &b); err != nil {
			return err
		}

		b.WriteString(`<script>` + pageScript + `</script></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func arrangementList(arrs []core.Arrangement) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(arrs) == 0 {
			_, err := io.WriteString(w, `<p class="muted">No saved arrangements yet.</p>`)
			return err
		}

		var b strings.Builder
		b.WriteString(`<ul id="arrangements">`)
		for _, a := range arrs {
			fmt.Fprintf(&b, `<li data-id="%s">%s <span class="muted">(%d columns, %s)</span></li>`,
				templ.EscapeString(a.ID),
				templ.EscapeString(a.Name),
				a.ColumnOrder.Len(),
				a.ColumnOrder.Format,
			)
		}
		b.WriteString(`</ul>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ErrorAlert renders a dismissible error fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert alert-error" role="alert">`)
		fmt.Fprintf(&b, `<strong>%s</strong>`, templ.EscapeString(message))
		if action != "" {
			fmt.Fprintf(&b, ` <span>%s</span>`, templ.EscapeString(action))
		}
		fmt.Fprintf(&b, ` <code>%s</code></div>`, templ.EscapeString(code))
		_, err := io.WriteString(w, b.String())
		return err
	})
}

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;max-width:60rem}
.muted{color:#666}.alert-error{background:#fde8e8;border:1px solid #f5b5b5;padding:.5rem;margin:.5rem 0}
table{border-collapse:collapse}td,th{border:1px solid #ddd;padding:.25rem .5rem}
.excluded{opacity:.4;text-decoration:line-through}`

const pageScript = `
const form = document.getElementById('upload');
form.addEventListener('submit', async (e) => {
  e.preventDefault();
  const body = new FormData(form);
  const res = await fetch('/api/workspaces', {method: 'POST', body});
  const data = await res.json();
  const alerts = document.getElementById('alerts');
  alerts.textContent = '';
  if (!res.ok) {
    alerts.textContent = data.message + (data.action ? ' ' + data.action : '');
    return;
  }
  render(data);
});

function render(ws) {
  const el = document.getElementById('workspace');
  el.textContent = '';
  const table = document.createElement('table');
  const head = table.insertRow();
  ws.columns.forEach((c) => {
    const th = document.createElement('th');
    th.textContent = c.name;
    if (c.excluded) th.className = 'excluded';
    head.appendChild(th);
  });
  el.appendChild(table);
  (ws.matches || []).forEach((m) => {
    const p = document.createElement('p');
    p.textContent = m.arrangement.name + ' ' + Math.round(m.matchPercentage) + '% match';
    el.appendChild(p);
  });
  const link = document.createElement('a');
  link.href = '/api/workspaces/' + ws.id + '/export?format=csv';
  link.textContent = 'Download CSV';
  el.appendChild(link);
}
`
