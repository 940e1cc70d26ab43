/*
Package views renders aggregated election data into HTML payloads.

PURPOSE:
  The tally core treats rendering as an opaque function from structured
  data to a displayable string. This package is that function: named
  templates over typed view models, nothing else. It knows nothing about
  counters, caching, or HTTP.

SEE ALSO:
  - api/handlers.go: Composes view models and caches rendered payloads
*/
package views

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/dustin/go-humanize"
)

// =============================================================================
// VIEW MODELS
// =============================================================================

// RankingRow is one line of the index ranking table.
type RankingRow struct {
	ID    int
	Name  string
	Party string
	Count int64
}

// PartyRow is one line of the index party table.
type PartyRow struct {
	Name  string
	Count int64
}

// IndexView binds the election index page.
type IndexView struct {
	Ranking      []RankingRow
	Parties      []PartyRow
	Men          int64
	Women        int64
	MenPercent   string
	WomenPercent string
}

// CandidateView binds the per-candidate page.
type CandidateView struct {
	ID       int
	Name     string
	Party    string
	Count    int64
	Keywords []string
}

// PartyView binds the per-party page.
type PartyView struct {
	Name       string
	Count      int64
	Candidates []RankingRow
	Keywords   []string
}

// VoteView binds the vote form.
type VoteView struct {
	Candidates []string
	Message    string
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer turns a view name and its bindings into an HTML payload.
type Renderer struct {
	templates *template.Template
}

// New parses the built-in templates. Panics only on a programming error in
// the template source, never at request time.
func New() *Renderer {
	t := template.New("views").Funcs(template.FuncMap{
		"comma": func(n int64) string { return humanize.Comma(n) },
	})
	for name, src := range templateSources {
		template.Must(t.New(name).Parse(src))
	}
	return &Renderer{templates: t}
}

// Render executes the named view with the given bindings.
func (r *Renderer) Render(view string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, view, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", view, err)
	}
	return buf.String(), nil
}

// =============================================================================
// TEMPLATES
// =============================================================================

var templateSources = map[string]string{
	"layout_head": `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Election Results</title>
</head>
<body>
<nav><a href="/">Election Results</a> | <a href="/vote">Cast a vote</a></nav>
`,
	"layout_foot": `</body>
</html>
`,

	"index": `{{template "layout_head"}}
<h1>Election Results</h1>
<h2>Ranking</h2>
<table>
  <tr><th>Candidate</th><th>Party</th><th>Votes</th></tr>
{{range .Ranking}}  <tr><td><a href="/candidates/{{.ID}}">{{.Name}}</a></td><td>{{.Party}}</td><td>{{comma .Count}}</td></tr>
{{end}}</table>
<h2>Votes by Party</h2>
<table>
  <tr><th>Party</th><th>Votes</th></tr>
{{range .Parties}}  <tr><td><a href="/political_parties/{{.Name}}">{{.Name}}</a></td><td>{{comma .Count}}</td></tr>
{{end}}</table>
<h2>Votes by Sex</h2>
<p>Men: {{comma .Men}} ({{.MenPercent}}%) / Women: {{comma .Women}} ({{.WomenPercent}}%)</p>
{{template "layout_foot"}}`,

	"candidate": `{{template "layout_head"}}
<h1>{{.Name}}</h1>
<p>Party: <a href="/political_parties/{{.Party}}">{{.Party}}</a></p>
<p>Votes: {{comma .Count}}</p>
<h2>Why they are popular</h2>
<ol>
{{range .Keywords}}  <li>{{.}}</li>
{{end}}</ol>
{{template "layout_foot"}}`,

	"political_party": `{{template "layout_head"}}
<h1>{{.Name}}</h1>
<p>Votes: {{comma .Count}}</p>
<h2>Candidates</h2>
<ul>
{{range .Candidates}}  <li><a href="/candidates/{{.ID}}">{{.Name}}</a></li>
{{end}}</ul>
<h2>Why they are popular</h2>
<ol>
{{range .Keywords}}  <li>{{.}}</li>
{{end}}</ol>
{{template "layout_foot"}}`,

	"vote": `{{template "layout_head"}}
<h1>Vote Form</h1>
<form method="POST" action="/vote">
  <label>Name</label>
  <input name="name" autofocus>
  <label>Address</label>
  <input name="address">
  <label>My Number</label>
  <input name="mynumber">
  <label>Candidate</label>
  <select name="candidate">
{{range .Candidates}}    <option value="{{.}}">{{.}}</option>
{{end}}  </select>
  <label>Reason</label>
  <input name="keyword">
  <label>Vote Count</label>
  <input name="vote_count">
  <div class="message">{{.Message}}</div>
  <input type="submit" value="Vote">
</form>
{{template "layout_foot"}}`,
}
