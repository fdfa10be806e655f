// email/templates.go
package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/dalemusser/stockwatch/internal/domain/models"
)

// Profile is the sign-up questionnaire echoed in the welcome email.
type Profile struct {
	Country           string
	InvestmentGoals   string
	RiskTolerance     string
	PreferredIndustry string
}

const welcomeText = `Hi {{.Name}},

Welcome to Stockwatch. Your account is ready.
{{- with .Profile}}
{{if .InvestmentGoals}}
Goals: {{.InvestmentGoals}}{{end}}{{if .RiskTolerance}}
Risk tolerance: {{.RiskTolerance}}{{end}}{{if .PreferredIndustry}}
Preferred industry: {{.PreferredIndustry}}{{end}}{{if .Country}}
Country: {{.Country}}{{end}}
{{- end}}

Add a few symbols to your watchlist and we'll keep you posted.

{{.DashboardURL}}
`

const welcomeHTML = `<!doctype html>
<html><body>
<h1>Welcome, {{.Name}}</h1>
<p>Your Stockwatch account is ready.</p>
{{with .Profile}}<ul>
{{if .InvestmentGoals}}<li>Goals: {{.InvestmentGoals}}</li>{{end}}
{{if .RiskTolerance}}<li>Risk tolerance: {{.RiskTolerance}}</li>{{end}}
{{if .PreferredIndustry}}<li>Preferred industry: {{.PreferredIndustry}}</li>{{end}}
{{if .Country}}<li>Country: {{.Country}}</li>{{end}}
</ul>{{end}}
<p>Add a few symbols to your watchlist and we'll keep you posted.</p>
<p><a href="{{.DashboardURL}}">Open your dashboard</a></p>
</body></html>
`

const digestText = `Hi {{.Name}},

Your watchlist for {{.Date}}:
{{range .Rows}}
  {{printf "%-8s" .Symbol}} {{.Company}} (added {{.Added}}){{else}}
Your watchlist is empty. Add a few symbols to receive richer summaries.{{end}}

{{.DashboardURL}}
`

const digestHTML = `<!doctype html>
<html><body>
<h1>Your watchlist, {{.Name}}</h1>
<p>{{.Date}}</p>
{{if .Rows}}<table>
<thead><tr><th>Symbol</th><th>Company</th><th>Added</th></tr></thead>
<tbody>{{range .Rows}}
<tr><td><strong>{{.Symbol}}</strong></td><td>{{.Company}}</td><td>{{.Added}}</td></tr>{{end}}
</tbody>
</table>{{else}}<p>Your watchlist is empty. Add a few symbols to receive richer summaries.</p>{{end}}
<p><a href="{{.DashboardURL}}">Open your dashboard</a></p>
</body></html>
`

var (
	welcomeTextTpl = texttemplate.Must(texttemplate.New("welcome.txt").Parse(welcomeText))
	welcomeHTMLTpl = htmltemplate.Must(htmltemplate.New("welcome.html").Parse(welcomeHTML))
	digestTextTpl  = texttemplate.Must(texttemplate.New("digest.txt").Parse(digestText))
	digestHTMLTpl  = htmltemplate.Must(htmltemplate.New("digest.html").Parse(digestHTML))
)

type welcomeData struct {
	Name         string
	Profile      *Profile
	DashboardURL string
}

// Welcome renders the welcome email for a new account. profile may be nil.
func Welcome(to, name string, profile *Profile, dashboardURL string) (Message, error) {
	if profile != nil && *profile == (Profile{}) {
		profile = nil
	}
	data := welcomeData{Name: name, Profile: profile, DashboardURL: dashboardURL}
	text, html, err := render(welcomeTextTpl, welcomeHTMLTpl, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{to},
		Subject:  "Welcome to Stockwatch",
		TextBody: text,
		HTMLBody: html,
	}, nil
}

type digestRow struct {
	Symbol  string
	Company string
	Added   string
}

type digestData struct {
	Name         string
	Date         string
	Rows         []digestRow
	DashboardURL string
}

// WatchlistDigest renders a user's daily watchlist summary as of now.
func WatchlistDigest(to, name string, items []models.WatchlistItem, dashboardURL string, now time.Time) (Message, error) {
	rows := make([]digestRow, 0, len(items))
	for _, it := range items {
		added := "-"
		if !it.AddedAt.IsZero() {
			added = it.AddedAt.Format("Jan 2")
		}
		company := it.Company
		if company == "" {
			company = it.Symbol
		}
		rows = append(rows, digestRow{Symbol: it.Symbol, Company: company, Added: added})
	}

	data := digestData{
		Name:         name,
		Date:         now.Format("Monday, January 2"),
		Rows:         rows,
		DashboardURL: dashboardURL,
	}
	text, html, err := render(digestTextTpl, digestHTMLTpl, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{to},
		Subject:  "Your Daily Watchlist Summary",
		TextBody: text,
		HTMLBody: html,
	}, nil
}

func render(t *texttemplate.Template, h *htmltemplate.Template, data any) (string, string, error) {
	var tb, hb bytes.Buffer
	if err := t.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("email: render %s: %w", t.Name(), err)
	}
	if err := h.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("email: render %s: %w", h.Name(), err)
	}
	return tb.String(), hb.String(), nil
}
