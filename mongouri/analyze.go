// mongouri/analyze.go
package mongouri

import "strings"

// Analysis is a deeper look at a connection string than Validate: it also
// flags a missing database name and an unencoded password, and suggests
// recommended query options.
type Analysis struct {
	// URI is nil when the input does not parse.
	URI         *ConnectionURI
	Report      Report
	Suggestions []string
}

// Analyze validates raw and extends the report with advisory checks.
// Report.Valid still reflects only the structural checks Validate runs.
func Analyze(raw string) Analysis {
	u, err := Parse(raw)
	a := Analysis{URI: u, Report: validate(raw, u, err)}
	if u == nil {
		return a
	}

	if !u.HasDatabase() {
		a.Report.add(IssueDatabase, MsgDatabase)
		a.Suggestions = append(a.Suggestions, issueFix(IssueDatabase))
	}

	if u.rawPassword != "" && NeedsEncoding(u.rawPassword) && !strings.Contains(u.rawPassword, "%") {
		a.Report.add(IssueEncoding, MsgEncoding)
		a.Suggestions = append(a.Suggestions, issueFix(IssueEncoding))
	}

	if u.Query["retryWrites"] != "true" {
		a.Suggestions = append(a.Suggestions, "Add retryWrites=true to the query string for better reliability")
	}
	if u.Query["w"] != "majority" {
		a.Suggestions = append(a.Suggestions, "Add w=majority to the query string for write concern")
	}
	return a
}
