// internal/uricli/analyze.go
package uricli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/stockwatch/mongouri"
	"github.com/spf13/cobra"
)

const missing = "MISSING"

func newAnalyzeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Print the configured URI's components, issues and suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uri, err := resolveURI(opts)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if uri == "" {
				fmt.Fprintf(w, "MONGODB_URI is not set (checked --uri, %s and %s)\n", strings.Join(uriEnvKeys, ", "), opts.envFile)
				return errReported
			}
			if !printAnalysis(w, mongouri.Analyze(uri)) {
				return errReported
			}
			return nil
		},
	}
}

// printAnalysis writes the report and returns whether the URI is
// structurally valid. The password only ever appears as a length.
func printAnalysis(w io.Writer, a mongouri.Analysis) bool {
	fmt.Fprintln(w, "Analyzing MongoDB URI...")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "URI: %s\n", a.Report.SanitizedURI)

	if u := a.URI; u != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Components:")
		fmt.Fprintf(w, "   Scheme:    %s\n", u.Scheme)
		fmt.Fprintf(w, "   Username:  %s\n", orMissing(u.Username))
		if u.Password != "" {
			fmt.Fprintf(w, "   Password:  %s (%d chars)\n", mongouri.Mask, utf8.RuneCountInString(u.Password))
		} else {
			fmt.Fprintf(w, "   Password:  %s\n", missing)
		}
		fmt.Fprintf(w, "   Hosts:     %s\n", orMissing(strings.Join(u.Hosts, ", ")))
		if u.HasDatabase() {
			fmt.Fprintf(w, "   Database:  %s\n", u.Database)
		} else {
			fmt.Fprintf(w, "   Database:  %s (default %s)\n", missing, u.Database)
		}
		fmt.Fprintf(w, "   Query:     %s\n", queryString(u.Query))
	}

	fmt.Fprintln(w)
	if len(a.Report.Issues) == 0 {
		fmt.Fprintln(w, "No format issues found")
	} else {
		fmt.Fprintln(w, "Issues:")
		numbered(w, a.Report.Messages())
	}
	if len(a.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Suggestions:")
		numbered(w, a.Suggestions)
	}
	if !a.Report.Valid {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Expected format:\n   %s\n", mongouri.ExpectedFormat)
	}
	fmt.Fprintln(w, rule)
	return a.Report.Valid
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}

func queryString(q map[string]string) string {
	if len(q) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+q[k])
	}
	return strings.Join(parts, "&")
}
