// internal/uricli/generate.go
package uricli

import (
	"errors"
	"fmt"
	"io"

	"github.com/dalemusser/stockwatch/mongouri"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGenerateCommand(opts *options, in io.Reader) *cobra.Command {
	var scheme string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a correctly encoded connection string interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			p := newPrompter(in, w)

			// Offer the current user and host as defaults.
			var curUser, curHost string
			if cur, err := resolveURI(opts); err == nil && cur != "" {
				if u, err := mongouri.Parse(cur); err == nil {
					curUser, curHost = u.Username, u.Hostname
					fmt.Fprintf(w, "Current URI: %s\n", mongouri.Sanitize(cur))
					fmt.Fprintln(w, "Press Enter to keep the value in brackets.")
					fmt.Fprintln(w)
				}
			}

			uri, err := promptURI(p, w, mongouri.Scheme(scheme), curUser, curHost)
			if err != nil {
				return err
			}

			fmt.Fprintln(w)
			fmt.Fprintln(w, rule)
			fmt.Fprintln(w, "Generated MongoDB URI:")
			fmt.Fprintln(w, uri)
			fmt.Fprintln(w, rule)
			fmt.Fprintln(w, "Add this to your .env file:")
			fmt.Fprintf(w, "MONGODB_URI=%s\n\n", uri)

			test, err := p.confirm("Test this connection now?")
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				return err
			}
			if !test {
				fmt.Fprintln(w, "Run `check` after updating .env, and make sure your IP is allowed in the cluster's network access list.")
				return nil
			}
			return checkConnection(cmd.Context(), w, uri, opts.timeout, zap.NewNop())
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", string(mongouri.SchemeSRV), "mongodb+srv or mongodb")
	return cmd
}

func promptURI(p *prompter, w io.Writer, scheme mongouri.Scheme, curUser, curHost string) (string, error) {
	if !scheme.Recognized() {
		return "", fmt.Errorf("unknown scheme %q", scheme)
	}

	user, err := p.ask("Username", curUser)
	if err != nil {
		return "", err
	}
	if user == "" {
		return "", mongouri.ErrUsernameRequired
	}

	pass, err := p.secret("Password")
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", mongouri.ErrPasswordRequired
	}
	if found := mongouri.ReservedIn(pass); len(found) > 0 {
		fmt.Fprintf(w, "Password contains %d reserved character(s); it will be percent-encoded.\n", len(found))
	}

	host, err := p.ask("Hostname (e.g. cluster0.xxxxx.mongodb.net)", curHost)
	if err != nil {
		return "", err
	}
	if host == "" {
		return "", mongouri.ErrHostRequired
	}

	db, err := p.ask("Database name", mongouri.DefaultDatabase)
	if err != nil {
		return "", err
	}

	return mongouri.Build(mongouri.BuildOptions{
		Scheme:   scheme,
		Username: user,
		Password: pass,
		Host:     host,
		Database: db,
	})
}
