// internal/uricli/check.go
package uricli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/stockwatch/db/mongodb"
	"github.com/dalemusser/stockwatch/logging"
	"github.com/dalemusser/stockwatch/mongouri"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newCheckCommand(opts *options) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configured URI, then try a live connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, "1. Reading MONGODB_URI...")
			uri, err := resolveURI(opts)
			if err != nil {
				return err
			}
			if uri == "" {
				fmt.Fprintln(w, "   MONGODB_URI is not set")
				return errReported
			}
			fmt.Fprintf(w, "   Found: %s\n", mongouri.Sanitize(uri))

			logger := zap.NewNop()
			if verbose {
				logger = logging.MustBuildLogger("debug", "dev")
				defer func() { _ = logger.Sync() }()
			}
			return checkConnection(cmd.Context(), w, uri, opts.timeout, logger)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log driver connection events")
	return cmd
}

// checkConnection validates uri and, if it is well formed, connects and
// lists collections. A failure is printed with troubleshooting steps and
// returned as errReported.
func checkConnection(ctx context.Context, w io.Writer, uri string, timeout time.Duration, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(w, "2. Validating format...")
	report := mongouri.Validate(uri)
	if !report.Valid {
		fmt.Fprintln(w, "   Invalid URI:")
		numbered(w, report.Messages())
		fmt.Fprintf(w, "   Expected format:\n   %s\n", mongouri.ExpectedFormat)
		return errReported
	}
	u, _ := mongouri.Parse(uri)
	fmt.Fprintf(w, "   Scheme: %s, user: %s, hosts: %s\n", u.Scheme, u.Username, strings.Join(u.Hosts, ", "))

	fmt.Fprintln(w, "3. Connecting...")
	pool := mongodb.DefaultPoolConfig()
	pool.MinPoolSize = 0
	pool.ConnectTimeout = timeout
	pool.ServerSelectionTimeout = timeout
	mgr := mongodb.NewManager(mongodb.Config{URI: uri, Pool: pool}, logger)
	defer func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		_ = mgr.Close(cctx)
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	db, err := mgr.Database(ctx)
	if err == nil {
		var names []string
		names, err = db.ListCollectionNames(ctx, bson.D{})
		if err == nil {
			fmt.Fprintln(w, "   Connected")
			fmt.Fprintf(w, "   Database:    %s\n", db.Name())
			fmt.Fprintf(w, "   Hosts:       %s\n", strings.Join(u.Hosts, ", "))
			fmt.Fprintf(w, "   Collections: %d found\n", len(names))
			return nil
		}
	}

	kind := mongodb.ClassifyError(err)
	fmt.Fprintln(w, "   Connection failed")
	fmt.Fprintf(w, "   Error type: %s\n", kind)
	fmt.Fprintf(w, "   Message:    %s\n", err)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Possible solutions:")
	numbered(w, mongouri.DiagnoseAuthFailure(report, kind))
	return errReported
}
