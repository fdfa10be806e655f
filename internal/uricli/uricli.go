// internal/uricli/uricli.go
package uricli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// errReported means the command already printed why it failed; Run only
// sets the exit code.
var errReported = errors.New("reported")

// uriEnvKeys are checked in order, after --uri.
var uriEnvKeys = []string{"STOCKWATCH_MONGODB_URI", "MONGODB_URI"}

const (
	defaultTimeout = 10 * time.Second
	rule           = "============================================================"
)

// Streams are the command's stdin, stdout and stderr.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type options struct {
	envFile string
	uri     string
	timeout time.Duration
}

// Run is the entrypoint for cmd/mongouri. args exclude the binary name.
// It returns a process exit code; callers should os.Exit(Run(...)).
func Run(binName string, args []string) int {
	return Execute(binName, args, Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}

// Execute runs the command tree against s.
func Execute(binName string, args []string, s Streams) int {
	root := NewRootCommand(binName, s)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(s.Err, "error:", err)
		}
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree.
func NewRootCommand(binName string, s Streams) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           binName,
		Short:         "Inspect, encode, build and test MongoDB connection strings",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetIn(s.In)
	root.SetOut(s.Out)
	root.SetErr(s.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file read when the URI is not in the environment")
	pf.StringVar(&opts.uri, "uri", "", "connection string to use instead of MONGODB_URI")
	pf.DurationVar(&opts.timeout, "timeout", defaultTimeout, "server selection timeout for live checks")

	root.AddCommand(
		newEncodeCommand(binName),
		newAnalyzeCommand(opts),
		newCheckCommand(opts),
		newGenerateCommand(opts, s.In),
	)
	return root
}

// resolveURI returns the URI to inspect: --uri, then the environment,
// then the dotenv file. A missing dotenv file is not an error.
func resolveURI(opts *options) (string, error) {
	if v := strings.TrimSpace(opts.uri); v != "" {
		return v, nil
	}
	for _, k := range uriEnvKeys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v, nil
		}
	}
	if opts.envFile == "" {
		return "", nil
	}
	vals, err := godotenv.Read(opts.envFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", opts.envFile, err)
	}
	for _, k := range uriEnvKeys {
		if v := strings.TrimSpace(vals[k]); v != "" {
			return v, nil
		}
	}
	return "", nil
}

func numbered(w io.Writer, items []string) {
	for i, it := range items {
		fmt.Fprintf(w, "   %d. %s\n", i+1, it)
	}
}
