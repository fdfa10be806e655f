// internal/uricli/encode.go
package uricli

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dalemusser/stockwatch/mongouri"
	"github.com/spf13/cobra"
)

func newEncodeCommand(binName string) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <secret>",
		Short: "Percent-encode a password for use in a connection string",
		Long: "Prints the reserved-character table, the reserved characters found in\n" +
			"the secret, and the encoded value. The secret is echoed, so mind your screen.",
		Example: fmt.Sprintf("  %s encode \"my@pass#word\"", binName),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printEncode(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
}

func printEncode(w io.Writer, secret string) {
	fmt.Fprintln(w, "Reserved characters and their encodings:")
	for _, rc := range mongouri.ReservedCharacters() {
		fmt.Fprintf(w, "   %-5s -> %s\n", rc.Label(), rc.Encoded)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)

	found := mongouri.ReservedIn(secret)
	fmt.Fprintf(w, "Length: %d characters\n", utf8.RuneCountInString(secret))
	if len(found) == 0 {
		fmt.Fprintln(w, "No reserved characters found; encoding is optional but harmless.")
	} else {
		fmt.Fprintln(w, "Characters that will be encoded:")
		for _, rc := range found {
			fmt.Fprintf(w, "   %q -> %q\n", rc.Char, rc.Encoded)
		}
	}

	enc := mongouri.EncodeSecret(secret)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Encoded password:")
	fmt.Fprintf(w, "   %s\n", enc)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use it in your .env file:")
	fmt.Fprintf(w, "   MONGODB_URI=mongodb+srv://USERNAME:%s@cluster.mongodb.net/DATABASE?retryWrites=true&w=majority\n", enc)
}
