// cmd/mongouri/main.go
package main

import (
	"os"

	"github.com/dalemusser/stockwatch/internal/uricli"
)

func main() {
	os.Exit(uricli.Run("mongouri", os.Args[1:]))
}
