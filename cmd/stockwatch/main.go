// cmd/stockwatch/main.go
package main

import (
	"context"
	"os"

	"github.com/dalemusser/stockwatch/app"
	"github.com/dalemusser/stockwatch/internal/app/bootstrap"
)

func main() {
	// Run logs its own failures.
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		os.Exit(1)
	}
}
