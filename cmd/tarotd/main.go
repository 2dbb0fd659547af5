package main

import (
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("tarotd failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:           "tarotd",
		Short:         "Tarot reading service with a Slack bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newDrawCmd(), newConfigsCmd())
	return root
}
