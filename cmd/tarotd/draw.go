package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randomtoy/tarotbot/internal/adapters/static"
	"github.com/randomtoy/tarotbot/internal/domain"
)

func newDrawCmd() *cobra.Command {
	var (
		n           int
		catalogPath string
	)
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw cards locally and print them as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := static.LoadCatalog(catalogPath)
			if err != nil {
				return err
			}
			cards, err := domain.Draw(catalog, n, stdRNG{})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cards)
		},
	}
	cmd.Flags().IntVarP(&n, "cards", "n", 3, "number of cards to draw")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "card catalog file (JSON or YAML); embedded deck when empty")
	return cmd
}

func newConfigsCmd() *cobra.Command {
	var readingsPath string
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "List reading config keys and their card counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := static.LoadRegistry(readingsPath)
			if err != nil {
				return err
			}
			for _, key := range registry.Keys() {
				cfg, _ := registry.Lookup(key)
				n, err := cfg.CardCount()
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tinvalid: %v\n", key, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", key, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&readingsPath, "readings", "", "reading config file (JSON or YAML); embedded configs when empty")
	return cmd
}
