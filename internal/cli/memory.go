package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	rememberFilePath string
	recallFilePath   string
)

var rememberCmd = &cobra.Command{
	Use:   "remember <text>",
	Short: "Store a note in the vector memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, client, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close(ctx) }()

		id, err := store.Add(ctx, args[0], rememberFilePath, nil)
		if err != nil {
			return fmt.Errorf("store memory: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored memory %s\n", id)
		return nil
	},
}

var recallCmd = &cobra.Command{
	Use:   "recall <question>",
	Short: "Search the vector memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, client, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close(ctx) }()

		matches, err := store.Query(ctx, args[0], recallFilePath)
		if err != nil {
			return fmt.Errorf("query memory: %w", err)
		}
		if len(matches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no matching memories")
			return nil
		}
		for _, m := range matches {
			line := fmt.Sprintf("[%.3f] %s", m.Score, strings.TrimSpace(m.Content))
			if m.Filepath != "" {
				line += fmt.Sprintf(" (source: %s)", m.Filepath)
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	rememberCmd.Flags().StringVar(&rememberFilePath, "file", "", "source file to stamp the memory with")
	recallCmd.Flags().StringVar(&recallFilePath, "file", "", "restrict the search to one source file")
}
