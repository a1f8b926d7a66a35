package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <document-id> <question...>",
	Short: "Ask a question about one document",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Anonymous users are stopped by the gate before any request.
		if a.store.Current() == nil {
			_, err := a.ws.Query(cmd.Context(), strings.Join(args[1:], " "))
			return err
		}
		if err := a.ws.Refresh(cmd.Context(), ""); err != nil {
			return err
		}
		if err := a.ws.Select(args[0]); err != nil {
			return err
		}
		turn, err := a.ws.Query(cmd.Context(), strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(turn.Chunks) == 0 {
			warnColor.Fprintln(out, "No relevant content found in this document.")
			return nil
		}
		for i, ch := range turn.Chunks {
			if i > 0 {
				fmt.Fprintln(out)
			}
			src := ch.SourceTitle
			if src == "" {
				src = ch.SourceDocumentID
			}
			dimColor.Fprintf(out, "[%d] %s\n", i+1, src)
			fmt.Fprintln(out, strings.TrimSpace(ch.Content))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
