package cmd

import (
	"fmt"

	"github.com/contextiq/contextiq-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	docsSearch string
	docsJSON   bool
)

var docsCmd = &cobra.Command{
	Use:     "docs",
	Aliases: []string{"list", "ls"},
	Short:   "List documents, optionally filtered by a search query",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ws.Refresh(cmd.Context(), docsSearch); err != nil {
			return err
		}
		docs := a.ws.Snapshot().Collection.Documents
		out := cmd.OutOrStdout()
		if docsJSON {
			b, err := utils.PrettyJSON(docs)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		if len(docs) == 0 {
			if docsSearch != "" {
				fmt.Fprintf(out, "(no documents match %q)\n", docsSearch)
			} else {
				fmt.Fprintln(out, "(no documents)")
			}
			return nil
		}
		for _, d := range docs {
			fmt.Fprintf(out, "- %s: %s", d.ID, d.Title)
			if !d.CreatedAt.IsZero() {
				dimColor.Fprintf(out, " (%s)", d.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.Flags().StringVarP(&docsSearch, "search", "s", "", "search query")
	docsCmd.Flags().BoolVar(&docsJSON, "json", false, "print documents as JSON")
}
