package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/contextiq/contextiq-cli/internal/shell"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ui"},
	Short:   "Open the interactive workspace",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("the workspace needs an interactive terminal; use docs, upload, delete or ask instead")
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		debounce := time.Duration(cfg.SearchDebounceMs) * time.Millisecond
		return shell.Run(cmd.Context(), a.ws, debounce, a.log)
	},
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
}
