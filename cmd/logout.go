package cmd

import (
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		wasSignedIn := a.store.Current() != nil
		if err := a.ws.Logout(cmd.Context()); err != nil {
			return err
		}
		if !wasSignedIn {
			printSuccess(cmd.OutOrStdout(), "Not signed in")
			return nil
		}
		printSuccess(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
