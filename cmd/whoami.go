package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var whoamiRemote bool

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		sess := a.store.Current()
		if sess == nil {
			fmt.Fprintln(out, "anonymous")
			return nil
		}
		fmt.Fprintf(out, "user: %s\n", sess.Label())
		fmt.Fprintf(out, "email: %s\n", sess.Email)
		if sess.Role != "" {
			fmt.Fprintf(out, "role: %s\n", sess.Role)
		}
		if exp, ok := sess.ExpiresAt(); ok {
			note := ""
			if time.Now().After(exp) {
				note = " (expired)"
			}
			fmt.Fprintf(out, "token_expires: %s%s\n", exp.Local().Format(time.RFC3339), note)
		}

		if !whoamiRemote {
			return nil
		}
		u, err := a.client.CurrentUser(cmd.Context())
		if err != nil {
			return err
		}
		dimColor.Fprintln(out, "-- server profile --")
		fmt.Fprintf(out, "id: %s\n", u.ID)
		fmt.Fprintf(out, "name: %s\n", u.Name)
		if u.PhoneNumber != "" {
			fmt.Fprintf(out, "phone_number: %s\n", u.PhoneNumber)
		}
		if u.ProfilePicture != "" {
			fmt.Fprintf(out, "profile_picture: %s\n", u.ProfilePicture)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().BoolVar(&whoamiRemote, "remote", false, "also fetch the profile from the server")
}
