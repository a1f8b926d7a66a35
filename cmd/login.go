package cmd

import (
	"github.com/spf13/cobra"
)

var (
	loginEmail         string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		email := loginEmail
		if email == "" {
			if email, err = p.Line("Email: "); err != nil {
				return err
			}
		}
		var password string
		if loginPasswordStdin {
			password, err = p.Line("")
		} else {
			password, err = p.Secret("Password: ")
		}
		if err != nil {
			return err
		}

		sess, err := a.ws.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Signed in as %s", sess.Label())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "read the password from stdin")
}
