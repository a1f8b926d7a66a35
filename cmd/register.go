package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	registerEmail string
	registerName  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account (verify it, then run login)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		email, name := registerEmail, registerName
		if email == "" {
			if email, err = p.Line("Email: "); err != nil {
				return err
			}
		}
		if name == "" {
			if name, err = p.Line("Name: "); err != nil {
				return err
			}
		}
		password, err := p.Secret("Password: ")
		if err != nil {
			return err
		}
		confirm, err := p.Secret("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}

		if err := a.ws.Register(cmd.Context(), email, password, name); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Account created for %s. Check your inbox to verify it, then run `contextiq login`.", email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerName, "name", "", "display name (prompted when omitted)")
}
