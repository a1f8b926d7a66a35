package cmd

import (
	"fmt"
	"os"
	"strings"

	cfgpkg "github.com/contextiq/contextiq-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	initAPIURL  string
	initAuthURL string
	initForce   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file pointing at a ContextIQ deployment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cfgpkg.Path(cfgFile)
		if err != nil {
			return err
		}
		// Refuse to overwrite an existing config.
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat config: %w", err)
		}

		c, err := requireConfig()
		if err != nil {
			return err
		}
		if initAPIURL != "" {
			c.APIURL = strings.TrimRight(initAPIURL, "/")
		}
		if initAuthURL != "" {
			c.AuthURL = strings.TrimRight(initAuthURL, "/")
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Config initialized: %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initAPIURL, "api-url", "", "documents API base URL")
	initCmd.Flags().StringVar(&initAuthURL, "auth-url", "", "auth API base URL")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}
