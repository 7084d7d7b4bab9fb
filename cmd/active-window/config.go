package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Christopher-Hayes/active-window/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create config.toml",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.toml holding the default settings",
	Long: `Write the default settings to --config, or to
$XDG_CONFIG_HOME/active-window/config.toml. An existing file is left alone
unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path, _ := cmd.Root().PersistentFlags().GetString("config")
		return initConfigFile(cmd.OutOrStdout(), path, force)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print where config.toml is read from",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Root().PersistentFlags().GetString("config")
		if path == "" {
			p, err := config.ConfigPath()
			if err != nil {
				return err
			}
			path = p
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configPathCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

func initConfigFile(w io.Writer, path string, force bool) error {
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(w, "✓ Wrote default config to %s\n", path)
	return nil
}
