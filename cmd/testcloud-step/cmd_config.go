package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zoro11031/testcloud-step/internal/config"
	"github.com/zoro11031/testcloud-step/internal/ui"
)

var resetForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stored step defaults",
	Long: `Show and edit the defaults file consulted when neither a flag nor a step
environment variable provides an input. The API key is never stored.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored and default values",
	Args:  cobra.NoArgs,
	RunE:  showConfig,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Store a default value",
	Long:  "Store a default value. Known keys:\n  " + strings.Join(config.KnownKeys, "\n  "),
	Args:  cobra.ExactArgs(2),
	RunE:  setConfig,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset KEY",
	Short: "Remove a stored value",
	Args:  cobra.ExactArgs(1),
	RunE:  unsetConfig,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the defaults file",
	Args:  cobra.NoArgs,
	RunE:  resetConfig,
}

func init() {
	configResetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Skip confirmation prompt")

	configCmd.AddCommand(configShowCmd, configSetCmd, configUnsetCmd, configResetCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, error) {
	cfg := config.New(configPath)
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := ui.NewWithWriter(cmd.OutOrStdout())
	out.Header("Step Defaults")

	stored := cfg.GetAll()
	for _, key := range config.KnownKeys {
		value, ok := stored[key]
		switch {
		case ok:
			out.Field(key, value)
		case config.Defaults[key] != "":
			out.Field(key, config.Defaults[key]+" (default)")
		default:
			out.Field(key, "-")
		}
	}

	fmt.Fprintln(cmd.OutOrStdout())
	out.Infof("Configuration file: %s", cfg.FilePath())
	return nil
}

func setConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := strings.ToUpper(args[0])
	if err := cfg.Set(key, args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	ui.NewWithWriter(cmd.OutOrStdout()).Successf("%s saved to %s", key, cfg.FilePath())
	return nil
}

func unsetConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := strings.ToUpper(args[0])
	if !cfg.Exists(key) {
		return fmt.Errorf("config key not found: %s", key)
	}
	if err := cfg.Delete(key); err != nil {
		return fmt.Errorf("failed to unset %s: %w", key, err)
	}

	ui.NewWithWriter(cmd.OutOrStdout()).Successf("%s removed", key)
	return nil
}

func resetConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := ui.NewWithWriter(cmd.OutOrStdout())

	if !resetForce {
		out.SetNonInteractive(false)
		out.Header("Reset Step Defaults")
		out.Warningf("This will delete %s", cfg.FilePath())

		confirm, err := out.PromptYesNo("Are you sure you want to reset?", false)
		if err != nil {
			return err
		}
		if !confirm {
			out.Info("Reset cancelled")
			return nil
		}
	}

	removed, err := cfg.Reset()
	if err != nil {
		return err
	}
	if removed {
		out.Successf("Configuration file deleted: %s", cfg.FilePath())
	} else {
		out.Info("Configuration file did not exist")
	}
	return nil
}
