package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dcfhdupes "github.com/mattkeenan/dcfhdupes/pkg"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	var configPath string
	var overrides []string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := dcfhdupes.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.ApplyOverrides(overrides); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			_, err = cfg.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	showCmd.Flags().StringVarP(&configPath, "config", "c", "", "ini configuration file")
	showCmd.Flags().StringArrayVar(&overrides, "set", nil, "config override key:value (repeatable)")

	initCmd := &cobra.Command{
		Use:   "init PATH",
		Short: "Write a configuration file with the default values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			cfg, err := dcfhdupes.LoadConfig("")
			if err != nil {
				return err
			}
			if err := cfg.SaveTo(path); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.AddCommand(showCmd, initCmd)
	return cmd
}
