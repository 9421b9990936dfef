package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	load := func(cmd *cobra.Command) (appConfig, error) {
		cfg, err := loadConfig(configPath, cmd.Flags())
		if err != nil {
			return cfg, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	rootCmd := &cobra.Command{
		Use:           "nucleus",
		Short:         "live personal dashboard for the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return runDashboard(cfg)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $HOME/.config/nucleus/config.yml)")
	rootCmd.PersistentFlags().String("db-path", "", "DuckDB snapshot store path")

	rootCmd.Flags().String("skin", defaultSkin, "built-in skin (default, cyberpunk, retro, ocean, sunset)")
	rootCmd.Flags().String("skin-file", "", "YAML skin file, reloaded on change")
	rootCmd.Flags().Bool("reduced-motion", false, "swap slides without transitions")
	rootCmd.Flags().Bool("api-enabled", false, "serve the control API")
	rootCmd.Flags().String("api-addr", "", "control API listen address")

	slidesCmd := &cobra.Command{
		Use:   "slides",
		Short: "gather slides and print them with their start weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return runSlides(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	importCmd := &cobra.Command{
		Use:   "import [file.yml]",
		Short: "load slide snapshots from a YAML document into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
		},
	}

	backupCmd := &cobra.Command{
		Use:   "backup [dest.duckdb]",
		Short: "copy the snapshot store to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return runBackup(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Nucleus - Live Dashboard\n")
			fmt.Fprintf(out, "  Version:    %s\n", version)
			fmt.Fprintf(out, "  Commit:     %s\n", commit)
			fmt.Fprintf(out, "  Built:      %s\n", buildTime)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
		},
	}

	rootCmd.AddCommand(slidesCmd, importCmd, backupCmd, versionCmd)
	return rootCmd
}
