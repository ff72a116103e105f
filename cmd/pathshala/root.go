package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Meijaisharma/PathshalaPro/pkg/cli"
	"github.com/Meijaisharma/PathshalaPro/pkg/config"

	"github.com/spf13/cobra"
)

const defaultConfigFile = "config.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pathshala",
		Short: "Pathshala - range-streaming media relay",
		Long: `Pathshala serves lecture videos and PDF notes from a messaging backend
over plain HTTP with byte-range support.

Public content IDs are mapped onto backend message IDs, the backend session is
supervised and repaired on demand, and every playback is recorded in a ledger.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(
		newRunCmd(),
		newVersionCmd(),
		newResolveCmd(),
		newProbeCmd(),
		newLedgerCmd(),
		newConfigCmd(),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

// loadConfig loads the file named by --config with environment overrides
// and installs it as the process-wide configuration. A missing default
// config file is not an error: defaults and environment are used instead.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgFile
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		path = ""
	}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.NewConfigError("", "failed to load config", err)
	}
	config.SetConfig(cfg)
	return cfg, nil
}

// configPath returns the config file actually in use, or "" when running
// on defaults.
func configPath(cmd *cobra.Command) string {
	if _, err := os.Stat(cfgFile); err != nil && !cmd.Flags().Changed("config") {
		return ""
	}
	return cfgFile
}
