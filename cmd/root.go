// Package cmd implements the docwright CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docwright/docwright/internal/config"
	"github.com/docwright/docwright/internal/logging"
)

const version = "0.1.0"
const logo = "📝"

var (
	cfgPath  string
	verbose  bool
	appCfg   *config.Config
	closeLog = func() error { return nil }
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "docwright",
	Short: logo + " docwright: AI actions for your documents",
	Long:  logo + " docwright turns free-form prompts into document edits: find, highlight, replace, comment, summarize and more.",

	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: func(*cobra.Command, []string) error { return closeLog() },
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file (default ~/.docwright/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(relayCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(statusCmd)
}

// setup loads the config and installs the logger before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}
	cfg, err := config.Resolve(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	appCfg = cfg

	closeFn, err := logging.Setup(logging.Options{
		Level:   cfg.Log.Level,
		Verbose: verbose,
		File:    cfg.LogFile(),
	})
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	closeLog = closeFn
	return nil
}
