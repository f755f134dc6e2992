package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/flowgraph"
)

var version = "dev"

// cli holds the state shared by all commands.
type cli struct {
	cfgFile  string
	logLevel string

	cfg    *flowgraph.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "flowgraph",
		Short:         "Inspect type identifiers and manage flowgraph type definitions",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "",
		"config file (default: built-in defaults plus FLOWGRAPH_* environment variables)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "",
		"log level: debug, info, warn or error (overrides the config file)")

	rootCmd.AddCommand(
		newFQICmd(),
		newDefinitionsCmd(c),
		newHealthCmd(c),
	)
	return rootCmd
}

func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := flowgraph.LoadConfig(c.cfgFile)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// printf writes to the command output, ignoring write errors like fmt.Printf.
func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
