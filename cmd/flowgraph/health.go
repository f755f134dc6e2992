package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/flowgraph"
	"github.com/zero-day-ai/flowgraph/health"
)

var errUnhealthy = errors.New("platform is unhealthy")

func newHealthCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the configured graph store, registry and definition paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg := *c.cfg
			paths := cfg.Definitions
			cfg.Definitions = nil
			platform, err := flowgraph.Open(ctx, &cfg, flowgraph.WithLogger(c.logger))
			if err != nil {
				return err
			}
			defer flowgraph.CloseWithLog(platform, c.logger, "platform")

			// Definition paths are checked, not loaded.
			checks := []health.Status{platform.Health(ctx)}
			for _, path := range paths {
				checks = append(checks, health.FileCheck(path))
			}
			status := health.Combine(checks...)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(status); err != nil {
				return err
			}
			if status.IsUnhealthy() {
				return errUnhealthy
			}
			return nil
		},
	}
}
