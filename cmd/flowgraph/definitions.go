package main

import (
	"github.com/spf13/cobra"

	"github.com/zero-day-ai/flowgraph"
	"github.com/zero-day-ai/flowgraph/definition"
)

func newDefinitionsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "definitions",
		Aliases: []string{"defs"},
		Short:   "Validate and import type definition bundles",
	}
	cmd.AddCommand(
		newDefinitionsValidateCmd(c),
		newDefinitionsImportCmd(c),
	)
	return cmd
}

func newDefinitionsValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>...",
		Short: "Check that definition files parse and reference only defined types",
		Long: `Load every given file or directory as one bundle and check it without
contacting a registry. Every problem is reported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle := &definition.Bundle{}
			for _, path := range args {
				loaded, err := definition.Load(path)
				if err != nil {
					return err
				}
				bundle.Merge(loaded)
			}
			if err := bundle.Validate(); err != nil {
				return err
			}

			c.logger.Debug("definitions validated", "paths", args)
			printf(cmd, "%d components, %d entity types, %d relation types: ok\n",
				len(bundle.Components), len(bundle.EntityTypes), len(bundle.RelationTypes))
			return nil
		},
	}
}

func newDefinitionsImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>...",
		Short: "Register definition files in the configured registry",
		Long: `Load, validate and register definitions in the registry selected by the
configuration. Definitions may reference types that are already registered.

Examples:
  FLOWGRAPH_REGISTRY_ENDPOINTS=localhost:2379 flowgraph definitions import ./definitions`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg := *c.cfg
			cfg.Definitions = nil
			platform, err := flowgraph.Open(ctx, &cfg, flowgraph.WithLogger(c.logger))
			if err != nil {
				return err
			}
			defer flowgraph.CloseWithLog(platform, c.logger, "platform")

			n, err := platform.LoadDefinitions(ctx, args...)
			if err != nil {
				return err
			}
			if cfg.Registry.GetBackend() == flowgraph.BackendMemory {
				c.logger.Warn("definitions imported into the in-memory registry are discarded on exit")
			}
			printf(cmd, "imported %d definitions\n", n)
			return nil
		},
	}
}
