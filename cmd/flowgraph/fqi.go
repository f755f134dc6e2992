package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/flowgraph/typeid"
)

type fqiOutput struct {
	Type typeid.TypeID `json:"type"`
	FQI  string        `json:"fqi"`
}

func newFQICmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fqi <kind> <namespace> <type_name>",
		Short: "Print the fully qualified identifier of a type",
		Long: `Print the fully qualified identifier the graph store uses for a type.

Kind is one of component, entity_type, relation_type or flow_type.

Examples:
  flowgraph fqi entity_type iot sensor
  flowgraph fqi relation_type iot reports_to --json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := typeid.ParseKind(args[0])
			if err != nil {
				return err
			}
			ty := typeid.New(kind, args[1], args[2])
			fqi := ty.FullyQualifiedIdentifier()

			if !asJSON {
				printf(cmd, "%s\t%s\n", ty, fqi)
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fqiOutput{Type: ty, FQI: fqi.String()})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}
