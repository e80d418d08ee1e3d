package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/catalog"
)

// newCatalogHost builds a host over the full template catalog.
func newCatalogHost(cfg *volumetric.Config) (*volumetric.Host, error) {
	reg := volumetric.NewRegistry()
	if err := catalog.Register(reg); err != nil {
		return nil, fmt.Errorf("register catalog: %w", err)
	}
	return volumetric.NewHost(reg, cfg)
}

func newTemplatesCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "templates [KEY]",
		Short: "List the templates an agent can request",
		Long: `List every template key with its description.

With a KEY, print that template's props schema as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := newCatalogHost(&volumetric.Config{Logger: a.logger})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				info, err := host.DescribeTemplate(args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			infos := host.Describe()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tDESCRIPTION")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\n", info.Key, info.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog with schemas as JSON")
	return cmd
}
