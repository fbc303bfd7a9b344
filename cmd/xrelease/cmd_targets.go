package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTargetsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "targets [tag/version]",
		Short: "Print the resolved target table",
		Long: `Prints every target of the release manifest in build order, with its staging
directory and, when a version is given, the archive name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := c.loadManifest(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(c.stdout, "%s (%s)\n", manifest.Name, manifest.Source)
			for _, target := range manifest.Targets {
				if len(args) == 1 {
					fmt.Fprintf(c.stdout, "  %-14s %s\n", target, target.ArchiveName(manifest.Name, args[0]))
					continue
				}
				fmt.Fprintf(c.stdout, "  %-14s %s\n", target, target.StageName(manifest.Name))
			}
			return nil
		},
	}
}
