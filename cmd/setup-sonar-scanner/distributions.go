package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/entities"
	"github.com/ochairo/setup-sonar-scanner/internal/external-adapters/yaml"
)

func newDistributionsCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "distributions",
		Short: "List the distribution recipes and their install locations",
		Example: `  setup-sonar-scanner distributions
  setup-sonar-scanner distributions --dir ./distributions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo := yaml.NewEmbeddedDistributionRepository()
			if dir != "" {
				repo = yaml.NewDistributionRepository(os.DirFS(dir))
			}

			ctx := cmd.Context()
			names, err := repo.ListDistributions(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Available distributions (%d total):\n\n", len(names))
			for _, name := range names {
				dist, err := repo.GetDistribution(ctx, name)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "  %s  %s\n", dist.Name, dist.BaseURL)
				for _, platform := range entities.Platforms() {
					path, ok := dist.InstallPaths[platform]
					if !ok {
						continue
					}
					fmt.Fprintf(out, "    %-8s %-30s runtime suffix %s\n", platform, path, dist.RuntimeSuffixes[platform])
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "read recipes from a directory instead of the built-in set")
	return cmd
}
