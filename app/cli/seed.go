package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"project-tracker/app/services"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [fixture.yaml]",
		Short: "Insert sample projects and tasks",
		Long: `Insert projects and tasks from a YAML fixture. Without a file the
sample "Clean House" project with one task is inserted.

Fixture format:
  projects:
    - title: Clean House
      tasks:
        - Clean bedroom`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture := &services.DefaultFixture
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open fixture: %w", err)
				}
				defer f.Close()
				if fixture, err = services.LoadFixture(f); err != nil {
					return err
				}
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := services.Open(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(context.Background()) }()

			res, err := services.Seed(cmd.Context(), store, fixture)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"projects": res.Projects, "tasks": res.Tasks}).Info("seeded")
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d projects and %d tasks\n", res.Projects, res.Tasks)
			return nil
		},
	}
}
