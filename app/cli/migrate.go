package cli

import (
	"context"

	"github.com/spf13/cobra"

	"project-tracker/app/services"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the store schema",
		Long: `Apply pending SQL migrations, or create the Neo4j constraints when
the neo4j backend is configured. Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := services.Open(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(context.Background()) }()

			log.Info("schema up to date")
			return nil
		},
	}
}
