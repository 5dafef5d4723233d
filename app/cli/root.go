// Package cli implements the project-tracker command-line interface.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"project-tracker/app/config"
	"project-tracker/app/logger"
)

const serviceName = "project-tracker"

var (
	cfgFile string
	v       = config.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "project-tracker",
	Short: "Minimal web project and task tracker",
	Long: `project-tracker serves a small web UI for projects and their tasks.

Quick start:
  project-tracker migrate          Create or upgrade the database schema
  project-tracker seed             Insert the sample project
  project-tracker serve            Start the web server on localhost:3000`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.ReadFile(v, cfgFile)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tracker.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("backend", "", "store backend (sqlite, postgres, neo4j)")
	rootCmd.PersistentFlags().String("dsn", "", "SQLite path or PostgreSQL connection string")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = v.BindPFlag("store.dsn", rootCmd.PersistentFlags().Lookup("dsn"))

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSeedCmd())
}

// loadConfig resolves the final configuration and a logger for it.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(serviceName, cfg.Log.Level), nil
}
