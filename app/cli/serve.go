package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"project-tracker/app/controllers"
	"project-tracker/app/routes"
	"project-tracker/app/services"
	"project-tracker/app/views"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the project-tracker web server.

The schema is migrated on startup. SIGINT or SIGTERM shuts the server
down gracefully, waiting up to server.shutdown_timeout for in-flight
requests.

Example:
  project-tracker serve                  # localhost:3000, SQLite
  project-tracker serve --addr :8080     # custom address`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := services.Open(ctx, cfg, log)
			if err != nil {
				log.WithError(err).Error("failed to open store")
				return err
			}
			defer func() {
				if err := store.Close(context.Background()); err != nil {
					log.WithError(err).Warn("failed to close store")
				}
			}()

			tmpl, err := views.NewTemplates()
			if err != nil {
				return err
			}

			projectController := controllers.NewProjectController(store, tmpl, log)
			server := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      routes.NewHandler(projectController, log),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.WithField("addr", cfg.Server.Addr).Info("project tracker starting")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				log.WithError(err).Error("server failed")
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "", "listen address (default localhost:3000)")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
