package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"planttime/config"
	"planttime/database"
	"planttime/handlers"
	"planttime/middleware"
	"planttime/store"
	"planttime/timeclock"
	"planttime/web"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:          "planttime",
	Short:        "Plant floor time tracking",
	Long:         `Workers clock in and out against a project, sub-department and production line; administrators review the recorded hours.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db, log)
		log.Info("Schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample plant layout into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db, log)

		result, err := database.Seed(db, log)
		if err != nil {
			return err
		}
		if result.Skipped {
			fmt.Println("Database already contains data. Skipping initialization.")
			return nil
		}
		fmt.Printf("Created %d department, %d sub-departments, %d production lines, %d workers, %d projects\n",
			result.Departments, result.SubDepartments, result.ProductionLines, result.Workers, result.Projects)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration, opens the database and migrates the schema.
func bootstrap() (*config.Config, *logrus.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	log := middleware.NewLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		closeDB(db, log)
		return nil, nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return cfg, log, db, nil
}

func closeDB(db *gorm.DB, log *logrus.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Warn("Failed to close database")
	}
}

func serve() error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	if cfg.SeedOnStart {
		if _, err := database.Seed(db, log); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	templates, err := web.LoadTemplates(handlers.TemplateFuncs)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	st := store.New(db, log)
	clock := timeclock.NewService(st, log)
	router := handlers.NewRouter(
		handlers.NewAPIHandler(cfg, st, clock),
		handlers.NewPageHandler(cfg, st, clock, templates),
		log,
	)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.ServerPort).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
