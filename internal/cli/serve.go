package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wimitasks/internal/server"
	"wimitasks/internal/storage/sqlite"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr, dbPath string
	var seed, noSeed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mock REST API backed by SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.cfg.Server.Addr
			}
			if dbPath == "" {
				dbPath = app.cfg.Server.DBPath
			}
			seed = app.cfg.Server.Seed && !noSeed
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, app.logger, addr, dbPath, seed)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default server.addr)")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to sqlite database file (default server.db_path)")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "do not insert sample data into an empty database")
	return cmd
}

// serve runs the API until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, logger *slog.Logger, addr, dbPath string, seed bool) error {
	store, err := sqlite.Open(dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if seed {
		if err := store.Seed(ctx); err != nil {
			return err
		}
	}

	srv := server.New(store, logger)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr), slog.String("db", dbPath))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}
	logger.Info("server stopped")
	return nil
}
