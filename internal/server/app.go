// Package server initializes and runs the Melitton persistence service.
// It opens PostgreSQL, applies migrations, wires services into the REST
// router and shuts the HTTP server down gracefully on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/melitton/internal/logging"
	"github.com/dmitrijs2005/melitton/internal/server/config"
	"github.com/dmitrijs2005/melitton/internal/server/httpapi"
	"github.com/dmitrijs2005/melitton/internal/server/metrics"
	"github.com/dmitrijs2005/melitton/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/melitton/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *http.Server
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}
	app.server = &http.Server{
		Addr:              c.EndpointAddrHTTP,
		Handler:           app.newHandler(rm),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return app, nil
}

func (app *App) newHandler(rm repomanager.RepositoryManager) http.Handler {
	m := metrics.New()
	h := httpapi.NewHandler(
		services.NewBoxService(app.db, rm),
		services.NewBaitService(app.db, rm),
		app.logger, m,
	)

	opts := httpapi.Options{MaxBodyBytes: app.config.MaxBodyBytes}
	if app.config.AuthEnabled() {
		opts.SecretKey = []byte(app.config.SecretKey)
	}
	return httpapi.NewRouter(h, app.logger, m, opts)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddrHTTP, "auth", app.config.AuthEnabled())
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			app.logger.Error(ctx, "http server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
