package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/melitton/internal/client/backup"
	"github.com/dmitrijs2005/melitton/internal/client/client"
	"github.com/dmitrijs2005/melitton/internal/client/config"
	"github.com/dmitrijs2005/melitton/internal/client/local"
	"github.com/dmitrijs2005/melitton/internal/client/state"
	"github.com/dmitrijs2005/melitton/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// objectStore is where remote backups live.
type objectStore interface {
	Upload(ctx context.Context, key string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
}

type App struct {
	config  *config.Config
	api     pinger
	store   *state.Store
	backups objectStore
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time
	closeFn func() error

	mu   sync.Mutex
	mode Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	db, err := local.Open(ctx, c.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	api := client.NewRESTClient(c.ServerBaseURL, &http.Client{Timeout: c.RequestTimeout}, c.SecretKey, logger)

	st, err := state.New(ctx, api, db, state.WithLogger(logger))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		config:  c,
		api:     api,
		store:   st,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		now:     time.Now,
		closeFn: db.Close,
	}

	if c.S3Enabled() {
		if err := a.initBackups(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) initBackups(ctx context.Context) error {
	password := a.config.S3RootPassword
	if password == "" && isTerminal(int(os.Stdin.Fd())) {
		pw, err := GetPassword(a.out, "Enter S3 secret key: ")
		if err != nil {
			return err
		}
		password = string(pw)
	}

	target, err := backup.NewS3Target(ctx, backup.S3Options{
		Region:       a.config.S3Region,
		RootUser:     a.config.S3RootUser,
		RootPassword: password,
		BaseEndpoint: a.config.S3BaseEndpoint,
		Bucket:       a.config.S3Bucket,
	})
	if err != nil {
		return err
	}
	a.backups = target
	return nil
}

// Run starts the background workers and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		if a.closeFn != nil {
			_ = a.closeFn()
		}
	}()

	go a.store.Run(ctx, a.config.ReconcileInterval)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// setMode records the connectivity mode and returns the previous one.
func (a *App) setMode(ctx context.Context, mode Mode) Mode {
	a.mu.Lock()
	prev := a.mode
	a.mode = mode
	a.mu.Unlock()

	if prev != mode {
		a.logger.Info(ctx, "connectivity changed", "mode", mode)
	}
	return prev
}

// checkOnline pings the server once. Coming back online triggers an
// immediate reconciliation.
func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	err := a.api.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	if prev := a.setMode(ctx, ModeOnline); prev == ModeOffline {
		rep, err := a.store.Reconcile(ctx)
		if err != nil {
			a.logger.Error(ctx, "reconcile after reconnect failed", "err", err)
			return
		}
		if !rep.Empty() {
			a.logger.Info(ctx, "reconciled after reconnect", "pushed", rep.Pushed, "failed", rep.Failed, "dropped", rep.Dropped)
		}
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) requestTimeout() time.Duration {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return a.config.RequestTimeout
}

// withTimeout bounds one user command.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.requestTimeout())
}
