package daemon

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/beautyboost/beautyboost/internal/api"
	"github.com/beautyboost/beautyboost/internal/app/accounts"
	"github.com/beautyboost/beautyboost/internal/app/ledger"
	"github.com/beautyboost/beautyboost/internal/domain"
	"github.com/beautyboost/beautyboost/internal/infra/catalog"
	"github.com/beautyboost/beautyboost/internal/infra/memstore"
	"github.com/beautyboost/beautyboost/internal/infra/observability"
	"github.com/beautyboost/beautyboost/internal/infra/redisstore"
	"github.com/beautyboost/beautyboost/internal/infra/sqlite"
	"github.com/beautyboost/beautyboost/internal/security"
)

// App holds the wired services for one process.
type App struct {
	Config    Config
	Store     domain.KVStore
	Catalog   *catalog.Catalog
	Directory *accounts.Directory
	Ledger    *ledger.Service
	Log       *slog.Logger
}

// OpenStore opens the configured key-value backend.
func OpenStore(ctx context.Context, home string, cfg Config) (domain.KVStore, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return memstore.New(), nil
	case "redis":
		rc := cfg.Storage.Redis
		client, err := redisstore.Connect(ctx, rc.Addr, rc.Password, rc.DB)
		if err != nil {
			return nil, err
		}
		return redisstore.New(client, rc.Prefix), nil
	case "sqlite", "":
		return sqlite.Open(cfg.DataDir(home))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Open wires the directory and ledger over the configured store and runs
// the idempotent startup initialization.
func Open(ctx context.Context, home string, cfg Config, log *slog.Logger) (*App, error) {
	store, err := OpenStore(ctx, home, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	if db, ok := store.(*sqlite.DB); ok && log != nil {
		log.Info("opened sqlite store", "component", "daemon", "path", db.Path())
	}
	app, err := New(ctx, store, cfg, log)
	if err != nil {
		store.Close()
		return nil, err
	}
	return app, nil
}

// New wires services over an already-open store.
func New(ctx context.Context, store domain.KVStore, cfg Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	var metrics *observability.Recorder
	if cfg.Metrics.Enabled {
		metrics = observability.Default()
	} else {
		metrics = observability.Nop()
	}

	dir := accounts.New(store, nil, accounts.Options{
		VerifyPasswords: cfg.Auth.VerifyPasswords,
		Passwords:       security.NewPasswords(cfg.Auth.BcryptCost),
		Metrics:         metrics,
		Logger:          log,
	})
	led := ledger.New(store, dir, ledger.Options{
		RewardValidityDays: cfg.Ledger.RewardValidityDays,
		SeedDemo:           cfg.Ledger.SeedDemo,
		Metrics:            metrics,
		Logger:             log,
	})
	dir.SetProvisioner(led)

	if err := dir.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize directory: %w", err)
	}
	if err := led.InitializeAll(ctx); err != nil {
		return nil, fmt.Errorf("initialize ledgers: %w", err)
	}

	return &App{
		Config:    cfg,
		Store:     store,
		Catalog:   cat,
		Directory: dir,
		Ledger:    led,
		Log:       log,
	}, nil
}

// Close releases the store.
func (a *App) Close() error { return a.Store.Close() }

// ─── HTTP Server ────────────────────────────────────────────────────────────

// Handler builds the API handler. An empty token secret is replaced with a
// random per-process secret; tokens then do not survive a restart.
func (a *App) Handler() (http.Handler, error) {
	secret := a.Config.Auth.TokenSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		secret = hex.EncodeToString(buf)
		a.Log.Warn("auth.token_secret not set; using an ephemeral secret")
	}
	tokens, err := security.NewTokens(secret, "beautyboost", a.Config.Auth.TokenTTLDuration())
	if err != nil {
		return nil, err
	}

	srv := api.NewServer(a.Directory, a.Ledger, a.Catalog, tokens)
	srv.SetCORSOrigin(a.Config.API.CORSOrigin)
	srv.SetLogger(a.Log)
	if a.Config.Metrics.Enabled {
		srv.EnableMetrics()
	}
	return srv.Handler(), nil
}

// Serve runs the API until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	h, err := a.Handler()
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:              a.Config.API.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("api listening", "addr", httpSrv.Addr, "storage", a.Config.Storage.Backend)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
