package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gorilla/securecookie"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/admin-console/internal/admin/account"
	"finitefield.org/admin-console/internal/admin/config"
	"finitefield.org/admin-console/internal/admin/httpserver"
	"finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/logging"
	adminnotifications "finitefield.org/admin-console/internal/admin/notifications"
	"finitefield.org/admin-console/internal/admin/preferences"
	"finitefield.org/admin-console/internal/admin/routes"
	"finitefield.org/admin-console/internal/admin/session"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Admin console server and tooling",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default: ./admin.yaml)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin console HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	root.AddCommand(serve, newPaletteCommand(), newRoutesCommand(&configPath))
	root.RunE = serve.RunE
	return root
}

func serve(parent context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree, err := loadRoutes(afero.NewOsFs(), cfg.Routes.File)
	if err != nil {
		return err
	}

	hashKey, blockKey := []byte(cfg.Session.HashKey), []byte(cfg.Session.BlockKey)
	if len(hashKey) == 0 {
		logger.Warn("session.hash_key not set; generating an ephemeral key, sessions end on restart")
		hashKey = securecookie.GenerateRandomKey(64)
		blockKey = securecookie.GenerateRandomKey(32)
	}

	sessions, err := session.NewManager(session.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      hashKey,
		BlockKey:     blockKey,
		CookiePath:   cfg.HTTP.BasePath,
		CookieSecure: cfg.Session.Secure,
		IdleTimeout:  cfg.Session.IdleTimeout,
	})
	if err != nil {
		return err
	}
	prefs, err := preferences.NewStore(preferences.StoreConfig{
		HashKey:    hashKey,
		BlockKey:   blockKey,
		CookiePath: cfg.HTTP.BasePath,
		Secure:     cfg.Session.Secure,
	})
	if err != nil {
		return err
	}

	accounts, err := buildAccounts(ctx, cfg, logger)
	if err != nil {
		return err
	}
	notifications, err := buildNotifications(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:          cfg.HTTP.Addr,
		BasePath:         cfg.HTTP.BasePath,
		LoginPath:        cfg.HTTP.LoginPath,
		Environment:      cfg.App.Environment,
		AppTitle:         cfg.App.Title,
		DefaultPreset:    cfg.Theme.DefaultPreset,
		IDTokenLogin:     cfg.Auth.Mode == config.AuthFirebase,
		Routes:           tree,
		Sessions:         sessions,
		Preferences:      prefs,
		Accounts:         accounts,
		Notifications:    notifications,
		Logger:           logger,
		Metrics:          middleware.NewMetrics(),
		CSRFCookieSecure: cfg.Session.Secure,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("admin server listening",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("base_path", cfg.HTTP.BasePath),
		zap.String("auth_mode", cfg.Auth.Mode),
		zap.String("environment", cfg.App.Environment),
	)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("admin server stopped")
	return nil
}

func loadRoutes(fs afero.Fs, path string) (*routes.Tree, error) {
	if path == "" {
		return routes.Default()
	}
	return routes.LoadFile(fs, path)
}

func buildAccounts(ctx context.Context, cfg config.Config, logger *zap.Logger) (account.Service, error) {
	switch cfg.Auth.Mode {
	case config.AuthFirebase:
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Auth.FirebaseProjectID})
		if err != nil {
			return nil, fmt.Errorf("initialise firebase app: %w", err)
		}
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialise firebase auth client: %w", err)
		}
		logger.Info("firebase sign-in enabled", zap.String("project", cfg.Auth.FirebaseProjectID))
		return account.NewFirebaseService(client), nil
	case config.AuthAPI:
		return account.NewHTTPService(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})
	default:
		logger.Warn("using built-in demo accounts", zap.Bool("require_otp", cfg.Auth.RequireOTP))
		return account.NewStaticService(account.DemoUsers(cfg.Auth.RequireOTP), 12*time.Hour), nil
	}
}

func buildNotifications(cfg config.Config, logger *zap.Logger) (adminnotifications.Service, error) {
	var svc adminnotifications.Service
	if cfg.Auth.Mode == config.AuthAPI {
		remote, err := adminnotifications.NewHTTPService(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})
		if err != nil {
			return nil, err
		}
		svc = remote
	} else {
		logger.Debug("using seeded demo notifications")
		svc = adminnotifications.NewStaticService(nil)
	}
	if cfg.Notifications.CacheTTL > 0 {
		svc = adminnotifications.NewCachedService(svc, cfg.Notifications.CacheTTL)
	}
	return svc, nil
}
