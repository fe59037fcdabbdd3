package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"feedgram/app/auth"
	"feedgram/app/config"
	"feedgram/app/logging"
	"feedgram/app/media"
	"feedgram/app/repositories"
	"feedgram/app/routes"
	"feedgram/app/views"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", c.cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", c.cfg.Server.Addr, err)
			}
			return RunAppServer(ctx, c.cfg, c.logger, ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

// RunAppServer serves the application on ln until ctx is cancelled, then
// drains in-flight requests and closes the database.
func RunAppServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, ln net.Listener) error {
	store, err := repositories.Open(repositories.Options{
		Path:       cfg.Storage.Path,
		InMemory:   cfg.Storage.InMemory,
		SyncWrites: cfg.Storage.SyncWrites,
		Logger:     logging.NewBadgerLogger(logger),
	})
	if err != nil {
		ln.Close()
		return err
	}
	defer store.Close()

	mediaStore, err := media.NewStore(media.Options{
		Dir:          cfg.Media.Dir,
		URLPrefix:    cfg.Media.URLPrefix,
		MaxBytes:     cfg.Media.MaxUploadBytes,
		AllowedTypes: cfg.Media.AllowedTypes,
	})
	if err != nil {
		ln.Close()
		return err
	}

	sessions, err := auth.NewSessions(auth.SessionOptions{
		Secret:     cfg.Auth.Secret,
		TTL:        cfg.GetSessionTTL(),
		CookieName: cfg.Auth.CookieName,
		Secure:     cfg.Auth.SecureCookie,
	})
	if err != nil {
		ln.Close()
		return err
	}

	renderer, err := views.New()
	if err != nil {
		ln.Close()
		return err
	}

	handler := routes.SetupRoutes(routes.Deps{
		Store:           store,
		Media:           mediaStore,
		Sessions:        sessions,
		Views:           renderer,
		Logger:          logger,
		StrictOwnership: cfg.Feed.StrictOwnership,
		CORSOrigins:     cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		ErrorLog:     zap.NewStdLog(logger.Named("http")),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()
	logger.Info("feedgram listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("db", store.Path()),
		zap.Bool("strict_ownership", cfg.Feed.StrictOwnership),
	)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.GetShutdownTimeout()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	<-errCh
	return nil
}
