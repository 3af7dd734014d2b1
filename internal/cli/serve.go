package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tumblrsearch/internal/api"
	"github.com/ppiankov/tumblrsearch/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the registered feeds over HTTP",
	RunE:  serveAction,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func serveAction(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	handler := api.NewHandler(a.catalog, Version, a.log)
	router := api.NewRouter(handler, a.log, a.metrics, a.cfg.Logging.Development)
	srv := api.NewServer(api.ServerConfig{
		Addr:            addr,
		ReadTimeout:     a.cfg.Server.ReadTimeout.Duration,
		WriteTimeout:    a.cfg.Server.WriteTimeout.Duration,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout.Duration,
	}, router, a.log)

	if a.cfg.Tumblr.APIKey == "" {
		a.log.Warn("API key is not set, searches will be rejected",
			logger.String("env", a.cfg.Tumblr.APIKeyEnv))
	}
	a.log.Info("serving feeds",
		logger.String("public_url", a.cfg.Server.PublicURL),
		logger.String("version", Version))

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
