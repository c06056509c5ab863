package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/tilemark/internal/marker"
	"github.com/kiesman99/tilemark/internal/server"
	"github.com/kiesman99/tilemark/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the watermark API and Telegram webhook",
	Long: `Start an HTTP server that provides a REST API for watermarking images.

When a Telegram bot token is configured (telegram.token, TILEMARK_TELEGRAM_TOKEN
or TELEGRAM_API_KEY) the server also answers Telegram updates at
/api/v1/telegram/webhook, and registers that webhook on start when
telegram.webhook_url is set.

Examples:
  # Start server on default port 8080
  tilemark serve

  # Start server on custom port
  tilemark serve --port 3000

  # Start server with custom bind address and a render limit
  tilemark serve --bind 0.0.0.0 --port 8080 --rate-limit 5`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server configuration
	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().Duration("timeout", 30*time.Second, "request timeout")
	serveCmd.Flags().Float64("rate-limit", 0, "watermark renders per second across all clients (0 = unlimited)")
	serveCmd.Flags().Int("burst", 4, "renders allowed at once above the rate limit")

	// Bind flags to viper
	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.timeout", serveCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("server.rate_limit", serveCmd.Flags().Lookup("rate-limit"))
	viper.BindPFlag("server.burst", serveCmd.Flags().Lookup("burst"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	style, err := cfg.TileStyle()
	if err != nil {
		return err
	}

	mk := marker.New(marker.Config{
		Timeout:        cfg.Source.Timeout,
		UserAgent:      cfg.Source.UserAgent,
		MaxSourceBytes: cfg.Source.MaxBytes,
		MaxFieldPixels: cfg.Source.MaxFieldPixels,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var bot server.UpdateHandler
	if cfg.TelegramEnabled() {
		client := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.APIURL)
		bot = telegram.NewBot(client, mk, telegram.BotConfig{
			Style:          style,
			DeleteOriginal: cfg.Telegram.DeleteOriginal,
			Logger:         logger.WithField("component", "telegram"),
		})

		if cfg.Telegram.WebhookURL != "" {
			err := client.SetWebhook(ctx, telegram.SetWebhookRequest{
				URL:            cfg.Telegram.WebhookURL,
				SecretToken:    cfg.Telegram.WebhookSecret,
				AllowedUpdates: []string{"message"},
			})
			if err != nil {
				return fmt.Errorf("register webhook: %w", err)
			}
			logger.WithField("url", cfg.Telegram.WebhookURL).Info("registered telegram webhook")
		}
	} else {
		logger.Info("no telegram token configured, webhook disabled")
	}

	apiServer := server.NewServer(server.Config{
		Version:       version,
		Style:         style,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		RateLimit:     cfg.Server.RateLimit,
		Burst:         cfg.Server.Burst,
		WebhookSecret: cfg.Telegram.WebhookSecret,
		Logger:        logger.WithField("component", "server"),
	}, mk, bot)

	addr := cfg.Addr()
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.NewRouter(apiServer, cfg.Server.Timeout),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("server shutdown error")
		}
	}()

	logger.WithFields(logrus.Fields{
		"addr":    addr,
		"version": version,
	}).Info("starting tilemark server")
	logger.Infof("health check: http://%s%s/health", addr, server.BasePath)
	logger.Infof("watermark endpoint: http://%s%s/watermark", addr, server.BasePath)

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
