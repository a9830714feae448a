package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chat-relay/internal/config"
	"chat-relay/internal/handlers"
	"chat-relay/internal/logger"
	"chat-relay/internal/router"
	"chat-relay/internal/services"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "chat-relay",
		Short: "HTTP relay in front of an Azure OpenAI chat deployment",
		Long: `chat-relay accepts POST /chat {"message": "..."} and forwards the message to an
Azure OpenAI deployment, returning {"reply": "..."}.

Required environment:
  OPENAI_API_KEY, AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_DEPLOYMENT, AZURE_OPENAI_API_VERSION
Optional:
  PORT (3000), LOG_LEVEL (info), UPSTREAM_TIMEOUT_SECONDS (60), MAX_BODY_BYTES (102400)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load before reading the environment (default ./.env if present)")

	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(envFile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration OK")
			return nil
		},
	})

	return root
}

func loadConfig(envFile string) (*config.Config, error) {
	if envFile != "" {
		return config.Load(envFile)
	}
	return config.Load()
}

func serve(ctx context.Context, envFile string) error {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("✓ Environment variables loaded", "env", cfg.Env, "log_level", cfg.LogLevel)

	// ──── Step 2: Initialize Azure OpenAI Client ────
	chatService := services.NewAzureChatService(services.AzureOptions{
		APIKey:     cfg.APIKey,
		Endpoint:   cfg.Endpoint,
		Deployment: cfg.Deployment,
		APIVersion: cfg.APIVersion,
		Timeout:    cfg.UpstreamTimeout,
	})
	log.Info("✓ Azure OpenAI client initialized",
		"endpoint", cfg.Endpoint,
		"deployment", cfg.Deployment,
		"api_version", cfg.APIVersion,
	)

	// ──── Step 3: Start HTTP Server ────
	chatHandler := handlers.NewChatHandler(chatService, log)
	r := router.New(chatHandler, cfg.MaxBodyBytes)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info(fmt.Sprintf("✓ Chat relay ready on http://localhost:%s", cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
