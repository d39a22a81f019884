package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"liveability/internal/config"
	"liveability/internal/gateway"
	"liveability/internal/logger"
)

func main() {
	// Initialize structured logger
	log := logger.NewForService("api-gateway")
	logger.SetDefault(log)

	// Load configuration from environment
	port := config.GetEnvOrDefault("GATEWAY_PORT", "8080")
	upstreamAddr := config.GetEnvOrDefault("USER_SERVICE_URL", "http://localhost:3001")

	upstream, err := url.Parse(upstreamAddr)
	if err != nil {
		slog.Error("Invalid USER_SERVICE_URL", "value", upstreamAddr, "error", err)
		os.Exit(1)
	}

	slog.Info("Starting API Gateway", "port", port, "upstream", upstream.String())

	// Setup router
	router := gateway.SetupRouter(upstream, config.AllowedOrigins())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("API Gateway listening", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down API Gateway")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("API Gateway stopped")
}
