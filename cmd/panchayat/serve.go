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

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/panchayat/internal/config"
	"github.com/mtlprog/panchayat/internal/handler"
	"github.com/mtlprog/panchayat/internal/messaging"
	"github.com/mtlprog/panchayat/internal/middleware"
	"github.com/mtlprog/panchayat/internal/service"
	"github.com/mtlprog/panchayat/internal/session"
	"github.com/mtlprog/panchayat/internal/tracking"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   config.DefaultPort,
				Usage:   "HTTP server port",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:    "jwt-secret",
				Usage:   "Secret used to sign dashboard tokens",
				EnvVars: []string{"JWT_SECRET"},
			},
			&cli.DurationFlag{
				Name:    "token-ttl",
				Value:   config.DefaultTokenTTL,
				Usage:   "Lifetime of dashboard tokens",
				EnvVars: []string{"TOKEN_TTL"},
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for submission rate limiting (disabled when empty)",
				EnvVars: []string{"REDIS_URL"},
			},
			&cli.IntFlag{
				Name:    "submit-limit",
				Value:   config.DefaultSubmitLimit,
				Usage:   "Submissions allowed per client address per hour",
				EnvVars: []string{"SUBMIT_LIMIT"},
			},
			&cli.BoolFlag{
				Name:    "trust-proxy",
				Usage:   "Key the submission limit on X-Forwarded-For (only behind a proxy that sets it)",
				EnvVars: []string{"TRUST_PROXY"},
			},
			&cli.StringFlag{
				Name:    "amqp-url",
				Usage:   "RabbitMQ URL for issue events (disabled when empty)",
				EnvVars: []string{"AMQP_URL"},
			},
		},
		Action: runServe,
	}
}

// newIssueService wires the service over an opened store and reserves
// every stored tracking id.
func newIssueService(ctx context.Context, s *store, publisher messaging.Publisher) *service.IssueService {
	svc := service.NewIssueService(s.repo, tracking.NewGenerator(), service.NewLifecycle(nil), publisher)
	svc.Warmup(ctx)
	return svc
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	secret := c.String("jwt-secret")
	if secret == "" {
		return fmt.Errorf("jwt secret is required (--jwt-secret or JWT_SECRET)")
	}

	ttl := c.Duration("token-ttl")
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}

	s, err := openStore(c)
	if err != nil {
		return err
	}
	defer s.close()

	directory, err := loadDirectory(c)
	if err != nil {
		return err
	}

	tokens, err := session.NewTokenIssuer(secret, ttl)
	if err != nil {
		return err
	}

	var publisher messaging.Publisher
	if url := c.String("amqp-url"); url != "" {
		mq, err := messaging.NewRabbitMQ(url)
		if err != nil {
			return err
		}
		defer mq.Close()
		publisher = mq
	}

	var submitLimit func(http.Handler) http.Handler
	if url := c.String("redis-url"); url != "" {
		client, err := middleware.NewRedisClient(ctx, url)
		if err != nil {
			return err
		}
		defer client.Close()
		limiter := middleware.NewRedisLimiter(client, "panchayat:submit", c.Int("submit-limit"), config.DefaultSubmitWindow)
		submitLimit = middleware.RateLimit(limiter, c.Bool("trust-proxy"))
	}

	issueService := newIssueService(ctx, s, publisher)
	h := handler.New(issueService, s.repo, directory, tokens, submitLimit)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server",
			"server_addr", "http://localhost:"+port,
			"store", c.String("store"),
			"rate_limited", submitLimit != nil,
			"events", publisher != nil,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
