package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/soochol/marketfinder/internal/api"
	"github.com/soochol/marketfinder/internal/config"
	"github.com/soochol/marketfinder/internal/geocode"
	"github.com/soochol/marketfinder/internal/marketfiyati"
	"github.com/soochol/marketfinder/internal/session"
	"github.com/soochol/marketfinder/internal/tools"
	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		if err := serve(); err != nil {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println("marketfinder v" + version)
	fmt.Println("Usage: marketfinder serve")
}

func serve() error {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "err", err)
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	sessions := session.NewManager()
	reg := tools.NewRegistry()
	tools.RegisterMarketTools(reg,
		marketfiyati.New(cfg.Market.URL, cfg.Market.Timeout),
		geocode.NewNominatim(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout),
		sessions,
		tools.SearchDefaults{
			DistanceKm: cfg.Market.DefaultDistance,
			PageIndex:  cfg.Market.DefaultPage,
			PageSize:   cfg.Market.DefaultSize,
		},
	)

	janitor, err := session.NewJanitor(sessions, cfg.Sessions.PruneSchedule, cfg.Sessions.IdleTTL)
	if err != nil {
		return err
	}
	janitor.Start()
	defer janitor.Stop()

	srv, err := api.NewServer(reg, sessions)
	if err != nil {
		return err
	}
	if cfg.Server.BaseURL != "" {
		srv.SetA2ABaseURL(cfg.Server.BaseURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
		// SSE streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting marketfinder server", "addr", addr, "a2a", cfg.Server.BaseURL != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
