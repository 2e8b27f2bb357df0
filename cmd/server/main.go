package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/xtding233/refine-backend/internal/api"
	"github.com/xtding233/refine-backend/internal/config"
	"github.com/xtding233/refine-backend/internal/logger"
	"github.com/xtding233/refine-backend/internal/pricing"
	"github.com/xtding233/refine-backend/internal/rpc"
	"github.com/xtding233/refine-backend/internal/service"
	"github.com/xtding233/refine-backend/internal/table"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log, closer := logger.New(cfg.Logging, os.Stdout)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	store, err := table.NewStore(table.NewLoader(cfg.TableDir), cfg.Server)
	if err != nil {
		return err
	}
	prices, err := cfg.Prices()
	if err != nil {
		return err
	}
	market, err := pricing.NewMarket(prices)
	if err != nil {
		return err
	}
	sim := service.NewSimulator(service.SimulatorDeps{
		Tables:      store,
		Market:      market,
		Catalog:     cfg.Catalog(),
		Logger:      log,
		DefaultRuns: cfg.Simulation.Runs,
		Workers:     cfg.Simulation.Workers,
		MaxAttempts: cfg.Simulation.MaxAttempts,
	})
	log.Info("level table loaded", "version", store.Current().Version(), "files", store.Files())

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(api.NewHandler(api.HandlerDeps{Sim: sim, Logger: log, BatchTimeout: time.Minute})),
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcSrv := grpc.NewServer()
	rpc.Register(grpcSrv, rpc.NewServer(sim, log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store.Watch(ctx, cfg.ReloadInterval, func(path string, err error) {
			if err != nil {
				log.Warn("table reload failed, keeping previous table", "path", path, "error", err)
				return
			}
			log.Info("table reloaded", "path", path, "version", store.Current().Version())
		})
		return nil
	})
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		log.Info("grpc listening", "addr", cfg.GRPCAddr)
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
