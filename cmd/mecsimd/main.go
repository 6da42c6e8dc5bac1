package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/simd"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/config"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/logger"
	"google.golang.org/grpc"
)

func main() {
	var grpcAddr string
	var httpAddr string
	var logLevel string
	var scenarioPath string
	var outPath string

	flag.StringVar(&grpcAddr, "grpc-addr", ":50051", "gRPC health listen address")
	flag.StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.StringVar(&scenarioPath, "scenario", "", "build this scenario once, write the result and exit")
	flag.StringVar(&outPath, "out", "", "result file for -scenario (default stdout)")
	flag.Parse()

	if scenarioPath != "" {
		// keep stdout clean for the JSON result
		logger.SetDefault(logger.NewText(logLevel, os.Stderr))
		if err := buildOnce(scenarioPath, outPath); err != nil {
			logger.Error("scenario build failed", "scenario", scenarioPath, "error", err)
			os.Exit(1)
		}
		return
	}

	logger.SetDefault(logger.NewText(logLevel, os.Stdout))
	serve(grpcAddr, httpAddr)
}

// buildOnce builds a scenario file and writes the JSON result
func buildOnce(scenarioPath, outPath string) error {
	sc, err := config.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}
	res, err := simd.Build(sc)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	logger.Info("scenario result written", "app", res.Summary.App, "deployments", res.Summary.Deployments)
	return nil
}

func serve(grpcAddr, httpAddr string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	store := simd.NewRunStore()
	health := simd.NewHealth()

	// TODO: Configure gRPC server security (e.g., TLS, authentication)
	// before exposing the health endpoint outside a cluster.
	grpcServer := grpc.NewServer()
	health.Register(grpcServer)

	grpcLis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Error("failed to listen for gRPC", "addr", grpcAddr, "error", err)
		stop()
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           simd.NewHTTPServer(store, health).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("gRPC health server listening", "addr", grpcAddr)
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.Error("gRPC server error", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health.Shutdown()
	grpcServer.GracefulStop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
}
