package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seantiz/tasksolver/internal/api"
	"github.com/seantiz/tasksolver/internal/config"
	"github.com/seantiz/tasksolver/internal/engine"
	"github.com/seantiz/tasksolver/internal/executor"
	"github.com/seantiz/tasksolver/internal/store"
	"github.com/seantiz/tasksolver/internal/telemetry"
	"github.com/seantiz/tasksolver/internal/version"
)

const serviceName = "tasksolver"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the task server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntP("workers", "w", config.DefaultWorkers, "number of worker goroutines")
	serveCmd.Flags().String("work-dir", "", "directory for uploaded binaries (default: system temp dir)")
	serveCmd.Flags().String("python", config.DefaultPython, "interpreter used for python tasks")
	serveCmd.Flags().String("otel-endpoint", "", "OTLP HTTP endpoint for tracing (e.g. localhost:4318); empty disables tracing")

	bindFlag(config.KeyWorkers, serveCmd.Flags(), "workers")
	bindFlag(config.KeyWorkDir, serveCmd.Flags(), "work-dir")
	bindFlag(config.KeyPython, serveCmd.Flags(), "python")
	bindFlag(config.KeyOTelEndpoint, serveCmd.Flags(), "otel-endpoint")
	_ = viper.BindEnv(config.KeyOTelEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Load(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel).With(slog.String("service", serviceName))
	logger.Info("tasksolver: starting",
		"version", version.Version,
		"listen_addr", cfg.ListenAddr(),
		"workers", cfg.Workers,
		"python", cfg.Python,
	)

	shutdownTracer, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer shutdownTracer()

	reg := executor.NewDefaultRegistry(cfg.Python, cfg.WorkDir)
	eng := engine.NewEngine(store.NewMemoryStore(), reg, cfg.Workers, logger)
	srv := api.NewServer(cfg.ListenAddr(), eng, reg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)

	logger.Info("draining in-flight tasks", "running", eng.Running(), "pending", eng.Pending())
	eng.Shutdown()

	if runErr != nil {
		return fmt.Errorf("server: %w", runErr)
	}
	logger.Info("stopped cleanly")
	return nil
}
