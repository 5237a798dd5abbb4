package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/worker"
)

// Bus holds configuration for the work transport and worker pool
type Bus struct {
	mode     string
	redisURL string
	workers  int
	depth    int
}

// Flags returns CLI flags for bus configuration
func (b *Bus) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bus",
			Usage:       "Work transport (memory, redis)",
			Value:       "memory",
			Sources:     cli.EnvVars("MNEMO_BUS"),
			Destination: &b.mode,
		},
		&cli.StringFlag{
			Name:        "redis-url",
			Usage:       "Redis connection URL for --bus=redis (e.g. redis://localhost:6379/0)",
			Value:       "redis://localhost:6379/0",
			Sources:     cli.EnvVars("MNEMO_REDIS_URL"),
			Destination: &b.redisURL,
		},
		&cli.IntFlag{
			Name:        "workers",
			Usage:       "Number of concurrent memory workers",
			Value:       worker.DefaultWorkers,
			Sources:     cli.EnvVars("MNEMO_WORKERS"),
			Destination: &b.workers,
		},
		&cli.IntFlag{
			Name:        "queue-depth",
			Usage:       "Request queue depth for the in-process bus",
			Value:       64,
			Sources:     cli.EnvVars("MNEMO_QUEUE_DEPTH"),
			Destination: &b.depth,
		},
	}
}

// LogAttrs returns log attributes for the bus configuration
func (b *Bus) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("mode", b.mode),
		slog.Int("workers", b.workers),
	}
}

// Workers returns the configured worker count
func (b *Bus) Workers() int {
	return b.workers
}

// Configure builds the work transport selected by --bus
func (b *Bus) Configure(ctx context.Context) (interfaces.Bus, error) {
	switch b.mode {
	case "memory":
		return worker.NewInProcBus(b.depth), nil
	case "redis":
		return worker.NewRedisBus(ctx, b.redisURL)
	default:
		return nil, goerr.Wrap(ErrUnknownBusMode, "unsupported bus",
			goerr.V(BusModeKey, b.mode))
	}
}
