package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/pkg/adapters/metrics"
	"github.com/aretw0/lattice/pkg/adapters/redis"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ids"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// app holds what the long-running commands share.
type app struct {
	sessions *session.Manager
	close    func()
}

// newApp builds the session manager from cfg. reg may be nil to skip metrics.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*app, error) {
	var hooks domain.LifecycleHooks
	if reg != nil {
		hooks = metrics.New(reg).Hooks(hooks)
	}

	var publisher ports.SnapshotPublisher
	closeFn := func() {}
	if cfg.Redis.Addr != "" {
		opts := []redis.Option{redis.WithLogger(logger)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		pub := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := pub.Ping(ctx); err != nil {
			_ = pub.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("Publishing snapshots to Redis", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		publisher = pub
		closeFn = func() {
			if err := pub.Close(); err != nil {
				logger.Warn("Failed to close Redis publisher", "error", err)
			}
		}
	}

	factory := func(sessionID string) (ports.Builder, error) {
		gen, ok := ids.New(cfg.IDs.Strategy)
		if !ok {
			return nil, fmt.Errorf("unknown id strategy %q", cfg.IDs.Strategy)
		}
		opts := []lattice.Option{
			lattice.WithSessionID(sessionID),
			lattice.WithLogger(logger),
			lattice.WithIDGenerator(gen),
			lattice.WithLifecycleHooks(hooks),
			lattice.WithMaxContainerDepth(cfg.Tree.MaxContainerDepth),
		}
		if publisher != nil {
			opts = append(opts, lattice.WithPublisher(publisher))
		}
		return lattice.New(opts...), nil
	}

	return &app{
		sessions: session.NewManager(factory, session.WithLogger(logger)),
		close:    closeFn,
	}, nil
}
