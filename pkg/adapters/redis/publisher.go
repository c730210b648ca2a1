package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Publisher implements ports.PubSub on top of Redis Pub/Sub.
// Each session maps to one channel; payloads are JSON-encoded snapshots.
type Publisher struct {
	client *backend.Client
	prefix string
	logger *slog.Logger
}

type Option func(*Publisher)

// WithPrefix sets the channel prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithLogger sets the logger used for undecodable messages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New creates a new Redis publisher with options.
func New(address, password string, db int, opts ...Option) *Publisher {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis publisher from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		prefix: "lattice:snapshots:",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) channel(sessionID string) string {
	return p.prefix + sessionID
}

// Publish sends the snapshot to the session channel.
func (p *Publisher) Publish(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel(snap.SessionID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Subscribe listens on the session channel until ctx is canceled.
// It returns once Redis has confirmed the subscription.
func (p *Publisher) Subscribe(ctx context.Context, sessionID string) (<-chan *domain.Snapshot, error) {
	pubsub := p.client.Subscribe(ctx, p.channel(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to redis: %w", err)
	}

	out := make(chan *domain.Snapshot, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var snap domain.Snapshot
				if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
					p.logger.Warn("Dropping undecodable snapshot", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- &snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Ping checks that the server is reachable.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
