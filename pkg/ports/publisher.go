package ports

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
)

// SnapshotPublisher delivers every new snapshot to the view layer.
// Publishing is fire-and-forget notification; nothing is read back from it.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap *domain.Snapshot) error
}

// SnapshotSubscriber streams the snapshots published for one session.
// The channel is closed when ctx is canceled.
type SnapshotSubscriber interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan *domain.Snapshot, error)
}

// PubSub is a publisher that can also be subscribed to.
type PubSub interface {
	SnapshotPublisher
	SnapshotSubscriber
}
