package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPubSubContract runs a suite of tests to verify that a PubSub implementation
// adheres to the defined interface contract.
func RunPubSubContract(t *testing.T, ps PubSub) {
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Publish and Receive", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ch, err := ps.Subscribe(ctx, sessionID)
		require.NoError(t, err, "Subscribe should not return error")

		n := domain.NewNode("c1", domain.TypeContainer)
		n.Children = append(n.Children, domain.NewNode("t1", domain.TypeText))
		snap := &domain.Snapshot{
			SessionID:  sessionID,
			Version:    7,
			Forest:     domain.Forest{n},
			SelectedID: "t1",
		}
		require.NoError(t, ps.Publish(ctx, snap), "Publish should not return error")

		select {
		case got, ok := <-ch:
			require.True(t, ok, "channel closed before delivery")
			assert.Equal(t, uint64(7), got.Version)
			assert.Equal(t, "t1", got.SelectedID)
			assert.Equal(t, []string{"c1", "t1"}, got.Forest.IDs())
		case <-ctx.Done():
			t.Fatal("timed out waiting for snapshot")
		}
	})

	t.Run("Sessions Are Isolated", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ch, err := ps.Subscribe(ctx, sessionID+"-a")
		require.NoError(t, err)

		require.NoError(t, ps.Publish(ctx, &domain.Snapshot{SessionID: sessionID + "-b", Version: 1}))
		require.NoError(t, ps.Publish(ctx, &domain.Snapshot{SessionID: sessionID + "-a", Version: 2}))

		select {
		case got := <-ch:
			assert.Equal(t, uint64(2), got.Version, "snapshot of another session leaked")
		case <-ctx.Done():
			t.Fatal("timed out waiting for snapshot")
		}
	})

	t.Run("Cancel Closes Channel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := ps.Subscribe(ctx, sessionID+"-closed")
		require.NoError(t, err)
		cancel()

		deadline := time.After(5 * time.Second)
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
			case <-deadline:
				t.Fatal("channel not closed after cancel")
			}
		}
	})
}
