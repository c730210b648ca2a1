package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/lattice/pkg/adapters/redis"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher_Contract(t *testing.T) {
	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	pub := redis.NewFromClient(client)
	defer pub.Close()
	ports.RunPubSubContract(t, pub)
}

func TestRedisPublisher_ChannelName(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	pub := redis.NewFromClient(client, redis.WithPrefix("test:"))
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw := client.Subscribe(ctx, "test:abc")
	defer raw.Close()
	_, err := raw.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, &domain.Snapshot{SessionID: "abc", Version: 3}))

	msg, err := raw.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test:abc", msg.Channel)
	assert.JSONEq(t, `{"session_id":"abc","version":3,"forest":[]}`, msg.Payload)
}

func TestPublisher_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	p := redis.New(mr.Addr(), "", 0)
	defer p.Close()

	assert.NoError(t, p.Ping(context.Background()))

	mr.Close()
	assert.Error(t, p.Ping(context.Background()))
}
