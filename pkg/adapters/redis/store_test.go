package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tinct/pkg/adapters/redis"
	"github.com/aretw0/tinct/pkg/ports"
	contract "github.com/aretw0/tinct/pkg/ports/tests"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunTemplateStoreContract(t, store)
}

func TestRedisStore_SourceContract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)

	data := map[string]string{
		"kitty":   "background {{bg}}",
		"waybar":  "@define-color bg {{bg}};",
		"dunstrc": "{{#urgent}}frame_color = \"{{.}}\"{{/urgent}}",
	}
	for name, src := range data {
		require.NoError(t, store.Save(context.Background(), name, src))
	}

	contract.TemplateSourceContractTest(t, store, data)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	// Create store with 1s TTL
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	name := "template-ttl"

	// 1. Save
	require.NoError(t, store.Save(ctx, name, "short lived"))

	// 2. Verify List (immediately)
	names, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, names, name)

	// 3. Fast Forward time in miniredis (for Key Expiration)
	mr.FastForward(2 * time.Second)

	// 4. Verify Load (should fail)
	_, err = store.Load(ctx, name)
	assert.ErrorIs(t, err, ports.ErrTemplateNotFound)

	// 5. Verify List (lazily cleaned up)
	// The index score is computed from time.Now(), so real time has to pass.
	time.Sleep(2100 * time.Millisecond)

	names, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-template", "x"))

	assert.True(t, mr.Exists("custom:app:src:my-template"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"my-template"}, list)
}

func TestRedisStore_Watch(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)

	changes, err := store.Watch(t.Context())
	require.NoError(t, err)

	publisher := redis.NewFromClient(client)
	require.NoError(t, publisher.Save(context.Background(), "theme", "{{bg}}"))

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}
}
