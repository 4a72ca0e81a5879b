package snapshots

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/broadcast777/my-dividend-app/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string  `msgpack:"name"`
	Yield float64 `msgpack:"yield"`
}

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    fmt.Sprintf("file:snapshots_test_%d?mode=memory&cache=shared", time.Now().UnixNano()),
		Profile: database.ProfileCache,
		Name:    "cache-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.ApplySchema(Schema))
	return NewStore(db.Conn(), ttl, zerolog.Nop())
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	store := newTestStore(t, time.Minute)
	ctx := context.Background()

	in := []payload{{Name: "고배당 A", Yield: 7.2}, {Name: "고배당 B", Yield: 4.1}}
	require.NoError(t, store.Put(ctx, "universe", in))

	var out []payload
	hit, err := store.Get(ctx, "universe", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, in, out)
}

func TestStore_GetMissingKey(t *testing.T) {
	store := newTestStore(t, time.Minute)

	var out []payload
	hit, err := store.Get(context.Background(), "nope", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStore_PutReplacesExisting(t *testing.T) {
	store := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "universe", payload{Name: "old"}))
	require.NoError(t, store.Put(ctx, "universe", payload{Name: "new"}))

	var out payload
	hit, err := store.Get(ctx, "universe", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "new", out.Name)
}

func TestStore_StaleSnapshotMisses(t *testing.T) {
	store := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "universe", payload{Name: "stale"}))

	// Age the row past the TTL.
	_, err := store.db.ExecContext(ctx,
		`UPDATE snapshots SET created_at = ? WHERE key = ?`,
		time.Now().Add(-2*time.Minute).Unix(), "universe")
	require.NoError(t, err)

	var out payload
	hit, err := store.Get(ctx, "universe", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	store := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "universe", payload{Name: "keep"}))
	_, err := store.db.ExecContext(ctx,
		`UPDATE snapshots SET created_at = ? WHERE key = ?`,
		time.Now().Add(-24*time.Hour).Unix(), "universe")
	require.NoError(t, err)

	var out payload
	hit, err := store.Get(ctx, "universe", &out)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestStore_Invalidate(t *testing.T) {
	store := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "universe", payload{Name: "gone"}))
	require.NoError(t, store.Invalidate(ctx, "universe"))

	var out payload
	hit, err := store.Get(ctx, "universe", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	// Invalidating a missing key is a no-op.
	require.NoError(t, store.Invalidate(ctx, "universe"))
}
