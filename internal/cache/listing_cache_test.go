package cache

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vedran77/habyx/internal/domain"
)

var (
	setupOnce sync.Once
	container testcontainers.Container
	redisAddr string
	setupErr  error
)

func TestMain(m *testing.M) {
	code := m.Run()
	if container != nil {
		container.Terminate(context.Background())
	}
	os.Exit(code)
}

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}

	setupOnce.Do(func() {
		ctx := context.Background()
		container, setupErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		if setupErr != nil {
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			setupErr = err
			return
		}
		port, err := container.MappedPort(ctx, "6379")
		if err != nil {
			setupErr = err
			return
		}
		redisAddr = fmt.Sprintf("%s:%s", host, port.Port())
	})
	require.NoError(t, setupErr)

	client, err := NewRedisClient(context.Background(), redisAddr, "", 0)
	require.NoError(t, err)
	require.NoError(t, client.FlushDB(context.Background()).Err())
	t.Cleanup(func() { client.Close() })
	return client
}

func TestListingCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	c := NewListingCache(newTestClient(t), time.Minute)

	_, version, ok, err := c.GetListings(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	listings := []domain.HousingListing{
		{ID: uuid.New(), Title: "Loft", Price: 700, ImageURLs: []string{}},
	}
	require.NoError(t, c.SetListings(ctx, version, listings))

	got, _, ok, err := c.GetListings(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Loft", got[0].Title)
}

func TestListingCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewListingCache(newTestClient(t), time.Minute)

	listing := &domain.HousingListing{ID: uuid.New(), Title: "Studio"}
	_, version, _, err := c.GetListings(ctx)
	require.NoError(t, err)
	require.NoError(t, c.SetListing(ctx, listing))
	require.NoError(t, c.SetListings(ctx, version, []domain.HousingListing{*listing}))

	got, ok, err := c.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, listing.Title, got.Title)

	require.NoError(t, c.Invalidate(ctx, listing.ID))

	_, ok, err = c.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	_, _, ok, err = c.GetListings(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListingCache_FillAfterInvalidateIsNotServed(t *testing.T) {
	ctx := context.Background()
	c := NewListingCache(newTestClient(t), time.Minute)

	_, version, ok, err := c.GetListings(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	// A writer invalidates while the reader is still loading from the database.
	require.NoError(t, c.Invalidate(ctx))
	stale := []domain.HousingListing{{ID: uuid.New(), Title: "Stale"}}
	require.NoError(t, c.SetListings(ctx, version, stale))

	_, current, ok, err := c.GetListings(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, version+1, current)
}

func TestListingCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	c := NewListingCache(client, time.Minute)

	require.NoError(t, client.Set(ctx, listingsKeyAt(0), "{not json", time.Minute).Err())

	_, _, ok, err := c.GetListings(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
