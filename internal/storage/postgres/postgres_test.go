package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("moneymap_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dsn
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, ok, err := s.Load(ctx, "moneymap_users_v2")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "moneymap_users_v2", []byte(`{"a@b.c":{}}`)))
	require.NoError(t, s.Save(ctx, "moneymap_users_v2", []byte(`{}`)))

	v, ok, err := s.Load(ctx, "moneymap_users_v2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{}`, string(v))

	require.NoError(t, s.Delete(ctx, "moneymap_users_v2"))
	_, ok, err = s.Load(ctx, "moneymap_users_v2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s, dsn := newTestStore(t)
	require.NoError(t, s.Save(ctx, "k", []byte("v")))

	again, err := New(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	defer again.Close()

	v, ok, err := again.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(v))
}
