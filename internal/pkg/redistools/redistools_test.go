package redistools

import (
	"context"
	"testing"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewClient(context.Background(), config.RedisCache{Addr: mr.Addr()})
	require.NoError(t, err, "expected %v\tactual %v", nil, err)

	defer rdb.Close()

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())

	v, err := mr.Get("k")
	require.NoError(t, err, "expected %v\tactual %v", nil, err)
	require.Equal(t, "v", v)
}

func TestConnectGivesUpWithContext(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := NewClient(ctx, config.RedisCache{Addr: addr})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
