package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/idextract/idextract/internal/config"
)

func TestConnectWithRetryGivesUp(t *testing.T) {
	cfg := config.MongoDBConfig{URI: "notmongo://localhost", Timeout: time.Second}
	start := time.Now()
	_, err := ConnectWithRetry(context.Background(), cfg, 3, 10*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "after 3 attempts")
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestConnectWithRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := config.MongoDBConfig{URI: "notmongo://localhost", Timeout: time.Second}
	_, err := ConnectWithRetry(ctx, cfg, 5, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}
