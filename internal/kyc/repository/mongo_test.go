package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/idextract/idextract/internal/database"
	"github.com/idextract/idextract/internal/kyc"
)

// mongoCollection returns a throwaway collection on the server named by
// MONGODB_URI, skipping the test when none is configured.
func mongoCollection(t *testing.T) *mongo.Collection {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, uri, 5*time.Second)
	require.NoError(t, err)
	col := client.Database("idextract_test").Collection(fmt.Sprintf("records_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = col.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return col
}

func TestMongoSnapshotKeepsOrder(t *testing.T) {
	col := mongoCollection(t)
	ctx := context.Background()
	snap, err := NewMongoSnapshot(ctx, col)
	require.NoError(t, err)
	require.NoError(t, snap.Ping(ctx))

	got, err := snap.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got)

	a, b, c := sampleRecord("3333 3333 3333"), sampleRecord("1111 1111 1111"), sampleRecord("2222 2222 2222")
	require.NoError(t, snap.Save(ctx, []kyc.Record{a, b}))
	require.NoError(t, snap.Save(ctx, []kyc.Record{a, b, c}))

	got, err = snap.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []kyc.Record{a, b, c}, got)
}

func TestMongoSnapshotUniqueIdentity(t *testing.T) {
	col := mongoCollection(t)
	ctx := context.Background()
	_, err := NewMongoSnapshot(ctx, col)
	require.NoError(t, err)

	rec := sampleRecord("1234 5678 9012")
	_, err = col.InsertOne(ctx, mongoRecord{Seq: 0, Record: rec})
	require.NoError(t, err)
	_, err = col.InsertOne(ctx, mongoRecord{Seq: 1, Record: rec})
	require.True(t, mongo.IsDuplicateKeyError(err), "got %v", err)
}
