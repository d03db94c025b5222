package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/idextract/idextract/internal/kyc"
)

// mongoRecord stores the record together with its position in the collection
// so Load can restore insertion order.
type mongoRecord struct {
	Seq        int `bson:"seq"`
	kyc.Record `bson:",inline"`
}

// MongoSnapshot keeps one document per record, unique on identityNumber.
type MongoSnapshot struct {
	col *mongo.Collection
}

// NewMongoSnapshot ensures the unique index on identityNumber exists.
func NewMongoSnapshot(ctx context.Context, col *mongo.Collection) (*MongoSnapshot, error) {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "identityNumber", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("mongo snapshot index: %w", err)
	}
	return &MongoSnapshot{col: col}, nil
}

func (m *MongoSnapshot) Load(ctx context.Context) ([]kyc.Record, error) {
	cur, err := m.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo snapshot find: %w", err)
	}
	defer cur.Close(ctx)
	out := []kyc.Record{}
	for cur.Next(ctx) {
		var d mongoRecord
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
		out = append(out, d.Record)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo snapshot cursor: %w", err)
	}
	return out, nil
}

// Save upserts every record by identity number in one bulk write.
func (m *MongoSnapshot) Save(ctx context.Context, records []kyc.Record) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(records))
	for i, r := range records {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"identityNumber": r.IdentityNumber}).
			SetReplacement(mongoRecord{Seq: i, Record: r}).
			SetUpsert(true))
	}
	if _, err := m.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("mongo snapshot bulk write: %w", err)
	}
	return nil
}

func (m *MongoSnapshot) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, readpref.Primary())
}
