package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"photo-archive/model"
)

// Catalog keeps a searchable report of uploaded objects. It is never
// consulted to decide whether a file needs uploading.
type Catalog interface {
	RecordUpload(ctx context.Context, rec model.BackupRecord) error
	Close() error
}

type NopCatalog struct{}

func (NopCatalog) RecordUpload(context.Context, model.BackupRecord) error { return nil }
func (NopCatalog) Close() error { return nil }

type MongoCatalog struct {
	Log *zap.Logger

	mongoClient    *mongo.Client
	collection     *mongo.Collection
	databaseName   string
	collectionName string
}

func (db *MongoCatalog) Connect(ctx context.Context, connectionString, databaseName, collectionName string) error {
	var err error
	db.databaseName = databaseName
	db.collectionName = collectionName

	db.mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	err = db.mongoClient.Ping(ctx, nil)
	if err != nil {
		return err
	}

	db.collection = db.mongoClient.Database(db.databaseName).Collection(db.collectionName)

	db.logger().Info("connected to MongoDB catalog",
		zap.String("database", databaseName),
		zap.String("collection", collectionName),
	)
	return nil
}

func (db *MongoCatalog) EnsureIndexes(ctx context.Context) error {
	_, err := db.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "lonlat", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "taken_on.year", Value: 1}, {Key: "taken_on.month", Value: 1}, {Key: "taken_on.day", Value: 1}}},
	})
	return err
}

func (db *MongoCatalog) Close() error {
	if db.mongoClient != nil {
		err := db.mongoClient.Disconnect(context.Background())
		if err != nil {
			return err
		}
		db.logger().Info("disconnected from MongoDB catalog")
	}
	return nil
}

// RecordUpload stores rec keyed by its object key, replacing any earlier
// record for the same key.
func (db *MongoCatalog) RecordUpload(ctx context.Context, rec model.BackupRecord) error {
	filter := bson.D{{Key: "_id", Value: rec.Key}}
	_, err := db.collection.ReplaceOne(ctx, filter, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return err
	}
	db.logger().Debug("backup recorded in catalog", zap.String("key", rec.Key))
	return nil
}

func (db *MongoCatalog) logger() *zap.Logger {
	if db.Log == nil {
		return zap.NewNop()
	}
	return db.Log
}
