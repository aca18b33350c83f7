package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDB struct {
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri string, dbName string) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "failed to ping MongoDB")
	}

	db := client.Database(dbName)
	return &MongoDB{Database: db}, nil
}

// Disconnect closes the underlying client.
func (m *MongoDB) Disconnect(ctx context.Context) error {
	return m.Database.Client().Disconnect(ctx)
}

// SetUpCollections creates the views collection with its schema and expiry
// index. Existing data is kept.
func SetUpCollections(ctx context.Context, db *mongo.Database, viewTTL time.Duration) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": ViewsCollection})
	if err != nil {
		return errors.Wrap(err, "failed to list collections")
	}

	if len(names) == 0 {
		viewValidation := bson.M{
			"$jsonSchema": bson.M{
				"bsonType": "object",
				"required": []string{"_id", "scope", "period", "updated_at"},
				"properties": bson.M{
					"_id": bson.M{"bsonType": "string"},
					"scope": bson.M{
						"bsonType": "object",
						"required": []string{"kind"},
						"properties": bson.M{
							"kind":      bson.M{"enum": []string{"all", "outlet", "device"}},
							"outlet_id": bson.M{"bsonType": "int"},
							"device_id": bson.M{"bsonType": "string"},
						},
					},
					"period":     bson.M{"enum": []string{"day", "week", "month", "year", "custom"}},
					"anchor":     bson.M{"bsonType": "string"},
					"start":      bson.M{"bsonType": "string"},
					"end":        bson.M{"bsonType": "string"},
					"updated_at": bson.M{"bsonType": "date"},
				},
			},
		}

		opt := options.CreateCollection().SetValidator(viewValidation)
		if err := db.CreateCollection(ctx, ViewsCollection, opt); err != nil {
			return errors.Wrap(err, "failed to create collection")
		}
	}

	if viewTTL <= 0 {
		return nil
	}

	expiryIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(viewTTL.Seconds())),
	}
	_, err = db.Collection(ViewsCollection).Indexes().CreateOne(ctx, expiryIndex)
	if err != nil {
		return errors.Wrap(err, "failed to create index")
	}

	return nil
}
