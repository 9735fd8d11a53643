package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Connect opens a client with the decimal-aware registry. It does not ping.
func Connect(_ context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetRegistry(NewRegistry())
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("yogitrack/mongo: connect: %w", err)
	}
	return client, nil
}
