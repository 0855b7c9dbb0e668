package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const defaultDatabase = "appointment-scheduler"

// NewDB connects to the deployment in uri and returns the database named by
// the uri path, or the default database when the path is empty.
func NewDB(ctx context.Context, uri string, opts ...*options.ClientOptions) (*mongo.Database, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid mongodb uri: %w", err)
	}

	client, err := mongo.Connect(ctx, append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Test the connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	name := cs.Database
	if name == "" {
		name = defaultDatabase
	}
	return client.Database(name), nil
}

// Open connects like NewDB and ensures the appointment indexes. The client is
// disconnected when the indexes cannot be created.
func Open(ctx context.Context, uri string, opts ...*options.ClientOptions) (*mongo.Database, error) {
	db, err := NewDB(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = db.Client().Disconnect(ctx)
		return nil, err
	}
	return db, nil
}
