package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

var (
	sharedMu     sync.Mutex
	sharedClient *mongo.Client
)

// SharedClient returns the process-wide client, connecting on first use.
// Subsequent calls return the existing client regardless of the arguments,
// so re-initialization is a no-op.
func SharedClient(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedClient != nil {
		return sharedClient, nil
	}
	client, err := ConnectMongo(ctx, uri, timeout)
	if err != nil {
		return nil, err
	}
	sharedClient = client
	return sharedClient, nil
}

// CloseShared disconnects and clears the shared client. Safe to call when
// no shared client was ever opened.
func CloseShared(ctx context.Context) error {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedClient == nil {
		return nil
	}
	err := sharedClient.Disconnect(ctx)
	sharedClient = nil
	return err
}
