package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blogposts/pkg/logger"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	pingAttempts = 5
	pingTimeout  = 5 * time.Second
)

var pingBackoff = 2 * time.Second

// ConnectMongo opens a client for uri and waits until the deployment answers
// a ping, retrying a few times for slow starts.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("open mongo client: %w", err)
	}

	err = retryPing(ctx, "MongoDB", func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// ConnectPostgres opens a lib/pq pool for url and waits for it to answer.
func ConnectPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := retryPing(ctx, "Postgres", db.PingContext); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func retryPing(ctx context.Context, name string, ping func(context.Context) error) error {
	var err error
	for i := 0; i < pingAttempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = ping(pingCtx)
		cancel()
		if err == nil {
			logger.Sugar.Infof("Successfully connected to %s", name)
			return nil
		}

		logger.Sugar.Infof("%s connection failed, retrying in %s... (%v)", name, pingBackoff, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pingBackoff):
		}
	}
	return fmt.Errorf("could not connect to %s after %d attempts: %w", name, pingAttempts, err)
}
