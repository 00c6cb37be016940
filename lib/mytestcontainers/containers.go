//go:build integration

package mytestcontainers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/MarcGrol/courseshop/lib/mydb"
)

// NewPostgres starts a Postgres container with the schema applied and returns a pool on it.
func NewPostgres(t *testing.T) *sql.DB {
	t.Helper()
	c := context.Background()

	container, err := tcpostgres.Run(c, "postgres:16-alpine",
		tcpostgres.WithDatabase("courseshop"),
		tcpostgres.WithUsername("courseshop"),
		tcpostgres.WithPassword("courseshop"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	terminateOnCleanup(t, container)

	url, err := container.ConnectionString(c, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, cleanup, err := mydb.Open(c, url)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	t.Cleanup(cleanup)

	return db
}

// NewRedis starts a Redis container and returns a connected client.
func NewRedis(t *testing.T) *redis.Client {
	t.Helper()
	c := context.Background()

	container, err := tcredis.Run(c, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	terminateOnCleanup(t, container)

	url, err := container.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() {
		_ = client.Close()
	})

	err = client.Ping(c).Err()
	if err != nil {
		t.Fatalf("failed to ping redis: %v", err)
	}

	return client
}

func terminateOnCleanup(t *testing.T, container testcontainers.Container) {
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})
}
