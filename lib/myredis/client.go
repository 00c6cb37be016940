package myredis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// New connects to the Redis instance at url. It returns nil without error when url is empty.
func New(c context.Context, url string) (*redis.Client, func(), error) {
	if url == "" {
		return nil, func() {}, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing redis url: %s", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(c).Err()
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("error pinging redis: %s", err)
	}

	return client, func() {
		client.Close()
	}, nil
}
