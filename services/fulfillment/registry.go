package fulfillment

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MarcGrol/courseshop/lib/mytime"
)

// ProcessedEvents remembers provider events whose side effects are committed, so redeliveries
// can be acknowledged without repeating the work.
type ProcessedEvents interface {
	IsProcessed(c context.Context, eventID string) (bool, error)
	MarkProcessed(c context.Context, eventID string) error
}

const processedKeyPrefix = "courseshop:webhook:processed:"

type redisProcessedEvents struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProcessedEvents(client *redis.Client, ttl time.Duration) ProcessedEvents {
	return &redisProcessedEvents{
		client: client,
		ttl:    ttl,
	}
}

func (r *redisProcessedEvents) IsProcessed(c context.Context, eventID string) (bool, error) {
	count, err := r.client.Exists(c, processedKeyPrefix+eventID).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *redisProcessedEvents) MarkProcessed(c context.Context, eventID string) error {
	return r.client.SetNX(c, processedKeyPrefix+eventID, "1", r.ttl).Err()
}

type inMemoryProcessedEvents struct {
	sync.Mutex
	nower     mytime.Nower
	ttl       time.Duration
	expiresAt map[string]time.Time
}

func NewInMemoryProcessedEvents(nower mytime.Nower, ttl time.Duration) ProcessedEvents {
	return &inMemoryProcessedEvents{
		nower:     nower,
		ttl:       ttl,
		expiresAt: map[string]time.Time{},
	}
}

func (m *inMemoryProcessedEvents) IsProcessed(c context.Context, eventID string) (bool, error) {
	m.Lock()
	defer m.Unlock()

	expiresAt, found := m.expiresAt[eventID]
	if !found {
		return false, nil
	}
	if !m.nower.Now().Before(expiresAt) {
		delete(m.expiresAt, eventID)
		return false, nil
	}
	return true, nil
}

func (m *inMemoryProcessedEvents) MarkProcessed(c context.Context, eventID string) error {
	m.Lock()
	defer m.Unlock()

	if _, found := m.expiresAt[eventID]; !found {
		m.expiresAt[eventID] = m.nower.Now().Add(m.ttl)
	}
	return nil
}
