package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"imposter/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	snapshotKeyPrefix  = "room:"
	DefaultSnapshotTTL = 2 * time.Hour
	backendTimeout     = 3 * time.Second
)

// SnapshotCache mirrors the latest redacted room snapshot into Redis so other
// processes can inspect live rooms. It never feeds back into game decisions.
type SnapshotCache struct {
	NopObserver
	redis *redis.Client
	ttl   time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{redis: client, ttl: ttl}
}

func snapshotKey(code string) string {
	return snapshotKeyPrefix + code
}

func (c *SnapshotCache) Store(ctx context.Context, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room snapshot: %w", err)
	}
	if err := c.redis.Set(ctx, snapshotKey(room.Code), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store room snapshot: %w", err)
	}
	return nil
}

// Get returns the mirrored snapshot, or ErrRoomNotFound if none is stored.
func (c *SnapshotCache) Get(ctx context.Context, code string) (*models.Room, error) {
	data, err := c.redis.Get(ctx, snapshotKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to read room snapshot: %w", err)
	}

	var room models.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room snapshot: %w", err)
	}
	return &room, nil
}

func (c *SnapshotCache) Delete(ctx context.Context, code string) error {
	return c.redis.Del(ctx, snapshotKey(code)).Err()
}

func (c *SnapshotCache) store(room *models.Room) {
	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := c.Store(ctx, room); err != nil {
		log.Warn().Err(err).Str("room_code", room.Code).Msg("Redis mirror write failed")
	}
}

func (c *SnapshotCache) RoomCreated(room *models.Room) { c.store(room) }

func (c *SnapshotCache) RoomUpdated(room *models.Room) { c.store(room) }

func (c *SnapshotCache) GameEnded(room *models.Room, _ TallyResult) { c.store(room) }

func (c *SnapshotCache) RoomClosed(code string) {
	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := c.Delete(ctx, code); err != nil {
		log.Warn().Err(err).Str("room_code", code).Msg("Redis mirror delete failed")
	}
}
