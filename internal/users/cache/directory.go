// Package cache fronts the user store with a Redis read-through cache for
// reviewer display details. Redis failures degrade to the store, and a run of
// failures trips a breaker so an unreachable Redis is skipped until it recovers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"malpot/internal/users/models"
	id "malpot/pkg/domain"
	"malpot/pkg/platform/circuit"
)

const keyPrefix = "malpot:user:"

type Store interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
}

// Directory resolves users through Redis before the store.
type Directory struct {
	store   Store
	client  redis.Cmdable
	ttl     time.Duration
	logger  *slog.Logger
	breaker *circuit.Breaker
}

// NewDirectory returns a read-through directory. A nil client disables
// caching.
func NewDirectory(store Store, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		store:   store,
		client:  client,
		ttl:     ttl,
		logger:  logger,
		breaker: circuit.New("reviewer-cache", circuit.WithFailureThreshold(3), circuit.WithCooldown(5*time.Second)),
	}
}

func cacheKey(userID id.UserID) string {
	return keyPrefix + userID.String()
}

func (d *Directory) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	useCache := d.client != nil && d.breaker.Allow()
	if useCache {
		if user, ok := d.fromCache(ctx, userID); ok {
			return user, nil
		}
	}

	user, err := d.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if useCache && !d.breaker.IsOpen() {
		d.toCache(ctx, user)
	}
	return user, nil
}

// CacheOpen reports whether Redis is currently being skipped.
func (d *Directory) CacheOpen() bool {
	return d.breaker.IsOpen()
}

func (d *Directory) recordRedis(ctx context.Context, err error) {
	if err == nil || errors.Is(err, redis.Nil) {
		if _, change := d.breaker.RecordSuccess(); change.Closed {
			d.logger.InfoContext(ctx, "reviewer cache recovered")
		}
		return
	}
	if _, change := d.breaker.RecordFailure(); change.Opened {
		d.logger.WarnContext(ctx, "reviewer cache disabled after repeated failures", "error", err)
	}
}

// Invalidate drops the cached entry for userID.
func (d *Directory) Invalidate(ctx context.Context, userID id.UserID) error {
	if d.client == nil {
		return nil
	}
	return d.client.Del(ctx, cacheKey(userID)).Err()
}

func (d *Directory) fromCache(ctx context.Context, userID id.UserID) (*models.User, bool) {
	raw, err := d.client.Get(ctx, cacheKey(userID)).Bytes()
	d.recordRedis(ctx, err)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			d.logger.WarnContext(ctx, "reviewer cache read failed",
				"user_id", userID,
				"error", err,
			)
		}
		return nil, false
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		d.logger.WarnContext(ctx, "reviewer cache entry corrupt",
			"user_id", userID,
			"error", err,
		)
		return nil, false
	}
	return &user, true
}

func (d *Directory) toCache(ctx context.Context, user *models.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	err = d.client.Set(ctx, cacheKey(user.ID), raw, d.ttl).Err()
	d.recordRedis(ctx, err)
	if err != nil {
		d.logger.WarnContext(ctx, "reviewer cache write failed",
			"user_id", user.ID,
			"error", err,
		)
	}
}
