package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"social_network_service/pkg/database"
	"social_network_service/pkg/logger"
)

// DeviceTokenRepository stores push device tokens per user. The token list
// of a user is cached in Redis so the hot send path normally skips Postgres.
type DeviceTokenRepository interface {
	Register(ctx context.Context, userID int64, token, deviceInfo string) error
	Remove(ctx context.Context, userID int64, token string) error
	ActiveTokens(ctx context.Context, userID int64) ([]string, error)
	Invalidate(ctx context.Context, userID int64, tokens []string) error
}

type deviceTokenRepository struct {
	db       *pgxpool.Pool
	cache    database.RedisRepository[[]string]
	cacheTTL time.Duration
}

// NewDeviceTokenRepository create a DeviceTokenRepository
func NewDeviceTokenRepository(db *pgxpool.Pool, cache database.RedisRepository[[]string], cacheTTL time.Duration) DeviceTokenRepository {
	return &deviceTokenRepository{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func tokenCacheKey(userID int64) string {
	return fmt.Sprintf("device_tokens:%d", userID)
}

func (r *deviceTokenRepository) Register(ctx context.Context, userID int64, token, deviceInfo string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO device_tokens (user_id, token, device_info, is_active, created_at)
		 VALUES ($1, $2, $3, TRUE, NOW())
		 ON CONFLICT (token) DO UPDATE
		 SET user_id = $1, device_info = $3, is_active = TRUE`,
		userID, token, deviceInfo)
	if err != nil {
		return err
	}

	return r.dropCache(ctx, userID)
}

func (r *deviceTokenRepository) Remove(ctx context.Context, userID int64, token string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE device_tokens SET is_active = FALSE WHERE user_id = $1 AND token = $2",
		userID, token)
	if err != nil {
		return err
	}

	return r.dropCache(ctx, userID)
}

func (r *deviceTokenRepository) ActiveTokens(ctx context.Context, userID int64) ([]string, error) {
	key := tokenCacheKey(userID)
	if cached, err := r.cache.Get(ctx, key); err == nil {
		return cached, nil
	}

	rows, err := r.db.Query(ctx,
		"SELECT token FROM device_tokens WHERE user_id = $1 AND is_active = TRUE", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, tokens, r.cacheTTL); err != nil {
		logger.Log.Errorf("cache device tokens failed:", err)
	}

	return tokens, nil
}

// Invalidate deactivates tokens the push provider rejected as stale
func (r *deviceTokenRepository) Invalidate(ctx context.Context, userID int64, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	_, err := r.db.Exec(ctx,
		"UPDATE device_tokens SET is_active = FALSE WHERE user_id = $1 AND token = ANY($2)",
		userID, tokens)
	if err != nil {
		return err
	}

	return r.dropCache(ctx, userID)
}

func (r *deviceTokenRepository) dropCache(ctx context.Context, userID int64) error {
	if err := r.cache.Del(ctx, tokenCacheKey(userID)); err != nil {
		logger.Log.Errorf("drop device token cache failed:", err)
	}
	return nil
}
