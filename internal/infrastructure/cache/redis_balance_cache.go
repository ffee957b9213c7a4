package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	apptreasury "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "treasury:balance:"

// RedisBalanceCache keeps all-time safe balances in Redis hashes so every
// API instance sees the same invalidations. Redis failures degrade to cache
// misses; the ledger tables stay authoritative.
type RedisBalanceCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisBalanceCache connects to Redis and verifies the connection
func NewRedisBalanceCache(addr, password string, db int, ttl time.Duration, logger *zap.Logger) (*RedisBalanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisBalanceCacheWithClient(client, "", ttl, logger), nil
}

// NewRedisBalanceCacheWithClient wraps an existing client
func NewRedisBalanceCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisBalanceCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBalanceCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger.Named("balance_cache"),
	}
}

func (c *RedisBalanceCache) key(tenantID, safeID uuid.UUID) string {
	return c.keyPrefix + tenantID.String() + ":" + safeID.String()
}

func (c *RedisBalanceCache) generationKey(tenantID, safeID uuid.UUID) string {
	return c.keyPrefix + "gen:" + tenantID.String() + ":" + safeID.String()
}

// unknownGeneration is handed out when Redis could not be read; no stored
// counter reaches it, so the following Set is skipped.
const unknownGeneration = math.MaxUint64

// Get returns the cached balance of a safe together with its generation
func (c *RedisBalanceCache) Get(ctx context.Context, tenantID, safeID uuid.UUID) (*treasury.Balance, uint64, bool) {
	pipe := c.client.Pipeline()
	hash := pipe.HGetAll(ctx, c.key(tenantID, safeID))
	gen := pipe.Get(ctx, c.generationKey(tenantID, safeID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("balance cache read failed", zap.String("safe_id", safeID.String()), zap.Error(err))
		return nil, unknownGeneration, false
	}

	generation, err := gen.Uint64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, unknownGeneration, false
	}
	fields := hash.Val()
	if len(fields) == 0 {
		return nil, generation, false
	}
	receipts, err := valueobject.NewMoneyFromString(fields["receipts"])
	if err != nil {
		return nil, generation, false
	}
	payments, err := valueobject.NewMoneyFromString(fields["payments"])
	if err != nil {
		return nil, generation, false
	}
	return &treasury.Balance{SafeID: safeID, Receipts: receipts, Payments: payments}, generation, true
}

// Set stores a balance with the configured TTL. The generation key is watched
// so an Invalidate landing in between aborts the write.
func (c *RedisBalanceCache) Set(ctx context.Context, tenantID uuid.UUID, generation uint64, balance treasury.Balance) {
	if generation == unknownGeneration {
		return
	}
	key, genKey := c.key(tenantID, balance.SafeID), c.generationKey(tenantID, balance.SafeID)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleBalance
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				"receipts", balance.Receipts.Amount().String(),
				"payments", balance.Payments.Amount().String(),
			)
			if c.ttl > 0 {
				pipe.Expire(ctx, key, c.ttl)
			}
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleBalance), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("balance changed while computing, not cached", zap.String("safe_id", balance.SafeID.String()))
	default:
		c.logger.Warn("balance cache write failed", zap.String("safe_id", balance.SafeID.String()), zap.Error(err))
	}
}

var errStaleBalance = errors.New("balance generation moved")

// Invalidate drops the cached balances of the given safes and bumps their generations
func (c *RedisBalanceCache) Invalidate(ctx context.Context, tenantID uuid.UUID, safeIDs ...uuid.UUID) {
	if len(safeIDs) == 0 {
		return
	}
	keys := make([]string, len(safeIDs))
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range safeIDs {
			keys[i] = c.key(tenantID, id)
			pipe.Incr(ctx, c.generationKey(tenantID, id))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		// a stale entry survives until its TTL
		c.logger.Error("balance cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisBalanceCache) Close() error {
	return c.client.Close()
}

var _ apptreasury.BalanceCache = (*RedisBalanceCache)(nil)
