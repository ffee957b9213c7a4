package cache

import (
	"io"
	"time"

	apptreasury "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/infrastructure/config"
	"go.uber.org/zap"
)

// BalanceCache is a treasury balance cache that owns resources
type BalanceCache interface {
	apptreasury.BalanceCache
	io.Closer
}

// NewBalanceCache picks Redis when a host is configured and falls back to the
// in-memory cache when it is not, or when Redis cannot be reached at startup.
func NewBalanceCache(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) BalanceCache {
	if cfg.Host == "" {
		logger.Info("Redis not configured, using in-memory balance cache")
		return NewInMemoryBalanceCache(ttl)
	}

	c, err := NewRedisBalanceCache(cfg.Addr(), cfg.Password, cfg.DB, ttl, logger)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory balance cache. "+
			"Balances cached on other instances will not see this instance's writes until their TTL.",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryBalanceCache(ttl)
	}
	logger.Info("Using Redis balance cache", zap.String("addr", cfg.Addr()))
	return c
}
