package clients

import (
	"context"
	"time"

	"github.com/DRSN-tech/pos-register/internal/cfg"
	"github.com/DRSN-tech/pos-register/pkg/e"
	"github.com/DRSN-tech/pos-register/pkg/jitter"
	"github.com/DRSN-tech/pos-register/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *r.Client
}

func NewRedisClient(cfg *cfg.RedisCfg) *RedisClient {
	client := r.NewClient(&r.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	return &RedisClient{
		Client: client,
	}
}

func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// PingWithRetry повторяет Ping с экспоненциальной задержкой, пока не истекут попытки или контекст.
func (r *RedisClient) PingWithRetry(ctx context.Context, attempts int, logger logger.Logger) error {
	const (
		baseDelay = 200 * time.Millisecond
		maxDelay  = 3 * time.Second
	)

	attempts = max(attempts, 1)

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = r.Ping(ctx); err == nil {
			return nil
		}

		if attempt == attempts-1 {
			break
		}

		delay := jitter.ExponentialBackoff(baseDelay, maxDelay, attempt, jitter.DefaultJitter)
		logger.Warnf("Redis is not ready (attempt %d/%d), retrying in %s: %v", attempt+1, attempts, delay, err)

		select {
		case <-ctx.Done():
			return e.Wrap(whereami.WhereAmI(), ctx.Err())
		case <-time.After(delay):
		}
	}

	return err
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}
