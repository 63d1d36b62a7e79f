package caching

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCachingService struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisCachingService(c redis.UniversalClient, prefix string) *RedisCachingService {
	return &RedisCachingService{
		client: c,
		prefix: prefix,
	}
}

func (svc *RedisCachingService) Get(ctx context.Context, key string) (string, error) {
	val, err := svc.client.Get(ctx, svc.prefix+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (svc *RedisCachingService) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	cmd := svc.client.Set(ctx, svc.prefix+key, value, ttl)
	return cmd.Err()
}

func (svc *RedisCachingService) Delete(ctx context.Context, key string) error {
	cmd := svc.client.Del(ctx, svc.prefix+key)
	return cmd.Err()
}

func (svc *RedisCachingService) Shutdown(ctx context.Context) error {
	return svc.client.Close()
}
