package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"toolcare/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Tool caching
	GetTool(ctx context.Context, toolID uuid.UUID) (*models.Tool, error)
	SetTool(ctx context.Context, tool *models.Tool, ttl time.Duration) error
	DeleteTool(ctx context.Context, toolID uuid.UUID) error

	// Branch directory caching
	GetBranch(ctx context.Context, branchID uuid.UUID) (*models.Branch, error)
	SetBranch(ctx context.Context, branch *models.Branch, ttl time.Duration) error
	DeleteBranch(ctx context.Context, branchID uuid.UUID) error

	// Cache invalidation
	InvalidateAllCache(ctx context.Context) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetTool(ctx context.Context, toolID uuid.UUID) (*models.Tool, error) {
	key := fmt.Sprintf("toolcare:tool:%s", toolID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var tool models.Tool
	if err := json.Unmarshal(data, &tool); err != nil {
		return nil, err
	}
	return &tool, nil
}

func (r *redisCacheService) SetTool(ctx context.Context, tool *models.Tool, ttl time.Duration) error {
	key := fmt.Sprintf("toolcare:tool:%s", tool.ID.String())
	data, err := json.Marshal(tool)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteTool(ctx context.Context, toolID uuid.UUID) error {
	key := fmt.Sprintf("toolcare:tool:%s", toolID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetBranch(ctx context.Context, branchID uuid.UUID) (*models.Branch, error) {
	key := fmt.Sprintf("toolcare:branch:%s", branchID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var branch models.Branch
	if err := json.Unmarshal(data, &branch); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *redisCacheService) SetBranch(ctx context.Context, branch *models.Branch, ttl time.Duration) error {
	key := fmt.Sprintf("toolcare:branch:%s", branch.ID.String())
	data, err := json.Marshal(branch)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteBranch(ctx context.Context, branchID uuid.UUID) error {
	key := fmt.Sprintf("toolcare:branch:%s", branchID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) InvalidateAllCache(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "toolcare:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rateKey := fmt.Sprintf("toolcare:ratelimit:%s", key)
	count, err := r.client.Get(ctx, rateKey).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return count >= limit, nil
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	rateKey := fmt.Sprintf("toolcare:ratelimit:%s", key)
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, rateKey)
	pipe.Expire(ctx, rateKey, window)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
