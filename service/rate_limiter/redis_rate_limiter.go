/*
 * @module service/rate_limiter/redis_rate_limiter
 * @description 基于Redis的分布式限流服务，保护监控运行类接口不被重复触发压垮
 * @architecture 工具层 - 提供分布式限流能力
 * @stateFlow 检查限流窗口 -> Redis计数 -> 判断是否超限
 * @rules 使用Redis INCR和EXPIRE实现固定窗口限流，同一窗口内计数原子递增
 * @dependencies github.com/go-redis/redis/v8
 * @refs api/middleware/rate_limit.go, service/init.go
 */

package rate_limiter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimitResult 限流检查结果
type RateLimitResult struct {
	Allowed   bool  `json:"allowed"`   // 是否允许请求
	Limit     int   `json:"limit"`     // 窗口内最大请求数
	Remaining int   `json:"remaining"` // 剩余可用请求数
	ResetAt   int64 `json:"reset_at"`  // 窗口重置时间（Unix时间戳）
}

// RedisRateLimiter Redis限流器
type RedisRateLimiter struct {
	client      *redis.Client
	window      time.Duration
	maxRequests int
}

// NewRedisRateLimiter 创建Redis限流器
// window为限流窗口长度，maxRequests为窗口内同一范围允许的最大请求数
func NewRedisRateLimiter(window time.Duration, maxRequests int) (*RedisRateLimiter, error) {
	host := getEnvWithDefault("REDIS_HOST", "localhost")
	port := getEnvWithDefault("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")
	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		fmt.Sscanf(dbStr, "%d", &db)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis连接失败: %w", err)
	}

	slog.Info("Redis限流器初始化成功",
		"redis_host", host,
		"redis_port", port,
		"window", window.String(),
		"max_requests", maxRequests)

	return &RedisRateLimiter{
		client:      client,
		window:      window,
		maxRequests: maxRequests,
	}, nil
}

// Allow 检查指定范围在当前窗口内是否还允许请求
// scope为限流范围标识，通常为调用方身份加路由
func (r *RedisRateLimiter) Allow(ctx context.Context, scope string) (*RateLimitResult, error) {
	key := r.buildRateLimitKey(scope)
	windowSeconds := int(r.window.Seconds())

	// 使用Lua脚本实现原子性限流检查
	script := `
		local key = KEYS[1]
		local max_requests = tonumber(ARGV[1])
		local window = tonumber(ARGV[2])

		local current = redis.call('GET', key)
		if current == false then
			current = 0
		else
			current = tonumber(current)
		end

		if current >= max_requests then
			local ttl = redis.call('TTL', key)
			if ttl == -1 then
				ttl = window
			end
			return {0, current, ttl}
		end

		local new_count = redis.call('INCR', key)
		if new_count == 1 then
			redis.call('EXPIRE', key, window)
		end

		local ttl = redis.call('TTL', key)
		if ttl == -1 then
			ttl = window
		end

		return {1, new_count, ttl}
	`

	result, err := r.client.Eval(ctx, script, []string{key}, r.maxRequests, windowSeconds).Result()
	if err != nil {
		return nil, fmt.Errorf("限流检查失败: %w", err)
	}

	results := result.([]interface{})
	allowed := results[0].(int64) == 1
	currentCount := int(results[1].(int64))
	ttl := int(results[2].(int64))

	remaining := r.maxRequests - currentCount
	if remaining < 0 {
		remaining = 0
	}

	return &RateLimitResult{
		Allowed:   allowed,
		Limit:     r.maxRequests,
		Remaining: remaining,
		ResetAt:   time.Now().Add(time.Duration(ttl) * time.Second).Unix(),
	}, nil
}

// buildRateLimitKey 构造限流Key，窗口编号参与Key保证窗口切换后计数归零
func (r *RedisRateLimiter) buildRateLimitKey(scope string) string {
	currentWindow := time.Now().Unix() / int64(r.window.Seconds())
	return fmt.Sprintf("rate_limit:%s:%d", scope, currentWindow)
}

// Reset 重置指定范围的限流计数（仅用于测试或管理）
func (r *RedisRateLimiter) Reset(ctx context.Context, scope string) error {
	return r.client.Del(ctx, r.buildRateLimitKey(scope)).Err()
}

// Close 关闭Redis客户端
func (r *RedisRateLimiter) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
