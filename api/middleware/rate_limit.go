/*
 * @module api/middleware/rate_limit
 * @description 限流中间件，按调用方标识对监控触发类接口做固定窗口限流
 * @architecture 中间件模式
 * @stateFlow 请求进入 -> Redis窗口计数 -> 放行或429
 * @rules 限流器未配置（无Redis）时直接放行；限流检查失败时放行并记录日志
 * @dependencies pipeline-monitor-service/service/rate_limiter, github.com/go-chi/render
 * @refs api/routes.go, service/init.go
 */

package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"pipeline-monitor-service/service/rate_limiter"

	"github.com/go-chi/render"
)

// RateLimit 按调用方加路由做固定窗口限流
// limiter为nil时中间件退化为直通（未配置Redis的单实例部署）
func RateLimit(limiter *rate_limiter.RedisRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			result, err := limiter.Allow(r.Context(), clientScope(r))
			if err != nil {
				// 限流链路故障时放行，避免Redis抖动放大为接口不可用
				slog.Warn("限流检查失败，请求放行", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt))

			if !result.Allowed {
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, map[string]interface{}{
					"status": http.StatusTooManyRequests,
					"msg":    "请求频率超过限制，请稍后重试",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientScope 构造限流范围标识：优先使用API密钥，否则使用来源IP
func clientScope(r *http.Request) string {
	identity := r.Header.Get("X-API-Key")
	if identity == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		identity = host
	}
	return fmt.Sprintf("%s:%s", identity, r.URL.Path)
}
