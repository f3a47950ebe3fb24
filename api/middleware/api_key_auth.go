/*
 * @module api/middleware/api_key_auth
 * @description API密钥认证中间件，对写操作接口做X-API-Key校验
 * @architecture 中间件模式
 * @stateFlow 请求进入 -> 密钥比对 -> 放行或401
 * @rules 环境变量API_KEY_HASH存放bcrypt哈希，未配置时中间件直接放行（开发模式）
 * @dependencies golang.org/x/crypto/bcrypt, github.com/go-chi/render
 * @refs api/routes.go
 */

package middleware

import (
	"net/http"
	"os"

	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyAuth 校验X-API-Key请求头
func APIKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hash := os.Getenv("API_KEY_HASH")
		if hash == "" {
			// 未配置密钥哈希时放行，用于开发环境
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey)) != nil {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, map[string]interface{}{
				"status": http.StatusUnauthorized,
				"msg":    "API密钥缺失或无效",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
