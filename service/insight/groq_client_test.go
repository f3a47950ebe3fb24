/*
 * @module service/insight/groq_client_test
 * @description Groq客户端单元测试
 * @architecture 测试层 - httptest模拟洞察服务端
 * @stateFlow 测试服务器启动 -> 客户端调用 -> 请求与响应验证
 * @rules 覆盖请求格式、成功解析和各类错误响应
 * @dependencies testing, testify, net/http/httptest
 * @refs groq_client.go
 */

package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSendsChatCompletionRequest(t *testing.T) {
	var captured chatRequest
	var capturedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		capturedAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "analysis text"}},
			},
		})
	}))
	defer server.Close()

	SetGroqUrl(server.URL)
	defer SetGroqUrl("https://api.groq.com")

	client := NewGroqClient("test-key")
	text, err := client.Analyze(context.Background(), "analyze this")

	require.NoError(t, err)
	assert.Equal(t, "analysis text", text)
	assert.Equal(t, "Bearer test-key", capturedAuth)

	// 固定生成参数
	assert.Equal(t, "llama-3.1-70b-versatile", captured.Model)
	assert.Equal(t, 0.3, captured.Temperature)
	assert.Equal(t, 1024, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "analyze this", captured.Messages[1].Content)
}

func TestAnalyzeErrorPaths(t *testing.T) {
	t.Run("非200状态", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()
		SetGroqUrl(server.URL)
		defer SetGroqUrl("https://api.groq.com")

		_, err := NewGroqClient("test-key").Analyze(context.Background(), "prompt")
		assert.Error(t, err)
	})

	t.Run("空choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
		}))
		defer server.Close()
		SetGroqUrl(server.URL)
		defer SetGroqUrl("https://api.groq.com")

		_, err := NewGroqClient("test-key").Analyze(context.Background(), "prompt")
		assert.Error(t, err)
	})

	t.Run("畸形响应", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()
		SetGroqUrl(server.URL)
		defer SetGroqUrl("https://api.groq.com")

		_, err := NewGroqClient("test-key").Analyze(context.Background(), "prompt")
		assert.Error(t, err)
	})

	t.Run("空提示词", func(t *testing.T) {
		_, err := NewGroqClient("test-key").Analyze(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("缺少密钥", func(t *testing.T) {
		client := NewGroqClient("")
		assert.False(t, client.Available())
		_, err := client.Analyze(context.Background(), "prompt")
		assert.Error(t, err)
	})
}
