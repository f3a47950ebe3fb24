/*
 * @module service/insight/groq_client
 * @description Groq兼容洞察服务客户端，调用OpenAI格式的chat completions接口获取分析文本
 * @architecture 客户端适配层
 * @stateFlow 请求构建 -> HTTP调用（30秒超时） -> 响应解析
 * @rules 非200响应、传输错误和畸形响应均以error返回，由上层降级处理
 * @dependencies net/http, encoding/json
 * @refs service/insight/requester.go
 */

package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

var GroqUrl = "https://api.groq.com"

// 洞察请求的固定生成参数
const (
	groqModel       = "llama-3.1-70b-versatile"
	groqTemperature = 0.3
	groqMaxTokens   = 1024
	groqSystemRole  = "You are an expert data pipeline monitoring AI. Provide comprehensive analysis with specific insights and actionable recommendations."
)

var groqClient = &http.Client{
	Timeout: 30 * time.Second,
}

func init() {
	if envUrl := os.Getenv("GROQ_BASE_URL"); envUrl != "" {
		GroqUrl = envUrl
	}
}

// SetGroqUrl 设置 Groq 服务的 URL（用于测试）
func SetGroqUrl(url string) {
	GroqUrl = url
}

// GroqClient Groq兼容的洞察服务客户端
type GroqClient struct {
	apiKey string
}

// NewGroqClient 创建Groq客户端实例，密钥为空时Available返回false
func NewGroqClient(apiKey string) *GroqClient {
	return &GroqClient{apiKey: apiKey}
}

// Available 返回客户端是否具备调用条件
func (c *GroqClient) Available() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Analyze 发送分析请求并返回洞察文本
func (c *GroqClient) Analyze(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}
	if !c.Available() {
		return "", errors.New("未配置洞察服务密钥")
	}

	payload := chatRequest{
		Model: groqModel,
		Messages: []chatMessage{
			{Role: "system", Content: groqSystemRole},
			{Role: "user", Content: prompt},
		},
		Temperature: groqTemperature,
		MaxTokens:   groqMaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, GroqUrl+"/openai/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := groqClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("洞察服务返回异常状态: %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", errors.New("洞察服务返回空结果")
	}

	return chatResp.Choices[0].Message.Content, nil
}
