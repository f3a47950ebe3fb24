/*
 * @module service/insight/requester_test
 * @description 洞察请求器单元测试
 * @architecture 测试层 - 以伪造提供方隔离外部服务
 * @stateFlow 指标构造 -> 洞察生成 -> 文本内容验证
 * @rules 覆盖提示词结构、成功路径和各类降级路径
 * @dependencies testing, testify
 * @refs requester.go
 */

package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"pipeline-monitor-service/service/models"

	"github.com/stretchr/testify/assert"
)

// fakeProvider 伪造洞察服务提供方
type fakeProvider struct {
	text    string
	err     error
	block   bool
	prompts []string
}

func (f *fakeProvider) Analyze(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func sampleMetrics() *models.PipelineMetrics {
	return &models.PipelineMetrics{
		PipelineName:     "orders",
		TotalRecords:     1200,
		TotalColumns:     8,
		MissingValues:    map[string]int{"amount": 30},
		DuplicateRecords: 12,
		MemoryUsageMB:    1.5,
		DataQualityScore: 92.5,
	}
}

func sampleAnomalies() []models.Anomaly {
	return []models.Anomaly{
		{Severity: models.SeverityHigh, Message: "High duplicate rate (12.0%)"},
	}
}

func TestGenerateReturnsProviderText(t *testing.T) {
	provider := &fakeProvider{text: "executive summary: healthy"}
	requester := NewRequester(provider)

	text := requester.Generate(context.Background(), sampleMetrics(), sampleAnomalies(), models.RiskMedium)

	assert.Equal(t, "executive summary: healthy", text)
	assert.Len(t, provider.prompts, 1)
}

func TestGenerateFallsBackOnError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("service unavailable")}
	requester := NewRequester(provider)

	text := requester.Generate(context.Background(), sampleMetrics(), sampleAnomalies(), models.RiskMedium)

	assert.Contains(t, text, "Fallback Mode")
}

func TestGenerateFallsBackOnEmptyText(t *testing.T) {
	provider := &fakeProvider{text: "   \n"}
	requester := NewRequester(provider)

	text := requester.Generate(context.Background(), sampleMetrics(), nil, models.RiskLow)
	assert.Contains(t, text, "Fallback Mode")
}

func TestGenerateFallsBackOnTimeout(t *testing.T) {
	provider := &fakeProvider{block: true}
	requester := NewRequester(provider)
	requester.SetCallTimeout(20 * time.Millisecond)

	text := requester.Generate(context.Background(), sampleMetrics(), sampleAnomalies(), models.RiskMedium)
	assert.Contains(t, text, "Fallback Mode")
}

func TestGenerateWithoutProviderUsesFallback(t *testing.T) {
	requester := NewRequester(nil)

	text := requester.Generate(context.Background(), sampleMetrics(), sampleAnomalies(), models.RiskHigh)
	assert.Contains(t, text, "Fallback Mode")
}

func TestBuildPromptStructure(t *testing.T) {
	prompt := BuildPrompt(sampleMetrics(), sampleAnomalies(), models.RiskMedium)

	assert.Contains(t, prompt, "**Pipeline:** orders")
	assert.Contains(t, prompt, "- Total Records: 1200")
	assert.Contains(t, prompt, "**Risk Assessment:** MEDIUM")
	assert.Contains(t, prompt, "- [HIGH] High duplicate rate (12.0%)")
	assert.Contains(t, prompt, "- Missing Values: 30")
	assert.Contains(t, prompt, "- Duplicate Records: 12")

	// 无异常时的占位行
	prompt = BuildPrompt(sampleMetrics(), nil, models.RiskLow)
	assert.Contains(t, prompt, "- No anomalies detected")
}

func TestFallbackInsightCoversRequiredFields(t *testing.T) {
	text := FallbackInsight(sampleMetrics(), sampleAnomalies(), models.RiskMedium)

	// 降级文本必须包含管道名、记录数、风险等级和异常数量
	assert.Contains(t, text, "**Pipeline:** orders")
	assert.Contains(t, text, "**Records Processed:** 1200")
	assert.Contains(t, text, "**Risk Level:** MEDIUM")
	assert.Contains(t, text, "**Anomalies Detected:** 1")
}
