/*
 * @module service/insight/requester
 * @description 洞察请求器，将指标、异常和风险等级格式化为分析提示词并委托外部洞察服务，失败时降级为确定性模板文本
 * @architecture 分层架构 - 协作方适配层
 * @stateFlow 提示词构建 -> 外部调用（限时） -> 成功返回洞察 | 失败降级模板
 * @rules 洞察生成永不阻断监控运行；降级文本必须包含管道名、记录数、风险等级和异常数量
 * @dependencies context, time, strings
 * @refs service/insight/groq_client.go, service/monitor/monitor_service.go
 */

package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pipeline-monitor-service/service/models"
)

// 外部洞察调用的默认时间预算
const defaultCallTimeout = 30 * time.Second

// Provider 洞察服务提供方抽象
type Provider interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Requester 洞察请求器
type Requester struct {
	provider    Provider
	callTimeout time.Duration
}

// NewRequester 创建洞察请求器实例，provider为nil时始终使用降级模板
func NewRequester(provider Provider) *Requester {
	return &Requester{
		provider:    provider,
		callTimeout: defaultCallTimeout,
	}
}

// SetCallTimeout 调整外部调用时间预算（用于测试）
func (r *Requester) SetCallTimeout(timeout time.Duration) {
	r.callTimeout = timeout
}

// Generate 生成洞察文本，外部调用失败或超时一律降级为模板文本
func (r *Requester) Generate(ctx context.Context, m *models.PipelineMetrics, anomalies []models.Anomaly, risk models.RiskLevel) string {
	prompt := BuildPrompt(m, anomalies, risk)

	if r.provider == nil {
		return FallbackInsight(m, anomalies, risk)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	text, err := r.provider.Analyze(callCtx, prompt)
	if err != nil {
		slog.Warn("洞察服务调用失败，使用降级模板", "pipeline", m.PipelineName, "error", err)
		return FallbackInsight(m, anomalies, risk)
	}
	if strings.TrimSpace(text) == "" {
		return FallbackInsight(m, anomalies, risk)
	}
	return text
}

// BuildPrompt 构建结构化分析提示词
func BuildPrompt(m *models.PipelineMetrics, anomalies []models.Anomaly, risk models.RiskLevel) string {
	var sb strings.Builder

	sb.WriteString("**PIPELINE MONITORING ANALYSIS REQUEST**\n\n")
	sb.WriteString(fmt.Sprintf("**Pipeline:** %s\n", m.PipelineName))
	sb.WriteString("**Data Overview:**\n")
	sb.WriteString(fmt.Sprintf("- Total Records: %d\n", m.TotalRecords))
	sb.WriteString(fmt.Sprintf("- Columns: %d\n", m.TotalColumns))
	sb.WriteString(fmt.Sprintf("- Memory Usage: %.2fMB\n", m.MemoryUsageMB))
	sb.WriteString(fmt.Sprintf("- Data Quality Score: %.2f%%\n\n", m.DataQualityScore))
	sb.WriteString(fmt.Sprintf("**Risk Assessment:** %s\n\n", strings.ToUpper(string(risk))))

	sb.WriteString(fmt.Sprintf("**Anomalies Detected (%d):**\n", len(anomalies)))
	if len(anomalies) == 0 {
		sb.WriteString("- No anomalies detected\n")
	} else {
		for _, anomaly := range anomalies {
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", anomaly.Severity, anomaly.Message))
		}
	}

	sb.WriteString("\n**Data Quality Issues:**\n")
	sb.WriteString(fmt.Sprintf("- Missing Values: %d\n", m.TotalMissingValues()))
	sb.WriteString(fmt.Sprintf("- Duplicate Records: %d\n\n", m.DuplicateRecords))

	sb.WriteString("**Request:** Provide comprehensive analysis including:\n")
	sb.WriteString("1. **Executive Summary** (2-3 sentences)\n")
	sb.WriteString("2. **Critical Findings** (most important issues)\n")
	sb.WriteString("3. **Business Impact Analysis** (operational implications)\n")
	sb.WriteString("4. **Specific Recommendations** (actionable steps)\n")
	sb.WriteString("5. **Trend Predictions** (what to watch for)\n")
	sb.WriteString("6. **Confidence Score** (0-100%)\n\n")
	sb.WriteString("Focus on business value and actionable insights.\n")

	return sb.String()
}

// FallbackInsight 生成确定性降级洞察文本
// 模板必须覆盖管道名、记录数、风险等级和异常数量
func FallbackInsight(m *models.PipelineMetrics, anomalies []models.Anomaly, risk models.RiskLevel) string {
	var sb strings.Builder

	sb.WriteString("**AUTOMATED ANALYSIS (Fallback Mode)**\n\n")
	sb.WriteString("This analysis was generated using rule-based logic as the AI service is unavailable.\n\n")
	sb.WriteString(fmt.Sprintf("**Pipeline:** %s\n", m.PipelineName))
	sb.WriteString(fmt.Sprintf("**Records Processed:** %d\n", m.TotalRecords))
	sb.WriteString(fmt.Sprintf("**Risk Level:** %s\n", strings.ToUpper(string(risk))))
	sb.WriteString(fmt.Sprintf("**Anomalies Detected:** %d\n", len(anomalies)))
	sb.WriteString(fmt.Sprintf("**Data Quality Score:** %.2f%%\n\n", m.DataQualityScore))

	sb.WriteString("**Health Assessment:** Based on detected anomalies and data quality metrics\n")
	sb.WriteString("**Recommendations:**\n")
	sb.WriteString("- Review data source connections if issues persist\n")
	sb.WriteString("- Monitor trend patterns over time\n")
	sb.WriteString("- Implement automated data validation\n")
	sb.WriteString("- Consider pipeline optimization for better performance\n\n")
	sb.WriteString("**Note:** For enhanced AI-powered insights, ensure the insight service key is configured.\n")

	return sb.String()
}
