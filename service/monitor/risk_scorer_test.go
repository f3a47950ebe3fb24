/*
 * @module service/monitor/risk_scorer_test
 * @description 风险评分器单元测试
 * @architecture 测试层 - 纯函数验证，无外部依赖
 * @stateFlow 异常序列构造 -> 评分归约 -> 风险等级验证
 * @rules 覆盖权重累计、惩罚项叠加、档位边界和顺序无关性
 * @dependencies testing, testify
 * @refs risk_scorer.go
 */

package monitor

import (
	"testing"

	"pipeline-monitor-service/service/models"

	"github.com/stretchr/testify/assert"
)

func scorerMetrics() *models.PipelineMetrics {
	return &models.PipelineMetrics{
		TotalRecords:     1000,
		DataQualityScore: 95,
	}
}

func TestScoreEmptyAnomaliesIsLow(t *testing.T) {
	scorer := NewRiskScorer()
	assert.Equal(t, models.RiskLow, scorer.Score(nil, scorerMetrics()))
	assert.Equal(t, models.RiskLow, scorer.Score([]models.Anomaly{}, scorerMetrics()))
}

func TestScoreWeightedThresholds(t *testing.T) {
	scorer := NewRiskScorer()

	testCases := []struct {
		name      string
		anomalies []models.Anomaly
		want      models.RiskLevel
	}{
		{
			name:      "单个中级异常低风险",
			anomalies: []models.Anomaly{{Severity: models.SeverityMedium}},
			want:      models.RiskLow,
		},
		{
			name:      "两个中级异常低风险",
			anomalies: []models.Anomaly{{Severity: models.SeverityMedium}, {Severity: models.SeverityMedium}},
			want:      models.RiskLow,
		},
		{
			name:      "单个临界异常中风险",
			anomalies: []models.Anomaly{{Severity: models.SeverityCritical}},
			want:      models.RiskMedium,
		},
		{
			name:      "高级加中级恰好到中风险档位",
			anomalies: []models.Anomaly{{Severity: models.SeverityHigh}, {Severity: models.SeverityMedium}},
			want:      models.RiskMedium,
		},
		{
			name:      "临界加高级到高风险档位",
			anomalies: []models.Anomaly{{Severity: models.SeverityCritical}, {Severity: models.SeverityHigh}},
			want:      models.RiskHigh,
		},
		{
			name:      "未知级别按默认权重",
			anomalies: []models.Anomaly{{Severity: models.SeverityInfo}, {Severity: models.SeverityInfo}},
			want:      models.RiskLow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, scorer.Score(tc.anomalies, scorerMetrics()))
		})
	}
}

func TestScorePenalties(t *testing.T) {
	scorer := NewRiskScorer()

	// 零记录惩罚: 3 + 15 = 18 -> 高风险
	m := scorerMetrics()
	m.TotalRecords = 0
	anomalies := []models.Anomaly{{Severity: models.SeverityMedium}}
	assert.Equal(t, models.RiskHigh, scorer.Score(anomalies, m))

	// 低质量评分惩罚: 3 + 8 = 11 -> 中风险
	m = scorerMetrics()
	m.DataQualityScore = 40
	assert.Equal(t, models.RiskMedium, scorer.Score(anomalies, m))

	// 惩罚项不会单独触发，无异常仍为低风险
	m = scorerMetrics()
	m.TotalRecords = 0
	m.DataQualityScore = 10
	assert.Equal(t, models.RiskLow, scorer.Score(nil, m))
}

func TestScoreIsOrderIndependent(t *testing.T) {
	scorer := NewRiskScorer()
	m := scorerMetrics()

	forward := []models.Anomaly{
		{Severity: models.SeverityCritical, Message: "a"},
		{Severity: models.SeverityHigh, Message: "b"},
		{Severity: models.SeverityMedium, Message: "c"},
	}
	backward := []models.Anomaly{forward[2], forward[1], forward[0]}

	assert.Equal(t, scorer.Score(forward, m), scorer.Score(backward, m))
}
