/*
 * @module service/monitor/risk_scorer
 * @description 风险评分器，对异常序列做加权累计并叠加指标惩罚项，归约为低/中/高三档风险等级
 * @architecture 分层架构 - 监控核心层
 * @stateFlow 异常序列 + 指标快照 -> 加权累计 -> 惩罚项叠加 -> 风险等级
 * @rules 归约与异常顺序无关；无异常直接判定低风险
 * @dependencies pipeline-monitor-service/service/models
 * @refs service/monitor/anomaly_detector.go, service/monitor/action_planner.go
 */

package monitor

import (
	"pipeline-monitor-service/service/models"
)

// 风险评分权重与阈值，固定策略常量
const (
	weightCritical = 10
	weightHigh     = 6
	weightMedium   = 3
	weightDefault  = 1

	penaltyNoRecords       = 15
	penaltyLowQualityScore = 8
	lowQualityScoreBound   = 50.0

	riskHighThreshold   = 15
	riskMediumThreshold = 8
)

// RiskScorer 风险评分器
type RiskScorer struct{}

// NewRiskScorer 创建风险评分器实例
func NewRiskScorer() *RiskScorer {
	return &RiskScorer{}
}

// Score 归约异常序列和指标为风险等级
func (s *RiskScorer) Score(anomalies []models.Anomaly, m *models.PipelineMetrics) models.RiskLevel {
	if len(anomalies) == 0 {
		return models.RiskLow
	}

	score := 0
	for _, anomaly := range anomalies {
		switch anomaly.Severity {
		case models.SeverityCritical:
			score += weightCritical
		case models.SeverityHigh:
			score += weightHigh
		case models.SeverityMedium:
			score += weightMedium
		default:
			score += weightDefault
		}
	}

	if m.TotalRecords == 0 {
		score += penaltyNoRecords
	}
	if m.DataQualityScore < lowQualityScoreBound {
		score += penaltyLowQualityScore
	}

	switch {
	case score >= riskHighThreshold:
		return models.RiskHigh
	case score >= riskMediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
