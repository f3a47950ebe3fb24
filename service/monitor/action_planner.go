/*
 * @module service/monitor/action_planner
 * @description 动作规划器，根据风险等级、异常序列和指标快照产出候选处置动作，保证动作序列非空
 * @architecture 分层架构 - 监控核心层
 * @stateFlow 风险等级 + 异常 + 指标 -> 级联决策 -> 处置动作序列
 * @rules 各决策条件相互独立依次评估；除例行动作外全部需要人工审批且不可自动执行
 * @dependencies pipeline-monitor-service/service/models
 * @refs service/monitor/approval_coordinator.go
 */

package monitor

import (
	"fmt"

	"pipeline-monitor-service/service/models"
)

// 动作规划阈值，固定策略常量
const (
	lowVolumeActionThreshold    = 100
	qualityImprovementThreshold = 70.0
)

// ActionPlanner 动作规划器
type ActionPlanner struct{}

// NewActionPlanner 创建动作规划器实例
func NewActionPlanner() *ActionPlanner {
	return &ActionPlanner{}
}

// Plan 产出候选处置动作序列，永不为空
func (p *ActionPlanner) Plan(risk models.RiskLevel, anomalies []models.Anomaly, m *models.PipelineMetrics) []models.Action {
	actions := make([]models.Action, 0)

	// 高风险触发紧急响应
	if risk == models.RiskHigh {
		actions = append(actions, models.Action{
			Type:             "EMERGENCY Pipeline Response",
			Description:      "Critical pipeline issues detected requiring immediate intervention",
			Priority:         models.PriorityUrgent,
			RiskLevel:        models.RiskHigh,
			RequiresApproval: true,
			AutoExecutable:   false,
		})
	}

	// 每个CRITICAL异常一对一产出质量响应动作，不去重
	for _, anomaly := range anomalies {
		if anomaly.Severity != models.SeverityCritical {
			continue
		}
		actions = append(actions, models.Action{
			Type:             "Critical Data Quality Response",
			Description:      fmt.Sprintf("Address critical issue: %s", anomaly.Message),
			Priority:         models.PriorityHigh,
			RiskLevel:        models.RiskHigh,
			RequiresApproval: true,
			AutoExecutable:   false,
		})
	}

	// 数据量动作，零行与低量互斥
	if m.TotalRecords == 0 {
		actions = append(actions, models.Action{
			Type:             "Pipeline Failure Investigation",
			Description:      "No data processed - investigate source systems and connections",
			Priority:         models.PriorityCritical,
			RiskLevel:        models.RiskHigh,
			RequiresApproval: true,
			AutoExecutable:   false,
		})
	} else if m.TotalRecords < lowVolumeActionThreshold {
		actions = append(actions, models.Action{
			Type:             "Low Volume Investigation",
			Description:      fmt.Sprintf("Unusually low record count (%d) requires review", m.TotalRecords),
			Priority:         models.PriorityMedium,
			RiskLevel:        models.RiskMedium,
			RequiresApproval: true,
			AutoExecutable:   false,
		})
	}

	// 质量评分动作
	if m.DataQualityScore < qualityImprovementThreshold {
		actions = append(actions, models.Action{
			Type:             "Data Quality Improvement",
			Description:      fmt.Sprintf("Data quality score (%.1f%%) below acceptable threshold", m.DataQualityScore),
			Priority:         models.PriorityHigh,
			RiskLevel:        models.RiskMedium,
			RequiresApproval: true,
			AutoExecutable:   false,
		})
	}

	// 兜底例行动作，保证动作序列非空
	if len(actions) == 0 {
		actions = append(actions, models.Action{
			Type:             "Routine Monitoring Complete",
			Description:      "Pipeline monitoring completed successfully with no critical issues",
			Priority:         models.PriorityNormal,
			RiskLevel:        models.RiskLow,
			RequiresApproval: false,
			AutoExecutable:   true,
		})
	}

	return actions
}
