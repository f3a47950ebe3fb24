/*
 * @module service/monitor/action_planner_test
 * @description 动作规划器单元测试
 * @architecture 测试层 - 纯函数验证，无外部依赖
 * @stateFlow 风险与指标构造 -> 级联决策 -> 动作序列验证
 * @rules 覆盖各决策分支、动作顺序与非空保证
 * @dependencies testing, testify
 * @refs action_planner.go
 */

package monitor

import (
	"testing"

	"pipeline-monitor-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plannerMetrics() *models.PipelineMetrics {
	return &models.PipelineMetrics{
		TotalRecords:     1000,
		DataQualityScore: 95,
	}
}

func TestPlanHealthyRunYieldsRoutineAction(t *testing.T) {
	planner := NewActionPlanner()

	actions := planner.Plan(models.RiskLow, nil, plannerMetrics())

	require.Len(t, actions, 1)
	assert.Equal(t, "Routine Monitoring Complete", actions[0].Type)
	assert.Equal(t, models.PriorityNormal, actions[0].Priority)
	assert.False(t, actions[0].RequiresApproval)
	assert.True(t, actions[0].AutoExecutable)
}

func TestPlanHighRiskTriggersEmergency(t *testing.T) {
	planner := NewActionPlanner()

	actions := planner.Plan(models.RiskHigh, nil, plannerMetrics())

	require.NotEmpty(t, actions)
	assert.Equal(t, "EMERGENCY Pipeline Response", actions[0].Type)
	assert.Equal(t, models.PriorityUrgent, actions[0].Priority)
	assert.True(t, actions[0].RequiresApproval)
}

func TestPlanCriticalAnomaliesOneToOne(t *testing.T) {
	planner := NewActionPlanner()
	anomalies := []models.Anomaly{
		{Severity: models.SeverityCritical, Message: "Excessive missing data (30.0%)"},
		{Severity: models.SeverityHigh, Message: "High duplicate rate (12.0%)"},
		{Severity: models.SeverityCritical, Message: "Low data quality score (55.0%)"},
	}

	actions := planner.Plan(models.RiskMedium, anomalies, plannerMetrics())

	// 每个CRITICAL异常各产出一个质量响应动作，不去重
	var critical []models.Action
	for _, action := range actions {
		if action.Type == "Critical Data Quality Response" {
			critical = append(critical, action)
		}
	}
	require.Len(t, critical, 2)
	assert.Equal(t, "Address critical issue: Excessive missing data (30.0%)", critical[0].Description)
	assert.Equal(t, "Address critical issue: Low data quality score (55.0%)", critical[1].Description)
}

func TestPlanVolumeBranchesAreExclusive(t *testing.T) {
	planner := NewActionPlanner()

	m := plannerMetrics()
	m.TotalRecords = 0
	actions := planner.Plan(models.RiskLow, nil, m)
	require.Len(t, actions, 1)
	assert.Equal(t, "Pipeline Failure Investigation", actions[0].Type)
	assert.Equal(t, models.PriorityCritical, actions[0].Priority)

	m.TotalRecords = 60
	actions = planner.Plan(models.RiskLow, nil, m)
	require.Len(t, actions, 1)
	assert.Equal(t, "Low Volume Investigation", actions[0].Type)
	assert.Equal(t, "Unusually low record count (60) requires review", actions[0].Description)
}

func TestPlanQualityImprovement(t *testing.T) {
	planner := NewActionPlanner()
	m := plannerMetrics()
	m.DataQualityScore = 65

	actions := planner.Plan(models.RiskLow, nil, m)

	require.Len(t, actions, 1)
	assert.Equal(t, "Data Quality Improvement", actions[0].Type)
	assert.Equal(t, "Data quality score (65.0%) below acceptable threshold", actions[0].Description)
}

func TestPlanWorstCaseOrdering(t *testing.T) {
	planner := NewActionPlanner()
	m := plannerMetrics()
	m.TotalRecords = 0
	m.DataQualityScore = 40
	anomalies := []models.Anomaly{
		{Severity: models.SeverityCritical, Message: "No data records found - pipeline failure"},
	}

	actions := planner.Plan(models.RiskHigh, anomalies, m)

	require.Len(t, actions, 4)
	assert.Equal(t, "EMERGENCY Pipeline Response", actions[0].Type)
	assert.Equal(t, "Critical Data Quality Response", actions[1].Type)
	assert.Equal(t, "Pipeline Failure Investigation", actions[2].Type)
	assert.Equal(t, "Data Quality Improvement", actions[3].Type)

	// 非例行动作全部需要审批且不可自动执行
	for _, action := range actions {
		assert.True(t, action.RequiresApproval)
		assert.False(t, action.AutoExecutable)
	}
}

func TestPlanNeverEmpty(t *testing.T) {
	planner := NewActionPlanner()

	for _, risk := range []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		actions := planner.Plan(risk, nil, plannerMetrics())
		assert.NotEmpty(t, actions)
	}
}
