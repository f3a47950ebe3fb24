/*
 * @module service/monitor/custom_rules_test
 * @description 自定义规则引擎单元测试
 * @architecture 测试层 - 内存数据库加脚本解释执行验证
 * @stateFlow 脚本登记 -> 规则评估 -> 追加异常验证
 * @rules 覆盖脚本校验、指标注入、禁用跳过与失败隔离
 * @dependencies testing, testify, pipeline-monitor-service/testutil
 * @refs custom_rules.go
 */

package monitor

import (
	"testing"

	"pipeline-monitor-service/service/models"
	"pipeline-monitor-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alwaysHitScript = `
	return []map[string]string{
		{"severity": "MEDIUM", "message": "custom rule hit"},
	}
`

const recordThresholdScript = `
	total, _ := metrics["total_records"].(float64)
	if total < 100 {
		return []map[string]string{
			{"severity": "HIGH", "message": "record count below contract minimum"},
		}
	}
	return nil
`

func TestValidateScript(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	engine := NewCustomRuleEngine(tdb.DB)

	assert.NoError(t, engine.Validate(alwaysHitScript))
	assert.NoError(t, engine.Validate(recordThresholdScript))
	assert.Error(t, engine.Validate(`this is not go code`))
	assert.Error(t, engine.Validate(`return 42`))
}

func TestEvaluateAppendsAnomalies(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	factory.CreateCustomRuleScript(alwaysHitScript)

	engine := NewCustomRuleEngine(tdb.DB)
	m := &models.PipelineMetrics{PipelineName: "orders", TotalRecords: 500}

	anomalies := engine.Evaluate(m)

	require.Len(t, anomalies, 1)
	assert.Equal(t, models.SeverityMedium, anomalies[0].Severity)
	assert.Equal(t, "custom rule hit", anomalies[0].Message)
}

func TestEvaluateReceivesMetricsSnapshot(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	factory.CreateCustomRuleScript(recordThresholdScript)

	engine := NewCustomRuleEngine(tdb.DB)

	anomalies := engine.Evaluate(&models.PipelineMetrics{TotalRecords: 50})
	require.Len(t, anomalies, 1)
	assert.Equal(t, models.SeverityHigh, anomalies[0].Severity)

	anomalies = engine.Evaluate(&models.PipelineMetrics{TotalRecords: 500})
	assert.Empty(t, anomalies)
}

func TestEvaluateSkipsDisabledRules(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	factory.CreateCustomRuleScript(alwaysHitScript, func(r *models.CustomRuleScript) {
		r.IsEnabled = false
	})

	engine := NewCustomRuleEngine(tdb.DB)
	assert.Empty(t, engine.Evaluate(&models.PipelineMetrics{TotalRecords: 500}))
}

func TestEvaluateIsolatesBrokenRules(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	// 执行期panic的脚本不影响其他规则
	factory.CreateCustomRuleScript(`
	var rows []int
	_ = rows[3]
	return nil
`)
	factory.CreateCustomRuleScript(alwaysHitScript)

	engine := NewCustomRuleEngine(tdb.DB)
	anomalies := engine.Evaluate(&models.PipelineMetrics{TotalRecords: 500})

	require.Len(t, anomalies, 1)
	assert.Equal(t, "custom rule hit", anomalies[0].Message)
}

func TestUnknownSeverityDefaultsToInfo(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	factory.CreateCustomRuleScript(`
	return []map[string]string{
		{"severity": "bogus", "message": "note"},
	}
`)

	engine := NewCustomRuleEngine(tdb.DB)
	anomalies := engine.Evaluate(&models.PipelineMetrics{TotalRecords: 500})

	require.Len(t, anomalies, 1)
	assert.Equal(t, models.SeverityInfo, anomalies[0].Severity)
}
