/*
 * @module service/monitor/anomaly_detector_test
 * @description 异常检测器单元测试
 * @architecture 测试层 - 纯函数验证，无外部依赖
 * @stateFlow 指标构造 -> 规则评估 -> 异常序列验证
 * @rules 覆盖六组内置规则的阈值边界和输出顺序
 * @dependencies testing, testify
 * @refs anomaly_detector.go
 */

package monitor

import (
	"testing"

	"pipeline-monitor-service/service/models"
	"pipeline-monitor-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// healthyMetrics 构造不触发任何规则的指标快照
func healthyMetrics() *models.PipelineMetrics {
	return &models.PipelineMetrics{
		PipelineName:     "healthy",
		TotalRecords:     1000,
		TotalColumns:     10,
		ColumnNames:      []string{"c0", "c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8", "c9"},
		MissingValues:    map[string]int{},
		DuplicateRecords: 0,
		DataQualityScore: 100,
	}
}

func TestDetectHealthyMetricsNoAnomalies(t *testing.T) {
	detector := NewAnomalyDetector()
	anomalies := detector.Detect(healthyMetrics())
	assert.Empty(t, anomalies)
}

func TestDetectCleanDatasetEndToEnd(t *testing.T) {
	metrics := NewMetricsAnalyzer().Analyze(testutil.CleanDataset(500), "orders")
	anomalies := NewAnomalyDetector().Detect(metrics)
	assert.Empty(t, anomalies)
}

func TestDetectMissingDataThresholds(t *testing.T) {
	testCases := []struct {
		name         string
		missingCells int // 每10000单元格中的缺失数
		wantSeverity models.Severity
		wantMessage  string
	}{
		{"临界级", 3000, models.SeverityCritical, "Excessive missing data (30.0%)"},
		{"高级", 2000, models.SeverityHigh, "Significant missing data (20.0%)"},
		{"中级", 1000, models.SeverityMedium, "Moderate missing data (10.0%)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := healthyMetrics()
			m.MissingValues = map[string]int{"c0": tc.missingCells}

			anomalies := NewAnomalyDetector().Detect(m)

			require.Len(t, anomalies, 1)
			assert.Equal(t, tc.wantSeverity, anomalies[0].Severity)
			assert.Equal(t, tc.wantMessage, anomalies[0].Message)
		})
	}

	// 阈值及以下不触发
	m := healthyMetrics()
	m.MissingValues = map[string]int{"c0": 800}
	assert.Empty(t, NewAnomalyDetector().Detect(m))
}

func TestDetectDuplicateThresholds(t *testing.T) {
	testCases := []struct {
		name         string
		duplicates   int // 每1000行中的重复数
		wantSeverity models.Severity
	}{
		{"临界级", 250, models.SeverityCritical},
		{"高级", 150, models.SeverityHigh},
		{"中级", 80, models.SeverityMedium},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := healthyMetrics()
			m.DuplicateRecords = tc.duplicates

			anomalies := NewAnomalyDetector().Detect(m)

			require.Len(t, anomalies, 1)
			assert.Equal(t, tc.wantSeverity, anomalies[0].Severity)
		})
	}
}

func TestDetectVolumeRules(t *testing.T) {
	t.Run("零记录判定管道故障", func(t *testing.T) {
		m := healthyMetrics()
		m.TotalRecords = 0

		anomalies := NewAnomalyDetector().Detect(m)

		require.Len(t, anomalies, 1)
		assert.Equal(t, models.SeverityCritical, anomalies[0].Severity)
		assert.Equal(t, "No data records found - pipeline failure", anomalies[0].Message)
	})

	t.Run("极低数据量", func(t *testing.T) {
		m := healthyMetrics()
		m.TotalRecords = 30

		anomalies := NewAnomalyDetector().Detect(m)

		require.Len(t, anomalies, 1)
		assert.Equal(t, models.SeverityHigh, anomalies[0].Severity)
		assert.Equal(t, "Extremely low record count (30)", anomalies[0].Message)
	})

	t.Run("偏低数据量", func(t *testing.T) {
		m := healthyMetrics()
		m.TotalRecords = 150

		anomalies := NewAnomalyDetector().Detect(m)

		require.Len(t, anomalies, 1)
		assert.Equal(t, models.SeverityMedium, anomalies[0].Severity)
	})
}

func TestDetectSchemaRules(t *testing.T) {
	m := healthyMetrics()
	m.TotalColumns = 1

	anomalies := NewAnomalyDetector().Detect(m)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "Very few columns - possible data truncation", anomalies[0].Message)

	m = healthyMetrics()
	m.TotalColumns = 151

	anomalies = NewAnomalyDetector().Detect(m)
	require.Len(t, anomalies, 1)
	assert.Equal(t, models.SeverityMedium, anomalies[0].Severity)
}

func TestDetectColumnLevelRules(t *testing.T) {
	m := healthyMetrics()
	m.ColumnNames = []string{"skewed", "sparse"}
	m.TotalColumns = 2
	m.StatisticalSummary = map[string]models.NumericColumnStats{
		"skewed": {Skewness: 4.2},
		"sparse": {NullPercentage: 60},
	}

	anomalies := NewAnomalyDetector().Detect(m)

	require.Len(t, anomalies, 2)
	// 按列序输出
	assert.Equal(t, models.SeverityMedium, anomalies[0].Severity)
	assert.Equal(t, "High skewness in skewed column", anomalies[0].Message)
	assert.Equal(t, models.SeverityHigh, anomalies[1].Severity)
	assert.Equal(t, "sparse column >50% missing values", anomalies[1].Message)
}

func TestDetectQualityScoreRules(t *testing.T) {
	m := healthyMetrics()
	m.DataQualityScore = 55.5

	anomalies := NewAnomalyDetector().Detect(m)
	require.Len(t, anomalies, 1)
	assert.Equal(t, models.SeverityCritical, anomalies[0].Severity)
	assert.Equal(t, "Low data quality score (55.5%)", anomalies[0].Message)

	m.DataQualityScore = 75
	anomalies = NewAnomalyDetector().Detect(m)
	require.Len(t, anomalies, 1)
	assert.Equal(t, models.SeverityHigh, anomalies[0].Severity)
}

func TestDetectRuleGroupOrdering(t *testing.T) {
	// 同时命中多组规则时按固定组顺序输出
	m := healthyMetrics()
	m.TotalRecords = 30
	m.TotalColumns = 3
	m.ColumnNames = []string{"a", "b", "c"}
	m.MissingValues = map[string]int{"a": 30} // 30/(30*3)=33.3% 缺失
	m.DuplicateRecords = 8                    // 26.7% 重复
	m.DataQualityScore = 55

	anomalies := NewAnomalyDetector().Detect(m)

	require.Len(t, anomalies, 4)
	assert.Contains(t, anomalies[0].Message, "Excessive missing data")
	assert.Contains(t, anomalies[1].Message, "Very high duplicate rate")
	assert.Contains(t, anomalies[2].Message, "Extremely low record count")
	assert.Contains(t, anomalies[3].Message, "Low data quality score")
}
