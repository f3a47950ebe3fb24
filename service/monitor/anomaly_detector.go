/*
 * @module service/monitor/anomaly_detector
 * @description 异常检测器，按固定顺序评估六组阈值规则并追加自定义脚本规则，产出带严重级别的异常序列
 * @architecture 分层架构 - 监控核心层
 * @stateFlow 指标快照 -> 缺失值规则 -> 重复规则 -> 数据量规则 -> 模式规则 -> 列级统计规则 -> 质量评分规则 -> 自定义脚本规则
 * @rules 规则组顺序固定不可调整；各组内按阈值从高到低互斥命中；阈值为固定策略常量
 * @dependencies pipeline-monitor-service/service/models
 * @refs service/monitor/risk_scorer.go, service/monitor/custom_rules.go
 */

package monitor

import (
	"fmt"

	"pipeline-monitor-service/service/models"
)

// 异常检测阈值，固定策略常量
const (
	// 整体缺失比例阈值（百分比）
	NullRatioCriticalPct = 25.0
	NullRatioHighPct     = 15.0
	NullRatioMediumPct   = 8.0

	// 重复行比例阈值（百分比）
	DuplicateRatioCriticalPct = 20.0
	DuplicateRatioHighPct     = 10.0
	DuplicateRatioMediumPct   = 5.0

	// 数据量阈值（行数）
	VolumeHighThreshold   = 50
	VolumeMediumThreshold = 200

	// 模式阈值（列数）
	SchemaMinColumns = 2
	SchemaMaxColumns = 150

	// 数值列级阈值
	ColumnSkewnessThreshold = 3.0
	ColumnNullHighPct       = 50.0

	// 质量评分阈值
	QualityScoreCritical = 60.0
	QualityScoreHigh     = 80.0
)

// AnomalyDetector 异常检测器
type AnomalyDetector struct {
	ruleEngine *CustomRuleEngine // 可选，自定义脚本规则引擎
}

// NewAnomalyDetector 创建异常检测器实例
func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{}
}

// SetRuleEngine 设置自定义规则引擎，自定义规则在内置规则组之后评估
func (d *AnomalyDetector) SetRuleEngine(engine *CustomRuleEngine) {
	d.ruleEngine = engine
}

// Detect 对指标快照执行全部检测规则，返回按规则组顺序排列的异常序列
func (d *AnomalyDetector) Detect(m *models.PipelineMetrics) []models.Anomaly {
	anomalies := make([]models.Anomaly, 0)

	// 规则组1: 整体缺失比例，按阈值从高到低互斥命中
	totalCells := m.TotalRecords * m.TotalColumns
	nullPct := 0.0
	if totalCells > 0 {
		nullPct = float64(m.TotalMissingValues()) / float64(totalCells) * 100
	}
	switch {
	case nullPct > NullRatioCriticalPct:
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Excessive missing data (%.1f%%)", nullPct),
		})
	case nullPct > NullRatioHighPct:
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityHigh,
			Message:  fmt.Sprintf("Significant missing data (%.1f%%)", nullPct),
		})
	case nullPct > NullRatioMediumPct:
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityMedium,
			Message:  fmt.Sprintf("Moderate missing data (%.1f%%)", nullPct),
		})
	}

	// 规则组2: 重复行比例
	duplicatePct := 0.0
	if m.TotalRecords > 0 {
		duplicatePct = float64(m.DuplicateRecords) / float64(m.TotalRecords) * 100
	}
	switch {
	case duplicatePct > DuplicateRatioCriticalPct:
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Very high duplicate rate (%.1f%%)", duplicatePct),
		})
	case duplicatePct > DuplicateRatioHighPct:
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityHigh,
			Message:  fmt.Sprintf("High duplicate rate (%.1f%%)", duplicatePct),
		})
	case duplicatePct > DuplicateRatioMediumPct:
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityMedium,
			Message:  fmt.Sprintf("Moderate duplicate rate (%.1f%%)", duplicatePct),
		})
	}

	// 规则组3: 数据量
	switch {
	case m.TotalRecords == 0:
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityCritical,
			Message:  "No data records found - pipeline failure",
		})
	case m.TotalRecords < VolumeHighThreshold:
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityHigh,
			Message:  fmt.Sprintf("Extremely low record count (%d)", m.TotalRecords),
		})
	case m.TotalRecords < VolumeMediumThreshold:
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityMedium,
			Message:  fmt.Sprintf("Low record count (%d)", m.TotalRecords),
		})
	}

	// 规则组4: 模式
	if m.TotalColumns < SchemaMinColumns {
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityHigh,
			Message:  "Very few columns - possible data truncation",
		})
	} else if m.TotalColumns > SchemaMaxColumns {
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityMedium,
			Message:  "Unusually high column count - consider optimization",
		})
	}

	// 规则组5: 数值列级统计，按列序遍历保证输出顺序确定
	for _, col := range m.ColumnNames {
		stats, ok := m.StatisticalSummary[col]
		if !ok {
			continue
		}
		if stats.Skewness > ColumnSkewnessThreshold {
			anomalies = append(anomalies, models.Anomaly{
				Severity: models.SeverityMedium,
				Message:  fmt.Sprintf("High skewness in %s column", col),
			})
		}
		if stats.NullPercentage > ColumnNullHighPct {
			anomalies = append(anomalies, models.Anomaly{
				Severity: models.SeverityHigh,
				Message:  fmt.Sprintf("%s column >50%% missing values", col),
			})
		}
	}

	// 规则组6: 质量评分
	if m.DataQualityScore < QualityScoreCritical {
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Low data quality score (%.1f%%)", m.DataQualityScore),
		})
	} else if m.DataQualityScore < QualityScoreHigh {
		anomalies = append(anomalies, models.Anomaly{
			Severity: models.SeverityHigh,
			Message:  fmt.Sprintf("Below standard data quality (%.1f%%)", m.DataQualityScore),
		})
	}

	// 自定义脚本规则在内置规则组之后追加
	if d.ruleEngine != nil {
		anomalies = append(anomalies, d.ruleEngine.Evaluate(m)...)
	}

	return anomalies
}
