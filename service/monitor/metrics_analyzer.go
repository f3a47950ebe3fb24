/*
 * @module service/monitor/metrics_analyzer
 * @description 指标分析器，对数据集快照计算记录数、缺失值、重复行、内存占用、数值/分类列统计摘要和质量评分
 * @architecture 分层架构 - 监控核心层
 * @stateFlow 数据集 -> 列类型识别 -> 并行列统计 -> 质量评分 -> 指标快照
 * @rules 纯函数，不修改数据集；全空列不产出统计摘要；零行数据集所有比例取0，不报错
 * @dependencies github.com/spf13/cast, encoding/json, math, sort, sync
 * @refs service/models/monitor_types.go, service/monitor/anomaly_detector.go
 */

package monitor

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"pipeline-monitor-service/service/models"

	"github.com/spf13/cast"
)

// 分类列统计摘要的数量上限，防止宽表产出过大的指标快照
const maxCategoricalColumns = 5

// MetricsAnalyzer 指标分析器
type MetricsAnalyzer struct{}

// NewMetricsAnalyzer 创建指标分析器实例
func NewMetricsAnalyzer() *MetricsAnalyzer {
	return &MetricsAnalyzer{}
}

// Analyze 计算数据集的完整指标快照
func (a *MetricsAnalyzer) Analyze(ds *models.Dataset, pipelineName string) *models.PipelineMetrics {
	rowCount := ds.RecordCount()
	colCount := ds.ColumnCount()

	metrics := &models.PipelineMetrics{
		PipelineName:     pipelineName,
		TotalRecords:     rowCount,
		TotalColumns:     colCount,
		ColumnNames:      append([]string{}, ds.Columns...),
		MissingValues:    make(map[string]int, colCount),
		DuplicateRecords: countDuplicateRows(ds),
		MemoryUsageMB:    estimateMemoryMB(ds),
	}

	// 逐列统计缺失值并识别列类型
	numericCols := make([]int, 0, colCount)
	categoricalCols := make([]int, 0, colCount)
	for i, name := range ds.Columns {
		nulls, numeric, nonNull := profileColumn(ds, i)
		metrics.MissingValues[name] = nulls
		if numeric && nonNull > 0 {
			numericCols = append(numericCols, i)
		} else if !numeric {
			categoricalCols = append(categoricalCols, i)
		}
		// 全空列不产出任何统计摘要
	}

	// 数值列统计相互独立，并行计算后按列序装配
	if len(numericCols) > 0 {
		metrics.StatisticalSummary = make(map[string]models.NumericColumnStats, len(numericCols))
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, idx := range numericCols {
			wg.Add(1)
			go func(colIdx int) {
				defer wg.Done()
				stats := computeNumericStats(ds, colIdx)
				mu.Lock()
				metrics.StatisticalSummary[ds.Columns[colIdx]] = stats
				mu.Unlock()
			}(idx)
		}
		wg.Wait()
	}

	// 分类列统计按列序截取前若干列
	if len(categoricalCols) > 0 {
		metrics.CategoricalSummary = make(map[string]models.CategoricalColumnStats)
		for i, idx := range categoricalCols {
			if i >= maxCategoricalColumns {
				break
			}
			metrics.CategoricalSummary[ds.Columns[idx]] = computeCategoricalStats(ds, idx)
		}
	}

	metrics.DataQualityScore = computeQualityScore(metrics)
	return metrics
}

// computeQualityScore 计算数据质量评分
// 评分 = max(0, 100 - 缺失单元格比例*50 - 重复行比例*30)，保留两位小数
func computeQualityScore(m *models.PipelineMetrics) float64 {
	totalCells := m.TotalRecords * m.TotalColumns
	missingRatio := 0.0
	if totalCells > 0 {
		missingRatio = float64(m.TotalMissingValues()) / float64(totalCells)
	}
	duplicateRatio := 0.0
	if m.TotalRecords > 0 {
		duplicateRatio = float64(m.DuplicateRecords) / float64(m.TotalRecords)
	}

	score := 100 - missingRatio*50 - duplicateRatio*30
	if score < 0 {
		score = 0
	}
	return math.Round(score*100) / 100
}

// profileColumn 统计单列的缺失值数量，并判断该列是否为数值列
func profileColumn(ds *models.Dataset, colIdx int) (nulls int, numeric bool, nonNull int) {
	numeric = true
	for _, row := range ds.Rows {
		v := cellAt(row, colIdx)
		if v == nil {
			nulls++
			continue
		}
		nonNull++
		if _, ok := numericValue(v); !ok {
			numeric = false
		}
	}
	if nonNull == 0 {
		// 全空列无法判断类型，按数值列处理但不产出统计
		numeric = true
	}
	return nulls, numeric, nonNull
}

// computeNumericStats 计算单个数值列的统计摘要
func computeNumericStats(ds *models.Dataset, colIdx int) models.NumericColumnStats {
	values := make([]float64, 0, len(ds.Rows))
	nulls := 0
	for _, row := range ds.Rows {
		v := cellAt(row, colIdx)
		if v == nil {
			nulls++
			continue
		}
		if f, ok := numericValue(v); ok {
			values = append(values, f)
		}
	}

	stats := models.NumericColumnStats{}
	if len(ds.Rows) > 0 {
		stats.NullPercentage = float64(nulls) / float64(len(ds.Rows)) * 100
	}
	if len(values) == 0 {
		return stats
	}

	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)

	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	stats.Mean = mean(values)
	stats.Median = quantile(sorted, 0.5)
	stats.Q25 = quantile(sorted, 0.25)
	stats.Q75 = quantile(sorted, 0.75)
	stats.Std = sampleStd(values, stats.Mean)
	stats.Skewness = sampleSkewness(values, stats.Mean, stats.Std)
	return stats
}

// computeCategoricalStats 计算单个分类列的统计摘要
func computeCategoricalStats(ds *models.Dataset, colIdx int) models.CategoricalColumnStats {
	counts := make(map[string]int)
	nulls := 0
	for _, row := range ds.Rows {
		v := cellAt(row, colIdx)
		if v == nil {
			nulls++
			continue
		}
		counts[cast.ToString(v)]++
	}

	stats := models.CategoricalColumnStats{UniqueValues: len(counts)}
	if len(ds.Rows) > 0 {
		stats.NullPercentage = float64(nulls) / float64(len(ds.Rows)) * 100
	}

	// 众数取出现次数最多的取值，并列时取字典序最小者保证结果稳定
	best, bestCount := "", -1
	for value, count := range counts {
		if count > bestCount || (count == bestCount && value < best) {
			best, bestCount = value, count
		}
	}
	stats.MostCommon = best
	return stats
}

// countDuplicateRows 统计重复行数量（同一行的第二次及之后出现计为重复）
func countDuplicateRows(ds *models.Dataset) int {
	seen := make(map[string]struct{}, len(ds.Rows))
	duplicates := 0
	for _, row := range ds.Rows {
		key := rowKey(row)
		if _, ok := seen[key]; ok {
			duplicates++
		} else {
			seen[key] = struct{}{}
		}
	}
	return duplicates
}

// rowKey 生成行内容的比较键
func rowKey(row []interface{}) string {
	if data, err := json.Marshal(row); err == nil {
		return string(data)
	}
	return fmt.Sprint(row)
}

// estimateMemoryMB 估算数据集内存占用（MB）
// 数值按8字节、字符串按内容加头部开销估算，与精确值有偏差但量级一致
func estimateMemoryMB(ds *models.Dataset) float64 {
	bytes := 0
	for _, name := range ds.Columns {
		bytes += len(name) + 16
	}
	for _, row := range ds.Rows {
		for _, v := range row {
			switch val := v.(type) {
			case nil:
				bytes += 8
			case string:
				bytes += len(val) + 16
			default:
				bytes += 8
			}
		}
	}
	return float64(bytes) / (1024 * 1024)
}

// cellAt 取行内指定下标的单元格，越界按缺失处理
func cellAt(row []interface{}, idx int) interface{} {
	if idx >= len(row) {
		return nil
	}
	return row[idx]
}

// numericValue 判断单元格是否为数值类型并返回浮点值
// 字符串不参与数值识别，由数据源加载器负责类型转换
func numericValue(v interface{}) (float64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		return f, true
	case json.Number:
		f, err := v.(json.Number).Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// mean 计算均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantile 计算分位数，使用线性插值法，输入必须已排序
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// sampleStd 计算样本标准差（除以n-1）
func sampleStd(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// sampleSkewness 计算调整后的样本偏度（Fisher-Pearson G1）
func sampleSkewness(values []float64, m, std float64) float64 {
	n := float64(len(values))
	if len(values) < 3 || std == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := (v - m) / std
		sum += d * d * d
	}
	return n / ((n - 1) * (n - 2)) * sum
}
