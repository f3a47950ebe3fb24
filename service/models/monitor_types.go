/*
 * @module service/models/monitor_types
 * @description 管道监控核心值对象定义，包括数据集快照、指标、异常、风险等级、处置动作和审批决定
 * @architecture 分层架构 - 数据模型层
 * @documentReference dev_docs/monitor_requirements.md
 * @stateFlow 数据集 -> 指标 -> 异常 -> 风险等级 -> 处置动作 -> 审批决定 -> 监控记录
 * @rules 值对象一经创建不再修改，监控记录在落库后不允许变更
 * @dependencies time
 * @refs service/monitor, service/models/monitoring.go
 */

package models

import (
	"time"
)

// Severity 异常严重级别
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityInfo     Severity = "INFO"
)

// Anomaly 检测到的数据质量异常
// 严重级别为结构化字段，不再嵌入消息文本中做字符串匹配
type Anomaly struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// RiskLevel 风险等级
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Dataset 表格数据快照
// 列顺序固定，行数据为逐列取值，核心引擎只读不写
type Dataset struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// RecordCount 返回行数
func (d *Dataset) RecordCount() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// ColumnCount 返回列数
func (d *Dataset) ColumnCount() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// ColumnIndex 返回列名对应的下标，不存在返回-1
func (d *Dataset) ColumnIndex(name string) int {
	for i, col := range d.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// NumericColumnStats 数值列统计摘要
type NumericColumnStats struct {
	Mean           float64 `json:"mean"`
	Median         float64 `json:"median"`
	Std            float64 `json:"std"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Q25            float64 `json:"q25"`
	Q75            float64 `json:"q75"`
	Skewness       float64 `json:"skewness"`
	NullPercentage float64 `json:"null_percentage"`
}

// CategoricalColumnStats 分类列统计摘要
type CategoricalColumnStats struct {
	UniqueValues   int     `json:"unique_values"`
	MostCommon     string  `json:"most_common"`
	NullPercentage float64 `json:"null_percentage"`
}

// PipelineMetrics 单次监控运行的指标快照
type PipelineMetrics struct {
	PipelineName       string                            `json:"pipeline_name"`
	TotalRecords       int                               `json:"total_records"`
	TotalColumns       int                               `json:"total_columns"`
	ColumnNames        []string                          `json:"column_names"`
	MissingValues      map[string]int                    `json:"missing_values"`
	DuplicateRecords   int                               `json:"duplicate_records"`
	MemoryUsageMB      float64                           `json:"memory_usage_mb"`
	StatisticalSummary map[string]NumericColumnStats     `json:"statistical_summary,omitempty"`
	CategoricalSummary map[string]CategoricalColumnStats `json:"categorical_summary,omitempty"`
	DataQualityScore   float64                           `json:"data_quality_score"`
}

// TotalMissingValues 返回所有列缺失值总数
func (m *PipelineMetrics) TotalMissingValues() int {
	total := 0
	for _, count := range m.MissingValues {
		total += count
	}
	return total
}

// ActionPriority 处置动作优先级
type ActionPriority string

const (
	PriorityNormal   ActionPriority = "NORMAL"
	PriorityMedium   ActionPriority = "MEDIUM"
	PriorityHigh     ActionPriority = "HIGH"
	PriorityUrgent   ActionPriority = "URGENT"
	PriorityCritical ActionPriority = "CRITICAL"
)

// Action 候选处置动作
type Action struct {
	Type             string         `json:"type"`
	Description      string         `json:"description"`
	Priority         ActionPriority `json:"priority"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	RequiresApproval bool           `json:"requires_approval"`
	AutoExecutable   bool           `json:"auto_executable"`
}

// ApprovalOutcome 审批结果的终态分类
// modified 作为独立终态保留，聚合统计时归入 denied 口径
type ApprovalOutcome string

const (
	OutcomeAutoApproved ApprovalOutcome = "auto_approved"
	OutcomeApproved     ApprovalOutcome = "approved"
	OutcomeDenied       ApprovalOutcome = "denied"
	OutcomeModified     ApprovalOutcome = "modified"
	OutcomeExpired      ApprovalOutcome = "expired"
)

// 审批请求状态
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusDenied   = "denied"
)

// ApprovalDecision 单个动作的审批决定记录
type ApprovalDecision struct {
	Action    Action          `json:"action"`
	Decision  string          `json:"decision"` // 原始决定文本，逐字保留
	Outcome   ApprovalOutcome `json:"outcome"`
	Status    string          `json:"status"` // approved / denied
	Priority  ActionPriority  `json:"priority"`
	Timestamp time.Time       `json:"timestamp"`
}

// ApprovalContext 发往审批通道的请求上下文
type ApprovalContext struct {
	RequestID   string    `json:"request_id"`
	ActionType  string    `json:"action_type"`
	Description string    `json:"description"`
	RiskLevel   RiskLevel `json:"risk_level"`
}

// MonitoringRecord 单次监控运行的完整审计记录
// 运行结束时一次性装配，交给持久化收口后不再修改
type MonitoringRecord struct {
	Timestamp       time.Time          `json:"timestamp"`
	PipelineName    string             `json:"pipeline_name"`
	Metrics         *PipelineMetrics   `json:"metrics"`
	Anomalies       []Anomaly          `json:"anomalies"`
	RiskLevel       RiskLevel          `json:"risk_level"`
	AIInsights      string             `json:"ai_insights"`
	ApprovalResults []ApprovalDecision `json:"approval_results"`
	ExecutionPhase  string             `json:"execution_phase"`
}
