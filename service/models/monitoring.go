/*
 * @module service/models/monitoring
 * @description 监控持久化模型定义，包括监控历史记录、审批请求、管道配置、系统配置和自定义规则脚本
 * @architecture 分层架构 - 数据模型层
 * @documentReference dev_docs/monitor_requirements.md
 * @stateFlow 监控运行 -> 监控历史落库；审批请求 pending -> approved/denied 单次终态变更
 * @rules 监控历史与审批请求均为追加写，审批请求只允许一次终态变更，不允许删除
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/monitor, service/approval
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MonitoringHistory 监控历史记录模型
type MonitoringHistory struct {
	ID               string     `gorm:"type:uuid;primary_key" json:"id"`
	PipelineName     string     `gorm:"not null;size:255;index" json:"pipeline_name"`
	Metrics          JSONB      `gorm:"type:jsonb;not null" json:"metrics"`
	Anomalies        JSONBArray `gorm:"type:jsonb" json:"anomalies,omitempty"`
	RiskLevel        string     `gorm:"size:50" json:"risk_level"`
	AIInsights       string     `gorm:"type:text" json:"ai_insights,omitempty"`
	ExecutionResults JSONBArray `gorm:"type:jsonb" json:"execution_results,omitempty"`
	CreatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// BeforeCreate 创建前钩子
func (m *MonitoringHistory) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// ApprovalRequest 审批请求模型
// 需要人工审批的动作在此登记，由外部审批人变更为终态
type ApprovalRequest struct {
	ID          string     `gorm:"type:uuid;primary_key" json:"id"`
	ActionType  string     `gorm:"not null;size:255" json:"action_type"`
	Description string     `gorm:"type:text;not null" json:"description"`
	RiskLevel   string     `gorm:"not null;size:50" json:"risk_level"`
	Status      string     `gorm:"not null;size:50;default:'pending';index" json:"status"` // pending/approved/denied
	Decision    string     `gorm:"type:text" json:"decision,omitempty"`                    // 原始决定文本
	DecidedBy   string     `gorm:"size:100" json:"decided_by,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

// BeforeCreate 创建前钩子
func (a *ApprovalRequest) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = ApprovalStatusPending
	}
	return nil
}

// PipelineConfig 管道监控配置模型
type PipelineConfig struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	Name           string    `gorm:"not null;size:255;uniqueIndex" json:"name"`
	SourceType     string    `gorm:"not null;size:50" json:"source_type"` // csv/kafka/postgresql
	SourceOptions  JSONB     `gorm:"type:jsonb" json:"source_options,omitempty"`
	CronExpression string    `gorm:"size:100" json:"cron_expression,omitempty"` // 为空则仅支持手动触发
	IsEnabled      bool      `gorm:"not null;default:true" json:"is_enabled"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate 创建前钩子
func (p *PipelineConfig) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// SystemConfig 系统配置模型
// 敏感配置项（如洞察服务密钥）以AES加密后存储
type SystemConfig struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	ConfigKey   string    `gorm:"not null;size:255;uniqueIndex" json:"config_key"`
	ConfigValue string    `gorm:"type:text" json:"config_value"`
	IsSecret    bool      `gorm:"not null;default:false" json:"is_secret"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate 创建前钩子
func (s *SystemConfig) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// CustomRuleScript 自定义异常检测规则脚本模型
// 脚本为Go源码片段，由规则引擎在内置规则组之后解释执行
type CustomRuleScript struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"not null;size:255;uniqueIndex" json:"name"`
	Script    string    `gorm:"type:text;not null" json:"script"`
	IsEnabled bool      `gorm:"not null;default:true" json:"is_enabled"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate 创建前钩子
func (c *CustomRuleScript) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
