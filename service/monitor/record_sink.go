/*
 * @module service/monitor/record_sink
 * @description 审计记录数据库收口实现，将内存中的监控记录转换为JSONB落库
 * @architecture 分层架构 - 数据访问层
 * @stateFlow 监控记录 -> JSONB转换 -> monitoring_histories 追加写
 * @rules 只追加不更新；转换失败与写入失败均上抛由编排器记录日志
 * @dependencies gorm.io/gorm, encoding/json
 * @refs service/monitor/monitor_service.go, service/models/monitoring.go
 */

package monitor

import (
	"context"
	"encoding/json"
	"fmt"

	"pipeline-monitor-service/service/models"

	"gorm.io/gorm"
)

// DatabaseRecordSink 基于gorm的审计记录收口
type DatabaseRecordSink struct {
	db *gorm.DB
}

// NewDatabaseRecordSink 创建数据库记录收口实例
func NewDatabaseRecordSink(db *gorm.DB) *DatabaseRecordSink {
	return &DatabaseRecordSink{db: db}
}

// Save 将监控记录追加写入monitoring_histories表
func (s *DatabaseRecordSink) Save(ctx context.Context, record *models.MonitoringRecord) error {
	metricsJSON, err := toJSONB(record.Metrics)
	if err != nil {
		return fmt.Errorf("指标序列化失败: %w", err)
	}

	anomaliesJSON, err := toJSONBArray(record.Anomalies)
	if err != nil {
		return fmt.Errorf("异常序列化失败: %w", err)
	}

	resultsJSON, err := toJSONBArray(record.ApprovalResults)
	if err != nil {
		return fmt.Errorf("审批结果序列化失败: %w", err)
	}

	entry := &models.MonitoringHistory{
		PipelineName:     record.PipelineName,
		Metrics:          metricsJSON,
		Anomalies:        anomaliesJSON,
		RiskLevel:        string(record.RiskLevel),
		AIInsights:       record.AIInsights,
		ExecutionResults: resultsJSON,
		CreatedAt:        record.Timestamp,
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("写入监控历史失败: %w", err)
	}
	return nil
}

// toJSONB 任意结构体转JSONB
func toJSONB(v interface{}) (models.JSONB, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result models.JSONB
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// toJSONBArray 任意切片转JSONBArray
func toJSONBArray(v interface{}) (models.JSONBArray, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result models.JSONBArray
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}
