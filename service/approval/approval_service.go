/*
 * @module service/approval/approval_service
 * @description 审批请求存储服务，提供pending登记、终态变更、待审列表查询和外部决定受理
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 审批请求创建(pending) -> 人工决定 -> 单次终态变更(approved/denied) -> pg_notify唤醒等待方
 * @rules 审批请求只允许从pending变更一次终态，不允许删除；重复决定返回错误
 * @dependencies gorm.io/gorm
 * @refs service/monitor/approval_coordinator.go, api/controllers/approval_controller.go
 */

package approval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pipeline-monitor-service/service/models"

	"gorm.io/gorm"
)

// NotifyChannelName 审批决定的PostgreSQL通知通道名
const NotifyChannelName = "approval_decisions"

// Service 审批请求存储服务
type Service struct {
	db *gorm.DB
}

// NewService 创建审批请求存储服务实例
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreatePending 登记一条pending状态的审批请求
func (s *Service) CreatePending(ctx context.Context, req *models.ApprovalRequest) error {
	req.Status = models.ApprovalStatusPending
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("创建审批请求失败: %w", err)
	}
	return nil
}

// Finalize 将审批请求变更为终态，仅当仍处于pending时生效
// 已被外部决定抢先终态化时静默返回，保证单次终态变更
func (s *Service) Finalize(ctx context.Context, id, status, decision string) error {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.ApprovalRequest{}).
		Where("id = ? AND status = ?", id, models.ApprovalStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"decision":   decision,
			"decided_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("更新审批请求失败: %w", result.Error)
	}
	return nil
}

// ListPending 查询全部待审批请求，按创建时间升序
func (s *Service) ListPending(ctx context.Context) ([]models.ApprovalRequest, error) {
	var requests []models.ApprovalRequest
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.ApprovalStatusPending).
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("查询待审批请求失败: %w", err)
	}
	return requests, nil
}

// Get 查询单条审批请求
func (s *Service) Get(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	var request models.ApprovalRequest
	if err := s.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("审批请求不存在: %w", err)
	}
	return &request, nil
}

// Decide 受理外部审批决定（审批API的处理入口）
// decision取值 approve/deny/modify，deny与modify需附原因文本
func (s *Service) Decide(ctx context.Context, id, decision, reason, decidedBy string) (*models.ApprovalRequest, error) {
	var decisionText, status string
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case "approve", "approved":
		decisionText = "approved"
		status = models.ApprovalStatusApproved
	case "deny", "denied":
		decisionText = fmt.Sprintf("denied: %s", reason)
		status = models.ApprovalStatusDenied
	case "modify", "modified":
		decisionText = fmt.Sprintf("modified: %s", reason)
		status = models.ApprovalStatusDenied
	default:
		return nil, fmt.Errorf("不支持的决定类型: %s", decision)
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.ApprovalRequest{}).
		Where("id = ? AND status = ?", id, models.ApprovalStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"decision":   decisionText,
			"decided_by": decidedBy,
			"decided_at": &now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("更新审批请求失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("审批请求不存在或已处理: %s", id)
	}

	// 通过pg_notify唤醒阻塞等待的数据库审批通道，非postgres方言（如测试sqlite）跳过
	if s.db.Dialector.Name() == "postgres" {
		if err := s.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", NotifyChannelName, id).Error; err != nil {
			slog.Warn("发送审批决定通知失败", "request_id", id, "error", err)
		}
	}

	return s.Get(ctx, id)
}
