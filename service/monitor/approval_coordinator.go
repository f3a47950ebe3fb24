/*
 * @module service/monitor/approval_coordinator
 * @description 审批协调器，驱动每个处置动作走完审批状态机：免审批动作自动通过，需审批动作登记后阻塞等待人工决定
 * @architecture 分层架构 - 监控核心层
 * @stateFlow PLANNED -> AUTO_APPROVED | PENDING_HUMAN -> APPROVED/DENIED/MODIFIED/EXPIRED
 * @rules 审批决定按动作规划顺序记录；审批请求行只做一次终态变更；modified作为独立终态但聚合统计归入denied
 * @dependencies context, time, log/slog
 * @refs service/approval, service/monitor/action_planner.go
 */

package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pipeline-monitor-service/service/models"
)

// ApprovalChannel 审批通道抽象
// 同步通道（控制台）直接返回决定，异步通道（数据库/MQTT）阻塞等待外部决定到达
type ApprovalChannel interface {
	RequestDecision(ctx context.Context, req *models.ApprovalContext) (string, error)
}

// ApprovalStore 审批请求存储抽象
type ApprovalStore interface {
	CreatePending(ctx context.Context, req *models.ApprovalRequest) error
	Finalize(ctx context.Context, id, status, decision string) error
}

// ApprovalCoordinator 审批协调器
type ApprovalCoordinator struct {
	channel         ApprovalChannel
	store           ApprovalStore
	decisionTimeout time.Duration // 单个决定的等待上限，0表示无限等待（交互式场景）
}

// NewApprovalCoordinator 创建审批协调器实例
func NewApprovalCoordinator(channel ApprovalChannel, store ApprovalStore, decisionTimeout time.Duration) *ApprovalCoordinator {
	return &ApprovalCoordinator{
		channel:         channel,
		store:           store,
		decisionTimeout: decisionTimeout,
	}
}

// Process 按规划顺序处理全部动作，返回与动作一一对应的审批决定序列
func (c *ApprovalCoordinator) Process(ctx context.Context, actions []models.Action) []models.ApprovalDecision {
	decisions := make([]models.ApprovalDecision, 0, len(actions))

	for _, action := range actions {
		if !action.RequiresApproval {
			// 免审批动作自动通过，不登记审批请求
			decisions = append(decisions, models.ApprovalDecision{
				Action:    action,
				Decision:  "auto_approved",
				Outcome:   models.OutcomeAutoApproved,
				Status:    models.ApprovalStatusApproved,
				Priority:  action.Priority,
				Timestamp: time.Now(),
			})
			slog.Info("动作自动通过", "action_type", action.Type)
			continue
		}

		decisions = append(decisions, c.requestHumanDecision(ctx, action))
	}

	return decisions
}

// requestHumanDecision 登记审批请求并等待人工决定
func (c *ApprovalCoordinator) requestHumanDecision(ctx context.Context, action models.Action) models.ApprovalDecision {
	request := &models.ApprovalRequest{
		ActionType:  fmt.Sprintf("[%s] %s", action.Priority, action.Type),
		Description: fmt.Sprintf("%s\n\nPriority Level: %s\nRisk Impact: %s", action.Description, action.Priority, action.RiskLevel),
		RiskLevel:   string(action.RiskLevel),
	}

	if c.store != nil {
		if err := c.store.CreatePending(ctx, request); err != nil {
			// 登记失败不阻断审批流程，决定仍会返回给调用方
			slog.Error("登记审批请求失败", "action_type", action.Type, "error", err)
		}
	}

	reqCtx := &models.ApprovalContext{
		RequestID:   request.ID,
		ActionType:  request.ActionType,
		Description: request.Description,
		RiskLevel:   action.RiskLevel,
	}

	decisionCtx := ctx
	if c.decisionTimeout > 0 {
		var cancel context.CancelFunc
		decisionCtx, cancel = context.WithTimeout(ctx, c.decisionTimeout)
		defer cancel()
	}

	decisionText, err := c.channel.RequestDecision(decisionCtx, reqCtx)

	var outcome models.ApprovalOutcome
	var status string
	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		// 超时作为独立终态，聚合统计归入denied
		outcome = models.OutcomeExpired
		status = models.ApprovalStatusDenied
		decisionText = "expired"
		slog.Warn("审批请求超时", "request_id", request.ID, "action_type", action.Type)
	case err != nil:
		outcome = models.OutcomeDenied
		status = models.ApprovalStatusDenied
		decisionText = fmt.Sprintf("error: %v", err)
		slog.Error("审批通道请求失败", "request_id", request.ID, "error", err)
	default:
		outcome, status = classifyDecision(decisionText)
	}

	if c.store != nil && request.ID != "" {
		if err := c.store.Finalize(ctx, request.ID, status, decisionText); err != nil {
			slog.Error("更新审批请求终态失败", "request_id", request.ID, "error", err)
		}
	}

	return models.ApprovalDecision{
		Action:    action,
		Decision:  decisionText,
		Outcome:   outcome,
		Status:    status,
		Priority:  action.Priority,
		Timestamp: time.Now(),
	}
}

// classifyDecision 将原始决定文本映射为终态分类
// approved前缀判定通过；modified保留为独立终态；其余（含denied:<原因>）一律判定拒绝
func classifyDecision(text string) (models.ApprovalOutcome, string) {
	switch {
	case strings.HasPrefix(text, "approved"):
		return models.OutcomeApproved, models.ApprovalStatusApproved
	case strings.HasPrefix(text, "modified"):
		return models.OutcomeModified, models.ApprovalStatusDenied
	default:
		return models.OutcomeDenied, models.ApprovalStatusDenied
	}
}
