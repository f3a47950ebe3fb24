/*
 * @module service/approval/db_channel
 * @description 数据库审批通道，等待外部审批人通过API将pending请求变更为终态，支持pg LISTEN/NOTIFY唤醒和轮询兜底
 * @architecture 适配器模式 - 异步审批通道实现
 * @stateFlow 等待通知/轮询 -> 查询请求状态 -> 终态则返回决定文本
 * @rules 请求行必须已登记；通知通道不可用时退化为纯轮询；上下文取消即返回
 * @dependencies github.com/lib/pq, gorm.io/gorm
 * @refs service/approval/approval_service.go, api/controllers/approval_controller.go
 */

package approval

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pipeline-monitor-service/service/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// 轮询兜底间隔
const defaultPollInterval = 2 * time.Second

// DatabaseChannel 数据库审批通道
type DatabaseChannel struct {
	db           *gorm.DB
	listenDSN    string // postgres连接串，为空时仅轮询
	pollInterval time.Duration
}

// NewDatabaseChannel 创建数据库审批通道实例
func NewDatabaseChannel(db *gorm.DB, listenDSN string) *DatabaseChannel {
	return &DatabaseChannel{
		db:           db,
		listenDSN:    listenDSN,
		pollInterval: defaultPollInterval,
	}
}

// SetPollInterval 调整轮询间隔（用于测试）
func (c *DatabaseChannel) SetPollInterval(interval time.Duration) {
	c.pollInterval = interval
}

// RequestDecision 阻塞等待审批请求到达终态，返回原始决定文本
func (c *DatabaseChannel) RequestDecision(ctx context.Context, req *models.ApprovalContext) (string, error) {
	if req.RequestID == "" {
		return "", errors.New("审批请求未登记，无法等待外部决定")
	}

	// LISTEN/NOTIFY可用时优先唤醒，失败退化为纯轮询
	var notifyChan <-chan *pq.Notification
	if c.listenDSN != "" {
		listener := pq.NewListener(c.listenDSN, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
			if err != nil {
				slog.Warn("审批通知监听事件异常", "event", ev, "error", err)
			}
		})
		if err := listener.Listen(NotifyChannelName); err != nil {
			slog.Warn("订阅审批决定通知失败，退化为轮询", "error", err)
			listener.Close()
		} else {
			defer listener.Close()
			notifyChan = listener.Notify
		}
	}

	for {
		decision, done, err := c.checkRequest(ctx, req.RequestID)
		if err != nil {
			return "", err
		}
		if done {
			return decision, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case notification := <-notifyChan:
			// 收到任何通知都重新查询一次；nil表示连接重建，同样触发查询
			_ = notification
		case <-time.After(c.pollInterval):
		}
	}
}

// checkRequest 查询审批请求当前状态，终态时返回决定文本
func (c *DatabaseChannel) checkRequest(ctx context.Context, id string) (string, bool, error) {
	var request models.ApprovalRequest
	if err := c.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, errors.New("审批请求行不存在")
		}
		return "", false, err
	}

	if request.Status == models.ApprovalStatusPending {
		return "", false, nil
	}
	if request.Decision != "" {
		return request.Decision, true, nil
	}
	return request.Status, true, nil
}
