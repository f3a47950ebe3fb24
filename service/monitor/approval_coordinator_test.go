/*
 * @module service/monitor/approval_coordinator_test
 * @description 审批协调器单元测试
 * @architecture 测试层 - 以伪造通道和存储隔离外部依赖
 * @stateFlow 动作构造 -> 协调处理 -> 决定序列与存储交互验证
 * @rules 覆盖自动通过、各类终态分类、超时过期与决定顺序
 * @dependencies testing, testify
 * @refs approval_coordinator.go
 */

package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"pipeline-monitor-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChannel 按脚本返回决定的伪造审批通道
type fakeChannel struct {
	decisions []string
	err       error
	block     bool // 阻塞直到ctx取消
	requests  []*models.ApprovalContext
}

func (f *fakeChannel) RequestDecision(ctx context.Context, req *models.ApprovalContext) (string, error) {
	f.requests = append(f.requests, req)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	decision := f.decisions[0]
	if len(f.decisions) > 1 {
		f.decisions = f.decisions[1:]
	}
	return decision, nil
}

// fakeStore 记录交互的伪造审批存储
type fakeStore struct {
	created   []*models.ApprovalRequest
	finalized []struct{ ID, Status, Decision string }
}

func (f *fakeStore) CreatePending(ctx context.Context, req *models.ApprovalRequest) error {
	req.ID = "req-" + time.Now().Format("150405.000000000")
	f.created = append(f.created, req)
	return nil
}

func (f *fakeStore) Finalize(ctx context.Context, id, status, decision string) error {
	f.finalized = append(f.finalized, struct{ ID, Status, Decision string }{id, status, decision})
	return nil
}

func approvableAction() models.Action {
	return models.Action{
		Type:             "EMERGENCY Pipeline Response",
		Description:      "Critical pipeline issues detected requiring immediate intervention",
		Priority:         models.PriorityUrgent,
		RiskLevel:        models.RiskHigh,
		RequiresApproval: true,
	}
}

func TestProcessAutoApprovesRoutineAction(t *testing.T) {
	channel := &fakeChannel{}
	store := &fakeStore{}
	coordinator := NewApprovalCoordinator(channel, store, 0)

	action := models.Action{
		Type:             "Routine Monitoring Complete",
		Priority:         models.PriorityNormal,
		RiskLevel:        models.RiskLow,
		RequiresApproval: false,
	}

	decisions := coordinator.Process(context.Background(), []models.Action{action})

	require.Len(t, decisions, 1)
	assert.Equal(t, models.OutcomeAutoApproved, decisions[0].Outcome)
	assert.Equal(t, models.ApprovalStatusApproved, decisions[0].Status)
	assert.Equal(t, "auto_approved", decisions[0].Decision)
	// 免审批动作不登记审批请求，也不触达通道
	assert.Empty(t, store.created)
	assert.Empty(t, channel.requests)
}

func TestProcessApprovedDecision(t *testing.T) {
	channel := &fakeChannel{decisions: []string{"approved"}}
	store := &fakeStore{}
	coordinator := NewApprovalCoordinator(channel, store, 0)

	decisions := coordinator.Process(context.Background(), []models.Action{approvableAction()})

	require.Len(t, decisions, 1)
	assert.Equal(t, models.OutcomeApproved, decisions[0].Outcome)
	assert.Equal(t, models.ApprovalStatusApproved, decisions[0].Status)

	// 审批请求先登记为pending再终态化
	require.Len(t, store.created, 1)
	assert.Equal(t, "[URGENT] EMERGENCY Pipeline Response", store.created[0].ActionType)
	assert.Contains(t, store.created[0].Description, "Priority Level: URGENT")
	assert.Contains(t, store.created[0].Description, "Risk Impact: high")

	require.Len(t, store.finalized, 1)
	assert.Equal(t, models.ApprovalStatusApproved, store.finalized[0].Status)
	assert.Equal(t, "approved", store.finalized[0].Decision)
}

func TestProcessDeniedAndModifiedDecisions(t *testing.T) {
	testCases := []struct {
		name        string
		decision    string
		wantOutcome models.ApprovalOutcome
		wantStatus  string
	}{
		{"拒绝带原因", "denied: too risky", models.OutcomeDenied, models.ApprovalStatusDenied},
		{"修改后执行", "modified: reduce scope", models.OutcomeModified, models.ApprovalStatusDenied},
		{"无法识别按拒绝", "whatever", models.OutcomeDenied, models.ApprovalStatusDenied},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			channel := &fakeChannel{decisions: []string{tc.decision}}
			coordinator := NewApprovalCoordinator(channel, &fakeStore{}, 0)

			decisions := coordinator.Process(context.Background(), []models.Action{approvableAction()})

			require.Len(t, decisions, 1)
			assert.Equal(t, tc.wantOutcome, decisions[0].Outcome)
			assert.Equal(t, tc.wantStatus, decisions[0].Status)
			// 原始决定文本逐字保留
			assert.Equal(t, tc.decision, decisions[0].Decision)
		})
	}
}

func TestProcessDecisionTimeoutExpires(t *testing.T) {
	channel := &fakeChannel{block: true}
	store := &fakeStore{}
	coordinator := NewApprovalCoordinator(channel, store, 20*time.Millisecond)

	decisions := coordinator.Process(context.Background(), []models.Action{approvableAction()})

	require.Len(t, decisions, 1)
	assert.Equal(t, models.OutcomeExpired, decisions[0].Outcome)
	assert.Equal(t, models.ApprovalStatusDenied, decisions[0].Status)
	assert.Equal(t, "expired", decisions[0].Decision)

	// 超时后审批请求仍以denied终态落库
	require.Len(t, store.finalized, 1)
	assert.Equal(t, models.ApprovalStatusDenied, store.finalized[0].Status)
	assert.Equal(t, "expired", store.finalized[0].Decision)
}

func TestProcessChannelErrorDenies(t *testing.T) {
	channel := &fakeChannel{err: errors.New("broker unreachable")}
	coordinator := NewApprovalCoordinator(channel, &fakeStore{}, 0)

	decisions := coordinator.Process(context.Background(), []models.Action{approvableAction()})

	require.Len(t, decisions, 1)
	assert.Equal(t, models.OutcomeDenied, decisions[0].Outcome)
	assert.Contains(t, decisions[0].Decision, "error: broker unreachable")
}

func TestProcessPreservesActionOrder(t *testing.T) {
	channel := &fakeChannel{decisions: []string{"approved", "denied: no"}}
	coordinator := NewApprovalCoordinator(channel, &fakeStore{}, 0)

	routine := models.Action{Type: "Routine Monitoring Complete", Priority: models.PriorityNormal}
	first := approvableAction()
	second := approvableAction()
	second.Type = "Critical Data Quality Response"
	second.Priority = models.PriorityHigh

	decisions := coordinator.Process(context.Background(), []models.Action{first, routine, second})

	require.Len(t, decisions, 3)
	assert.Equal(t, first.Type, decisions[0].Action.Type)
	assert.Equal(t, models.OutcomeApproved, decisions[0].Outcome)
	assert.Equal(t, routine.Type, decisions[1].Action.Type)
	assert.Equal(t, models.OutcomeAutoApproved, decisions[1].Outcome)
	assert.Equal(t, second.Type, decisions[2].Action.Type)
	assert.Equal(t, models.OutcomeDenied, decisions[2].Outcome)
}
