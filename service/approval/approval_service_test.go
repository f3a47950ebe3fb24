/*
 * @module service/approval/approval_service_test
 * @description 审批请求存储服务单元测试
 * @architecture 测试层 - 内存数据库验证存储语义
 * @stateFlow pending登记 -> 决定受理 -> 终态与单次变更验证
 * @rules 覆盖三类决定映射、重复决定拒绝、终态化幂等和待审列表排序
 * @dependencies testing, testify, pipeline-monitor-service/testutil
 * @refs approval_service.go
 */

package approval

import (
	"context"
	"testing"
	"time"

	"pipeline-monitor-service/service/models"
	"pipeline-monitor-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePendingAssignsDefaults(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewService(tdb.DB)

	req := &models.ApprovalRequest{
		ActionType:  "[URGENT] EMERGENCY Pipeline Response",
		Description: "Critical pipeline issues detected",
		RiskLevel:   "high",
	}
	require.NoError(t, svc.CreatePending(context.Background(), req))

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, models.ApprovalStatusPending, req.Status)

	stored, err := svc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ActionType, stored.ActionType)
	assert.Nil(t, stored.DecidedAt)
}

func TestListPendingOrdersByCreatedAt(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)

	older := factory.CreateApprovalRequest(func(r *models.ApprovalRequest) {
		r.CreatedAt = time.Now().Add(-time.Hour)
	})
	newer := factory.CreateApprovalRequest()
	factory.CreateApprovalRequest(func(r *models.ApprovalRequest) {
		r.Status = models.ApprovalStatusApproved
	})

	svc := NewService(tdb.DB)
	pending, err := svc.ListPending(context.Background())

	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.ID, pending[0].ID)
	assert.Equal(t, newer.ID, pending[1].ID)
}

func TestDecideMapsDecisionToTerminalState(t *testing.T) {
	testCases := []struct {
		name         string
		decision     string
		reason       string
		wantStatus   string
		wantDecision string
	}{
		{"通过", "approve", "", models.ApprovalStatusApproved, "approved"},
		{"通过同义词", "approved", "", models.ApprovalStatusApproved, "approved"},
		{"拒绝带原因", "deny", "too risky", models.ApprovalStatusDenied, "denied: too risky"},
		{"修改按拒绝落库", "modify", "reduce scope", models.ApprovalStatusDenied, "modified: reduce scope"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tdb := testutil.NewTestDB()
			defer tdb.Close()
			factory := testutil.NewTestDataFactory(tdb.DB)
			req := factory.CreateApprovalRequest()

			svc := NewService(tdb.DB)
			updated, err := svc.Decide(context.Background(), req.ID, tc.decision, tc.reason, "ops-admin")

			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, updated.Status)
			assert.Equal(t, tc.wantDecision, updated.Decision)
			assert.Equal(t, "ops-admin", updated.DecidedBy)
			require.NotNil(t, updated.DecidedAt)
		})
	}
}

func TestDecideRejectsUnknownDecision(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	req := factory.CreateApprovalRequest()

	svc := NewService(tdb.DB)
	_, err := svc.Decide(context.Background(), req.ID, "escalate", "", "ops-admin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "不支持的决定类型")
}

func TestDecideFailsOnAlreadyProcessedRequest(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	req := factory.CreateApprovalRequest()

	svc := NewService(tdb.DB)
	_, err := svc.Decide(context.Background(), req.ID, "approve", "", "ops-admin")
	require.NoError(t, err)

	// 终态只允许变更一次
	_, err = svc.Decide(context.Background(), req.ID, "deny", "changed my mind", "ops-admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "审批请求不存在或已处理")

	stored, err := svc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusApproved, stored.Status)
}

func TestDecideFailsOnMissingRequest(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewService(tdb.DB)

	_, err := svc.Decide(context.Background(), "00000000-0000-0000-0000-000000000000", "approve", "", "ops-admin")
	assert.Error(t, err)
}

func TestFinalizeIsSilentOnTerminalRequest(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	req := factory.CreateApprovalRequest()

	svc := NewService(tdb.DB)
	require.NoError(t, svc.Finalize(context.Background(), req.ID, models.ApprovalStatusDenied, "expired"))

	// 已终态化的请求再次Finalize静默跳过，不覆盖先到的决定
	require.NoError(t, svc.Finalize(context.Background(), req.ID, models.ApprovalStatusApproved, "approved"))

	stored, err := svc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusDenied, stored.Status)
	assert.Equal(t, "expired", stored.Decision)
}
