/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, time
 * @refs service/models
 */

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pipeline-monitor-service/service/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.MonitoringHistory{},
		&models.ApprovalRequest{},
		&models.PipelineConfig{},
		&models.SystemConfig{},
		&models.CustomRuleScript{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	// 清空所有表的数据
	tables := []string{
		"monitoring_histories",
		"approval_requests",
		"pipeline_configs",
		"system_configs",
		"custom_rule_scripts",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// CleanDataset 构建无异常的测试数据集
// 三列（一列数值、两列文本），无缺失无重复
func CleanDataset(rows int) *models.Dataset {
	ds := &models.Dataset{
		Columns: []string{"order_id", "amount", "region"},
		Rows:    make([][]interface{}, 0, rows),
	}
	regions := []string{"north", "south", "east", "west"}
	for i := 0; i < rows; i++ {
		ds.Rows = append(ds.Rows, []interface{}{
			fmt.Sprintf("ORD-%06d", i),
			float64(100 + i%500),
			regions[i%len(regions)],
		})
	}
	return ds
}

// DirtyDataset 构建带质量问题的测试数据集
// amount列前15%为缺失值，尾部追加200行完全重复的数据块
func DirtyDataset() *models.Dataset {
	const base = 2000
	ds := &models.Dataset{
		Columns: []string{"order_id", "amount", "region"},
		Rows:    make([][]interface{}, 0, base+200),
	}
	regions := []string{"north", "south", "east", "west"}

	nullCount := base * 15 / 100
	for i := 0; i < base; i++ {
		var amount interface{}
		if i >= nullCount {
			amount = float64(100 + i%500)
		}
		ds.Rows = append(ds.Rows, []interface{}{
			fmt.Sprintf("ORD-%06d", i),
			amount,
			regions[i%len(regions)],
		})
	}

	// 重复数据块：同一行复制200次
	for i := 0; i < 200; i++ {
		ds.Rows = append(ds.Rows, []interface{}{"ORD-DUP", float64(250), "north"})
	}
	return ds
}

// EmptyDataset 构建零记录数据集
func EmptyDataset() *models.Dataset {
	return &models.Dataset{
		Columns: []string{"order_id", "amount"},
		Rows:    [][]interface{}{},
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// PipelineConfigOption 管道配置选项函数类型
type PipelineConfigOption func(*models.PipelineConfig)

// CreatePipelineConfig 创建测试管道配置
func (f *TestDataFactory) CreatePipelineConfig(opts ...PipelineConfigOption) *models.PipelineConfig {
	config := &models.PipelineConfig{
		Name:       "test_pipeline_" + generateSuffix(),
		SourceType: "csv",
		SourceOptions: models.JSONB{
			"path": "/tmp/test.csv",
		},
		IsEnabled: true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(config)
	}

	err := f.DB.Create(config).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test pipeline config: %v", err))
	}

	return config
}

// ApprovalRequestOption 审批请求选项函数类型
type ApprovalRequestOption func(*models.ApprovalRequest)

// CreateApprovalRequest 创建测试审批请求
func (f *TestDataFactory) CreateApprovalRequest(opts ...ApprovalRequestOption) *models.ApprovalRequest {
	request := &models.ApprovalRequest{
		ActionType:  "[HIGH] Critical Data Quality Response",
		Description: "测试审批请求",
		RiskLevel:   "high",
		Status:      models.ApprovalStatusPending,
		CreatedAt:   time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(request)
	}

	err := f.DB.Create(request).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test approval request: %v", err))
	}

	return request
}

// CustomRuleScriptOption 规则脚本选项函数类型
type CustomRuleScriptOption func(*models.CustomRuleScript)

// CreateCustomRuleScript 创建测试规则脚本
func (f *TestDataFactory) CreateCustomRuleScript(script string, opts ...CustomRuleScriptOption) *models.CustomRuleScript {
	rule := &models.CustomRuleScript{
		Name:      "test_rule_" + generateSuffix(),
		Script:    script,
		IsEnabled: true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(rule)
	}

	err := f.DB.Create(rule).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test custom rule script: %v", err))
	}

	return rule
}

// 辅助函数
func generateSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano()%100000)
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
