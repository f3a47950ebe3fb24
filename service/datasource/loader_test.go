/*
 * @module service/datasource/loader_test
 * @description 数据集加载器注册表单元测试
 * @architecture 测试层 - 伪造加载器验证分发语义
 * @stateFlow 加载器注册 -> 类型分发 -> 数据集与错误验证
 * @rules 覆盖类型分发、未注册类型错误和同类型覆盖注册
 * @dependencies testing, testify
 * @refs loader.go
 */

package datasource

import (
	"context"
	"testing"

	"pipeline-monitor-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLoader 返回固定数据集的伪造加载器
type stubLoader struct {
	sourceType string
	dataset    *models.Dataset
	options    models.JSONB
}

func (s *stubLoader) Type() string {
	return s.sourceType
}

func (s *stubLoader) Load(ctx context.Context, options models.JSONB) (*models.Dataset, error) {
	s.options = options
	return s.dataset, nil
}

func TestRegistryDispatchesBySourceType(t *testing.T) {
	want := &models.Dataset{Columns: []string{"order_id"}}
	loader := &stubLoader{sourceType: "csv", dataset: want}

	registry := &Registry{loaders: map[string]Loader{}}
	registry.Register(loader)

	dataset, err := registry.Load(context.Background(), "csv", models.JSONB{"path": "/tmp/a.csv"})

	require.NoError(t, err)
	assert.Same(t, want, dataset)
	assert.Equal(t, "/tmp/a.csv", loader.options["path"])
}

func TestRegistryUnknownSourceType(t *testing.T) {
	registry := &Registry{loaders: map[string]Loader{}}

	_, err := registry.Load(context.Background(), "ftp", models.JSONB{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "不支持的数据源类型")
}

func TestRegistryLaterRegistrationWins(t *testing.T) {
	first := &stubLoader{sourceType: "csv", dataset: &models.Dataset{}}
	second := &stubLoader{sourceType: "csv", dataset: &models.Dataset{Columns: []string{"amount"}}}

	registry := &Registry{loaders: map[string]Loader{}}
	registry.Register(first)
	registry.Register(second)

	dataset, err := registry.Load(context.Background(), "csv", models.JSONB{})
	require.NoError(t, err)
	assert.Same(t, second.dataset, dataset)
}

func TestNewRegistryCoversBuiltinTypes(t *testing.T) {
	registry := NewRegistry(nil)

	for _, sourceType := range []string{"csv", "kafka", "postgresql"} {
		_, ok := registry.loaders[sourceType]
		assert.True(t, ok, sourceType)
	}
}
