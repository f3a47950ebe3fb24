/*
 * @module service/datasource/loader
 * @description 数据集加载器注册表，按数据源类型分发到对应加载器，统一产出只读数据集快照
 * @architecture 适配器模式 - 数据源接入层
 * @stateFlow 类型查找 -> 加载器执行 -> 数据集快照
 * @rules 加载器按类型唯一注册；未注册类型返回错误；数据集产出后不再修改
 * @dependencies gorm.io/gorm
 * @refs service/datasource/csv_source.go, service/datasource/kafka_source.go, service/datasource/postgres_source.go
 */

package datasource

import (
	"context"
	"fmt"
	"sync"

	"pipeline-monitor-service/service/models"

	"gorm.io/gorm"
)

// Loader 数据集加载器抽象
type Loader interface {
	// Type 返回加载器负责的数据源类型
	Type() string
	// Load 按配置加载一份数据集快照
	Load(ctx context.Context, options models.JSONB) (*models.Dataset, error)
}

// Registry 数据集加载器注册表
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
}

// NewRegistry 创建注册表并注册内置加载器
func NewRegistry(db *gorm.DB) *Registry {
	r := &Registry{loaders: make(map[string]Loader)}
	r.Register(NewCSVSource())
	r.Register(NewKafkaSource())
	r.Register(NewPostgresSource(db))
	return r
}

// Register 注册加载器，同类型后注册者覆盖先注册者
func (r *Registry) Register(loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[loader.Type()] = loader
}

// Load 按数据源类型加载数据集快照
func (r *Registry) Load(ctx context.Context, sourceType string, options models.JSONB) (*models.Dataset, error) {
	r.mu.RLock()
	loader, ok := r.loaders[sourceType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("不支持的数据源类型: %s", sourceType)
	}
	return loader.Load(ctx, options)
}
