/*
 * @module service/scheduler/scheduler_service
 * @description 定时监控调度服务，按管道配置的cron表达式周期性加载数据集并触发监控运行，多实例部署时用分布式锁防重
 * @architecture 分层架构 - 调度服务层
 * @stateFlow 配置加载 -> cron任务注册 -> 到期触发 -> 抢锁 -> 数据集加载 -> 监控运行 -> 释放锁
 * @rules 仅调度启用且配置了cron表达式的管道；未抢到锁的实例静默跳过本轮；配置变更后需Reload重建调度
 * @dependencies github.com/robfig/cron/v3, gorm.io/gorm
 * @refs service/monitor/monitor_service.go, service/datasource/loader.go, service/distributed_lock/redis_lock.go
 */

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pipeline-monitor-service/service/datasource"
	"pipeline-monitor-service/service/distributed_lock"
	"pipeline-monitor-service/service/models"
	"pipeline-monitor-service/service/monitor"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// 单次调度运行的锁TTL与运行时间上限
const (
	scheduleLockTTL  = 10 * time.Minute
	scheduleRunLimit = 30 * time.Minute
)

// SchedulerService 定时监控调度服务
type SchedulerService struct {
	db      *gorm.DB
	cron    *cron.Cron
	monitor *monitor.Service
	loaders *datasource.Registry
	lock    distributed_lock.DistributedLock // 可为nil，单实例部署无需抢锁
	mu      sync.Mutex
	started bool
}

// NewSchedulerService 创建调度服务实例
func NewSchedulerService(db *gorm.DB, monitorService *monitor.Service, loaders *datasource.Registry, lock distributed_lock.DistributedLock) *SchedulerService {
	return &SchedulerService{
		db:      db,
		cron:    cron.New(cron.WithSeconds()),
		monitor: monitorService,
		loaders: loaders,
		lock:    lock,
	}
}

// Start 加载管道配置并启动cron调度器
func (s *SchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	count, err := s.registerPipelines()
	if err != nil {
		return err
	}

	s.cron.Start()
	s.started = true
	slog.Info("定时监控调度器已启动", "pipelines", count)
	return nil
}

// Stop 停止cron调度器
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		s.cron.Stop()
	}
	s.started = false
	slog.Info("定时监控调度器已停止")
}

// Reload 重建调度任务
// cron库不支持按ID批量清理，配置变更后整体重建调度器
func (s *SchedulerService) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		s.cron.Stop()
	}
	s.cron = cron.New(cron.WithSeconds())

	count, err := s.registerPipelines()
	if err != nil {
		return err
	}

	if s.started {
		s.cron.Start()
	}
	slog.Info("定时监控调度任务已重建", "pipelines", count)
	return nil
}

// registerPipelines 注册全部可调度的管道，返回注册数量，调用方需持有锁
func (s *SchedulerService) registerPipelines() (int, error) {
	var configs []models.PipelineConfig
	if err := s.db.Where("is_enabled = ? AND cron_expression <> ''", true).Find(&configs).Error; err != nil {
		return 0, fmt.Errorf("加载管道配置失败: %w", err)
	}

	count := 0
	for _, config := range configs {
		cfg := config
		_, err := s.cron.AddFunc(cfg.CronExpression, func() {
			s.runPipeline(cfg)
		})
		if err != nil {
			slog.Error("注册调度任务失败", "pipeline", cfg.Name, "cron", cfg.CronExpression, "error", err)
			continue
		}
		count++
	}
	return count, nil
}

// runPipeline 执行一次调度触发的监控运行
func (s *SchedulerService) runPipeline(config models.PipelineConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), scheduleRunLimit)
	defer cancel()

	// 多实例部署时通过分布式锁保证同一管道单实例触发
	if s.lock != nil {
		lockKey := fmt.Sprintf("monitor:schedule:%s", config.Name)
		acquired, err := s.lock.TryLock(ctx, lockKey, scheduleLockTTL)
		if err != nil {
			slog.Error("获取调度锁失败", "pipeline", config.Name, "error", err)
			return
		}
		if !acquired {
			slog.Debug("调度锁被其他实例持有，跳过本轮", "pipeline", config.Name)
			return
		}
		defer func() {
			if err := s.lock.Unlock(context.Background(), lockKey); err != nil {
				slog.Warn("释放调度锁失败", "pipeline", config.Name, "error", err)
			}
		}()
	}

	dataset, err := s.loaders.Load(ctx, config.SourceType, config.SourceOptions)
	if err != nil {
		slog.Error("调度加载数据集失败", "pipeline", config.Name, "source_type", config.SourceType, "error", err)
		return
	}

	if _, err := s.monitor.Run(ctx, dataset, config.Name); err != nil {
		slog.Error("调度监控运行失败", "pipeline", config.Name, "error", err)
	}
}
