/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新监控、审批、配置相关表结构并初始化基础数据
 * @architecture 数据访问层 - 迁移管理
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致；基础数据初始化可重复执行
 * @dependencies pipeline-monitor-service/service/models, gorm.io/gorm
 * @refs service/init.go, service/models/monitoring.go
 */

package database

import (
	"log"

	"pipeline-monitor-service/service/models"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 监控运行审计相关表
	err := db.AutoMigrate(
		&models.MonitoringHistory{},
		&models.ApprovalRequest{},
	)
	if err != nil {
		return err
	}

	// 管道与系统配置相关表
	err = db.AutoMigrate(
		&models.PipelineConfig{},
		&models.SystemConfig{},
		&models.CustomRuleScript{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}

// InitializeData 初始化基础数据
func InitializeData(db *gorm.DB) error {
	log.Println("开始初始化基础数据...")

	// 初始化默认系统配置项，已存在的键不覆盖
	defaultConfigs := []models.SystemConfig{
		{
			ConfigKey:   "approval_channel",
			ConfigValue: "console",
			Description: "默认审批通道: console/database/mqtt",
		},
		{
			ConfigKey:   "default_quality_threshold",
			ConfigValue: "70",
			Description: "触发质量改进动作的评分阈值",
		},
	}

	for _, config := range defaultConfigs {
		var count int64
		if err := db.Model(&models.SystemConfig{}).Where("config_key = ?", config.ConfigKey).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&config).Error; err != nil {
			log.Printf("初始化系统配置失败: %s, %v", config.ConfigKey, err)
			return err
		}
	}

	log.Println("基础数据初始化完成")
	return nil
}
