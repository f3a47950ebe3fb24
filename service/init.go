/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移、监控核心服务装配和调度器启动
 * @architecture 分层架构 - 服务层
 * @stateFlow 应用启动时执行初始化流程：数据库 -> 迁移 -> 服务装配 -> 调度器启动
 * @rules 数据库不可用时直接终止进程；洞察服务、Redis锁等可选依赖缺失时降级运行
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs service/monitor/monitor_service.go, service/database/migrate.go
 */

package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"pipeline-monitor-service/logger"
	"pipeline-monitor-service/service/approval"
	"pipeline-monitor-service/service/database"
	"pipeline-monitor-service/service/datasource"
	"pipeline-monitor-service/service/distributed_lock"
	"pipeline-monitor-service/service/insight"
	"pipeline-monitor-service/service/models"
	"pipeline-monitor-service/service/monitor"
	"pipeline-monitor-service/service/rate_limiter"
	"pipeline-monitor-service/service/scheduler"
	"pipeline-monitor-service/service/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                     *gorm.DB
	GlobalMonitorService   *monitor.Service
	GlobalApprovalService  *approval.Service
	GlobalInsightRequester *insight.Requester
	GlobalLoaderRegistry   *datasource.Registry
	GlobalSchedulerService *scheduler.SchedulerService
	GlobalRuleEngine       *monitor.CustomRuleEngine
	GlobalCryptoUtils      *utils.CryptoUtils
	GlobalRateLimiter      *rate_limiter.RedisRateLimiter
)

func init() {
	logger.InitLogger()
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var err error
	DB, err = gorm.Open(postgres.Open(databaseDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// databaseDSN 构建数据库连接字符串
func databaseDSN() string {
	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		return databaseURL
	}

	// 使用分离的环境变量构建连接字符串
	host := getEnvWithDefault("DB_HOST", "localhost")
	port := getEnvWithDefault("DB_PORT", "5432")
	user := getEnvWithDefault("DB_USER", "postgres")
	password := getEnvWithDefault("DB_PASSWORD", "postgres")
	dbname := getEnvWithDefault("DB_NAME", "postgres")
	sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
	schema := getEnvWithDefault("DB_SCHEMA", "public")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
		host, port, user, password, dbname, sslmode, schema)
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库表结构迁移完成")

	if err := database.InitializeData(DB); err != nil {
		log.Fatalf("基础数据初始化失败: %v", err)
	}
	log.Println("基础数据初始化完成")

	log.Println("所有数据库迁移任务完成")
}

// initServices 初始化服务
func initServices() {
	GlobalCryptoUtils = utils.NewCryptoUtils(os.Getenv("CONFIG_ENCRYPT_KEY"))
	GlobalApprovalService = approval.NewService(DB)
	GlobalLoaderRegistry = datasource.NewRegistry(DB)
	GlobalRuleEngine = monitor.NewCustomRuleEngine(DB)

	// 审批协调器：通道由环境变量选择，超时为0表示无限等待
	coordinator := monitor.NewApprovalCoordinator(
		buildApprovalChannel(),
		GlobalApprovalService,
		approvalDecisionTimeout(),
	)

	// 洞察请求器：密钥缺失时provider为nil，始终走降级模板
	var provider insight.Provider
	if apiKey := resolveInsightAPIKey(); apiKey != "" {
		provider = insight.NewGroqClient(apiKey)
		log.Println("洞察服务客户端已启用")
	} else {
		log.Println("未配置洞察服务密钥，洞察生成使用降级模板")
	}
	GlobalInsightRequester = insight.NewRequester(provider)

	GlobalMonitorService = monitor.NewService(coordinator, GlobalInsightRequester, monitor.NewDatabaseRecordSink(DB))
	GlobalMonitorService.SetRuleEngine(GlobalRuleEngine)

	GlobalSchedulerService = scheduler.NewSchedulerService(DB, GlobalMonitorService, GlobalLoaderRegistry, buildDistributedLock())
	GlobalRateLimiter = buildRateLimiter()

	// 启动调度器
	if err := GlobalSchedulerService.Start(); err != nil {
		log.Printf("启动调度器服务失败: %v", err)
	}
	log.Println("服务初始化完成")
}

// buildApprovalChannel 按APPROVAL_CHANNEL环境变量构建审批通道
// 可选值: console（默认）、database、mqtt；构建失败时回退到控制台通道
func buildApprovalChannel() monitor.ApprovalChannel {
	switch getEnvWithDefault("APPROVAL_CHANNEL", "console") {
	case "database":
		return approval.NewDatabaseChannel(DB, databaseDSN())
	case "mqtt":
		broker := getEnvWithDefault("MQTT_BROKER", "tcp://localhost:1883")
		clientID := getEnvWithDefault("MQTT_CLIENT_ID", "pipeline-monitor")
		channel, err := approval.NewMQTTChannel(broker, clientID, os.Getenv("MQTT_USERNAME"), os.Getenv("MQTT_PASSWORD"))
		if err != nil {
			log.Printf("MQTT审批通道初始化失败，回退到控制台通道: %v", err)
			return approval.NewConsoleChannel()
		}
		return channel
	default:
		return approval.NewConsoleChannel()
	}
}

// approvalDecisionTimeout 解析审批决定等待上限，0表示无限等待
func approvalDecisionTimeout() time.Duration {
	seconds, err := strconv.Atoi(getEnvWithDefault("APPROVAL_TIMEOUT_SECONDS", "0"))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// resolveInsightAPIKey 解析洞察服务密钥
// 优先使用GROQ_API_KEY环境变量，其次读取系统配置表（密文配置自动解密）
func resolveInsightAPIKey() string {
	if apiKey := os.Getenv("GROQ_API_KEY"); apiKey != "" {
		return apiKey
	}

	var config models.SystemConfig
	if err := DB.Where("config_key = ?", "groq_api_key").First(&config).Error; err != nil {
		return ""
	}
	if !config.IsSecret {
		return config.ConfigValue
	}

	plaintext, err := GlobalCryptoUtils.AESDecrypt(config.ConfigValue)
	if err != nil {
		log.Printf("洞察服务密钥解密失败: %v", err)
		return ""
	}
	return plaintext
}

// buildRateLimiter 构建监控触发接口的限流器，Redis不可用时返回nil（不限流）
func buildRateLimiter() *rate_limiter.RedisRateLimiter {
	if os.Getenv("REDIS_HOST") == "" {
		return nil
	}

	windowSeconds, err := strconv.Atoi(getEnvWithDefault("RATE_LIMIT_WINDOW_SECONDS", "60"))
	if err != nil || windowSeconds <= 0 {
		windowSeconds = 60
	}
	maxRequests, err := strconv.Atoi(getEnvWithDefault("RATE_LIMIT_MAX_REQUESTS", "30"))
	if err != nil || maxRequests <= 0 {
		maxRequests = 30
	}

	limiter, err := rate_limiter.NewRedisRateLimiter(time.Duration(windowSeconds)*time.Second, maxRequests)
	if err != nil {
		log.Printf("限流器初始化失败，监控触发接口不限流: %v", err)
		return nil
	}
	return limiter
}

// buildDistributedLock 构建调度防重锁，Redis不可用时返回nil（单实例模式）
func buildDistributedLock() distributed_lock.DistributedLock {
	if os.Getenv("REDIS_HOST") == "" {
		return nil
	}

	lock, err := distributed_lock.NewRedisLock()
	if err != nil {
		log.Printf("Redis分布式锁初始化失败，调度器以单实例模式运行: %v", err)
		return nil
	}

	// 启动时自检一次锁链路
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if ok, err := lock.TryLock(ctx, "monitor:startup:probe", time.Second); err == nil && ok {
		_ = lock.Unlock(ctx, "monitor:startup:probe")
	}

	return lock
}
