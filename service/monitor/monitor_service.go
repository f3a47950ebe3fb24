/*
 * @module service/monitor/monitor_service
 * @description 监控运行编排器，按固定阶段顺序串联指标分析、异常检测、风险评分、洞察生成、动作规划与审批，装配审计记录并交给持久化收口
 * @architecture 分层架构 - 监控核心层，编排器模式
 * @stateFlow 指标 -> 异常 -> 风险 -> 洞察 -> 动作 -> 审批 -> 记录装配 -> 持久化
 * @rules 各阶段严格顺序执行；持久化失败只记录日志不中断，内存记录仍返回给调用方；洞察失败降级为模板文本
 * @dependencies log/slog, github.com/prometheus/client_golang
 * @refs service/insight, service/approval, service/database
 */

package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pipeline-monitor-service/service/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_monitor_runs_total",
		Help: "监控运行总次数，按风险等级分类",
	}, []string{"risk_level"})

	anomaliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_monitor_anomalies_total",
		Help: "检测到的异常总数，按严重级别分类",
	}, []string{"severity"})

	qualityScoreGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pipeline_monitor_quality_score",
		Help: "最近一次监控运行的数据质量评分",
	}, []string{"pipeline"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipeline_monitor_run_duration_seconds",
		Help:    "监控运行耗时分布",
		Buckets: prometheus.DefBuckets,
	})
)

// InsightGenerator 洞察生成抽象
// 实现方负责超时控制与本地降级，调用永不失败
type InsightGenerator interface {
	Generate(ctx context.Context, m *models.PipelineMetrics, anomalies []models.Anomaly, risk models.RiskLevel) string
}

// RecordSink 审计记录收口抽象
// 由实现方决定缓存或持久化策略，核心层每次运行只产出一条记录
type RecordSink interface {
	Save(ctx context.Context, record *models.MonitoringRecord) error
}

// Service 监控运行编排服务
type Service struct {
	analyzer    *MetricsAnalyzer
	detector    *AnomalyDetector
	scorer      *RiskScorer
	planner     *ActionPlanner
	coordinator *ApprovalCoordinator
	insight     InsightGenerator
	sink        RecordSink
}

// NewService 创建监控编排服务实例
func NewService(coordinator *ApprovalCoordinator, insight InsightGenerator, sink RecordSink) *Service {
	return &Service{
		analyzer:    NewMetricsAnalyzer(),
		detector:    NewAnomalyDetector(),
		scorer:      NewRiskScorer(),
		planner:     NewActionPlanner(),
		coordinator: coordinator,
		insight:     insight,
		sink:        sink,
	}
}

// SetRuleEngine 挂载自定义规则引擎
func (s *Service) SetRuleEngine(engine *CustomRuleEngine) {
	s.detector.SetRuleEngine(engine)
}

// Run 对数据集快照执行一次完整监控运行，返回装配完成的审计记录
func (s *Service) Run(ctx context.Context, ds *models.Dataset, pipelineName string) (*models.MonitoringRecord, error) {
	if pipelineName == "" {
		return nil, errors.New("管道名称不能为空")
	}

	startTime := time.Now()
	slog.Info("开始管道监控运行", "pipeline", pipelineName, "records", ds.RecordCount())

	// 阶段1: 指标分析
	metrics := s.analyzer.Analyze(ds, pipelineName)
	slog.Debug("指标分析完成", "pipeline", pipelineName, "quality_score", metrics.DataQualityScore)

	// 阶段2: 异常检测
	anomalies := s.detector.Detect(metrics)
	slog.Debug("异常检测完成", "pipeline", pipelineName, "anomalies", len(anomalies))

	// 阶段3: 风险评分
	risk := s.scorer.Score(anomalies, metrics)
	slog.Debug("风险评分完成", "pipeline", pipelineName, "risk_level", risk)

	// 阶段4: 洞察生成，失败时由实现方降级为模板文本
	insights := s.insight.Generate(ctx, metrics, anomalies, risk)

	// 阶段5: 动作规划
	actions := s.planner.Plan(risk, anomalies, metrics)
	slog.Debug("动作规划完成", "pipeline", pipelineName, "actions", len(actions))

	// 阶段6: 审批协调
	decisions := s.coordinator.Process(ctx, actions)

	// 阶段7: 记录装配与持久化
	record := &models.MonitoringRecord{
		Timestamp:       time.Now(),
		PipelineName:    pipelineName,
		Metrics:         metrics,
		Anomalies:       anomalies,
		RiskLevel:       risk,
		AIInsights:      insights,
		ApprovalResults: decisions,
		ExecutionPhase:  "completed",
	}

	if s.sink != nil {
		if err := s.sink.Save(ctx, record); err != nil {
			// 持久化失败不影响本次运行结果的返回
			slog.Error("监控记录持久化失败", "pipeline", pipelineName, "error", err)
		}
	}

	runsTotal.WithLabelValues(string(risk)).Inc()
	for _, anomaly := range anomalies {
		anomaliesTotal.WithLabelValues(string(anomaly.Severity)).Inc()
	}
	qualityScoreGauge.WithLabelValues(pipelineName).Set(metrics.DataQualityScore)
	runDuration.Observe(time.Since(startTime).Seconds())

	slog.Info("管道监控运行完成",
		"pipeline", pipelineName,
		"risk_level", risk,
		"anomalies", len(anomalies),
		"actions", len(actions),
		"duration", time.Since(startTime).String())

	return record, nil
}
