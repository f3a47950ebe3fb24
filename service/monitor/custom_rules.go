/*
 * @module service/monitor/custom_rules
 * @description 自定义规则引擎，以Yaegi解释执行数据库中登记的Go脚本规则，作为内置检测规则组的扩展点
 * @architecture 分层架构 - 监控核心层，解释器模式
 * @stateFlow 脚本加载 -> 编译缓存 -> 指标注入 -> 规则执行 -> 异常追加
 * @rules 脚本只能追加异常，不影响内置规则组；脚本编译或执行失败记录日志后跳过，不中断检测
 * @dependencies github.com/traefik/yaegi, gorm.io/gorm, crypto/sha1
 * @refs service/monitor/anomaly_detector.go, service/models/monitoring.go
 */

package monitor

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"pipeline-monitor-service/service/models"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gorm.io/gorm"
)

// checkFunc 脚本规则入口函数签名
// 入参为指标快照的通用map表示，返回 [{severity, message}] 形式的发现列表
type checkFunc func(metrics map[string]interface{}) []map[string]string

// compiledRule 编译后的脚本规则
type compiledRule struct {
	fn   checkFunc
	hash string
}

// CustomRuleEngine 自定义规则引擎
type CustomRuleEngine struct {
	db    *gorm.DB
	mu    sync.RWMutex
	cache map[string]*compiledRule
}

// NewCustomRuleEngine 创建自定义规则引擎实例
func NewCustomRuleEngine(db *gorm.DB) *CustomRuleEngine {
	return &CustomRuleEngine{
		db:    db,
		cache: make(map[string]*compiledRule),
	}
}

// Evaluate 执行全部启用的脚本规则，按登记顺序返回追加的异常
func (e *CustomRuleEngine) Evaluate(m *models.PipelineMetrics) []models.Anomaly {
	var scripts []models.CustomRuleScript
	if err := e.db.Where("is_enabled = ?", true).Order("created_at ASC").Find(&scripts).Error; err != nil {
		slog.Error("加载自定义规则脚本失败", "error", err)
		return nil
	}
	if len(scripts) == 0 {
		return nil
	}

	metricsMap, err := metricsToMap(m)
	if err != nil {
		slog.Error("指标快照转换失败", "error", err)
		return nil
	}

	anomalies := make([]models.Anomaly, 0)
	for _, script := range scripts {
		fn, err := e.compiled(script.Script)
		if err != nil {
			slog.Error("自定义规则脚本编译失败", "rule", script.Name, "error", err)
			continue
		}

		findings, err := runRule(fn, metricsMap)
		if err != nil {
			slog.Error("自定义规则脚本执行失败", "rule", script.Name, "error", err)
			continue
		}

		for _, finding := range findings {
			anomalies = append(anomalies, models.Anomaly{
				Severity: parseSeverity(finding["severity"]),
				Message:  finding["message"],
			})
		}
	}
	return anomalies
}

// Validate 校验脚本语法，供管理接口在入库前调用
func (e *CustomRuleEngine) Validate(script string) error {
	_, err := compileRule(script)
	return err
}

// compiled 取缓存的编译结果，未命中则编译后缓存
func (e *CustomRuleEngine) compiled(script string) (checkFunc, error) {
	hash := fmt.Sprintf("%x", sha1.Sum([]byte(script)))

	e.mu.RLock()
	rule, ok := e.cache[hash]
	e.mu.RUnlock()
	if ok {
		return rule.fn, nil
	}

	fn, err := compileRule(script)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[hash] = &compiledRule{fn: fn, hash: hash}
	e.mu.Unlock()
	return fn, nil
}

// compileRule 编译脚本为可执行函数
// 脚本内容作为 Check 函数体注入，必须返回 []map[string]string
func compileRule(script string) (checkFunc, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("加载标准库符号失败: %w", err)
	}

	wrapped := fmt.Sprintf(`
package main

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// 锚定导入，脚本未引用时不报未使用错误
var (
	_ = fmt.Sprint
	_ = math.Abs
	_ = sort.Strings
	_ = strconv.Itoa
	_ = strings.TrimSpace
)

// 必须提供一个 Check 函数作为入口
func Check(metrics map[string]interface{}) []map[string]string {
%s
}
`, script)

	if _, err := i.Eval(wrapped); err != nil {
		return nil, fmt.Errorf("脚本编译失败: %w", err)
	}

	v, err := i.Eval("Check")
	if err != nil {
		return nil, fmt.Errorf("获取Check函数失败: %w", err)
	}

	fn, ok := v.Interface().(func(map[string]interface{}) []map[string]string)
	if !ok {
		return nil, fmt.Errorf("Check函数签名不符合要求")
	}
	return fn, nil
}

// runRule 执行单条规则并拦截脚本内的panic
func runRule(fn checkFunc, metrics map[string]interface{}) (findings []map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("脚本执行panic: %v", r)
		}
	}()
	return fn(metrics), nil
}

// metricsToMap 将指标快照转换为脚本可用的通用map
func metricsToMap(m *models.PipelineMetrics) (map[string]interface{}, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// parseSeverity 解析脚本返回的严重级别，无法识别的按INFO处理
func parseSeverity(s string) models.Severity {
	switch models.Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case models.SeverityCritical:
		return models.SeverityCritical
	case models.SeverityHigh:
		return models.SeverityHigh
	case models.SeverityMedium:
		return models.SeverityMedium
	default:
		return models.SeverityInfo
	}
}
