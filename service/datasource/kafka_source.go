/*
 * @module service/datasource/kafka_source
 * @description Kafka主题数据集加载器，在限定窗口内排空JSON消息构建表格快照，列为消息字段的并集
 * @architecture 适配器模式 - 数据源接入层
 * @stateFlow 消费者创建 -> 限时拉取 -> JSON解析 -> 列对齐 -> 数据集快照
 * @rules 列顺序按字段首次出现顺序；消息缺少的字段按缺失值对齐；达到消息上限或窗口超时即停止
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/datasource/loader.go
 */

package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"pipeline-monitor-service/service/models"

	"github.com/segmentio/kafka-go"
	"github.com/spf13/cast"
)

// Kafka快照拉取默认参数
const (
	defaultKafkaMaxMessages = 1000
	defaultKafkaDrainWindow = 5 * time.Second
)

// KafkaSource Kafka主题数据集加载器
type KafkaSource struct{}

// NewKafkaSource 创建Kafka加载器实例
func NewKafkaSource() *KafkaSource {
	return &KafkaSource{}
}

// Type 返回数据源类型
func (s *KafkaSource) Type() string {
	return "kafka"
}

// Load 从Kafka主题拉取一份数据集快照
// options: brokers（必填）、topic（必填）、group_id、max_messages、drain_seconds
func (s *KafkaSource) Load(ctx context.Context, options models.JSONB) (*models.Dataset, error) {
	brokers := cast.ToStringSlice(options["brokers"])
	topic := cast.ToString(options["topic"])
	if len(brokers) == 0 || topic == "" {
		return nil, fmt.Errorf("Kafka数据源缺少brokers或topic配置")
	}

	maxMessages := cast.ToInt(options["max_messages"])
	if maxMessages <= 0 {
		maxMessages = defaultKafkaMaxMessages
	}
	drainWindow := defaultKafkaDrainWindow
	if seconds := cast.ToInt(options["drain_seconds"]); seconds > 0 {
		drainWindow = time.Duration(seconds) * time.Second
	}

	groupID := cast.ToString(options["group_id"])
	if groupID == "" {
		groupID = "pipeline-monitor-snapshot"
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		StartOffset: kafka.FirstOffset,
	})
	defer reader.Close()

	drainCtx, cancel := context.WithTimeout(ctx, drainWindow)
	defer cancel()

	columns := make([]string, 0)
	columnIndex := make(map[string]int)
	rawRows := make([]map[string]interface{}, 0)

	for len(rawRows) < maxMessages {
		msg, err := reader.ReadMessage(drainCtx)
		if err != nil {
			// 窗口耗尽属于正常结束条件
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			return nil, fmt.Errorf("读取Kafka消息失败: %w", err)
		}

		var record map[string]interface{}
		if err := json.Unmarshal(msg.Value, &record); err != nil {
			slog.Warn("跳过非JSON对象消息", "topic", topic, "offset", msg.Offset)
			continue
		}

		// 列按字段首次出现顺序登记；同一消息内字段顺序不稳定，按键名排序补登
		for _, key := range sortedKeys(record) {
			if _, ok := columnIndex[key]; !ok {
				columnIndex[key] = len(columns)
				columns = append(columns, key)
			}
		}
		rawRows = append(rawRows, record)
	}

	rows := make([][]interface{}, len(rawRows))
	for i, record := range rawRows {
		row := make([]interface{}, len(columns))
		for key, value := range record {
			row[columnIndex[key]] = value
		}
		rows[i] = row
	}

	return &models.Dataset{Columns: columns, Rows: rows}, nil
}

// sortedKeys 返回map的有序键列表
func sortedKeys(record map[string]interface{}) []string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
