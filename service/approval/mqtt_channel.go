/*
 * @module service/approval/mqtt_channel
 * @description MQTT审批通道，将审批请求发布到请求主题，阻塞订阅按请求ID划分的决定主题等待外部决定
 * @architecture 适配器模式 - 异步审批通道实现
 * @stateFlow 连接broker -> 订阅决定主题 -> 发布请求 -> 等待决定消息/上下文取消
 * @rules 每个审批请求独占一个决定主题；决定消息的原始文本逐字透传给协调器
 * @dependencies github.com/eclipse/paho.mqtt.golang, encoding/json
 * @refs service/monitor/approval_coordinator.go
 */

package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pipeline-monitor-service/service/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttRequestTopic        = "approvals/request"
	mqttDecisionTopicPrefix = "approvals/decision"
	mqttQoS                 = byte(1)
	mqttConnectTimeout      = 10 * time.Second
)

// MQTTChannel MQTT审批通道
type MQTTChannel struct {
	client mqtt.Client
}

// NewMQTTChannel 创建MQTT审批通道并建立连接
func NewMQTTChannel(broker, clientID, username, password string) (*MQTTChannel, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	if username != "" {
		opts.SetUsername(username)
		opts.SetPassword(password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(mqttConnectTimeout)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		slog.Warn("MQTT审批通道连接断开", "error", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT连接失败: %w", token.Error())
	}

	slog.Info("MQTT审批通道已连接", "broker", broker)
	return &MQTTChannel{client: client}, nil
}

// RequestDecision 发布审批请求并阻塞等待决定消息
func (c *MQTTChannel) RequestDecision(ctx context.Context, req *models.ApprovalContext) (string, error) {
	if req.RequestID == "" {
		return "", fmt.Errorf("审批请求未登记，无法订阅决定主题")
	}

	decisionTopic := fmt.Sprintf("%s/%s", mqttDecisionTopicPrefix, req.RequestID)
	decisionChan := make(chan string, 1)

	token := c.client.Subscribe(decisionTopic, mqttQoS, func(client mqtt.Client, msg mqtt.Message) {
		select {
		case decisionChan <- string(msg.Payload()):
		default:
			// 重复决定消息丢弃，只取第一条
		}
	})
	if token.Wait() && token.Error() != nil {
		return "", fmt.Errorf("订阅决定主题失败: %w", token.Error())
	}
	defer c.client.Unsubscribe(decisionTopic)

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("序列化审批请求失败: %w", err)
	}
	if token := c.client.Publish(mqttRequestTopic, mqttQoS, false, payload); token.Wait() && token.Error() != nil {
		return "", fmt.Errorf("发布审批请求失败: %w", token.Error())
	}

	select {
	case decision := <-decisionChan:
		return strings.TrimSpace(decision), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close 断开MQTT连接
func (c *MQTTChannel) Close() {
	c.client.Disconnect(250)
}
