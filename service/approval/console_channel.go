/*
 * @module service/approval/console_channel
 * @description 控制台审批通道，以阻塞式命令行交互获取人工决定，非法输入循环重试
 * @architecture 适配器模式 - 同步审批通道实现
 * @stateFlow 打印审批上下文 -> 读取决定 -> 合法则返回 | 非法则重新提示
 * @rules 仅接受approve/deny/modify及其同义词；deny与modify需补充原因文本；输入流结束返回错误
 * @dependencies bufio, io, os
 * @refs service/monitor/approval_coordinator.go
 */

package approval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"pipeline-monitor-service/service/models"
)

// ConsoleChannel 控制台审批通道
type ConsoleChannel struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleChannel 创建基于标准输入输出的控制台审批通道
func NewConsoleChannel() *ConsoleChannel {
	return NewConsoleChannelWithIO(os.Stdin, os.Stdout)
}

// NewConsoleChannelWithIO 创建指定输入输出流的控制台审批通道（用于测试）
func NewConsoleChannelWithIO(in io.Reader, out io.Writer) *ConsoleChannel {
	return &ConsoleChannel{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// RequestDecision 打印审批上下文并阻塞等待合法的人工决定
func (c *ConsoleChannel) RequestDecision(ctx context.Context, req *models.ApprovalContext) (string, error) {
	fmt.Fprintln(c.out, strings.Repeat("=", 60))
	fmt.Fprintln(c.out, "HUMAN APPROVAL REQUIRED")
	fmt.Fprintln(c.out, strings.Repeat("=", 60))
	fmt.Fprintf(c.out, "Action: %s\n", req.ActionType)
	fmt.Fprintf(c.out, "Description: %s\n", req.Description)
	fmt.Fprintf(c.out, "Risk Level: %s\n", strings.ToUpper(string(req.RiskLevel)))
	fmt.Fprintln(c.out, strings.Repeat("=", 60))

	for {
		// 阻塞读取无法被ctx中断，每轮循环前检查取消状态
		if err := ctx.Err(); err != nil {
			return "", err
		}

		fmt.Fprint(c.out, "\nDecision (approve/deny/modify): ")
		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("读取审批输入失败: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "approve", "approved", "a", "yes", "y":
			fmt.Fprintln(c.out, "APPROVED - Proceeding with action")
			return "approved", nil
		case "deny", "denied", "d", "no", "n":
			reason, err := c.readLine("Denial reason: ")
			if err != nil {
				return "", err
			}
			fmt.Fprintf(c.out, "DENIED - Reason: %s\n", reason)
			return fmt.Sprintf("denied: %s", reason), nil
		case "modify", "modified", "m":
			modifications, err := c.readLine("Requested modifications: ")
			if err != nil {
				return "", err
			}
			fmt.Fprintf(c.out, "MODIFY - Changes: %s\n", modifications)
			return fmt.Sprintf("modified: %s", modifications), nil
		default:
			fmt.Fprintln(c.out, "Please enter 'approve', 'deny', or 'modify'")
		}
	}
}

// readLine 打印提示并读取一行输入
func (c *ConsoleChannel) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("读取审批输入失败: %w", err)
	}
	return strings.TrimSpace(line), nil
}
