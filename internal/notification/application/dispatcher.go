// Package application 包含通知分发器
package application

import (
	"context"
	"sync"
	"time"

	"github.com/StefanoVidesott/WannaWork-App/internal/notification/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/logger"
	"github.com/StefanoVidesott/WannaWork-App/pkg/metrics"
)

// defaultDispatchTimeout 单次投递的最长耗时
const defaultDispatchTimeout = 5 * time.Second

// Dispatcher 通知分发器。
// 严格在业务事务提交之后调用：投递是 at-most-one-attempt、尽力而为，
// 失败只记录日志与指标，绝不回滚或重试已提交的事务，也不出现在调用方错误里。
type Dispatcher struct {
	port    domain.Port
	metrics *metrics.Metrics
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher 创建通知分发器
func NewDispatcher(port domain.Port, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		port:    port,
		metrics: m,
		timeout: defaultDispatchTimeout,
	}
}

// Dispatch 异步投递单条事件，不阻塞调用方的响应路径
func (d *Dispatcher) Dispatch(event domain.Event) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		// 与请求生命周期解耦：请求返回后投递仍可完成
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.port.Dispatch(ctx, event); err != nil {
			logger.Warn(ctx, "Notification dispatch failed",
				"type", string(event.Type),
				"recipient", event.Recipient,
				"error", err,
			)
			if d.metrics != nil {
				d.metrics.NotificationFailures.Inc()
			}
		}
	}()
}

// DispatchAll 异步投递一批事件
func (d *Dispatcher) DispatchAll(events []domain.Event) {
	for _, event := range events {
		d.Dispatch(event)
	}
}

// Wait 等待所有在途投递结束（优雅关停与测试用）
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
