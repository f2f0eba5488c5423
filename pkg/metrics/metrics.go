// Package metrics 提供 Prometheus helper，包含 HTTP 与业务指标模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/StefanoVidesott/WannaWork-App/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 业务指标：投递的候选申请数（含重新激活）
	ApplicationsSubmitted prometheus.Counter
	// 重新激活的申请数
	ApplicationsReactivated prometheus.Counter
	// 撤回的申请数
	ApplicationsWithdrawn prometheus.Counter
	// 级联操作执行次数，按类型区分
	CascadesTotal *prometheus.CounterVec
	// 级联影响的申请数
	CascadeAffected prometheus.Counter
	// 通知投递失败数
	NotificationFailures prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wannawork",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wannawork",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ApplicationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wannawork",
			Subsystem: serviceName,
			Name:      "applications_submitted_total",
			Help:      "Total applications submitted",
		}),
		ApplicationsReactivated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wannawork",
			Subsystem: serviceName,
			Name:      "applications_reactivated_total",
			Help:      "Total applications reactivated after withdrawal",
		}),
		ApplicationsWithdrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wannawork",
			Subsystem: serviceName,
			Name:      "applications_withdrawn_total",
			Help:      "Total applications withdrawn",
		}),
		CascadesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wannawork",
			Subsystem: serviceName,
			Name:      "cascades_total",
			Help:      "Total cascade operations executed",
		}, []string{"kind"}),
		CascadeAffected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wannawork",
			Subsystem: serviceName,
			Name:      "cascade_affected_applications_total",
			Help:      "Total applications touched by cascades",
		}),
		NotificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wannawork",
			Subsystem: serviceName,
			Name:      "notification_failures_total",
			Help:      "Total notification dispatch failures",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ApplicationsSubmitted,
		m.ApplicationsReactivated,
		m.ApplicationsWithdrawn,
		m.CascadesTotal,
		m.CascadeAffected,
		m.NotificationFailures,
	}

	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return nil
}

// StartHTTPServer 启动独立的指标 HTTP 服务
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error(context.Background(), "Metrics HTTP server error", "error", err)
		}
	}()

	logger.Info(context.Background(), "Metrics HTTP server started", "addr", addr, "path", path)
	return nil
}
