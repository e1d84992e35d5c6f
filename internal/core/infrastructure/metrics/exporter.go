// Package metrics 提供 Prometheus 指标暴露端点
//
// 🎯 **核心职责**：在配置的地址上暴露 /metrics，供外部抓取默认
// Registry 里登记的全部指标（处理器流水线指标在各自包内登记）。
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
)

// Exporter 指标暴露服务
type Exporter struct {
	server *http.Server
	logger logInterface.Logger
}

// NewExporter 创建指标暴露服务；addr 为空返回 nil（不暴露）
func NewExporter(addr string, logger logInterface.Logger) *Exporter {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Exporter{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start 启动监听（非阻塞）
func (e *Exporter) Start() {
	go func() {
		e.logger.Infof("指标端点就绪: %s/metrics", e.server.Addr)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Errorf("指标端点退出: %v", err)
		}
	}()
}

// Stop 优雅关闭
func (e *Exporter) Stop(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
