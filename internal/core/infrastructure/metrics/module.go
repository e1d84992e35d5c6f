package metrics

import (
	"context"

	"go.uber.org/fx"

	platformconfig "github.com/evoplatform/v1/internal/config/platform"
	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
)

// Module 返回指标模块
//
// 配置未指定抓取地址时模块是空操作。
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(func(config *platformconfig.Config, logger logInterface.Logger) *Exporter {
			return NewExporter(config.GetMetricsListenAddr(), logger)
		}),
		fx.Invoke(func(lc fx.Lifecycle, exporter *Exporter) {
			if exporter == nil {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					exporter.Start()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					return exporter.Stop(ctx)
				},
			})
		}),
	)
}
