package config

import (
	logconfig "github.com/evoplatform/v1/internal/config/log"
	platformconfig "github.com/evoplatform/v1/internal/config/platform"
	"go.uber.org/fx"
)

// Module 返回配置模块
//
// ConfigPath 为空时使用内置默认配置。
func Module(configPath string) fx.Option {
	return fx.Module("config",
		fx.Provide(
			func() (*Provider, error) {
				if configPath == "" {
					return NewProvider(nil), nil
				}
				options, err := Load(configPath)
				if err != nil {
					return nil, err
				}
				return NewProvider(options), nil
			},
			// 提供具体的配置类型用于依赖注入
			func(provider *Provider) *logconfig.Config {
				return provider.GetLog()
			},
			func(provider *Provider) *platformconfig.Config {
				return provider.GetPlatform()
			},
		),
	)
}
