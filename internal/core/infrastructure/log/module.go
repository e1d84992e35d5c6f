// Package log 提供日志管理功能
package log

import (
	"fmt"

	logconfig "github.com/evoplatform/v1/internal/config/log"
	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleParams 定义日志模块的依赖参数
type ModuleParams struct {
	fx.In

	Config *logconfig.Config
}

// ModuleOutput 定义日志模块的输出结构
type ModuleOutput struct {
	fx.Out

	Logger    logInterface.Logger // 日志记录器接口
	ZapLogger *zap.Logger         // zap.Logger 具体类型（供需要 zap 特性的模块使用）
}

// Module 返回日志模块
func Module() fx.Option {
	return fx.Module("log",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供日志服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	logger, err := New(params.Config)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("create logger from config: %w", err)
	}

	// 替换 init() 时的默认全局记录器
	SetLogger(logger)

	concreteLogger, ok := logger.(*Logger)
	if !ok {
		return ModuleOutput{}, fmt.Errorf("unexpected logger implementation %T", logger)
	}

	return ModuleOutput{
		Logger:    logger,
		ZapLogger: concreteLogger.zapLogger,
	}, nil
}
