// Package platform 组装状态转换验证核心
//
// 🎯 **核心职责**：把流水线各阶段、状态存储与处理器内核接成一个
// fx 模块，对外只暴露 Processor 与 Drive。
package platform

import (
	"context"

	evbus "github.com/asaskevich/EventBus"
	"go.uber.org/fx"

	platformconfig "github.com/evoplatform/v1/internal/config/platform"
	"github.com/evoplatform/v1/internal/core/platform/action"
	"github.com/evoplatform/v1/internal/core/platform/drive"
	"github.com/evoplatform/v1/internal/core/platform/fees"
	"github.com/evoplatform/v1/internal/core/platform/processor"
	"github.com/evoplatform/v1/internal/core/platform/triggers"
	"github.com/evoplatform/v1/internal/core/platform/validator/signature"
	"github.com/evoplatform/v1/internal/core/platform/validator/state"
	"github.com/evoplatform/v1/internal/core/platform/validator/structure"
	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
	platformiface "github.com/evoplatform/v1/pkg/interfaces/platform"
)

// ModuleParams 定义平台模块的依赖参数
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *platformconfig.Config
	Logger    logInterface.Logger
	Verifier  platformiface.SignatureVerifier
}

// ModuleOutput 定义平台模块的输出结构
type ModuleOutput struct {
	fx.Out

	Processor platformiface.Processor
	Drive     platformiface.Drive
	Bus       evbus.Bus
}

// Module 返回平台验证核心模块
func Module() fx.Option {
	return fx.Module("platform",
		fx.Provide(ProvideServices),
		fx.Invoke(func(p platformiface.Processor, logger logInterface.Logger) {
			logger.Infof("验证核心就绪")
		}),
	)
}

// ProvideServices 组装验证核心
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	stateStore, err := drive.New(params.Config, params.Logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	resolver, err := action.NewContractResolver(stateStore, params.Config, params.Logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	bus := evbus.New()
	registry := triggers.NewDefaultRegistry(params.Logger)

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := resolver.Close(); err != nil {
				params.Logger.Warnf("关闭合约缓存失败: %v", err)
			}
			return stateStore.Close()
		},
	})

	kernel := processor.NewKernel(
		structure.NewValidator(),
		signature.NewValidator(stateStore, params.Verifier, params.Logger),
		action.NewTransformer(stateStore, resolver, params.Logger),
		state.NewValidator(stateStore, registry, params.Logger),
		fees.NewCalculator(),
		stateStore,
		resolver,
		bus,
		params.Logger,
	)

	return ModuleOutput{
		Processor: kernel,
		Drive:     stateStore,
		Bus:       bus,
	}, nil
}
