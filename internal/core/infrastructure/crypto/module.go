package crypto

import (
	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"go.uber.org/fx"
)

// Module 返回签名验证模块
func Module() fx.Option {
	return fx.Module("crypto",
		fx.Provide(
			func() platform.SignatureVerifier {
				return NewVerifier()
			},
		),
	)
}
