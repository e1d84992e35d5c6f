// platformd 验证核心守护进程
//
// 组装配置、日志、签名验证、状态存储与处理器内核，启动后等待上层
// 区块驱动通过进程内接口投递状态转换；独立运行时主要用于指标观测
// 与存储维护。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/evoplatform/v1/internal/config"
	"github.com/evoplatform/v1/internal/core/infrastructure/crypto"
	"github.com/evoplatform/v1/internal/core/infrastructure/log"
	"github.com/evoplatform/v1/internal/core/infrastructure/metrics"
	"github.com/evoplatform/v1/internal/core/platform"
)

const version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "platformd",
	Short: "平台状态转换验证核心守护进程",
	Long: `platformd 承载状态转换验证核心：结构/签名/状态三级校验、
动作变换、确定性计费与状态应用。

配置文件未指定时使用内置默认配置（Badger 状态库 + 不暴露指标）。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			config.Module(configPath),
			log.Module(),
			crypto.Module(),
			metrics.Module(),
			platform.Module(),
		)
		app.Run()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("platformd v%s\n", version)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径")
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
