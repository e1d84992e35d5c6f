// Package platform 提供验证核心的配置实现
//
// ⚠️ **核心约束**：本包配置只影响资源参数（缓存、存储路径、观测），
// 任何参与共识判定的常量都在 pkg/types 与 fees 包内硬编码，不可由
// 节点配置改变。
package platform

import "time"

// PlatformOptions 验证核心配置选项
type PlatformOptions struct {
	// === 存储配置 ===
	DataDir  string `json:"data_dir"`  // Badger 状态库目录
	InMemory bool   `json:"in_memory"` // true 则状态只存内存（测试/模拟）

	// === 合约缓存配置 ===
	ContractCacheMB         int `json:"contract_cache_mb"`          // 合约缓存容量(MB)
	ContractCacheTTLSeconds int `json:"contract_cache_ttl_seconds"` // 合约缓存条目存活时间

	// === 观测配置 ===
	MetricsListenAddr string `json:"metrics_listen_addr"` // Prometheus 抓取地址；空表示不开
}

// Config 验证核心配置实现
type Config struct {
	options *PlatformOptions
}

// New 创建配置实现，nil 使用默认配置
func New(options *PlatformOptions) *Config {
	if options == nil {
		options = DefaultOptions()
	}
	return &Config{options: options}
}

// DefaultOptions 创建默认配置
func DefaultOptions() *PlatformOptions {
	return &PlatformOptions{
		DataDir:                 "data/platform",
		InMemory:                false,
		ContractCacheMB:         64,
		ContractCacheTTLSeconds: 300,
		MetricsListenAddr:       "",
	}
}

// GetOptions 获取完整配置选项
func (c *Config) GetOptions() *PlatformOptions {
	return c.options
}

// GetDataDir 状态库目录
func (c *Config) GetDataDir() string {
	return c.options.DataDir
}

// IsInMemory 是否使用内存状态库
func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}

// GetContractCacheMB 合约缓存容量(MB)
func (c *Config) GetContractCacheMB() int {
	if c.options.ContractCacheMB <= 0 {
		return 64
	}
	return c.options.ContractCacheMB
}

// GetContractCacheTTL 合约缓存条目存活时间
func (c *Config) GetContractCacheTTL() time.Duration {
	if c.options.ContractCacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.options.ContractCacheTTLSeconds) * time.Second
}

// GetMetricsListenAddr Prometheus 抓取地址
func (c *Config) GetMetricsListenAddr() string {
	return c.options.MetricsListenAddr
}
