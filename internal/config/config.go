// Package config 提供应用配置管理功能
package config

import (
	"encoding/json"
	"fmt"
	"os"

	logconfig "github.com/evoplatform/v1/internal/config/log"
	platformconfig "github.com/evoplatform/v1/internal/config/platform"
)

// Options 应用配置总集（JSON 配置文件的顶层结构）
type Options struct {
	Log      *logconfig.LogOptions           `json:"log"`
	Platform *platformconfig.PlatformOptions `json:"platform"`
}

// Provider 配置提供者
type Provider struct {
	log      *logconfig.Config
	platform *platformconfig.Config
}

// NewProvider 从配置总集创建提供者，nil 全部使用默认值
func NewProvider(options *Options) *Provider {
	if options == nil {
		options = &Options{}
	}
	return &Provider{
		log:      logconfig.New(options.Log),
		platform: platformconfig.New(options.Platform),
	}
}

// Load 从 JSON 配置文件加载配置总集
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	options := &Options{}
	if err := json.Unmarshal(data, options); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return options, nil
}

// GetLog 日志配置
func (p *Provider) GetLog() *logconfig.Config {
	return p.log
}

// GetPlatform 验证核心配置
func (p *Provider) GetPlatform() *platformconfig.Config {
	return p.platform
}
