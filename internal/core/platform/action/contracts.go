package action

import (
	"context"

	"github.com/allegro/bigcache/v3"
	platformconfig "github.com/evoplatform/v1/internal/config/platform"
	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"github.com/evoplatform/v1/pkg/types"
)

// ContractResolver 带缓存的数据合约解析器
//
// 🎯 **功能**：按合约 ID 解析数据合约，命中缓存时跳过存储读取
//
// 💡 **设计理念**：
// 批量转换里同一合约往往被引用多次，缓存保存规范序列化字节而非
// 指针，读取方各自反序列化得到独立副本，不会跨转换共享可变状态。
// 合约更新落库后必须调用 Invalidate，否则在 TTL 窗口内会继续解析
// 到旧版本。
type ContractResolver struct {
	repo   platform.StateRepository
	cache  *bigcache.BigCache
	logger logInterface.Logger
}

// NewContractResolver 创建合约解析器
func NewContractResolver(repo platform.StateRepository, config *platformconfig.Config, logger logInterface.Logger) (*ContractResolver, error) {
	cacheConfig := bigcache.DefaultConfig(config.GetContractCacheTTL())
	cacheConfig.HardMaxCacheSize = config.GetContractCacheMB()
	cacheConfig.Shards = 256

	cache, err := bigcache.New(context.Background(), cacheConfig)
	if err != nil {
		logger.Errorf("创建合约缓存失败: %v", err)
		return nil, err
	}

	return &ContractResolver{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}, nil
}

// Resolve 解析数据合约；不存在返回 (nil, nil)
func (r *ContractResolver) Resolve(ctx context.Context, id types.Identifier) (*types.DataContract, error) {
	key := string(id[:])
	if raw, err := r.cache.Get(key); err == nil {
		contract, derr := types.DeserializeDataContract(raw)
		if derr == nil {
			return contract, nil
		}
		// 损坏条目按未命中处理，回源重建
		r.logger.Warnf("合约缓存条目损坏，剔除: id=%s err=%v", id, derr)
		_ = r.cache.Delete(key)
	}

	contract, err := r.repo.FetchDataContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		// 不缓存否定结果：合约创建后应立即可见
		return nil, nil
	}

	if err := r.cache.Set(key, contract.Serialize()); err != nil {
		r.logger.Warnf("写入合约缓存失败: id=%s err=%v", id, err)
	}
	return contract, nil
}

// Invalidate 剔除指定合约的缓存条目
func (r *ContractResolver) Invalidate(id types.Identifier) {
	_ = r.cache.Delete(string(id[:]))
}

// Close 释放缓存资源
func (r *ContractResolver) Close() error {
	return r.cache.Close()
}
