package drive

import (
	"context"
	"fmt"

	platformconfig "github.com/evoplatform/v1/internal/config/platform"
	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"github.com/evoplatform/v1/pkg/types"
)

// Drive 平台状态存储句柄
type Drive struct {
	store  store
	logger logInterface.Logger
}

var _ platform.Drive = (*Drive)(nil)

// New 按配置创建状态存储；InMemory 时不落盘
func New(config *platformconfig.Config, logger logInterface.Logger) (*Drive, error) {
	if config.IsInMemory() {
		logger.Infof("平台状态库使用内存后端")
		return &Drive{store: newMemoryStore(), logger: logger}, nil
	}

	backend, err := newBadgerStore(config.GetDataDir(), logger)
	if err != nil {
		return nil, err
	}
	return &Drive{store: backend, logger: logger}, nil
}

// NewInMemory 创建内存状态存储（测试与模拟）
func NewInMemory(logger logInterface.Logger) *Drive {
	return &Drive{store: newMemoryStore(), logger: logger}
}

// Close 关闭底层存储
func (d *Drive) Close() error {
	return d.store.Close()
}

// ==================== 读路径 ====================

// FetchIdentity 读取完整身份；不存在返回 (nil, nil)
func (d *Drive) FetchIdentity(ctx context.Context, id types.Identifier) (*types.Identity, error) {
	raw, err := d.store.Get(keyIdentity(id))
	if err != nil {
		return nil, fmt.Errorf("读取身份: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	identity, err := types.DeserializeIdentity(raw)
	if err != nil {
		return nil, fmt.Errorf("身份记录损坏: id=%s: %w", id, err)
	}
	return identity, nil
}

// FetchIdentityBalance 读取身份余额；第二返回值表示身份是否存在
func (d *Drive) FetchIdentityBalance(ctx context.Context, id types.Identifier) (types.Credits, bool, error) {
	identity, err := d.FetchIdentity(ctx, id)
	if err != nil {
		return 0, false, err
	}
	if identity == nil {
		return 0, false, nil
	}
	return identity.Balance(), true, nil
}

// FetchIdentityNonce 读取身份全局 nonce（从未提交过为 0）
func (d *Drive) FetchIdentityNonce(ctx context.Context, id types.Identifier) (uint64, error) {
	return d.fetchCounter(keyNonce(id))
}

// FetchIdentityContractNonce 读取（身份，合约）nonce
func (d *Drive) FetchIdentityContractNonce(ctx context.Context, id, contractID types.Identifier) (uint64, error) {
	return d.fetchCounter(keyContractNonce(id, contractID))
}

func (d *Drive) fetchCounter(key []byte) (uint64, error) {
	raw, err := d.store.Get(key)
	if err != nil {
		return 0, fmt.Errorf("读取计数器: %w", err)
	}
	if raw == nil {
		return 0, nil
	}
	return decodeUint(raw)
}

// FetchDataContract 读取数据合约；不存在返回 (nil, nil)
func (d *Drive) FetchDataContract(ctx context.Context, id types.Identifier) (*types.DataContract, error) {
	raw, err := d.store.Get(keyContract(id))
	if err != nil {
		return nil, fmt.Errorf("读取合约: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	contract, err := types.DeserializeDataContract(raw)
	if err != nil {
		return nil, fmt.Errorf("合约记录损坏: id=%s: %w", id, err)
	}
	return contract, nil
}

// FetchDocument 读取文档；不存在返回 (nil, nil)
func (d *Drive) FetchDocument(ctx context.Context, contractID types.Identifier, documentType string, documentID types.Identifier) (*types.Document, error) {
	raw, err := d.store.Get(keyDocument(contractID, documentType, documentID))
	if err != nil {
		return nil, fmt.Errorf("读取文档: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	document, err := types.DeserializeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("文档记录损坏: id=%s: %w", documentID, err)
	}
	return document, nil
}

// FetchDocumentByUniqueIndex 按唯一索引取值查重；无命中返回 (nil, nil)
func (d *Drive) FetchDocumentByUniqueIndex(ctx context.Context, contractID types.Identifier, documentType, indexName string, values []types.Value) (*types.Document, error) {
	raw, err := d.store.Get(keyUniqueIndex(contractID, documentType, indexName, values))
	if err != nil {
		return nil, fmt.Errorf("读取唯一索引: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	documentID, err := types.NewIdentifierFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("唯一索引记录损坏: %w", err)
	}
	return d.FetchDocument(ctx, contractID, documentType, documentID)
}

// IsAssetLockOutPointConsumed 资产锁定输出点是否已被消费
func (d *Drive) IsAssetLockOutPointConsumed(ctx context.Context, outPoint []byte) (bool, error) {
	raw, err := d.store.Get(keyAssetLock(outPoint))
	if err != nil {
		return false, fmt.Errorf("读取资产锁定记录: %w", err)
	}
	return raw != nil, nil
}

// FetchAssetLockConsumer 返回消费该输出点的转换标识符；未消费返回 (nil, nil)
func (d *Drive) FetchAssetLockConsumer(ctx context.Context, outPoint []byte) (*types.Identifier, error) {
	raw, err := d.store.Get(keyAssetLock(outPoint))
	if err != nil {
		return nil, fmt.Errorf("读取资产锁定记录: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var id types.Identifier
	copy(id[:], raw)
	return &id, nil
}

// FetchMasternode 读取主节点条目；不存在返回 (nil, nil)
func (d *Drive) FetchMasternode(ctx context.Context, proTxHash types.Identifier) (*types.Masternode, error) {
	raw, err := d.store.Get(keyMasternode(proTxHash))
	if err != nil {
		return nil, fmt.Errorf("读取主节点条目: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	votingID, err := types.NewIdentifierFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("主节点条目损坏: proTxHash=%s: %w", proTxHash, err)
	}
	return &types.Masternode{ProTxHash: proTxHash, VotingIdentityID: votingID}, nil
}

// SeedMasternode 写入主节点条目
//
// 主节点列表由基础链馈送，不经状态转换流水线；节点装载与测试场景
// 直接调用本方法灌入。
func (d *Drive) SeedMasternode(ctx context.Context, masternode *types.Masternode) error {
	return d.store.Set(keyMasternode(masternode.ProTxHash), masternode.VotingIdentityID[:])
}

// FetchTokenStatus 读取代币累计状态；代币从未初始化返回 (nil, nil)
func (d *Drive) FetchTokenStatus(ctx context.Context, tokenID types.Identifier) (*types.TokenStatus, error) {
	raw, err := d.store.Get(keyTokenStatus(tokenID))
	if err != nil {
		return nil, fmt.Errorf("读取代币状态: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	status, err := types.DeserializeTokenStatus(raw)
	if err != nil {
		return nil, fmt.Errorf("代币状态损坏: token=%s: %w", tokenID, err)
	}
	return status, nil
}

// FetchIdentityTokenBalance 读取身份的代币账户余额（无账户为 0）
func (d *Drive) FetchIdentityTokenBalance(ctx context.Context, tokenID, identityID types.Identifier) (types.TokenAmount, error) {
	raw, err := d.store.Get(keyTokenBalance(tokenID, identityID))
	if err != nil {
		return 0, fmt.Errorf("读取代币余额: %w", err)
	}
	if raw == nil {
		return 0, nil
	}
	v, err := decodeUint(raw)
	if err != nil {
		return 0, fmt.Errorf("代币余额记录损坏: %w", err)
	}
	return types.TokenAmount(v), nil
}

// IsIdentityTokenFrozen 身份的代币账户是否被冻结
func (d *Drive) IsIdentityTokenFrozen(ctx context.Context, tokenID, identityID types.Identifier) (bool, error) {
	raw, err := d.store.Get(keyTokenFrozen(tokenID, identityID))
	if err != nil {
		return false, fmt.Errorf("读取冻结标志: %w", err)
	}
	return raw != nil, nil
}

// FetchGroupAction 读取群组动作；不存在返回 (nil, nil)
func (d *Drive) FetchGroupAction(ctx context.Context, actionID types.Identifier) (*types.GroupAction, error) {
	raw, err := d.store.Get(keyGroupAction(actionID))
	if err != nil {
		return nil, fmt.Errorf("读取群组动作: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	action, err := types.DeserializeGroupAction(raw)
	if err != nil {
		return nil, fmt.Errorf("群组动作损坏: id=%s: %w", actionID, err)
	}
	return action, nil
}

// FetchVotePollState 读取投票议题状态；不存在返回 (nil, nil)
func (d *Drive) FetchVotePollState(ctx context.Context, pollID types.Identifier) (*types.VotePollState, error) {
	raw, err := d.store.Get(keyVotePoll(pollID))
	if err != nil {
		return nil, fmt.Errorf("读取议题状态: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	state, err := types.DeserializeVotePollState(raw)
	if err != nil {
		return nil, fmt.Errorf("议题状态损坏: id=%s: %w", pollID, err)
	}
	return state, nil
}
