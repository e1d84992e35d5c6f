// Package platform 提供状态转换验证核心的接口定义
//
// 🎯 **核心职责**：
// - 定义验证流水线各阶段（结构/签名/变换/状态/费用）的契约
// - 定义状态仓库的读取与应用契约，隔离验证逻辑与存储实现
// - 定义签名验证能力接口，隔离验证逻辑与密码学实现
//
// 🏗️ **设计原则**：
// - 读写分离：验证阶段只读，应用阶段独占写入
// - 协议版本显式传参，接口层不出现全局版本状态
// - 缺失返回 (nil, nil)，错误仅表示存储故障（协议级错误，中止区块）
package platform

import (
	"context"

	"github.com/evoplatform/v1/pkg/types"
)

// StateRepository 平台状态仓库（读路径）
//
// 💡 **设计理念**：
// 验证阶段对状态的全部依赖收敛到本接口，内存实现用于测试与模拟，
// Badger 实现用于持久节点。所有方法的 error 为存储层故障，属于
// 协议级错误；"未找到"一律以零值表达，不是错误。
type StateRepository interface {
	// FetchIdentity 读取完整身份；不存在返回 (nil, nil)
	FetchIdentity(ctx context.Context, id types.Identifier) (*types.Identity, error)

	// FetchIdentityBalance 读取身份余额；第二返回值表示身份是否存在
	FetchIdentityBalance(ctx context.Context, id types.Identifier) (types.Credits, bool, error)

	// FetchIdentityNonce 读取身份全局 nonce（从未提交过为 0）
	FetchIdentityNonce(ctx context.Context, id types.Identifier) (uint64, error)

	// FetchIdentityContractNonce 读取（身份，合约）nonce
	FetchIdentityContractNonce(ctx context.Context, id, contractID types.Identifier) (uint64, error)

	// FetchDataContract 读取数据合约；不存在返回 (nil, nil)
	FetchDataContract(ctx context.Context, id types.Identifier) (*types.DataContract, error)

	// FetchDocument 读取文档；不存在返回 (nil, nil)
	FetchDocument(ctx context.Context, contractID types.Identifier, documentType string, documentID types.Identifier) (*types.Document, error)

	// FetchDocumentByUniqueIndex 按唯一索引取值查重；无命中返回 (nil, nil)
	FetchDocumentByUniqueIndex(ctx context.Context, contractID types.Identifier, documentType, indexName string, values []types.Value) (*types.Document, error)

	// IsAssetLockOutPointConsumed 资产锁定输出点是否已被消费
	IsAssetLockOutPointConsumed(ctx context.Context, outPoint []byte) (bool, error)

	// FetchAssetLockConsumer 返回消费该输出点的转换标识符；未消费返回 (nil, nil)
	FetchAssetLockConsumer(ctx context.Context, outPoint []byte) (*types.Identifier, error)

	// FetchMasternode 读取主节点条目；不存在返回 (nil, nil)
	FetchMasternode(ctx context.Context, proTxHash types.Identifier) (*types.Masternode, error)

	// FetchTokenStatus 读取代币累计状态；代币从未初始化返回 (nil, nil)
	FetchTokenStatus(ctx context.Context, tokenID types.Identifier) (*types.TokenStatus, error)

	// FetchIdentityTokenBalance 读取身份的代币账户余额（无账户为 0）
	FetchIdentityTokenBalance(ctx context.Context, tokenID, identityID types.Identifier) (types.TokenAmount, error)

	// IsIdentityTokenFrozen 身份的代币账户是否被冻结
	IsIdentityTokenFrozen(ctx context.Context, tokenID, identityID types.Identifier) (bool, error)

	// FetchGroupAction 读取群组动作；不存在返回 (nil, nil)
	FetchGroupAction(ctx context.Context, actionID types.Identifier) (*types.GroupAction, error)

	// FetchVotePollState 读取投票议题状态；不存在返回 (nil, nil)
	FetchVotePollState(ctx context.Context, pollID types.Identifier) (*types.VotePollState, error)
}

// StateApplier 平台状态应用器（写路径）
//
// ⚠️ **核心约束**：
// - 输入动作必须已通过状态校验；应用阶段不再做共识判定
// - ApplyAction 与费用扣除在同一逻辑事务内生效
// - 同一区块内按接收顺序逐个应用，不并发
type StateApplier interface {
	// ApplyAction 将动作写入状态
	ApplyAction(ctx context.Context, action types.Action, block *types.BlockInfo) error

	// DeductFee 从身份余额扣除净费用并登记退款
	DeductFee(ctx context.Context, identityID types.Identifier, fee *types.FeeResult) error

	// MarkAssetLockConsumed 登记资产锁定输出点已消费
	MarkAssetLockConsumed(ctx context.Context, outPoint []byte, transitionID types.Identifier) error
}

// Drive 读写合一的状态存储句柄
//
// 📞 **调用方**：处理器内核、区块边界任务（议题裁决）
type Drive interface {
	StateRepository
	StateApplier

	// CloseExpiredVotePolls 区块边界任务：裁决截止的投票议题，
	// 返回本区块裁决的议题 ID
	CloseExpiredVotePolls(ctx context.Context, block *types.BlockInfo) ([]types.Identifier, error)
}
