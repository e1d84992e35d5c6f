// Package state 提供动作相对当前链上状态的校验
//
// 🎯 **核心职责**：
// - 余额前置闸：先确认身份付得起基础处理费，再做昂贵的状态取数
// - 按动作类别检查存在性、nonce、修订号、唯一索引、授权与供应边界
// - 文档子动作通过基础校验后执行数据触发器
//
// 💡 **设计理念**：
// 每个类别独立走「前置余额 → 解析引用 → 检查不变量」流程，首错即
// 返回：后续检查建立在前面解析结果之上，继续做没有意义。所有判定
// 只读仓储，绝不落写。
//
// 📞 **调用方**：处理器内核（第四阶段）
package state

import (
	"context"

	"github.com/evoplatform/v1/internal/core/platform/fees"
	"github.com/evoplatform/v1/internal/core/platform/triggers"
	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"github.com/evoplatform/v1/pkg/types"
)

// Validator 状态校验器
type Validator struct {
	repo     platform.StateRepository
	triggers *triggers.Registry
	logger   logInterface.Logger
}

var _ platform.StateValidator = (*Validator)(nil)

// NewValidator 创建状态校验器
func NewValidator(repo platform.StateRepository, registry *triggers.Registry, logger logInterface.Logger) *Validator {
	return &Validator{
		repo:     repo,
		triggers: registry,
		logger:   logger,
	}
}

// ValidateState 校验动作能否应用到当前状态
func (v *Validator) ValidateState(ctx context.Context, action types.Action, st *types.StateTransition, block *types.BlockInfo, pv *types.PlatformVersion) (*types.SimpleValidationResult, error) {
	switch pv.Methods.ValidateState {
	case 0:
		return v.validateV0(ctx, action, st, block, pv)
	default:
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultUnknownVersionDispatch,
			Op:     "state.ValidateState",
		}
	}
}

func (v *Validator) validateV0(ctx context.Context, action types.Action, st *types.StateTransition, block *types.BlockInfo, pv *types.PlatformVersion) (*types.SimpleValidationResult, error) {
	if result, err := v.precheckBalance(ctx, st, pv); result != nil || err != nil {
		return result, err
	}

	switch a := action.(type) {
	case *types.IdentityCreateAction:
		return v.validateIdentityCreate(ctx, a)
	case *types.IdentityTopUpAction:
		return v.validateIdentityTopUp(ctx, a)
	case *types.IdentityUpdateAction:
		return v.validateIdentityUpdate(ctx, a)
	case *types.IdentityCreditTransferAction:
		return v.validateCreditTransfer(ctx, a)
	case *types.IdentityCreditWithdrawalAction:
		return v.validateCreditWithdrawal(ctx, a)
	case *types.DataContractCreateAction:
		return v.validateContractCreate(ctx, a)
	case *types.DataContractUpdateAction:
		return v.validateContractUpdate(ctx, a)
	case *types.BatchAction:
		return v.validateBatch(ctx, a, block)
	case *types.MasternodeVoteAction:
		return v.validateMasternodeVote(ctx, a, block)
	default:
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultUnknownVersionDispatch,
			Op:     "state.validateV0",
		}
	}
}

// precheckBalance 余额前置闸
//
// 用类别基础处理费做保守下限，付不起的转换在任何昂贵取数之前
// 出局。资产锁定类转换由锁定输出付费，不走这一闸。
func (v *Validator) precheckBalance(ctx context.Context, st *types.StateTransition, pv *types.PlatformVersion) (*types.SimpleValidationResult, error) {
	if st.IsAssetLockFunded() {
		return nil, nil
	}

	table, ok := fees.CostTableForVersion(pv.FeeVersion)
	if !ok {
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultUnknownVersionDispatch,
			Op:     "state.precheckBalance",
		}
	}
	required := table.BaseProcessing[st.Kind]

	owner := st.OwnerID()
	balance, exists, err := v.repo.FetchIdentityBalance(ctx, owner)
	if err != nil {
		return nil, storageFault("state.precheckBalance", err)
	}
	if !exists {
		return reject(&types.IdentityNotFoundError{IdentityID: owner}), nil
	}
	if balance < required {
		return reject(&types.IdentityInsufficientBalanceError{
			IdentityID: owner,
			Balance:    balance,
			Required:   required,
		}), nil
	}
	return nil, nil
}

func reject(e types.ConsensusError) *types.SimpleValidationResult {
	result := types.NewSimpleValidationResult()
	result.AddError(e)
	return result
}

func accept() *types.SimpleValidationResult {
	return types.NewSimpleValidationResult()
}

// storageFault 包装存储读取错误为内部协议故障
func storageFault(op string, err error) error {
	return &types.ProtocolError{
		Reason: types.ProtocolFaultCorruptedState,
		Op:     op,
		Err:    err,
	}
}

// checkGlobalNonce 校验身份全局 nonce 恰为存储值加一
func (v *Validator) checkGlobalNonce(ctx context.Context, identityID types.Identifier, received uint64) (*types.SimpleValidationResult, error) {
	stored, err := v.repo.FetchIdentityNonce(ctx, identityID)
	if err != nil {
		return nil, storageFault("state.checkGlobalNonce", err)
	}
	if received != stored+1 {
		return reject(&types.InvalidIdentityNonceError{
			IdentityID:    identityID,
			ExpectedNonce: stored + 1,
			ReceivedNonce: received,
		}), nil
	}
	return nil, nil
}
