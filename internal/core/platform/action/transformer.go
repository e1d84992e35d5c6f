// Package action 将通过前两阶段校验的状态转换转换为可应用动作
//
// 🎯 **核心职责**：
// - 解析转换引用的链上实体（合约、既有文档），把意图展开为完整动作
// - 文档创建时复核 ID 派生并按类型 schema 校验属性
// - 为争用型唯一索引创建开启投票议题
//
// 💡 **设计理念**：
// 动作是纯内存结构，承载状态校验与应用所需的全部上下文，后续阶段
// 不再回到原始转换取数。解析失败分两类：引用的实体不存在是共识
// 拒绝，存储读取出错是内部协议故障。
//
// 📞 **调用方**：处理器内核（第三阶段）
package action

import (
	"context"
	"sync"

	"github.com/evoplatform/v1/internal/core/platform/validator/signature"
	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"github.com/evoplatform/v1/pkg/types"
)

// creditsPerDuff 链上积分与基础链面额的换算率
const creditsPerDuff = 1000

// contestDurationMillis 争用议题开放时长（两周）
const contestDurationMillis = 14 * 24 * 60 * 60 * 1000

// Transformer 动作转换器
type Transformer struct {
	repo      platform.StateRepository
	contracts *ContractResolver
	logger    logInterface.Logger
	// schemas 已编译文档 schema，键为 合约ID:合约版本:类型名
	schemas sync.Map
}

var _ platform.ActionTransformer = (*Transformer)(nil)

// NewTransformer 创建动作转换器
func NewTransformer(repo platform.StateRepository, contracts *ContractResolver, logger logInterface.Logger) *Transformer {
	return &Transformer{
		repo:      repo,
		contracts: contracts,
		logger:    logger,
	}
}

// Contracts 返回内部合约解析器，供应用路径做缓存失效
func (t *Transformer) Contracts() *ContractResolver {
	return t.contracts
}

// TransformToAction 把状态转换展开为动作
func (t *Transformer) TransformToAction(ctx context.Context, st *types.StateTransition, block *types.BlockInfo, pv *types.PlatformVersion) (*types.ConsensusValidationResult[types.Action], error) {
	switch pv.Methods.TransformToAction {
	case 0:
		return t.transformV0(ctx, st, block)
	default:
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultUnknownVersionDispatch,
			Op:     "action.TransformToAction",
		}
	}
}

func (t *Transformer) transformV0(ctx context.Context, st *types.StateTransition, block *types.BlockInfo) (*types.ConsensusValidationResult[types.Action], error) {
	switch st.Kind {
	case types.KindIdentityCreate:
		return t.transformIdentityCreate(st)
	case types.KindIdentityTopUp:
		return t.transformIdentityTopUp(st)
	case types.KindIdentityUpdate:
		v0 := st.IdentityUpdate.V0
		return accept(&types.IdentityUpdateAction{
			IdentityID:        v0.IdentityID,
			Revision:          v0.Revision,
			Nonce:             v0.Nonce,
			AddPublicKeys:     v0.AddPublicKeys,
			DisablePublicKeys: v0.DisablePublicKeys,
			DisabledAtMillis:  block.TimeMillis,
		}), nil
	case types.KindIdentityCreditTransfer:
		v0 := st.IdentityCreditTransfer.V0
		return accept(&types.IdentityCreditTransferAction{
			IdentityID:  v0.IdentityID,
			RecipientID: v0.RecipientID,
			Amount:      v0.Amount,
			Nonce:       v0.Nonce,
		}), nil
	case types.KindIdentityCreditWithdrawal:
		v0 := st.IdentityCreditWithdrawal.V0
		return accept(&types.IdentityCreditWithdrawalAction{
			IdentityID:     v0.IdentityID,
			Amount:         v0.Amount,
			CoreFeePerByte: v0.CoreFeePerByte,
			OutputScript:   v0.OutputScript,
			Nonce:          v0.Nonce,
		}), nil
	case types.KindDataContractCreate:
		v0 := st.DataContractCreate.V0
		return accept(&types.DataContractCreateAction{
			Contract: v0.Contract,
			Nonce:    v0.IdentityNonce,
		}), nil
	case types.KindDataContractUpdate:
		v0 := st.DataContractUpdate.V0
		return accept(&types.DataContractUpdateAction{
			Contract:      v0.Contract,
			ContractNonce: v0.IdentityContractNonce,
		}), nil
	case types.KindBatch:
		return t.transformBatch(ctx, st, block)
	case types.KindMasternodeVote:
		v0 := st.MasternodeVote.V0
		return accept(&types.MasternodeVoteAction{
			ProTxHash:       v0.ProTxHash,
			VoterIdentityID: v0.VoterIdentityID,
			Poll:            v0.Poll,
			Choice:          v0.Choice,
			Nonce:           v0.Nonce,
		}), nil
	default:
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultUnknownVersionDispatch,
			Op:     "action.transformV0",
		}
	}
}

func (t *Transformer) transformIdentityCreate(st *types.StateTransition) (*types.ConsensusValidationResult[types.Action], error) {
	v0 := st.IdentityCreate.V0
	credits, result := lockedCredits(v0.AssetLock)
	if result != nil {
		return result, nil
	}
	return accept(&types.IdentityCreateAction{
		IdentityID:        st.IdentityCreate.IdentityID(),
		PublicKeys:        v0.PublicKeys,
		InitialBalance:    credits,
		AssetLockOutPoint: v0.AssetLock.OutPoint(),
		TransitionID:      st.TransitionID(),
	}), nil
}

func (t *Transformer) transformIdentityTopUp(st *types.StateTransition) (*types.ConsensusValidationResult[types.Action], error) {
	v0 := st.IdentityTopUp.V0
	credits, result := lockedCredits(v0.AssetLock)
	if result != nil {
		return result, nil
	}
	return accept(&types.IdentityTopUpAction{
		IdentityID:        v0.IdentityID,
		AddedBalance:      credits,
		AssetLockOutPoint: v0.AssetLock.OutPoint(),
		TransitionID:      st.TransitionID(),
	}), nil
}

// lockedCredits 重新解析锁定输出并换算积分
//
// 签名阶段已验证过证明，这里解析失败说明两阶段看到了不同字节，
// 仍按共识拒绝处理而非断言。
func lockedCredits(proof *types.AssetLockProof) (types.Credits, *types.ConsensusValidationResult[types.Action]) {
	value, _, reason := signature.ParseAssetLockOutput(proof)
	if reason != "" {
		return 0, types.NewConsensusValidationError[types.Action](
			&types.InvalidAssetLockProofError{Reason: reason})
	}
	credits, err := types.Credits(value).CheckedMul(creditsPerDuff)
	if err != nil {
		return 0, types.NewConsensusValidationError[types.Action](
			&types.InvalidAssetLockProofError{Reason: "locked value exceeds credit range"})
	}
	return credits, nil
}

func accept(a types.Action) *types.ConsensusValidationResult[types.Action] {
	return types.NewConsensusValidationResult(a)
}

func rejectAction(e types.ConsensusError) *types.ConsensusValidationResult[types.Action] {
	return types.NewConsensusValidationError[types.Action](e)
}

// storageFault 包装存储读取错误为内部协议故障
func storageFault(op string, err error) error {
	return &types.ProtocolError{
		Reason: types.ProtocolFaultCorruptedState,
		Op:     op,
		Err:    err,
	}
}
