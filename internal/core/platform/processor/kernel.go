// Package processor 实现状态转换处理器内核
//
// 🎯 **核心职责**：
// - 按固定顺序编排五个阶段：结构 → 签名 → 变换 → 状态 → 费用
// - 接受的转换应用到状态并扣费；状态拒绝但可计费的转换落兜底动作
// - mempool 预检走同一条流水线，只验不写
//
// 💡 **设计理念**：
// 内核是薄协调层：每个阶段只认接口，所有共识判定都在阶段实现里。
// 阶段返回的共识错误意味着确定性拒绝；error 返回值一律是协议级
// 故障，上层必须中止整块处理。
//
// 📞 **调用方**：区块执行循环、mempool 预检
package processor

import (
	"context"
	"fmt"
	"time"

	evbus "github.com/asaskevich/EventBus"

	"github.com/evoplatform/v1/internal/core/platform/action"
	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"github.com/evoplatform/v1/pkg/types"
)

// 处理结论事件主题
const (
	TopicTransitionAccepted = "platform:transition:accepted"
	TopicTransitionRejected = "platform:transition:rejected"
)

// Kernel 状态转换处理器内核
type Kernel struct {
	structure platform.StructureValidator
	signature platform.SignatureValidator
	transform platform.ActionTransformer
	state     platform.StateValidator
	fees      platform.FeeCalculator
	drive     platform.Drive
	contracts *action.ContractResolver
	bus       evbus.Bus
	logger    logInterface.Logger
}

var _ platform.Processor = (*Kernel)(nil)

// NewKernel 创建处理器内核
//
// bus 可为 nil（不发布处理结论事件）。
func NewKernel(
	structure platform.StructureValidator,
	signature platform.SignatureValidator,
	transform platform.ActionTransformer,
	state platform.StateValidator,
	fees platform.FeeCalculator,
	drive platform.Drive,
	contracts *action.ContractResolver,
	bus evbus.Bus,
	logger logInterface.Logger,
) *Kernel {
	registerMetrics()
	return &Kernel{
		structure: structure,
		signature: signature,
		transform: transform,
		state:     state,
		fees:      fees,
		drive:     drive,
		contracts: contracts,
		bus:       bus,
		logger:    logger,
	}
}

// ProcessRawStateTransition 解码并完整处理一条转换（含状态应用）
func (k *Kernel) ProcessRawStateTransition(ctx context.Context, raw []byte, block *types.BlockInfo) (*platform.ProcessingResult, error) {
	st, err := types.DeserializeStateTransition(raw)
	if err != nil {
		// 解不开的字节是确定性拒绝，不是协议故障
		return &platform.ProcessingResult{
			Valid:  false,
			Errors: []types.ConsensusError{&types.StateTransitionDecodeError{Message: err.Error()}},
		}, nil
	}
	return k.ProcessStateTransition(ctx, st, block)
}

// ProcessStateTransition 完整处理已解码的转换（含状态应用）
func (k *Kernel) ProcessStateTransition(ctx context.Context, st *types.StateTransition, block *types.BlockInfo) (*platform.ProcessingResult, error) {
	return k.run(ctx, st, block, true)
}

// CheckStateTransition 只验不写（mempool 预检）
func (k *Kernel) CheckStateTransition(ctx context.Context, st *types.StateTransition, block *types.BlockInfo) (*platform.ProcessingResult, error) {
	return k.run(ctx, st, block, false)
}

func (k *Kernel) run(ctx context.Context, st *types.StateTransition, block *types.BlockInfo, apply bool) (*platform.ProcessingResult, error) {
	started := time.Now()
	result, err := k.pipeline(ctx, st, block, apply)
	if err != nil {
		return nil, err
	}

	observeProcessed(st.Kind, result.Valid, time.Since(started))
	if apply {
		k.publish(result)
	}
	return result, nil
}

func (k *Kernel) pipeline(ctx context.Context, st *types.StateTransition, block *types.BlockInfo, apply bool) (*platform.ProcessingResult, error) {
	transitionID := st.TransitionID()

	pv, ok := types.PlatformVersionFor(st.ProtocolVersion)
	if !ok {
		return rejected(transitionID, &types.UnsupportedProtocolVersionError{
			Received: st.ProtocolVersion,
			Min:      types.MinSupportedProtocolVersion,
			Max:      types.LatestProtocolVersion,
		}), nil
	}

	// 阶段一：结构（收集语义，可多条缺陷）
	structureResult, err := k.structure.ValidateStructure(st, pv)
	if err != nil {
		return nil, err
	}
	if !structureResult.IsValid() {
		return rejected(transitionID, structureResult.Errors()...), nil
	}

	// 阶段二：签名
	signatureResult, err := k.signature.ValidateSignature(ctx, st, pv)
	if err != nil {
		return nil, err
	}
	if !signatureResult.IsValid() {
		return rejected(transitionID, signatureResult.Errors()...), nil
	}

	// 阶段三：变换为执行计划
	transformResult, err := k.transform.TransformToAction(ctx, st, block, pv)
	if err != nil {
		return nil, err
	}
	if !transformResult.IsValid() {
		return rejected(transitionID, transformResult.Errors()...), nil
	}
	act := transformResult.Data()

	// 阶段五的费用在状态判定前计算：状态拒绝也要能结算
	fee, err := k.fees.CalculateFee(st, act, block, pv)
	if err != nil {
		return nil, err
	}

	// 阶段四：状态判定
	stateResult, err := k.state.ValidateState(ctx, act, st, block, pv)
	if err != nil {
		return nil, err
	}
	if !stateResult.IsValid() {
		return k.settleRejection(ctx, st, block, fee, transitionID, stateResult.Errors(), apply)
	}

	// 余额终检：本金与基础费合计必须全额可付
	if consensusErr, err := k.checkFeeBalance(ctx, st, act, fee); err != nil {
		return nil, err
	} else if consensusErr != nil {
		return rejected(transitionID, consensusErr), nil
	}

	result := &platform.ProcessingResult{
		Valid:        true,
		Action:       act,
		Fee:          fee,
		TransitionID: transitionID,
	}
	if !apply {
		return result, nil
	}

	if err := k.commit(ctx, st, act, fee, block, transitionID); err != nil {
		return nil, err
	}
	return result, nil
}

// commit 应用动作、扣费并登记资产锁定消费
func (k *Kernel) commit(ctx context.Context, st *types.StateTransition, act types.Action, fee *types.FeeResult, block *types.BlockInfo, transitionID types.Identifier) error {
	if err := k.drive.ApplyAction(ctx, act, block); err != nil {
		return err
	}
	if err := k.drive.DeductFee(ctx, act.OwnerID(), fee); err != nil {
		return err
	}
	if st.IsAssetLockFunded() {
		proof := st.AssetLockProof()
		if proof == nil {
			return &types.ProtocolError{
				Reason: types.ProtocolFaultCorruptedState,
				Op:     "processor.commit",
				Err:    fmt.Errorf("资产锁定转换缺少证明: %s", transitionID),
			}
		}
		if err := k.drive.MarkAssetLockConsumed(ctx, proof.OutPoint(), transitionID); err != nil {
			return err
		}
	}
	k.invalidateContracts(act)
	return nil
}

// invalidateContracts 合约镜像变更后剔除解析缓存
func (k *Kernel) invalidateContracts(act types.Action) {
	if k.contracts == nil {
		return
	}
	switch a := act.(type) {
	case *types.DataContractCreateAction:
		k.contracts.Invalidate(a.Contract.ID())
	case *types.DataContractUpdateAction:
		k.contracts.Invalidate(a.Contract.ID())
	case *types.BatchAction:
		for _, sub := range a.SubActions {
			token, ok := sub.(*types.TokenAction)
			if !ok {
				continue
			}
			switch token.Transition.Kind {
			case types.TokenTransitionSetPriceForDirectPurchase, types.TokenTransitionConfigUpdate:
				k.contracts.Invalidate(token.Contract.ID())
			}
		}
	}
}

// settleRejection 状态拒绝的结算
//
// 已通过签名与变换的转换占用了验证资源，只要提交者有身份且付得起
// 基础费就照常扣费，并落兜底动作推进 nonce，阻止同一转换免费重放。
// 资产锁定出资的转换没有可扣费的既有身份，直接拒绝。
func (k *Kernel) settleRejection(ctx context.Context, st *types.StateTransition, block *types.BlockInfo, fee *types.FeeResult, transitionID types.Identifier, errs []types.ConsensusError, apply bool) (*platform.ProcessingResult, error) {
	result := rejected(transitionID, errs...)
	if st.IsAssetLockFunded() {
		return result, nil
	}

	required, err := fee.RequiredBalance()
	if err != nil {
		return nil, &types.ProtocolError{Reason: types.ProtocolFaultFeeOverflow, Op: "processor.settleRejection", Err: err}
	}
	owner := st.OwnerID()
	balance, exists, err := k.drive.FetchIdentityBalance(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !exists || balance < required {
		return result, nil
	}

	bump := bumpAction(st)
	if bump == nil {
		return result, nil
	}
	result.Action = bump
	result.Fee = fee
	if !apply {
		return result, nil
	}

	if err := k.drive.ApplyAction(ctx, bump, block); err != nil {
		return nil, err
	}
	if err := k.drive.DeductFee(ctx, owner, fee); err != nil {
		return nil, err
	}
	return result, nil
}

// checkFeeBalance 确认本金与基础费合计全额可付；不可付返回共识错误
//
// 状态判定只比对本金，这里把动作划出的本金与基础费合并再比对一次，
// 否则"付得起本金付不起费"的转换会在扣费时把余额打穿，动作已落账
// 却以内部故障中止整个区块。
func (k *Kernel) checkFeeBalance(ctx context.Context, st *types.StateTransition, act types.Action, fee *types.FeeResult) (types.ConsensusError, error) {
	required, err := fee.RequiredBalance()
	if err != nil {
		return nil, &types.ProtocolError{Reason: types.ProtocolFaultFeeOverflow, Op: "processor.checkFeeBalance", Err: err}
	}

	// 资产锁定出资：费用从锁定铸造的积分里扣
	switch a := act.(type) {
	case *types.IdentityCreateAction:
		if a.InitialBalance < required {
			return &types.IdentityInsufficientBalanceError{
				IdentityID: a.IdentityID,
				Balance:    a.InitialBalance,
				Required:   required,
			}, nil
		}
		return nil, nil
	case *types.IdentityTopUpAction:
		balance, _, err := k.drive.FetchIdentityBalance(ctx, a.IdentityID)
		if err != nil {
			return nil, err
		}
		funded, aerr := balance.CheckedAdd(a.AddedBalance)
		if aerr != nil {
			return nil, &types.ProtocolError{Reason: types.ProtocolFaultFeeOverflow, Op: "processor.checkFeeBalance", Err: aerr}
		}
		if funded < required {
			return &types.IdentityInsufficientBalanceError{
				IdentityID: a.IdentityID,
				Balance:    funded,
				Required:   required,
			}, nil
		}
		return nil, nil
	}

	spend, err := actionSpend(act)
	if err != nil {
		return nil, err
	}
	needed, aerr := spend.CheckedAdd(required)
	if aerr != nil {
		return nil, &types.ProtocolError{Reason: types.ProtocolFaultFeeOverflow, Op: "processor.checkFeeBalance", Err: aerr}
	}

	owner := st.OwnerID()
	balance, exists, err := k.drive.FetchIdentityBalance(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &types.IdentityNotFoundError{IdentityID: owner}, nil
	}
	if balance < needed {
		return &types.IdentityInsufficientBalanceError{
			IdentityID: owner,
			Balance:    balance,
			Required:   needed,
		}, nil
	}
	return nil, nil
}

// actionSpend 汇总动作将从所有者余额划出的本金
func actionSpend(act types.Action) (types.Credits, error) {
	switch a := act.(type) {
	case *types.IdentityCreditTransferAction:
		return a.Amount, nil
	case *types.IdentityCreditWithdrawalAction:
		return a.Amount, nil
	case *types.BatchAction:
		var total types.Credits
		for _, sub := range a.SubActions {
			amount, err := batchedSpend(sub)
			if err != nil {
				return 0, err
			}
			if total, err = total.CheckedAdd(amount); err != nil {
				return 0, &types.ProtocolError{Reason: types.ProtocolFaultFeeOverflow, Op: "processor.actionSpend", Err: err}
			}
		}
		return total, nil
	}
	return 0, nil
}

func batchedSpend(sub types.BatchedAction) (types.Credits, error) {
	switch s := sub.(type) {
	case *types.DocumentPurchaseAction:
		return s.Price, nil
	case *types.TokenAction:
		// 直购按挂牌价结算，多报的出价不计入划出本金
		if s.Transition.Kind != types.TokenTransitionDirectPurchase || s.Config.DirectPricing == nil {
			return 0, nil
		}
		price, err := s.Config.DirectPricing.Price.CheckedMul(uint64(s.Transition.DirectPurchase.Amount))
		if err != nil {
			return 0, &types.ProtocolError{Reason: types.ProtocolFaultFeeOverflow, Op: "processor.batchedSpend", Err: err}
		}
		return price, nil
	}
	return 0, nil
}

// bumpAction 从转换提取兜底 nonce 推进动作；无 nonce 序列返回 nil
func bumpAction(st *types.StateTransition) types.Action {
	owner := st.OwnerID()
	switch st.Kind {
	case types.KindIdentityUpdate:
		return &types.BumpIdentityNonceAction{IdentityID: owner, Nonce: st.IdentityUpdate.V0.Nonce, TransitionKindHint: st.Kind}
	case types.KindIdentityCreditTransfer:
		return &types.BumpIdentityNonceAction{IdentityID: owner, Nonce: st.IdentityCreditTransfer.V0.Nonce, TransitionKindHint: st.Kind}
	case types.KindIdentityCreditWithdrawal:
		return &types.BumpIdentityNonceAction{IdentityID: owner, Nonce: st.IdentityCreditWithdrawal.V0.Nonce, TransitionKindHint: st.Kind}
	case types.KindDataContractCreate:
		return &types.BumpIdentityNonceAction{IdentityID: owner, Nonce: st.DataContractCreate.V0.IdentityNonce, TransitionKindHint: st.Kind}
	case types.KindMasternodeVote:
		return &types.BumpIdentityNonceAction{IdentityID: owner, Nonce: st.MasternodeVote.V0.Nonce, TransitionKindHint: st.Kind}
	case types.KindDataContractUpdate:
		return &types.BumpIdentityContractNonceAction{
			IdentityID:         owner,
			ContractID:         st.DataContractUpdate.V0.Contract.ID(),
			Nonce:              st.DataContractUpdate.V0.IdentityContractNonce,
			TransitionKindHint: st.Kind,
		}
	case types.KindBatch:
		// 首个子转换的序列被占用即可阻断整批重放
		for _, sub := range st.Batch.V0.Transitions {
			if sub.Document != nil {
				return &types.BumpIdentityContractNonceAction{
					IdentityID:         owner,
					ContractID:         sub.Document.Base.DataContractID,
					Nonce:              sub.Document.Base.IdentityContractNonce,
					TransitionKindHint: st.Kind,
				}
			}
			if sub.Token != nil {
				return &types.BumpIdentityContractNonceAction{
					IdentityID:         owner,
					ContractID:         sub.Token.Base.DataContractID,
					Nonce:              sub.Token.Base.IdentityContractNonce,
					TransitionKindHint: st.Kind,
				}
			}
		}
	}
	return nil
}

func (k *Kernel) publish(result *platform.ProcessingResult) {
	if k.bus == nil {
		return
	}
	if result.Valid {
		k.bus.Publish(TopicTransitionAccepted, result)
	} else {
		k.bus.Publish(TopicTransitionRejected, result)
	}
}

func rejected(transitionID types.Identifier, errs ...types.ConsensusError) *platform.ProcessingResult {
	return &platform.ProcessingResult{
		Valid:        false,
		Errors:       errs,
		TransitionID: transitionID,
	}
}
