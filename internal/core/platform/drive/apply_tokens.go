package drive

import (
	"context"
	"fmt"

	"github.com/evoplatform/v1/pkg/types"
)

// applyToken 应用代币子动作
//
// 群组授权的操作先累加签名权重；达到阈值的那次提交关闭群组动作并
// 执行实际效果，之前的提交只落权重不落效果。
func (d *Drive) applyToken(ctx context.Context, owner types.Identifier, a *types.TokenAction, block *types.BlockInfo) error {
	tt := a.Transition

	if tt.Base.Group != nil {
		execute, err := d.advanceGroupAction(ctx, owner, a, tt.Base.Group)
		if err != nil {
			return err
		}
		if !execute {
			return nil
		}
	}
	return d.applyTokenEffect(ctx, owner, a, block)
}

// advanceGroupAction 累加群组签名权重，返回是否触发执行
func (d *Drive) advanceGroupAction(ctx context.Context, owner types.Identifier, a *types.TokenAction, info *types.GroupStateTransitionInfo) (bool, error) {
	group, ok := a.Contract.GroupAt(info.GroupContractPosition)
	if !ok {
		return false, &types.ProtocolError{
			Reason: types.ProtocolFaultContractLookup,
			Op:     "drive.advanceGroupAction",
			Err:    fmt.Errorf("群组位置缺失: %d", info.GroupContractPosition),
		}
	}

	action, err := d.FetchGroupAction(ctx, info.ActionID)
	if err != nil {
		return false, err
	}
	if action == nil {
		action = types.NewGroupActionV0(info.ActionID, a.Contract.ID(), info.GroupContractPosition)
	}

	action.AddSigner(owner, group.MemberPower(owner))
	reached := action.TotalPower() >= uint64(group.RequiredPower)
	if reached {
		action.Close()
	}
	if err := d.store.Set(keyGroupAction(info.ActionID), action.Serialize()); err != nil {
		return false, fmt.Errorf("写入群组动作: %w", err)
	}
	return reached, nil
}

func (d *Drive) applyTokenEffect(ctx context.Context, owner types.Identifier, a *types.TokenAction, block *types.BlockInfo) error {
	status, err := d.FetchTokenStatus(ctx, a.TokenID)
	if err != nil {
		return err
	}
	if status == nil {
		status = types.NewTokenStatusV0(a.TokenID, a.Config.BaseSupply, a.Config.StartAsPaused)
	}

	tt := a.Transition
	switch tt.Kind {
	case types.TokenTransitionMint:
		recipient := a.Contract.OwnerID()
		if tt.Mint.Recipient != nil {
			recipient = *tt.Mint.Recipient
		}
		if err := d.mintToken(ctx, status, recipient, tt.Mint.Amount); err != nil {
			return err
		}

	case types.TokenTransitionBurn:
		if err := d.adjustTokenBalance(ctx, a.TokenID, owner, tt.Burn.Amount, false); err != nil {
			return err
		}
		supply, err := status.CurrentSupply().CheckedSub(tt.Burn.Amount)
		if err != nil {
			return &types.ProtocolError{Reason: types.ProtocolFaultCorruptedState, Op: "drive.applyTokenEffect", Err: err}
		}
		status.SetCurrentSupply(supply)

	case types.TokenTransitionFreeze:
		if err := d.store.Set(keyTokenFrozen(a.TokenID, tt.Freeze.FrozenIdentityID), []byte{1}); err != nil {
			return fmt.Errorf("写入冻结标志: %w", err)
		}

	case types.TokenTransitionUnfreeze:
		if err := d.store.Delete(keyTokenFrozen(a.TokenID, tt.Unfreeze.FrozenIdentityID)); err != nil {
			return fmt.Errorf("删除冻结标志: %w", err)
		}

	case types.TokenTransitionDestroyFrozenFunds:
		target := tt.DestroyFrozenFunds.FrozenIdentityID
		balance, err := d.FetchIdentityTokenBalance(ctx, a.TokenID, target)
		if err != nil {
			return err
		}
		if err := d.store.Set(keyTokenBalance(a.TokenID, target), encodeUint(0)); err != nil {
			return fmt.Errorf("写入代币余额: %w", err)
		}
		supply, serr := status.CurrentSupply().CheckedSub(balance)
		if serr != nil {
			return &types.ProtocolError{Reason: types.ProtocolFaultCorruptedState, Op: "drive.applyTokenEffect", Err: serr}
		}
		status.SetCurrentSupply(supply)

	case types.TokenTransitionTransfer:
		if err := d.adjustTokenBalance(ctx, a.TokenID, owner, tt.Transfer.Amount, false); err != nil {
			return err
		}
		if err := d.adjustTokenBalance(ctx, a.TokenID, tt.Transfer.Recipient, tt.Transfer.Amount, true); err != nil {
			return err
		}

	case types.TokenTransitionDirectPurchase:
		if err := d.applyDirectPurchase(ctx, owner, a, status, tt.DirectPurchase); err != nil {
			return err
		}

	case types.TokenTransitionSetPriceForDirectPurchase:
		if err := d.rewriteTokenConfig(ctx, a, func(config *types.TokenConfiguration) {
			config.DirectPricing = tt.SetPrice.Price
		}); err != nil {
			return err
		}

	case types.TokenTransitionClaim:
		if err := d.applyTokenClaim(ctx, owner, a, status, tt.Claim, block); err != nil {
			return err
		}

	case types.TokenTransitionEmergencyAction:
		status.SetPaused(tt.Emergency.Action == types.TokenEmergencyPause)

	case types.TokenTransitionConfigUpdate:
		if err := d.applyTokenConfigUpdate(ctx, a, status, tt.ConfigUpdate); err != nil {
			return err
		}

	default:
		return &types.ProtocolError{
			Reason: types.ProtocolFaultUnknown,
			Op:     "drive.applyTokenEffect",
			Err:    fmt.Errorf("未知代币子转换类别 %d", tt.Kind),
		}
	}

	return d.store.Set(keyTokenStatus(a.TokenID), status.Serialize())
}

// mintToken 增发并入账；调用方负责供应上限校验
func (d *Drive) mintToken(ctx context.Context, status *types.TokenStatus, recipient types.Identifier, amount types.TokenAmount) error {
	supply, err := status.CurrentSupply().CheckedAdd(amount)
	if err != nil {
		return &types.ProtocolError{Reason: types.ProtocolFaultFeeOverflow, Op: "drive.mintToken", Err: err}
	}
	status.SetCurrentSupply(supply)
	return d.adjustTokenBalance(ctx, status.TokenID(), recipient, amount, true)
}

// adjustTokenBalance 增减身份的代币账户余额
func (d *Drive) adjustTokenBalance(ctx context.Context, tokenID, identityID types.Identifier, amount types.TokenAmount, add bool) error {
	balance, err := d.FetchIdentityTokenBalance(ctx, tokenID, identityID)
	if err != nil {
		return err
	}
	var next types.TokenAmount
	if add {
		next, err = balance.CheckedAdd(amount)
		if err != nil {
			return &types.ProtocolError{Reason: types.ProtocolFaultFeeOverflow, Op: "drive.adjustTokenBalance", Err: err}
		}
	} else {
		next, err = balance.CheckedSub(amount)
		if err != nil {
			return &types.ProtocolError{Reason: types.ProtocolFaultCorruptedState, Op: "drive.adjustTokenBalance", Err: err}
		}
	}
	if err := d.store.Set(keyTokenBalance(tokenID, identityID), encodeUint(uint64(next))); err != nil {
		return fmt.Errorf("写入代币余额: %w", err)
	}
	return nil
}

// applyDirectPurchase 直购：按挂牌价计算应付总价，从剩余供应增发给买方
func (d *Drive) applyDirectPurchase(ctx context.Context, buyer types.Identifier, a *types.TokenAction, status *types.TokenStatus, payload *types.TokenDirectPurchasePayload) error {
	pricing := a.Config.DirectPricing
	if pricing == nil {
		return &types.ProtocolError{
			Reason: types.ProtocolFaultCorruptedState,
			Op:     "drive.applyDirectPurchase",
			Err:    fmt.Errorf("代币未挂牌直购: %s", a.TokenID),
		}
	}
	required, err := pricing.Price.CheckedMul(uint64(payload.Amount))
	if err != nil {
		return &types.ProtocolError{Reason: types.ProtocolFaultFeeOverflow, Op: "drive.applyDirectPurchase", Err: err}
	}

	// 买方多报的出价不多收，按应付总价结算给合约所有者
	if err := d.moveCredits(ctx, buyer, a.Contract.OwnerID(), required, "drive.applyDirectPurchase"); err != nil {
		return err
	}
	return d.mintToken(ctx, status, buyer, payload.Amount)
}

// applyTokenClaim 领取分配；领取时间戳同时用于永续与预编程的防重
func (d *Drive) applyTokenClaim(ctx context.Context, owner types.Identifier, a *types.TokenAction, status *types.TokenStatus, payload *types.TokenClaimPayload, block *types.BlockInfo) error {
	switch payload.DistributionType {
	case types.TokenDistributionPerpetual:
		perpetual := a.Config.Perpetual
		if perpetual == nil {
			return &types.ProtocolError{
				Reason: types.ProtocolFaultCorruptedState,
				Op:     "drive.applyTokenClaim",
				Err:    fmt.Errorf("代币无永续分配规则: %s", a.TokenID),
			}
		}
		status.RecordPerpetualClaim(owner, block.TimeMillis)
		return d.mintToken(ctx, status, owner, perpetual.AmountPerInterval)

	case types.TokenDistributionPreProgrammed:
		last, _ := status.LastPerpetualClaim(owner)
		for _, entry := range a.Config.PreProgrammed {
			if entry.Recipient == owner && entry.TimeMillis <= block.TimeMillis && entry.TimeMillis > last {
				status.RecordPerpetualClaim(owner, entry.TimeMillis)
				return d.mintToken(ctx, status, owner, entry.Amount)
			}
		}
		return &types.ProtocolError{
			Reason: types.ProtocolFaultCorruptedState,
			Op:     "drive.applyTokenClaim",
			Err:    fmt.Errorf("无可领取的预编程表项: token=%s identity=%s", a.TokenID, owner),
		}
	}

	return &types.ProtocolError{
		Reason: types.ProtocolFaultUnknown,
		Op:     "drive.applyTokenClaim",
		Err:    fmt.Errorf("未知分配来源 %d", payload.DistributionType),
	}
}

// applyTokenConfigUpdate 以完整新配置镜像覆盖合约内该位置的配置
func (d *Drive) applyTokenConfigUpdate(ctx context.Context, a *types.TokenAction, status *types.TokenStatus, payload *types.TokenConfigUpdatePayload) error {
	if err := d.rewriteTokenConfig(ctx, a, func(config *types.TokenConfiguration) {
		*config = *payload.Config
	}); err != nil {
		return err
	}
	// 供应上限同步到状态侧，合约缓存未失效的窗口内也按新上限判定
	if payload.Config.MaxSupply != nil {
		status.SetMaxSupplyOverride(*payload.Config.MaxSupply)
	} else if status.V0 != nil {
		status.V0.MaxSupplyOverride = nil
	}
	return nil
}

// rewriteTokenConfig 原位改写存储中合约的代币配置
//
// 合约改写后调用方所在的处理器负责让合约解析缓存失效。
func (d *Drive) rewriteTokenConfig(ctx context.Context, a *types.TokenAction, fn func(*types.TokenConfiguration)) error {
	contract, err := d.FetchDataContract(ctx, a.Contract.ID())
	if err != nil {
		return err
	}
	if contract == nil {
		return &types.ProtocolError{
			Reason: types.ProtocolFaultCorruptedState,
			Op:     "drive.rewriteTokenConfig",
			Err:    fmt.Errorf("合约缺失: %s", a.Contract.ID()),
		}
	}
	config, ok := contract.TokenAt(a.Transition.Base.TokenContractPosition)
	if !ok {
		return &types.ProtocolError{
			Reason: types.ProtocolFaultCorruptedState,
			Op:     "drive.rewriteTokenConfig",
			Err:    fmt.Errorf("代币位置缺失: %d", a.Transition.Base.TokenContractPosition),
		}
	}
	fn(config)
	if err := d.store.Set(keyContract(contract.ID()), contract.Serialize()); err != nil {
		return fmt.Errorf("写入合约: %w", err)
	}
	return nil
}
