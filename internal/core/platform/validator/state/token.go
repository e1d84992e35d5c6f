package state

import (
	"context"

	"github.com/evoplatform/v1/pkg/types"
)

// validateToken 校验代币子动作
//
// 流程：暂停闸 → 授权（含群组累签） → 各类别的供应/余额/冻结边界。
func (v *Validator) validateToken(ctx context.Context, owner types.Identifier, a *types.TokenAction, block *types.BlockInfo) (*types.SimpleValidationResult, error) {
	status, err := v.repo.FetchTokenStatus(ctx, a.TokenID)
	if err != nil {
		return nil, storageFault("state.validateToken", err)
	}
	if status == nil {
		// 合约创建时未落过任何代币操作，按配置初始状态评估
		status = types.NewTokenStatusV0(a.TokenID, a.Config.BaseSupply, a.Config.StartAsPaused)
	}

	tt := a.Transition
	if status.Paused() && tt.Kind != types.TokenTransitionEmergencyAction {
		return reject(&types.TokenIsPausedError{TokenID: a.TokenID}), nil
	}

	if rules, gated := authorizationRules(a.Config, tt.Kind); gated {
		if result, err := v.checkTokenAuthorization(ctx, owner, a, rules); result != nil || err != nil {
			return result, err
		}
	}

	switch tt.Kind {
	case types.TokenTransitionMint:
		return v.validateTokenMint(ctx, a, status, tt.Mint)
	case types.TokenTransitionBurn:
		return v.validateTokenSpend(ctx, owner, a, tt.Burn.Amount)
	case types.TokenTransitionFreeze:
		return v.validateFreezeTarget(ctx, tt.Freeze.FrozenIdentityID)
	case types.TokenTransitionUnfreeze:
		return v.validateFreezeTarget(ctx, tt.Unfreeze.FrozenIdentityID)
	case types.TokenTransitionDestroyFrozenFunds:
		return v.validateDestroyFrozenFunds(ctx, a, tt.DestroyFrozenFunds)
	case types.TokenTransitionTransfer:
		return v.validateTokenTransfer(ctx, owner, a, tt.Transfer)
	case types.TokenTransitionDirectPurchase:
		return v.validateDirectPurchase(ctx, owner, a, status, tt.DirectPurchase)
	case types.TokenTransitionSetPriceForDirectPurchase:
		return accept(), nil
	case types.TokenTransitionClaim:
		return v.validateTokenClaim(owner, a, status, tt.Claim, block)
	case types.TokenTransitionEmergencyAction:
		return accept(), nil
	case types.TokenTransitionConfigUpdate:
		return v.validateTokenConfigUpdate(a, status, tt.ConfigUpdate)
	default:
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultUnknownVersionDispatch,
			Op:     "state.validateToken",
		}
	}
}

// authorizationRules 返回类别对应的授权规则；第二返回值为假表示
// 该类别不受规则门控（凭自身余额或挂牌即可执行）
func authorizationRules(config *types.TokenConfiguration, kind types.TokenTransitionKind) (types.AuthorizedActionTakers, bool) {
	switch kind {
	case types.TokenTransitionMint:
		return config.MintingRules, true
	case types.TokenTransitionBurn:
		return config.BurningRules, true
	case types.TokenTransitionFreeze:
		return config.FreezeRules, true
	case types.TokenTransitionUnfreeze:
		return config.UnfreezeRules, true
	case types.TokenTransitionDestroyFrozenFunds:
		return config.DestroyFrozenFundsRules, true
	case types.TokenTransitionEmergencyAction:
		return config.EmergencyActionRules, true
	case types.TokenTransitionConfigUpdate, types.TokenTransitionSetPriceForDirectPurchase:
		// 挂牌价是配置的一部分，共用配置更新规则
		return config.ConfigUpdateRules, true
	}
	return types.AuthorizedActionTakers{}, false
}

// checkTokenAuthorization 依据授权规则裁决执行者资格
func (v *Validator) checkTokenAuthorization(ctx context.Context, owner types.Identifier, a *types.TokenAction, rules types.AuthorizedActionTakers) (*types.SimpleValidationResult, error) {
	unauthorized := func() *types.SimpleValidationResult {
		return reject(&types.UnauthorizedTokenActionError{
			TokenID:    a.TokenID,
			IdentityID: owner,
			Action:     a.Transition.Kind.String(),
		})
	}

	switch rules.Kind {
	case types.AuthorizedNoOne:
		return unauthorized(), nil
	case types.AuthorizedContractOwner:
		if owner != a.Contract.OwnerID() {
			return unauthorized(), nil
		}
		return nil, nil
	case types.AuthorizedIdentity:
		if owner != rules.Identity {
			return unauthorized(), nil
		}
		return nil, nil
	case types.AuthorizedMainGroup:
		position := a.Config.MainControlGroup
		if position == nil {
			return unauthorized(), nil
		}
		return v.checkGroupAuthorization(ctx, owner, a, *position)
	case types.AuthorizedGroup:
		return v.checkGroupAuthorization(ctx, owner, a, rules.Group)
	}
	return unauthorized(), nil
}

// checkGroupAuthorization 校验群组累签流程
//
// 提案者开启新动作，附议者引用既有动作；已关闭动作不可再签，
// 同一成员不可重复签署。阈值达成与关闭由应用步执行。
func (v *Validator) checkGroupAuthorization(ctx context.Context, owner types.Identifier, a *types.TokenAction, position types.GroupContractPosition) (*types.SimpleValidationResult, error) {
	group, ok := a.Contract.GroupAt(position)
	if !ok {
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultContractLookup,
			Op:     "state.checkGroupAuthorization",
		}
	}
	if group.MemberPower(owner) == 0 {
		return reject(&types.IdentityNotMemberOfGroupError{
			IdentityID: owner,
			Position:   position,
		}), nil
	}

	info := a.Transition.Base.Group
	if info == nil || info.GroupContractPosition != position {
		return reject(&types.UnauthorizedTokenActionError{
			TokenID:    a.TokenID,
			IdentityID: owner,
			Action:     a.Transition.Kind.String(),
		}), nil
	}

	groupAction, err := v.repo.FetchGroupAction(ctx, info.ActionID)
	if err != nil {
		return nil, storageFault("state.checkGroupAuthorization", err)
	}

	if info.IsProposer {
		if groupAction != nil {
			return reject(&types.GroupActionAlreadySignedByIdentityError{
				ActionID:   info.ActionID,
				IdentityID: owner,
			}), nil
		}
		return nil, nil
	}

	// 附议者引用的动作不存在，视同已完成并清理
	if groupAction == nil || groupAction.Status() == types.GroupActionClosed {
		return reject(&types.GroupActionAlreadyCompletedError{ActionID: info.ActionID}), nil
	}
	if groupAction.HasSigned(owner) {
		return reject(&types.GroupActionAlreadySignedByIdentityError{
			ActionID:   info.ActionID,
			IdentityID: owner,
		}), nil
	}
	return nil, nil
}

func (v *Validator) validateTokenMint(ctx context.Context, a *types.TokenAction, status *types.TokenStatus, payload *types.TokenMintPayload) (*types.SimpleValidationResult, error) {
	if max := status.EffectiveMaxSupply(a.Config); max != nil {
		newSupply, err := status.CurrentSupply().CheckedAdd(payload.Amount)
		if err != nil || newSupply > *max {
			return reject(&types.TokenMintPastMaxSupplyError{
				TokenID:   a.TokenID,
				Amount:    payload.Amount,
				MaxSupply: *max,
			}), nil
		}
	}

	if payload.Recipient != nil {
		recipient, err := v.repo.FetchIdentity(ctx, *payload.Recipient)
		if err != nil {
			return nil, storageFault("state.validateTokenMint", err)
		}
		if recipient == nil {
			return reject(&types.RecipientIdentityNotFoundError{IdentityID: *payload.Recipient}), nil
		}
	}
	return accept(), nil
}

// validateTokenSpend 校验执行者账户未冻结且余额覆盖支出
func (v *Validator) validateTokenSpend(ctx context.Context, owner types.Identifier, a *types.TokenAction, amount types.TokenAmount) (*types.SimpleValidationResult, error) {
	frozen, err := v.repo.IsIdentityTokenFrozen(ctx, a.TokenID, owner)
	if err != nil {
		return nil, storageFault("state.validateTokenSpend", err)
	}
	if frozen {
		return reject(&types.IdentityTokenAccountFrozenError{
			TokenID:    a.TokenID,
			IdentityID: owner,
		}), nil
	}

	balance, err := v.repo.FetchIdentityTokenBalance(ctx, a.TokenID, owner)
	if err != nil {
		return nil, storageFault("state.validateTokenSpend", err)
	}
	if balance < amount {
		return reject(&types.IdentityTokenBalanceInsufficientError{
			TokenID:    a.TokenID,
			IdentityID: owner,
			Balance:    balance,
			Required:   amount,
		}), nil
	}
	return accept(), nil
}

func (v *Validator) validateFreezeTarget(ctx context.Context, target types.Identifier) (*types.SimpleValidationResult, error) {
	identity, err := v.repo.FetchIdentity(ctx, target)
	if err != nil {
		return nil, storageFault("state.validateFreezeTarget", err)
	}
	if identity == nil {
		return reject(&types.IdentityNotFoundError{IdentityID: target}), nil
	}
	return accept(), nil
}

// validateDestroyFrozenFunds 只允许销毁处于冻结状态的账户资金
func (v *Validator) validateDestroyFrozenFunds(ctx context.Context, a *types.TokenAction, payload *types.TokenFreezePayload) (*types.SimpleValidationResult, error) {
	frozen, err := v.repo.IsIdentityTokenFrozen(ctx, a.TokenID, payload.FrozenIdentityID)
	if err != nil {
		return nil, storageFault("state.validateDestroyFrozenFunds", err)
	}
	if !frozen {
		return reject(&types.UnauthorizedTokenActionError{
			TokenID:    a.TokenID,
			IdentityID: payload.FrozenIdentityID,
			Action:     types.TokenTransitionDestroyFrozenFunds.String(),
		}), nil
	}
	return accept(), nil
}

func (v *Validator) validateTokenTransfer(ctx context.Context, owner types.Identifier, a *types.TokenAction, payload *types.TokenTransferPayload) (*types.SimpleValidationResult, error) {
	recipient, err := v.repo.FetchIdentity(ctx, payload.Recipient)
	if err != nil {
		return nil, storageFault("state.validateTokenTransfer", err)
	}
	if recipient == nil {
		return reject(&types.RecipientIdentityNotFoundError{IdentityID: payload.Recipient}), nil
	}
	return v.validateTokenSpend(ctx, owner, a, payload.Amount)
}

// validateDirectPurchase 按挂牌计划裁决直购
func (v *Validator) validateDirectPurchase(ctx context.Context, buyer types.Identifier, a *types.TokenAction, status *types.TokenStatus, payload *types.TokenDirectPurchasePayload) (*types.SimpleValidationResult, error) {
	pricing := a.Config.DirectPricing
	if pricing == nil {
		return reject(&types.TokenNotForDirectSaleError{TokenID: a.TokenID}), nil
	}
	if payload.Amount < pricing.MinimumSaleAmount {
		return reject(&types.TokenAmountUnderMinimumSaleAmountError{
			Amount:  payload.Amount,
			Minimum: pricing.MinimumSaleAmount,
		}), nil
	}

	required, err := pricing.Price.CheckedMul(uint64(payload.Amount))
	if err != nil {
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultFeeOverflow,
			Op:     "state.validateDirectPurchase",
			Err:    err,
		}
	}
	if payload.TotalAgreedPrice < required {
		return reject(&types.TokenDirectPurchaseUserPriceTooLowError{
			OfferedPrice:  payload.TotalAgreedPrice,
			RequiredPrice: required,
		}), nil
	}

	// 直购从供应余量铸给买家
	if max := status.EffectiveMaxSupply(a.Config); max != nil {
		newSupply, err := status.CurrentSupply().CheckedAdd(payload.Amount)
		if err != nil || newSupply > *max {
			return reject(&types.TokenMintPastMaxSupplyError{
				TokenID:   a.TokenID,
				Amount:    payload.Amount,
				MaxSupply: *max,
			}), nil
		}
	}

	return v.checkSpendableBalance(ctx, buyer, required)
}

// validateTokenClaim 校验分配领取资格
func (v *Validator) validateTokenClaim(owner types.Identifier, a *types.TokenAction, status *types.TokenStatus, payload *types.TokenClaimPayload, block *types.BlockInfo) (*types.SimpleValidationResult, error) {
	switch payload.DistributionType {
	case types.TokenDistributionPerpetual:
		perpetual := a.Config.Perpetual
		if perpetual == nil {
			return reject(&types.TokenClaimPropertyMismatchError{
				TokenID:  a.TokenID,
				Property: "perpetualDistribution",
			}), nil
		}
		recipient := perpetual.RecipientID
		if recipient == (types.Identifier{}) {
			recipient = a.Contract.OwnerID()
		}
		if owner != recipient {
			return reject(&types.TokenClaimPropertyMismatchError{
				TokenID:  a.TokenID,
				Property: "recipient",
			}), nil
		}
		if last, ok := status.LastPerpetualClaim(owner); ok && block.TimeMillis < last+perpetual.IntervalMillis {
			return reject(&types.TokenClaimPropertyMismatchError{
				TokenID:  a.TokenID,
				Property: "intervalNotElapsed",
			}), nil
		}
		return accept(), nil

	case types.TokenDistributionPreProgrammed:
		last, _ := status.LastPerpetualClaim(owner)
		for _, entry := range a.Config.PreProgrammed {
			if entry.Recipient == owner && entry.TimeMillis <= block.TimeMillis && entry.TimeMillis > last {
				return accept(), nil
			}
		}
		return reject(&types.TokenClaimPropertyMismatchError{
			TokenID:  a.TokenID,
			Property: "preProgrammedEntry",
		}), nil
	}

	return reject(&types.TokenClaimPropertyMismatchError{
		TokenID:  a.TokenID,
		Property: "distributionType",
	}), nil
}

func (v *Validator) validateTokenConfigUpdate(a *types.TokenAction, status *types.TokenStatus, payload *types.TokenConfigUpdatePayload) (*types.SimpleValidationResult, error) {
	if payload.Config.MaxSupply != nil && *payload.Config.MaxSupply < status.CurrentSupply() {
		return reject(&types.TokenSettingMaxSupplyToLessThanCurrentSupplyError{
			TokenID:       a.TokenID,
			MaxSupply:     *payload.Config.MaxSupply,
			CurrentSupply: status.CurrentSupply(),
		}), nil
	}
	return accept(), nil
}
