package drive

import (
	"context"
	"fmt"

	"github.com/evoplatform/v1/pkg/types"
)

// ApplyAction 将动作写入状态
//
// ⚠️ **核心约束**：动作必须已通过状态校验；这里发现的任何不一致
// （引用缺失、算术溢出）都按协议级故障上抛，中止整块处理。
func (d *Drive) ApplyAction(ctx context.Context, action types.Action, block *types.BlockInfo) error {
	switch a := action.(type) {
	case *types.IdentityCreateAction:
		return d.applyIdentityCreate(ctx, a)
	case *types.IdentityTopUpAction:
		return d.applyIdentityTopUp(ctx, a)
	case *types.IdentityUpdateAction:
		return d.applyIdentityUpdate(ctx, a)
	case *types.IdentityCreditTransferAction:
		return d.applyCreditTransfer(ctx, a)
	case *types.IdentityCreditWithdrawalAction:
		return d.applyCreditWithdrawal(ctx, a)
	case *types.DataContractCreateAction:
		return d.applyContractCreate(ctx, a)
	case *types.DataContractUpdateAction:
		return d.applyContractUpdate(ctx, a)
	case *types.BatchAction:
		return d.applyBatch(ctx, a, block)
	case *types.MasternodeVoteAction:
		return d.applyMasternodeVote(ctx, a)
	case *types.BumpIdentityNonceAction:
		return d.setCounter(keyNonce(a.IdentityID), a.Nonce)
	case *types.BumpIdentityContractNonceAction:
		return d.setCounter(keyContractNonce(a.IdentityID, a.ContractID), a.Nonce)
	}
	return &types.ProtocolError{
		Reason: types.ProtocolFaultUnknown,
		Op:     "drive.ApplyAction",
		Err:    fmt.Errorf("未知动作类型 %T", action),
	}
}

// DeductFee 从身份余额扣除净费用
//
// 退款已在 DeductedAmount 里抵扣，无需单独入账。
func (d *Drive) DeductFee(ctx context.Context, identityID types.Identifier, fee *types.FeeResult) error {
	amount, err := fee.DeductedAmount()
	if err != nil {
		return &types.ProtocolError{
			Reason: types.ProtocolFaultFeeOverflow,
			Op:     "drive.DeductFee",
			Err:    err,
		}
	}
	return d.mutateIdentity(ctx, identityID, "drive.DeductFee", func(identity *types.Identity) error {
		balance, err := identity.Balance().CheckedSub(amount)
		if err != nil {
			// 状态校验已保证余额充足，走到这里是软件缺陷
			return &types.ProtocolError{
				Reason: types.ProtocolFaultCorruptedState,
				Op:     "drive.DeductFee",
				Err:    err,
			}
		}
		identity.SetBalance(balance)
		return nil
	})
}

// MarkAssetLockConsumed 登记资产锁定输出点已消费
func (d *Drive) MarkAssetLockConsumed(ctx context.Context, outPoint []byte, transitionID types.Identifier) error {
	return d.store.Set(keyAssetLock(outPoint), transitionID[:])
}

// ==================== 身份动作 ====================

func (d *Drive) applyIdentityCreate(ctx context.Context, a *types.IdentityCreateAction) error {
	identity := types.NewIdentityV0(a.IdentityID, a.InitialBalance, a.PublicKeys)
	return d.store.Set(keyIdentity(a.IdentityID), identity.Serialize())
}

func (d *Drive) applyIdentityTopUp(ctx context.Context, a *types.IdentityTopUpAction) error {
	return d.mutateIdentity(ctx, a.IdentityID, "drive.applyIdentityTopUp", func(identity *types.Identity) error {
		balance, err := identity.Balance().CheckedAdd(a.AddedBalance)
		if err != nil {
			return &types.ProtocolError{
				Reason: types.ProtocolFaultFeeOverflow,
				Op:     "drive.applyIdentityTopUp",
				Err:    err,
			}
		}
		identity.SetBalance(balance)
		return nil
	})
}

func (d *Drive) applyIdentityUpdate(ctx context.Context, a *types.IdentityUpdateAction) error {
	err := d.mutateIdentity(ctx, a.IdentityID, "drive.applyIdentityUpdate", func(identity *types.Identity) error {
		identity.SetRevision(a.Revision)
		for _, key := range a.AddPublicKeys {
			identity.AddPublicKey(key)
		}
		for _, keyID := range a.DisablePublicKeys {
			if key, ok := identity.PublicKeyByID(keyID); ok {
				key.Disable(a.DisabledAtMillis)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return d.setCounter(keyNonce(a.IdentityID), a.Nonce)
}

func (d *Drive) applyCreditTransfer(ctx context.Context, a *types.IdentityCreditTransferAction) error {
	if err := d.moveCredits(ctx, a.IdentityID, a.RecipientID, a.Amount, "drive.applyCreditTransfer"); err != nil {
		return err
	}
	return d.setCounter(keyNonce(a.IdentityID), a.Nonce)
}

func (d *Drive) applyCreditWithdrawal(ctx context.Context, a *types.IdentityCreditWithdrawalAction) error {
	err := d.mutateIdentity(ctx, a.IdentityID, "drive.applyCreditWithdrawal", func(identity *types.Identity) error {
		balance, err := identity.Balance().CheckedSub(a.Amount)
		if err != nil {
			return &types.ProtocolError{
				Reason: types.ProtocolFaultCorruptedState,
				Op:     "drive.applyCreditWithdrawal",
				Err:    err,
			}
		}
		identity.SetBalance(balance)
		return nil
	})
	if err != nil {
		return err
	}
	return d.setCounter(keyNonce(a.IdentityID), a.Nonce)
}

// ==================== 合约动作 ====================

func (d *Drive) applyContractCreate(ctx context.Context, a *types.DataContractCreateAction) error {
	if err := d.store.Set(keyContract(a.Contract.ID()), a.Contract.Serialize()); err != nil {
		return fmt.Errorf("写入合约: %w", err)
	}
	return d.setCounter(keyNonce(a.Contract.OwnerID()), a.Nonce)
}

func (d *Drive) applyContractUpdate(ctx context.Context, a *types.DataContractUpdateAction) error {
	if err := d.store.Set(keyContract(a.Contract.ID()), a.Contract.Serialize()); err != nil {
		return fmt.Errorf("写入合约: %w", err)
	}
	return d.setCounter(keyContractNonce(a.Contract.OwnerID(), a.Contract.ID()), a.ContractNonce)
}

// ==================== 投票动作 ====================

func (d *Drive) applyMasternodeVote(ctx context.Context, a *types.MasternodeVoteAction) error {
	pollID := a.Poll.PollID()
	state, err := d.FetchVotePollState(ctx, pollID)
	if err != nil {
		return err
	}
	if state == nil {
		return &types.ProtocolError{
			Reason: types.ProtocolFaultCorruptedState,
			Op:     "drive.applyMasternodeVote",
			Err:    fmt.Errorf("议题缺失: %s", pollID),
		}
	}
	state.RecordVote(a.ProTxHash, a.Choice)
	if err := d.store.Set(keyVotePoll(pollID), state.Serialize()); err != nil {
		return fmt.Errorf("写入议题状态: %w", err)
	}
	return d.setCounter(keyNonce(a.VoterIdentityID), a.Nonce)
}

// ==================== 公共辅助 ====================

func (d *Drive) mutateIdentity(ctx context.Context, id types.Identifier, op string, fn func(*types.Identity) error) error {
	identity, err := d.FetchIdentity(ctx, id)
	if err != nil {
		return err
	}
	if identity == nil {
		return &types.ProtocolError{
			Reason: types.ProtocolFaultCorruptedState,
			Op:     op,
			Err:    fmt.Errorf("身份缺失: %s", id),
		}
	}
	if err := fn(identity); err != nil {
		return err
	}
	if err := d.store.Set(keyIdentity(id), identity.Serialize()); err != nil {
		return fmt.Errorf("写入身份: %w", err)
	}
	return nil
}

// moveCredits 在两个身份之间转移积分
func (d *Drive) moveCredits(ctx context.Context, from, to types.Identifier, amount types.Credits, op string) error {
	err := d.mutateIdentity(ctx, from, op, func(identity *types.Identity) error {
		balance, err := identity.Balance().CheckedSub(amount)
		if err != nil {
			return &types.ProtocolError{Reason: types.ProtocolFaultCorruptedState, Op: op, Err: err}
		}
		identity.SetBalance(balance)
		return nil
	})
	if err != nil {
		return err
	}
	return d.mutateIdentity(ctx, to, op, func(identity *types.Identity) error {
		balance, err := identity.Balance().CheckedAdd(amount)
		if err != nil {
			return &types.ProtocolError{Reason: types.ProtocolFaultFeeOverflow, Op: op, Err: err}
		}
		identity.SetBalance(balance)
		return nil
	})
}

func (d *Drive) setCounter(key []byte, value uint64) error {
	return d.store.Set(key, encodeUint(value))
}
