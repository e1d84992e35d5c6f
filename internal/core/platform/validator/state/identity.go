package state

import (
	"context"

	"github.com/evoplatform/v1/pkg/types"
)

func (v *Validator) validateIdentityCreate(ctx context.Context, a *types.IdentityCreateAction) (*types.SimpleValidationResult, error) {
	existing, err := v.repo.FetchIdentity(ctx, a.IdentityID)
	if err != nil {
		return nil, storageFault("state.validateIdentityCreate", err)
	}
	if existing != nil {
		return reject(&types.IdentityAlreadyExistsError{IdentityID: a.IdentityID}), nil
	}
	return accept(), nil
}

func (v *Validator) validateIdentityTopUp(ctx context.Context, a *types.IdentityTopUpAction) (*types.SimpleValidationResult, error) {
	existing, err := v.repo.FetchIdentity(ctx, a.IdentityID)
	if err != nil {
		return nil, storageFault("state.validateIdentityTopUp", err)
	}
	if existing == nil {
		return reject(&types.IdentityNotFoundError{IdentityID: a.IdentityID}), nil
	}
	return accept(), nil
}

func (v *Validator) validateIdentityUpdate(ctx context.Context, a *types.IdentityUpdateAction) (*types.SimpleValidationResult, error) {
	if result, err := v.checkGlobalNonce(ctx, a.IdentityID, a.Nonce); result != nil || err != nil {
		return result, err
	}

	identity, err := v.repo.FetchIdentity(ctx, a.IdentityID)
	if err != nil {
		return nil, storageFault("state.validateIdentityUpdate", err)
	}
	if identity == nil {
		return reject(&types.IdentityNotFoundError{IdentityID: a.IdentityID}), nil
	}

	if a.Revision != identity.Revision()+1 {
		return reject(&types.InvalidIdentityRevisionError{
			IdentityID:       a.IdentityID,
			CurrentRevision:  identity.Revision(),
			ReceivedRevision: a.Revision,
		}), nil
	}

	for _, key := range a.AddPublicKeys {
		if _, exists := identity.PublicKeyByID(key.ID()); exists {
			return reject(&types.DuplicatedIdentityPublicKeyIDError{KeyID: key.ID()}), nil
		}
	}

	for _, keyID := range a.DisablePublicKeys {
		key, exists := identity.PublicKeyByID(keyID)
		if !exists {
			return reject(&types.MissingPublicKeyError{IdentityID: a.IdentityID, KeyID: keyID}), nil
		}
		if key.ReadOnly() {
			return reject(&types.IdentityPublicKeyIsReadOnlyError{KeyID: keyID}), nil
		}
		if key.DisabledAt() != nil {
			return reject(&types.IdentityPublicKeyAlreadyDisabledError{KeyID: keyID}), nil
		}
	}

	return accept(), nil
}

func (v *Validator) validateCreditTransfer(ctx context.Context, a *types.IdentityCreditTransferAction) (*types.SimpleValidationResult, error) {
	if result, err := v.checkGlobalNonce(ctx, a.IdentityID, a.Nonce); result != nil || err != nil {
		return result, err
	}

	recipient, err := v.repo.FetchIdentity(ctx, a.RecipientID)
	if err != nil {
		return nil, storageFault("state.validateCreditTransfer", err)
	}
	if recipient == nil {
		return reject(&types.RecipientIdentityNotFoundError{IdentityID: a.RecipientID}), nil
	}

	return v.checkSpendableBalance(ctx, a.IdentityID, a.Amount)
}

func (v *Validator) validateCreditWithdrawal(ctx context.Context, a *types.IdentityCreditWithdrawalAction) (*types.SimpleValidationResult, error) {
	if result, err := v.checkGlobalNonce(ctx, a.IdentityID, a.Nonce); result != nil || err != nil {
		return result, err
	}
	return v.checkSpendableBalance(ctx, a.IdentityID, a.Amount)
}

// checkSpendableBalance 校验身份余额覆盖转出金额
//
// 手续费部分由处理器在费用计算后统一结算，这里只看本金。
func (v *Validator) checkSpendableBalance(ctx context.Context, identityID types.Identifier, amount types.Credits) (*types.SimpleValidationResult, error) {
	balance, exists, err := v.repo.FetchIdentityBalance(ctx, identityID)
	if err != nil {
		return nil, storageFault("state.checkSpendableBalance", err)
	}
	if !exists {
		return reject(&types.IdentityNotFoundError{IdentityID: identityID}), nil
	}
	if balance < amount {
		return reject(&types.IdentityInsufficientBalanceError{
			IdentityID: identityID,
			Balance:    balance,
			Required:   amount,
		}), nil
	}
	return accept(), nil
}
