package state

import (
	"context"

	"github.com/evoplatform/v1/internal/core/platform/triggers"
	"github.com/evoplatform/v1/pkg/types"
)

// validateBatch 逐个校验批内子动作
//
// 同一合约被多个子转换寻址时 nonce 连续递进，用批内偏移量校验。
func (v *Validator) validateBatch(ctx context.Context, a *types.BatchAction, block *types.BlockInfo) (*types.SimpleValidationResult, error) {
	nonceOffsets := make(map[types.Identifier]uint64)

	for _, sub := range a.SubActions {
		contractID, nonce := subActionNonce(sub)
		if result, err := v.checkContractNonce(ctx, a.Owner, contractID, nonce, nonceOffsets[contractID]); result != nil || err != nil {
			return result, err
		}
		nonceOffsets[contractID]++

		var (
			result *types.SimpleValidationResult
			err    error
		)
		switch sa := sub.(type) {
		case *types.DocumentCreateAction:
			result, err = v.validateDocumentCreate(ctx, a.Owner, sa)
		case *types.DocumentReplaceAction:
			result, err = v.validateDocumentReplace(ctx, a.Owner, sa)
		case *types.DocumentDeleteAction:
			result, err = v.validateDocumentDelete(ctx, a.Owner, sa)
		case *types.DocumentTransferAction:
			result, err = v.validateDocumentTransfer(ctx, a.Owner, sa)
		case *types.DocumentPurchaseAction:
			result, err = v.validateDocumentPurchase(ctx, a.Owner, sa)
		case *types.DocumentUpdatePriceAction:
			result, err = v.validateDocumentUpdatePrice(ctx, a.Owner, sa)
		case *types.TokenAction:
			result, err = v.validateToken(ctx, a.Owner, sa, block)
		}
		if result != nil || err != nil {
			return result, err
		}

		if result, err := v.runTriggers(ctx, a.Owner, sub, block); result != nil || err != nil {
			return result, err
		}
	}

	return accept(), nil
}

func subActionNonce(sub types.BatchedAction) (types.Identifier, uint64) {
	switch sa := sub.(type) {
	case *types.DocumentCreateAction:
		return sa.Contract.ID(), sa.Nonce
	case *types.DocumentReplaceAction:
		return sa.Contract.ID(), sa.Nonce
	case *types.DocumentDeleteAction:
		return sa.Contract.ID(), sa.Nonce
	case *types.DocumentTransferAction:
		return sa.Contract.ID(), sa.Nonce
	case *types.DocumentPurchaseAction:
		return sa.Contract.ID(), sa.Nonce
	case *types.DocumentUpdatePriceAction:
		return sa.Contract.ID(), sa.Nonce
	case *types.TokenAction:
		return sa.Contract.ID(), sa.Nonce
	}
	return types.Identifier{}, 0
}

func (v *Validator) runTriggers(ctx context.Context, owner types.Identifier, sub types.BatchedAction, block *types.BlockInfo) (*types.SimpleValidationResult, error) {
	contract := batchedContract(sub)
	if contract == nil {
		return nil, nil
	}
	tctx := &triggers.Context{
		Repo:     v.repo,
		Block:    block,
		Contract: contract,
		OwnerID:  owner,
	}
	consensusErr, err := v.triggers.Execute(ctx, tctx, sub)
	if err != nil {
		return nil, storageFault("state.runTriggers", err)
	}
	if consensusErr != nil {
		return reject(consensusErr), nil
	}
	return nil, nil
}

func batchedContract(sub types.BatchedAction) *types.DataContract {
	switch sa := sub.(type) {
	case *types.DocumentCreateAction:
		return sa.Contract
	case *types.DocumentReplaceAction:
		return sa.Contract
	case *types.DocumentDeleteAction:
		return sa.Contract
	case *types.DocumentTransferAction:
		return sa.Contract
	case *types.DocumentPurchaseAction:
		return sa.Contract
	case *types.DocumentUpdatePriceAction:
		return sa.Contract
	case *types.TokenAction:
		return sa.Contract
	}
	return nil
}

func (v *Validator) validateDocumentCreate(ctx context.Context, owner types.Identifier, a *types.DocumentCreateAction) (*types.SimpleValidationResult, error) {
	docType, ok := a.Contract.DocumentType(a.TypeName)
	if !ok {
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultContractLookup,
			Op:     "state.validateDocumentCreate",
		}
	}

	switch docType.CreationRestriction {
	case types.CreationOwnerOnly:
		if owner != a.Contract.OwnerID() {
			return reject(&types.DataTriggerConditionError{
				ContractID: a.Contract.ID(),
				DocumentID: a.Document.ID(),
				Message:    "document type restricts creation to the contract owner",
			}), nil
		}
	case types.CreationNoCreationAllowed:
		return reject(&types.DataTriggerConditionError{
			ContractID: a.Contract.ID(),
			DocumentID: a.Document.ID(),
			Message:    "document type does not allow creation",
		}), nil
	}

	existing, err := v.repo.FetchDocument(ctx, a.Contract.ID(), a.TypeName, a.Document.ID())
	if err != nil {
		return nil, storageFault("state.validateDocumentCreate", err)
	}
	if existing != nil {
		return reject(&types.DocumentAlreadyPresentError{DocumentID: a.Document.ID()}), nil
	}

	for _, idx := range docType.UniqueIndices() {
		values, state := indexValues(idx, a.Document.Properties())
		switch state {
		case indexPartial:
			return reject(&types.InconsistentCompoundIndexDataError{
				DocumentType: a.TypeName,
				IndexName:    idx.Name,
			}), nil
		case indexUnset:
			continue
		}

		if idx.Contested != nil {
			// 争用索引取值由投票裁决占有权，不做占先查重，但必须预付裁决费
			if a.PrefundedVotingBalance == nil || *a.PrefundedVotingBalance < idx.Contested.ResolutionCost {
				return reject(&types.DocumentContestNotPaidForError{DocumentID: a.Document.ID()}), nil
			}
			continue
		}

		hit, err := v.repo.FetchDocumentByUniqueIndex(ctx, a.Contract.ID(), a.TypeName, idx.Name, values)
		if err != nil {
			return nil, storageFault("state.validateDocumentCreate", err)
		}
		if hit != nil {
			return reject(&types.DuplicateUniqueIndexError{
				DocumentID: a.Document.ID(),
				IndexName:  idx.Name,
			}), nil
		}
	}

	return accept(), nil
}

func (v *Validator) validateDocumentReplace(ctx context.Context, owner types.Identifier, a *types.DocumentReplaceAction) (*types.SimpleValidationResult, error) {
	stored, result, err := v.fetchOwnedDocument(ctx, owner, a.Contract, a.TypeName, a.Document.ID())
	if result != nil || err != nil {
		return result, err
	}

	if result := checkRevision(a.Document.ID(), stored, a.Document.Revision()); result != nil {
		return result, nil
	}

	docType, _ := a.Contract.DocumentType(a.TypeName)
	for _, idx := range docType.UniqueIndices() {
		if idx.Contested != nil {
			continue
		}
		values, state := indexValues(idx, a.Document.Properties())
		switch state {
		case indexPartial:
			return reject(&types.InconsistentCompoundIndexDataError{
				DocumentType: a.TypeName,
				IndexName:    idx.Name,
			}), nil
		case indexUnset:
			continue
		}

		hit, err := v.repo.FetchDocumentByUniqueIndex(ctx, a.Contract.ID(), a.TypeName, idx.Name, values)
		if err != nil {
			return nil, storageFault("state.validateDocumentReplace", err)
		}
		if hit != nil && hit.ID() != a.Document.ID() {
			return reject(&types.DuplicateUniqueIndexError{
				DocumentID: a.Document.ID(),
				IndexName:  idx.Name,
			}), nil
		}
	}

	return accept(), nil
}

func (v *Validator) validateDocumentDelete(ctx context.Context, owner types.Identifier, a *types.DocumentDeleteAction) (*types.SimpleValidationResult, error) {
	_, result, err := v.fetchOwnedDocument(ctx, owner, a.Contract, a.TypeName, a.DocumentID)
	if result != nil || err != nil {
		return result, err
	}
	return accept(), nil
}

func (v *Validator) validateDocumentTransfer(ctx context.Context, owner types.Identifier, a *types.DocumentTransferAction) (*types.SimpleValidationResult, error) {
	stored, result, err := v.fetchOwnedDocument(ctx, owner, a.Contract, a.TypeName, a.DocumentID)
	if result != nil || err != nil {
		return result, err
	}
	if result := checkRevision(a.DocumentID, stored, &a.Revision); result != nil {
		return result, nil
	}
	return accept(), nil
}

// validateDocumentPurchase 购买是唯一允许非所有者发起的文档变更
func (v *Validator) validateDocumentPurchase(ctx context.Context, buyer types.Identifier, a *types.DocumentPurchaseAction) (*types.SimpleValidationResult, error) {
	stored, err := v.repo.FetchDocument(ctx, a.Contract.ID(), a.TypeName, a.DocumentID)
	if err != nil {
		return nil, storageFault("state.validateDocumentPurchase", err)
	}
	if stored == nil {
		return reject(&types.DocumentNotFoundError{DocumentID: a.DocumentID}), nil
	}
	if stored.OwnerID() == buyer {
		// 不能购回自己的文档
		return reject(&types.DocumentOwnerIDMismatchError{
			DocumentID:        a.DocumentID,
			DocumentOwnerID:   stored.OwnerID(),
			TransitionOwnerID: buyer,
		}), nil
	}
	if result := checkRevision(a.DocumentID, stored, &a.Revision); result != nil {
		return result, nil
	}

	listed := stored.Price()
	if listed == nil || a.Price != *listed {
		var required types.Credits
		if listed != nil {
			required = *listed
		}
		return reject(&types.DocumentIncorrectPurchasePriceError{
			DocumentID:    a.DocumentID,
			OfferedPrice:  a.Price,
			RequiredPrice: required,
		}), nil
	}

	return v.checkSpendableBalance(ctx, buyer, a.Price)
}

func (v *Validator) validateDocumentUpdatePrice(ctx context.Context, owner types.Identifier, a *types.DocumentUpdatePriceAction) (*types.SimpleValidationResult, error) {
	stored, result, err := v.fetchOwnedDocument(ctx, owner, a.Contract, a.TypeName, a.DocumentID)
	if result != nil || err != nil {
		return result, err
	}
	if result := checkRevision(a.DocumentID, stored, &a.Revision); result != nil {
		return result, nil
	}
	return accept(), nil
}

// fetchOwnedDocument 读取文档并校验所有权
func (v *Validator) fetchOwnedDocument(ctx context.Context, owner types.Identifier, contract *types.DataContract, typeName string, documentID types.Identifier) (*types.Document, *types.SimpleValidationResult, error) {
	stored, err := v.repo.FetchDocument(ctx, contract.ID(), typeName, documentID)
	if err != nil {
		return nil, nil, storageFault("state.fetchOwnedDocument", err)
	}
	if stored == nil {
		return nil, reject(&types.DocumentNotFoundError{DocumentID: documentID}), nil
	}
	if stored.OwnerID() != owner {
		return nil, reject(&types.DocumentOwnerIDMismatchError{
			DocumentID:        documentID,
			DocumentOwnerID:   stored.OwnerID(),
			TransitionOwnerID: owner,
		}), nil
	}
	return stored, nil, nil
}

// checkRevision 校验提交的修订号恰为存储修订号加一
func checkRevision(documentID types.Identifier, stored *types.Document, received *uint64) *types.SimpleValidationResult {
	current := stored.Revision()
	if current == nil || received == nil {
		// 结构校验保证变更类转换带修订号；类型不可变时两侧都缺省
		return nil
	}
	if *received != *current+1 {
		return reject(&types.InvalidDocumentRevisionError{
			DocumentID:       documentID,
			CurrentRevision:  *current,
			ReceivedRevision: *received,
		})
	}
	return nil
}

type indexValueState uint8

const (
	indexFull indexValueState = iota
	indexPartial
	indexUnset
)

// indexValues 按索引属性顺序提取取值
func indexValues(idx *types.Index, properties map[string]types.Value) ([]types.Value, indexValueState) {
	values := make([]types.Value, 0, len(idx.Properties))
	missing := 0
	for _, prop := range idx.Properties {
		v, ok := properties[prop.Field]
		if !ok {
			missing++
			continue
		}
		values = append(values, v)
	}
	switch {
	case missing == 0:
		return values, indexFull
	case missing == len(idx.Properties):
		return nil, indexUnset
	default:
		return nil, indexPartial
	}
}
