package types

import (
	"fmt"

	"github.com/evoplatform/v1/pkg/codec"
)

// 状态错误代码（30xx）
const (
	CodeIdentityInsufficientBalance                 ConsensusErrorCode = 3001
	CodeIdentityAlreadyExists                       ConsensusErrorCode = 3002
	CodeDataContractAlreadyPresent                  ConsensusErrorCode = 3003
	CodeDataContractNotPresent                      ConsensusErrorCode = 3004
	CodeDataContractHaveNewUniqueIndex              ConsensusErrorCode = 3005
	CodeDataContractImmutablePropertiesUpdate       ConsensusErrorCode = 3006
	CodeDocumentAlreadyPresent                      ConsensusErrorCode = 3007
	CodeDocumentNotFound                            ConsensusErrorCode = 3008
	CodeInvalidDocumentRevision                     ConsensusErrorCode = 3009
	CodeDocumentOwnerIDMismatch                     ConsensusErrorCode = 3010
	CodeDuplicateUniqueIndex                        ConsensusErrorCode = 3011
	CodeInconsistentCompoundIndexData               ConsensusErrorCode = 3012
	CodeDocumentContestNotPaidFor                   ConsensusErrorCode = 3013
	CodeDocumentIncorrectPurchasePrice              ConsensusErrorCode = 3014
	CodeUnauthorizedTokenAction                     ConsensusErrorCode = 3015
	CodeTokenSettingMaxSupplyToLessThanCurrentSupply ConsensusErrorCode = 3016
	CodeTokenMintPastMaxSupply                      ConsensusErrorCode = 3017
	CodeTokenDirectPurchaseUserPriceTooLow          ConsensusErrorCode = 3018
	CodeTokenAmountUnderMinimumSaleAmount           ConsensusErrorCode = 3019
	CodeTokenNotForDirectSale                       ConsensusErrorCode = 3020
	CodeIdentityTokenAccountFrozen                  ConsensusErrorCode = 3021
	CodeTokenClaimPropertyMismatch                  ConsensusErrorCode = 3022
	CodeIdentityNotMemberOfGroup                    ConsensusErrorCode = 3023
	CodeGroupActionAlreadyCompleted                 ConsensusErrorCode = 3024
	CodeGroupActionAlreadySignedByIdentity          ConsensusErrorCode = 3025
	CodeMasternodeIncorrectVotingAddress            ConsensusErrorCode = 3026
	CodeMasternodeNotFound                          ConsensusErrorCode = 3027
	CodeVotePollNotAvailableForVoting               ConsensusErrorCode = 3028
	CodeInvalidIdentityNonce                        ConsensusErrorCode = 3029
	CodeDataTriggerCondition                        ConsensusErrorCode = 3030
	CodeDataTriggerExecution                        ConsensusErrorCode = 3031
	CodeIdentityPublicKeyIsReadOnly                 ConsensusErrorCode = 3032
	CodeIdentityPublicKeyAlreadyDisabled            ConsensusErrorCode = 3033
	CodeRecipientIdentityNotFound                   ConsensusErrorCode = 3034
	CodeTokenIsPaused                               ConsensusErrorCode = 3035
	CodeIdentityTokenBalanceInsufficient            ConsensusErrorCode = 3036
	CodeInvalidIdentityRevision                     ConsensusErrorCode = 3037
)

func init() {
	registerConsensusError(CodeIdentityInsufficientBalance, func(r *codec.Reader) (ConsensusError, error) {
		e := &IdentityInsufficientBalanceError{}
		var err error
		if e.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		balance, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		required, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		e.Balance, e.Required = Credits(balance), Credits(required)
		return e, nil
	})
	registerConsensusError(CodeIdentityAlreadyExists, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &IdentityAlreadyExistsError{IdentityID: id}
	}))
	registerConsensusError(CodeDataContractAlreadyPresent, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &DataContractAlreadyPresentError{ContractID: id}
	}))
	registerConsensusError(CodeDataContractNotPresent, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &DataContractNotPresentError{ContractID: id}
	}))
	registerConsensusError(CodeDataContractHaveNewUniqueIndex, func(r *codec.Reader) (ConsensusError, error) {
		docType, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		index, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return &DataContractHaveNewUniqueIndexError{DocumentType: docType, IndexName: index}, nil
	})
	registerConsensusError(CodeDataContractImmutablePropertiesUpdate, func(r *codec.Reader) (ConsensusError, error) {
		property, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return &DataContractImmutablePropertiesUpdateError{Property: property}, nil
	})
	registerConsensusError(CodeDocumentAlreadyPresent, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &DocumentAlreadyPresentError{DocumentID: id}
	}))
	registerConsensusError(CodeDocumentNotFound, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &DocumentNotFoundError{DocumentID: id}
	}))
	registerConsensusError(CodeInvalidDocumentRevision, func(r *codec.Reader) (ConsensusError, error) {
		e := &InvalidDocumentRevisionError{}
		var err error
		if e.DocumentID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.CurrentRevision, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if e.ReceivedRevision, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeDocumentOwnerIDMismatch, func(r *codec.Reader) (ConsensusError, error) {
		e := &DocumentOwnerIDMismatchError{}
		var err error
		if e.DocumentID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.DocumentOwnerID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.TransitionOwnerID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeDuplicateUniqueIndex, func(r *codec.Reader) (ConsensusError, error) {
		e := &DuplicateUniqueIndexError{}
		var err error
		if e.DocumentID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.IndexName, err = r.ReadString(); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeInconsistentCompoundIndexData, func(r *codec.Reader) (ConsensusError, error) {
		e := &InconsistentCompoundIndexDataError{}
		var err error
		if e.DocumentType, err = r.ReadString(); err != nil {
			return nil, err
		}
		if e.IndexName, err = r.ReadString(); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeDocumentContestNotPaidFor, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &DocumentContestNotPaidForError{DocumentID: id}
	}))
	registerConsensusError(CodeDocumentIncorrectPurchasePrice, func(r *codec.Reader) (ConsensusError, error) {
		e := &DocumentIncorrectPurchasePriceError{}
		var err error
		if e.DocumentID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		offered, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		required, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		e.OfferedPrice, e.RequiredPrice = Credits(offered), Credits(required)
		return e, nil
	})
	registerConsensusError(CodeUnauthorizedTokenAction, func(r *codec.Reader) (ConsensusError, error) {
		e := &UnauthorizedTokenActionError{}
		var err error
		if e.TokenID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.Action, err = r.ReadString(); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeTokenSettingMaxSupplyToLessThanCurrentSupply, func(r *codec.Reader) (ConsensusError, error) {
		e := &TokenSettingMaxSupplyToLessThanCurrentSupplyError{}
		var err error
		if e.TokenID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		maxSupply, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		current, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		e.MaxSupply, e.CurrentSupply = TokenAmount(maxSupply), TokenAmount(current)
		return e, nil
	})
	registerConsensusError(CodeTokenMintPastMaxSupply, func(r *codec.Reader) (ConsensusError, error) {
		e := &TokenMintPastMaxSupplyError{}
		var err error
		if e.TokenID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		amount, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		maxSupply, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		e.Amount, e.MaxSupply = TokenAmount(amount), TokenAmount(maxSupply)
		return e, nil
	})
	registerConsensusError(CodeTokenDirectPurchaseUserPriceTooLow, func(r *codec.Reader) (ConsensusError, error) {
		offered, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		required, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &TokenDirectPurchaseUserPriceTooLowError{OfferedPrice: Credits(offered), RequiredPrice: Credits(required)}, nil
	})
	registerConsensusError(CodeTokenAmountUnderMinimumSaleAmount, func(r *codec.Reader) (ConsensusError, error) {
		amount, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		minimum, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &TokenAmountUnderMinimumSaleAmountError{Amount: TokenAmount(amount), Minimum: TokenAmount(minimum)}, nil
	})
	registerConsensusError(CodeTokenNotForDirectSale, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &TokenNotForDirectSaleError{TokenID: id}
	}))
	registerConsensusError(CodeIdentityTokenAccountFrozen, func(r *codec.Reader) (ConsensusError, error) {
		e := &IdentityTokenAccountFrozenError{}
		var err error
		if e.TokenID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeTokenClaimPropertyMismatch, func(r *codec.Reader) (ConsensusError, error) {
		e := &TokenClaimPropertyMismatchError{}
		var err error
		if e.TokenID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.Property, err = r.ReadString(); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeIdentityNotMemberOfGroup, func(r *codec.Reader) (ConsensusError, error) {
		e := &IdentityNotMemberOfGroupError{}
		var err error
		if e.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		position, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		e.Position = GroupContractPosition(position)
		return e, nil
	})
	registerConsensusError(CodeGroupActionAlreadyCompleted, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &GroupActionAlreadyCompletedError{ActionID: id}
	}))
	registerConsensusError(CodeGroupActionAlreadySignedByIdentity, func(r *codec.Reader) (ConsensusError, error) {
		e := &GroupActionAlreadySignedByIdentityError{}
		var err error
		if e.ActionID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeMasternodeIncorrectVotingAddress, func(r *codec.Reader) (ConsensusError, error) {
		e := &MasternodeIncorrectVotingAddressError{}
		var err error
		if e.ProTxHash, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.VoterID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeMasternodeNotFound, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &MasternodeNotFoundError{ProTxHash: id}
	}))
	registerConsensusError(CodeVotePollNotAvailableForVoting, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &VotePollNotAvailableForVotingError{PollID: id}
	}))
	registerConsensusError(CodeInvalidIdentityNonce, func(r *codec.Reader) (ConsensusError, error) {
		e := &InvalidIdentityNonceError{}
		var err error
		if e.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.ContractID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.ExpectedNonce, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if e.ReceivedNonce, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeDataTriggerCondition, func(r *codec.Reader) (ConsensusError, error) {
		e := &DataTriggerConditionError{}
		var err error
		if e.ContractID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.DocumentID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.Message, err = r.ReadString(); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeDataTriggerExecution, func(r *codec.Reader) (ConsensusError, error) {
		e := &DataTriggerExecutionError{}
		var err error
		if e.ContractID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.Message, err = r.ReadString(); err != nil {
			return nil, err
		}
		return e, nil
	})
	registerConsensusError(CodeIdentityPublicKeyIsReadOnly, func(r *codec.Reader) (ConsensusError, error) {
		key, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &IdentityPublicKeyIsReadOnlyError{KeyID: KeyID(key)}, nil
	})
	registerConsensusError(CodeIdentityPublicKeyAlreadyDisabled, func(r *codec.Reader) (ConsensusError, error) {
		key, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &IdentityPublicKeyAlreadyDisabledError{KeyID: KeyID(key)}, nil
	})
	registerConsensusError(CodeRecipientIdentityNotFound, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &RecipientIdentityNotFoundError{IdentityID: id}
	}))
	registerConsensusError(CodeTokenIsPaused, decodeIdentifierError(func(id Identifier) ConsensusError {
		return &TokenIsPausedError{TokenID: id}
	}))
	registerConsensusError(CodeIdentityTokenBalanceInsufficient, func(r *codec.Reader) (ConsensusError, error) {
		e := &IdentityTokenBalanceInsufficientError{}
		var err error
		if e.TokenID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		balance, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		required, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		e.Balance, e.Required = TokenAmount(balance), TokenAmount(required)
		return e, nil
	})
	registerConsensusError(CodeInvalidIdentityRevision, func(r *codec.Reader) (ConsensusError, error) {
		e := &InvalidIdentityRevisionError{}
		var err error
		if e.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if e.CurrentRevision, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if e.ReceivedRevision, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		return e, nil
	})
}

// decodeIdentifierError 单标识符载荷错误的通用解码器
func decodeIdentifierError(build func(Identifier) ConsensusError) func(r *codec.Reader) (ConsensusError, error) {
	return func(r *codec.Reader) (ConsensusError, error) {
		id, err := readIdentifier(r)
		if err != nil {
			return nil, err
		}
		return build(id), nil
	}
}

// IdentityInsufficientBalanceError 身份余额不足以覆盖保守费用下限
type IdentityInsufficientBalanceError struct {
	IdentityID Identifier
	Balance    Credits
	Required   Credits
}

func (e *IdentityInsufficientBalanceError) Error() string {
	return fmt.Sprintf("identity %s balance %d is insufficient, required %d", e.IdentityID, e.Balance, e.Required)
}
func (e *IdentityInsufficientBalanceError) Code() ConsensusErrorCode {
	return CodeIdentityInsufficientBalance
}
func (e *IdentityInsufficientBalanceError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.IdentityID[:])
	w.WriteVarint(uint64(e.Balance))
	w.WriteVarint(uint64(e.Required))
}
func (e *IdentityInsufficientBalanceError) consensusError() {}

// IdentityAlreadyExistsError 身份创建目标 ID 已存在
type IdentityAlreadyExistsError struct {
	IdentityID Identifier
}

func (e *IdentityAlreadyExistsError) Error() string {
	return fmt.Sprintf("identity %s already exists", e.IdentityID)
}
func (e *IdentityAlreadyExistsError) Code() ConsensusErrorCode      { return CodeIdentityAlreadyExists }
func (e *IdentityAlreadyExistsError) EncodePayload(w *codec.Writer) { w.WriteFixed(e.IdentityID[:]) }
func (e *IdentityAlreadyExistsError) consensusError()               {}

// DataContractAlreadyPresentError 合约创建目标 ID 已存在
type DataContractAlreadyPresentError struct {
	ContractID Identifier
}

func (e *DataContractAlreadyPresentError) Error() string {
	return fmt.Sprintf("data contract %s already present", e.ContractID)
}
func (e *DataContractAlreadyPresentError) Code() ConsensusErrorCode {
	return CodeDataContractAlreadyPresent
}
func (e *DataContractAlreadyPresentError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.ContractID[:])
}
func (e *DataContractAlreadyPresentError) consensusError() {}

// DataContractNotPresentError 引用的合约不存在
type DataContractNotPresentError struct {
	ContractID Identifier
}

func (e *DataContractNotPresentError) Error() string {
	return fmt.Sprintf("data contract %s not present", e.ContractID)
}
func (e *DataContractNotPresentError) Code() ConsensusErrorCode      { return CodeDataContractNotPresent }
func (e *DataContractNotPresentError) EncodePayload(w *codec.Writer) { w.WriteFixed(e.ContractID[:]) }
func (e *DataContractNotPresentError) consensusError()               {}

// DataContractHaveNewUniqueIndexError 合约更新新增唯一索引
type DataContractHaveNewUniqueIndexError struct {
	DocumentType string
	IndexName    string
}

func (e *DataContractHaveNewUniqueIndexError) Error() string {
	return fmt.Sprintf("contract update adds new unique index %q to document type %q", e.IndexName, e.DocumentType)
}
func (e *DataContractHaveNewUniqueIndexError) Code() ConsensusErrorCode {
	return CodeDataContractHaveNewUniqueIndex
}
func (e *DataContractHaveNewUniqueIndexError) EncodePayload(w *codec.Writer) {
	w.WriteString(e.DocumentType)
	w.WriteString(e.IndexName)
}
func (e *DataContractHaveNewUniqueIndexError) consensusError() {}

// DataContractImmutablePropertiesUpdateError 合约更新修改了不可变字段
type DataContractImmutablePropertiesUpdateError struct {
	Property string
}

func (e *DataContractImmutablePropertiesUpdateError) Error() string {
	return fmt.Sprintf("contract update modifies immutable property %q", e.Property)
}
func (e *DataContractImmutablePropertiesUpdateError) Code() ConsensusErrorCode {
	return CodeDataContractImmutablePropertiesUpdate
}
func (e *DataContractImmutablePropertiesUpdateError) EncodePayload(w *codec.Writer) {
	w.WriteString(e.Property)
}
func (e *DataContractImmutablePropertiesUpdateError) consensusError() {}

// DocumentAlreadyPresentError 文档创建目标 ID 已存在
type DocumentAlreadyPresentError struct {
	DocumentID Identifier
}

func (e *DocumentAlreadyPresentError) Error() string {
	return fmt.Sprintf("document %s already present", e.DocumentID)
}
func (e *DocumentAlreadyPresentError) Code() ConsensusErrorCode      { return CodeDocumentAlreadyPresent }
func (e *DocumentAlreadyPresentError) EncodePayload(w *codec.Writer) { w.WriteFixed(e.DocumentID[:]) }
func (e *DocumentAlreadyPresentError) consensusError()               {}

// DocumentNotFoundError 变更目标文档不存在
type DocumentNotFoundError struct {
	DocumentID Identifier
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %s not found", e.DocumentID)
}
func (e *DocumentNotFoundError) Code() ConsensusErrorCode      { return CodeDocumentNotFound }
func (e *DocumentNotFoundError) EncodePayload(w *codec.Writer) { w.WriteFixed(e.DocumentID[:]) }
func (e *DocumentNotFoundError) consensusError()               {}

// InvalidDocumentRevisionError 客户端修订号与链上当前值不符（过期修订）
type InvalidDocumentRevisionError struct {
	DocumentID       Identifier
	CurrentRevision  uint64
	ReceivedRevision uint64
}

func (e *InvalidDocumentRevisionError) Error() string {
	return fmt.Sprintf("document %s revision mismatch: current %d, received %d", e.DocumentID, e.CurrentRevision, e.ReceivedRevision)
}
func (e *InvalidDocumentRevisionError) Code() ConsensusErrorCode { return CodeInvalidDocumentRevision }
func (e *InvalidDocumentRevisionError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.DocumentID[:])
	w.WriteVarint(e.CurrentRevision)
	w.WriteVarint(e.ReceivedRevision)
}
func (e *InvalidDocumentRevisionError) consensusError() {}

// DocumentOwnerIDMismatchError 转换所有者与文档所有者不符
type DocumentOwnerIDMismatchError struct {
	DocumentID        Identifier
	DocumentOwnerID   Identifier
	TransitionOwnerID Identifier
}

func (e *DocumentOwnerIDMismatchError) Error() string {
	return fmt.Sprintf("document %s is owned by %s, transition submitted by %s", e.DocumentID, e.DocumentOwnerID, e.TransitionOwnerID)
}
func (e *DocumentOwnerIDMismatchError) Code() ConsensusErrorCode { return CodeDocumentOwnerIDMismatch }
func (e *DocumentOwnerIDMismatchError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.DocumentID[:])
	w.WriteFixed(e.DocumentOwnerID[:])
	w.WriteFixed(e.TransitionOwnerID[:])
}
func (e *DocumentOwnerIDMismatchError) consensusError() {}

// DuplicateUniqueIndexError 唯一索引取值与既有文档冲突
type DuplicateUniqueIndexError struct {
	DocumentID Identifier
	IndexName  string
}

func (e *DuplicateUniqueIndexError) Error() string {
	return fmt.Sprintf("document %s violates unique index %q", e.DocumentID, e.IndexName)
}
func (e *DuplicateUniqueIndexError) Code() ConsensusErrorCode { return CodeDuplicateUniqueIndex }
func (e *DuplicateUniqueIndexError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.DocumentID[:])
	w.WriteString(e.IndexName)
}
func (e *DuplicateUniqueIndexError) consensusError() {}

// InconsistentCompoundIndexDataError 复合索引属性只设置了一部分
type InconsistentCompoundIndexDataError struct {
	DocumentType string
	IndexName    string
}

func (e *InconsistentCompoundIndexDataError) Error() string {
	return fmt.Sprintf("compound index %q of document type %q has partially set properties", e.IndexName, e.DocumentType)
}
func (e *InconsistentCompoundIndexDataError) Code() ConsensusErrorCode {
	return CodeInconsistentCompoundIndexData
}
func (e *InconsistentCompoundIndexDataError) EncodePayload(w *codec.Writer) {
	w.WriteString(e.DocumentType)
	w.WriteString(e.IndexName)
}
func (e *InconsistentCompoundIndexDataError) consensusError() {}

// DocumentContestNotPaidForError 竞争索引文档未预付投票费用
type DocumentContestNotPaidForError struct {
	DocumentID Identifier
}

func (e *DocumentContestNotPaidForError) Error() string {
	return fmt.Sprintf("contested document %s requires prefunded voting balance", e.DocumentID)
}
func (e *DocumentContestNotPaidForError) Code() ConsensusErrorCode {
	return CodeDocumentContestNotPaidFor
}
func (e *DocumentContestNotPaidForError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.DocumentID[:])
}
func (e *DocumentContestNotPaidForError) consensusError() {}

// DocumentIncorrectPurchasePriceError 购买出价与挂牌价不符
type DocumentIncorrectPurchasePriceError struct {
	DocumentID    Identifier
	OfferedPrice  Credits
	RequiredPrice Credits
}

func (e *DocumentIncorrectPurchasePriceError) Error() string {
	return fmt.Sprintf("document %s purchase offered %d, listed price is %d", e.DocumentID, e.OfferedPrice, e.RequiredPrice)
}
func (e *DocumentIncorrectPurchasePriceError) Code() ConsensusErrorCode {
	return CodeDocumentIncorrectPurchasePrice
}
func (e *DocumentIncorrectPurchasePriceError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.DocumentID[:])
	w.WriteVarint(uint64(e.OfferedPrice))
	w.WriteVarint(uint64(e.RequiredPrice))
}
func (e *DocumentIncorrectPurchasePriceError) consensusError() {}

// UnauthorizedTokenActionError 身份无权执行该代币操作
type UnauthorizedTokenActionError struct {
	TokenID    Identifier
	IdentityID Identifier
	Action     string
}

func (e *UnauthorizedTokenActionError) Error() string {
	return fmt.Sprintf("identity %s is not authorized for token %s action %s", e.IdentityID, e.TokenID, e.Action)
}
func (e *UnauthorizedTokenActionError) Code() ConsensusErrorCode { return CodeUnauthorizedTokenAction }
func (e *UnauthorizedTokenActionError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.TokenID[:])
	w.WriteFixed(e.IdentityID[:])
	w.WriteString(e.Action)
}
func (e *UnauthorizedTokenActionError) consensusError() {}

// TokenSettingMaxSupplyToLessThanCurrentSupplyError 供应上限低于当前流通量
type TokenSettingMaxSupplyToLessThanCurrentSupplyError struct {
	TokenID       Identifier
	MaxSupply     TokenAmount
	CurrentSupply TokenAmount
}

func (e *TokenSettingMaxSupplyToLessThanCurrentSupplyError) Error() string {
	return fmt.Sprintf("token %s max supply %d is below current supply %d", e.TokenID, e.MaxSupply, e.CurrentSupply)
}
func (e *TokenSettingMaxSupplyToLessThanCurrentSupplyError) Code() ConsensusErrorCode {
	return CodeTokenSettingMaxSupplyToLessThanCurrentSupply
}
func (e *TokenSettingMaxSupplyToLessThanCurrentSupplyError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.TokenID[:])
	w.WriteVarint(uint64(e.MaxSupply))
	w.WriteVarint(uint64(e.CurrentSupply))
}
func (e *TokenSettingMaxSupplyToLessThanCurrentSupplyError) consensusError() {}

// TokenMintPastMaxSupplyError 铸造会突破供应上限
type TokenMintPastMaxSupplyError struct {
	TokenID   Identifier
	Amount    TokenAmount
	MaxSupply TokenAmount
}

func (e *TokenMintPastMaxSupplyError) Error() string {
	return fmt.Sprintf("minting %d of token %s would exceed max supply %d", e.Amount, e.TokenID, e.MaxSupply)
}
func (e *TokenMintPastMaxSupplyError) Code() ConsensusErrorCode { return CodeTokenMintPastMaxSupply }
func (e *TokenMintPastMaxSupplyError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.TokenID[:])
	w.WriteVarint(uint64(e.Amount))
	w.WriteVarint(uint64(e.MaxSupply))
}
func (e *TokenMintPastMaxSupplyError) consensusError() {}

// TokenDirectPurchaseUserPriceTooLowError 直购出价低于要求价格
type TokenDirectPurchaseUserPriceTooLowError struct {
	OfferedPrice  Credits
	RequiredPrice Credits
}

func (e *TokenDirectPurchaseUserPriceTooLowError) Error() string {
	return fmt.Sprintf("direct purchase offered price %d is below required %d", e.OfferedPrice, e.RequiredPrice)
}
func (e *TokenDirectPurchaseUserPriceTooLowError) Code() ConsensusErrorCode {
	return CodeTokenDirectPurchaseUserPriceTooLow
}
func (e *TokenDirectPurchaseUserPriceTooLowError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.OfferedPrice))
	w.WriteVarint(uint64(e.RequiredPrice))
}
func (e *TokenDirectPurchaseUserPriceTooLowError) consensusError() {}

// TokenAmountUnderMinimumSaleAmountError 购买数量低于最小出售数量
type TokenAmountUnderMinimumSaleAmountError struct {
	Amount  TokenAmount
	Minimum TokenAmount
}

func (e *TokenAmountUnderMinimumSaleAmountError) Error() string {
	return fmt.Sprintf("token purchase amount %d is under minimum sale amount %d", e.Amount, e.Minimum)
}
func (e *TokenAmountUnderMinimumSaleAmountError) Code() ConsensusErrorCode {
	return CodeTokenAmountUnderMinimumSaleAmount
}
func (e *TokenAmountUnderMinimumSaleAmountError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.Amount))
	w.WriteVarint(uint64(e.Minimum))
}
func (e *TokenAmountUnderMinimumSaleAmountError) consensusError() {}

// TokenNotForDirectSaleError 代币未设置直购价格
type TokenNotForDirectSaleError struct {
	TokenID Identifier
}

func (e *TokenNotForDirectSaleError) Error() string {
	return fmt.Sprintf("token %s is not for direct sale", e.TokenID)
}
func (e *TokenNotForDirectSaleError) Code() ConsensusErrorCode      { return CodeTokenNotForDirectSale }
func (e *TokenNotForDirectSaleError) EncodePayload(w *codec.Writer) { w.WriteFixed(e.TokenID[:]) }
func (e *TokenNotForDirectSaleError) consensusError()               {}

// IdentityTokenAccountFrozenError 身份的代币账户被冻结
type IdentityTokenAccountFrozenError struct {
	TokenID    Identifier
	IdentityID Identifier
}

func (e *IdentityTokenAccountFrozenError) Error() string {
	return fmt.Sprintf("token %s account of identity %s is frozen", e.TokenID, e.IdentityID)
}
func (e *IdentityTokenAccountFrozenError) Code() ConsensusErrorCode {
	return CodeIdentityTokenAccountFrozen
}
func (e *IdentityTokenAccountFrozenError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.TokenID[:])
	w.WriteFixed(e.IdentityID[:])
}
func (e *IdentityTokenAccountFrozenError) consensusError() {}

// TokenClaimPropertyMismatchError 申领与分配规则的属性不符
//
// 源实现中 claim/release 两个重命名变体表达同一条件，这里合并为单一代码。
type TokenClaimPropertyMismatchError struct {
	TokenID  Identifier
	Property string
}

func (e *TokenClaimPropertyMismatchError) Error() string {
	return fmt.Sprintf("token %s claim property %q does not match distribution rules", e.TokenID, e.Property)
}
func (e *TokenClaimPropertyMismatchError) Code() ConsensusErrorCode {
	return CodeTokenClaimPropertyMismatch
}
func (e *TokenClaimPropertyMismatchError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.TokenID[:])
	w.WriteString(e.Property)
}
func (e *TokenClaimPropertyMismatchError) consensusError() {}

// IdentityNotMemberOfGroupError 签名者不是该群组成员
type IdentityNotMemberOfGroupError struct {
	IdentityID Identifier
	Position   GroupContractPosition
}

func (e *IdentityNotMemberOfGroupError) Error() string {
	return fmt.Sprintf("identity %s is not a member of group at position %d", e.IdentityID, e.Position)
}
func (e *IdentityNotMemberOfGroupError) Code() ConsensusErrorCode {
	return CodeIdentityNotMemberOfGroup
}
func (e *IdentityNotMemberOfGroupError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.IdentityID[:])
	w.WriteVarint(uint64(e.Position))
}
func (e *IdentityNotMemberOfGroupError) consensusError() {}

// GroupActionAlreadyCompletedError 群组动作已关闭
type GroupActionAlreadyCompletedError struct {
	ActionID Identifier
}

func (e *GroupActionAlreadyCompletedError) Error() string {
	return fmt.Sprintf("group action %s already completed", e.ActionID)
}
func (e *GroupActionAlreadyCompletedError) Code() ConsensusErrorCode {
	return CodeGroupActionAlreadyCompleted
}
func (e *GroupActionAlreadyCompletedError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.ActionID[:])
}
func (e *GroupActionAlreadyCompletedError) consensusError() {}

// GroupActionAlreadySignedByIdentityError 同一成员重复签署未关闭动作
type GroupActionAlreadySignedByIdentityError struct {
	ActionID   Identifier
	IdentityID Identifier
}

func (e *GroupActionAlreadySignedByIdentityError) Error() string {
	return fmt.Sprintf("group action %s already signed by identity %s", e.ActionID, e.IdentityID)
}
func (e *GroupActionAlreadySignedByIdentityError) Code() ConsensusErrorCode {
	return CodeGroupActionAlreadySignedByIdentity
}
func (e *GroupActionAlreadySignedByIdentityError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.ActionID[:])
	w.WriteFixed(e.IdentityID[:])
}
func (e *GroupActionAlreadySignedByIdentityError) consensusError() {}

// MasternodeIncorrectVotingAddressError 投票者不持有主节点当前投票密钥
type MasternodeIncorrectVotingAddressError struct {
	ProTxHash Identifier
	VoterID   Identifier
}

func (e *MasternodeIncorrectVotingAddressError) Error() string {
	return fmt.Sprintf("identity %s does not hold the voting key of masternode %s", e.VoterID, e.ProTxHash)
}
func (e *MasternodeIncorrectVotingAddressError) Code() ConsensusErrorCode {
	return CodeMasternodeIncorrectVotingAddress
}
func (e *MasternodeIncorrectVotingAddressError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.ProTxHash[:])
	w.WriteFixed(e.VoterID[:])
}
func (e *MasternodeIncorrectVotingAddressError) consensusError() {}

// MasternodeNotFoundError 主节点不存在
type MasternodeNotFoundError struct {
	ProTxHash Identifier
}

func (e *MasternodeNotFoundError) Error() string {
	return fmt.Sprintf("masternode %s not found", e.ProTxHash)
}
func (e *MasternodeNotFoundError) Code() ConsensusErrorCode      { return CodeMasternodeNotFound }
func (e *MasternodeNotFoundError) EncodePayload(w *codec.Writer) { w.WriteFixed(e.ProTxHash[:]) }
func (e *MasternodeNotFoundError) consensusError()               {}

// VotePollNotAvailableForVotingError 投票议题不存在或已结束
type VotePollNotAvailableForVotingError struct {
	PollID Identifier
}

func (e *VotePollNotAvailableForVotingError) Error() string {
	return fmt.Sprintf("vote poll %s is not available for voting", e.PollID)
}
func (e *VotePollNotAvailableForVotingError) Code() ConsensusErrorCode {
	return CodeVotePollNotAvailableForVoting
}
func (e *VotePollNotAvailableForVotingError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.PollID[:])
}
func (e *VotePollNotAvailableForVotingError) consensusError() {}

// InvalidIdentityNonceError 身份-合约 nonce 与期望值不符（重放保护）
type InvalidIdentityNonceError struct {
	IdentityID    Identifier
	ContractID    Identifier
	ExpectedNonce uint64
	ReceivedNonce uint64
}

func (e *InvalidIdentityNonceError) Error() string {
	return fmt.Sprintf("identity %s contract %s nonce mismatch: expected %d, received %d", e.IdentityID, e.ContractID, e.ExpectedNonce, e.ReceivedNonce)
}
func (e *InvalidIdentityNonceError) Code() ConsensusErrorCode { return CodeInvalidIdentityNonce }
func (e *InvalidIdentityNonceError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.IdentityID[:])
	w.WriteFixed(e.ContractID[:])
	w.WriteVarint(e.ExpectedNonce)
	w.WriteVarint(e.ReceivedNonce)
}
func (e *InvalidIdentityNonceError) consensusError() {}

// DataTriggerConditionError 数据触发器否决转换
type DataTriggerConditionError struct {
	ContractID Identifier
	DocumentID Identifier
	Message    string
}

func (e *DataTriggerConditionError) Error() string {
	return fmt.Sprintf("data trigger rejected document %s of contract %s: %s", e.DocumentID, e.ContractID, e.Message)
}
func (e *DataTriggerConditionError) Code() ConsensusErrorCode { return CodeDataTriggerCondition }
func (e *DataTriggerConditionError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.ContractID[:])
	w.WriteFixed(e.DocumentID[:])
	w.WriteString(e.Message)
}
func (e *DataTriggerConditionError) consensusError() {}

// DataTriggerExecutionError 数据触发器执行失败
type DataTriggerExecutionError struct {
	ContractID Identifier
	Message    string
}

func (e *DataTriggerExecutionError) Error() string {
	return fmt.Sprintf("data trigger execution failed for contract %s: %s", e.ContractID, e.Message)
}
func (e *DataTriggerExecutionError) Code() ConsensusErrorCode { return CodeDataTriggerExecution }
func (e *DataTriggerExecutionError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.ContractID[:])
	w.WriteString(e.Message)
}
func (e *DataTriggerExecutionError) consensusError() {}

// IdentityPublicKeyIsReadOnlyError 尝试修改只读公钥
type IdentityPublicKeyIsReadOnlyError struct {
	KeyID KeyID
}

func (e *IdentityPublicKeyIsReadOnlyError) Error() string {
	return fmt.Sprintf("identity public key %d is read only", e.KeyID)
}
func (e *IdentityPublicKeyIsReadOnlyError) Code() ConsensusErrorCode {
	return CodeIdentityPublicKeyIsReadOnly
}
func (e *IdentityPublicKeyIsReadOnlyError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.KeyID))
}
func (e *IdentityPublicKeyIsReadOnlyError) consensusError() {}

// IdentityPublicKeyAlreadyDisabledError 重复禁用公钥（disabled_at 单调，不可重开）
type IdentityPublicKeyAlreadyDisabledError struct {
	KeyID KeyID
}

func (e *IdentityPublicKeyAlreadyDisabledError) Error() string {
	return fmt.Sprintf("identity public key %d is already disabled", e.KeyID)
}
func (e *IdentityPublicKeyAlreadyDisabledError) Code() ConsensusErrorCode {
	return CodeIdentityPublicKeyAlreadyDisabled
}
func (e *IdentityPublicKeyAlreadyDisabledError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.KeyID))
}
func (e *IdentityPublicKeyAlreadyDisabledError) consensusError() {}

// RecipientIdentityNotFoundError 转账/转移的接收身份不存在
type RecipientIdentityNotFoundError struct {
	IdentityID Identifier
}

func (e *RecipientIdentityNotFoundError) Error() string {
	return fmt.Sprintf("recipient identity %s not found", e.IdentityID)
}
func (e *RecipientIdentityNotFoundError) Code() ConsensusErrorCode {
	return CodeRecipientIdentityNotFound
}
func (e *RecipientIdentityNotFoundError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.IdentityID[:])
}
func (e *RecipientIdentityNotFoundError) consensusError() {}

// TokenIsPausedError 代币处于紧急暂停状态
type TokenIsPausedError struct {
	TokenID Identifier
}

func (e *TokenIsPausedError) Error() string {
	return fmt.Sprintf("token %s is paused by emergency action", e.TokenID)
}
func (e *TokenIsPausedError) Code() ConsensusErrorCode      { return CodeTokenIsPaused }
func (e *TokenIsPausedError) EncodePayload(w *codec.Writer) { w.WriteFixed(e.TokenID[:]) }
func (e *TokenIsPausedError) consensusError()               {}

// IdentityTokenBalanceInsufficientError 代币余额不足
type IdentityTokenBalanceInsufficientError struct {
	TokenID    Identifier
	IdentityID Identifier
	Balance    TokenAmount
	Required   TokenAmount
}

func (e *IdentityTokenBalanceInsufficientError) Error() string {
	return fmt.Sprintf("identity %s token %s balance %d insufficient, required %d", e.IdentityID, e.TokenID, e.Balance, e.Required)
}
func (e *IdentityTokenBalanceInsufficientError) Code() ConsensusErrorCode {
	return CodeIdentityTokenBalanceInsufficient
}
func (e *IdentityTokenBalanceInsufficientError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.TokenID[:])
	w.WriteFixed(e.IdentityID[:])
	w.WriteVarint(uint64(e.Balance))
	w.WriteVarint(uint64(e.Required))
}
func (e *IdentityTokenBalanceInsufficientError) consensusError() {}

// InvalidIdentityRevisionError 身份更新修订号与存储值不连续
type InvalidIdentityRevisionError struct {
	IdentityID       Identifier
	CurrentRevision  uint64
	ReceivedRevision uint64
}

func (e *InvalidIdentityRevisionError) Error() string {
	return fmt.Sprintf("identity %s revision %d received, stored revision is %d", e.IdentityID, e.ReceivedRevision, e.CurrentRevision)
}
func (e *InvalidIdentityRevisionError) Code() ConsensusErrorCode { return CodeInvalidIdentityRevision }
func (e *InvalidIdentityRevisionError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.IdentityID[:])
	w.WriteVarint(e.CurrentRevision)
	w.WriteVarint(e.ReceivedRevision)
}
func (e *InvalidIdentityRevisionError) consensusError() {}
