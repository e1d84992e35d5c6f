package types

import (
	"fmt"

	"github.com/evoplatform/v1/pkg/codec"
)

// 结构/基础错误代码（10xx）
const (
	CodeUnknownVersionMismatch                        ConsensusErrorCode = 1001
	CodeUnsupportedProtocolVersion                    ConsensusErrorCode = 1002
	CodeStateTransitionDecode                         ConsensusErrorCode = 1003
	CodeZeroTokenAmount                               ConsensusErrorCode = 1010
	CodeInvalidTokenAmount                            ConsensusErrorCode = 1011
	CodeInvalidTokenNoteTooBig                        ConsensusErrorCode = 1012
	CodeZeroTokenPrice                                ConsensusErrorCode = 1013
	CodeInvalidTokenPrice                             ConsensusErrorCode = 1014
	CodeDataContractEmptySchema                       ConsensusErrorCode = 1020
	CodeNonContiguousContractGroupPositions           ConsensusErrorCode = 1021
	CodeNonContiguousContractTokenPositions           ConsensusErrorCode = 1022
	CodeBatchTransitionsEmpty                         ConsensusErrorCode = 1023
	CodeInvalidDocumentType                           ConsensusErrorCode = 1024
	CodeDocumentNoRevision                            ConsensusErrorCode = 1025
	CodeContestedUniqueIndexOnMutableDocumentType     ConsensusErrorCode = 1026
	CodeInvalidDocumentProperties                     ConsensusErrorCode = 1027
	CodeGroupTooFewMembers                            ConsensusErrorCode = 1028
	CodeDuplicatedIdentityPublicKeyID                 ConsensusErrorCode = 1029
	CodeInvalidTokenPosition                          ConsensusErrorCode = 1030
)

func init() {
	registerConsensusError(CodeUnknownVersionMismatch, func(r *codec.Reader) (ConsensusError, error) {
		e := &UnknownVersionMismatchError{}
		var err error
		if e.Method, err = r.ReadString(); err != nil {
			return nil, err
		}
		received, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		e.Received = received
		latest, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		e.LatestKnown = latest
		return e, nil
	})
	registerConsensusError(CodeUnsupportedProtocolVersion, func(r *codec.Reader) (ConsensusError, error) {
		e := &UnsupportedProtocolVersionError{}
		v, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		e.Received = ProtocolVersion(v)
		if v, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		e.Min = ProtocolVersion(v)
		if v, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		e.Max = ProtocolVersion(v)
		return e, nil
	})
	registerConsensusError(CodeStateTransitionDecode, func(r *codec.Reader) (ConsensusError, error) {
		msg, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return &StateTransitionDecodeError{Message: msg}, nil
	})
	registerConsensusError(CodeZeroTokenAmount, func(r *codec.Reader) (ConsensusError, error) {
		return &ZeroTokenAmountError{}, nil
	})
	registerConsensusError(CodeInvalidTokenAmount, func(r *codec.Reader) (ConsensusError, error) {
		amount, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		max, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &InvalidTokenAmountError{Amount: TokenAmount(amount), MaxAmount: TokenAmount(max)}, nil
	})
	registerConsensusError(CodeInvalidTokenNoteTooBig, func(r *codec.Reader) (ConsensusError, error) {
		length, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		max, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &InvalidTokenNoteTooBigError{Length: int(length), MaxLength: int(max)}, nil
	})
	registerConsensusError(CodeZeroTokenPrice, func(r *codec.Reader) (ConsensusError, error) {
		return &ZeroTokenPriceError{}, nil
	})
	registerConsensusError(CodeInvalidTokenPrice, func(r *codec.Reader) (ConsensusError, error) {
		price, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &InvalidTokenPriceError{Price: Credits(price)}, nil
	})
	registerConsensusError(CodeDataContractEmptySchema, func(r *codec.Reader) (ConsensusError, error) {
		id, err := readIdentifier(r)
		if err != nil {
			return nil, err
		}
		return &DataContractEmptySchemaError{ContractID: id}, nil
	})
	registerConsensusError(CodeNonContiguousContractGroupPositions, func(r *codec.Reader) (ConsensusError, error) {
		expected, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		found, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &NonContiguousContractGroupPositionsError{
			ExpectedPosition: GroupContractPosition(expected),
			FoundPosition:    GroupContractPosition(found),
		}, nil
	})
	registerConsensusError(CodeNonContiguousContractTokenPositions, func(r *codec.Reader) (ConsensusError, error) {
		expected, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		found, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &NonContiguousContractTokenPositionsError{
			ExpectedPosition: TokenContractPosition(expected),
			FoundPosition:    TokenContractPosition(found),
		}, nil
	})
	registerConsensusError(CodeBatchTransitionsEmpty, func(r *codec.Reader) (ConsensusError, error) {
		return &BatchTransitionsEmptyError{}, nil
	})
	registerConsensusError(CodeInvalidDocumentType, func(r *codec.Reader) (ConsensusError, error) {
		id, err := readIdentifier(r)
		if err != nil {
			return nil, err
		}
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return &InvalidDocumentTypeError{ContractID: id, DocumentType: name}, nil
	})
	registerConsensusError(CodeDocumentNoRevision, func(r *codec.Reader) (ConsensusError, error) {
		id, err := readIdentifier(r)
		if err != nil {
			return nil, err
		}
		return &DocumentNoRevisionError{DocumentID: id}, nil
	})
	registerConsensusError(CodeContestedUniqueIndexOnMutableDocumentType, func(r *codec.Reader) (ConsensusError, error) {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		index, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return &ContestedUniqueIndexOnMutableDocumentTypeError{DocumentType: name, IndexName: index}, nil
	})
	registerConsensusError(CodeInvalidDocumentProperties, func(r *codec.Reader) (ConsensusError, error) {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		detail, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return &InvalidDocumentPropertiesError{DocumentType: name, Detail: detail}, nil
	})
	registerConsensusError(CodeGroupTooFewMembers, func(r *codec.Reader) (ConsensusError, error) {
		position, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		count, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &GroupTooFewMembersError{Position: GroupContractPosition(position), MemberCount: int(count)}, nil
	})
	registerConsensusError(CodeDuplicatedIdentityPublicKeyID, func(r *codec.Reader) (ConsensusError, error) {
		id, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &DuplicatedIdentityPublicKeyIDError{KeyID: KeyID(id)}, nil
	})
	registerConsensusError(CodeInvalidTokenPosition, func(r *codec.Reader) (ConsensusError, error) {
		contractID, err := readIdentifier(r)
		if err != nil {
			return nil, err
		}
		position, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &InvalidTokenPositionError{ContractID: contractID, Position: TokenContractPosition(position)}, nil
	})
}

// readIdentifier 读取定长标识符
func readIdentifier(r *codec.Reader) (Identifier, error) {
	raw, err := r.ReadFixed(IdentifierLength)
	if err != nil {
		return Identifier{}, err
	}
	return NewIdentifierFromBytes(raw)
}

// UnknownVersionMismatchError 未知版本标签（致命，不可重试）
type UnknownVersionMismatchError struct {
	Method      string // 发生分派失败的操作名
	Received    uint64 // 收到的版本标签
	LatestKnown uint64 // 本节点已知的最大版本
}

func (e *UnknownVersionMismatchError) Error() string {
	return fmt.Sprintf("unknown version %d for %s (latest known %d)", e.Received, e.Method, e.LatestKnown)
}
func (e *UnknownVersionMismatchError) Code() ConsensusErrorCode { return CodeUnknownVersionMismatch }
func (e *UnknownVersionMismatchError) EncodePayload(w *codec.Writer) {
	w.WriteString(e.Method)
	w.WriteVarint(e.Received)
	w.WriteVarint(e.LatestKnown)
}
func (e *UnknownVersionMismatchError) consensusError() {}

// UnsupportedProtocolVersionError 声明的协议版本不在支持窗口内
type UnsupportedProtocolVersionError struct {
	Received ProtocolVersion
	Min      ProtocolVersion
	Max      ProtocolVersion
}

func (e *UnsupportedProtocolVersionError) Error() string {
	return fmt.Sprintf("protocol version %d outside supported range [%d, %d]", e.Received, e.Min, e.Max)
}
func (e *UnsupportedProtocolVersionError) Code() ConsensusErrorCode {
	return CodeUnsupportedProtocolVersion
}
func (e *UnsupportedProtocolVersionError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.Received))
	w.WriteVarint(uint64(e.Min))
	w.WriteVarint(uint64(e.Max))
}
func (e *UnsupportedProtocolVersionError) consensusError() {}

// StateTransitionDecodeError 状态转换载荷残缺或字段越界
type StateTransitionDecodeError struct {
	Message string
}

func (e *StateTransitionDecodeError) Error() string {
	return fmt.Sprintf("state transition decode failed: %s", e.Message)
}
func (e *StateTransitionDecodeError) Code() ConsensusErrorCode    { return CodeStateTransitionDecode }
func (e *StateTransitionDecodeError) EncodePayload(w *codec.Writer) { w.WriteString(e.Message) }
func (e *StateTransitionDecodeError) consensusError()             {}

// ZeroTokenAmountError 代币数量为零
type ZeroTokenAmountError struct{}

func (e *ZeroTokenAmountError) Error() string                  { return "token amount must be greater than zero" }
func (e *ZeroTokenAmountError) Code() ConsensusErrorCode       { return CodeZeroTokenAmount }
func (e *ZeroTokenAmountError) EncodePayload(w *codec.Writer)  {}
func (e *ZeroTokenAmountError) consensusError()                {}

// InvalidTokenAmountError 代币数量超出上限
type InvalidTokenAmountError struct {
	Amount    TokenAmount
	MaxAmount TokenAmount
}

func (e *InvalidTokenAmountError) Error() string {
	return fmt.Sprintf("token amount %d exceeds maximum %d", e.Amount, e.MaxAmount)
}
func (e *InvalidTokenAmountError) Code() ConsensusErrorCode { return CodeInvalidTokenAmount }
func (e *InvalidTokenAmountError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.Amount))
	w.WriteVarint(uint64(e.MaxAmount))
}
func (e *InvalidTokenAmountError) consensusError() {}

// InvalidTokenNoteTooBigError 公开备注超长
type InvalidTokenNoteTooBigError struct {
	Length    int
	MaxLength int
}

func (e *InvalidTokenNoteTooBigError) Error() string {
	return fmt.Sprintf("token note length %d exceeds maximum %d", e.Length, e.MaxLength)
}
func (e *InvalidTokenNoteTooBigError) Code() ConsensusErrorCode { return CodeInvalidTokenNoteTooBig }
func (e *InvalidTokenNoteTooBigError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.Length))
	w.WriteVarint(uint64(e.MaxLength))
}
func (e *InvalidTokenNoteTooBigError) consensusError() {}

// ZeroTokenPriceError 代币价格为零
type ZeroTokenPriceError struct{}

func (e *ZeroTokenPriceError) Error() string                 { return "token price must be greater than zero" }
func (e *ZeroTokenPriceError) Code() ConsensusErrorCode      { return CodeZeroTokenPrice }
func (e *ZeroTokenPriceError) EncodePayload(w *codec.Writer) {}
func (e *ZeroTokenPriceError) consensusError()               {}

// InvalidTokenPriceError 代币价格超出积分上限
type InvalidTokenPriceError struct {
	Price Credits
}

func (e *InvalidTokenPriceError) Error() string {
	return fmt.Sprintf("token price %d exceeds maximum credits %d", e.Price, MaxCredits)
}
func (e *InvalidTokenPriceError) Code() ConsensusErrorCode       { return CodeInvalidTokenPrice }
func (e *InvalidTokenPriceError) EncodePayload(w *codec.Writer)  { w.WriteVarint(uint64(e.Price)) }
func (e *InvalidTokenPriceError) consensusError()                {}

// DataContractEmptySchemaError 数据合约既无文档类型也无代币
type DataContractEmptySchemaError struct {
	ContractID Identifier
}

func (e *DataContractEmptySchemaError) Error() string {
	return fmt.Sprintf("data contract %s defines no document types and no tokens", e.ContractID)
}
func (e *DataContractEmptySchemaError) Code() ConsensusErrorCode { return CodeDataContractEmptySchema }
func (e *DataContractEmptySchemaError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.ContractID[:])
}
func (e *DataContractEmptySchemaError) consensusError() {}

// NonContiguousContractGroupPositionsError 群组位置不连续
type NonContiguousContractGroupPositionsError struct {
	ExpectedPosition GroupContractPosition
	FoundPosition    GroupContractPosition
}

func (e *NonContiguousContractGroupPositionsError) Error() string {
	return fmt.Sprintf("contract group positions must be contiguous: expected %d, found %d", e.ExpectedPosition, e.FoundPosition)
}
func (e *NonContiguousContractGroupPositionsError) Code() ConsensusErrorCode {
	return CodeNonContiguousContractGroupPositions
}
func (e *NonContiguousContractGroupPositionsError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.ExpectedPosition))
	w.WriteVarint(uint64(e.FoundPosition))
}
func (e *NonContiguousContractGroupPositionsError) consensusError() {}

// NonContiguousContractTokenPositionsError 代币位置不连续
type NonContiguousContractTokenPositionsError struct {
	ExpectedPosition TokenContractPosition
	FoundPosition    TokenContractPosition
}

func (e *NonContiguousContractTokenPositionsError) Error() string {
	return fmt.Sprintf("contract token positions must be contiguous: expected %d, found %d", e.ExpectedPosition, e.FoundPosition)
}
func (e *NonContiguousContractTokenPositionsError) Code() ConsensusErrorCode {
	return CodeNonContiguousContractTokenPositions
}
func (e *NonContiguousContractTokenPositionsError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.ExpectedPosition))
	w.WriteVarint(uint64(e.FoundPosition))
}
func (e *NonContiguousContractTokenPositionsError) consensusError() {}

// BatchTransitionsEmptyError 批量转换不含任何子转换
type BatchTransitionsEmptyError struct{}

func (e *BatchTransitionsEmptyError) Error() string {
	return "batch transition must contain at least one document or token transition"
}
func (e *BatchTransitionsEmptyError) Code() ConsensusErrorCode      { return CodeBatchTransitionsEmpty }
func (e *BatchTransitionsEmptyError) EncodePayload(w *codec.Writer) {}
func (e *BatchTransitionsEmptyError) consensusError()               {}

// InvalidDocumentTypeError 合约中不存在该文档类型
type InvalidDocumentTypeError struct {
	ContractID   Identifier
	DocumentType string
}

func (e *InvalidDocumentTypeError) Error() string {
	return fmt.Sprintf("contract %s has no document type %q", e.ContractID, e.DocumentType)
}
func (e *InvalidDocumentTypeError) Code() ConsensusErrorCode { return CodeInvalidDocumentType }
func (e *InvalidDocumentTypeError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.ContractID[:])
	w.WriteString(e.DocumentType)
}
func (e *InvalidDocumentTypeError) consensusError() {}

// DocumentNoRevisionError 变更类文档转换缺少修订号
type DocumentNoRevisionError struct {
	DocumentID Identifier
}

func (e *DocumentNoRevisionError) Error() string {
	return fmt.Sprintf("document %s transition requires a revision", e.DocumentID)
}
func (e *DocumentNoRevisionError) Code() ConsensusErrorCode      { return CodeDocumentNoRevision }
func (e *DocumentNoRevisionError) EncodePayload(w *codec.Writer) { w.WriteFixed(e.DocumentID[:]) }
func (e *DocumentNoRevisionError) consensusError()               {}

// ContestedUniqueIndexOnMutableDocumentTypeError 可变文档类型携带竞争唯一索引
type ContestedUniqueIndexOnMutableDocumentTypeError struct {
	DocumentType string
	IndexName    string
}

func (e *ContestedUniqueIndexOnMutableDocumentTypeError) Error() string {
	return fmt.Sprintf("document type %q is mutable and cannot host contested unique index %q", e.DocumentType, e.IndexName)
}
func (e *ContestedUniqueIndexOnMutableDocumentTypeError) Code() ConsensusErrorCode {
	return CodeContestedUniqueIndexOnMutableDocumentType
}
func (e *ContestedUniqueIndexOnMutableDocumentTypeError) EncodePayload(w *codec.Writer) {
	w.WriteString(e.DocumentType)
	w.WriteString(e.IndexName)
}
func (e *ContestedUniqueIndexOnMutableDocumentTypeError) consensusError() {}

// InvalidDocumentPropertiesError 文档属性未通过类型 schema 校验
type InvalidDocumentPropertiesError struct {
	DocumentType string
	Detail       string
}

func (e *InvalidDocumentPropertiesError) Error() string {
	return fmt.Sprintf("document properties invalid for type %q: %s", e.DocumentType, e.Detail)
}
func (e *InvalidDocumentPropertiesError) Code() ConsensusErrorCode {
	return CodeInvalidDocumentProperties
}
func (e *InvalidDocumentPropertiesError) EncodePayload(w *codec.Writer) {
	w.WriteString(e.DocumentType)
	w.WriteString(e.Detail)
}
func (e *InvalidDocumentPropertiesError) consensusError() {}

// GroupTooFewMembersError 群组成员不足两人
type GroupTooFewMembersError struct {
	Position    GroupContractPosition
	MemberCount int
}

func (e *GroupTooFewMembersError) Error() string {
	return fmt.Sprintf("group at position %d has %d members, minimum is 2", e.Position, e.MemberCount)
}
func (e *GroupTooFewMembersError) Code() ConsensusErrorCode { return CodeGroupTooFewMembers }
func (e *GroupTooFewMembersError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.Position))
	w.WriteVarint(uint64(e.MemberCount))
}
func (e *GroupTooFewMembersError) consensusError() {}

// DuplicatedIdentityPublicKeyIDError 身份创建/更新中的公钥 ID 重复
type DuplicatedIdentityPublicKeyIDError struct {
	KeyID KeyID
}

func (e *DuplicatedIdentityPublicKeyIDError) Error() string {
	return fmt.Sprintf("duplicated identity public key id %d", e.KeyID)
}
func (e *DuplicatedIdentityPublicKeyIDError) Code() ConsensusErrorCode {
	return CodeDuplicatedIdentityPublicKeyID
}
func (e *DuplicatedIdentityPublicKeyIDError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.KeyID))
}
func (e *DuplicatedIdentityPublicKeyIDError) consensusError() {}

// InvalidTokenPositionError 合约中不存在该代币位置
type InvalidTokenPositionError struct {
	ContractID Identifier
	Position   TokenContractPosition
}

func (e *InvalidTokenPositionError) Error() string {
	return fmt.Sprintf("contract %s has no token at position %d", e.ContractID, e.Position)
}
func (e *InvalidTokenPositionError) Code() ConsensusErrorCode { return CodeInvalidTokenPosition }
func (e *InvalidTokenPositionError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.ContractID[:])
	w.WriteVarint(uint64(e.Position))
}
func (e *InvalidTokenPositionError) consensusError() {}
