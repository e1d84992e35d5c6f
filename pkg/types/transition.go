// 文件说明：
// 状态转换是客户端提交的、未受信任的签名请求，是验证核心的输入。
// 外层线格式：[协议版本 varint][类别 varint][类别载荷（版本化信封）]。
// 各类别载荷的定义按主题分布在：
// - transition_identity.go 身份创建/充值/更新/转账/提现
// - transition_contract.go 合约创建/更新
// - transition_batch.go    文档与代币批量操作
// - transition_vote.go     主节点投票
package types

import (
	"fmt"

	"github.com/evoplatform/v1/pkg/codec"
)

// TransitionKind 状态转换类别（线格式标签，一经分配不可变更）
type TransitionKind uint8

const (
	KindIdentityCreate           TransitionKind = 0
	KindIdentityTopUp            TransitionKind = 1
	KindIdentityUpdate           TransitionKind = 2
	KindIdentityCreditTransfer   TransitionKind = 3
	KindIdentityCreditWithdrawal TransitionKind = 4
	KindDataContractCreate       TransitionKind = 5
	KindDataContractUpdate       TransitionKind = 6
	KindBatch                    TransitionKind = 7
	KindMasternodeVote           TransitionKind = 8
)

// String 返回类别的字符串表示
func (k TransitionKind) String() string {
	switch k {
	case KindIdentityCreate:
		return "identityCreate"
	case KindIdentityTopUp:
		return "identityTopUp"
	case KindIdentityUpdate:
		return "identityUpdate"
	case KindIdentityCreditTransfer:
		return "identityCreditTransfer"
	case KindIdentityCreditWithdrawal:
		return "identityCreditWithdrawal"
	case KindDataContractCreate:
		return "dataContractCreate"
	case KindDataContractUpdate:
		return "dataContractUpdate"
	case KindBatch:
		return "batch"
	case KindMasternodeVote:
		return "masternodeVote"
	default:
		return fmt.Sprintf("kind_%d", uint8(k))
	}
}

// StateTransition 状态转换外层封装
//
// 🎯 **功能**：每个类别恰有一个非 nil 载荷字段（由 Kind 指示）
type StateTransition struct {
	ProtocolVersion ProtocolVersion
	Kind            TransitionKind

	IdentityCreate           *IdentityCreateTransition
	IdentityTopUp            *IdentityTopUpTransition
	IdentityUpdate           *IdentityUpdateTransition
	IdentityCreditTransfer   *IdentityCreditTransferTransition
	IdentityCreditWithdrawal *IdentityCreditWithdrawalTransition
	DataContractCreate       *DataContractCreateTransition
	DataContractUpdate       *DataContractUpdateTransition
	Batch                    *BatchTransition
	MasternodeVote           *MasternodeVoteTransition
}

// OwnerID 返回提交者身份
//
// 身份创建转换的所有者是待创建身份本身（由资产锁定 outpoint 派生）。
func (st *StateTransition) OwnerID() Identifier {
	switch st.Kind {
	case KindIdentityCreate:
		return st.IdentityCreate.IdentityID()
	case KindIdentityTopUp:
		return st.IdentityTopUp.V0.IdentityID
	case KindIdentityUpdate:
		return st.IdentityUpdate.V0.IdentityID
	case KindIdentityCreditTransfer:
		return st.IdentityCreditTransfer.V0.IdentityID
	case KindIdentityCreditWithdrawal:
		return st.IdentityCreditWithdrawal.V0.IdentityID
	case KindDataContractCreate:
		return st.DataContractCreate.V0.Contract.OwnerID()
	case KindDataContractUpdate:
		return st.DataContractUpdate.V0.Contract.OwnerID()
	case KindBatch:
		return st.Batch.V0.OwnerID
	case KindMasternodeVote:
		return st.MasternodeVote.V0.VoterIdentityID
	}
	return Identifier{}
}

// Signature 返回签名字节
func (st *StateTransition) Signature() []byte {
	switch st.Kind {
	case KindIdentityCreate:
		return st.IdentityCreate.V0.Signature
	case KindIdentityTopUp:
		return st.IdentityTopUp.V0.Signature
	case KindIdentityUpdate:
		return st.IdentityUpdate.V0.Signature
	case KindIdentityCreditTransfer:
		return st.IdentityCreditTransfer.V0.Signature
	case KindIdentityCreditWithdrawal:
		return st.IdentityCreditWithdrawal.V0.Signature
	case KindDataContractCreate:
		return st.DataContractCreate.V0.Signature
	case KindDataContractUpdate:
		return st.DataContractUpdate.V0.Signature
	case KindBatch:
		return st.Batch.V0.Signature
	case KindMasternodeVote:
		return st.MasternodeVote.V0.Signature
	}
	return nil
}

// SetSignature 设置签名字节
func (st *StateTransition) SetSignature(sig []byte) {
	switch st.Kind {
	case KindIdentityCreate:
		st.IdentityCreate.V0.Signature = sig
	case KindIdentityTopUp:
		st.IdentityTopUp.V0.Signature = sig
	case KindIdentityUpdate:
		st.IdentityUpdate.V0.Signature = sig
	case KindIdentityCreditTransfer:
		st.IdentityCreditTransfer.V0.Signature = sig
	case KindIdentityCreditWithdrawal:
		st.IdentityCreditWithdrawal.V0.Signature = sig
	case KindDataContractCreate:
		st.DataContractCreate.V0.Signature = sig
	case KindDataContractUpdate:
		st.DataContractUpdate.V0.Signature = sig
	case KindBatch:
		st.Batch.V0.Signature = sig
	case KindMasternodeVote:
		st.MasternodeVote.V0.Signature = sig
	}
}

// SignaturePublicKeyID 返回签名公钥 ID
//
// 资产锁定类转换（身份创建/充值）不使用存储公钥签名，返回 (0, false)。
func (st *StateTransition) SignaturePublicKeyID() (KeyID, bool) {
	switch st.Kind {
	case KindIdentityUpdate:
		return st.IdentityUpdate.V0.SignaturePublicKeyID, true
	case KindIdentityCreditTransfer:
		return st.IdentityCreditTransfer.V0.SignaturePublicKeyID, true
	case KindIdentityCreditWithdrawal:
		return st.IdentityCreditWithdrawal.V0.SignaturePublicKeyID, true
	case KindDataContractCreate:
		return st.DataContractCreate.V0.SignaturePublicKeyID, true
	case KindDataContractUpdate:
		return st.DataContractUpdate.V0.SignaturePublicKeyID, true
	case KindBatch:
		return st.Batch.V0.SignaturePublicKeyID, true
	case KindMasternodeVote:
		return st.MasternodeVote.V0.SignaturePublicKeyID, true
	}
	return 0, false
}

// IsAssetLockFunded 是否为资产锁定出资的转换
func (st *StateTransition) IsAssetLockFunded() bool {
	return st.Kind == KindIdentityCreate || st.Kind == KindIdentityTopUp
}

// AssetLockProof 返回资产锁定证明；非资产锁定类转换返回 nil
func (st *StateTransition) AssetLockProof() *AssetLockProof {
	switch st.Kind {
	case KindIdentityCreate:
		return st.IdentityCreate.V0.AssetLock
	case KindIdentityTopUp:
		return st.IdentityTopUp.V0.AssetLock
	}
	return nil
}

// TransitionID 转换标识符：规范字节的双重 SHA256
func (st *StateTransition) TransitionID() Identifier {
	return HashIdentifier(st.Serialize())
}

// ==================== 序列化 ====================

// Serialize 编码为规范字节
func (st *StateTransition) Serialize() []byte {
	w := codec.NewWriter()
	w.WriteVarint(uint64(st.ProtocolVersion))
	w.WriteVarint(uint64(st.Kind))
	w.WriteBytes(st.kindPayload())
	return w.Bytes()
}

// SignableBytes 返回签名覆盖的字节
//
// ⚠️ **核心约束**：签名字段本身必须被确定性地排除——做法是序列化
// 一份签名字段清零的副本。排除算法在所有节点上必须一致，否则同一
// 转换会在不同节点得出不同的验签结果。
func (st *StateTransition) SignableBytes() []byte {
	clone, err := DeserializeStateTransition(st.Serialize())
	if err != nil {
		// 自身序列化的字节必然可解码；到达此处说明编码器自身损坏
		panic(fmt.Sprintf("state transition round trip failed: %v", err))
	}
	clone.SetSignature(nil)
	return clone.Serialize()
}

func (st *StateTransition) kindPayload() []byte {
	switch st.Kind {
	case KindIdentityCreate:
		return st.IdentityCreate.serialize()
	case KindIdentityTopUp:
		return st.IdentityTopUp.serialize()
	case KindIdentityUpdate:
		return st.IdentityUpdate.serialize()
	case KindIdentityCreditTransfer:
		return st.IdentityCreditTransfer.serialize()
	case KindIdentityCreditWithdrawal:
		return st.IdentityCreditWithdrawal.serialize()
	case KindDataContractCreate:
		return st.DataContractCreate.serialize()
	case KindDataContractUpdate:
		return st.DataContractUpdate.serialize()
	case KindBatch:
		return st.Batch.serialize()
	case KindMasternodeVote:
		return st.MasternodeVote.serialize()
	}
	return nil
}

// DeserializeStateTransition 从规范字节还原状态转换
//
// 未知类别或残缺载荷返回错误，绝不 panic。协议版本窗口检查属于
// 结构校验器，这里只负责无损还原。
func DeserializeStateTransition(data []byte) (*StateTransition, error) {
	r := codec.NewReader(data)
	protocolVersion, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	kind, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	payload, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	if err := r.ExpectEOF(); err != nil {
		return nil, err
	}

	st := &StateTransition{
		ProtocolVersion: ProtocolVersion(protocolVersion),
		Kind:            TransitionKind(kind),
	}
	switch st.Kind {
	case KindIdentityCreate:
		st.IdentityCreate, err = deserializeIdentityCreate(payload)
	case KindIdentityTopUp:
		st.IdentityTopUp, err = deserializeIdentityTopUp(payload)
	case KindIdentityUpdate:
		st.IdentityUpdate, err = deserializeIdentityUpdate(payload)
	case KindIdentityCreditTransfer:
		st.IdentityCreditTransfer, err = deserializeIdentityCreditTransfer(payload)
	case KindIdentityCreditWithdrawal:
		st.IdentityCreditWithdrawal, err = deserializeIdentityCreditWithdrawal(payload)
	case KindDataContractCreate:
		st.DataContractCreate, err = deserializeDataContractCreate(payload)
	case KindDataContractUpdate:
		st.DataContractUpdate, err = deserializeDataContractUpdate(payload)
	case KindBatch:
		st.Batch, err = deserializeBatch(payload)
	case KindMasternodeVote:
		st.MasternodeVote, err = deserializeMasternodeVote(payload)
	default:
		return nil, fmt.Errorf("unknown state transition kind %d", kind)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}
