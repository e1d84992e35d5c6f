package types

import (
	"github.com/evoplatform/v1/pkg/codec"
)

// ==================== 合约创建 ====================

// DataContractCreateTransition 数据合约创建转换（版本化信封）
type DataContractCreateTransition struct {
	Version FormatVersion
	V0      *DataContractCreateTransitionV0
}

// DataContractCreateTransitionV0 合约创建 V0 格式
//
// IdentityNonce 作用于（所有者，全局）序列，合约更新则作用于
// （所有者，合约）序列，两者互不干扰。
type DataContractCreateTransitionV0 struct {
	Contract             *DataContract
	IdentityNonce        uint64
	UserFeeIncrease      uint16
	SignaturePublicKeyID KeyID
	Signature            []byte
}

func (t *DataContractCreateTransition) serialize() []byte {
	return codec.EncodeEnvelope(uint64(t.Version), t.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *DataContractCreateTransitionV0) EncodePayload(w *codec.Writer) {
	w.WriteBytes(v.Contract.Serialize())
	w.WriteVarint(v.IdentityNonce)
	w.WriteVarint(uint64(v.UserFeeIncrease))
	w.WriteVarint(uint64(v.SignaturePublicKeyID))
	w.WriteBytes(v.Signature)
}

func deserializeDataContractCreate(data []byte) (*DataContractCreateTransition, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &DataContractCreateTransitionV0{}
		raw, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		if v0.Contract, err = DeserializeDataContract(raw); err != nil {
			return nil, err
		}
		if v0.IdentityNonce, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if v0.UserFeeIncrease, err = readUint16(r); err != nil {
			return nil, err
		}
		keyID, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.SignaturePublicKeyID = KeyID(keyID)
		if v0.Signature, err = r.ReadBytes(); err != nil {
			return nil, err
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &DataContractCreateTransition{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "DataContractCreateTransition.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}

// ==================== 合约更新 ====================

// DataContractUpdateTransition 数据合约更新转换（版本化信封）
type DataContractUpdateTransition struct {
	Version FormatVersion
	V0      *DataContractUpdateTransitionV0
}

// DataContractUpdateTransitionV0 合约更新 V0 格式
//
// Contract 是更新后的完整合约镜像，其 ContractVersion 必须恰为
// 已存在合约的版本加一；不可变属性的差异检查属于状态校验阶段。
type DataContractUpdateTransitionV0 struct {
	Contract             *DataContract
	IdentityContractNonce uint64
	UserFeeIncrease      uint16
	SignaturePublicKeyID KeyID
	Signature            []byte
}

func (t *DataContractUpdateTransition) serialize() []byte {
	return codec.EncodeEnvelope(uint64(t.Version), t.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *DataContractUpdateTransitionV0) EncodePayload(w *codec.Writer) {
	w.WriteBytes(v.Contract.Serialize())
	w.WriteVarint(v.IdentityContractNonce)
	w.WriteVarint(uint64(v.UserFeeIncrease))
	w.WriteVarint(uint64(v.SignaturePublicKeyID))
	w.WriteBytes(v.Signature)
}

func deserializeDataContractUpdate(data []byte) (*DataContractUpdateTransition, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &DataContractUpdateTransitionV0{}
		raw, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		if v0.Contract, err = DeserializeDataContract(raw); err != nil {
			return nil, err
		}
		if v0.IdentityContractNonce, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if v0.UserFeeIncrease, err = readUint16(r); err != nil {
			return nil, err
		}
		keyID, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.SignaturePublicKeyID = KeyID(keyID)
		if v0.Signature, err = r.ReadBytes(); err != nil {
			return nil, err
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &DataContractUpdateTransition{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "DataContractUpdateTransition.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}
