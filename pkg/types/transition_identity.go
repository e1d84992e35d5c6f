package types

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/evoplatform/v1/pkg/codec"
)

// ==================== 资产锁定证明 ====================

// AssetLockProof 资产锁定证明
//
// 🎯 **功能**：证明基础链上存在一笔锁定了底层资产的交易，平台据此
// 为身份铸造积分。证明绑定到具体的交易输出（outpoint），每个 outpoint
// 只能被消费一次。
//
// ⚠️ **核心约束**：
// - InstantLockSig 是基础链法定人数对交易的即时锁定签名，本层视为
//   上游已验证的不透明字节，只参与绑定与重放检查
// - FundingPublicKey 的 HASH160 必须与锁定输出脚本承诺的键哈希一致
type AssetLockProof struct {
	// Transaction 基础链交易的序列化字节（线格式由基础链定义）
	Transaction []byte
	// OutputIndex 锁定输出在交易中的下标
	OutputIndex uint32
	// InstantLockSig 即时锁定法定人数签名
	InstantLockSig []byte
	// FundingPublicKey 出资方的压缩 secp256k1 公钥
	FundingPublicKey []byte
}

// OutPoint 返回证明绑定的输出点：交易双重哈希 || 小端 4 字节下标
//
// 📞 **调用方**：签名校验器的重放检查、身份创建的标识符派生
func (p *AssetLockProof) OutPoint() []byte {
	txid := chainhash.DoubleHashB(p.Transaction)
	out := make([]byte, 0, len(txid)+4)
	out = append(out, txid...)
	out = binary.LittleEndian.AppendUint32(out, p.OutputIndex)
	return out
}

func (p *AssetLockProof) encode(w *codec.Writer) {
	w.WriteBytes(p.Transaction)
	w.WriteVarint(uint64(p.OutputIndex))
	w.WriteBytes(p.InstantLockSig)
	w.WriteBytes(p.FundingPublicKey)
}

func decodeAssetLockProof(r *codec.Reader) (*AssetLockProof, error) {
	p := &AssetLockProof{}
	var err error
	if p.Transaction, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	idx, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	p.OutputIndex = uint32(idx)
	if p.InstantLockSig, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if p.FundingPublicKey, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	return p, nil
}

// ==================== 身份创建 ====================

// IdentityCreateTransition 身份创建转换（版本化信封）
type IdentityCreateTransition struct {
	Version FormatVersion
	V0      *IdentityCreateTransitionV0
}

// IdentityCreateTransitionV0 身份创建 V0 格式
//
// 待创建身份的标识符不由提交者指定，而是从资产锁定 outpoint 派生，
// 因此同一笔锁定交易无法创建两个不同身份。
type IdentityCreateTransitionV0 struct {
	AssetLock      *AssetLockProof
	PublicKeys     []*IdentityPublicKey
	UserFeeIncrease uint16
	Signature      []byte
}

// IdentityID 从资产锁定 outpoint 派生身份标识符
func (t *IdentityCreateTransition) IdentityID() Identifier {
	switch t.Version {
	case FormatV0:
		return HashIdentifier(t.V0.AssetLock.OutPoint())
	}
	return Identifier{}
}

func (t *IdentityCreateTransition) serialize() []byte {
	return codec.EncodeEnvelope(uint64(t.Version), t.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *IdentityCreateTransitionV0) EncodePayload(w *codec.Writer) {
	v.AssetLock.encode(w)
	w.WriteVarint(uint64(len(v.PublicKeys)))
	for _, k := range v.PublicKeys {
		w.WriteBytes(k.Serialize())
	}
	w.WriteVarint(uint64(v.UserFeeIncrease))
	w.WriteBytes(v.Signature)
}

func deserializeIdentityCreate(data []byte) (*IdentityCreateTransition, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &IdentityCreateTransitionV0{}
		if v0.AssetLock, err = decodeAssetLockProof(r); err != nil {
			return nil, err
		}
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.PublicKeys = make([]*IdentityPublicKey, 0, min(n, 256))
		for i := uint64(0); i < n; i++ {
			raw, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			key, err := DeserializeIdentityPublicKey(raw)
			if err != nil {
				return nil, err
			}
			v0.PublicKeys = append(v0.PublicKeys, key)
		}
		if v0.UserFeeIncrease, err = readUint16(r); err != nil {
			return nil, err
		}
		if v0.Signature, err = r.ReadBytes(); err != nil {
			return nil, err
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &IdentityCreateTransition{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "IdentityCreateTransition.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}

// ==================== 身份充值 ====================

// IdentityTopUpTransition 身份充值转换（版本化信封）
type IdentityTopUpTransition struct {
	Version FormatVersion
	V0      *IdentityTopUpTransitionV0
}

// IdentityTopUpTransitionV0 身份充值 V0 格式
type IdentityTopUpTransitionV0 struct {
	AssetLock      *AssetLockProof
	IdentityID     Identifier
	UserFeeIncrease uint16
	Signature      []byte
}

func (t *IdentityTopUpTransition) serialize() []byte {
	return codec.EncodeEnvelope(uint64(t.Version), t.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *IdentityTopUpTransitionV0) EncodePayload(w *codec.Writer) {
	v.AssetLock.encode(w)
	w.WriteFixed(v.IdentityID[:])
	w.WriteVarint(uint64(v.UserFeeIncrease))
	w.WriteBytes(v.Signature)
}

func deserializeIdentityTopUp(data []byte) (*IdentityTopUpTransition, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &IdentityTopUpTransitionV0{}
		if v0.AssetLock, err = decodeAssetLockProof(r); err != nil {
			return nil, err
		}
		if v0.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if v0.UserFeeIncrease, err = readUint16(r); err != nil {
			return nil, err
		}
		if v0.Signature, err = r.ReadBytes(); err != nil {
			return nil, err
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &IdentityTopUpTransition{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "IdentityTopUpTransition.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}

// ==================== 身份更新 ====================

// IdentityUpdateTransition 身份更新转换（版本化信封）
type IdentityUpdateTransition struct {
	Version FormatVersion
	V0      *IdentityUpdateTransitionV0
}

// IdentityUpdateTransitionV0 身份更新 V0 格式
//
// 更新只能追加新键或禁用现有键，不能删除键。Revision 必须恰为
// 当前身份修订号加一，Nonce 必须恰为身份当前 nonce 加一。
type IdentityUpdateTransitionV0 struct {
	IdentityID           Identifier
	Revision             uint64
	Nonce                uint64
	AddPublicKeys        []*IdentityPublicKey
	DisablePublicKeys    []KeyID
	UserFeeIncrease      uint16
	SignaturePublicKeyID KeyID
	Signature            []byte
}

func (t *IdentityUpdateTransition) serialize() []byte {
	return codec.EncodeEnvelope(uint64(t.Version), t.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *IdentityUpdateTransitionV0) EncodePayload(w *codec.Writer) {
	w.WriteFixed(v.IdentityID[:])
	w.WriteVarint(v.Revision)
	w.WriteVarint(v.Nonce)
	w.WriteVarint(uint64(len(v.AddPublicKeys)))
	for _, k := range v.AddPublicKeys {
		w.WriteBytes(k.Serialize())
	}
	w.WriteVarint(uint64(len(v.DisablePublicKeys)))
	for _, id := range v.DisablePublicKeys {
		w.WriteVarint(uint64(id))
	}
	w.WriteVarint(uint64(v.UserFeeIncrease))
	w.WriteVarint(uint64(v.SignaturePublicKeyID))
	w.WriteBytes(v.Signature)
}

func deserializeIdentityUpdate(data []byte) (*IdentityUpdateTransition, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &IdentityUpdateTransitionV0{}
		if v0.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if v0.Revision, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if v0.Nonce, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.AddPublicKeys = make([]*IdentityPublicKey, 0, min(n, 256))
		for i := uint64(0); i < n; i++ {
			raw, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			key, err := DeserializeIdentityPublicKey(raw)
			if err != nil {
				return nil, err
			}
			v0.AddPublicKeys = append(v0.AddPublicKeys, key)
		}
		m, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.DisablePublicKeys = make([]KeyID, 0, min(m, 256))
		for i := uint64(0); i < m; i++ {
			id, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			v0.DisablePublicKeys = append(v0.DisablePublicKeys, KeyID(id))
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
		return &IdentityUpdateTransition{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "IdentityUpdateTransition.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}

// ==================== 身份积分转账 ====================

// IdentityCreditTransferTransition 积分转账转换（版本化信封）
type IdentityCreditTransferTransition struct {
	Version FormatVersion
	V0      *IdentityCreditTransferTransitionV0
}

// IdentityCreditTransferTransitionV0 积分转账 V0 格式
type IdentityCreditTransferTransitionV0 struct {
	IdentityID           Identifier
	RecipientID          Identifier
	Amount               Credits
	Nonce                uint64
	UserFeeIncrease      uint16
	SignaturePublicKeyID KeyID
	Signature            []byte
}

func (t *IdentityCreditTransferTransition) serialize() []byte {
	return codec.EncodeEnvelope(uint64(t.Version), t.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *IdentityCreditTransferTransitionV0) EncodePayload(w *codec.Writer) {
	w.WriteFixed(v.IdentityID[:])
	w.WriteFixed(v.RecipientID[:])
	w.WriteVarint(uint64(v.Amount))
	w.WriteVarint(v.Nonce)
	w.WriteVarint(uint64(v.UserFeeIncrease))
	w.WriteVarint(uint64(v.SignaturePublicKeyID))
	w.WriteBytes(v.Signature)
}

func deserializeIdentityCreditTransfer(data []byte) (*IdentityCreditTransferTransition, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &IdentityCreditTransferTransitionV0{}
		if v0.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if v0.RecipientID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		amount, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.Amount = Credits(amount)
		if v0.Nonce, err = r.ReadVarint(); err != nil {
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
		return &IdentityCreditTransferTransition{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "IdentityCreditTransferTransition.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}

// ==================== 身份积分提现 ====================

// IdentityCreditWithdrawalTransition 积分提现转换（版本化信封）
type IdentityCreditWithdrawalTransition struct {
	Version FormatVersion
	V0      *IdentityCreditWithdrawalTransitionV0
}

// IdentityCreditWithdrawalTransitionV0 积分提现 V0 格式
//
// OutputScript 是提现目的地的基础链输出脚本；脚本本身的格式校验
// 属于结构校验阶段。
type IdentityCreditWithdrawalTransitionV0 struct {
	IdentityID           Identifier
	Amount               Credits
	CoreFeePerByte       uint32
	OutputScript         []byte
	Nonce                uint64
	UserFeeIncrease      uint16
	SignaturePublicKeyID KeyID
	Signature            []byte
}

func (t *IdentityCreditWithdrawalTransition) serialize() []byte {
	return codec.EncodeEnvelope(uint64(t.Version), t.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *IdentityCreditWithdrawalTransitionV0) EncodePayload(w *codec.Writer) {
	w.WriteFixed(v.IdentityID[:])
	w.WriteVarint(uint64(v.Amount))
	w.WriteVarint(uint64(v.CoreFeePerByte))
	w.WriteBytes(v.OutputScript)
	w.WriteVarint(v.Nonce)
	w.WriteVarint(uint64(v.UserFeeIncrease))
	w.WriteVarint(uint64(v.SignaturePublicKeyID))
	w.WriteBytes(v.Signature)
}

func deserializeIdentityCreditWithdrawal(data []byte) (*IdentityCreditWithdrawalTransition, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &IdentityCreditWithdrawalTransitionV0{}
		if v0.IdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		amount, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.Amount = Credits(amount)
		feePerByte, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.CoreFeePerByte = uint32(feePerByte)
		if v0.OutputScript, err = r.ReadBytes(); err != nil {
			return nil, err
		}
		if v0.Nonce, err = r.ReadVarint(); err != nil {
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
		return &IdentityCreditWithdrawalTransition{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "IdentityCreditWithdrawalTransition.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}

// readUint16 读取以 varint 编码的 16 位字段，超界视为解码错误
func readUint16(r *codec.Reader) (uint16, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	if v > 0xFFFF {
		return 0, codec.ErrLengthOverflow
	}
	return uint16(v), nil
}
