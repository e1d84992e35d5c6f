package types

import (
	"fmt"

	"github.com/evoplatform/v1/pkg/codec"
)

// KeyType 公钥算法类型
type KeyType uint8

const (
	KeyTypeECDSASecp256k1 KeyType = 0 // ECDSA secp256k1（33 字节压缩公钥）
	KeyTypeECDSAHash160   KeyType = 1 // 公钥的 HASH160（20 字节，资产锁定密钥）
	KeyTypeBLS12381       KeyType = 2 // BLS12-381（48 字节，主节点密钥）
)

// String 返回类型的字符串表示
func (t KeyType) String() string {
	switch t {
	case KeyTypeECDSASecp256k1:
		return "ECDSA_SECP256K1"
	case KeyTypeECDSAHash160:
		return "ECDSA_HASH160"
	case KeyTypeBLS12381:
		return "BLS12_381"
	default:
		return fmt.Sprintf("KEY_TYPE_%d", uint8(t))
	}
}

// KeyPurpose 公钥用途
type KeyPurpose uint8

const (
	KeyPurposeAuthentication KeyPurpose = 0
	KeyPurposeEncryption     KeyPurpose = 1
	KeyPurposeDecryption     KeyPurpose = 2
	KeyPurposeWithdraw       KeyPurpose = 3
	KeyPurposeVoting         KeyPurpose = 5
)

// String 返回用途的字符串表示
func (p KeyPurpose) String() string {
	switch p {
	case KeyPurposeAuthentication:
		return "AUTHENTICATION"
	case KeyPurposeEncryption:
		return "ENCRYPTION"
	case KeyPurposeDecryption:
		return "DECRYPTION"
	case KeyPurposeWithdraw:
		return "WITHDRAW"
	case KeyPurposeVoting:
		return "VOTING"
	default:
		return fmt.Sprintf("PURPOSE_%d", uint8(p))
	}
}

// KeySecurityLevel 公钥安全级别（数值越小级别越高）
type KeySecurityLevel uint8

const (
	KeySecurityLevelMaster   KeySecurityLevel = 0
	KeySecurityLevelCritical KeySecurityLevel = 1
	KeySecurityLevelHigh     KeySecurityLevel = 2
	KeySecurityLevelMedium   KeySecurityLevel = 3
)

// String 返回级别的字符串表示
func (l KeySecurityLevel) String() string {
	switch l {
	case KeySecurityLevelMaster:
		return "MASTER"
	case KeySecurityLevelCritical:
		return "CRITICAL"
	case KeySecurityLevelHigh:
		return "HIGH"
	case KeySecurityLevelMedium:
		return "MEDIUM"
	default:
		return fmt.Sprintf("LEVEL_%d", uint8(l))
	}
}

// AtLeast 本级别是否达到 required 的要求（MASTER 最高）
func (l KeySecurityLevel) AtLeast(required KeySecurityLevel) bool {
	return l <= required
}

// IdentityPublicKey 身份公钥（版本化信封）
type IdentityPublicKey struct {
	Version FormatVersion
	V0      *IdentityPublicKeyV0
}

// IdentityPublicKeyV0 身份公钥 V0 格式
type IdentityPublicKeyV0 struct {
	ID            KeyID
	Type          KeyType
	Purpose       KeyPurpose
	SecurityLevel KeySecurityLevel
	Data          []byte // 公钥字节（长度由 Type 决定）
	ReadOnly      bool
	DisabledAt    *uint64 // 禁用时间（毫秒）；nil 表示启用。一经设置不可清除
}

// NewIdentityPublicKeyV0 构造 V0 公钥信封
func NewIdentityPublicKeyV0(v0 *IdentityPublicKeyV0) *IdentityPublicKey {
	return &IdentityPublicKey{Version: FormatV0, V0: v0}
}

// ==================== 访问器（按版本分派） ====================

// ID 返回公钥 ID
func (k *IdentityPublicKey) ID() KeyID {
	switch k.Version {
	case FormatV0:
		return k.V0.ID
	}
	return 0
}

// Type 返回算法类型
func (k *IdentityPublicKey) Type() KeyType {
	switch k.Version {
	case FormatV0:
		return k.V0.Type
	}
	return 0
}

// Purpose 返回用途
func (k *IdentityPublicKey) Purpose() KeyPurpose {
	switch k.Version {
	case FormatV0:
		return k.V0.Purpose
	}
	return 0
}

// SecurityLevel 返回安全级别
func (k *IdentityPublicKey) SecurityLevel() KeySecurityLevel {
	switch k.Version {
	case FormatV0:
		return k.V0.SecurityLevel
	}
	return 0
}

// Data 返回公钥字节
func (k *IdentityPublicKey) Data() []byte {
	switch k.Version {
	case FormatV0:
		return k.V0.Data
	}
	return nil
}

// ReadOnly 返回只读标志
func (k *IdentityPublicKey) ReadOnly() bool {
	switch k.Version {
	case FormatV0:
		return k.V0.ReadOnly
	}
	return false
}

// DisabledAt 返回禁用时间；nil 表示启用
func (k *IdentityPublicKey) DisabledAt() *uint64 {
	switch k.Version {
	case FormatV0:
		return k.V0.DisabledAt
	}
	return nil
}

// IsDisabled 公钥是否已禁用
func (k *IdentityPublicKey) IsDisabled() bool {
	return k.DisabledAt() != nil
}

// Disable 设置禁用时间
//
// ⚠️ disabled_at 单调：已禁用的公钥不可再次禁用或重新启用，
// 调用方（状态校验器）必须先检查 IsDisabled。
func (k *IdentityPublicKey) Disable(atMillis uint64) {
	switch k.Version {
	case FormatV0:
		at := atMillis
		k.V0.DisabledAt = &at
	}
}

// ==================== 序列化 ====================

// Serialize 编码为规范字节
func (k *IdentityPublicKey) Serialize() []byte {
	return codec.EncodeEnvelope(uint64(k.Version), k.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *IdentityPublicKeyV0) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(v.ID))
	w.WriteVarint(uint64(v.Type))
	w.WriteVarint(uint64(v.Purpose))
	w.WriteVarint(uint64(v.SecurityLevel))
	w.WriteBytes(v.Data)
	w.WriteBool(v.ReadOnly)
	w.WriteBool(v.DisabledAt != nil)
	if v.DisabledAt != nil {
		w.WriteVarint(*v.DisabledAt)
	}
}

// DeserializeIdentityPublicKey 从规范字节还原公钥
func DeserializeIdentityPublicKey(data []byte) (*IdentityPublicKey, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0, err := decodeIdentityPublicKeyV0(r)
		if err != nil {
			return nil, err
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &IdentityPublicKey{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "IdentityPublicKey.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}

func decodeIdentityPublicKeyV0(r *codec.Reader) (*IdentityPublicKeyV0, error) {
	v := &IdentityPublicKeyV0{}
	id, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	v.ID = KeyID(id)
	keyType, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	v.Type = KeyType(keyType)
	purpose, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	v.Purpose = KeyPurpose(purpose)
	level, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	v.SecurityLevel = KeySecurityLevel(level)
	if v.Data, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.ReadOnly, err = r.ReadBool(); err != nil {
		return nil, err
	}
	hasDisabled, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasDisabled {
		at, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v.DisabledAt = &at
	}
	return v, nil
}
