package types

import (
	"sort"

	"github.com/evoplatform/v1/pkg/codec"
)

// Identity 身份（版本化信封）
//
// 🎯 **功能**：账户类实体，持有积分余额与公钥集合，以 32 字节标识符寻址
//
// ⚠️ **核心约束**：
// - 余额永不为负：不足即拒绝，绝不钳制
// - 身份永不物理删除；禁用的公钥保留用于历史审计
type Identity struct {
	Version FormatVersion
	V0      *IdentityV0
}

// IdentityV0 身份 V0 格式
type IdentityV0 struct {
	ID         Identifier
	Balance    Credits
	Revision   uint64
	PublicKeys map[KeyID]*IdentityPublicKey
}

// NewIdentityV0 构造 V0 身份信封
func NewIdentityV0(id Identifier, balance Credits, keys []*IdentityPublicKey) *Identity {
	keyMap := make(map[KeyID]*IdentityPublicKey, len(keys))
	for _, k := range keys {
		keyMap[k.ID()] = k
	}
	return &Identity{
		Version: FormatV0,
		V0: &IdentityV0{
			ID:         id,
			Balance:    balance,
			Revision:   0,
			PublicKeys: keyMap,
		},
	}
}

// ==================== 访问器（按版本分派） ====================

// ID 返回身份标识符
func (i *Identity) ID() Identifier {
	switch i.Version {
	case FormatV0:
		return i.V0.ID
	}
	return Identifier{}
}

// Balance 返回积分余额
func (i *Identity) Balance() Credits {
	switch i.Version {
	case FormatV0:
		return i.V0.Balance
	}
	return 0
}

// SetBalance 设置积分余额（仅存储应用步骤调用）
func (i *Identity) SetBalance(balance Credits) {
	switch i.Version {
	case FormatV0:
		i.V0.Balance = balance
	}
}

// Revision 返回身份修订号
func (i *Identity) Revision() uint64 {
	switch i.Version {
	case FormatV0:
		return i.V0.Revision
	}
	return 0
}

// SetRevision 设置身份修订号
func (i *Identity) SetRevision(revision uint64) {
	switch i.Version {
	case FormatV0:
		i.V0.Revision = revision
	}
}

// PublicKeys 返回公钥映射
func (i *Identity) PublicKeys() map[KeyID]*IdentityPublicKey {
	switch i.Version {
	case FormatV0:
		return i.V0.PublicKeys
	}
	return nil
}

// PublicKeyByID 按 ID 查询公钥
func (i *Identity) PublicKeyByID(keyID KeyID) (*IdentityPublicKey, bool) {
	keys := i.PublicKeys()
	k, ok := keys[keyID]
	return k, ok
}

// AddPublicKey 追加公钥（仅存储应用步骤调用）
func (i *Identity) AddPublicKey(key *IdentityPublicKey) {
	switch i.Version {
	case FormatV0:
		i.V0.PublicKeys[key.ID()] = key
	}
}

// MaxKeyID 返回当前最大公钥 ID（新键从其后分配）
func (i *Identity) MaxKeyID() KeyID {
	var max KeyID
	for id := range i.PublicKeys() {
		if id > max {
			max = id
		}
	}
	return max
}

// ==================== 序列化 ====================

// Serialize 编码为规范字节
func (i *Identity) Serialize() []byte {
	return codec.EncodeEnvelope(uint64(i.Version), i.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
//
// 公钥按 KeyID 升序写入，保证映射编码确定。
func (v *IdentityV0) EncodePayload(w *codec.Writer) {
	w.WriteFixed(v.ID[:])
	w.WriteVarint(uint64(v.Balance))
	w.WriteVarint(v.Revision)

	ids := make([]KeyID, 0, len(v.PublicKeys))
	for id := range v.PublicKeys {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	w.WriteVarint(uint64(len(ids)))
	for _, id := range ids {
		w.WriteBytes(v.PublicKeys[id].Serialize())
	}
}

// DeserializeIdentity 从规范字节还原身份
func DeserializeIdentity(data []byte) (*Identity, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &IdentityV0{}
		if v0.ID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		balance, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.Balance = Credits(balance)
		if v0.Revision, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.PublicKeys = make(map[KeyID]*IdentityPublicKey, min(n, 256))
		for j := uint64(0); j < n; j++ {
			raw, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			key, err := DeserializeIdentityPublicKey(raw)
			if err != nil {
				return nil, err
			}
			v0.PublicKeys[key.ID()] = key
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &Identity{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "Identity.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}

// PartialIdentity 签名校验阶段解析出的身份片段
//
// 只携带签名/余额检查所需的字段，避免在验证早期搬运整个身份。
type PartialIdentity struct {
	ID       Identifier
	Balance  Credits
	Revision uint64
	// LoadedKeys 已解析的公钥（按需加载，通常只有签名键）
	LoadedKeys map[KeyID]*IdentityPublicKey
}
