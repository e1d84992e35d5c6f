package types

import "github.com/evoplatform/v1/pkg/codec"

// TokenStatus 代币全局状态（版本化信封）
//
// 代币余额与冻结标志是独立键控状态（(token_id, identity_id) → 余额），
// 不内嵌在合约里；本结构只承载供应量与暂停标志。
type TokenStatus struct {
	Version FormatVersion
	V0      *TokenStatusV0
}

// TokenStatusV0 代币状态 V0 格式
type TokenStatusV0 struct {
	TokenID       Identifier
	CurrentSupply TokenAmount
	Paused        bool
	// MaxSupplyOverride 配置更新后的供应上限；nil 表示沿用合约配置
	MaxSupplyOverride *TokenAmount
	// LastPerpetualClaimMillis 各身份最近一次永续领取时间
	LastPerpetualClaimMillis map[Identifier]uint64
}

// NewTokenStatusV0 构造 V0 代币状态
func NewTokenStatusV0(tokenID Identifier, supply TokenAmount, paused bool) *TokenStatus {
	return &TokenStatus{
		Version: FormatV0,
		V0: &TokenStatusV0{
			TokenID:                  tokenID,
			CurrentSupply:            supply,
			Paused:                   paused,
			LastPerpetualClaimMillis: make(map[Identifier]uint64),
		},
	}
}

// TokenID 返回代币标识符
func (t *TokenStatus) TokenID() Identifier {
	switch t.Version {
	case FormatV0:
		return t.V0.TokenID
	}
	return Identifier{}
}

// CurrentSupply 返回当前流通量
func (t *TokenStatus) CurrentSupply() TokenAmount {
	switch t.Version {
	case FormatV0:
		return t.V0.CurrentSupply
	}
	return 0
}

// SetCurrentSupply 设置流通量（存储应用步骤调用）
func (t *TokenStatus) SetCurrentSupply(supply TokenAmount) {
	switch t.Version {
	case FormatV0:
		t.V0.CurrentSupply = supply
	}
}

// Paused 返回暂停标志
func (t *TokenStatus) Paused() bool {
	switch t.Version {
	case FormatV0:
		return t.V0.Paused
	}
	return false
}

// SetPaused 设置暂停标志
func (t *TokenStatus) SetPaused(paused bool) {
	switch t.Version {
	case FormatV0:
		t.V0.Paused = paused
	}
}

// MaxSupplyOverride 返回配置更新后的供应上限
func (t *TokenStatus) MaxSupplyOverride() *TokenAmount {
	switch t.Version {
	case FormatV0:
		return t.V0.MaxSupplyOverride
	}
	return nil
}

// SetMaxSupplyOverride 设置供应上限覆写
func (t *TokenStatus) SetMaxSupplyOverride(maxSupply TokenAmount) {
	switch t.Version {
	case FormatV0:
		m := maxSupply
		t.V0.MaxSupplyOverride = &m
	}
}

// EffectiveMaxSupply 结合合约配置得到生效的供应上限；nil 表示无上限
func (t *TokenStatus) EffectiveMaxSupply(config *TokenConfiguration) *TokenAmount {
	if override := t.MaxSupplyOverride(); override != nil {
		return override
	}
	return config.MaxSupply
}

// LastPerpetualClaim 返回身份最近一次永续领取时间
func (t *TokenStatus) LastPerpetualClaim(id Identifier) (uint64, bool) {
	switch t.Version {
	case FormatV0:
		at, ok := t.V0.LastPerpetualClaimMillis[id]
		return at, ok
	}
	return 0, false
}

// RecordPerpetualClaim 记录永续领取时间
func (t *TokenStatus) RecordPerpetualClaim(id Identifier, atMillis uint64) {
	switch t.Version {
	case FormatV0:
		t.V0.LastPerpetualClaimMillis[id] = atMillis
	}
}

// Serialize 编码为规范字节
func (t *TokenStatus) Serialize() []byte {
	return codec.EncodeEnvelope(uint64(t.Version), t.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *TokenStatusV0) EncodePayload(w *codec.Writer) {
	w.WriteFixed(v.TokenID[:])
	w.WriteVarint(uint64(v.CurrentSupply))
	w.WriteBool(v.Paused)
	w.WriteBool(v.MaxSupplyOverride != nil)
	if v.MaxSupplyOverride != nil {
		w.WriteVarint(uint64(*v.MaxSupplyOverride))
	}
	ids := sortedIdentifiers(v.LastPerpetualClaimMillis)
	w.WriteVarint(uint64(len(ids)))
	for _, id := range ids {
		w.WriteFixed(id[:])
		w.WriteVarint(v.LastPerpetualClaimMillis[id])
	}
}

func sortedIdentifiers[V any](m map[Identifier]V) []Identifier {
	out := make([]Identifier, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Less(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// DeserializeTokenStatus 从规范字节还原代币状态
func DeserializeTokenStatus(data []byte) (*TokenStatus, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &TokenStatusV0{}
		if v0.TokenID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		supply, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.CurrentSupply = TokenAmount(supply)
		if v0.Paused, err = r.ReadBool(); err != nil {
			return nil, err
		}
		hasOverride, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if hasOverride {
			m, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			override := TokenAmount(m)
			v0.MaxSupplyOverride = &override
		}
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.LastPerpetualClaimMillis = make(map[Identifier]uint64, min(n, 256))
		for i := uint64(0); i < n; i++ {
			id, err := readIdentifier(r)
			if err != nil {
				return nil, err
			}
			at, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			v0.LastPerpetualClaimMillis[id] = at
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &TokenStatus{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "TokenStatus.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}
