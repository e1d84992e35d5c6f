// 文件说明：
// 批量转换携带同一所有者对文档与代币的一组子转换，整批共享一个签名。
// 子转换分两族：文档族（创建/替换/删除/转移/购买/改价）与代币族
// （铸造/销毁/冻结/解冻/销毁冻结资金/转账/直购/挂牌/领取/紧急操作/配置更新）。
package types

import (
	"sort"

	"github.com/evoplatform/v1/pkg/codec"
)

// ==================== 批量外层 ====================

// BatchTransition 批量转换（版本化信封）
type BatchTransition struct {
	Version FormatVersion
	V0      *BatchTransitionV0
}

// BatchTransitionV0 批量转换 V0 格式
type BatchTransitionV0 struct {
	OwnerID              Identifier
	Transitions          []*BatchedTransition
	UserFeeIncrease      uint16
	SignaturePublicKeyID KeyID
	Signature            []byte
}

// BatchedTransition 批内子转换：文档族或代币族二选一
type BatchedTransition struct {
	Document *DocumentTransition
	Token    *TokenTransition
}

// 批内子转换族标签
const (
	batchedFamilyDocument uint64 = 0
	batchedFamilyToken    uint64 = 1
)

func (t *BatchTransition) serialize() []byte {
	return codec.EncodeEnvelope(uint64(t.Version), t.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *BatchTransitionV0) EncodePayload(w *codec.Writer) {
	w.WriteFixed(v.OwnerID[:])
	w.WriteVarint(uint64(len(v.Transitions)))
	for _, bt := range v.Transitions {
		if bt.Document != nil {
			w.WriteVarint(batchedFamilyDocument)
			bt.Document.encode(w)
		} else {
			w.WriteVarint(batchedFamilyToken)
			bt.Token.encode(w)
		}
	}
	w.WriteVarint(uint64(v.UserFeeIncrease))
	w.WriteVarint(uint64(v.SignaturePublicKeyID))
	w.WriteBytes(v.Signature)
}

func deserializeBatch(data []byte) (*BatchTransition, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &BatchTransitionV0{}
		if v0.OwnerID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.Transitions = make([]*BatchedTransition, 0, min(n, 256))
		for i := uint64(0); i < n; i++ {
			family, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			bt := &BatchedTransition{}
			switch family {
			case batchedFamilyDocument:
				if bt.Document, err = decodeDocumentTransition(r); err != nil {
					return nil, err
				}
			case batchedFamilyToken:
				if bt.Token, err = decodeTokenTransition(r); err != nil {
					return nil, err
				}
			default:
				return nil, &StateTransitionDecodeError{Message: "unknown batched transition family"}
			}
			v0.Transitions = append(v0.Transitions, bt)
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
		return &BatchTransition{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "BatchTransition.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}

// ==================== 文档子转换 ====================

// DocumentTransitionKind 文档子转换类别（线格式标签）
type DocumentTransitionKind uint8

const (
	DocumentTransitionCreate      DocumentTransitionKind = 0
	DocumentTransitionReplace     DocumentTransitionKind = 1
	DocumentTransitionDelete      DocumentTransitionKind = 2
	DocumentTransitionTransfer    DocumentTransitionKind = 3
	DocumentTransitionPurchase    DocumentTransitionKind = 4
	DocumentTransitionUpdatePrice DocumentTransitionKind = 5
)

// String 返回类别的字符串表示
func (k DocumentTransitionKind) String() string {
	switch k {
	case DocumentTransitionCreate:
		return "documentCreate"
	case DocumentTransitionReplace:
		return "documentReplace"
	case DocumentTransitionDelete:
		return "documentDelete"
	case DocumentTransitionTransfer:
		return "documentTransfer"
	case DocumentTransitionPurchase:
		return "documentPurchase"
	case DocumentTransitionUpdatePrice:
		return "documentUpdatePrice"
	}
	return "documentUnknown"
}

// DocumentBaseTransition 各文档子转换共享的寻址字段
//
// IdentityContractNonce 作用于（所有者，合约）序列，必须恰为
// 已存储值加一。
type DocumentBaseTransition struct {
	ID                    Identifier
	DocumentTypeName      string
	DataContractID        Identifier
	IdentityContractNonce uint64
}

// DocumentTransition 文档子转换
//
// 🎯 **功能**：Kind 指示哪一个载荷字段非 nil（Delete 无额外载荷）
type DocumentTransition struct {
	Kind DocumentTransitionKind
	Base DocumentBaseTransition

	Create      *DocumentCreatePayload
	Replace     *DocumentReplacePayload
	Transfer    *DocumentTransferPayload
	Purchase    *DocumentPurchasePayload
	UpdatePrice *DocumentUpdatePricePayload
}

// DocumentCreatePayload 文档创建载荷
type DocumentCreatePayload struct {
	// Entropy 客户端熵。文档 ID = H(合约ID || 类型名 || 所有者ID || 熵)，
	// 结构校验阶段复核派生结果
	Entropy    [32]byte
	Properties map[string]Value
	// PrefundedVotingBalance 争用型唯一索引的裁决预付费；非争用创建为 nil
	PrefundedVotingBalance *Credits
}

// DocumentReplacePayload 文档替换载荷
type DocumentReplacePayload struct {
	Revision   uint64
	Properties map[string]Value
}

// DocumentTransferPayload 文档转移载荷
type DocumentTransferPayload struct {
	Revision         uint64
	RecipientOwnerID Identifier
}

// DocumentPurchasePayload 文档购买载荷；Price 必须与已挂价格完全一致
type DocumentPurchasePayload struct {
	Revision uint64
	Price    Credits
}

// DocumentUpdatePricePayload 文档改价载荷
type DocumentUpdatePricePayload struct {
	Revision uint64
	Price    Credits
}

// DeriveDocumentID 按创建规则派生文档标识符
func DeriveDocumentID(contractID Identifier, documentTypeName string, ownerID Identifier, entropy [32]byte) Identifier {
	w := codec.NewWriter()
	w.WriteFixed(contractID[:])
	w.WriteString(documentTypeName)
	w.WriteFixed(ownerID[:])
	w.WriteFixed(entropy[:])
	return HashIdentifier(w.Bytes())
}

func (dt *DocumentTransition) encode(w *codec.Writer) {
	w.WriteVarint(uint64(dt.Kind))
	w.WriteFixed(dt.Base.ID[:])
	w.WriteString(dt.Base.DocumentTypeName)
	w.WriteFixed(dt.Base.DataContractID[:])
	w.WriteVarint(dt.Base.IdentityContractNonce)
	switch dt.Kind {
	case DocumentTransitionCreate:
		w.WriteFixed(dt.Create.Entropy[:])
		encodeValueMap(w, dt.Create.Properties)
		w.WriteBool(dt.Create.PrefundedVotingBalance != nil)
		if dt.Create.PrefundedVotingBalance != nil {
			w.WriteVarint(uint64(*dt.Create.PrefundedVotingBalance))
		}
	case DocumentTransitionReplace:
		w.WriteVarint(dt.Replace.Revision)
		encodeValueMap(w, dt.Replace.Properties)
	case DocumentTransitionDelete:
		// 无额外载荷
	case DocumentTransitionTransfer:
		w.WriteVarint(dt.Transfer.Revision)
		w.WriteFixed(dt.Transfer.RecipientOwnerID[:])
	case DocumentTransitionPurchase:
		w.WriteVarint(dt.Purchase.Revision)
		w.WriteVarint(uint64(dt.Purchase.Price))
	case DocumentTransitionUpdatePrice:
		w.WriteVarint(dt.UpdatePrice.Revision)
		w.WriteVarint(uint64(dt.UpdatePrice.Price))
	}
}

func decodeDocumentTransition(r *codec.Reader) (*DocumentTransition, error) {
	kind, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	dt := &DocumentTransition{Kind: DocumentTransitionKind(kind)}
	if dt.Base.ID, err = readIdentifier(r); err != nil {
		return nil, err
	}
	if dt.Base.DocumentTypeName, err = r.ReadString(); err != nil {
		return nil, err
	}
	if dt.Base.DataContractID, err = readIdentifier(r); err != nil {
		return nil, err
	}
	if dt.Base.IdentityContractNonce, err = r.ReadVarint(); err != nil {
		return nil, err
	}
	switch dt.Kind {
	case DocumentTransitionCreate:
		p := &DocumentCreatePayload{}
		entropy, err := r.ReadFixed(32)
		if err != nil {
			return nil, err
		}
		copy(p.Entropy[:], entropy)
		if p.Properties, err = decodeValueMap(r); err != nil {
			return nil, err
		}
		hasPrefund, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if hasPrefund {
			v, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			prefund := Credits(v)
			p.PrefundedVotingBalance = &prefund
		}
		dt.Create = p
	case DocumentTransitionReplace:
		p := &DocumentReplacePayload{}
		if p.Revision, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if p.Properties, err = decodeValueMap(r); err != nil {
			return nil, err
		}
		dt.Replace = p
	case DocumentTransitionDelete:
	case DocumentTransitionTransfer:
		p := &DocumentTransferPayload{}
		if p.Revision, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if p.RecipientOwnerID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		dt.Transfer = p
	case DocumentTransitionPurchase:
		p := &DocumentPurchasePayload{}
		if p.Revision, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		price, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		p.Price = Credits(price)
		dt.Purchase = p
	case DocumentTransitionUpdatePrice:
		p := &DocumentUpdatePricePayload{}
		if p.Revision, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		price, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		p.Price = Credits(price)
		dt.UpdatePrice = p
	default:
		return nil, &StateTransitionDecodeError{Message: "unknown document transition kind"}
	}
	return dt, nil
}

func encodeValueMap(w *codec.Writer, m map[string]Value) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w.WriteVarint(uint64(len(keys)))
	for _, k := range keys {
		w.WriteString(k)
		m[k].Encode(w)
	}
}

func decodeValueMap(r *codec.Reader) (map[string]Value, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	m := make(map[string]Value, min(n, 256))
	for i := uint64(0); i < n; i++ {
		k, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := DecodeValue(r)
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// ==================== 代币子转换 ====================

// TokenTransitionKind 代币子转换类别（线格式标签）
type TokenTransitionKind uint8

const (
	TokenTransitionMint                      TokenTransitionKind = 0
	TokenTransitionBurn                      TokenTransitionKind = 1
	TokenTransitionFreeze                    TokenTransitionKind = 2
	TokenTransitionUnfreeze                  TokenTransitionKind = 3
	TokenTransitionDestroyFrozenFunds        TokenTransitionKind = 4
	TokenTransitionTransfer                  TokenTransitionKind = 5
	TokenTransitionDirectPurchase            TokenTransitionKind = 6
	TokenTransitionSetPriceForDirectPurchase TokenTransitionKind = 7
	TokenTransitionClaim                     TokenTransitionKind = 8
	TokenTransitionEmergencyAction           TokenTransitionKind = 9
	TokenTransitionConfigUpdate              TokenTransitionKind = 10
)

// String 返回类别的字符串表示
func (k TokenTransitionKind) String() string {
	switch k {
	case TokenTransitionMint:
		return "tokenMint"
	case TokenTransitionBurn:
		return "tokenBurn"
	case TokenTransitionFreeze:
		return "tokenFreeze"
	case TokenTransitionUnfreeze:
		return "tokenUnfreeze"
	case TokenTransitionDestroyFrozenFunds:
		return "tokenDestroyFrozenFunds"
	case TokenTransitionTransfer:
		return "tokenTransfer"
	case TokenTransitionDirectPurchase:
		return "tokenDirectPurchase"
	case TokenTransitionSetPriceForDirectPurchase:
		return "tokenSetPriceForDirectPurchase"
	case TokenTransitionClaim:
		return "tokenClaim"
	case TokenTransitionEmergencyAction:
		return "tokenEmergencyAction"
	case TokenTransitionConfigUpdate:
		return "tokenConfigUpdate"
	}
	return "tokenUnknown"
}

// GroupStateTransitionInfo 群组动作上下文
//
// 提案者发起群组动作，附议者引用既有动作 ID 累加权重；权重达到
// 阈值的那次提交触发实际执行。
type GroupStateTransitionInfo struct {
	GroupContractPosition GroupContractPosition
	// ActionID 群组动作标识；提案者为派生值，附议者必须引用既有动作
	ActionID   Identifier
	IsProposer bool
}

// TokenBaseTransition 各代币子转换共享的寻址字段
type TokenBaseTransition struct {
	DataContractID        Identifier
	TokenContractPosition TokenContractPosition
	IdentityContractNonce uint64
	// Group 需要群组授权的操作携带；nil 表示单人直接执行
	Group *GroupStateTransitionInfo
}

// TokenID 返回子转换寻址的代币标识符
func (b *TokenBaseTransition) TokenID() Identifier {
	w := codec.NewWriter()
	w.WriteFixed(b.DataContractID[:])
	w.WriteVarint(uint64(b.TokenContractPosition))
	return HashIdentifier(w.Bytes())
}

// TokenDistributionType 领取来源
type TokenDistributionType uint8

const (
	TokenDistributionPerpetual     TokenDistributionType = 0
	TokenDistributionPreProgrammed TokenDistributionType = 1
)

// TokenEmergencyActionKind 紧急操作
type TokenEmergencyActionKind uint8

const (
	TokenEmergencyPause  TokenEmergencyActionKind = 0
	TokenEmergencyResume TokenEmergencyActionKind = 1
)

// TokenTransition 代币子转换
type TokenTransition struct {
	Kind TokenTransitionKind
	Base TokenBaseTransition

	Mint               *TokenMintPayload
	Burn               *TokenBurnPayload
	Freeze             *TokenFreezePayload
	Unfreeze           *TokenFreezePayload
	DestroyFrozenFunds *TokenFreezePayload
	Transfer           *TokenTransferPayload
	DirectPurchase     *TokenDirectPurchasePayload
	SetPrice           *TokenSetPricePayload
	Claim              *TokenClaimPayload
	Emergency          *TokenEmergencyPayload
	ConfigUpdate       *TokenConfigUpdatePayload
}

// TokenMintPayload 铸造载荷；Recipient 为 nil 时铸给合约所有者
type TokenMintPayload struct {
	Amount    TokenAmount
	Recipient *Identifier
	Note      string
}

// TokenBurnPayload 销毁载荷
type TokenBurnPayload struct {
	Amount TokenAmount
	Note   string
}

// TokenFreezePayload 冻结/解冻/销毁冻结资金共用载荷
type TokenFreezePayload struct {
	FrozenIdentityID Identifier
	Note             string
}

// TokenTransferPayload 代币转账载荷
type TokenTransferPayload struct {
	Recipient Identifier
	Amount    TokenAmount
	Note      string
}

// TokenDirectPurchasePayload 直购载荷
//
// TotalAgreedPrice 是买方愿付总价；低于挂牌计算的应付总价则拒绝，
// 高于应付总价按应付总价扣费。
type TokenDirectPurchasePayload struct {
	Amount           TokenAmount
	TotalAgreedPrice Credits
}

// TokenSetPricePayload 挂牌/撤牌载荷；Price 为 nil 表示撤下直购
type TokenSetPricePayload struct {
	Price *TokenPricingSchedule
	Note  string
}

// TokenClaimPayload 领取载荷
type TokenClaimPayload struct {
	DistributionType TokenDistributionType
	Note             string
}

// TokenEmergencyPayload 紧急操作载荷
type TokenEmergencyPayload struct {
	Action TokenEmergencyActionKind
	Note   string
}

// TokenConfigUpdatePayload 配置更新载荷：完整的新配置镜像
type TokenConfigUpdatePayload struct {
	Config *TokenConfiguration
	Note   string
}

func (tt *TokenTransition) encode(w *codec.Writer) {
	w.WriteVarint(uint64(tt.Kind))
	w.WriteFixed(tt.Base.DataContractID[:])
	w.WriteVarint(uint64(tt.Base.TokenContractPosition))
	w.WriteVarint(tt.Base.IdentityContractNonce)
	w.WriteBool(tt.Base.Group != nil)
	if tt.Base.Group != nil {
		w.WriteVarint(uint64(tt.Base.Group.GroupContractPosition))
		w.WriteFixed(tt.Base.Group.ActionID[:])
		w.WriteBool(tt.Base.Group.IsProposer)
	}
	switch tt.Kind {
	case TokenTransitionMint:
		w.WriteVarint(uint64(tt.Mint.Amount))
		w.WriteBool(tt.Mint.Recipient != nil)
		if tt.Mint.Recipient != nil {
			w.WriteFixed(tt.Mint.Recipient[:])
		}
		w.WriteString(tt.Mint.Note)
	case TokenTransitionBurn:
		w.WriteVarint(uint64(tt.Burn.Amount))
		w.WriteString(tt.Burn.Note)
	case TokenTransitionFreeze:
		w.WriteFixed(tt.Freeze.FrozenIdentityID[:])
		w.WriteString(tt.Freeze.Note)
	case TokenTransitionUnfreeze:
		w.WriteFixed(tt.Unfreeze.FrozenIdentityID[:])
		w.WriteString(tt.Unfreeze.Note)
	case TokenTransitionDestroyFrozenFunds:
		w.WriteFixed(tt.DestroyFrozenFunds.FrozenIdentityID[:])
		w.WriteString(tt.DestroyFrozenFunds.Note)
	case TokenTransitionTransfer:
		w.WriteFixed(tt.Transfer.Recipient[:])
		w.WriteVarint(uint64(tt.Transfer.Amount))
		w.WriteString(tt.Transfer.Note)
	case TokenTransitionDirectPurchase:
		w.WriteVarint(uint64(tt.DirectPurchase.Amount))
		w.WriteVarint(uint64(tt.DirectPurchase.TotalAgreedPrice))
	case TokenTransitionSetPriceForDirectPurchase:
		w.WriteBool(tt.SetPrice.Price != nil)
		if tt.SetPrice.Price != nil {
			w.WriteVarint(uint64(tt.SetPrice.Price.Price))
			w.WriteVarint(uint64(tt.SetPrice.Price.MinimumSaleAmount))
		}
		w.WriteString(tt.SetPrice.Note)
	case TokenTransitionClaim:
		w.WriteVarint(uint64(tt.Claim.DistributionType))
		w.WriteString(tt.Claim.Note)
	case TokenTransitionEmergencyAction:
		w.WriteVarint(uint64(tt.Emergency.Action))
		w.WriteString(tt.Emergency.Note)
	case TokenTransitionConfigUpdate:
		encodeTokenConfiguration(w, tt.ConfigUpdate.Config)
		w.WriteString(tt.ConfigUpdate.Note)
	}
}

func decodeTokenTransition(r *codec.Reader) (*TokenTransition, error) {
	kind, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	tt := &TokenTransition{Kind: TokenTransitionKind(kind)}
	if tt.Base.DataContractID, err = readIdentifier(r); err != nil {
		return nil, err
	}
	pos, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	tt.Base.TokenContractPosition = TokenContractPosition(pos)
	if tt.Base.IdentityContractNonce, err = r.ReadVarint(); err != nil {
		return nil, err
	}
	hasGroup, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasGroup {
		g := &GroupStateTransitionInfo{}
		gpos, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		g.GroupContractPosition = GroupContractPosition(gpos)
		if g.ActionID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if g.IsProposer, err = r.ReadBool(); err != nil {
			return nil, err
		}
		tt.Base.Group = g
	}

	readNote := func() (string, error) { return r.ReadString() }
	switch tt.Kind {
	case TokenTransitionMint:
		p := &TokenMintPayload{}
		amount, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		p.Amount = TokenAmount(amount)
		hasRecipient, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if hasRecipient {
			id, err := readIdentifier(r)
			if err != nil {
				return nil, err
			}
			p.Recipient = &id
		}
		if p.Note, err = readNote(); err != nil {
			return nil, err
		}
		tt.Mint = p
	case TokenTransitionBurn:
		p := &TokenBurnPayload{}
		amount, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		p.Amount = TokenAmount(amount)
		if p.Note, err = readNote(); err != nil {
			return nil, err
		}
		tt.Burn = p
	case TokenTransitionFreeze, TokenTransitionUnfreeze, TokenTransitionDestroyFrozenFunds:
		p := &TokenFreezePayload{}
		if p.FrozenIdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if p.Note, err = readNote(); err != nil {
			return nil, err
		}
		switch tt.Kind {
		case TokenTransitionFreeze:
			tt.Freeze = p
		case TokenTransitionUnfreeze:
			tt.Unfreeze = p
		default:
			tt.DestroyFrozenFunds = p
		}
	case TokenTransitionTransfer:
		p := &TokenTransferPayload{}
		if p.Recipient, err = readIdentifier(r); err != nil {
			return nil, err
		}
		amount, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		p.Amount = TokenAmount(amount)
		if p.Note, err = readNote(); err != nil {
			return nil, err
		}
		tt.Transfer = p
	case TokenTransitionDirectPurchase:
		p := &TokenDirectPurchasePayload{}
		amount, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		p.Amount = TokenAmount(amount)
		price, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		p.TotalAgreedPrice = Credits(price)
		tt.DirectPurchase = p
	case TokenTransitionSetPriceForDirectPurchase:
		p := &TokenSetPricePayload{}
		hasPrice, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if hasPrice {
			schedule := &TokenPricingSchedule{}
			price, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			schedule.Price = Credits(price)
			minAmount, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			schedule.MinimumSaleAmount = TokenAmount(minAmount)
			p.Price = schedule
		}
		if p.Note, err = readNote(); err != nil {
			return nil, err
		}
		tt.SetPrice = p
	case TokenTransitionClaim:
		p := &TokenClaimPayload{}
		dist, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		p.DistributionType = TokenDistributionType(dist)
		if p.Note, err = readNote(); err != nil {
			return nil, err
		}
		tt.Claim = p
	case TokenTransitionEmergencyAction:
		p := &TokenEmergencyPayload{}
		action, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		p.Action = TokenEmergencyActionKind(action)
		if p.Note, err = readNote(); err != nil {
			return nil, err
		}
		tt.Emergency = p
	case TokenTransitionConfigUpdate:
		p := &TokenConfigUpdatePayload{}
		if p.Config, err = decodeTokenConfiguration(r); err != nil {
			return nil, err
		}
		if p.Note, err = readNote(); err != nil {
			return nil, err
		}
		tt.ConfigUpdate = p
	default:
		return nil, &StateTransitionDecodeError{Message: "unknown token transition kind"}
	}
	return tt, nil
}

// Note 返回子转换所附备注（无备注类别返回空串）
func (tt *TokenTransition) Note() string {
	switch tt.Kind {
	case TokenTransitionMint:
		return tt.Mint.Note
	case TokenTransitionBurn:
		return tt.Burn.Note
	case TokenTransitionFreeze:
		return tt.Freeze.Note
	case TokenTransitionUnfreeze:
		return tt.Unfreeze.Note
	case TokenTransitionDestroyFrozenFunds:
		return tt.DestroyFrozenFunds.Note
	case TokenTransitionTransfer:
		return tt.Transfer.Note
	case TokenTransitionSetPriceForDirectPurchase:
		return tt.SetPrice.Note
	case TokenTransitionClaim:
		return tt.Claim.Note
	case TokenTransitionEmergencyAction:
		return tt.Emergency.Note
	case TokenTransitionConfigUpdate:
		return tt.ConfigUpdate.Note
	}
	return ""
}

// DeriveGroupActionID 提案者的群组动作标识派生规则
func DeriveGroupActionID(contractID Identifier, proposerID Identifier, nonce uint64) Identifier {
	w := codec.NewWriter()
	w.WriteFixed(contractID[:])
	w.WriteFixed(proposerID[:])
	w.WriteVarint(nonce)
	return HashIdentifier(w.Bytes())
}
