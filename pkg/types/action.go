// 文件说明：
// 动作（Action）是状态转换经变换阶段产出的内存执行计划：引用已解析
// 的合约与文档、携带规范化后的待写入值。动作只在单次处理流程内存活，
// 不进入线格式，因此无需序列化。
package types

// Action 状态转换动作
//
// 🎯 **功能**：状态校验与存储应用两个阶段的共同输入。每个实现对应
// 一种转换类别。
//
// ⚠️ **核心约束**：动作创建后不可变；应用阶段绝不回写动作字段。
type Action interface {
	// Kind 返回产生该动作的转换类别
	Kind() TransitionKind
	// OwnerID 返回动作归属身份
	OwnerID() Identifier
	action()
}

// ==================== 身份动作 ====================

// IdentityCreateAction 身份创建动作
type IdentityCreateAction struct {
	IdentityID        Identifier
	PublicKeys        []*IdentityPublicKey
	InitialBalance    Credits // 资产锁定铸造的积分，处理费随后从中扣除
	AssetLockOutPoint []byte
	TransitionID      Identifier
}

func (a *IdentityCreateAction) Kind() TransitionKind  { return KindIdentityCreate }
func (a *IdentityCreateAction) OwnerID() Identifier   { return a.IdentityID }
func (a *IdentityCreateAction) action()               {}

// IdentityTopUpAction 身份充值动作
type IdentityTopUpAction struct {
	IdentityID        Identifier
	AddedBalance      Credits
	AssetLockOutPoint []byte
	TransitionID      Identifier
}

func (a *IdentityTopUpAction) Kind() TransitionKind { return KindIdentityTopUp }
func (a *IdentityTopUpAction) OwnerID() Identifier  { return a.IdentityID }
func (a *IdentityTopUpAction) action()              {}

// IdentityUpdateAction 身份更新动作
type IdentityUpdateAction struct {
	IdentityID        Identifier
	Revision          uint64
	Nonce             uint64
	AddPublicKeys     []*IdentityPublicKey
	DisablePublicKeys []KeyID
	// DisabledAtMillis 禁用键统一登记的区块时间
	DisabledAtMillis uint64
}

func (a *IdentityUpdateAction) Kind() TransitionKind { return KindIdentityUpdate }
func (a *IdentityUpdateAction) OwnerID() Identifier  { return a.IdentityID }
func (a *IdentityUpdateAction) action()              {}

// IdentityCreditTransferAction 积分转账动作
type IdentityCreditTransferAction struct {
	IdentityID  Identifier
	RecipientID Identifier
	Amount      Credits
	Nonce       uint64
}

func (a *IdentityCreditTransferAction) Kind() TransitionKind { return KindIdentityCreditTransfer }
func (a *IdentityCreditTransferAction) OwnerID() Identifier  { return a.IdentityID }
func (a *IdentityCreditTransferAction) action()              {}

// IdentityCreditWithdrawalAction 积分提现动作
type IdentityCreditWithdrawalAction struct {
	IdentityID     Identifier
	Amount         Credits
	CoreFeePerByte uint32
	OutputScript   []byte
	Nonce          uint64
}

func (a *IdentityCreditWithdrawalAction) Kind() TransitionKind { return KindIdentityCreditWithdrawal }
func (a *IdentityCreditWithdrawalAction) OwnerID() Identifier  { return a.IdentityID }
func (a *IdentityCreditWithdrawalAction) action()              {}

// ==================== 合约动作 ====================

// DataContractCreateAction 合约创建动作
type DataContractCreateAction struct {
	Contract *DataContract
	Nonce    uint64
}

func (a *DataContractCreateAction) Kind() TransitionKind { return KindDataContractCreate }
func (a *DataContractCreateAction) OwnerID() Identifier  { return a.Contract.OwnerID() }
func (a *DataContractCreateAction) action()              {}

// DataContractUpdateAction 合约更新动作
type DataContractUpdateAction struct {
	Contract      *DataContract
	ContractNonce uint64
}

func (a *DataContractUpdateAction) Kind() TransitionKind { return KindDataContractUpdate }
func (a *DataContractUpdateAction) OwnerID() Identifier  { return a.Contract.OwnerID() }
func (a *DataContractUpdateAction) action()              {}

// ==================== 批量动作 ====================

// BatchAction 批量动作：文档与代币子动作的有序序列
type BatchAction struct {
	Owner      Identifier
	SubActions []BatchedAction
}

func (a *BatchAction) Kind() TransitionKind { return KindBatch }
func (a *BatchAction) OwnerID() Identifier  { return a.Owner }
func (a *BatchAction) action()              {}

// BatchedAction 批内子动作
type BatchedAction interface {
	batchedAction()
}

// DocumentCreateAction 文档创建子动作
//
// Document 已携带派生后的 ID、所有者与初始修订号 1；变换阶段完成
// 属性规范化与时间戳填充。
type DocumentCreateAction struct {
	Contract *DataContract
	TypeName string
	Document *Document
	Nonce    uint64
	// PrefundedVotingBalance 争用创建的裁决预付费；nil 表示普通创建
	PrefundedVotingBalance *Credits
	// ContestedPoll 争用创建开启的议题；与 PrefundedVotingBalance 同在
	ContestedPoll *ContestedResourceVotePoll
}

func (a *DocumentCreateAction) batchedAction() {}

// DocumentReplaceAction 文档替换子动作
type DocumentReplaceAction struct {
	Contract *DataContract
	TypeName string
	// Document 替换后的完整镜像，修订号已递增
	Document *Document
	// PreviousSize 被替换镜像的规范字节数，用于存储费退款
	PreviousSize uint64
	Nonce        uint64
}

func (a *DocumentReplaceAction) batchedAction() {}

// DocumentDeleteAction 文档删除子动作
type DocumentDeleteAction struct {
	Contract   *DataContract
	TypeName   string
	DocumentID Identifier
	// PreviousSize 被删除镜像的规范字节数，用于存储费退款
	PreviousSize uint64
	Nonce        uint64
}

func (a *DocumentDeleteAction) batchedAction() {}

// DocumentTransferAction 文档转移子动作
type DocumentTransferAction struct {
	Contract       *DataContract
	TypeName       string
	DocumentID     Identifier
	Revision       uint64
	RecipientOwner Identifier
	Nonce          uint64
}

func (a *DocumentTransferAction) batchedAction() {}

// DocumentPurchaseAction 文档购买子动作
type DocumentPurchaseAction struct {
	Contract   *DataContract
	TypeName   string
	DocumentID Identifier
	Revision   uint64
	// Price 买方出价；状态校验要求与挂牌价完全一致
	Price Credits
	Nonce uint64
}

func (a *DocumentPurchaseAction) batchedAction() {}

// DocumentUpdatePriceAction 文档改价子动作
type DocumentUpdatePriceAction struct {
	Contract   *DataContract
	TypeName   string
	DocumentID Identifier
	Revision   uint64
	Price      Credits
	Nonce      uint64
}

func (a *DocumentUpdatePriceAction) batchedAction() {}

// TokenAction 代币子动作：解析后的代币上下文加原始子转换
//
// 代币子转换种类多而载荷small，动作层保留原始载荷并补充解析结果，
// 不再逐种展开。
type TokenAction struct {
	Contract *DataContract
	TokenID  Identifier
	Config   *TokenConfiguration
	// Transition 结构校验通过的原始子转换
	Transition *TokenTransition
	Nonce      uint64
}

func (a *TokenAction) batchedAction() {}

// ==================== 投票动作 ====================

// MasternodeVoteAction 主节点投票动作
type MasternodeVoteAction struct {
	ProTxHash       Identifier
	VoterIdentityID Identifier
	Poll            ContestedResourceVotePoll
	Choice          VoteChoice
	Nonce           uint64
}

func (a *MasternodeVoteAction) Kind() TransitionKind { return KindMasternodeVote }
func (a *MasternodeVoteAction) OwnerID() Identifier  { return a.VoterIdentityID }
func (a *MasternodeVoteAction) action()              {}

// ==================== 兜底动作 ====================

// BumpIdentityNonceAction 仅推进全局 nonce 的兜底动作
//
// 转换在状态校验失败但已付费时，仍须推进 nonce 防止重放同一失败
// 转换刷费。
type BumpIdentityNonceAction struct {
	IdentityID Identifier
	Nonce      uint64
	TransitionKindHint TransitionKind
}

func (a *BumpIdentityNonceAction) Kind() TransitionKind { return a.TransitionKindHint }
func (a *BumpIdentityNonceAction) OwnerID() Identifier  { return a.IdentityID }
func (a *BumpIdentityNonceAction) action()              {}

// BumpIdentityContractNonceAction 仅推进（身份，合约）nonce 的兜底动作
type BumpIdentityContractNonceAction struct {
	IdentityID Identifier
	ContractID Identifier
	Nonce      uint64
	TransitionKindHint TransitionKind
}

func (a *BumpIdentityContractNonceAction) Kind() TransitionKind { return a.TransitionKindHint }
func (a *BumpIdentityContractNonceAction) OwnerID() Identifier  { return a.IdentityID }
func (a *BumpIdentityContractNonceAction) action()              {}
