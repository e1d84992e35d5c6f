package types

import (
	"sort"

	"github.com/evoplatform/v1/pkg/codec"
)

// CreationRestrictionMode 文档创建限制模式
type CreationRestrictionMode uint8

const (
	CreationNoRestrictions    CreationRestrictionMode = 0 // 任何身份可创建
	CreationOwnerOnly         CreationRestrictionMode = 1 // 仅合约所有者
	CreationNoCreationAllowed CreationRestrictionMode = 2 // 禁止创建（仅系统预置）
)

// IndexProperty 索引属性（字段 + 排序方向）
type IndexProperty struct {
	Field     string
	Ascending bool
}

// Index 文档类型索引定义
type Index struct {
	Name       string
	Properties []IndexProperty // 有序：复合索引按声明顺序取值
	Unique     bool
	// Contested 竞争索引配置；非 nil 时该唯一索引的取值需经主节点投票裁决
	Contested *ContestedIndexConfig
}

// ContestedIndexConfig 竞争索引配置
type ContestedIndexConfig struct {
	// ResolutionCost 参与竞争所需预付的投票费用
	ResolutionCost Credits
}

// DocumentType 文档类型定义（schema + 索引 + 可变性）
//
// 随所属合约的信封一起版本化，不单独携带版本标签。
type DocumentType struct {
	Name                 string
	Schema               Value // JSON-Schema 文档（Map 值），校验文档属性
	Indices              []*Index
	DocumentsMutable     bool
	DocumentsKeepHistory bool
	CreationRestriction  CreationRestrictionMode
}

// UniqueIndices 返回全部唯一索引
func (dt *DocumentType) UniqueIndices() []*Index {
	out := make([]*Index, 0, len(dt.Indices))
	for _, idx := range dt.Indices {
		if idx.Unique {
			out = append(out, idx)
		}
	}
	return out
}

// ContestedIndex 返回首个竞争索引（合约校验保证至多一个）
func (dt *DocumentType) ContestedIndex() *Index {
	for _, idx := range dt.Indices {
		if idx.Contested != nil {
			return idx
		}
	}
	return nil
}

// Group 多签群组：成员 → 投票权，累计达到阈值后动作关闭
type Group struct {
	Members       map[Identifier]uint32
	RequiredPower uint32
}

// MemberPower 返回成员的投票权；非成员返回 0
func (g *Group) MemberPower(id Identifier) uint32 {
	return g.Members[id]
}

// TotalPower 返回全体成员投票权之和
func (g *Group) TotalPower() uint64 {
	var total uint64
	for _, p := range g.Members {
		total += uint64(p)
	}
	return total
}

// ==================== 代币配置 ====================

// AuthorizedKind 授权执行者类别
type AuthorizedKind uint8

const (
	AuthorizedNoOne         AuthorizedKind = 0
	AuthorizedContractOwner AuthorizedKind = 1
	AuthorizedIdentity      AuthorizedKind = 2
	AuthorizedMainGroup     AuthorizedKind = 3
	AuthorizedGroup         AuthorizedKind = 4
)

// AuthorizedActionTakers 代币操作授权规则
type AuthorizedActionTakers struct {
	Kind     AuthorizedKind
	Identity Identifier            // Kind == AuthorizedIdentity 时有效
	Group    GroupContractPosition // Kind == AuthorizedGroup 时有效
}

// TokenTradeMode 市场交易模式
type TokenTradeMode uint8

const (
	TokenNotTradeable       TokenTradeMode = 0
	TokenTradeModeDirectBuy TokenTradeMode = 1
)

// TokenPricingSchedule 直购定价
type TokenPricingSchedule struct {
	Price             Credits     // 单价（积分/代币）
	MinimumSaleAmount TokenAmount // 单次购买最小数量
}

// TokenPerpetualDistribution 永续分配规则
type TokenPerpetualDistribution struct {
	IntervalMillis    uint64      // 分配间隔（基于区块时间）
	AmountPerInterval TokenAmount // 每个间隔可领取的数量
	RecipientID       Identifier  // 领取者（零值表示合约所有者）
}

// TokenDistributionEntry 预编程分配表项
type TokenDistributionEntry struct {
	TimeMillis uint64
	Recipient  Identifier
	Amount     TokenAmount
}

// TokenConfiguration 合约内单个代币位置的配置
type TokenConfiguration struct {
	BaseSupply     TokenAmount
	MaxSupply      *TokenAmount // nil 表示无上限
	StartAsPaused  bool
	KeepsHistory   bool
	TradeMode      TokenTradeMode
	DirectPricing  *TokenPricingSchedule // nil 表示未挂牌直购
	Perpetual      *TokenPerpetualDistribution
	PreProgrammed  []TokenDistributionEntry // 按 TimeMillis 升序

	MintingRules            AuthorizedActionTakers
	BurningRules            AuthorizedActionTakers
	FreezeRules             AuthorizedActionTakers
	UnfreezeRules           AuthorizedActionTakers
	DestroyFrozenFundsRules AuthorizedActionTakers
	EmergencyActionRules    AuthorizedActionTakers
	ConfigUpdateRules       AuthorizedActionTakers

	// MainControlGroup 主控群组位置；nil 表示未设置（MainGroup 授权不可用）
	MainControlGroup *GroupContractPosition
}

// ==================== 数据合约 ====================

// DataContract 数据合约（版本化信封）
//
// ⚠️ **核心约束**：
// - 文档类型与代币不能同时为空
// - 群组位置、代币位置均须从 0 起连续
// - 仅所有者可更新（群组授权规则允许时除外）
type DataContract struct {
	Version FormatVersion
	V0      *DataContractV0
}

// DataContractV0 数据合约 V0 格式
type DataContractV0 struct {
	ID              Identifier
	OwnerID         Identifier
	ContractVersion uint32 // 合约定义版本，更新转换每次 +1
	KeepsHistory    bool
	DocumentTypes   map[string]*DocumentType
	Tokens          map[TokenContractPosition]*TokenConfiguration
	Groups          map[GroupContractPosition]*Group
}

// NewDataContractV0 构造 V0 合约信封
func NewDataContractV0(v0 *DataContractV0) *DataContract {
	if v0.ContractVersion == 0 {
		v0.ContractVersion = 1
	}
	return &DataContract{Version: FormatV0, V0: v0}
}

// ID 返回合约标识符
func (c *DataContract) ID() Identifier {
	switch c.Version {
	case FormatV0:
		return c.V0.ID
	}
	return Identifier{}
}

// OwnerID 返回所有者身份
func (c *DataContract) OwnerID() Identifier {
	switch c.Version {
	case FormatV0:
		return c.V0.OwnerID
	}
	return Identifier{}
}

// ContractVersion 返回合约定义版本
func (c *DataContract) ContractVersion() uint32 {
	switch c.Version {
	case FormatV0:
		return c.V0.ContractVersion
	}
	return 0
}

// DocumentTypes 返回文档类型映射
func (c *DataContract) DocumentTypes() map[string]*DocumentType {
	switch c.Version {
	case FormatV0:
		return c.V0.DocumentTypes
	}
	return nil
}

// DocumentType 按名称查询文档类型
func (c *DataContract) DocumentType(name string) (*DocumentType, bool) {
	dt, ok := c.DocumentTypes()[name]
	return dt, ok
}

// Tokens 返回代币配置映射
func (c *DataContract) Tokens() map[TokenContractPosition]*TokenConfiguration {
	switch c.Version {
	case FormatV0:
		return c.V0.Tokens
	}
	return nil
}

// TokenAt 按位置查询代币配置
func (c *DataContract) TokenAt(position TokenContractPosition) (*TokenConfiguration, bool) {
	tc, ok := c.Tokens()[position]
	return tc, ok
}

// Groups 返回群组映射
func (c *DataContract) Groups() map[GroupContractPosition]*Group {
	switch c.Version {
	case FormatV0:
		return c.V0.Groups
	}
	return nil
}

// GroupAt 按位置查询群组
func (c *DataContract) GroupAt(position GroupContractPosition) (*Group, bool) {
	g, ok := c.Groups()[position]
	return g, ok
}

// TokenID 派生代币标识符：H(合约 ID || 位置)
func (c *DataContract) TokenID(position TokenContractPosition) Identifier {
	seed := make([]byte, 0, IdentifierLength+2)
	seed = append(seed, c.ID().Bytes()...)
	seed = append(seed, byte(position>>8), byte(position))
	return HashIdentifier(seed)
}

// ==================== 序列化 ====================

// Serialize 编码为规范字节
func (c *DataContract) Serialize() []byte {
	return codec.EncodeEnvelope(uint64(c.Version), c.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
//
// 三个映射均按键升序写入。
func (v *DataContractV0) EncodePayload(w *codec.Writer) {
	w.WriteFixed(v.ID[:])
	w.WriteFixed(v.OwnerID[:])
	w.WriteVarint(uint64(v.ContractVersion))
	w.WriteBool(v.KeepsHistory)

	names := make([]string, 0, len(v.DocumentTypes))
	for name := range v.DocumentTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	w.WriteVarint(uint64(len(names)))
	for _, name := range names {
		encodeDocumentType(w, v.DocumentTypes[name])
	}

	tokenPositions := make([]TokenContractPosition, 0, len(v.Tokens))
	for p := range v.Tokens {
		tokenPositions = append(tokenPositions, p)
	}
	sort.Slice(tokenPositions, func(a, b int) bool { return tokenPositions[a] < tokenPositions[b] })
	w.WriteVarint(uint64(len(tokenPositions)))
	for _, p := range tokenPositions {
		w.WriteVarint(uint64(p))
		encodeTokenConfiguration(w, v.Tokens[p])
	}

	groupPositions := make([]GroupContractPosition, 0, len(v.Groups))
	for p := range v.Groups {
		groupPositions = append(groupPositions, p)
	}
	sort.Slice(groupPositions, func(a, b int) bool { return groupPositions[a] < groupPositions[b] })
	w.WriteVarint(uint64(len(groupPositions)))
	for _, p := range groupPositions {
		w.WriteVarint(uint64(p))
		encodeGroup(w, v.Groups[p])
	}
}

func encodeDocumentType(w *codec.Writer, dt *DocumentType) {
	w.WriteString(dt.Name)
	dt.Schema.Encode(w)
	w.WriteVarint(uint64(len(dt.Indices)))
	for _, idx := range dt.Indices {
		w.WriteString(idx.Name)
		w.WriteVarint(uint64(len(idx.Properties)))
		for _, p := range idx.Properties {
			w.WriteString(p.Field)
			w.WriteBool(p.Ascending)
		}
		w.WriteBool(idx.Unique)
		w.WriteBool(idx.Contested != nil)
		if idx.Contested != nil {
			w.WriteVarint(uint64(idx.Contested.ResolutionCost))
		}
	}
	w.WriteBool(dt.DocumentsMutable)
	w.WriteBool(dt.DocumentsKeepHistory)
	w.WriteVarint(uint64(dt.CreationRestriction))
}

func encodeAuthorizedActionTakers(w *codec.Writer, a AuthorizedActionTakers) {
	w.WriteVarint(uint64(a.Kind))
	switch a.Kind {
	case AuthorizedIdentity:
		w.WriteFixed(a.Identity[:])
	case AuthorizedGroup:
		w.WriteVarint(uint64(a.Group))
	}
}

func encodeTokenConfiguration(w *codec.Writer, tc *TokenConfiguration) {
	w.WriteVarint(uint64(tc.BaseSupply))
	w.WriteBool(tc.MaxSupply != nil)
	if tc.MaxSupply != nil {
		w.WriteVarint(uint64(*tc.MaxSupply))
	}
	w.WriteBool(tc.StartAsPaused)
	w.WriteBool(tc.KeepsHistory)
	w.WriteVarint(uint64(tc.TradeMode))
	w.WriteBool(tc.DirectPricing != nil)
	if tc.DirectPricing != nil {
		w.WriteVarint(uint64(tc.DirectPricing.Price))
		w.WriteVarint(uint64(tc.DirectPricing.MinimumSaleAmount))
	}
	w.WriteBool(tc.Perpetual != nil)
	if tc.Perpetual != nil {
		w.WriteVarint(tc.Perpetual.IntervalMillis)
		w.WriteVarint(uint64(tc.Perpetual.AmountPerInterval))
		w.WriteFixed(tc.Perpetual.RecipientID[:])
	}
	w.WriteVarint(uint64(len(tc.PreProgrammed)))
	for _, entry := range tc.PreProgrammed {
		w.WriteVarint(entry.TimeMillis)
		w.WriteFixed(entry.Recipient[:])
		w.WriteVarint(uint64(entry.Amount))
	}
	encodeAuthorizedActionTakers(w, tc.MintingRules)
	encodeAuthorizedActionTakers(w, tc.BurningRules)
	encodeAuthorizedActionTakers(w, tc.FreezeRules)
	encodeAuthorizedActionTakers(w, tc.UnfreezeRules)
	encodeAuthorizedActionTakers(w, tc.DestroyFrozenFundsRules)
	encodeAuthorizedActionTakers(w, tc.EmergencyActionRules)
	encodeAuthorizedActionTakers(w, tc.ConfigUpdateRules)
	w.WriteBool(tc.MainControlGroup != nil)
	if tc.MainControlGroup != nil {
		w.WriteVarint(uint64(*tc.MainControlGroup))
	}
}

func encodeGroup(w *codec.Writer, g *Group) {
	members := make([]Identifier, 0, len(g.Members))
	for id := range g.Members {
		members = append(members, id)
	}
	sort.Slice(members, func(a, b int) bool { return members[a].Less(members[b]) })
	w.WriteVarint(uint64(len(members)))
	for _, id := range members {
		w.WriteFixed(id[:])
		w.WriteVarint(uint64(g.Members[id]))
	}
	w.WriteVarint(uint64(g.RequiredPower))
}

// DeserializeDataContract 从规范字节还原合约
func DeserializeDataContract(data []byte) (*DataContract, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0, err := decodeDataContractV0(r)
		if err != nil {
			return nil, err
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &DataContract{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "DataContract.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}

func decodeDataContractV0(r *codec.Reader) (*DataContractV0, error) {
	v := &DataContractV0{}
	var err error
	if v.ID, err = readIdentifier(r); err != nil {
		return nil, err
	}
	if v.OwnerID, err = readIdentifier(r); err != nil {
		return nil, err
	}
	contractVersion, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	v.ContractVersion = uint32(contractVersion)
	if v.KeepsHistory, err = r.ReadBool(); err != nil {
		return nil, err
	}

	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	v.DocumentTypes = make(map[string]*DocumentType, min(n, 256))
	for i := uint64(0); i < n; i++ {
		dt, err := decodeDocumentType(r)
		if err != nil {
			return nil, err
		}
		v.DocumentTypes[dt.Name] = dt
	}

	if n, err = r.ReadVarint(); err != nil {
		return nil, err
	}
	v.Tokens = make(map[TokenContractPosition]*TokenConfiguration, min(n, 256))
	for i := uint64(0); i < n; i++ {
		p, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		tc, err := decodeTokenConfiguration(r)
		if err != nil {
			return nil, err
		}
		v.Tokens[TokenContractPosition(p)] = tc
	}

	if n, err = r.ReadVarint(); err != nil {
		return nil, err
	}
	v.Groups = make(map[GroupContractPosition]*Group, min(n, 256))
	for i := uint64(0); i < n; i++ {
		p, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		g, err := decodeGroup(r)
		if err != nil {
			return nil, err
		}
		v.Groups[GroupContractPosition(p)] = g
	}
	return v, nil
}

func decodeDocumentType(r *codec.Reader) (*DocumentType, error) {
	dt := &DocumentType{}
	var err error
	if dt.Name, err = r.ReadString(); err != nil {
		return nil, err
	}
	if dt.Schema, err = DecodeValue(r); err != nil {
		return nil, err
	}
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	dt.Indices = make([]*Index, 0, min(n, 64))
	for i := uint64(0); i < n; i++ {
		idx := &Index{}
		if idx.Name, err = r.ReadString(); err != nil {
			return nil, err
		}
		props, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		idx.Properties = make([]IndexProperty, 0, min(props, 16))
		for j := uint64(0); j < props; j++ {
			var p IndexProperty
			if p.Field, err = r.ReadString(); err != nil {
				return nil, err
			}
			if p.Ascending, err = r.ReadBool(); err != nil {
				return nil, err
			}
			idx.Properties = append(idx.Properties, p)
		}
		if idx.Unique, err = r.ReadBool(); err != nil {
			return nil, err
		}
		hasContested, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if hasContested {
			cost, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			idx.Contested = &ContestedIndexConfig{ResolutionCost: Credits(cost)}
		}
		dt.Indices = append(dt.Indices, idx)
	}
	if dt.DocumentsMutable, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if dt.DocumentsKeepHistory, err = r.ReadBool(); err != nil {
		return nil, err
	}
	mode, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	dt.CreationRestriction = CreationRestrictionMode(mode)
	return dt, nil
}

func decodeAuthorizedActionTakers(r *codec.Reader) (AuthorizedActionTakers, error) {
	var a AuthorizedActionTakers
	kind, err := r.ReadVarint()
	if err != nil {
		return a, err
	}
	a.Kind = AuthorizedKind(kind)
	switch a.Kind {
	case AuthorizedIdentity:
		if a.Identity, err = readIdentifier(r); err != nil {
			return a, err
		}
	case AuthorizedGroup:
		g, err := r.ReadVarint()
		if err != nil {
			return a, err
		}
		a.Group = GroupContractPosition(g)
	}
	return a, nil
}

func decodeTokenConfiguration(r *codec.Reader) (*TokenConfiguration, error) {
	tc := &TokenConfiguration{}
	base, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	tc.BaseSupply = TokenAmount(base)
	hasMax, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasMax {
		m, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		maxSupply := TokenAmount(m)
		tc.MaxSupply = &maxSupply
	}
	if tc.StartAsPaused, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if tc.KeepsHistory, err = r.ReadBool(); err != nil {
		return nil, err
	}
	mode, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	tc.TradeMode = TokenTradeMode(mode)
	hasPricing, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasPricing {
		price, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		minimum, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		tc.DirectPricing = &TokenPricingSchedule{
			Price:             Credits(price),
			MinimumSaleAmount: TokenAmount(minimum),
		}
	}
	hasPerpetual, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasPerpetual {
		p := &TokenPerpetualDistribution{}
		if p.IntervalMillis, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		amount, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		p.AmountPerInterval = TokenAmount(amount)
		if p.RecipientID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		tc.Perpetual = p
	}
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	tc.PreProgrammed = make([]TokenDistributionEntry, 0, min(n, 256))
	for i := uint64(0); i < n; i++ {
		var entry TokenDistributionEntry
		if entry.TimeMillis, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if entry.Recipient, err = readIdentifier(r); err != nil {
			return nil, err
		}
		amount, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		entry.Amount = TokenAmount(amount)
		tc.PreProgrammed = append(tc.PreProgrammed, entry)
	}
	for _, rules := range []*AuthorizedActionTakers{
		&tc.MintingRules, &tc.BurningRules, &tc.FreezeRules, &tc.UnfreezeRules,
		&tc.DestroyFrozenFundsRules, &tc.EmergencyActionRules, &tc.ConfigUpdateRules,
	} {
		if *rules, err = decodeAuthorizedActionTakers(r); err != nil {
			return nil, err
		}
	}
	hasMainGroup, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasMainGroup {
		g, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		pos := GroupContractPosition(g)
		tc.MainControlGroup = &pos
	}
	return tc, nil
}

func decodeGroup(r *codec.Reader) (*Group, error) {
	g := &Group{}
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	g.Members = make(map[Identifier]uint32, min(n, 256))
	for i := uint64(0); i < n; i++ {
		id, err := readIdentifier(r)
		if err != nil {
			return nil, err
		}
		power, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		g.Members[id] = uint32(power)
	}
	required, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	g.RequiredPower = uint32(required)
	return g, nil
}
