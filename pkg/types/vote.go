package types

import (
	"sort"

	"github.com/evoplatform/v1/pkg/codec"
)

// Masternode 基础链主节点条目（只读外部状态）
//
// 由基础链的主节点列表馈送，核心仅读取投票密钥归属。
type Masternode struct {
	ProTxHash Identifier
	// VotingIdentityID 当前投票密钥对应的平台身份
	VotingIdentityID Identifier
}

// VoteChoice 投票选择
type VoteChoice struct {
	Kind VoteChoiceKind
	// TowardsIdentity Kind == VoteChoiceTowardsIdentity 时的竞争者身份
	TowardsIdentity Identifier
}

// VoteChoiceKind 投票选择类别
type VoteChoiceKind uint8

const (
	VoteChoiceTowardsIdentity VoteChoiceKind = 0 // 支持某竞争者
	VoteChoiceAbstain         VoteChoiceKind = 1 // 弃权
	VoteChoiceLock            VoteChoiceKind = 2 // 锁定资源（判定无人应得）
)

// ContestedResourceVotePoll 竞争资源投票议题
//
// 对应一个竞争唯一索引取值：(合约, 文档类型, 索引, 索引取值)。
type ContestedResourceVotePoll struct {
	ContractID    Identifier
	DocumentType  string
	IndexName     string
	IndexValues   []Value // 按索引属性顺序
	EndTimeMillis uint64  // 议题截止时间（区块时间）
}

// PollID 派生议题标识符
func (p *ContestedResourceVotePoll) PollID() Identifier {
	w := codec.NewWriter()
	w.WriteFixed(p.ContractID[:])
	w.WriteString(p.DocumentType)
	w.WriteString(p.IndexName)
	w.WriteVarint(uint64(len(p.IndexValues)))
	for _, v := range p.IndexValues {
		v.Encode(w)
	}
	return HashIdentifier(w.Bytes())
}

// VotePollState 投票议题累计状态（版本化信封）
type VotePollState struct {
	Version FormatVersion
	V0      *VotePollStateV0
}

// VotePollStateV0 议题状态 V0 格式
type VotePollStateV0 struct {
	Poll   ContestedResourceVotePoll
	Closed bool
	// Tally (选择摘要) → 票数；选择摘要为 VoteChoice 的规范编码
	Tally map[string]uint32
	// VotedMasternodes 已投票的主节点 → 其选择摘要（重复投票覆盖旧票）
	VotedMasternodes map[Identifier]string
	// Contenders 竞争者集合（文档 ID 为键）
	Contenders map[Identifier]Identifier // 竞争者身份 → 文档 ID
}

// NewVotePollStateV0 构造开放议题状态
func NewVotePollStateV0(poll ContestedResourceVotePoll) *VotePollState {
	return &VotePollState{
		Version: FormatV0,
		V0: &VotePollStateV0{
			Poll:             poll,
			Tally:            make(map[string]uint32),
			VotedMasternodes: make(map[Identifier]string),
			Contenders:       make(map[Identifier]Identifier),
		},
	}
}

// ChoiceKey 选择摘要（确定性字符串键）
func ChoiceKey(choice VoteChoice) string {
	w := codec.NewWriter()
	w.WriteVarint(uint64(choice.Kind))
	if choice.Kind == VoteChoiceTowardsIdentity {
		w.WriteFixed(choice.TowardsIdentity[:])
	}
	return string(w.Bytes())
}

// Poll 返回议题定义
func (s *VotePollState) Poll() ContestedResourceVotePoll {
	switch s.Version {
	case FormatV0:
		return s.V0.Poll
	}
	return ContestedResourceVotePoll{}
}

// Tally 返回各选择摘要的票数
func (s *VotePollState) Tally() map[string]uint32 {
	switch s.Version {
	case FormatV0:
		return s.V0.Tally
	}
	return nil
}

// Contenders 返回竞争者身份到文档 ID 的映射
func (s *VotePollState) Contenders() map[Identifier]Identifier {
	switch s.Version {
	case FormatV0:
		return s.V0.Contenders
	}
	return nil
}

// AddContender 登记竞争者及其文档
func (s *VotePollState) AddContender(identity, documentID Identifier) {
	switch s.Version {
	case FormatV0:
		s.V0.Contenders[identity] = documentID
	}
}

// Closed 议题是否已关闭
func (s *VotePollState) Closed() bool {
	switch s.Version {
	case FormatV0:
		return s.V0.Closed
	}
	return false
}

// Close 关闭议题
func (s *VotePollState) Close() {
	switch s.Version {
	case FormatV0:
		s.V0.Closed = true
	}
}

// RecordVote 记录主节点投票（重复投票替换旧票）
func (s *VotePollState) RecordVote(proTxHash Identifier, choice VoteChoice) {
	switch s.Version {
	case FormatV0:
		key := ChoiceKey(choice)
		if prev, ok := s.V0.VotedMasternodes[proTxHash]; ok {
			if s.V0.Tally[prev] > 0 {
				s.V0.Tally[prev]--
			}
		}
		s.V0.VotedMasternodes[proTxHash] = key
		s.V0.Tally[key]++
	}
}

// ==================== 序列化 ====================

func encodeVotePoll(w *codec.Writer, p *ContestedResourceVotePoll) {
	w.WriteFixed(p.ContractID[:])
	w.WriteString(p.DocumentType)
	w.WriteString(p.IndexName)
	w.WriteVarint(uint64(len(p.IndexValues)))
	for _, v := range p.IndexValues {
		v.Encode(w)
	}
	w.WriteVarint(p.EndTimeMillis)
}

func decodeVotePoll(r *codec.Reader) (ContestedResourceVotePoll, error) {
	var p ContestedResourceVotePoll
	var err error
	if p.ContractID, err = readIdentifier(r); err != nil {
		return p, err
	}
	if p.DocumentType, err = r.ReadString(); err != nil {
		return p, err
	}
	if p.IndexName, err = r.ReadString(); err != nil {
		return p, err
	}
	n, err := r.ReadVarint()
	if err != nil {
		return p, err
	}
	p.IndexValues = make([]Value, 0, min(n, 64))
	for i := uint64(0); i < n; i++ {
		v, err := DecodeValue(r)
		if err != nil {
			return p, err
		}
		p.IndexValues = append(p.IndexValues, v)
	}
	if p.EndTimeMillis, err = r.ReadVarint(); err != nil {
		return p, err
	}
	return p, nil
}

// Serialize 编码为规范字节
func (s *VotePollState) Serialize() []byte {
	return codec.EncodeEnvelope(uint64(s.Version), s.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
//
// 三个映射分别按主节点哈希、选择摘要、竞争者身份升序写入。
func (v *VotePollStateV0) EncodePayload(w *codec.Writer) {
	encodeVotePoll(w, &v.Poll)
	w.WriteBool(v.Closed)

	tallyKeys := make([]string, 0, len(v.Tally))
	for k := range v.Tally {
		tallyKeys = append(tallyKeys, k)
	}
	sort.Strings(tallyKeys)
	w.WriteVarint(uint64(len(tallyKeys)))
	for _, k := range tallyKeys {
		w.WriteString(k)
		w.WriteVarint(uint64(v.Tally[k]))
	}

	voted := sortedIdentifiers(v.VotedMasternodes)
	w.WriteVarint(uint64(len(voted)))
	for _, id := range voted {
		w.WriteFixed(id[:])
		w.WriteString(v.VotedMasternodes[id])
	}

	contenders := sortedIdentifiers(v.Contenders)
	w.WriteVarint(uint64(len(contenders)))
	for _, id := range contenders {
		w.WriteFixed(id[:])
		doc := v.Contenders[id]
		w.WriteFixed(doc[:])
	}
}

// DeserializeVotePollState 从规范字节还原议题状态
func DeserializeVotePollState(data []byte) (*VotePollState, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &VotePollStateV0{}
		if v0.Poll, err = decodeVotePoll(r); err != nil {
			return nil, err
		}
		if v0.Closed, err = r.ReadBool(); err != nil {
			return nil, err
		}
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.Tally = make(map[string]uint32, min(n, 256))
		for i := uint64(0); i < n; i++ {
			k, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			count, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			v0.Tally[k] = uint32(count)
		}
		m, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.VotedMasternodes = make(map[Identifier]string, min(m, 256))
		for i := uint64(0); i < m; i++ {
			id, err := readIdentifier(r)
			if err != nil {
				return nil, err
			}
			key, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			v0.VotedMasternodes[id] = key
		}
		c, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.Contenders = make(map[Identifier]Identifier, min(c, 256))
		for i := uint64(0); i < c; i++ {
			id, err := readIdentifier(r)
			if err != nil {
				return nil, err
			}
			doc, err := readIdentifier(r)
			if err != nil {
				return nil, err
			}
			v0.Contenders[id] = doc
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &VotePollState{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "VotePollState.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}
