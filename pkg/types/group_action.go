package types

import "github.com/evoplatform/v1/pkg/codec"

// GroupActionStatus 群组动作状态
type GroupActionStatus uint8

const (
	GroupActionActive GroupActionStatus = 0 // 开放签署
	GroupActionClosed GroupActionStatus = 1 // 已达阈值，效果已触发
)

// GroupAction 群组动作（版本化信封）
//
// 累积签署者投票权直至达到群组阈值；达到即关闭并触发绑定效果，
// 恰好触发一次。已关闭的动作不可重开、不可再签。
type GroupAction struct {
	Version FormatVersion
	V0      *GroupActionV0
}

// GroupActionV0 群组动作 V0 格式
type GroupActionV0 struct {
	ID            Identifier
	ContractID    Identifier
	GroupPosition GroupContractPosition
	Status        GroupActionStatus
	// Signers 已签署成员 → 计入的投票权
	Signers map[Identifier]uint32
}

// NewGroupActionV0 构造开放状态的群组动作
func NewGroupActionV0(id, contractID Identifier, position GroupContractPosition) *GroupAction {
	return &GroupAction{
		Version: FormatV0,
		V0: &GroupActionV0{
			ID:            id,
			ContractID:    contractID,
			GroupPosition: position,
			Status:        GroupActionActive,
			Signers:       make(map[Identifier]uint32),
		},
	}
}

// ID 返回动作标识符
func (a *GroupAction) ID() Identifier {
	switch a.Version {
	case FormatV0:
		return a.V0.ID
	}
	return Identifier{}
}

// ContractID 返回所属合约
func (a *GroupAction) ContractID() Identifier {
	switch a.Version {
	case FormatV0:
		return a.V0.ContractID
	}
	return Identifier{}
}

// GroupPosition 返回群组位置
func (a *GroupAction) GroupPosition() GroupContractPosition {
	switch a.Version {
	case FormatV0:
		return a.V0.GroupPosition
	}
	return 0
}

// Status 返回动作状态
func (a *GroupAction) Status() GroupActionStatus {
	switch a.Version {
	case FormatV0:
		return a.V0.Status
	}
	return GroupActionActive
}

// HasSigned 成员是否已签署
func (a *GroupAction) HasSigned(id Identifier) bool {
	switch a.Version {
	case FormatV0:
		_, ok := a.V0.Signers[id]
		return ok
	}
	return false
}

// TotalPower 返回已累积的投票权
func (a *GroupAction) TotalPower() uint64 {
	switch a.Version {
	case FormatV0:
		var total uint64
		for _, p := range a.V0.Signers {
			total += uint64(p)
		}
		return total
	}
	return 0
}

// AddSigner 记入成员签署（存储应用步骤调用）
func (a *GroupAction) AddSigner(id Identifier, power uint32) {
	switch a.Version {
	case FormatV0:
		a.V0.Signers[id] = power
	}
}

// Close 关闭动作
func (a *GroupAction) Close() {
	switch a.Version {
	case FormatV0:
		a.V0.Status = GroupActionClosed
	}
}

// Serialize 编码为规范字节
func (a *GroupAction) Serialize() []byte {
	return codec.EncodeEnvelope(uint64(a.Version), a.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *GroupActionV0) EncodePayload(w *codec.Writer) {
	w.WriteFixed(v.ID[:])
	w.WriteFixed(v.ContractID[:])
	w.WriteVarint(uint64(v.GroupPosition))
	w.WriteVarint(uint64(v.Status))
	ids := sortedIdentifiers(v.Signers)
	w.WriteVarint(uint64(len(ids)))
	for _, id := range ids {
		w.WriteFixed(id[:])
		w.WriteVarint(uint64(v.Signers[id]))
	}
}

// DeserializeGroupAction 从规范字节还原群组动作
func DeserializeGroupAction(data []byte) (*GroupAction, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &GroupActionV0{}
		if v0.ID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if v0.ContractID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		position, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.GroupPosition = GroupContractPosition(position)
		status, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.Status = GroupActionStatus(status)
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.Signers = make(map[Identifier]uint32, min(n, 256))
		for i := uint64(0); i < n; i++ {
			id, err := readIdentifier(r)
			if err != nil {
				return nil, err
			}
			power, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			v0.Signers[id] = uint32(power)
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &GroupAction{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "GroupAction.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}
