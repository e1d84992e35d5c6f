package types

import (
	"sort"

	"github.com/evoplatform/v1/pkg/codec"
)

// Document 文档（版本化信封）
//
// ⚠️ **核心约束**：
// Revision 当且仅当所属文档类型可变时存在；创建可变文档 revision=1，
// 每次成功替换/转移/购买/改价 +1。
type Document struct {
	Version FormatVersion
	V0      *DocumentV0
}

// DocumentV0 文档 V0 格式
type DocumentV0 struct {
	ID         Identifier
	OwnerID    Identifier
	Properties map[string]Value
	Revision   *uint64 // 所属类型可变时存在
	CreatedAt  *uint64 // 毫秒时间戳
	UpdatedAt  *uint64
	// Price 挂牌出售价；nil 表示未挂牌
	Price *Credits
}

// NewDocumentV0 构造 V0 文档信封
func NewDocumentV0(v0 *DocumentV0) *Document {
	return &Document{Version: FormatV0, V0: v0}
}

// ID 返回文档标识符
func (d *Document) ID() Identifier {
	switch d.Version {
	case FormatV0:
		return d.V0.ID
	}
	return Identifier{}
}

// OwnerID 返回所有者
func (d *Document) OwnerID() Identifier {
	switch d.Version {
	case FormatV0:
		return d.V0.OwnerID
	}
	return Identifier{}
}

// SetOwnerID 设置所有者（购买/转移的存储应用步骤调用）
func (d *Document) SetOwnerID(owner Identifier) {
	switch d.Version {
	case FormatV0:
		d.V0.OwnerID = owner
	}
}

// Properties 返回属性映射
func (d *Document) Properties() map[string]Value {
	switch d.Version {
	case FormatV0:
		return d.V0.Properties
	}
	return nil
}

// Property 按名称取属性
func (d *Document) Property(name string) (Value, bool) {
	v, ok := d.Properties()[name]
	return v, ok
}

// SetProperties 整体替换属性
func (d *Document) SetProperties(props map[string]Value) {
	switch d.Version {
	case FormatV0:
		d.V0.Properties = props
	}
}

// Revision 返回修订号；nil 表示类型不可变
func (d *Document) Revision() *uint64 {
	switch d.Version {
	case FormatV0:
		return d.V0.Revision
	}
	return nil
}

// SetRevision 设置修订号
func (d *Document) SetRevision(revision uint64) {
	switch d.Version {
	case FormatV0:
		r := revision
		d.V0.Revision = &r
	}
}

// CreatedAt 返回创建时间
func (d *Document) CreatedAt() *uint64 {
	switch d.Version {
	case FormatV0:
		return d.V0.CreatedAt
	}
	return nil
}

// UpdatedAt 返回更新时间
func (d *Document) UpdatedAt() *uint64 {
	switch d.Version {
	case FormatV0:
		return d.V0.UpdatedAt
	}
	return nil
}

// SetUpdatedAt 设置更新时间
func (d *Document) SetUpdatedAt(millis uint64) {
	switch d.Version {
	case FormatV0:
		t := millis
		d.V0.UpdatedAt = &t
	}
}

// Price 返回挂牌价；nil 表示未挂牌
func (d *Document) Price() *Credits {
	switch d.Version {
	case FormatV0:
		return d.V0.Price
	}
	return nil
}

// SetPrice 设置挂牌价；传 nil 表示下架
func (d *Document) SetPrice(price *Credits) {
	switch d.Version {
	case FormatV0:
		d.V0.Price = price
	}
}

// ==================== 序列化 ====================

// Serialize 编码为规范字节
func (d *Document) Serialize() []byte {
	return codec.EncodeEnvelope(uint64(d.Version), d.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *DocumentV0) EncodePayload(w *codec.Writer) {
	w.WriteFixed(v.ID[:])
	w.WriteFixed(v.OwnerID[:])

	keys := make([]string, 0, len(v.Properties))
	for k := range v.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w.WriteVarint(uint64(len(keys)))
	for _, k := range keys {
		w.WriteString(k)
		v.Properties[k].Encode(w)
	}

	writeOptionalVarint(w, v.Revision)
	writeOptionalVarint(w, v.CreatedAt)
	writeOptionalVarint(w, v.UpdatedAt)
	w.WriteBool(v.Price != nil)
	if v.Price != nil {
		w.WriteVarint(uint64(*v.Price))
	}
}

func writeOptionalVarint(w *codec.Writer, v *uint64) {
	w.WriteBool(v != nil)
	if v != nil {
		w.WriteVarint(*v)
	}
}

func readOptionalVarint(r *codec.Reader) (*uint64, error) {
	present, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	v, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DeserializeDocument 从规范字节还原文档
func DeserializeDocument(data []byte) (*Document, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &DocumentV0{}
		if v0.ID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if v0.OwnerID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.Properties = make(map[string]Value, min(n, 256))
		for i := uint64(0); i < n; i++ {
			k, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			val, err := DecodeValue(r)
			if err != nil {
				return nil, err
			}
			v0.Properties[k] = val
		}
		if v0.Revision, err = readOptionalVarint(r); err != nil {
			return nil, err
		}
		if v0.CreatedAt, err = readOptionalVarint(r); err != nil {
			return nil, err
		}
		if v0.UpdatedAt, err = readOptionalVarint(r); err != nil {
			return nil, err
		}
		hasPrice, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if hasPrice {
			p, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			price := Credits(p)
			v0.Price = &price
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &Document{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "Document.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}
