package types

import (
	"fmt"
	"sort"

	"github.com/evoplatform/v1/pkg/codec"
)

// ValueKind 平台值类型标签
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt
	ValueUint
	ValueString
	ValueBytes
	ValueArray
	ValueMap
)

// Value 文档属性值（封闭联合）
//
// 🎯 **功能**：文档属性的规范值模型
//
// ⚠️ **核心约束**：
// 值模型是封闭的（无浮点、无时间类型），映射按键排序后编码，
// 保证同一文档在任何节点上序列化为相同字节。JSON/CBOR 表示
// 只是客户端视图，由 ToInterface 做无损转换后生成。
type Value struct {
	Kind   ValueKind
	Bool   bool
	Int    int64
	Uint   uint64
	Str    string
	Bytes  []byte
	Array  []Value
	Map    map[string]Value
}

// NullValue 空值
func NullValue() Value { return Value{Kind: ValueNull} }

// BoolValue 布尔值
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// IntValue 有符号整数值
func IntValue(v int64) Value { return Value{Kind: ValueInt, Int: v} }

// UintValue 无符号整数值
func UintValue(v uint64) Value { return Value{Kind: ValueUint, Uint: v} }

// StringValue 字符串值
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// BytesValue 字节串值
func BytesValue(b []byte) Value { return Value{Kind: ValueBytes, Bytes: b} }

// ArrayValue 数组值
func ArrayValue(items ...Value) Value { return Value{Kind: ValueArray, Array: items} }

// MapValue 映射值
func MapValue(m map[string]Value) Value { return Value{Kind: ValueMap, Map: m} }

// Encode 确定性编码值
func (v Value) Encode(w *codec.Writer) {
	w.WriteVarint(uint64(v.Kind))
	switch v.Kind {
	case ValueNull:
	case ValueBool:
		w.WriteBool(v.Bool)
	case ValueInt:
		w.WriteInt(v.Int)
	case ValueUint:
		w.WriteVarint(v.Uint)
	case ValueString:
		w.WriteString(v.Str)
	case ValueBytes:
		w.WriteBytes(v.Bytes)
	case ValueArray:
		w.WriteVarint(uint64(len(v.Array)))
		for _, item := range v.Array {
			item.Encode(w)
		}
	case ValueMap:
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		w.WriteVarint(uint64(len(keys)))
		for _, k := range keys {
			w.WriteString(k)
			v.Map[k].Encode(w)
		}
	}
}

// DecodeValue 解码值
func DecodeValue(r *codec.Reader) (Value, error) {
	kind, err := r.ReadVarint()
	if err != nil {
		return Value{}, err
	}
	v := Value{Kind: ValueKind(kind)}
	switch v.Kind {
	case ValueNull:
	case ValueBool:
		v.Bool, err = r.ReadBool()
	case ValueInt:
		v.Int, err = r.ReadInt()
	case ValueUint:
		v.Uint, err = r.ReadVarint()
	case ValueString:
		v.Str, err = r.ReadString()
	case ValueBytes:
		v.Bytes, err = r.ReadBytes()
	case ValueArray:
		var n uint64
		if n, err = r.ReadVarint(); err != nil {
			return Value{}, err
		}
		v.Array = make([]Value, 0, min(n, 1024))
		for i := uint64(0); i < n; i++ {
			item, err := DecodeValue(r)
			if err != nil {
				return Value{}, err
			}
			v.Array = append(v.Array, item)
		}
	case ValueMap:
		var n uint64
		if n, err = r.ReadVarint(); err != nil {
			return Value{}, err
		}
		v.Map = make(map[string]Value, min(n, 1024))
		prev := ""
		for i := uint64(0); i < n; i++ {
			k, err := r.ReadString()
			if err != nil {
				return Value{}, err
			}
			// 规范格式要求键严格递增，乱序或重复视为残缺载荷
			if i > 0 && k <= prev {
				return Value{}, fmt.Errorf("codec: map keys out of canonical order: %q after %q", k, prev)
			}
			prev = k
			item, err := DecodeValue(r)
			if err != nil {
				return Value{}, err
			}
			v.Map[k] = item
		}
	default:
		return Value{}, fmt.Errorf("unknown value kind %d", kind)
	}
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

// ToInterface 转换为 JSON 兼容表示（客户端视图、JSON-Schema 校验输入）
func (v Value) ToInterface() interface{} {
	switch v.Kind {
	case ValueBool:
		return v.Bool
	case ValueInt:
		return v.Int
	case ValueUint:
		return v.Uint
	case ValueString:
		return v.Str
	case ValueBytes:
		return v.Bytes
	case ValueArray:
		out := make([]interface{}, len(v.Array))
		for i, item := range v.Array {
			out[i] = item.ToInterface()
		}
		return out
	case ValueMap:
		out := make(map[string]interface{}, len(v.Map))
		for k, item := range v.Map {
			out[k] = item.ToInterface()
		}
		return out
	default:
		return nil
	}
}

// Equal 深度比较两个值
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueNull:
		return true
	case ValueBool:
		return v.Bool == other.Bool
	case ValueInt:
		return v.Int == other.Int
	case ValueUint:
		return v.Uint == other.Uint
	case ValueString:
		return v.Str == other.Str
	case ValueBytes:
		return string(v.Bytes) == string(other.Bytes)
	case ValueArray:
		if len(v.Array) != len(other.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(other.Array[i]) {
				return false
			}
		}
		return true
	case ValueMap:
		if len(v.Map) != len(other.Map) {
			return false
		}
		for k, item := range v.Map {
			o, ok := other.Map[k]
			if !ok || !item.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
