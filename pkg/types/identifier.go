// Package types 提供平台核心的公共类型定义
//
// 本包定义验证流水线各组件共享的值类型：标识符、积分、版本化实体
// （身份、数据合约、文档、代币、群组）、状态转换及共识错误分类。
//
// 🎯 **核心职责**：
// - 版本化信封模式：每个实体是 `Version 标签 + 每版本一个指针` 的封闭联合
// - 所有实体通过 pkg/codec 提供确定性二进制编码（共识规范格式）
// - 不依赖任何实现包（internal/*），仅被接口与实现共同引用
package types

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/mr-tron/base58"
)

// IdentifierLength 标识符固定长度（32 字节）
const IdentifierLength = 32

// Identifier 32 字节实体标识符
//
// 身份、数据合约、文档、代币均以 32 字节哈希寻址。
// 文本表示统一使用 Base58（客户端 API 与日志）。
type Identifier [IdentifierLength]byte

// NewIdentifierFromBytes 从字节切片构造标识符
//
// 返回：
//   - Identifier: 构造的标识符
//   - error: 长度不等于 32 字节时返回错误
func NewIdentifierFromBytes(b []byte) (Identifier, error) {
	var id Identifier
	if len(b) != IdentifierLength {
		return id, fmt.Errorf("identifier must be %d bytes, got %d", IdentifierLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// NewIdentifierFromString 从 Base58 字符串解析标识符
func NewIdentifierFromString(s string) (Identifier, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Identifier{}, fmt.Errorf("invalid base58 identifier: %w", err)
	}
	return NewIdentifierFromBytes(raw)
}

// HashIdentifier 对任意输入做双重 SHA256 得到标识符
//
// 用于派生实体 ID（如资产锁定 outpoint → 身份 ID、合约种子 → 合约 ID）。
func HashIdentifier(data []byte) Identifier {
	return Identifier(chainhash.DoubleHashH(data))
}

// String 返回 Base58 文本表示
func (id Identifier) String() string {
	return base58.Encode(id[:])
}

// Bytes 返回标识符的字节副本
func (id Identifier) Bytes() []byte {
	out := make([]byte, IdentifierLength)
	copy(out, id[:])
	return out
}

// IsZero 检查是否为零值标识符
func (id Identifier) IsZero() bool {
	return id == Identifier{}
}

// Equal 比较两个标识符
func (id Identifier) Equal(other Identifier) bool {
	return id == other
}

// Less 字典序比较（用于确定性排序）
func (id Identifier) Less(other Identifier) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// KeyID 身份公钥标识符
//
// 在单个身份内部递增分配，身份内唯一。
type KeyID uint32

// TokenContractPosition 代币在数据合约内的位置
//
// ⚠️ **核心约束**：合约内的代币位置必须从 0 起连续。
type TokenContractPosition uint16

// GroupContractPosition 群组在数据合约内的位置
//
// ⚠️ **核心约束**：合约内的群组位置必须从 0 起连续。
type GroupContractPosition uint16
