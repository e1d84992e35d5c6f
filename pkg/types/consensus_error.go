// 文件说明：
// 本文件定义共识错误分类的根接口与序列化入口。具体错误变体按类别分布在：
// - consensus_errors_basic.go     结构/基础错误（10xx）
// - consensus_errors_signature.go 签名错误（20xx）
// - consensus_errors_state.go     状态错误（30xx）
// - consensus_errors_fee.go       费用错误（40xx）
//
// 设计约束：
// - 错误集合是封闭的：数字代码一经分配永不复用、永不改义（序列化进
//   拒绝证明，跨节点与跨语言绑定传输）；
// - 每个变体只携带重建人类可读消息所需的最小数据；
// - 序列化走与实体相同的信封格式：[代码 varint][长度 varint][载荷]。
package types

import (
	"fmt"

	"github.com/evoplatform/v1/pkg/codec"
)

// ConsensusErrorCode 共识错误稳定数字代码
type ConsensusErrorCode uint32

// ConsensusError 共识错误根接口
//
// 🎯 **核心职责**：
// 同时服务本地控制流（验证阶段的拒绝原因）与网络传输（嵌入拒绝证明）。
//
// ⚠️ **核心约束**：
// 实现集合封闭——只有本包内注册了代码的类型才能实现（consensusError
// 为非导出方法）。新变体必须同时注册解码器，否则序列化往返会失败。
type ConsensusError interface {
	error

	// Code 返回稳定数字代码
	Code() ConsensusErrorCode

	// EncodePayload 编码代码之外的错误数据
	EncodePayload(w *codec.Writer)

	consensusError()
}

// consensusErrorDecoders 代码 → 解码器注册表
var consensusErrorDecoders = map[ConsensusErrorCode]func(r *codec.Reader) (ConsensusError, error){}

// registerConsensusError 注册错误变体的解码器（包初始化期调用）
func registerConsensusError(code ConsensusErrorCode, decode func(r *codec.Reader) (ConsensusError, error)) {
	if _, exists := consensusErrorDecoders[code]; exists {
		panic(fmt.Sprintf("consensus error code %d registered twice", code))
	}
	consensusErrorDecoders[code] = decode
}

// SerializeConsensusError 将共识错误编码为规范字节
//
// 格式与实体信封一致：[代码 varint][长度 varint][载荷]。
func SerializeConsensusError(e ConsensusError) []byte {
	return codec.EncodeEnvelope(uint64(e.Code()), e)
}

// DeserializeConsensusError 从规范字节还原共识错误
//
// 返回：
//   - ConsensusError: 还原的错误
//   - error: 代码未知或载荷残缺时返回错误（未知代码不 panic）
func DeserializeConsensusError(data []byte) (ConsensusError, error) {
	code, payload, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	decode, ok := consensusErrorDecoders[ConsensusErrorCode(code)]
	if !ok {
		return nil, fmt.Errorf("unknown consensus error code %d", code)
	}
	e, err := decode(payload)
	if err != nil {
		return nil, err
	}
	if err := payload.ExpectEOF(); err != nil {
		return nil, err
	}
	return e, nil
}
