package types

import "fmt"

// ProtocolFaultReason 内部协议故障原因枚举
type ProtocolFaultReason int32

const (
	ProtocolFaultUnknown ProtocolFaultReason = iota
	ProtocolFaultUnknownVersionDispatch // 内部分派表中的未知版本
	ProtocolFaultContractLookup         // 状态校验通过后合约解析失败
	ProtocolFaultCorruptedState         // 存储返回了无法解码的实体
	ProtocolFaultFeeOverflow            // 费用算术溢出
)

// ProtocolError 内部协议故障
//
// 与共识拒绝（ConsensusError）严格区分：本错误表示节点软件缺陷，
// 上层必须中止整块处理并高声上报，绝不静默吞掉或默认降级。
type ProtocolError struct {
	Reason ProtocolFaultReason // 故障原因
	Op     string              // 发生故障的操作
	Err    error               // 底层错误（可为 nil）
}

// Error 实现 error 接口
func (e *ProtocolError) Error() string {
	var what string
	switch e.Reason {
	case ProtocolFaultUnknownVersionDispatch:
		what = "unknown version in dispatch table"
	case ProtocolFaultContractLookup:
		what = "contract lookup failed after validation"
	case ProtocolFaultCorruptedState:
		what = "corrupted state entity"
	case ProtocolFaultFeeOverflow:
		what = "fee arithmetic overflow"
	default:
		what = "internal protocol fault"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, what, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, what)
}

// Unwrap 支持 errors.Is/As 链
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError 检查错误是否为内部协议故障
func IsProtocolError(err error) (*ProtocolError, bool) {
	if err == nil {
		return nil, false
	}
	pe, ok := err.(*ProtocolError)
	return pe, ok
}
