package platform

import (
	"context"

	"github.com/evoplatform/v1/pkg/types"
)

// StructureValidator 结构校验阶段
//
// 💡 **设计理念**：
// 结构校验对单条转换收集全部缺陷后一次性返回（收集语义），让客户端
// 一轮修完；签名与状态阶段则在首错即停（短路语义）。
type StructureValidator interface {
	// ValidateStructure 无状态结构校验；error 仅表示协议级故障
	ValidateStructure(st *types.StateTransition, pv *types.PlatformVersion) (*types.SimpleValidationResult, error)
}

// SignatureValidator 签名校验阶段
//
// 成功时返回已解析的签名者身份片段，供后续阶段做余额检查。
type SignatureValidator interface {
	ValidateSignature(ctx context.Context, st *types.StateTransition, pv *types.PlatformVersion) (*types.ConsensusValidationResult[*types.PartialIdentity], error)
}

// ActionTransformer 动作变换阶段
//
// 将签名合法的转换解析为执行计划：解析引用的合约、派生标识符、
// 规范化待写入值。
type ActionTransformer interface {
	TransformToAction(ctx context.Context, st *types.StateTransition, block *types.BlockInfo, pv *types.PlatformVersion) (*types.ConsensusValidationResult[types.Action], error)
}

// StateValidator 状态校验阶段
//
// 对动作做与当前已提交状态的一致性判定（nonce、修订号、唯一索引、
// 余额、授权、群组阈值、数据触发器）。
type StateValidator interface {
	ValidateState(ctx context.Context, action types.Action, st *types.StateTransition, block *types.BlockInfo, pv *types.PlatformVersion) (*types.SimpleValidationResult, error)
}

// FeeCalculator 费用计算阶段
//
// ⚠️ **核心约束**：输入相同则输出逐字节相同；禁止浮点、时钟与
// 任何节点本地状态参与计费。
type FeeCalculator interface {
	CalculateFee(st *types.StateTransition, action types.Action, block *types.BlockInfo, pv *types.PlatformVersion) (*types.FeeResult, error)
}

// ProcessingResult 单条转换的处理结论
type ProcessingResult struct {
	// Valid 转换是否被接受
	Valid bool
	// Errors 拒绝时的共识错误（结构阶段可多条，其余阶段单条）
	Errors []types.ConsensusError
	// Action 接受时的执行计划；拒绝但已付费时为兜底动作
	Action types.Action
	// Fee 实际结算的费用；未进入计费阶段为 nil
	Fee *types.FeeResult
	// TransitionID 转换标识
	TransitionID types.Identifier
}

// Processor 状态转换处理器内核
//
// 🎯 **核心职责**：按固定顺序编排五个阶段，并在接受时应用状态。
//
// 📞 **调用方**：区块执行循环、mempool 预检（CheckStateTransition）
type Processor interface {
	// ProcessRawStateTransition 解码并完整处理一条转换（含状态应用）
	ProcessRawStateTransition(ctx context.Context, raw []byte, block *types.BlockInfo) (*ProcessingResult, error)

	// ProcessStateTransition 完整处理已解码的转换（含状态应用）
	ProcessStateTransition(ctx context.Context, st *types.StateTransition, block *types.BlockInfo) (*ProcessingResult, error)

	// CheckStateTransition 只验不写（mempool 预检）
	CheckStateTransition(ctx context.Context, st *types.StateTransition, block *types.BlockInfo) (*ProcessingResult, error)
}
