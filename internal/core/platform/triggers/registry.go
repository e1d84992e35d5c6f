// Package triggers 提供文档数据触发器注册与执行
//
// 🎯 **核心职责**：
// - 按（合约，文档类型，子转换类别）匹配触发器并按注册顺序执行
// - 触发器可否决子动作（条件错误）或报告执行失败
//
// 💡 **设计理念**：
// 触发器是开放扩展点：系统合约在启动时注册默认触发器，测试可以
// 注册自己的。匹配采用谓词而非封闭枚举，同一匹配命中多个触发器时
// 首错即短路。
//
// 📞 **调用方**：状态校验器（文档子动作基础校验通过后）
package triggers

import (
	"context"

	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"github.com/evoplatform/v1/pkg/types"
)

// Context 触发器执行上下文
type Context struct {
	Repo    platform.StateRepository
	Block   *types.BlockInfo
	Contract *types.DataContract
	// OwnerID 提交批量转换的身份
	OwnerID types.Identifier
}

// Match 触发器匹配条件；零值字段表示任意
type Match struct {
	// ContractID 为 nil 时匹配任意合约
	ContractID *types.Identifier
	// DocumentType 为空串时匹配任意文档类型
	DocumentType string
	// Kinds 为空时匹配任意文档子转换类别
	Kinds []types.DocumentTransitionKind
}

func (m Match) hits(contractID types.Identifier, documentType string, kind types.DocumentTransitionKind) bool {
	if m.ContractID != nil && *m.ContractID != contractID {
		return false
	}
	if m.DocumentType != "" && m.DocumentType != documentType {
		return false
	}
	if len(m.Kinds) == 0 {
		return true
	}
	for _, k := range m.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Handler 触发器处理函数
//
// 返回 ConsensusError 表示否决该子动作；返回 error 表示存储读取
// 失败等内部故障，整块处理中止。
type Handler func(ctx context.Context, tctx *Context, sub types.BatchedAction) (types.ConsensusError, error)

type entry struct {
	match   Match
	handler Handler
}

// Registry 触发器注册表；注册须在处理开始前完成，执行期只读
type Registry struct {
	entries []entry
	logger  logInterface.Logger
}

// NewRegistry 创建空注册表
func NewRegistry(logger logInterface.Logger) *Registry {
	return &Registry{logger: logger}
}

// NewDefaultRegistry 创建并注册系统默认触发器的注册表
func NewDefaultRegistry(logger logInterface.Logger) *Registry {
	r := NewRegistry(logger)
	RegisterSystemTriggers(r)
	return r
}

// Register 追加触发器；同一匹配的多个触发器按注册顺序执行
func (r *Registry) Register(match Match, handler Handler) {
	r.entries = append(r.entries, entry{match: match, handler: handler})
}

// Execute 对单个文档子动作执行全部命中的触发器
func (r *Registry) Execute(ctx context.Context, tctx *Context, sub types.BatchedAction) (types.ConsensusError, error) {
	contractID, documentType, kind, ok := describe(sub)
	if !ok {
		return nil, nil
	}
	for _, e := range r.entries {
		if !e.match.hits(contractID, documentType, kind) {
			continue
		}
		consensusErr, err := e.handler(ctx, tctx, sub)
		if err != nil {
			return nil, err
		}
		if consensusErr != nil {
			return consensusErr, nil
		}
	}
	return nil, nil
}

// describe 提取文档子动作的匹配键；代币子动作不参与触发器
func describe(sub types.BatchedAction) (types.Identifier, string, types.DocumentTransitionKind, bool) {
	switch a := sub.(type) {
	case *types.DocumentCreateAction:
		return a.Contract.ID(), a.TypeName, types.DocumentTransitionCreate, true
	case *types.DocumentReplaceAction:
		return a.Contract.ID(), a.TypeName, types.DocumentTransitionReplace, true
	case *types.DocumentDeleteAction:
		return a.Contract.ID(), a.TypeName, types.DocumentTransitionDelete, true
	case *types.DocumentTransferAction:
		return a.Contract.ID(), a.TypeName, types.DocumentTransitionTransfer, true
	case *types.DocumentPurchaseAction:
		return a.Contract.ID(), a.TypeName, types.DocumentTransitionPurchase, true
	case *types.DocumentUpdatePriceAction:
		return a.Contract.ID(), a.TypeName, types.DocumentTransitionUpdatePrice, true
	}
	return types.Identifier{}, "", 0, false
}
