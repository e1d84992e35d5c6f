package triggers

import (
	"context"

	"github.com/evoplatform/v1/pkg/types"
)

// 系统触发器匹配的文档类型名
const (
	contactRequestDocumentType = "contactRequest"
	domainDocumentType         = "domain"
	preorderDocumentType       = "preorder"
)

// RegisterSystemTriggers 注册系统合约的默认触发器
//
// - contactRequest 创建不得指向发起者自身
// - 域名登记文档（domain/preorder）一经创建不得替换或删除
func RegisterSystemTriggers(r *Registry) {
	r.Register(Match{
		DocumentType: contactRequestDocumentType,
		Kinds:        []types.DocumentTransitionKind{types.DocumentTransitionCreate},
	}, rejectSelfContactRequest)

	immutableKinds := []types.DocumentTransitionKind{
		types.DocumentTransitionReplace,
		types.DocumentTransitionDelete,
	}
	r.Register(Match{DocumentType: domainDocumentType, Kinds: immutableKinds}, rejectRegistryMutation)
	r.Register(Match{DocumentType: preorderDocumentType, Kinds: immutableKinds}, rejectRegistryMutation)
}

// rejectSelfContactRequest 否决指向自身的联系请求
func rejectSelfContactRequest(_ context.Context, tctx *Context, sub types.BatchedAction) (types.ConsensusError, error) {
	create, ok := sub.(*types.DocumentCreateAction)
	if !ok {
		return nil, nil
	}
	target, ok := create.Document.Property("toUserId")
	if !ok || target.Kind != types.ValueBytes {
		return nil, nil
	}
	if string(target.Bytes) == string(tctx.OwnerID[:]) {
		return &types.DataTriggerConditionError{
			ContractID: create.Contract.ID(),
			DocumentID: create.Document.ID(),
			Message:    "contact request cannot point at its own sender",
		}, nil
	}
	return nil, nil
}

// rejectRegistryMutation 否决对登记类文档的替换与删除
func rejectRegistryMutation(_ context.Context, _ *Context, sub types.BatchedAction) (types.ConsensusError, error) {
	switch a := sub.(type) {
	case *types.DocumentReplaceAction:
		return &types.DataTriggerConditionError{
			ContractID: a.Contract.ID(),
			DocumentID: a.Document.ID(),
			Message:    "registry documents cannot be replaced",
		}, nil
	case *types.DocumentDeleteAction:
		return &types.DataTriggerConditionError{
			ContractID: a.Contract.ID(),
			DocumentID: a.DocumentID,
			Message:    "registry documents cannot be deleted",
		}, nil
	}
	return nil, nil
}
