package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/evoplatform/v1/pkg/types"
)

// transformBatch 展开批量转换为文档与代币子动作序列
//
// 子转换按声明顺序展开，任一子转换解析失败即拒绝整批。
func (t *Transformer) transformBatch(ctx context.Context, st *types.StateTransition, block *types.BlockInfo) (*types.ConsensusValidationResult[types.Action], error) {
	v0 := st.Batch.V0
	subActions := make([]types.BatchedAction, 0, len(v0.Transitions))

	for _, bt := range v0.Transitions {
		var (
			sub    types.BatchedAction
			result *types.ConsensusValidationResult[types.Action]
			err    error
		)
		switch {
		case bt.Document != nil:
			sub, result, err = t.transformDocument(ctx, v0.OwnerID, bt.Document, block)
		case bt.Token != nil:
			sub, result, err = t.transformToken(ctx, bt.Token)
		}
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
		subActions = append(subActions, sub)
	}

	return accept(&types.BatchAction{
		Owner:      v0.OwnerID,
		SubActions: subActions,
	}), nil
}

func (t *Transformer) transformDocument(ctx context.Context, owner types.Identifier, dt *types.DocumentTransition, block *types.BlockInfo) (types.BatchedAction, *types.ConsensusValidationResult[types.Action], error) {
	contract, result, err := t.resolveContract(ctx, dt.Base.DataContractID)
	if result != nil || err != nil {
		return nil, result, err
	}
	docType, ok := contract.DocumentType(dt.Base.DocumentTypeName)
	if !ok {
		return nil, rejectAction(&types.InvalidDocumentTypeError{
			ContractID:   dt.Base.DataContractID,
			DocumentType: dt.Base.DocumentTypeName,
		}), nil
	}

	switch dt.Kind {
	case types.DocumentTransitionCreate:
		return t.transformDocumentCreate(owner, contract, docType, dt, block)
	case types.DocumentTransitionReplace:
		return t.transformDocumentReplace(ctx, contract, docType, dt, block)
	case types.DocumentTransitionDelete:
		return t.transformDocumentDelete(ctx, contract, dt)
	case types.DocumentTransitionTransfer:
		return &types.DocumentTransferAction{
			Contract:       contract,
			TypeName:       dt.Base.DocumentTypeName,
			DocumentID:     dt.Base.ID,
			Revision:       dt.Transfer.Revision,
			RecipientOwner: dt.Transfer.RecipientOwnerID,
			Nonce:          dt.Base.IdentityContractNonce,
		}, nil, nil
	case types.DocumentTransitionPurchase:
		return &types.DocumentPurchaseAction{
			Contract:   contract,
			TypeName:   dt.Base.DocumentTypeName,
			DocumentID: dt.Base.ID,
			Revision:   dt.Purchase.Revision,
			Price:      dt.Purchase.Price,
			Nonce:      dt.Base.IdentityContractNonce,
		}, nil, nil
	case types.DocumentTransitionUpdatePrice:
		return &types.DocumentUpdatePriceAction{
			Contract:   contract,
			TypeName:   dt.Base.DocumentTypeName,
			DocumentID: dt.Base.ID,
			Revision:   dt.UpdatePrice.Revision,
			Price:      dt.UpdatePrice.Price,
			Nonce:      dt.Base.IdentityContractNonce,
		}, nil, nil
	default:
		return nil, nil, &types.ProtocolError{
			Reason: types.ProtocolFaultUnknownVersionDispatch,
			Op:     "action.transformDocument",
		}
	}
}

func (t *Transformer) transformDocumentCreate(owner types.Identifier, contract *types.DataContract, docType *types.DocumentType, dt *types.DocumentTransition, block *types.BlockInfo) (types.BatchedAction, *types.ConsensusValidationResult[types.Action], error) {
	payload := dt.Create

	derived := types.DeriveDocumentID(contract.ID(), docType.Name, owner, payload.Entropy)
	if derived != dt.Base.ID {
		return nil, rejectAction(&types.InvalidDocumentPropertiesError{
			DocumentType: docType.Name,
			Detail:       "document id does not match entropy derivation",
		}), nil
	}

	if result, err := t.validateProperties(contract, docType, payload.Properties); result != nil || err != nil {
		return nil, result, err
	}

	now := block.TimeMillis
	doc := &types.DocumentV0{
		ID:         dt.Base.ID,
		OwnerID:    owner,
		Properties: payload.Properties,
		CreatedAt:  &now,
		UpdatedAt:  &now,
	}
	if docType.DocumentsMutable {
		initial := uint64(1)
		doc.Revision = &initial
	}

	var poll *types.ContestedResourceVotePoll
	if idx := docType.ContestedIndex(); idx != nil {
		values := make([]types.Value, 0, len(idx.Properties))
		for _, prop := range idx.Properties {
			v, ok := payload.Properties[prop.Field]
			if !ok {
				return nil, rejectAction(&types.InconsistentCompoundIndexDataError{
					DocumentType: docType.Name,
					IndexName:    idx.Name,
				}), nil
			}
			values = append(values, v)
		}
		poll = &types.ContestedResourceVotePoll{
			ContractID:    contract.ID(),
			DocumentType:  docType.Name,
			IndexName:     idx.Name,
			IndexValues:   values,
			EndTimeMillis: block.TimeMillis + contestDurationMillis,
		}
	}

	return &types.DocumentCreateAction{
		Contract:               contract,
		TypeName:               docType.Name,
		Document:               types.NewDocumentV0(doc),
		Nonce:                  dt.Base.IdentityContractNonce,
		PrefundedVotingBalance: payload.PrefundedVotingBalance,
		ContestedPoll:          poll,
	}, nil, nil
}

func (t *Transformer) transformDocumentReplace(ctx context.Context, contract *types.DataContract, docType *types.DocumentType, dt *types.DocumentTransition, block *types.BlockInfo) (types.BatchedAction, *types.ConsensusValidationResult[types.Action], error) {
	payload := dt.Replace

	if result, err := t.validateProperties(contract, docType, payload.Properties); result != nil || err != nil {
		return nil, result, err
	}

	previous, err := t.repo.FetchDocument(ctx, contract.ID(), docType.Name, dt.Base.ID)
	if err != nil {
		return nil, nil, storageFault("action.transformDocumentReplace", err)
	}
	if previous == nil {
		return nil, rejectAction(&types.DocumentNotFoundError{DocumentID: dt.Base.ID}), nil
	}

	// 替换镜像保留创建时间与挂牌价，所有者沿用存储值；
	// 修订号连续性由状态校验比对存储镜像裁决
	now := block.TimeMillis
	revision := payload.Revision
	doc := &types.DocumentV0{
		ID:         dt.Base.ID,
		OwnerID:    previous.OwnerID(),
		Properties: payload.Properties,
		Revision:   &revision,
		CreatedAt:  previous.CreatedAt(),
		UpdatedAt:  &now,
		Price:      previous.Price(),
	}

	return &types.DocumentReplaceAction{
		Contract:     contract,
		TypeName:     docType.Name,
		Document:     types.NewDocumentV0(doc),
		PreviousSize: uint64(len(previous.Serialize())),
		Nonce:        dt.Base.IdentityContractNonce,
	}, nil, nil
}

func (t *Transformer) transformDocumentDelete(ctx context.Context, contract *types.DataContract, dt *types.DocumentTransition) (types.BatchedAction, *types.ConsensusValidationResult[types.Action], error) {
	previous, err := t.repo.FetchDocument(ctx, contract.ID(), dt.Base.DocumentTypeName, dt.Base.ID)
	if err != nil {
		return nil, nil, storageFault("action.transformDocumentDelete", err)
	}
	if previous == nil {
		return nil, rejectAction(&types.DocumentNotFoundError{DocumentID: dt.Base.ID}), nil
	}

	return &types.DocumentDeleteAction{
		Contract:     contract,
		TypeName:     dt.Base.DocumentTypeName,
		DocumentID:   dt.Base.ID,
		PreviousSize: uint64(len(previous.Serialize())),
		Nonce:        dt.Base.IdentityContractNonce,
	}, nil, nil
}

// resolveContract 解析合约引用；不存在是共识拒绝，读取失败是协议故障
func (t *Transformer) resolveContract(ctx context.Context, id types.Identifier) (*types.DataContract, *types.ConsensusValidationResult[types.Action], error) {
	contract, err := t.contracts.Resolve(ctx, id)
	if err != nil {
		return nil, nil, &types.ProtocolError{
			Reason: types.ProtocolFaultContractLookup,
			Op:     "action.resolveContract",
			Err:    err,
		}
	}
	if contract == nil {
		return nil, rejectAction(&types.DataContractNotPresentError{ContractID: id}), nil
	}
	return contract, nil, nil
}

// validateProperties 按文档类型 schema 校验属性集
func (t *Transformer) validateProperties(contract *types.DataContract, docType *types.DocumentType, properties map[string]types.Value) (*types.ConsensusValidationResult[types.Action], error) {
	schema, err := t.compiledSchema(contract, docType)
	if err != nil {
		// 合约创建时 schema 已编译通过，这里失败说明存储被篡改
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultCorruptedState,
			Op:     "action.validateProperties",
			Err:    err,
		}
	}

	instance := types.MapValue(properties).ToInterface()
	if err := schema.Validate(instance); err != nil {
		return rejectAction(&types.InvalidDocumentPropertiesError{
			DocumentType: docType.Name,
			Detail:       err.Error(),
		}), nil
	}
	return nil, nil
}

// compiledSchema 返回文档类型的已编译 schema，按合约版本缓存
func (t *Transformer) compiledSchema(contract *types.DataContract, docType *types.DocumentType) (*jsonschema.Schema, error) {
	key := fmt.Sprintf("%s:%d:%s", contract.ID(), contract.ContractVersion(), docType.Name)
	if cached, ok := t.schemas.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	raw, err := json.Marshal(docType.Schema.ToInterface())
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("schema:///%s/%d/%s.json", contract.ID(), contract.ContractVersion(), docType.Name)
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}

	t.schemas.Store(key, schema)
	return schema, nil
}
