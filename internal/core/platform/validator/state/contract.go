package state

import (
	"context"
	"fmt"

	"github.com/evoplatform/v1/pkg/types"
)

func (v *Validator) validateContractCreate(ctx context.Context, a *types.DataContractCreateAction) (*types.SimpleValidationResult, error) {
	if result, err := v.checkGlobalNonce(ctx, a.Contract.OwnerID(), a.Nonce); result != nil || err != nil {
		return result, err
	}

	existing, err := v.repo.FetchDataContract(ctx, a.Contract.ID())
	if err != nil {
		return nil, storageFault("state.validateContractCreate", err)
	}
	if existing != nil {
		return reject(&types.DataContractAlreadyPresentError{ContractID: a.Contract.ID()}), nil
	}
	return accept(), nil
}

func (v *Validator) validateContractUpdate(ctx context.Context, a *types.DataContractUpdateAction) (*types.SimpleValidationResult, error) {
	existing, err := v.repo.FetchDataContract(ctx, a.Contract.ID())
	if err != nil {
		return nil, storageFault("state.validateContractUpdate", err)
	}
	if existing == nil {
		return reject(&types.DataContractNotPresentError{ContractID: a.Contract.ID()}), nil
	}

	if result, err := v.checkContractNonce(ctx, a.Contract.OwnerID(), a.Contract.ID(), a.ContractNonce, 0); result != nil || err != nil {
		return result, err
	}

	// 所有者是合约的不可变属性
	if a.Contract.OwnerID() != existing.OwnerID() {
		return reject(&types.DataContractImmutablePropertiesUpdateError{Property: "ownerId"}), nil
	}
	// 合约定义版本必须恰好递增一
	if a.Contract.ContractVersion() != existing.ContractVersion()+1 {
		return reject(&types.DataContractImmutablePropertiesUpdateError{Property: "version"}), nil
	}

	// 已登记的文档类型不可删除
	for name, existingType := range existing.DocumentTypes() {
		updatedType, ok := a.Contract.DocumentType(name)
		if !ok {
			return reject(&types.DataContractImmutablePropertiesUpdateError{
				Property: fmt.Sprintf("documentTypes.%s", name),
			}), nil
		}
		// 更新不得引入新的唯一索引：历史文档无法按新索引回填查重
		if e := findNewUniqueIndex(name, existingType, updatedType); e != nil {
			return reject(e), nil
		}
		// 可变性翻转会破坏修订号不变量
		if updatedType.DocumentsMutable != existingType.DocumentsMutable {
			return reject(&types.DataContractImmutablePropertiesUpdateError{
				Property: fmt.Sprintf("documentTypes.%s.documentsMutable", name),
			}), nil
		}
	}

	// 已登记的代币位置不可删除
	for position := range existing.Tokens() {
		if _, ok := a.Contract.TokenAt(position); !ok {
			return reject(&types.DataContractImmutablePropertiesUpdateError{
				Property: fmt.Sprintf("tokens.%d", position),
			}), nil
		}
	}

	return accept(), nil
}

// findNewUniqueIndex 返回更新引入的新唯一索引错误；没有则为 nil
func findNewUniqueIndex(typeName string, existing, updated *types.DocumentType) types.ConsensusError {
	known := make(map[string]bool, len(existing.Indices))
	for _, idx := range existing.Indices {
		if idx.Unique {
			known[idx.Name] = true
		}
	}
	for _, idx := range updated.Indices {
		if idx.Unique && !known[idx.Name] {
			return &types.DataContractHaveNewUniqueIndexError{
				DocumentType: typeName,
				IndexName:    idx.Name,
			}
		}
	}
	return nil
}

// checkContractNonce 校验（身份，合约）nonce 恰为存储值加 offset 加一
//
// offset 用于批内多个子转换寻址同一合约时的连续递进。
func (v *Validator) checkContractNonce(ctx context.Context, identityID, contractID types.Identifier, received uint64, offset uint64) (*types.SimpleValidationResult, error) {
	stored, err := v.repo.FetchIdentityContractNonce(ctx, identityID, contractID)
	if err != nil {
		return nil, storageFault("state.checkContractNonce", err)
	}
	expected := stored + offset + 1
	if received != expected {
		return reject(&types.InvalidIdentityNonceError{
			IdentityID:    identityID,
			ContractID:    contractID,
			ExpectedNonce: expected,
			ReceivedNonce: received,
		}), nil
	}
	return nil, nil
}
