// Package structure 提供状态转换的无状态结构校验
//
// 🎯 **核心职责**：
// - 协议版本窗口检查
// - 各类别载荷的字段边界、计数与一致性检查
// - 合约定义的结构合法性（位置连续、群组成员、争用索引约束）
//
// 💡 **设计理念**：
// 本阶段采用收集语义：发现的所有缺陷一次性累积返回，让客户端一轮
// 修完。阶段内不触碰任何状态。
//
// 📞 **调用方**：处理器内核（第一阶段）
package structure

import (
	"sort"

	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"github.com/evoplatform/v1/pkg/types"
)

// 结构边界常量（参与共识，不可配置）
const (
	// MaxTokenNoteLength 代币备注最大字节数
	MaxTokenNoteLength = 2048
	// MinGroupMembers 群组最低成员数
	MinGroupMembers = 2
)

// Validator 结构校验器
type Validator struct{}

var _ platform.StructureValidator = (*Validator)(nil)

// NewValidator 创建结构校验器
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateStructure 校验单条转换的结构
func (v *Validator) ValidateStructure(st *types.StateTransition, pv *types.PlatformVersion) (*types.SimpleValidationResult, error) {
	switch pv.Methods.ValidateStructure {
	case 0:
		return v.validateStructureV0(st)
	default:
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultUnknownVersionDispatch,
			Op:     "structure.ValidateStructure",
		}
	}
}

func (v *Validator) validateStructureV0(st *types.StateTransition) (*types.SimpleValidationResult, error) {
	result := types.NewSimpleValidationResult()

	if st.ProtocolVersion < types.MinSupportedProtocolVersion || st.ProtocolVersion > types.LatestProtocolVersion {
		result.AddError(&types.UnsupportedProtocolVersionError{
			Received: st.ProtocolVersion,
			Min:      types.MinSupportedProtocolVersion,
			Max:      types.LatestProtocolVersion,
		})
		// 版本窗口外的载荷语义不可信，不再继续深入检查
		return result, nil
	}

	switch st.Kind {
	case types.KindIdentityCreate:
		validateIdentityCreate(st.IdentityCreate.V0, result)
	case types.KindIdentityUpdate:
		validateIdentityUpdate(st.IdentityUpdate.V0, result)
	case types.KindDataContractCreate:
		validateContractDefinition(st.DataContractCreate.V0.Contract, result)
	case types.KindDataContractUpdate:
		validateContractDefinition(st.DataContractUpdate.V0.Contract, result)
	case types.KindBatch:
		validateBatch(st.Batch.V0, result)
	}
	return result, nil
}

// ==================== 身份 ====================

func validateIdentityCreate(t *types.IdentityCreateTransitionV0, result *types.SimpleValidationResult) {
	seen := make(map[types.KeyID]bool, len(t.PublicKeys))
	for _, key := range t.PublicKeys {
		if seen[key.ID()] {
			result.AddError(&types.DuplicatedIdentityPublicKeyIDError{KeyID: key.ID()})
		}
		seen[key.ID()] = true
	}
}

func validateIdentityUpdate(t *types.IdentityUpdateTransitionV0, result *types.SimpleValidationResult) {
	seen := make(map[types.KeyID]bool, len(t.AddPublicKeys))
	for _, key := range t.AddPublicKeys {
		if seen[key.ID()] {
			result.AddError(&types.DuplicatedIdentityPublicKeyIDError{KeyID: key.ID()})
		}
		seen[key.ID()] = true
	}
}

// ==================== 合约定义 ====================

func validateContractDefinition(contract *types.DataContract, result *types.SimpleValidationResult) {
	if len(contract.DocumentTypes()) == 0 && len(contract.Tokens()) == 0 {
		result.AddError(&types.DataContractEmptySchemaError{ContractID: contract.ID()})
	}

	// 文档类型：可变类型不得携带争用唯一索引
	typeNames := make([]string, 0, len(contract.DocumentTypes()))
	for name := range contract.DocumentTypes() {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)
	for _, name := range typeNames {
		dt := contract.DocumentTypes()[name]
		if dt.DocumentsMutable {
			if contested := dt.ContestedIndex(); contested != nil {
				result.AddError(&types.ContestedUniqueIndexOnMutableDocumentTypeError{
					DocumentType: name,
					IndexName:    contested.Name,
				})
			}
		}
	}

	// 群组位置从 0 起连续，成员数达标
	groupPositions := make([]types.GroupContractPosition, 0, len(contract.Groups()))
	for pos := range contract.Groups() {
		groupPositions = append(groupPositions, pos)
	}
	sort.Slice(groupPositions, func(a, b int) bool { return groupPositions[a] < groupPositions[b] })
	for i, pos := range groupPositions {
		if pos != types.GroupContractPosition(i) {
			result.AddError(&types.NonContiguousContractGroupPositionsError{
				ExpectedPosition: types.GroupContractPosition(i),
				FoundPosition:    pos,
			})
			break
		}
	}
	for _, pos := range groupPositions {
		group := contract.Groups()[pos]
		if len(group.Members) < MinGroupMembers {
			result.AddError(&types.GroupTooFewMembersError{
				Position:    pos,
				MemberCount: len(group.Members),
			})
		}
	}

	// 代币位置从 0 起连续，定价合法
	tokenPositions := make([]types.TokenContractPosition, 0, len(contract.Tokens()))
	for pos := range contract.Tokens() {
		tokenPositions = append(tokenPositions, pos)
	}
	sort.Slice(tokenPositions, func(a, b int) bool { return tokenPositions[a] < tokenPositions[b] })
	for i, pos := range tokenPositions {
		if pos != types.TokenContractPosition(i) {
			result.AddError(&types.NonContiguousContractTokenPositionsError{
				ExpectedPosition: types.TokenContractPosition(i),
				FoundPosition:    pos,
			})
			break
		}
	}
	for _, pos := range tokenPositions {
		config := contract.Tokens()[pos]
		if config.DirectPricing != nil {
			validatePricingSchedule(config.DirectPricing, result)
		}
		if config.MaxSupply != nil && *config.MaxSupply > types.TokenMaxAmount {
			result.AddError(&types.InvalidTokenAmountError{
				Amount:    *config.MaxSupply,
				MaxAmount: types.TokenMaxAmount,
			})
		}
	}
}

func validatePricingSchedule(schedule *types.TokenPricingSchedule, result *types.SimpleValidationResult) {
	if schedule.Price == 0 {
		result.AddError(&types.ZeroTokenPriceError{})
	} else if schedule.Price > types.MaxCredits {
		result.AddError(&types.InvalidTokenPriceError{Price: schedule.Price})
	}
}

// ==================== 批量 ====================

func validateBatch(batch *types.BatchTransitionV0, result *types.SimpleValidationResult) {
	if len(batch.Transitions) == 0 {
		result.AddError(&types.BatchTransitionsEmptyError{})
		return
	}
	for _, sub := range batch.Transitions {
		switch {
		case sub.Document != nil:
			validateDocumentTransition(sub.Document, result)
		case sub.Token != nil:
			validateTokenTransition(sub.Token, result)
		}
	}
}

func validateDocumentTransition(dt *types.DocumentTransition, result *types.SimpleValidationResult) {
	switch dt.Kind {
	case types.DocumentTransitionReplace:
		if dt.Replace.Revision == 0 {
			result.AddError(&types.DocumentNoRevisionError{DocumentID: dt.Base.ID})
		}
	case types.DocumentTransitionTransfer:
		if dt.Transfer.Revision == 0 {
			result.AddError(&types.DocumentNoRevisionError{DocumentID: dt.Base.ID})
		}
	case types.DocumentTransitionPurchase:
		if dt.Purchase.Revision == 0 {
			result.AddError(&types.DocumentNoRevisionError{DocumentID: dt.Base.ID})
		}
		if dt.Purchase.Price == 0 {
			result.AddError(&types.ZeroTokenPriceError{})
		}
	case types.DocumentTransitionUpdatePrice:
		if dt.UpdatePrice.Revision == 0 {
			result.AddError(&types.DocumentNoRevisionError{DocumentID: dt.Base.ID})
		}
		if dt.UpdatePrice.Price == 0 {
			result.AddError(&types.ZeroTokenPriceError{})
		}
	}
}

func validateTokenTransition(tt *types.TokenTransition, result *types.SimpleValidationResult) {
	if note := tt.Note(); len(note) > MaxTokenNoteLength {
		result.AddError(&types.InvalidTokenNoteTooBigError{
			Length:    len(note),
			MaxLength: MaxTokenNoteLength,
		})
	}

	checkAmount := func(amount types.TokenAmount) {
		if amount == 0 {
			result.AddError(&types.ZeroTokenAmountError{})
		} else if amount > types.TokenMaxAmount {
			result.AddError(&types.InvalidTokenAmountError{
				Amount:    amount,
				MaxAmount: types.TokenMaxAmount,
			})
		}
	}

	switch tt.Kind {
	case types.TokenTransitionMint:
		checkAmount(tt.Mint.Amount)
	case types.TokenTransitionBurn:
		checkAmount(tt.Burn.Amount)
	case types.TokenTransitionTransfer:
		checkAmount(tt.Transfer.Amount)
	case types.TokenTransitionDirectPurchase:
		checkAmount(tt.DirectPurchase.Amount)
		if tt.DirectPurchase.TotalAgreedPrice == 0 {
			result.AddError(&types.ZeroTokenPriceError{})
		}
	case types.TokenTransitionSetPriceForDirectPurchase:
		if tt.SetPrice.Price != nil {
			validatePricingSchedule(tt.SetPrice.Price, result)
		}
	case types.TokenTransitionConfigUpdate:
		if tt.ConfigUpdate.Config.DirectPricing != nil {
			validatePricingSchedule(tt.ConfigUpdate.Config.DirectPricing, result)
		}
	}
}
