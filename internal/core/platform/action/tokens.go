package action

import (
	"context"

	"github.com/evoplatform/v1/pkg/types"
)

// transformToken 展开代币子转换
//
// 代币子转换的载荷在动作层原样保留，这里只解析合约上下文并定位
// 代币配置；授权与余额裁决留给状态校验。
func (t *Transformer) transformToken(ctx context.Context, tt *types.TokenTransition) (types.BatchedAction, *types.ConsensusValidationResult[types.Action], error) {
	contract, result, err := t.resolveContract(ctx, tt.Base.DataContractID)
	if result != nil || err != nil {
		return nil, result, err
	}

	config, ok := contract.TokenAt(tt.Base.TokenContractPosition)
	if !ok {
		return nil, rejectAction(&types.InvalidTokenPositionError{
			ContractID: tt.Base.DataContractID,
			Position:   tt.Base.TokenContractPosition,
		}), nil
	}

	return &types.TokenAction{
		Contract:   contract,
		TokenID:    tt.Base.TokenID(),
		Config:     config,
		Transition: tt,
		Nonce:      tt.Base.IdentityContractNonce,
	}, nil, nil
}
