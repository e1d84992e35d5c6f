package fees

import (
	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"github.com/evoplatform/v1/pkg/types"
)

// 标量条目（nonce、余额、投票等）的标称存储字节数
const scalarEntryBytes = 64

// Calculator 确定性费用计算器
//
// 💡 **设计理念**：
// 费用只取决于转换字节与动作内容。计算器不持有任何会随节点而异的
// 状态；同一（转换，动作，区块，平台版本）在所有节点得出逐字节相同
// 的结果。
type Calculator struct{}

var _ platform.FeeCalculator = (*Calculator)(nil)

// NewCalculator 创建费用计算器
func NewCalculator() *Calculator {
	return &Calculator{}
}

// CalculateFee 计算一条已通过校验的转换的费用
func (c *Calculator) CalculateFee(st *types.StateTransition, action types.Action, block *types.BlockInfo, pv *types.PlatformVersion) (*types.FeeResult, error) {
	switch pv.Methods.CalculateFee {
	case 0:
		return c.calculateFeeV0(st, action, block, pv)
	default:
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultUnknownVersionDispatch,
			Op:     "fees.CalculateFee",
		}
	}
}

func (c *Calculator) calculateFeeV0(st *types.StateTransition, action types.Action, block *types.BlockInfo, pv *types.PlatformVersion) (*types.FeeResult, error) {
	table, ok := CostTableForVersion(pv.FeeVersion)
	if !ok {
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultUnknownVersionDispatch,
			Op:     "fees.CalculateFee: cost table",
		}
	}

	size := types.Credits(len(st.Serialize()))

	// 处理费：类别基础费 + 字节费 + 签名验证费（+ 批内子转换附加费）
	processing := table.BaseProcessing[st.Kind]
	byteFee, err := size.CheckedMul(uint64(table.ProcessingPerByte))
	if err != nil {
		return nil, feeOverflow("processing byte fee", err)
	}
	if processing, err = processing.CheckedAdd(byteFee); err != nil {
		return nil, feeOverflow("processing base", err)
	}
	if processing, err = processing.CheckedAdd(table.SignatureVerification); err != nil {
		return nil, feeOverflow("signature fee", err)
	}
	if batch, ok := action.(*types.BatchAction); ok {
		subFee, err := types.Credits(len(batch.SubActions)).CheckedMul(uint64(table.BatchedSubTransition))
		if err != nil {
			return nil, feeOverflow("batched sub fee", err)
		}
		if processing, err = processing.CheckedAdd(subFee); err != nil {
			return nil, feeOverflow("batched sub fee", err)
		}
	}

	// 存储费与退款
	storedBytes, freedBytes := measureStorage(action)
	storage, err := types.Credits(storedBytes).CheckedMul(uint64(table.StoragePerByte))
	if err != nil {
		return nil, feeOverflow("storage fee", err)
	}

	var refunds []types.FeeRefund
	if freedBytes > 0 {
		freedFee, err := types.Credits(freedBytes).CheckedMul(uint64(table.StoragePerByte))
		if err != nil {
			return nil, feeOverflow("storage refund", err)
		}
		refund, err := applyPermille(freedFee, table.StorageRefundPermille)
		if err != nil {
			return nil, feeOverflow("storage refund", err)
		}
		if refund > 0 {
			refunds = prorateRefund(refund, block.Epoch.Index, table.EpochsPerEra)
		}
	}

	// 纪元倍率与用户自愿加价（都是千分数）
	if processing, err = applyPermille(processing, uint64(block.Epoch.FeeMultiplier)); err != nil {
		return nil, feeOverflow("epoch multiplier", err)
	}
	if processing, err = applyPermille(processing, 1000+uint64(userFeeIncrease(st))); err != nil {
		return nil, feeOverflow("user fee increase", err)
	}

	return &types.FeeResult{
		StorageFee:    storage,
		ProcessingFee: processing,
		Refunds:       refunds,
	}, nil
}

// measureStorage 估算动作新增与释放的存储字节数
func measureStorage(action types.Action) (stored uint64, freed uint64) {
	switch a := action.(type) {
	case *types.IdentityCreateAction:
		stored = scalarEntryBytes
		for _, key := range a.PublicKeys {
			stored += uint64(len(key.Serialize()))
		}
		stored += uint64(len(a.AssetLockOutPoint))
	case *types.IdentityTopUpAction:
		stored = uint64(len(a.AssetLockOutPoint))
	case *types.IdentityUpdateAction:
		for _, key := range a.AddPublicKeys {
			stored += uint64(len(key.Serialize()))
		}
	case *types.IdentityCreditTransferAction:
		stored = 0
	case *types.IdentityCreditWithdrawalAction:
		stored = scalarEntryBytes + uint64(len(a.OutputScript))
	case *types.DataContractCreateAction:
		stored = uint64(len(a.Contract.Serialize()))
	case *types.DataContractUpdateAction:
		stored = uint64(len(a.Contract.Serialize()))
	case *types.BatchAction:
		for _, sub := range a.SubActions {
			subStored, subFreed := measureBatchedStorage(sub)
			stored += subStored
			freed += subFreed
		}
	case *types.MasternodeVoteAction:
		stored = scalarEntryBytes
	}
	return stored, freed
}

func measureBatchedStorage(sub types.BatchedAction) (stored uint64, freed uint64) {
	switch s := sub.(type) {
	case *types.DocumentCreateAction:
		stored = uint64(len(s.Document.Serialize()))
	case *types.DocumentReplaceAction:
		stored = uint64(len(s.Document.Serialize()))
		freed = s.PreviousSize
	case *types.DocumentDeleteAction:
		freed = s.PreviousSize
	case *types.DocumentTransferAction:
		stored = scalarEntryBytes
	case *types.DocumentPurchaseAction:
		stored = scalarEntryBytes
	case *types.DocumentUpdatePriceAction:
		stored = scalarEntryBytes
	case *types.TokenAction:
		stored = scalarEntryBytes
	}
	return stored, freed
}

// prorateRefund 把退款按当前纪的剩余纪元摊成逐纪元桶
//
// 存储费在纪初一次付清、覆盖整纪；释放时把从当前纪元到纪末尚未
// 消耗的份额逐纪元退还。无法整除的余数计入首个桶，总额不变。
func prorateRefund(refund types.Credits, epoch types.EpochIndex, epochsPerEra uint16) []types.FeeRefund {
	if epochsPerEra == 0 {
		return []types.FeeRefund{{Epoch: epoch, Amount: refund}}
	}
	eraEnd := epoch - epoch%types.EpochIndex(epochsPerEra) + types.EpochIndex(epochsPerEra)
	remaining := types.Credits(eraEnd - epoch)

	share := refund / remaining
	remainder := refund % remaining
	buckets := make([]types.FeeRefund, 0, remaining)
	for e := epoch; e < eraEnd; e++ {
		amount := share
		if e == epoch {
			amount += remainder
		}
		if amount == 0 {
			continue
		}
		buckets = append(buckets, types.FeeRefund{Epoch: e, Amount: amount})
	}
	return buckets
}

// applyPermille 千分数倍率（整数截断）
func applyPermille(v types.Credits, permille uint64) (types.Credits, error) {
	scaled, err := v.CheckedMul(permille)
	if err != nil {
		return 0, err
	}
	return scaled / 1000, nil
}

func userFeeIncrease(st *types.StateTransition) uint16 {
	switch st.Kind {
	case types.KindIdentityCreate:
		return st.IdentityCreate.V0.UserFeeIncrease
	case types.KindIdentityTopUp:
		return st.IdentityTopUp.V0.UserFeeIncrease
	case types.KindIdentityUpdate:
		return st.IdentityUpdate.V0.UserFeeIncrease
	case types.KindIdentityCreditTransfer:
		return st.IdentityCreditTransfer.V0.UserFeeIncrease
	case types.KindIdentityCreditWithdrawal:
		return st.IdentityCreditWithdrawal.V0.UserFeeIncrease
	case types.KindDataContractCreate:
		return st.DataContractCreate.V0.UserFeeIncrease
	case types.KindDataContractUpdate:
		return st.DataContractUpdate.V0.UserFeeIncrease
	case types.KindBatch:
		return st.Batch.V0.UserFeeIncrease
	case types.KindMasternodeVote:
		return st.MasternodeVote.V0.UserFeeIncrease
	}
	return 0
}

func feeOverflow(op string, err error) error {
	return &types.ProtocolError{
		Reason: types.ProtocolFaultFeeOverflow,
		Op:     "fees.CalculateFee: " + op,
		Err:    err,
	}
}
