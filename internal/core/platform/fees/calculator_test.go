package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoplatform/v1/pkg/types"
)

func platformV1(t *testing.T) *types.PlatformVersion {
	t.Helper()
	pv, ok := types.PlatformVersionFor(types.ProtocolVersion1)
	require.True(t, ok)
	return pv
}

func testBlock() *types.BlockInfo {
	return &types.BlockInfo{
		TimeMillis: 1_700_000_000_000,
		Height:     100,
		Epoch:      types.Epoch{Index: 1, FeeMultiplier: 1000},
	}
}

func transferFixture(userFeeIncrease uint16) (*types.StateTransition, types.Action) {
	owner := types.HashIdentifier([]byte("owner"))
	recipient := types.HashIdentifier([]byte("recipient"))
	st := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindIdentityCreditTransfer,
		IdentityCreditTransfer: &types.IdentityCreditTransferTransition{
			Version: types.FormatV0,
			V0: &types.IdentityCreditTransferTransitionV0{
				IdentityID:      owner,
				RecipientID:     recipient,
				Amount:          10_000,
				Nonce:           1,
				UserFeeIncrease: userFeeIncrease,
				Signature:       make([]byte, 64),
			},
		},
	}
	action := &types.IdentityCreditTransferAction{
		IdentityID:  owner,
		RecipientID: recipient,
		Amount:      10_000,
		Nonce:       1,
	}
	return st, action
}

// 同一（转换，动作，区块，版本）必须得出逐字节相同的费用
func TestCalculateFeeDeterministic(t *testing.T) {
	calc := NewCalculator()
	pv := platformV1(t)
	st, action := transferFixture(0)

	first, err := calc.CalculateFee(st, action, testBlock(), pv)
	require.NoError(t, err)
	second, err := calc.CalculateFee(st, action, testBlock(), pv)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// 转账动作不新增存储，处理费 = （基础费 + 字节费 + 验签费）× 倍率
func TestCalculateFeeTransferBreakdown(t *testing.T) {
	calc := NewCalculator()
	pv := platformV1(t)
	st, action := transferFixture(0)
	table, ok := CostTableForVersion(pv.FeeVersion)
	require.True(t, ok)

	fee, err := calc.CalculateFee(st, action, testBlock(), pv)
	require.NoError(t, err)

	size := types.Credits(len(st.Serialize()))
	expected := table.BaseProcessing[types.KindIdentityCreditTransfer] +
		size*table.ProcessingPerByte +
		table.SignatureVerification

	assert.Equal(t, expected, fee.ProcessingFee)
	assert.Equal(t, types.Credits(0), fee.StorageFee)
	assert.Empty(t, fee.Refunds)
}

// 用户自愿加价按千分数抬高处理费，存储费不受影响
func TestCalculateFeeUserFeeIncrease(t *testing.T) {
	calc := NewCalculator()
	pv := platformV1(t)

	baseSt, action := transferFixture(0)
	raisedSt, _ := transferFixture(100) // +10%

	baseFee, err := calc.CalculateFee(baseSt, action, testBlock(), pv)
	require.NoError(t, err)
	raisedFee, err := calc.CalculateFee(raisedSt, action, testBlock(), pv)
	require.NoError(t, err)

	// 两份转换的序列化长度一致，处理费基数相同
	require.Equal(t, len(baseSt.Serialize()), len(raisedSt.Serialize()))
	assert.Equal(t, baseFee.ProcessingFee*1100/1000, raisedFee.ProcessingFee)
}

// 纪元费用乘数整体缩放处理费
func TestCalculateFeeEpochMultiplier(t *testing.T) {
	calc := NewCalculator()
	pv := platformV1(t)
	st, action := transferFixture(0)

	normal, err := calc.CalculateFee(st, action, testBlock(), pv)
	require.NoError(t, err)

	doubled := testBlock()
	doubled.Epoch.FeeMultiplier = 2000
	expensive, err := calc.CalculateFee(st, action, doubled, pv)
	require.NoError(t, err)

	assert.Equal(t, normal.ProcessingFee*2, expensive.ProcessingFee)
}

// 合约创建按合约规范字节计存储费
func TestCalculateFeeContractCreateStorage(t *testing.T) {
	calc := NewCalculator()
	pv := platformV1(t)
	table, _ := CostTableForVersion(pv.FeeVersion)

	owner := types.HashIdentifier([]byte("owner"))
	contract := types.NewDataContractV0(&types.DataContractV0{
		ID:      types.HashIdentifier([]byte("contract")),
		OwnerID: owner,
		DocumentTypes: map[string]*types.DocumentType{
			"note": {
				Name:   "note",
				Schema: types.MapValue(map[string]types.Value{"type": types.StringValue("object")}),
			},
		},
	})
	st := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindDataContractCreate,
		DataContractCreate: &types.DataContractCreateTransition{
			Version: types.FormatV0,
			V0: &types.DataContractCreateTransitionV0{
				Contract:      contract,
				IdentityNonce: 1,
				Signature:     make([]byte, 64),
			},
		},
	}
	action := &types.DataContractCreateAction{Contract: contract, Nonce: 1}

	fee, err := calc.CalculateFee(st, action, testBlock(), pv)
	require.NoError(t, err)

	expected := types.Credits(len(contract.Serialize())) * table.StoragePerByte
	assert.Equal(t, expected, fee.StorageFee)
}

// 文档删除释放存储，按千分比退款并记到当前纪元
func TestCalculateFeeDocumentDeleteRefund(t *testing.T) {
	calc := NewCalculator()
	pv := platformV1(t)
	table, _ := CostTableForVersion(pv.FeeVersion)

	owner := types.HashIdentifier([]byte("owner"))
	contractID := types.HashIdentifier([]byte("contract"))
	const previousSize = 500

	st := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindBatch,
		Batch: &types.BatchTransition{
			Version: types.FormatV0,
			V0: &types.BatchTransitionV0{
				OwnerID: owner,
				Transitions: []*types.BatchedTransition{
					{
						Document: &types.DocumentTransition{
							Kind: types.DocumentTransitionDelete,
							Base: types.DocumentBaseTransition{
								ID:                    types.HashIdentifier([]byte("doc")),
								DocumentTypeName:      "note",
								DataContractID:        contractID,
								IdentityContractNonce: 1,
							},
						},
					},
				},
				Signature: make([]byte, 64),
			},
		},
	}
	action := &types.BatchAction{
		Owner: owner,
		SubActions: []types.BatchedAction{
			&types.DocumentDeleteAction{
				Contract:     nil,
				TypeName:     "note",
				DocumentID:   types.HashIdentifier([]byte("doc")),
				PreviousSize: previousSize,
				Nonce:        1,
			},
		},
	}

	block := testBlock()
	fee, err := calc.CalculateFee(st, action, block, pv)
	require.NoError(t, err)

	// 退款按当前纪剩余纪元摊还：纪元 1 起到纪末（纪元 39）共 39 个桶
	remaining := int(table.EpochsPerEra) - int(block.Epoch.Index%types.EpochIndex(table.EpochsPerEra))
	require.Len(t, fee.Refunds, remaining)
	assert.Equal(t, block.Epoch.Index, fee.Refunds[0].Epoch)
	assert.Equal(t, types.EpochIndex(table.EpochsPerEra)-1, fee.Refunds[len(fee.Refunds)-1].Epoch)

	expected := types.Credits(previousSize) * table.StoragePerByte * types.Credits(table.StorageRefundPermille) / 1000
	var total types.Credits
	for i, refund := range fee.Refunds {
		if i > 0 {
			assert.Less(t, fee.Refunds[i-1].Epoch, refund.Epoch)
			assert.Equal(t, fee.Refunds[1].Amount, refund.Amount)
		}
		total += refund.Amount
	}
	assert.Equal(t, expected, total)
	// 余数并入首个桶，保证总额不因摊还损失
	assert.GreaterOrEqual(t, fee.Refunds[0].Amount, fee.Refunds[1].Amount)
}

// 同纪元退款桶累加合并，不产生重复桶
func TestFeeResultCheckedAddMergesRefundBuckets(t *testing.T) {
	left := &types.FeeResult{
		StorageFee:    100,
		ProcessingFee: 200,
		Refunds: []types.FeeRefund{
			{Epoch: 1, Amount: 10},
			{Epoch: 3, Amount: 30},
		},
	}
	right := &types.FeeResult{
		StorageFee:    1,
		ProcessingFee: 2,
		Refunds: []types.FeeRefund{
			{Epoch: 2, Amount: 20},
			{Epoch: 3, Amount: 5},
			{Epoch: 4, Amount: 40},
		},
	}

	require.NoError(t, left.CheckedAdd(right))
	assert.Equal(t, types.Credits(101), left.StorageFee)
	assert.Equal(t, types.Credits(202), left.ProcessingFee)
	require.Len(t, left.Refunds, 4)
	assert.Equal(t, []types.FeeRefund{
		{Epoch: 1, Amount: 10},
		{Epoch: 2, Amount: 20},
		{Epoch: 3, Amount: 35},
		{Epoch: 4, Amount: 40},
	}, left.Refunds)
}

// 批内子转换按条计附加处理费
func TestCalculateFeeBatchSubTransitionSurcharge(t *testing.T) {
	calc := NewCalculator()
	pv := platformV1(t)
	table, _ := CostTableForVersion(pv.FeeVersion)

	owner := types.HashIdentifier([]byte("owner"))
	st, _ := transferFixture(0)
	action := &types.BatchAction{
		Owner: owner,
		SubActions: []types.BatchedAction{
			&types.DocumentTransferAction{Nonce: 1},
			&types.DocumentTransferAction{Nonce: 2},
			&types.DocumentTransferAction{Nonce: 3},
		},
	}

	withSubs, err := calc.CalculateFee(st, action, testBlock(), pv)
	require.NoError(t, err)
	withoutSubs, err := calc.CalculateFee(st, &types.BatchAction{Owner: owner}, testBlock(), pv)
	require.NoError(t, err)

	surcharge := withSubs.ProcessingFee - withoutSubs.ProcessingFee
	// 三条子转换的附加费，外加每条按标量条目计的存储费不影响处理费
	assert.Equal(t, 3*table.BatchedSubTransition, surcharge)
}

// 未知的方法版本是协议故障，不是共识拒绝
func TestCalculateFeeUnknownMethodVersion(t *testing.T) {
	calc := NewCalculator()
	st, action := transferFixture(0)

	unknown := &types.PlatformVersion{
		ProtocolVersion: types.ProtocolVersion1,
		FeeVersion:      1,
		Methods:         types.MethodVersions{CalculateFee: 7},
	}
	_, err := calc.CalculateFee(st, action, testBlock(), unknown)
	require.Error(t, err)

	var fault *types.ProtocolError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, types.ProtocolFaultUnknownVersionDispatch, fault.Reason)
}
