package drive_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoplatform/v1/internal/core/platform/testutil"
	"github.com/evoplatform/v1/pkg/types"
)

// ==================== 身份 ====================

func TestApplyIdentityCreate(t *testing.T) {
	d := testutil.NewDrive(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)
	id := testutil.SeedIdentity(t, d, kp, 500_000)

	identity, err := d.FetchIdentity(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, id, identity.ID())
	assert.Equal(t, types.Credits(500_000), identity.Balance())

	key, ok := identity.PublicKeyByID(0)
	require.True(t, ok)
	assert.Equal(t, kp.Public, key.Data())

	balance, exists, err := d.FetchIdentityBalance(ctx, id)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, types.Credits(500_000), balance)
}

func TestFetchIdentityMissing(t *testing.T) {
	d := testutil.NewDrive(t)
	ctx := context.Background()

	identity, err := d.FetchIdentity(ctx, testutil.RandomIdentifier())
	require.NoError(t, err)
	assert.Nil(t, identity)

	_, exists, err := d.FetchIdentityBalance(ctx, testutil.RandomIdentifier())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestApplyIdentityTopUp(t *testing.T) {
	d := testutil.NewDrive(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)
	id := testutil.SeedIdentity(t, d, kp, 100)

	err := d.ApplyAction(ctx, &types.IdentityTopUpAction{
		IdentityID:   id,
		AddedBalance: 900,
	}, testutil.TestBlockInfo())
	require.NoError(t, err)

	balance, _, err := d.FetchIdentityBalance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.Credits(1000), balance)
}

func TestApplyIdentityUpdate(t *testing.T) {
	d := testutil.NewDrive(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)
	extra := testutil.GenerateKeypair(t)
	id := testutil.SeedIdentity(t, d, kp, 100)
	block := testutil.TestBlockInfo()

	err := d.ApplyAction(ctx, &types.IdentityUpdateAction{
		IdentityID:        id,
		Revision:          2,
		Nonce:             1,
		AddPublicKeys:     []*types.IdentityPublicKey{testutil.AuthenticationKey(1, extra)},
		DisablePublicKeys: []types.KeyID{0},
		DisabledAtMillis:  block.TimeMillis,
	}, block)
	require.NoError(t, err)

	identity, err := d.FetchIdentity(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), identity.Revision())

	disabled, ok := identity.PublicKeyByID(0)
	require.True(t, ok)
	require.NotNil(t, disabled.DisabledAt())
	assert.Equal(t, block.TimeMillis, *disabled.DisabledAt())

	added, ok := identity.PublicKeyByID(1)
	require.True(t, ok)
	assert.Equal(t, extra.Public, added.Data())

	nonce, err := d.FetchIdentityNonce(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestApplyCreditTransfer(t *testing.T) {
	d := testutil.NewDrive(t)
	ctx := context.Background()
	sender := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 10_000)
	recipient := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 0)

	err := d.ApplyAction(ctx, &types.IdentityCreditTransferAction{
		IdentityID:  sender,
		RecipientID: recipient,
		Amount:      4_000,
		Nonce:       1,
	}, testutil.TestBlockInfo())
	require.NoError(t, err)

	senderBalance, _, _ := d.FetchIdentityBalance(ctx, sender)
	recipientBalance, _, _ := d.FetchIdentityBalance(ctx, recipient)
	assert.Equal(t, types.Credits(6_000), senderBalance)
	assert.Equal(t, types.Credits(4_000), recipientBalance)

	nonce, err := d.FetchIdentityNonce(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestApplyCreditWithdrawal(t *testing.T) {
	d := testutil.NewDrive(t)
	ctx := context.Background()
	id := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 10_000)

	err := d.ApplyAction(ctx, &types.IdentityCreditWithdrawalAction{
		IdentityID:   id,
		Amount:       2_500,
		OutputScript: []byte{0x76, 0xa9},
		Nonce:        1,
	}, testutil.TestBlockInfo())
	require.NoError(t, err)

	balance, _, _ := d.FetchIdentityBalance(ctx, id)
	assert.Equal(t, types.Credits(7_500), balance)
}

// ==================== 费用结算 ====================

func TestDeductFee(t *testing.T) {
	d := testutil.NewDrive(t)
	ctx := context.Background()
	id := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 100_000)

	fee := &types.FeeResult{
		StorageFee:    10_000,
		ProcessingFee: 5_000,
		Refunds:       []types.FeeRefund{{Epoch: 0, Amount: 3_000}},
	}
	require.NoError(t, d.DeductFee(ctx, id, fee))

	// 净扣 = 基础费 15000 - 退款 3000
	balance, _, _ := d.FetchIdentityBalance(ctx, id)
	assert.Equal(t, types.Credits(88_000), balance)
}

// ==================== 资产锁定消费记录 ====================

func TestAssetLockConsumption(t *testing.T) {
	d := testutil.NewDrive(t)
	ctx := context.Background()
	outPoint := testutil.RandomBytes(36)

	consumed, err := d.IsAssetLockOutPointConsumed(ctx, outPoint)
	require.NoError(t, err)
	assert.False(t, consumed)

	require.NoError(t, d.MarkAssetLockConsumed(ctx, outPoint, testutil.RandomIdentifier()))

	consumed, err = d.IsAssetLockOutPointConsumed(ctx, outPoint)
	require.NoError(t, err)
	assert.True(t, consumed)
}

// ==================== 合约 ====================

func TestApplyContractCreateAndUpdate(t *testing.T) {
	d := testutil.NewDrive(t)
	ctx := context.Background()
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 100_000)
	contract := testutil.NoteContract(owner)

	err := d.ApplyAction(ctx, &types.DataContractCreateAction{Contract: contract, Nonce: 1}, testutil.TestBlockInfo())
	require.NoError(t, err)

	stored, err := d.FetchDataContract(ctx, contract.ID())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, contract.ID(), stored.ID())
	assert.Equal(t, uint32(1), stored.ContractVersion())

	// 更新：版本 +1，推进（所有者，合约）序列
	updated := testutil.NoteContract(owner)
	updated.V0.ID = contract.ID()
	updated.V0.ContractVersion = 2
	err = d.ApplyAction(ctx, &types.DataContractUpdateAction{Contract: updated, ContractNonce: 1}, testutil.TestBlockInfo())
	require.NoError(t, err)

	stored, err = d.FetchDataContract(ctx, contract.ID())
	require.NoError(t, err)
	assert.Equal(t, uint32(2), stored.ContractVersion())

	contractNonce, err := d.FetchIdentityContractNonce(ctx, owner, contract.ID())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), contractNonce)
}

func TestFetchDataContractMissing(t *testing.T) {
	d := testutil.NewDrive(t)
	contract, err := d.FetchDataContract(context.Background(), testutil.RandomIdentifier())
	require.NoError(t, err)
	assert.Nil(t, contract)
}

// ==================== 主节点 ====================

func TestMasternodeSeedAndFetch(t *testing.T) {
	d := testutil.NewDrive(t)
	ctx := context.Background()
	proTxHash := testutil.RandomIdentifier()
	votingID := testutil.RandomIdentifier()

	testutil.SeedMasternode(t, d, proTxHash, votingID)

	mn, err := d.FetchMasternode(ctx, proTxHash)
	require.NoError(t, err)
	require.NotNil(t, mn)
	assert.Equal(t, votingID, mn.VotingIdentityID)

	missing, err := d.FetchMasternode(ctx, testutil.RandomIdentifier())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// ==================== 兜底动作 ====================

func TestApplyBumpActions(t *testing.T) {
	d := testutil.NewDrive(t)
	ctx := context.Background()
	id := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 100)
	contractID := testutil.RandomIdentifier()

	err := d.ApplyAction(ctx, &types.BumpIdentityNonceAction{
		IdentityID:         id,
		Nonce:              1,
		TransitionKindHint: types.KindIdentityCreditTransfer,
	}, testutil.TestBlockInfo())
	require.NoError(t, err)

	nonce, err := d.FetchIdentityNonce(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	err = d.ApplyAction(ctx, &types.BumpIdentityContractNonceAction{
		IdentityID:         id,
		ContractID:         contractID,
		Nonce:              5,
		TransitionKindHint: types.KindBatch,
	}, testutil.TestBlockInfo())
	require.NoError(t, err)

	contractNonce, err := d.FetchIdentityContractNonce(ctx, id, contractID)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), contractNonce)

	// 余额不受兜底动作影响
	balance, _, _ := d.FetchIdentityBalance(ctx, id)
	assert.Equal(t, types.Credits(100), balance)
}
