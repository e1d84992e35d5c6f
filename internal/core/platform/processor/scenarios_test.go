// 文件说明：
// 端到端业务场景测试：从签名后的转换原文出发，走完整五阶段流水线
// 并核对状态库落账结果。覆盖文档创建结算、过期修订替换、代币供应
// 上限下调、合约重复登记与群组阈值关闭五个场景。
package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoplatform/v1/internal/core/platform/drive"
	"github.com/evoplatform/v1/internal/core/platform/testutil"
	"github.com/evoplatform/v1/pkg/types"
)

// signedDocumentBatch 构造并签名单文档子转换的批量转换
func signedDocumentBatch(owner types.Identifier, kp *testutil.Keypair, dt *types.DocumentTransition) *types.StateTransition {
	st := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindBatch,
		Batch: &types.BatchTransition{
			Version: types.FormatV0,
			V0: &types.BatchTransitionV0{
				OwnerID:              owner,
				Transitions:          []*types.BatchedTransition{{Document: dt}},
				SignaturePublicKeyID: 0,
			},
		},
	}
	return testutil.SignTransition(st, kp)
}

// signedTokenBatch 构造并签名单代币子转换的批量转换
func signedTokenBatch(owner types.Identifier, kp *testutil.Keypair, tt *types.TokenTransition) *types.StateTransition {
	st := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindBatch,
		Batch: &types.BatchTransition{
			Version: types.FormatV0,
			V0: &types.BatchTransitionV0{
				OwnerID:              owner,
				Transitions:          []*types.BatchedTransition{{Token: tt}},
				SignaturePublicKeyID: 0,
			},
		},
	}
	return testutil.SignTransition(st, kp)
}

func signedContractCreate(owner types.Identifier, kp *testutil.Keypair, contract *types.DataContract, nonce uint64) *types.StateTransition {
	st := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindDataContractCreate,
		DataContractCreate: &types.DataContractCreateTransition{
			Version: types.FormatV0,
			V0: &types.DataContractCreateTransitionV0{
				Contract:             contract,
				IdentityNonce:        nonce,
				SignaturePublicKeyID: 0,
			},
		},
	}
	return testutil.SignTransition(st, kp)
}

// noteCreate 构造 note 文档创建子转换，文档 ID 按熵派生
func noteCreate(contract *types.DataContract, owner types.Identifier, message string, entropy byte, nonce uint64) *types.DocumentTransition {
	var ent [32]byte
	ent[0] = entropy
	return &types.DocumentTransition{
		Kind: types.DocumentTransitionCreate,
		Base: types.DocumentBaseTransition{
			ID:                    types.DeriveDocumentID(contract.ID(), "note", owner, ent),
			DocumentTypeName:      "note",
			DataContractID:        contract.ID(),
			IdentityContractNonce: nonce,
		},
		Create: &types.DocumentCreatePayload{
			Entropy:    ent,
			Properties: map[string]types.Value{"message": types.StringValue(message)},
		},
	}
}

func noteReplace(contract *types.DataContract, docID types.Identifier, message string, revision, nonce uint64) *types.DocumentTransition {
	return &types.DocumentTransition{
		Kind: types.DocumentTransitionReplace,
		Base: types.DocumentBaseTransition{
			ID:                    docID,
			DocumentTypeName:      "note",
			DataContractID:        contract.ID(),
			IdentityContractNonce: nonce,
		},
		Replace: &types.DocumentReplacePayload{
			Revision:   revision,
			Properties: map[string]types.Value{"message": types.StringValue(message)},
		},
	}
}

func identityBalance(t *testing.T, d *drive.Drive, id types.Identifier) types.Credits {
	t.Helper()
	balance, _, err := d.FetchIdentityBalance(context.Background(), id)
	require.NoError(t, err)
	return balance
}

// ==================== 文档创建结算 ====================

func TestScenarioDocumentCreateSettlement(t *testing.T) {
	k, d, _ := newKernel(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)
	owner := testutil.SeedIdentity(t, d, kp, 10_000_000)
	contract := testutil.NoteContract(owner)
	testutil.SeedContract(t, d, contract)

	st := signedDocumentBatch(owner, kp, noteCreate(contract, owner, "hello", 1, 1))
	result, err := k.ProcessStateTransition(ctx, st, testutil.TestBlockInfo())
	require.NoError(t, err)
	require.True(t, result.Valid)

	// 文档以修订 1 落库，属性与提交一致
	docID := st.Batch.V0.Transitions[0].Document.Base.ID
	stored, err := d.FetchDocument(ctx, contract.ID(), "note", docID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.Revision())
	assert.Equal(t, uint64(1), *stored.Revision())
	message, ok := stored.Property("message")
	require.True(t, ok)
	assert.Equal(t, types.StringValue("hello"), message)

	// 余额恰好扣除结算费用，合约序列推进
	deducted, err := result.Fee.DeductedAmount()
	require.NoError(t, err)
	assert.Equal(t, types.Credits(10_000_000)-deducted, identityBalance(t, d, owner))

	nonce, err := d.FetchIdentityContractNonce(ctx, owner, contract.ID())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

// ==================== 过期修订替换 ====================

func TestScenarioStaleDocumentReplaceRejected(t *testing.T) {
	k, d, _ := newKernel(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	kp := testutil.GenerateKeypair(t)
	owner := testutil.SeedIdentity(t, d, kp, 10_000_000)
	contract := testutil.NoteContract(owner)
	testutil.SeedContract(t, d, contract)

	// 创建后先行一次替换，存储修订推进到 2
	create := signedDocumentBatch(owner, kp, noteCreate(contract, owner, "first", 1, 1))
	result, err := k.ProcessStateTransition(ctx, create, block)
	require.NoError(t, err)
	require.True(t, result.Valid)
	docID := create.Batch.V0.Transitions[0].Document.Base.ID

	result, err = k.ProcessStateTransition(ctx,
		signedDocumentBatch(owner, kp, noteReplace(contract, docID, "second", 2, 2)), block)
	require.NoError(t, err)
	require.True(t, result.Valid)

	// 再次以修订 2 提交：与存储修订不连续，拒绝
	before := identityBalance(t, d, owner)
	stale, err := k.ProcessStateTransition(ctx,
		signedDocumentBatch(owner, kp, noteReplace(contract, docID, "third", 2, 3)), block)
	require.NoError(t, err)
	require.False(t, stale.Valid)
	assert.Equal(t, types.CodeInvalidDocumentRevision, stale.Errors[0].Code())

	// 文档镜像未被改动
	stored, err := d.FetchDocument(ctx, contract.ID(), "note", docID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, uint64(2), *stored.Revision())
	message, _ := stored.Property("message")
	assert.Equal(t, types.StringValue("second"), message)

	// 拒绝结算只动费用与序列，不动文档
	deducted, err := stale.Fee.DeductedAmount()
	require.NoError(t, err)
	assert.Equal(t, before-deducted, identityBalance(t, d, owner))

	nonce, err := d.FetchIdentityContractNonce(ctx, owner, contract.ID())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), nonce)
}

// ==================== 代币供应上限下调 ====================

func TestScenarioTokenMaxSupplyBelowCirculation(t *testing.T) {
	k, d, _ := newKernel(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)
	owner := testutil.SeedIdentity(t, d, kp, 10_000_000)

	config := testutil.DefaultTokenConfig()
	config.BaseSupply = 800
	ceiling := types.TokenAmount(1000)
	config.MaxSupply = &ceiling
	contract := testutil.TokenContract(owner, config)
	testutil.SeedContract(t, d, contract)

	// 新上限 500 低于流通量 800
	next := testutil.DefaultTokenConfig()
	next.BaseSupply = 800
	floor := types.TokenAmount(500)
	next.MaxSupply = &floor
	result, err := k.ProcessStateTransition(ctx, signedTokenBatch(owner, kp, &types.TokenTransition{
		Kind: types.TokenTransitionConfigUpdate,
		Base: types.TokenBaseTransition{
			DataContractID:        contract.ID(),
			IdentityContractNonce: 1,
		},
		ConfigUpdate: &types.TokenConfigUpdatePayload{Config: next},
	}), testutil.TestBlockInfo())
	require.NoError(t, err)
	require.False(t, result.Valid)
	assert.Equal(t, types.CodeTokenSettingMaxSupplyToLessThanCurrentSupply, result.Errors[0].Code())

	// 存储配置与供应保持原样
	storedContract, err := d.FetchDataContract(ctx, contract.ID())
	require.NoError(t, err)
	storedConfig, ok := storedContract.TokenAt(0)
	require.True(t, ok)
	require.NotNil(t, storedConfig.MaxSupply)
	assert.Equal(t, types.TokenAmount(1000), *storedConfig.MaxSupply)
	assert.Equal(t, types.TokenAmount(800), storedConfig.BaseSupply)

	tokenID := (&types.TokenBaseTransition{DataContractID: contract.ID()}).TokenID()
	status, err := d.FetchTokenStatus(ctx, tokenID)
	require.NoError(t, err)
	if status != nil {
		assert.Equal(t, types.TokenAmount(800), status.CurrentSupply())
	}
}

// ==================== 合约重复登记 ====================

func TestScenarioDuplicateContractCreate(t *testing.T) {
	k, d, _ := newKernel(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	kp := testutil.GenerateKeypair(t)
	owner := testutil.SeedIdentity(t, d, kp, 10_000_000)
	contract := testutil.NoteContract(owner)

	result, err := k.ProcessStateTransition(ctx, signedContractCreate(owner, kp, contract, 1), block)
	require.NoError(t, err)
	require.True(t, result.Valid)

	stored, err := d.FetchDataContract(ctx, contract.ID())
	require.NoError(t, err)
	require.NotNil(t, stored)

	// 同一合约标识符不能二次登记
	replay, err := k.ProcessStateTransition(ctx, signedContractCreate(owner, kp, contract, 2), block)
	require.NoError(t, err)
	require.False(t, replay.Valid)
	assert.Equal(t, types.CodeDataContractAlreadyPresent, replay.Errors[0].Code())
}

// ==================== 群组阈值关闭 ====================

func TestScenarioGroupThresholdClose(t *testing.T) {
	k, d, _ := newKernel(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()

	kpA := testutil.GenerateKeypair(t)
	kpB := testutil.GenerateKeypair(t)
	kpC := testutil.GenerateKeypair(t)
	memberA := testutil.SeedIdentity(t, d, kpA, 10_000_000)
	memberB := testutil.SeedIdentity(t, d, kpB, 10_000_000)
	memberC := testutil.SeedIdentity(t, d, kpC, 10_000_000)

	config := testutil.DefaultTokenConfig()
	config.MintingRules = types.AuthorizedActionTakers{Kind: types.AuthorizedGroup, Group: 0}
	contract := types.NewDataContractV0(&types.DataContractV0{
		ID:      testutil.RandomIdentifier(),
		OwnerID: memberA,
		Tokens:  map[types.TokenContractPosition]*types.TokenConfiguration{0: config},
		Groups: map[types.GroupContractPosition]*types.Group{
			0: {
				Members:       map[types.Identifier]uint32{memberA: 3, memberB: 2, memberC: 1},
				RequiredPower: 4,
			},
		},
	})
	testutil.SeedContract(t, d, contract)

	tokenID := (&types.TokenBaseTransition{DataContractID: contract.ID()}).TokenID()
	actionID := types.DeriveGroupActionID(contract.ID(), memberA, 1)
	groupMint := func(nonce uint64, isProposer bool) *types.TokenTransition {
		return &types.TokenTransition{
			Kind: types.TokenTransitionMint,
			Base: types.TokenBaseTransition{
				DataContractID:        contract.ID(),
				IdentityContractNonce: nonce,
				Group: &types.GroupStateTransitionInfo{
					GroupContractPosition: 0,
					ActionID:              actionID,
					IsProposer:            isProposer,
				},
			},
			Mint: &types.TokenMintPayload{Amount: 500},
		}
	}

	// 提案落权重但未达阈值，铸造不生效
	result, err := k.ProcessStateTransition(ctx, signedTokenBatch(memberA, kpA, groupMint(1, true)), block)
	require.NoError(t, err)
	require.True(t, result.Valid)

	balance, err := d.FetchIdentityTokenBalance(ctx, tokenID, memberA)
	require.NoError(t, err)
	assert.Equal(t, types.TokenAmount(0), balance)

	open, err := d.FetchGroupAction(ctx, actionID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, types.GroupActionActive, open.Status())
	assert.Equal(t, uint64(3), open.TotalPower())

	// 附议使累计权重 5 ≥ 4：动作关闭，效果恰好触发一次
	result, err = k.ProcessStateTransition(ctx, signedTokenBatch(memberB, kpB, groupMint(1, false)), block)
	require.NoError(t, err)
	require.True(t, result.Valid)

	balance, err = d.FetchIdentityTokenBalance(ctx, tokenID, memberA)
	require.NoError(t, err)
	assert.Equal(t, types.TokenAmount(500), balance)

	closed, err := d.FetchGroupAction(ctx, actionID)
	require.NoError(t, err)
	require.NotNil(t, closed)
	assert.Equal(t, types.GroupActionClosed, closed.Status())

	// 迟到的第三位成员签署已关闭的动作
	late, err := k.ProcessStateTransition(ctx, signedTokenBatch(memberC, kpC, groupMint(1, false)), block)
	require.NoError(t, err)
	require.False(t, late.Valid)
	assert.Equal(t, types.CodeGroupActionAlreadyCompleted, late.Errors[0].Code())

	balance, err = d.FetchIdentityTokenBalance(ctx, tokenID, memberA)
	require.NoError(t, err)
	assert.Equal(t, types.TokenAmount(500), balance)
}
