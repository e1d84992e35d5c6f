package state_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoplatform/v1/internal/core/infrastructure/log"
	"github.com/evoplatform/v1/internal/core/platform/drive"
	"github.com/evoplatform/v1/internal/core/platform/testutil"
	"github.com/evoplatform/v1/internal/core/platform/triggers"
	"github.com/evoplatform/v1/internal/core/platform/validator/state"
	"github.com/evoplatform/v1/pkg/types"
)

func newValidator(t *testing.T) (*state.Validator, *drive.Drive) {
	t.Helper()
	d := testutil.NewDrive(t)
	logger := log.NewNop()
	return state.NewValidator(d, triggers.NewDefaultRegistry(logger), logger), d
}

func platformV1(t *testing.T) *types.PlatformVersion {
	t.Helper()
	pv, ok := types.PlatformVersionFor(types.ProtocolVersion1)
	require.True(t, ok)
	return pv
}

// transferTransition 余额前置闸所需的最小转账转换
func transferTransition(owner types.Identifier) *types.StateTransition {
	return &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindIdentityCreditTransfer,
		IdentityCreditTransfer: &types.IdentityCreditTransferTransition{
			Version: types.FormatV0,
			V0:      &types.IdentityCreditTransferTransitionV0{IdentityID: owner},
		},
	}
}

func batchTransition(owner types.Identifier) *types.StateTransition {
	return &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindBatch,
		Batch: &types.BatchTransition{
			Version: types.FormatV0,
			V0:      &types.BatchTransitionV0{OwnerID: owner},
		},
	}
}

func voteTransition(voter types.Identifier) *types.StateTransition {
	return &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindMasternodeVote,
		MasternodeVote: &types.MasternodeVoteTransition{
			Version: types.FormatV0,
			V0:      &types.MasternodeVoteTransitionV0{VoterIdentityID: voter},
		},
	}
}

func updateTransition(owner types.Identifier) *types.StateTransition {
	return &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindIdentityUpdate,
		IdentityUpdate: &types.IdentityUpdateTransition{
			Version: types.FormatV0,
			V0:      &types.IdentityUpdateTransitionV0{IdentityID: owner},
		},
	}
}

func contractCreateTransition(contract *types.DataContract) *types.StateTransition {
	return &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindDataContractCreate,
		DataContractCreate: &types.DataContractCreateTransition{
			Version: types.FormatV0,
			V0:      &types.DataContractCreateTransitionV0{Contract: contract},
		},
	}
}

func contractUpdateTransition(contract *types.DataContract) *types.StateTransition {
	return &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindDataContractUpdate,
		DataContractUpdate: &types.DataContractUpdateTransition{
			Version: types.FormatV0,
			V0:      &types.DataContractUpdateTransitionV0{Contract: contract},
		},
	}
}

// requireRejection 断言结果是指定代码的单一拒绝
func requireRejection(t *testing.T, result *types.SimpleValidationResult, code types.ConsensusErrorCode) {
	t.Helper()
	require.NotNil(t, result)
	require.False(t, result.IsValid())
	require.Len(t, result.Errors(), 1)
	assert.Equal(t, code, result.FirstError().Code())
}

// ==================== 余额前置闸 ====================

func TestValidateStateOwnerNotFound(t *testing.T) {
	v, _ := newValidator(t)
	owner := testutil.RandomIdentifier()

	result, err := v.ValidateState(context.Background(), &types.IdentityCreditTransferAction{
		IdentityID:  owner,
		RecipientID: testutil.RandomIdentifier(),
		Amount:      100,
		Nonce:       1,
	}, transferTransition(owner), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeIdentityNotFound)
}

func TestValidateStatePrecheckBalanceGate(t *testing.T) {
	v, d := newValidator(t)
	// 余额低于转账类别的基础处理费下限
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1000)

	result, err := v.ValidateState(context.Background(), &types.IdentityCreditTransferAction{
		IdentityID:  owner,
		RecipientID: testutil.RandomIdentifier(),
		Amount:      10,
		Nonce:       1,
	}, transferTransition(owner), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeIdentityInsufficientBalance)
}

// ==================== 身份 ====================

func TestValidateIdentityCreate(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)

	// 资产锁定类不走余额前置闸
	st := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindIdentityCreate,
		IdentityCreate: &types.IdentityCreateTransition{
			Version: types.FormatV0,
			V0: &types.IdentityCreateTransitionV0{
				AssetLock:  testutil.AssetLockFixture(t, kp, 10_000),
				PublicKeys: []*types.IdentityPublicKey{testutil.AuthenticationKey(0, kp)},
			},
		},
	}
	action := &types.IdentityCreateAction{IdentityID: st.OwnerID()}

	result, err := v.ValidateState(ctx, action, st, testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())

	// 已存在的身份不能重复创建
	testutil.SeedIdentityWithKeys(t, d, st.OwnerID(), 0, testutil.AuthenticationKey(0, kp))
	result, err = v.ValidateState(ctx, action, st, testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeIdentityAlreadyExists)
}

func TestValidateIdentityUpdateNonceMismatch(t *testing.T) {
	v, d := newValidator(t)
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)

	result, err := v.ValidateState(context.Background(), &types.IdentityUpdateAction{
		IdentityID: owner,
		Revision:   2,
		Nonce:      5,
	}, updateTransition(owner), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeInvalidIdentityNonce)

	var nonceErr *types.InvalidIdentityNonceError
	require.ErrorAs(t, result.FirstError(), &nonceErr)
	assert.Equal(t, uint64(1), nonceErr.ExpectedNonce)
	assert.Equal(t, uint64(5), nonceErr.ReceivedNonce)

	// 预期 nonce 恰为存储值加一时通过
	result, err = v.ValidateState(context.Background(), &types.IdentityUpdateAction{
		IdentityID: owner,
		Revision:   1,
		Nonce:      1,
	}, updateTransition(owner), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

func TestValidateIdentityUpdateRevisionMismatch(t *testing.T) {
	v, d := newValidator(t)
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)

	result, err := v.ValidateState(context.Background(), &types.IdentityUpdateAction{
		IdentityID: owner,
		Revision:   7,
		Nonce:      1,
	}, updateTransition(owner), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeInvalidIdentityRevision)
}

func TestValidateIdentityUpdateKeyDefects(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	kp := testutil.GenerateKeypair(t)
	owner := testutil.SeedIdentity(t, d, kp, 1_000_000)

	// 新增公钥的 ID 与既有公钥冲突
	result, err := v.ValidateState(ctx, &types.IdentityUpdateAction{
		IdentityID:    owner,
		Revision:      1,
		Nonce:         1,
		AddPublicKeys: []*types.IdentityPublicKey{testutil.AuthenticationKey(0, testutil.GenerateKeypair(t))},
	}, updateTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDuplicatedIdentityPublicKeyID)

	// 禁用不存在的公钥
	result, err = v.ValidateState(ctx, &types.IdentityUpdateAction{
		IdentityID:        owner,
		Revision:          1,
		Nonce:             1,
		DisablePublicKeys: []types.KeyID{9},
	}, updateTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeMissingPublicKey)

	// 重复禁用已禁用的公钥
	disabledKey := testutil.AuthenticationKey(1, testutil.GenerateKeypair(t))
	disabledKey.Disable(12345)
	readOnlyKey := types.NewIdentityPublicKeyV0(&types.IdentityPublicKeyV0{
		ID:            2,
		Type:          types.KeyTypeECDSASecp256k1,
		Purpose:       types.KeyPurposeAuthentication,
		SecurityLevel: types.KeySecurityLevelCritical,
		Data:          testutil.GenerateKeypair(t).Public,
		ReadOnly:      true,
	})
	guarded := testutil.RandomIdentifier()
	testutil.SeedIdentityWithKeys(t, d, guarded, 1_000_000,
		testutil.AuthenticationKey(0, kp), disabledKey, readOnlyKey)

	result, err = v.ValidateState(ctx, &types.IdentityUpdateAction{
		IdentityID:        guarded,
		Revision:          1,
		Nonce:             1,
		DisablePublicKeys: []types.KeyID{1},
	}, updateTransition(guarded), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeIdentityPublicKeyAlreadyDisabled)

	// 只读公钥不可禁用
	result, err = v.ValidateState(ctx, &types.IdentityUpdateAction{
		IdentityID:        guarded,
		Revision:          1,
		Nonce:             1,
		DisablePublicKeys: []types.KeyID{2},
	}, updateTransition(guarded), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeIdentityPublicKeyIsReadOnly)
}

func TestValidateCreditTransfer(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	sender := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 200_000)
	recipient := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 0)

	// 接收者未注册
	result, err := v.ValidateState(ctx, &types.IdentityCreditTransferAction{
		IdentityID:  sender,
		RecipientID: testutil.RandomIdentifier(),
		Amount:      100,
		Nonce:       1,
	}, transferTransition(sender), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeRecipientIdentityNotFound)

	// 本金超出余额
	result, err = v.ValidateState(ctx, &types.IdentityCreditTransferAction{
		IdentityID:  sender,
		RecipientID: recipient,
		Amount:      500_000,
		Nonce:       1,
	}, transferTransition(sender), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeIdentityInsufficientBalance)

	result, err = v.ValidateState(ctx, &types.IdentityCreditTransferAction{
		IdentityID:  sender,
		RecipientID: recipient,
		Amount:      50_000,
		Nonce:       1,
	}, transferTransition(sender), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

// ==================== 合约 ====================

func TestValidateContractCreate(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	contract := testutil.NoteContract(owner)

	action := &types.DataContractCreateAction{Contract: contract, Nonce: 1}
	result, err := v.ValidateState(ctx, action, contractCreateTransition(contract), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())

	testutil.SeedContract(t, d, contract)
	result, err = v.ValidateState(ctx, action, contractCreateTransition(contract), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDataContractAlreadyPresent)
}

func TestValidateContractUpdate(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	contract := testutil.NoteContract(owner)

	// 引用不存在的合约
	ghost := testutil.NoteContract(owner)
	result, err := v.ValidateState(ctx, &types.DataContractUpdateAction{Contract: ghost, ContractNonce: 1},
		contractUpdateTransition(ghost), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDataContractNotPresent)

	testutil.SeedContract(t, d, contract)

	nextVersion := func() *types.DataContract {
		updated := testutil.NoteContract(owner)
		updated.V0.ID = contract.ID()
		updated.V0.ContractVersion = 2
		return updated
	}

	// 定义版本必须恰好递增一
	stale := nextVersion()
	stale.V0.ContractVersion = 5
	result, err = v.ValidateState(ctx, &types.DataContractUpdateAction{Contract: stale, ContractNonce: 1},
		contractUpdateTransition(stale), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDataContractImmutablePropertiesUpdate)

	// 更新不得引入新唯一索引
	reindexed := nextVersion()
	reindexed.V0.DocumentTypes["note"].Indices = append(reindexed.V0.DocumentTypes["note"].Indices, &types.Index{
		Name:       "byAuthor",
		Properties: []types.IndexProperty{{Field: "author", Ascending: true}},
		Unique:     true,
	})
	result, err = v.ValidateState(ctx, &types.DataContractUpdateAction{Contract: reindexed, ContractNonce: 1},
		contractUpdateTransition(reindexed), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDataContractHaveNewUniqueIndex)

	// 已登记的文档类型不可删除
	gutted := nextVersion()
	delete(gutted.V0.DocumentTypes, "note")
	gutted.V0.DocumentTypes["memo"] = testutil.NoteContract(owner).V0.DocumentTypes["note"]
	result, err = v.ValidateState(ctx, &types.DataContractUpdateAction{Contract: gutted, ContractNonce: 1},
		contractUpdateTransition(gutted), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDataContractImmutablePropertiesUpdate)

	// 合格更新通过
	result, err = v.ValidateState(ctx, &types.DataContractUpdateAction{Contract: nextVersion(), ContractNonce: 1},
		contractUpdateTransition(nextVersion()), block, platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

// ==================== 批量文档 ====================

func TestValidateDocumentCreate(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	contract := testutil.NoteContract(owner)
	testutil.SeedContract(t, d, contract)

	revision := uint64(1)
	doc := types.NewDocumentV0(&types.DocumentV0{
		ID:         testutil.RandomIdentifier(),
		OwnerID:    owner,
		Properties: map[string]types.Value{"message": types.StringValue("claimed")},
		Revision:   &revision,
	})

	create := func(document *types.Document, nonce uint64) *types.BatchAction {
		return &types.BatchAction{
			Owner: owner,
			SubActions: []types.BatchedAction{
				&types.DocumentCreateAction{Contract: contract, TypeName: "note", Document: document, Nonce: nonce},
			},
		}
	}

	result, err := v.ValidateState(ctx, create(doc, 1), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())

	require.NoError(t, d.ApplyAction(ctx, create(doc, 1), block))

	// 同一文档 ID 不能重复创建
	result, err = v.ValidateState(ctx, create(doc, 2), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDocumentAlreadyPresent)

	// 唯一索引取值已被其他文档占用
	rival := types.NewDocumentV0(&types.DocumentV0{
		ID:         testutil.RandomIdentifier(),
		OwnerID:    owner,
		Properties: map[string]types.Value{"message": types.StringValue("claimed")},
		Revision:   &revision,
	})
	result, err = v.ValidateState(ctx, create(rival, 2), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDuplicateUniqueIndex)
}

func TestValidateDocumentCreateContestRequiresPrefund(t *testing.T) {
	v, d := newValidator(t)
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	contract := testutil.NameContract(owner)
	testutil.SeedContract(t, d, contract)

	doc := types.NewDocumentV0(&types.DocumentV0{
		ID:         testutil.RandomIdentifier(),
		OwnerID:    owner,
		Properties: map[string]types.Value{"label": types.StringValue("alice")},
	})
	action := &types.BatchAction{
		Owner: owner,
		SubActions: []types.BatchedAction{
			&types.DocumentCreateAction{Contract: contract, TypeName: "name", Document: doc, Nonce: 1},
		},
	}

	result, err := v.ValidateState(context.Background(), action, batchTransition(owner), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDocumentContestNotPaidFor)
}

func TestValidateBatchNonceSequencing(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	contract := testutil.NoteContract(owner)
	testutil.SeedContract(t, d, contract)

	revision := uint64(1)
	newDoc := func(message string) *types.Document {
		r := revision
		return types.NewDocumentV0(&types.DocumentV0{
			ID:         testutil.RandomIdentifier(),
			OwnerID:    owner,
			Properties: map[string]types.Value{"message": types.StringValue(message)},
			Revision:   &r,
		})
	}

	// 同一合约的两个子转换：nonce 必须批内连续递进
	action := &types.BatchAction{
		Owner: owner,
		SubActions: []types.BatchedAction{
			&types.DocumentCreateAction{Contract: contract, TypeName: "note", Document: newDoc("first"), Nonce: 1},
			&types.DocumentCreateAction{Contract: contract, TypeName: "note", Document: newDoc("second"), Nonce: 2},
		},
	}
	result, err := v.ValidateState(ctx, action, batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())

	// 第二个子转换重复第一个的 nonce
	skewed := &types.BatchAction{
		Owner: owner,
		SubActions: []types.BatchedAction{
			&types.DocumentCreateAction{Contract: contract, TypeName: "note", Document: newDoc("third"), Nonce: 1},
			&types.DocumentCreateAction{Contract: contract, TypeName: "note", Document: newDoc("fourth"), Nonce: 1},
		},
	}
	result, err = v.ValidateState(ctx, skewed, batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeInvalidIdentityNonce)
}

func TestValidateDocumentReplace(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	intruder := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	contract := testutil.NoteContract(owner)
	testutil.SeedContract(t, d, contract)

	revision := uint64(1)
	doc := types.NewDocumentV0(&types.DocumentV0{
		ID:         testutil.RandomIdentifier(),
		OwnerID:    owner,
		Properties: map[string]types.Value{"message": types.StringValue("v1")},
		Revision:   &revision,
	})
	require.NoError(t, d.ApplyAction(ctx, &types.BatchAction{
		Owner: owner,
		SubActions: []types.BatchedAction{
			&types.DocumentCreateAction{Contract: contract, TypeName: "note", Document: doc, Nonce: 1},
		},
	}, block))

	replacement := func(rev uint64) *types.Document {
		r := rev
		return types.NewDocumentV0(&types.DocumentV0{
			ID:         doc.ID(),
			OwnerID:    owner,
			Properties: map[string]types.Value{"message": types.StringValue("v2")},
			Revision:   &r,
		})
	}
	replaceAction := func(actor types.Identifier, document *types.Document, nonce uint64) *types.BatchAction {
		return &types.BatchAction{
			Owner: actor,
			SubActions: []types.BatchedAction{
				&types.DocumentReplaceAction{Contract: contract, TypeName: "note", Document: document, Nonce: nonce},
			},
		}
	}

	// 引用不存在的文档
	ghost := types.NewDocumentV0(&types.DocumentV0{
		ID:         testutil.RandomIdentifier(),
		OwnerID:    owner,
		Properties: map[string]types.Value{"message": types.StringValue("none")},
		Revision:   &revision,
	})
	result, err := v.ValidateState(ctx, replaceAction(owner, ghost, 2), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDocumentNotFound)

	// 非所有者不可替换
	result, err = v.ValidateState(ctx, replaceAction(intruder, replacement(2), 1), batchTransition(intruder), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDocumentOwnerIDMismatch)

	// 修订号必须恰为存储值加一
	result, err = v.ValidateState(ctx, replaceAction(owner, replacement(9), 2), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeInvalidDocumentRevision)

	result, err = v.ValidateState(ctx, replaceAction(owner, replacement(2), 2), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

func TestValidateDocumentPurchase(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	seller := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	buyer := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	contract := testutil.NoteContract(seller)
	testutil.SeedContract(t, d, contract)

	revision := uint64(1)
	price := types.Credits(40_000)
	doc := types.NewDocumentV0(&types.DocumentV0{
		ID:         testutil.RandomIdentifier(),
		OwnerID:    seller,
		Properties: map[string]types.Value{"message": types.StringValue("collectible")},
		Revision:   &revision,
		Price:      &price,
	})
	require.NoError(t, d.ApplyAction(ctx, &types.BatchAction{
		Owner: seller,
		SubActions: []types.BatchedAction{
			&types.DocumentCreateAction{Contract: contract, TypeName: "note", Document: doc, Nonce: 1},
		},
	}, block))

	purchase := func(actor types.Identifier, offered types.Credits, nonce uint64) *types.BatchAction {
		return &types.BatchAction{
			Owner: actor,
			SubActions: []types.BatchedAction{
				&types.DocumentPurchaseAction{
					Contract: contract, TypeName: "note", DocumentID: doc.ID(),
					Revision: 2, Price: offered, Nonce: nonce,
				},
			},
		}
	}

	// 出价必须与挂牌价完全一致
	result, err := v.ValidateState(ctx, purchase(buyer, 39_999, 1), batchTransition(buyer), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDocumentIncorrectPurchasePrice)

	// 不能购回自己的文档
	result, err = v.ValidateState(ctx, purchase(seller, 40_000, 2), batchTransition(seller), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeDocumentOwnerIDMismatch)

	result, err = v.ValidateState(ctx, purchase(buyer, 40_000, 1), batchTransition(buyer), block, platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

// ==================== 代币 ====================

// tokenBatch 构造单个代币子动作的批量动作
func tokenBatch(contract *types.DataContract, owner types.Identifier, tt *types.TokenTransition, nonce uint64) *types.BatchAction {
	config, _ := contract.TokenAt(0)
	base := types.TokenBaseTransition{DataContractID: contract.ID()}
	tt.Base.DataContractID = contract.ID()
	return &types.BatchAction{
		Owner: owner,
		SubActions: []types.BatchedAction{
			&types.TokenAction{
				Contract:   contract,
				TokenID:    base.TokenID(),
				Config:     config,
				Transition: tt,
				Nonce:      nonce,
			},
		},
	}
}

func TestValidateTokenMint(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	outsider := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)

	maxSupply := types.TokenAmount(1_000_100)
	config := testutil.DefaultTokenConfig()
	config.MaxSupply = &maxSupply
	contract := testutil.TokenContract(owner, config)
	testutil.SeedContract(t, d, contract)

	// 增发权限按合约所有者规则门控
	result, err := v.ValidateState(ctx, tokenBatch(contract, outsider, &types.TokenTransition{
		Kind: types.TokenTransitionMint,
		Mint: &types.TokenMintPayload{Amount: 10},
	}, 1), batchTransition(outsider), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeUnauthorizedTokenAction)

	// 突破供应上限
	result, err = v.ValidateState(ctx, tokenBatch(contract, owner, &types.TokenTransition{
		Kind: types.TokenTransitionMint,
		Mint: &types.TokenMintPayload{Amount: 200},
	}, 1), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeTokenMintPastMaxSupply)

	result, err = v.ValidateState(ctx, tokenBatch(contract, owner, &types.TokenTransition{
		Kind: types.TokenTransitionMint,
		Mint: &types.TokenMintPayload{Amount: 100},
	}, 1), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

func TestValidateTokenSpendGuards(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	contract := testutil.TokenContract(owner, nil)
	testutil.SeedContract(t, d, contract)

	// 余额不足的销毁
	result, err := v.ValidateState(ctx, tokenBatch(contract, owner, &types.TokenTransition{
		Kind: types.TokenTransitionBurn,
		Burn: &types.TokenBurnPayload{Amount: 50},
	}, 1), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeIdentityTokenBalanceInsufficient)

	// 入账后冻结，冻结账户不可支出
	require.NoError(t, d.ApplyAction(ctx, tokenBatch(contract, owner, &types.TokenTransition{
		Kind: types.TokenTransitionMint,
		Mint: &types.TokenMintPayload{Amount: 500},
	}, 1), block))
	require.NoError(t, d.ApplyAction(ctx, tokenBatch(contract, owner, &types.TokenTransition{
		Kind:   types.TokenTransitionFreeze,
		Freeze: &types.TokenFreezePayload{FrozenIdentityID: owner},
	}, 2), block))

	result, err = v.ValidateState(ctx, tokenBatch(contract, owner, &types.TokenTransition{
		Kind: types.TokenTransitionBurn,
		Burn: &types.TokenBurnPayload{Amount: 50},
	}, 3), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeIdentityTokenAccountFrozen)

	// 未冻结账户的资金不可销毁
	intact := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 0)
	result, err = v.ValidateState(ctx, tokenBatch(contract, owner, &types.TokenTransition{
		Kind:               types.TokenTransitionDestroyFrozenFunds,
		DestroyFrozenFunds: &types.TokenFreezePayload{FrozenIdentityID: intact},
	}, 3), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeUnauthorizedTokenAction)
}

func TestValidateTokenPaused(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	contract := testutil.TokenContract(owner, nil)
	testutil.SeedContract(t, d, contract)

	require.NoError(t, d.ApplyAction(ctx, tokenBatch(contract, owner, &types.TokenTransition{
		Kind:      types.TokenTransitionEmergencyAction,
		Emergency: &types.TokenEmergencyPayload{Action: types.TokenEmergencyPause},
	}, 1), block))

	// 暂停期间仅紧急操作放行
	result, err := v.ValidateState(ctx, tokenBatch(contract, owner, &types.TokenTransition{
		Kind: types.TokenTransitionMint,
		Mint: &types.TokenMintPayload{Amount: 10},
	}, 2), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeTokenIsPaused)

	result, err = v.ValidateState(ctx, tokenBatch(contract, owner, &types.TokenTransition{
		Kind:      types.TokenTransitionEmergencyAction,
		Emergency: &types.TokenEmergencyPayload{Action: types.TokenEmergencyResume},
	}, 2), batchTransition(owner), block, platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

func TestValidateTokenDirectPurchase(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	buyer := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)

	// 未挂牌直购
	unlisted := testutil.TokenContract(owner, nil)
	testutil.SeedContract(t, d, unlisted)
	result, err := v.ValidateState(ctx, tokenBatch(unlisted, buyer, &types.TokenTransition{
		Kind:           types.TokenTransitionDirectPurchase,
		DirectPurchase: &types.TokenDirectPurchasePayload{Amount: 10, TotalAgreedPrice: 1000},
	}, 1), batchTransition(buyer), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeTokenNotForDirectSale)

	config := testutil.DefaultTokenConfig()
	config.DirectPricing = &types.TokenPricingSchedule{Price: 100, MinimumSaleAmount: 5}
	contract := testutil.TokenContract(owner, config)
	testutil.SeedContract(t, d, contract)

	// 低于最小购买量
	result, err = v.ValidateState(ctx, tokenBatch(contract, buyer, &types.TokenTransition{
		Kind:           types.TokenTransitionDirectPurchase,
		DirectPurchase: &types.TokenDirectPurchasePayload{Amount: 3, TotalAgreedPrice: 1000},
	}, 1), batchTransition(buyer), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeTokenAmountUnderMinimumSaleAmount)

	// 出价低于应付总价
	result, err = v.ValidateState(ctx, tokenBatch(contract, buyer, &types.TokenTransition{
		Kind:           types.TokenTransitionDirectPurchase,
		DirectPurchase: &types.TokenDirectPurchasePayload{Amount: 10, TotalAgreedPrice: 999},
	}, 1), batchTransition(buyer), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeTokenDirectPurchaseUserPriceTooLow)

	result, err = v.ValidateState(ctx, tokenBatch(contract, buyer, &types.TokenTransition{
		Kind:           types.TokenTransitionDirectPurchase,
		DirectPurchase: &types.TokenDirectPurchasePayload{Amount: 10, TotalAgreedPrice: 1000},
	}, 1), batchTransition(buyer), block, platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

func TestValidateTokenConfigUpdateSupplyFloor(t *testing.T) {
	v, d := newValidator(t)
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	contract := testutil.TokenContract(owner, nil)
	testutil.SeedContract(t, d, contract)

	// 新上限低于当前流通量
	next := testutil.DefaultTokenConfig()
	floor := types.TokenAmount(10)
	next.MaxSupply = &floor
	result, err := v.ValidateState(context.Background(), tokenBatch(contract, owner, &types.TokenTransition{
		Kind:         types.TokenTransitionConfigUpdate,
		ConfigUpdate: &types.TokenConfigUpdatePayload{Config: next},
	}, 1), batchTransition(owner), testutil.TestBlockInfo(), platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeTokenSettingMaxSupplyToLessThanCurrentSupply)
}

func TestValidateTokenGroupAuthorization(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	proposer := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	seconder := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	outsider := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)

	config := testutil.DefaultTokenConfig()
	config.MintingRules = types.AuthorizedActionTakers{Kind: types.AuthorizedGroup, Group: 0}
	contract := types.NewDataContractV0(&types.DataContractV0{
		ID:      testutil.RandomIdentifier(),
		OwnerID: proposer,
		Tokens:  map[types.TokenContractPosition]*types.TokenConfiguration{0: config},
		Groups: map[types.GroupContractPosition]*types.Group{
			0: {
				Members:       map[types.Identifier]uint32{proposer: 1, seconder: 1},
				RequiredPower: 2,
			},
		},
	})
	testutil.SeedContract(t, d, contract)

	actionID := types.DeriveGroupActionID(contract.ID(), proposer, 1)
	groupMint := func(info *types.GroupStateTransitionInfo) *types.TokenTransition {
		return &types.TokenTransition{
			Kind: types.TokenTransitionMint,
			Base: types.TokenBaseTransition{Group: info},
			Mint: &types.TokenMintPayload{Amount: 100},
		}
	}

	// 非群组成员
	result, err := v.ValidateState(ctx, tokenBatch(contract, outsider, groupMint(&types.GroupStateTransitionInfo{
		GroupContractPosition: 0, ActionID: actionID, IsProposer: true,
	}), 1), batchTransition(outsider), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeIdentityNotMemberOfGroup)

	// 附议者引用不存在的动作
	result, err = v.ValidateState(ctx, tokenBatch(contract, seconder, groupMint(&types.GroupStateTransitionInfo{
		GroupContractPosition: 0, ActionID: actionID,
	}), 1), batchTransition(seconder), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeGroupActionAlreadyCompleted)

	// 提案通过并落库
	proposal := tokenBatch(contract, proposer, groupMint(&types.GroupStateTransitionInfo{
		GroupContractPosition: 0, ActionID: actionID, IsProposer: true,
	}), 1)
	result, err = v.ValidateState(ctx, proposal, batchTransition(proposer), block, platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
	require.NoError(t, d.ApplyAction(ctx, proposal, block))

	// 同一动作不可重复提案
	result, err = v.ValidateState(ctx, tokenBatch(contract, proposer, groupMint(&types.GroupStateTransitionInfo{
		GroupContractPosition: 0, ActionID: actionID, IsProposer: true,
	}), 2), batchTransition(proposer), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeGroupActionAlreadySignedByIdentity)

	// 附议合法
	result, err = v.ValidateState(ctx, tokenBatch(contract, seconder, groupMint(&types.GroupStateTransitionInfo{
		GroupContractPosition: 0, ActionID: actionID,
	}), 1), batchTransition(seconder), block, platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

// ==================== 主节点投票 ====================

func TestValidateMasternodeVote(t *testing.T) {
	v, d := newValidator(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	owner := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	voter := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	proTxHash := testutil.RandomIdentifier()
	testutil.SeedMasternode(t, d, proTxHash, voter)

	contract := testutil.NameContract(owner)
	testutil.SeedContract(t, d, contract)
	poll := types.ContestedResourceVotePoll{
		ContractID:    contract.ID(),
		DocumentType:  "name",
		IndexName:     "label",
		IndexValues:   []types.Value{types.StringValue("erin")},
		EndTimeMillis: block.TimeMillis + 1000,
	}
	prefund := types.Credits(10_000)
	require.NoError(t, d.ApplyAction(ctx, &types.BatchAction{
		Owner: owner,
		SubActions: []types.BatchedAction{
			&types.DocumentCreateAction{
				Contract: contract,
				TypeName: "name",
				Document: types.NewDocumentV0(&types.DocumentV0{
					ID:         testutil.RandomIdentifier(),
					OwnerID:    owner,
					Properties: map[string]types.Value{"label": types.StringValue("erin")},
				}),
				Nonce:                  1,
				PrefundedVotingBalance: &prefund,
				ContestedPoll:          &poll,
			},
		},
	}, block))

	vote := func(hash types.Identifier, p types.ContestedResourceVotePoll) *types.MasternodeVoteAction {
		return &types.MasternodeVoteAction{
			ProTxHash:       hash,
			VoterIdentityID: voter,
			Poll:            p,
			Choice:          types.VoteChoice{Kind: types.VoteChoiceTowardsIdentity, TowardsIdentity: owner},
			Nonce:           1,
		}
	}

	// 未注册的主节点
	result, err := v.ValidateState(ctx, vote(testutil.RandomIdentifier(), poll), voteTransition(voter), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeMasternodeNotFound)

	// 投票身份与主节点登记不符
	stranger := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 1_000_000)
	mismatch := vote(proTxHash, poll)
	mismatch.VoterIdentityID = stranger
	result, err = v.ValidateState(ctx, mismatch, voteTransition(stranger), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeMasternodeIncorrectVotingAddress)

	// 引用不存在的议题
	ghostPoll := poll
	ghostPoll.IndexValues = []types.Value{types.StringValue("nobody")}
	result, err = v.ValidateState(ctx, vote(proTxHash, ghostPoll), voteTransition(voter), block, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeVotePollNotAvailableForVoting)

	// 议题已截止
	expired := testutil.TestBlockInfo()
	expired.TimeMillis = poll.EndTimeMillis
	result, err = v.ValidateState(ctx, vote(proTxHash, poll), voteTransition(voter), expired, platformV1(t))
	require.NoError(t, err)
	requireRejection(t, result, types.CodeVotePollNotAvailableForVoting)

	result, err = v.ValidateState(ctx, vote(proTxHash, poll), voteTransition(voter), block, platformV1(t))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}
