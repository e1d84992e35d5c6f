package signature

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoplatform/v1/internal/core/infrastructure/crypto"
	"github.com/evoplatform/v1/internal/core/infrastructure/log"
	"github.com/evoplatform/v1/internal/core/platform/drive"
	"github.com/evoplatform/v1/internal/core/platform/testutil"
	"github.com/evoplatform/v1/pkg/types"
)

func platformV1(t *testing.T) *types.PlatformVersion {
	t.Helper()
	pv, ok := types.PlatformVersionFor(types.ProtocolVersion1)
	require.True(t, ok)
	return pv
}

func newValidator(t *testing.T) (*Validator, *drive.Drive) {
	t.Helper()
	d := testutil.NewDrive(t)
	return NewValidator(d, crypto.NewVerifier(), log.NewNop()), d
}

func transferTransition(owner, recipient types.Identifier, keyID types.KeyID) *types.StateTransition {
	return &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindIdentityCreditTransfer,
		IdentityCreditTransfer: &types.IdentityCreditTransferTransition{
			Version: types.FormatV0,
			V0: &types.IdentityCreditTransferTransitionV0{
				IdentityID:           owner,
				RecipientID:          recipient,
				Amount:               5000,
				Nonce:                1,
				SignaturePublicKeyID: keyID,
			},
		},
	}
}

// ==================== 存储公钥路径 ====================

func TestValidateSignatureStoredKey(t *testing.T) {
	v, d := newValidator(t)
	kp := testutil.GenerateKeypair(t)
	owner := testutil.SeedIdentity(t, d, kp, 1_000_000)

	st := testutil.SignTransition(transferTransition(owner, testutil.RandomIdentifier(), 0), kp)

	result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
	require.NoError(t, err)
	require.True(t, result.IsValid())

	partial := result.Data()
	assert.Equal(t, owner, partial.ID)
	assert.Equal(t, types.Credits(1_000_000), partial.Balance)
	assert.Contains(t, partial.LoadedKeys, types.KeyID(0))
}

func TestValidateSignatureIdentityNotFound(t *testing.T) {
	v, _ := newValidator(t)
	kp := testutil.GenerateKeypair(t)

	st := testutil.SignTransition(transferTransition(testutil.RandomIdentifier(), testutil.RandomIdentifier(), 0), kp)

	result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
	require.NoError(t, err)
	require.False(t, result.IsValid())
	assert.Equal(t, types.CodeIdentityNotFound, result.FirstError().Code())
}

func TestValidateSignatureMissingPublicKey(t *testing.T) {
	v, d := newValidator(t)
	kp := testutil.GenerateKeypair(t)
	owner := testutil.SeedIdentity(t, d, kp, 1_000_000)

	st := testutil.SignTransition(transferTransition(owner, testutil.RandomIdentifier(), 9), kp)

	result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
	require.NoError(t, err)
	require.False(t, result.IsValid())
	assert.Equal(t, types.CodeMissingPublicKey, result.FirstError().Code())
}

func TestValidateSignatureDisabledKey(t *testing.T) {
	v, d := newValidator(t)
	kp := testutil.GenerateKeypair(t)
	disabled := testutil.AuthenticationKey(0, kp)
	disabled.Disable(12345)

	owner := testutil.RandomIdentifier()
	testutil.SeedIdentityWithKeys(t, d, owner, 1_000_000, disabled)

	st := testutil.SignTransition(transferTransition(owner, testutil.RandomIdentifier(), 0), kp)

	result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
	require.NoError(t, err)
	require.False(t, result.IsValid())
	assert.Equal(t, types.CodePublicKeyIsDisabled, result.FirstError().Code())
}

// 提现要求 WITHDRAW 用途，认证公钥签名被拒绝
func TestValidateSignatureWrongPurpose(t *testing.T) {
	v, d := newValidator(t)
	kp := testutil.GenerateKeypair(t)
	owner := testutil.SeedIdentity(t, d, kp, 1_000_000)

	st := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindIdentityCreditWithdrawal,
		IdentityCreditWithdrawal: &types.IdentityCreditWithdrawalTransition{
			Version: types.FormatV0,
			V0: &types.IdentityCreditWithdrawalTransitionV0{
				IdentityID:           owner,
				Amount:               1000,
				Nonce:                1,
				SignaturePublicKeyID: 0,
			},
		},
	}
	testutil.SignTransition(st, kp)

	result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
	require.NoError(t, err)
	require.False(t, result.IsValid())
	assert.Equal(t, types.CodeInvalidSignaturePublicKeyPurpose, result.FirstError().Code())
}

// 身份更新要求 MASTER 级别，低级别公钥签名被拒绝
func TestValidateSignatureSecurityLevelNotMet(t *testing.T) {
	v, d := newValidator(t)
	kp := testutil.GenerateKeypair(t)
	weak := testutil.KeyWithRole(0, kp, types.KeyPurposeAuthentication, types.KeySecurityLevelHigh)

	owner := testutil.RandomIdentifier()
	testutil.SeedIdentityWithKeys(t, d, owner, 1_000_000, weak)

	st := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindIdentityUpdate,
		IdentityUpdate: &types.IdentityUpdateTransition{
			Version: types.FormatV0,
			V0: &types.IdentityUpdateTransitionV0{
				IdentityID:           owner,
				Revision:             2,
				Nonce:                1,
				SignaturePublicKeyID: 0,
			},
		},
	}
	testutil.SignTransition(st, kp)

	result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
	require.NoError(t, err)
	require.False(t, result.IsValid())
	assert.Equal(t, types.CodePublicKeySecurityLevelNotMet, result.FirstError().Code())
}

// 签名与内容不符：用别人的私钥签
func TestValidateSignatureWrongSigner(t *testing.T) {
	v, d := newValidator(t)
	kp := testutil.GenerateKeypair(t)
	intruder := testutil.GenerateKeypair(t)
	owner := testutil.SeedIdentity(t, d, kp, 1_000_000)

	st := testutil.SignTransition(transferTransition(owner, testutil.RandomIdentifier(), 0), intruder)

	result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
	require.NoError(t, err)
	require.False(t, result.IsValid())
	assert.Equal(t, types.CodeInvalidStateTransitionSignature, result.FirstError().Code())
}

// ==================== 资产锁定路径 ====================

func identityCreateTransition(t *testing.T, kp *testutil.Keypair, lockedDuffs int64) *types.StateTransition {
	t.Helper()
	st := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindIdentityCreate,
		IdentityCreate: &types.IdentityCreateTransition{
			Version: types.FormatV0,
			V0: &types.IdentityCreateTransitionV0{
				AssetLock:  testutil.AssetLockFixture(t, kp, lockedDuffs),
				PublicKeys: []*types.IdentityPublicKey{testutil.AuthenticationKey(0, kp)},
			},
		},
	}
	return testutil.SignTransition(st, kp)
}

func TestValidateSignatureAssetLock(t *testing.T) {
	v, _ := newValidator(t)
	kp := testutil.GenerateKeypair(t)

	st := identityCreateTransition(t, kp, 5000)

	result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
	require.NoError(t, err)
	require.True(t, result.IsValid())

	// 积分 = 锁定面额 × 固定换算率
	partial := result.Data()
	assert.Equal(t, st.OwnerID(), partial.ID)
	assert.Equal(t, types.Credits(5000*1000), partial.Balance)
}

func TestValidateSignatureAssetLockReplay(t *testing.T) {
	v, d := newValidator(t)
	kp := testutil.GenerateKeypair(t)
	st := identityCreateTransition(t, kp, 5000)

	outPoint := st.AssetLockProof().OutPoint()
	require.NoError(t, d.MarkAssetLockConsumed(context.Background(), outPoint, testutil.RandomIdentifier()))

	result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
	require.NoError(t, err)
	require.False(t, result.IsValid())
	assert.Equal(t, types.CodeAssetLockOutPointAlreadyConsumed, result.FirstError().Code())
}

// 同一转换原样重放与他人抢占同一输出点给出不同错误
func TestValidateSignatureAssetLockSameTransitionReplay(t *testing.T) {
	v, d := newValidator(t)
	kp := testutil.GenerateKeypair(t)
	st := identityCreateTransition(t, kp, 5000)

	outPoint := st.AssetLockProof().OutPoint()
	require.NoError(t, d.MarkAssetLockConsumed(context.Background(), outPoint, st.TransitionID()))

	result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
	require.NoError(t, err)
	require.False(t, result.IsValid())

	var replayErr *types.IdentityAssetLockStateTransitionReplayError
	require.ErrorAs(t, result.FirstError(), &replayErr)
	assert.Equal(t, st.TransitionID(), replayErr.TransitionID)
}

// 出资公钥与锁定输出承诺的键哈希不一致
func TestValidateSignatureAssetLockKeyMismatch(t *testing.T) {
	v, _ := newValidator(t)
	kp := testutil.GenerateKeypair(t)
	other := testutil.GenerateKeypair(t)

	st := identityCreateTransition(t, kp, 5000)
	st.IdentityCreate.V0.AssetLock.FundingPublicKey = other.Public
	testutil.SignTransition(st, other)

	result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
	require.NoError(t, err)
	require.False(t, result.IsValid())
	assert.Equal(t, types.CodeInvalidAssetLockProof, result.FirstError().Code())
}

func TestValidateSignatureAssetLockMalformedProof(t *testing.T) {
	v, _ := newValidator(t)
	kp := testutil.GenerateKeypair(t)

	cases := map[string]func(*types.AssetLockProof){
		"missingInstantLock": func(p *types.AssetLockProof) { p.InstantLockSig = nil },
		"malformedTx":        func(p *types.AssetLockProof) { p.Transaction = []byte{0xde, 0xad} },
		"outputOutOfRange":   func(p *types.AssetLockProof) { p.OutputIndex = 7 },
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			st := identityCreateTransition(t, kp, 5000)
			corrupt(st.IdentityCreate.V0.AssetLock)
			testutil.SignTransition(st, kp)

			result, err := v.ValidateSignature(context.Background(), st, platformV1(t))
			require.NoError(t, err)
			require.False(t, result.IsValid())
			assert.Equal(t, types.CodeInvalidAssetLockProof, result.FirstError().Code())
		})
	}
}

func TestParseAssetLockOutput(t *testing.T) {
	kp := testutil.GenerateKeypair(t)
	proof := testutil.AssetLockFixture(t, kp, 1234)

	value, keyHash, reason := ParseAssetLockOutput(proof)
	require.Empty(t, reason)
	assert.Equal(t, uint64(1234), value)
	assert.Equal(t, kp.PublicKeyHash(), keyHash)
}
