package processor

import (
	"context"
	"testing"

	evbus "github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformconfig "github.com/evoplatform/v1/internal/config/platform"
	"github.com/evoplatform/v1/internal/core/infrastructure/crypto"
	"github.com/evoplatform/v1/internal/core/infrastructure/log"
	"github.com/evoplatform/v1/internal/core/platform/action"
	"github.com/evoplatform/v1/internal/core/platform/drive"
	"github.com/evoplatform/v1/internal/core/platform/fees"
	"github.com/evoplatform/v1/internal/core/platform/testutil"
	"github.com/evoplatform/v1/internal/core/platform/triggers"
	"github.com/evoplatform/v1/internal/core/platform/validator/signature"
	"github.com/evoplatform/v1/internal/core/platform/validator/state"
	"github.com/evoplatform/v1/internal/core/platform/validator/structure"
	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"github.com/evoplatform/v1/pkg/types"
)

// newKernel 用内存状态库组装完整五阶段流水线
func newKernel(t *testing.T) (*Kernel, *drive.Drive, evbus.Bus) {
	t.Helper()
	logger := log.NewNop()
	d := testutil.NewDrive(t)

	resolver, err := action.NewContractResolver(d, platformconfig.New(nil), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resolver.Close() })

	bus := evbus.New()
	kernel := NewKernel(
		structure.NewValidator(),
		signature.NewValidator(d, crypto.NewVerifier(), logger),
		action.NewTransformer(d, resolver, logger),
		state.NewValidator(d, triggers.NewDefaultRegistry(logger), logger),
		fees.NewCalculator(),
		d,
		resolver,
		bus,
		logger,
	)
	return kernel, d, bus
}

func signedTransfer(owner, recipient types.Identifier, amount types.Credits, nonce uint64, kp *testutil.Keypair) *types.StateTransition {
	st := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindIdentityCreditTransfer,
		IdentityCreditTransfer: &types.IdentityCreditTransferTransition{
			Version: types.FormatV0,
			V0: &types.IdentityCreditTransferTransitionV0{
				IdentityID:           owner,
				RecipientID:          recipient,
				Amount:               amount,
				Nonce:                nonce,
				SignaturePublicKeyID: 0,
			},
		},
	}
	return testutil.SignTransition(st, kp)
}

func signedIdentityCreate(t *testing.T, kp *testutil.Keypair, lockedDuffs int64) *types.StateTransition {
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

// collect 订阅处理结论主题，同步收集发布的结果
func collect(t *testing.T, bus evbus.Bus, topic string) *[]*platform.ProcessingResult {
	t.Helper()
	var results []*platform.ProcessingResult
	require.NoError(t, bus.Subscribe(topic, func(r *platform.ProcessingResult) {
		results = append(results, r)
	}))
	return &results
}

// ==================== 解码与版本窗口 ====================

func TestProcessRawDecodeFailure(t *testing.T) {
	k, _, _ := newKernel(t)

	result, err := k.ProcessRawStateTransition(context.Background(), []byte{0xde, 0xad, 0xbe}, testutil.TestBlockInfo())
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, types.CodeStateTransitionDecode, result.Errors[0].Code())
}

func TestProcessUnsupportedProtocolVersion(t *testing.T) {
	k, d, _ := newKernel(t)
	kp := testutil.GenerateKeypair(t)
	owner := testutil.SeedIdentity(t, d, kp, 1_000_000)

	st := signedTransfer(owner, testutil.RandomIdentifier(), 1000, 1, kp)
	st.ProtocolVersion = 99

	result, err := k.ProcessStateTransition(context.Background(), st, testutil.TestBlockInfo())
	require.NoError(t, err)
	require.False(t, result.Valid)
	assert.Equal(t, types.CodeUnsupportedProtocolVersion, result.Errors[0].Code())
}

// ==================== 接受路径 ====================

func TestProcessCreditTransferEndToEnd(t *testing.T) {
	k, d, bus := newKernel(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)
	sender := testutil.SeedIdentity(t, d, kp, 1_000_000)
	recipient := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 0)
	accepted := collect(t, bus, TopicTransitionAccepted)

	st := signedTransfer(sender, recipient, 250_000, 1, kp)
	result, err := k.ProcessStateTransition(ctx, st, testutil.TestBlockInfo())
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.NotNil(t, result.Fee)
	assert.Equal(t, st.TransitionID(), result.TransitionID)

	deducted, err := result.Fee.DeductedAmount()
	require.NoError(t, err)
	require.Greater(t, uint64(deducted), uint64(0))

	// 本金与费用一并结清，接收方入账，nonce 推进
	senderBalance, _, err := d.FetchIdentityBalance(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, types.Credits(1_000_000)-250_000-deducted, senderBalance)

	recipientBalance, _, err := d.FetchIdentityBalance(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, types.Credits(250_000), recipientBalance)

	nonce, err := d.FetchIdentityNonce(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	require.Len(t, *accepted, 1)
	assert.Equal(t, st.TransitionID(), (*accepted)[0].TransitionID)
}

func TestProcessIdentityCreateAssetLock(t *testing.T) {
	k, d, _ := newKernel(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)

	st := signedIdentityCreate(t, kp, 5000)
	result, err := k.ProcessStateTransition(ctx, st, testutil.TestBlockInfo())
	require.NoError(t, err)
	require.True(t, result.Valid)

	// 初始余额 = 锁定面额换算积分 − 基础费
	deducted, err := result.Fee.DeductedAmount()
	require.NoError(t, err)
	balance, exists, err := d.FetchIdentityBalance(ctx, st.OwnerID())
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, types.Credits(5000*1000)-deducted, balance)

	consumed, err := d.IsAssetLockOutPointConsumed(ctx, st.AssetLockProof().OutPoint())
	require.NoError(t, err)
	assert.True(t, consumed)

	// 同一转换原样重放：按转换重放拒绝
	replay, err := k.ProcessStateTransition(ctx, st, testutil.TestBlockInfo())
	require.NoError(t, err)
	require.False(t, replay.Valid)
	assert.Equal(t, types.CodeAssetLockStateTransitionReplay, replay.Errors[0].Code())

	// 另一笔转换抢用同一锁定输出：按输出点已消费拒绝
	rival := &types.StateTransition{
		ProtocolVersion: types.ProtocolVersion1,
		Kind:            types.KindIdentityCreate,
		IdentityCreate: &types.IdentityCreateTransition{
			Version: types.FormatV0,
			V0: &types.IdentityCreateTransitionV0{
				AssetLock:  st.AssetLockProof(),
				PublicKeys: []*types.IdentityPublicKey{testutil.AuthenticationKey(0, testutil.GenerateKeypair(t))},
			},
		},
	}
	testutil.SignTransition(rival, kp)
	contested, err := k.ProcessStateTransition(ctx, rival, testutil.TestBlockInfo())
	require.NoError(t, err)
	require.False(t, contested.Valid)
	assert.Equal(t, types.CodeAssetLockOutPointAlreadyConsumed, contested.Errors[0].Code())
}

// ==================== 状态拒绝的结算 ====================

func TestProcessStateRejectionSettlement(t *testing.T) {
	k, d, bus := newKernel(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)
	sender := testutil.SeedIdentity(t, d, kp, 1_000_000)
	rejectedEvents := collect(t, bus, TopicTransitionRejected)

	// 接收者不存在：状态拒绝，但提交者付得起基础费
	st := signedTransfer(sender, testutil.RandomIdentifier(), 1000, 1, kp)
	result, err := k.ProcessStateTransition(ctx, st, testutil.TestBlockInfo())
	require.NoError(t, err)
	require.False(t, result.Valid)
	assert.Equal(t, types.CodeRecipientIdentityNotFound, result.Errors[0].Code())

	// 兜底动作占用序列并照常扣费，阻止免费重放
	require.IsType(t, &types.BumpIdentityNonceAction{}, result.Action)
	require.NotNil(t, result.Fee)
	deducted, err := result.Fee.DeductedAmount()
	require.NoError(t, err)

	balance, _, err := d.FetchIdentityBalance(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, types.Credits(1_000_000)-deducted, balance)

	nonce, err := d.FetchIdentityNonce(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	require.Len(t, *rejectedEvents, 1)
}

// 资产锁定出资的转换被状态拒绝时没有可扣费的身份，直接拒绝
func TestProcessAssetLockFundedRejectionNotSettled(t *testing.T) {
	k, d, _ := newKernel(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)

	st := signedIdentityCreate(t, kp, 5000)
	testutil.SeedIdentityWithKeys(t, d, st.OwnerID(), 777, testutil.AuthenticationKey(0, kp))

	result, err := k.ProcessStateTransition(ctx, st, testutil.TestBlockInfo())
	require.NoError(t, err)
	require.False(t, result.Valid)
	assert.Equal(t, types.CodeIdentityAlreadyExists, result.Errors[0].Code())
	assert.Nil(t, result.Action)

	// 既有身份的余额不受影响，锁定输出保持未消费
	balance, _, err := d.FetchIdentityBalance(ctx, st.OwnerID())
	require.NoError(t, err)
	assert.Equal(t, types.Credits(777), balance)

	consumed, err := d.IsAssetLockOutPointConsumed(ctx, st.AssetLockProof().OutPoint())
	require.NoError(t, err)
	assert.False(t, consumed)
}

// ==================== mempool 预检 ====================

func TestCheckStateTransitionDoesNotWrite(t *testing.T) {
	k, d, bus := newKernel(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)
	sender := testutil.SeedIdentity(t, d, kp, 1_000_000)
	recipient := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 0)
	accepted := collect(t, bus, TopicTransitionAccepted)
	rejectedEvents := collect(t, bus, TopicTransitionRejected)

	st := signedTransfer(sender, recipient, 250_000, 1, kp)
	result, err := k.CheckStateTransition(ctx, st, testutil.TestBlockInfo())
	require.NoError(t, err)
	require.True(t, result.Valid)

	// 只验不写：余额与 nonce 原样，不发布结论事件
	balance, _, err := d.FetchIdentityBalance(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, types.Credits(1_000_000), balance)

	nonce, err := d.FetchIdentityNonce(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)

	assert.Empty(t, *accepted)
	assert.Empty(t, *rejectedEvents)
}

// 预检对状态拒绝同样不落兜底动作
func TestCheckStateTransitionRejectionDoesNotWrite(t *testing.T) {
	k, d, _ := newKernel(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)
	sender := testutil.SeedIdentity(t, d, kp, 1_000_000)

	st := signedTransfer(sender, testutil.RandomIdentifier(), 1000, 1, kp)
	result, err := k.CheckStateTransition(ctx, st, testutil.TestBlockInfo())
	require.NoError(t, err)
	require.False(t, result.Valid)
	assert.Equal(t, types.CodeRecipientIdentityNotFound, result.Errors[0].Code())

	balance, _, err := d.FetchIdentityBalance(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, types.Credits(1_000_000), balance)

	nonce, err := d.FetchIdentityNonce(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)
}

// ==================== 本金加费用终检 ====================

// 本金付得起但加上基础费付不起：必须确定性拒绝，不能半提交后打穿余额
func TestProcessTransferOverdraftRejected(t *testing.T) {
	k, d, _ := newKernel(t)
	ctx := context.Background()
	kp := testutil.GenerateKeypair(t)
	sender := testutil.SeedIdentity(t, d, kp, 500_000)
	recipient := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 0)

	result, err := k.ProcessStateTransition(ctx, signedTransfer(sender, recipient, 450_000, 1, kp), testutil.TestBlockInfo())
	require.NoError(t, err)
	require.False(t, result.Valid)
	assert.Equal(t, types.CodeIdentityInsufficientBalance, result.Errors[0].Code())

	// 拒绝不留任何痕迹：双方余额与 nonce 原样
	senderBalance, _, err := d.FetchIdentityBalance(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, types.Credits(500_000), senderBalance)

	recipientBalance, _, err := d.FetchIdentityBalance(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, types.Credits(0), recipientBalance)

	nonce, err := d.FetchIdentityNonce(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)
}

// 余额恰好差一与恰好足额的分界
func TestProcessTransferAmountPlusFeeBoundary(t *testing.T) {
	k, d, _ := newKernel(t)
	ctx := context.Background()
	block := testutil.TestBlockInfo()
	recipient := testutil.SeedIdentity(t, d, testutil.GenerateKeypair(t), 0)
	const amount = types.Credits(450_000)

	// 费用只取决于转换字节，先用充裕余额取得基准费
	kpBaseline := testutil.GenerateKeypair(t)
	baseline := testutil.SeedIdentity(t, d, kpBaseline, 10_000_000)
	result, err := k.ProcessStateTransition(ctx, signedTransfer(baseline, recipient, amount, 1, kpBaseline), block)
	require.NoError(t, err)
	require.True(t, result.Valid)
	fee, err := result.Fee.DeductedAmount()
	require.NoError(t, err)

	// 差一个积分：拒绝，余额原样
	kpShort := testutil.GenerateKeypair(t)
	short := testutil.SeedIdentity(t, d, kpShort, amount+fee-1)
	result, err = k.ProcessStateTransition(ctx, signedTransfer(short, recipient, amount, 1, kpShort), block)
	require.NoError(t, err)
	require.False(t, result.Valid)

	var balanceErr *types.IdentityInsufficientBalanceError
	require.ErrorAs(t, result.Errors[0], &balanceErr)
	assert.Equal(t, amount+fee, balanceErr.Required)
	assert.Equal(t, amount+fee-1, balanceErr.Balance)

	shortBalance, _, err := d.FetchIdentityBalance(ctx, short)
	require.NoError(t, err)
	assert.Equal(t, amount+fee-1, shortBalance)

	// 恰好足额：接受，余额清零
	kpExact := testutil.GenerateKeypair(t)
	exact := testutil.SeedIdentity(t, d, kpExact, amount+fee)
	result, err = k.ProcessStateTransition(ctx, signedTransfer(exact, recipient, amount, 1, kpExact), block)
	require.NoError(t, err)
	require.True(t, result.Valid)

	exactBalance, _, err := d.FetchIdentityBalance(ctx, exact)
	require.NoError(t, err)
	assert.Equal(t, types.Credits(0), exactBalance)
}
