// Package signature 提供状态转换的签名校验
//
// 🎯 **核心职责**：
// - 存储公钥路径：解析签名者身份与公钥，检查用途/安全级别/禁用状态后验签
// - 资产锁定路径：校验锁定证明绑定、outpoint 重放，用出资公钥验签
//
// 💡 **设计理念**：
// 本阶段采用短路语义：身份不存在时继续检查公钥用途没有意义，首错
// 即返回。成功时返回身份片段，余额检查无需再次取数。
//
// 📞 **调用方**：处理器内核（第二阶段）
package signature

import (
	"context"

	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"github.com/evoplatform/v1/pkg/types"
)

// 各转换类别允许的签名公钥用途
var allowedPurposes = map[types.TransitionKind][]types.KeyPurpose{
	types.KindIdentityUpdate:           {types.KeyPurposeAuthentication},
	types.KindIdentityCreditTransfer:   {types.KeyPurposeAuthentication, types.KeyPurposeWithdraw},
	types.KindIdentityCreditWithdrawal: {types.KeyPurposeWithdraw},
	types.KindDataContractCreate:       {types.KeyPurposeAuthentication},
	types.KindDataContractUpdate:       {types.KeyPurposeAuthentication},
	types.KindBatch:                    {types.KeyPurposeAuthentication},
	types.KindMasternodeVote:           {types.KeyPurposeVoting},
}

// 各转换类别要求的最低安全级别
var requiredSecurityLevels = map[types.TransitionKind]types.KeySecurityLevel{
	types.KindIdentityUpdate:           types.KeySecurityLevelMaster,
	types.KindIdentityCreditTransfer:   types.KeySecurityLevelCritical,
	types.KindIdentityCreditWithdrawal: types.KeySecurityLevelCritical,
	types.KindDataContractCreate:       types.KeySecurityLevelCritical,
	types.KindDataContractUpdate:       types.KeySecurityLevelCritical,
	types.KindBatch:                    types.KeySecurityLevelHigh,
	types.KindMasternodeVote:           types.KeySecurityLevelHigh,
}

// Validator 签名校验器
type Validator struct {
	repo     platform.StateRepository
	verifier platform.SignatureVerifier
	logger   logInterface.Logger
}

var _ platform.SignatureValidator = (*Validator)(nil)

// NewValidator 创建签名校验器
//
// 参数：
//   - repo: 状态仓库（身份与资产锁定消费记录）
//   - verifier: 签名验证能力
//   - logger: 日志记录器
func NewValidator(repo platform.StateRepository, verifier platform.SignatureVerifier, logger logInterface.Logger) *Validator {
	return &Validator{
		repo:     repo,
		verifier: verifier,
		logger:   logger,
	}
}

// ValidateSignature 校验单条转换的签名
func (v *Validator) ValidateSignature(ctx context.Context, st *types.StateTransition, pv *types.PlatformVersion) (*types.ConsensusValidationResult[*types.PartialIdentity], error) {
	switch pv.Methods.ValidateSignature {
	case 0:
		return v.validateSignatureV0(ctx, st)
	default:
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultUnknownVersionDispatch,
			Op:     "signature.ValidateSignature",
		}
	}
}

func (v *Validator) validateSignatureV0(ctx context.Context, st *types.StateTransition) (*types.ConsensusValidationResult[*types.PartialIdentity], error) {
	if st.IsAssetLockFunded() {
		return v.validateAssetLockSignature(ctx, st)
	}
	return v.validateIdentityKeySignature(ctx, st)
}

// validateIdentityKeySignature 存储公钥路径
func (v *Validator) validateIdentityKeySignature(ctx context.Context, st *types.StateTransition) (*types.ConsensusValidationResult[*types.PartialIdentity], error) {
	ownerID := st.OwnerID()
	identity, err := v.repo.FetchIdentity(ctx, ownerID)
	if err != nil {
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultCorruptedState,
			Op:     "signature.FetchIdentity",
			Err:    err,
		}
	}
	if identity == nil {
		return reject(&types.IdentityNotFoundError{IdentityID: ownerID}), nil
	}

	keyID, _ := st.SignaturePublicKeyID()
	key, ok := identity.PublicKeyByID(keyID)
	if !ok {
		return reject(&types.MissingPublicKeyError{IdentityID: ownerID, KeyID: keyID}), nil
	}
	if key.DisabledAt() != nil {
		return reject(&types.PublicKeyIsDisabledError{KeyID: keyID}), nil
	}

	allowed := allowedPurposes[st.Kind]
	if !purposeAllowed(key.Purpose(), allowed) {
		return reject(&types.InvalidSignaturePublicKeyPurposeError{
			Purpose: key.Purpose(),
			Allowed: allowed,
		}), nil
	}

	required := requiredSecurityLevels[st.Kind]
	if !key.SecurityLevel().AtLeast(required) {
		return reject(&types.PublicKeySecurityLevelNotMetError{
			Level:    key.SecurityLevel(),
			Required: required,
		}), nil
	}

	if err := v.verifier.VerifySignature(key.Type(), key.Data(), st.SignableBytes(), st.Signature()); err != nil {
		v.logger.Debugf("signature verification failed for identity %s key %d: %v", ownerID, keyID, err)
		return reject(&types.InvalidStateTransitionSignatureError{}), nil
	}

	partial := &types.PartialIdentity{
		ID:         identity.ID(),
		Balance:    identity.Balance(),
		Revision:   identity.Revision(),
		LoadedKeys: map[types.KeyID]*types.IdentityPublicKey{keyID: key},
	}
	return types.NewConsensusValidationResult(partial), nil
}

func purposeAllowed(purpose types.KeyPurpose, allowed []types.KeyPurpose) bool {
	for _, p := range allowed {
		if p == purpose {
			return true
		}
	}
	return false
}

func reject(errs ...types.ConsensusError) *types.ConsensusValidationResult[*types.PartialIdentity] {
	return types.NewConsensusValidationError[*types.PartialIdentity](errs...)
}
