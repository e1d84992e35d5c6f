// 文件说明：
// 资产锁定路径的签名校验：身份创建/充值不由存储公钥签名，而由基础链
// 锁定交易的出资密钥签名。本文件解析锁定交易、核对输出脚本对出资
// 公钥的承诺、检查 outpoint 重放，并完成验签与积分换算。
package signature

import (
	"bytes"
	"context"

	"github.com/btcsuite/btcd/wire"

	"github.com/evoplatform/v1/pkg/types"
)

const (
	// creditsPerDuff 基础链最小面额到平台积分的固定换算率
	creditsPerDuff = 1000

	// opReturn 锁定输出脚本的首字节
	opReturn = 0x6a
	// hash160PushLength 键哈希推送长度
	hash160PushLength = 0x14
)

// validateAssetLockSignature 资产锁定路径
func (v *Validator) validateAssetLockSignature(ctx context.Context, st *types.StateTransition) (*types.ConsensusValidationResult[*types.PartialIdentity], error) {
	proof := st.AssetLockProof()

	outPoint := proof.OutPoint()
	consumer, err := v.repo.FetchAssetLockConsumer(ctx, outPoint)
	if err != nil {
		return nil, &types.ProtocolError{
			Reason: types.ProtocolFaultCorruptedState,
			Op:     "signature.FetchAssetLockConsumer",
			Err:    err,
		}
	}
	if consumer != nil {
		// 同一转换原样重放与他人抢占同一输出点区分开
		if *consumer == st.TransitionID() {
			return reject(&types.IdentityAssetLockStateTransitionReplayError{TransitionID: *consumer}), nil
		}
		return reject(&types.IdentityAssetLockTransactionOutPointAlreadyConsumedError{OutPoint: outPoint}), nil
	}

	lockedValue, keyHash, reason := ParseAssetLockOutput(proof)
	if reason != "" {
		return reject(&types.InvalidAssetLockProofError{Reason: reason}), nil
	}

	// 出资公钥必须与脚本承诺的键哈希一致
	pubKeyHash, err := v.verifier.PublicKeyHash160(proof.FundingPublicKey)
	if err != nil {
		return reject(&types.InvalidAssetLockProofError{Reason: "malformed funding public key"}), nil
	}
	if !bytes.Equal(pubKeyHash, keyHash) {
		return reject(&types.InvalidAssetLockProofError{Reason: "funding public key does not match locked output"}), nil
	}

	if err := v.verifier.VerifySignature(types.KeyTypeECDSASecp256k1, proof.FundingPublicKey, st.SignableBytes(), st.Signature()); err != nil {
		v.logger.Debugf("asset lock signature verification failed: %v", err)
		return reject(&types.InvalidStateTransitionSignatureError{}), nil
	}

	credits, err := types.Credits(lockedValue).CheckedMul(creditsPerDuff)
	if err != nil {
		return reject(&types.InvalidAssetLockProofError{Reason: "locked value exceeds credit range"}), nil
	}

	partial := &types.PartialIdentity{
		ID:      st.OwnerID(),
		Balance: credits,
	}
	return types.NewConsensusValidationResult(partial), nil
}

// ParseAssetLockOutput 解析锁定交易并提取锁定输出
//
// 锁定输出脚本的规范形态：OP_RETURN <20 字节键哈希>。
// 返回锁定面额、键哈希；reason 非空表示证明不合法。
func ParseAssetLockOutput(proof *types.AssetLockProof) (value uint64, keyHash []byte, reason string) {
	if len(proof.InstantLockSig) == 0 {
		return 0, nil, "missing instant lock signature"
	}

	tx := &wire.MsgTx{}
	if err := tx.Deserialize(bytes.NewReader(proof.Transaction)); err != nil {
		return 0, nil, "malformed transaction"
	}
	if int(proof.OutputIndex) >= len(tx.TxOut) {
		return 0, nil, "output index out of range"
	}

	out := tx.TxOut[proof.OutputIndex]
	if out.Value <= 0 {
		return 0, nil, "locked output has no value"
	}
	script := out.PkScript
	if len(script) != 2+hash160PushLength || script[0] != opReturn || script[1] != hash160PushLength {
		return 0, nil, "locked output script is not an asset lock commitment"
	}

	return uint64(out.Value), script[2:], ""
}
