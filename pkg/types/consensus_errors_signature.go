package types

import (
	"fmt"

	"github.com/evoplatform/v1/pkg/codec"
)

// 签名错误代码（20xx）
const (
	CodeIdentityNotFound                   ConsensusErrorCode = 2001
	CodeMissingPublicKey                   ConsensusErrorCode = 2002
	CodeInvalidSignaturePublicKeyPurpose   ConsensusErrorCode = 2003
	CodePublicKeySecurityLevelNotMet       ConsensusErrorCode = 2004
	CodeInvalidStateTransitionSignature    ConsensusErrorCode = 2005
	CodePublicKeyIsDisabled                ConsensusErrorCode = 2006
	CodeAssetLockOutPointAlreadyConsumed   ConsensusErrorCode = 2007
	CodeAssetLockStateTransitionReplay     ConsensusErrorCode = 2008
	CodeInvalidAssetLockProof              ConsensusErrorCode = 2009
)

func init() {
	registerConsensusError(CodeIdentityNotFound, func(r *codec.Reader) (ConsensusError, error) {
		id, err := readIdentifier(r)
		if err != nil {
			return nil, err
		}
		return &IdentityNotFoundError{IdentityID: id}, nil
	})
	registerConsensusError(CodeMissingPublicKey, func(r *codec.Reader) (ConsensusError, error) {
		id, err := readIdentifier(r)
		if err != nil {
			return nil, err
		}
		key, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &MissingPublicKeyError{IdentityID: id, KeyID: KeyID(key)}, nil
	})
	registerConsensusError(CodeInvalidSignaturePublicKeyPurpose, func(r *codec.Reader) (ConsensusError, error) {
		purpose, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		allowed := make([]KeyPurpose, 0, n)
		for i := uint64(0); i < n; i++ {
			p, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			allowed = append(allowed, KeyPurpose(p))
		}
		return &InvalidSignaturePublicKeyPurposeError{Purpose: KeyPurpose(purpose), Allowed: allowed}, nil
	})
	registerConsensusError(CodePublicKeySecurityLevelNotMet, func(r *codec.Reader) (ConsensusError, error) {
		level, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		required, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &PublicKeySecurityLevelNotMetError{
			Level:    KeySecurityLevel(level),
			Required: KeySecurityLevel(required),
		}, nil
	})
	registerConsensusError(CodeInvalidStateTransitionSignature, func(r *codec.Reader) (ConsensusError, error) {
		return &InvalidStateTransitionSignatureError{}, nil
	})
	registerConsensusError(CodePublicKeyIsDisabled, func(r *codec.Reader) (ConsensusError, error) {
		key, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return &PublicKeyIsDisabledError{KeyID: KeyID(key)}, nil
	})
	registerConsensusError(CodeAssetLockOutPointAlreadyConsumed, func(r *codec.Reader) (ConsensusError, error) {
		outpoint, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return &IdentityAssetLockTransactionOutPointAlreadyConsumedError{OutPoint: outpoint}, nil
	})
	registerConsensusError(CodeAssetLockStateTransitionReplay, func(r *codec.Reader) (ConsensusError, error) {
		id, err := readIdentifier(r)
		if err != nil {
			return nil, err
		}
		return &IdentityAssetLockStateTransitionReplayError{TransitionID: id}, nil
	})
	registerConsensusError(CodeInvalidAssetLockProof, func(r *codec.Reader) (ConsensusError, error) {
		reason, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return &InvalidAssetLockProofError{Reason: reason}, nil
	})
}

// IdentityNotFoundError 签名者身份不存在
type IdentityNotFoundError struct {
	IdentityID Identifier
}

func (e *IdentityNotFoundError) Error() string {
	return fmt.Sprintf("identity %s not found", e.IdentityID)
}
func (e *IdentityNotFoundError) Code() ConsensusErrorCode      { return CodeIdentityNotFound }
func (e *IdentityNotFoundError) EncodePayload(w *codec.Writer) { w.WriteFixed(e.IdentityID[:]) }
func (e *IdentityNotFoundError) consensusError()               {}

// MissingPublicKeyError 签名公钥 ID 在身份中不存在
type MissingPublicKeyError struct {
	IdentityID Identifier
	KeyID      KeyID
}

func (e *MissingPublicKeyError) Error() string {
	return fmt.Sprintf("identity %s has no public key %d", e.IdentityID, e.KeyID)
}
func (e *MissingPublicKeyError) Code() ConsensusErrorCode { return CodeMissingPublicKey }
func (e *MissingPublicKeyError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.IdentityID[:])
	w.WriteVarint(uint64(e.KeyID))
}
func (e *MissingPublicKeyError) consensusError() {}

// InvalidSignaturePublicKeyPurposeError 公钥用途不在该转换类型的允许集合内
type InvalidSignaturePublicKeyPurposeError struct {
	Purpose KeyPurpose
	Allowed []KeyPurpose
}

func (e *InvalidSignaturePublicKeyPurposeError) Error() string {
	return fmt.Sprintf("public key purpose %s not allowed for this transition (allowed: %v)", e.Purpose, e.Allowed)
}
func (e *InvalidSignaturePublicKeyPurposeError) Code() ConsensusErrorCode {
	return CodeInvalidSignaturePublicKeyPurpose
}
func (e *InvalidSignaturePublicKeyPurposeError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.Purpose))
	w.WriteVarint(uint64(len(e.Allowed)))
	for _, p := range e.Allowed {
		w.WriteVarint(uint64(p))
	}
}
func (e *InvalidSignaturePublicKeyPurposeError) consensusError() {}

// PublicKeySecurityLevelNotMetError 公钥安全级别低于该转换类型的最低要求
type PublicKeySecurityLevelNotMetError struct {
	Level    KeySecurityLevel
	Required KeySecurityLevel
}

func (e *PublicKeySecurityLevelNotMetError) Error() string {
	return fmt.Sprintf("public key security level %s does not meet required %s", e.Level, e.Required)
}
func (e *PublicKeySecurityLevelNotMetError) Code() ConsensusErrorCode {
	return CodePublicKeySecurityLevelNotMet
}
func (e *PublicKeySecurityLevelNotMetError) EncodePayload(w *codec.Writer) {
	w.WriteVarint(uint64(e.Level))
	w.WriteVarint(uint64(e.Required))
}
func (e *PublicKeySecurityLevelNotMetError) consensusError() {}

// InvalidStateTransitionSignatureError 密码学签名验证失败
type InvalidStateTransitionSignatureError struct{}

func (e *InvalidStateTransitionSignatureError) Error() string {
	return "state transition signature verification failed"
}
func (e *InvalidStateTransitionSignatureError) Code() ConsensusErrorCode {
	return CodeInvalidStateTransitionSignature
}
func (e *InvalidStateTransitionSignatureError) EncodePayload(w *codec.Writer) {}
func (e *InvalidStateTransitionSignatureError) consensusError()               {}

// PublicKeyIsDisabledError 用已禁用的公钥签名
type PublicKeyIsDisabledError struct {
	KeyID KeyID
}

func (e *PublicKeyIsDisabledError) Error() string {
	return fmt.Sprintf("public key %d is disabled", e.KeyID)
}
func (e *PublicKeyIsDisabledError) Code() ConsensusErrorCode      { return CodePublicKeyIsDisabled }
func (e *PublicKeyIsDisabledError) EncodePayload(w *codec.Writer) { w.WriteVarint(uint64(e.KeyID)) }
func (e *PublicKeyIsDisabledError) consensusError()               {}

// IdentityAssetLockTransactionOutPointAlreadyConsumedError 资产锁定 outpoint 已被消费
type IdentityAssetLockTransactionOutPointAlreadyConsumedError struct {
	OutPoint []byte // 序列化的 outpoint（txid || index）
}

func (e *IdentityAssetLockTransactionOutPointAlreadyConsumedError) Error() string {
	return fmt.Sprintf("asset lock outpoint %x already consumed", e.OutPoint)
}
func (e *IdentityAssetLockTransactionOutPointAlreadyConsumedError) Code() ConsensusErrorCode {
	return CodeAssetLockOutPointAlreadyConsumed
}
func (e *IdentityAssetLockTransactionOutPointAlreadyConsumedError) EncodePayload(w *codec.Writer) {
	w.WriteBytes(e.OutPoint)
}
func (e *IdentityAssetLockTransactionOutPointAlreadyConsumedError) consensusError() {}

// IdentityAssetLockStateTransitionReplayError 资产锁定转换被重放
type IdentityAssetLockStateTransitionReplayError struct {
	TransitionID Identifier
}

func (e *IdentityAssetLockStateTransitionReplayError) Error() string {
	return fmt.Sprintf("asset lock state transition %s already processed", e.TransitionID)
}
func (e *IdentityAssetLockStateTransitionReplayError) Code() ConsensusErrorCode {
	return CodeAssetLockStateTransitionReplay
}
func (e *IdentityAssetLockStateTransitionReplayError) EncodePayload(w *codec.Writer) {
	w.WriteFixed(e.TransitionID[:])
}
func (e *IdentityAssetLockStateTransitionReplayError) consensusError() {}

// InvalidAssetLockProofError 资产锁定证明无法解析或验证
type InvalidAssetLockProofError struct {
	Reason string
}

func (e *InvalidAssetLockProofError) Error() string {
	return fmt.Sprintf("invalid asset lock proof: %s", e.Reason)
}
func (e *InvalidAssetLockProofError) Code() ConsensusErrorCode      { return CodeInvalidAssetLockProof }
func (e *InvalidAssetLockProofError) EncodePayload(w *codec.Writer) { w.WriteString(e.Reason) }
func (e *InvalidAssetLockProofError) consensusError()               {}
