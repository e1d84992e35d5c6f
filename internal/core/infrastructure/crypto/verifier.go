// Package crypto 提供签名验证能力的具体实现
//
// 🎯 **设计原则**：
// - 使用secp256k1椭圆曲线（经 btcec 封装）
// - 双SHA256哈希（标准）
// - 验签只接受规范化（低S值）签名，拒绝可延展形式
package crypto

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcec_ecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/evoplatform/v1/pkg/interfaces/platform"
	"github.com/evoplatform/v1/pkg/types"
)

// 签名系统常量
const (
	// SignatureLength r+s 紧凑签名长度
	SignatureLength = 64
	// RecoverableSignatureLength v+r+s 可恢复签名长度
	RecoverableSignatureLength = 65
	// CompressedPubKeyLength 压缩公钥长度
	CompressedPubKeyLength = 33
	// Hash160Length HASH160 摘要长度
	Hash160Length = 20
)

// 错误定义
var (
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrInvalidSignatureSize  = errors.New("invalid signature length")
	ErrInvalidPublicKey      = errors.New("invalid public key")
	ErrHighSSignature        = errors.New("signature s value is not normalized")
	ErrUnsupportedKeyType    = errors.New("unsupported key type")
	ErrPublicKeyHashMismatch = errors.New("recovered public key hash mismatch")
)

// Verifier 基于 secp256k1 的签名验证器
type Verifier struct{}

var _ platform.SignatureVerifier = (*Verifier)(nil)

// NewVerifier 创建签名验证器
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifySignature 用给定公钥验证数据签名
//
// ⚠️ **核心约束**：
// - ECDSASecp256k1：64 字节 r||s 签名 + 33 字节压缩公钥
// - ECDSAHash160：65 字节可恢复签名，公钥字段存 HASH160 摘要，
//   验签时从签名恢复公钥并比对摘要
// - 数据统一先做双SHA256再验签
func (v *Verifier) VerifySignature(keyType types.KeyType, publicKey, data, signature []byte) error {
	hash := chainhash.DoubleHashB(data)

	switch keyType {
	case types.KeyTypeECDSASecp256k1:
		return verifyCompact(publicKey, hash, signature)
	case types.KeyTypeECDSAHash160:
		return verifyRecoverable(publicKey, hash, signature)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedKeyType, keyType)
	}
}

// PublicKeyHash160 计算压缩公钥的 HASH160
func (v *Verifier) PublicKeyHash160(publicKey []byte) ([]byte, error) {
	if len(publicKey) != CompressedPubKeyLength {
		return nil, ErrInvalidPublicKey
	}
	if _, err := btcec.ParsePubKey(publicKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return btcutil.Hash160(publicKey), nil
}

// verifyCompact 验证 64 字节 r||s 签名
func verifyCompact(publicKey, hash, signature []byte) error {
	if len(signature) != SignatureLength {
		return ErrInvalidSignatureSize
	}
	pub, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow {
		return ErrInvalidSignature
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow {
		return ErrInvalidSignature
	}
	// 拒绝高S值，消除签名延展性
	if s.IsOverHalfOrder() {
		return ErrHighSSignature
	}

	if !btcec_ecdsa.NewSignature(&r, &s).Verify(hash, pub) {
		return ErrInvalidSignature
	}
	return nil
}

// verifyRecoverable 验证 65 字节可恢复签名并比对 HASH160
func verifyRecoverable(keyHash, hash, signature []byte) error {
	if len(signature) != RecoverableSignatureLength {
		return ErrInvalidSignatureSize
	}
	if len(keyHash) != Hash160Length {
		return ErrInvalidPublicKey
	}
	pub, _, err := btcec_ecdsa.RecoverCompact(signature, hash)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !bytes.Equal(btcutil.Hash160(pub.SerializeCompressed()), keyHash) {
		return ErrPublicKeyHashMismatch
	}
	return nil
}
