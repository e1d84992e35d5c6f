// Package testutil 提供验证核心测试的辅助工具
//
// 🧪 **测试数据Fixtures**
//
// 本包提供密钥对、状态转换与合约的测试构造函数，用于简化测试代码编写。
package testutil

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	btcec_ecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/evoplatform/v1/pkg/types"
)

// Keypair 测试密钥对
type Keypair struct {
	Private *btcec.PrivateKey
	// Public 压缩公钥（33 字节）
	Public []byte
}

// GenerateKeypair 生成随机 secp256k1 密钥对
func GenerateKeypair(t *testing.T) *Keypair {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return &Keypair{
		Private: priv,
		Public:  priv.PubKey().SerializeCompressed(),
	}
}

// PublicKeyHash 返回压缩公钥的 HASH160
func (kp *Keypair) PublicKeyHash() []byte {
	return btcutil.Hash160(kp.Public)
}

// SignCompact 对数据做双SHA256后签出 64 字节 r||s 紧凑签名
//
// SignCompact 产出的签名保证低S值，与验证端的延展性检查一致。
func (kp *Keypair) SignCompact(data []byte) []byte {
	hash := chainhash.DoubleHashB(data)
	compact := btcec_ecdsa.SignCompact(kp.Private, hash, true) // header + r + s
	return compact[1:]
}

// SignRecoverable 签出 65 字节可恢复签名（HASH160 键类型用）
func (kp *Keypair) SignRecoverable(data []byte) []byte {
	hash := chainhash.DoubleHashB(data)
	return btcec_ecdsa.SignCompact(kp.Private, hash, true)
}

// SignTransition 用密钥对为转换补上紧凑签名
func SignTransition(st *types.StateTransition, kp *Keypair) *types.StateTransition {
	st.SetSignature(kp.SignCompact(st.SignableBytes()))
	return st
}
