package platform

import (
	"github.com/evoplatform/v1/pkg/types"
)

// SignatureVerifier 签名验证能力
//
// 💡 **设计理念**：密码学细节（曲线、哈希、编码）收敛到实现包，
// 签名校验器只面向键类型分派。
type SignatureVerifier interface {
	// VerifySignature 用给定公钥验证数据签名；失败返回描述性错误，
	// 调用方负责翻译为共识错误
	VerifySignature(keyType types.KeyType, publicKey, data, signature []byte) error

	// PublicKeyHash160 计算压缩公钥的 HASH160（资产锁定出资键绑定）
	PublicKeyHash160(publicKey []byte) ([]byte, error)
}
