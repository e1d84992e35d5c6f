// 文件说明：
// 测试数据的创建函数：标识符、区块上下文、身份公钥、资产锁定证明
// 与数据合约fixture。
package testutil

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/evoplatform/v1/pkg/types"
)

// ==================== 基础 Fixtures ====================

// RandomBytes 生成随机字节数组
func RandomBytes(size int) []byte {
	b := make([]byte, size)
	rand.Read(b)
	return b
}

// RandomIdentifier 生成随机标识符（32 字节）
func RandomIdentifier() types.Identifier {
	var id types.Identifier
	rand.Read(id[:])
	return id
}

// TestBlockInfo 创建测试用的区块执行上下文
//
// 费用乘数取 1000（1.0 倍），保证费用断言不受纪元影响。
func TestBlockInfo() *types.BlockInfo {
	return &types.BlockInfo{
		TimeMillis: 1_700_000_000_000,
		Height:     100,
		CoreHeight: 2000,
		Epoch:      types.Epoch{Index: 1, FeeMultiplier: 1000},
	}
}

// ==================== 身份公钥 Fixtures ====================

// AuthenticationKey 创建主级别认证公钥
func AuthenticationKey(id types.KeyID, kp *Keypair) *types.IdentityPublicKey {
	return KeyWithRole(id, kp, types.KeyPurposeAuthentication, types.KeySecurityLevelMaster)
}

// KeyWithRole 创建指定用途与安全级别的 secp256k1 公钥
func KeyWithRole(id types.KeyID, kp *Keypair, purpose types.KeyPurpose, level types.KeySecurityLevel) *types.IdentityPublicKey {
	return types.NewIdentityPublicKeyV0(&types.IdentityPublicKeyV0{
		ID:            id,
		Type:          types.KeyTypeECDSASecp256k1,
		Purpose:       purpose,
		SecurityLevel: level,
		Data:          kp.Public,
	})
}

// ==================== 资产锁定 Fixtures ====================

// AssetLockFixture 构造一笔合法的资产锁定证明
//
// 锁定输出脚本为 OP_RETURN <出资公钥 HASH160>，面额以基础链最小
// 面额计。每次调用的交易输入都带随机 outpoint，保证证明互不重复。
func AssetLockFixture(t *testing.T, kp *Keypair, lockedDuffs int64) *types.AssetLockProof {
	t.Helper()

	tx := wire.NewMsgTx(2)
	var prevTxID [32]byte
	rand.Read(prevTxID[:])
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: prevTxID, Index: 0}, nil, nil))

	script := append([]byte{0x6a, 0x14}, kp.PublicKeyHash()...)
	tx.AddTxOut(wire.NewTxOut(lockedDuffs, script))

	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))

	return &types.AssetLockProof{
		Transaction:      buf.Bytes(),
		OutputIndex:      0,
		InstantLockSig:   RandomBytes(96),
		FundingPublicKey: kp.Public,
	}
}

// ==================== 合约 Fixtures ====================

// stringSchema 构造单字符串属性的文档 schema
func stringSchema(field string) types.Value {
	return types.MapValue(map[string]types.Value{
		"type": types.StringValue("object"),
		"properties": types.MapValue(map[string]types.Value{
			field: types.MapValue(map[string]types.Value{
				"type": types.StringValue("string"),
			}),
		}),
		"required":             types.ArrayValue(types.StringValue(field)),
		"additionalProperties": types.BoolValue(false),
	})
}

// NoteContract 创建可变文档合约："note" 类型，message 属性上有
// 非争用唯一索引
func NoteContract(owner types.Identifier) *types.DataContract {
	return types.NewDataContractV0(&types.DataContractV0{
		ID:      RandomIdentifier(),
		OwnerID: owner,
		DocumentTypes: map[string]*types.DocumentType{
			"note": {
				Name:   "note",
				Schema: stringSchema("message"),
				Indices: []*types.Index{
					{
						Name:       "message",
						Properties: []types.IndexProperty{{Field: "message", Ascending: true}},
						Unique:     true,
					},
				},
				DocumentsMutable: true,
			},
		},
	})
}

// NameContract 创建不可变文档合约："name" 类型，label 属性上有
// 争用唯一索引，创建需经主节点投票裁决
func NameContract(owner types.Identifier) *types.DataContract {
	return types.NewDataContractV0(&types.DataContractV0{
		ID:      RandomIdentifier(),
		OwnerID: owner,
		DocumentTypes: map[string]*types.DocumentType{
			"name": {
				Name:   "name",
				Schema: stringSchema("label"),
				Indices: []*types.Index{
					{
						Name:       "label",
						Properties: []types.IndexProperty{{Field: "label", Ascending: true}},
						Unique:     true,
						Contested:  &types.ContestedIndexConfig{ResolutionCost: 10_000},
					},
				},
				DocumentsMutable: false,
			},
		},
	})
}

// DefaultTokenConfig 创建所有者全权的代币配置
func DefaultTokenConfig() *types.TokenConfiguration {
	ownerOnly := types.AuthorizedActionTakers{Kind: types.AuthorizedContractOwner}
	return &types.TokenConfiguration{
		BaseSupply:              1_000_000,
		MintingRules:            ownerOnly,
		BurningRules:            ownerOnly,
		FreezeRules:             ownerOnly,
		UnfreezeRules:           ownerOnly,
		DestroyFrozenFundsRules: ownerOnly,
		EmergencyActionRules:    ownerOnly,
		ConfigUpdateRules:       ownerOnly,
	}
}

// TokenContract 创建单代币合约；config 为 nil 时使用默认配置
func TokenContract(owner types.Identifier, config *types.TokenConfiguration) *types.DataContract {
	if config == nil {
		config = DefaultTokenConfig()
	}
	return types.NewDataContractV0(&types.DataContractV0{
		ID:      RandomIdentifier(),
		OwnerID: owner,
		Tokens: map[types.TokenContractPosition]*types.TokenConfiguration{
			0: config,
		},
	})
}
