// 文件说明：
// 内存状态库的搭建与预置：身份、合约、主节点的登记走正式的动作应用
// 路径，保证测试状态与生产写入的字节一致。
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evoplatform/v1/internal/core/infrastructure/log"
	"github.com/evoplatform/v1/internal/core/platform/drive"
	"github.com/evoplatform/v1/pkg/types"
)

// NewDrive 创建测试用内存状态库
func NewDrive(t *testing.T) *drive.Drive {
	t.Helper()
	d := drive.NewInMemory(log.NewNop())
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// SeedIdentity 登记一个带主级别认证公钥（KeyID 0）的已出资身份
func SeedIdentity(t *testing.T, d *drive.Drive, kp *Keypair, balance types.Credits) types.Identifier {
	t.Helper()
	id := RandomIdentifier()
	SeedIdentityWithKeys(t, d, id, balance, AuthenticationKey(0, kp))
	return id
}

// SeedIdentityWithKeys 登记指定标识符与公钥集的身份
func SeedIdentityWithKeys(t *testing.T, d *drive.Drive, id types.Identifier, balance types.Credits, keys ...*types.IdentityPublicKey) {
	t.Helper()
	err := d.ApplyAction(context.Background(), &types.IdentityCreateAction{
		IdentityID:     id,
		PublicKeys:     keys,
		InitialBalance: balance,
	}, TestBlockInfo())
	require.NoError(t, err)
}

// SeedContract 登记数据合约（不影响所有者的序列号）
func SeedContract(t *testing.T, d *drive.Drive, contract *types.DataContract) {
	t.Helper()
	err := d.ApplyAction(context.Background(), &types.DataContractCreateAction{
		Contract: contract,
		Nonce:    0,
	}, TestBlockInfo())
	require.NoError(t, err)
}

// SeedMasternode 登记主节点与其投票身份的对应关系
func SeedMasternode(t *testing.T, d *drive.Drive, proTxHash, votingIdentityID types.Identifier) {
	t.Helper()
	err := d.SeedMasternode(context.Background(), &types.Masternode{
		ProTxHash:        proTxHash,
		VotingIdentityID: votingIdentityID,
	})
	require.NoError(t, err)
}
