// Package fees 提供状态转换的确定性费用计算
//
// 🎯 **核心职责**：
// - 按费用版本选择成本表，计算处理费与存储费
// - 释放既有存储时计算退款
// - 全程带检查算术，溢出上抛协议级错误
//
// ⚠️ **核心约束**：
// - 成本常量参与共识，一经发布不可原地修改；调整成本必须引入新的
//   费用版本并绑定到新的协议版本
// - 禁止浮点：倍率一律以千分数（permille）整数表达
package fees

import (
	"github.com/evoplatform/v1/pkg/types"
)

// CostTable 单个费用版本的成本常量
type CostTable struct {
	// BaseProcessing 各转换类别的基础处理费
	BaseProcessing map[types.TransitionKind]types.Credits
	// ProcessingPerByte 转换字节的处理费单价
	ProcessingPerByte types.Credits
	// StoragePerByte 新增存储字节的存储费单价
	StoragePerByte types.Credits
	// BatchedSubTransition 批内每个子转换的附加处理费
	BatchedSubTransition types.Credits
	// SignatureVerification 每次签名验证的处理费
	SignatureVerification types.Credits
	// StateQuery 每次状态查询的处理费
	StateQuery types.Credits
	// StorageRefundPermille 释放存储的退款比例（千分数）
	StorageRefundPermille uint64
	// EpochsPerEra 一个纪包含的纪元数；存储费按纪预付，退款按纪内
	// 剩余纪元摊还
	EpochsPerEra uint16
}

// costTablesByFeeVersion 费用版本 → 成本表
var costTablesByFeeVersion = map[uint16]*CostTable{
	1: {
		BaseProcessing: map[types.TransitionKind]types.Credits{
			types.KindIdentityCreate:           200000,
			types.KindIdentityTopUp:            120000,
			types.KindIdentityUpdate:           100000,
			types.KindIdentityCreditTransfer:   80000,
			types.KindIdentityCreditWithdrawal: 150000,
			types.KindDataContractCreate:       300000,
			types.KindDataContractUpdate:       250000,
			types.KindBatch:                    50000,
			types.KindMasternodeVote:           60000,
		},
		ProcessingPerByte:     12,
		StoragePerByte:        270,
		BatchedSubTransition:  40000,
		SignatureVerification: 30000,
		StateQuery:            5000,
		StorageRefundPermille: 800,
		EpochsPerEra:          40,
	},
}

// CostTableForVersion 按费用版本取成本表
func CostTableForVersion(feeVersion uint16) (*CostTable, bool) {
	table, ok := costTablesByFeeVersion[feeVersion]
	return table, ok
}
