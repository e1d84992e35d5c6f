package types

// EpochIndex 费用纪元序号
type EpochIndex uint16

// Epoch 费用纪元
//
// 驱动费用乘数查询与永续分配的间隔计算。
type Epoch struct {
	Index         EpochIndex
	FeeMultiplier uint64 // 千分比乘数（1000 = 1.0）
}

// BlockInfo 当前区块执行上下文
//
// ⚠️ **核心约束**：Height 与 TimeMillis 逐块严格递增；
// Epoch.Index 在纪元边界条件跨越时递增。
type BlockInfo struct {
	TimeMillis uint64
	Height     uint64
	CoreHeight uint32 // 基础链高度
	Epoch      Epoch
}

// GenesisBlockInfo 创世区块上下文（测试与初始化用）
func GenesisBlockInfo() BlockInfo {
	return BlockInfo{
		TimeMillis: 0,
		Height:     1,
		CoreHeight: 1,
		Epoch:      Epoch{Index: 0, FeeMultiplier: 1000},
	}
}
