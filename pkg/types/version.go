package types

// FormatVersion 实体序列化格式版本标签
//
// 版本化信封模式的版本号：实体结构演进时新增 FormatV1、FormatV2…，
// 旧标签的解码路径永远保留（历史区块必须永远按原语义重放）。
type FormatVersion uint16

const (
	// FormatV0 初始格式
	FormatV0 FormatVersion = 0
)

// ProtocolVersion 协议版本号
//
// 客户端在状态转换中声明，节点据此选择各子操作的算法变体。
type ProtocolVersion uint32

// ProtocolVersion1 首个协议版本
const ProtocolVersion1 ProtocolVersion = 1

// MinSupportedProtocolVersion 本节点接受的最低协议版本
const MinSupportedProtocolVersion ProtocolVersion = 1

// LatestProtocolVersion 本节点实现的最新协议版本
const LatestProtocolVersion ProtocolVersion = 1

// PlatformVersion 平台版本描述符
//
// 🎯 **核心职责**：
// 将"当前协议版本"从隐式全局状态改为显式参数：每个验证/转换/计费函数
// 都接收本描述符，据其中的方法版本号选择算法变体（见 dispatch 注册表）。
//
// 💡 **设计理念**：
// 显式传递使版本分派可测试——测试可以构造任意版本组合，而无需修改全局量。
type PlatformVersion struct {
	ProtocolVersion ProtocolVersion // 协议版本号
	FeeVersion      uint16          // 费用成本表版本
	Methods         MethodVersions  // 各子操作的算法版本
}

// MethodVersions 各子操作的算法版本号
//
// 每个字段对应 dispatch 注册表中的一个操作名。
type MethodVersions struct {
	ValidateStructure uint16 // 结构校验
	ValidateSignature uint16 // 签名校验
	ValidateState     uint16 // 状态校验
	TransformToAction uint16 // 动作转换
	CalculateFee      uint16 // 费用计算
}

// platformVersions 协议版本 → 平台版本描述符静态表
var platformVersions = map[ProtocolVersion]*PlatformVersion{
	ProtocolVersion1: {
		ProtocolVersion: ProtocolVersion1,
		FeeVersion:      1,
		Methods: MethodVersions{
			ValidateStructure: 0,
			ValidateSignature: 0,
			ValidateState:     0,
			TransformToAction: 0,
			CalculateFee:      0,
		},
	},
}

// PlatformVersionFor 查询协议版本对应的平台版本描述符
//
// 返回：
//   - *PlatformVersion: 描述符（静态表项，调用方不得修改）
//   - bool: 协议版本是否已知
func PlatformVersionFor(protocol ProtocolVersion) (*PlatformVersion, bool) {
	v, ok := platformVersions[protocol]
	return v, ok
}
