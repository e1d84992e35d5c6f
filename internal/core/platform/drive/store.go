// Package drive 提供平台状态的读写合一存储实现
//
// 🎯 **核心职责**：
// - 实现 StateRepository 读路径：身份、合约、文档、代币、群组、议题
// - 实现 StateApplier 写路径：把通过校验的动作落到键值存储
// - 区块边界批处理：裁决到期的争用资源投票议题
//
// 💡 **设计理念**：
// 所有状态收敛到一个扁平键值空间，键带两字母前缀按领域分区。
// 读写逻辑只面向内部 store 抽象，内存后端用于测试与模拟，Badger
// 后端用于持久节点，两个后端共享同一套应用实现。
//
// ⚠️ **核心约束**：
// - 应用阶段假设动作已通过状态校验，发现不一致按协议级故障上抛
// - 同一区块内动作按序逐个应用，不并发
//
// 📞 **调用方**：处理器内核
package drive

// store 扁平键值存储抽象
//
// Get 未命中返回 (nil, nil)；Scan 按键字节序升序遍历指定前缀，
// 回调返回错误即终止。两个后端的遍历顺序必须一致，区块边界批处理
// 的确定性依赖这一点。
type store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Scan(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}
