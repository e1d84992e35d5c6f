package types

import "fmt"

// Credits 平台内部费用/余额单位
type Credits uint64

// MaxCredits 积分上限（约 9.2e18，一个 int64 可安全表示）
const MaxCredits Credits = 9_223_372_036_854_775_807

// TokenAmount 代币数量
type TokenAmount uint64

// TokenMaxAmount 单次代币操作允许的最大数量
const TokenMaxAmount TokenAmount = 9_223_372_036_854_775_807

// ==================== 受检算术 ====================
//
// 共识路径上的所有积分运算必须受检：溢出是硬错误而非回绕，
// 否则不同节点可能得出不同的费用结果导致分叉。

// CheckedAdd 受检加法
//
// 返回：
//   - Credits: 和
//   - error: 溢出时返回错误
func (c Credits) CheckedAdd(other Credits) (Credits, error) {
	sum := c + other
	if sum < c {
		return 0, fmt.Errorf("credits overflow: %d + %d", uint64(c), uint64(other))
	}
	return sum, nil
}

// CheckedSub 受检减法
func (c Credits) CheckedSub(other Credits) (Credits, error) {
	if other > c {
		return 0, fmt.Errorf("credits underflow: %d - %d", uint64(c), uint64(other))
	}
	return c - other, nil
}

// CheckedMul 受检乘法
func (c Credits) CheckedMul(factor uint64) (Credits, error) {
	if factor == 0 || c == 0 {
		return 0, nil
	}
	product := Credits(uint64(c) * factor)
	if uint64(product)/factor != uint64(c) {
		return 0, fmt.Errorf("credits overflow: %d * %d", uint64(c), factor)
	}
	return product, nil
}

// CheckedAdd 代币数量受检加法
func (a TokenAmount) CheckedAdd(other TokenAmount) (TokenAmount, error) {
	sum := a + other
	if sum < a {
		return 0, fmt.Errorf("token amount overflow: %d + %d", uint64(a), uint64(other))
	}
	return sum, nil
}

// CheckedSub 代币数量受检减法
func (a TokenAmount) CheckedSub(other TokenAmount) (TokenAmount, error) {
	if other > a {
		return 0, fmt.Errorf("token amount underflow: %d - %d", uint64(a), uint64(other))
	}
	return a - other, nil
}
