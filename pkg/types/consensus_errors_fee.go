package types

import (
	"fmt"

	"github.com/evoplatform/v1/pkg/codec"
)

// 费用错误代码（40xx）
const (
	CodeFeeOverflow ConsensusErrorCode = 4001
)

func init() {
	registerConsensusError(CodeFeeOverflow, func(r *codec.Reader) (ConsensusError, error) {
		op, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return &FeeOverflowError{Operation: op}, nil
	})
}

// FeeOverflowError 费用累加算术溢出
//
// ⚠️ 属于内部一致性故障：合法输入不应触发。上层按节点缺陷处理
// （中止整块处理并高声记录），而非普通拒绝。
type FeeOverflowError struct {
	Operation string // 溢出发生处的运算描述
}

func (e *FeeOverflowError) Error() string {
	return fmt.Sprintf("fee arithmetic overflow in %s", e.Operation)
}
func (e *FeeOverflowError) Code() ConsensusErrorCode      { return CodeFeeOverflow }
func (e *FeeOverflowError) EncodePayload(w *codec.Writer) { w.WriteString(e.Operation) }
func (e *FeeOverflowError) consensusError()               {}
