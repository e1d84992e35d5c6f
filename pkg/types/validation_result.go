package types

// SimpleValidationResult 无数据载荷的校验结果
//
// 🎯 **功能**：结构校验阶段的结果容器
//
// 💡 **设计理念**：
// 拒绝以"累积"而非"抛出"的方式返回：结构阶段要把发现的所有错误
// 一次性报告给客户端，而不是只报第一个。签名/状态阶段语义上依赖
// 前序检查，才采用首错短路。
type SimpleValidationResult struct {
	errors []ConsensusError
}

// NewSimpleValidationResult 创建空结果（视为通过）
func NewSimpleValidationResult() *SimpleValidationResult {
	return &SimpleValidationResult{}
}

// AddError 追加一个共识错误
func (r *SimpleValidationResult) AddError(e ConsensusError) {
	r.errors = append(r.errors, e)
}

// Merge 并入另一个结果的全部错误
func (r *SimpleValidationResult) Merge(other *SimpleValidationResult) {
	r.errors = append(r.errors, other.errors...)
}

// IsValid 无任何错误时为真
func (r *SimpleValidationResult) IsValid() bool {
	return len(r.errors) == 0
}

// Errors 返回累积的错误（按发现顺序）
func (r *SimpleValidationResult) Errors() []ConsensusError {
	return r.errors
}

// FirstError 返回第一个错误，无错误时返回 nil
func (r *SimpleValidationResult) FirstError() ConsensusError {
	if len(r.errors) == 0 {
		return nil
	}
	return r.errors[0]
}

// ConsensusValidationResult 携带数据载荷的校验结果
//
// 要么携带校验产物（如动作），要么携带一个或多个共识错误；两者互斥。
type ConsensusValidationResult[T any] struct {
	data   T
	hasData bool
	errors []ConsensusError
}

// NewConsensusValidationResult 创建携带数据的通过结果
func NewConsensusValidationResult[T any](data T) *ConsensusValidationResult[T] {
	return &ConsensusValidationResult[T]{data: data, hasData: true}
}

// NewConsensusValidationError 创建拒绝结果
func NewConsensusValidationError[T any](errs ...ConsensusError) *ConsensusValidationResult[T] {
	return &ConsensusValidationResult[T]{errors: errs}
}

// IsValid 无任何错误时为真
func (r *ConsensusValidationResult[T]) IsValid() bool {
	return len(r.errors) == 0
}

// Data 返回校验产物
//
// 仅在 IsValid 为真时有意义；拒绝结果返回零值。
func (r *ConsensusValidationResult[T]) Data() T {
	return r.data
}

// Errors 返回拒绝原因
func (r *ConsensusValidationResult[T]) Errors() []ConsensusError {
	return r.errors
}

// FirstError 返回第一个错误，无错误时返回 nil
func (r *ConsensusValidationResult[T]) FirstError() ConsensusError {
	if len(r.errors) == 0 {
		return nil
	}
	return r.errors[0]
}
