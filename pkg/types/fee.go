package types

// FeeRefund 某个纪元应退还的存储费
type FeeRefund struct {
	Epoch  EpochIndex
	Amount Credits
}

// FeeResult 确定性费用计算结果
//
// 🎯 **功能**：存储费、处理费与历史纪元退款的聚合。所有聚合运算
// 使用带检查的算术，溢出上抛 FeeOverflowError，绝不回绕。
type FeeResult struct {
	StorageFee    Credits
	ProcessingFee Credits
	// Refunds 释放既有存储时按剩余纪元比例退还；按纪元升序
	Refunds []FeeRefund
}

// TotalBaseFee 存储费与处理费之和
func (f *FeeResult) TotalBaseFee() (Credits, error) {
	total, err := f.StorageFee.CheckedAdd(f.ProcessingFee)
	if err != nil {
		return 0, &FeeOverflowError{Operation: "total base fee"}
	}
	return total, nil
}

// TotalRefunds 退款总额
func (f *FeeResult) TotalRefunds() (Credits, error) {
	var total Credits
	var err error
	for _, refund := range f.Refunds {
		if total, err = total.CheckedAdd(refund.Amount); err != nil {
			return 0, &FeeOverflowError{Operation: "total refunds"}
		}
	}
	return total, nil
}

// RequiredBalance 余额检查所用的最低积分要求
//
// 退款不抵扣余额要求：提交者必须能全额支付基础费，退款在应用阶段
// 单独入账。
func (f *FeeResult) RequiredBalance() (Credits, error) {
	return f.TotalBaseFee()
}

// DeductedAmount 实际从余额扣除的净额（基础费减退款，下限为零）
func (f *FeeResult) DeductedAmount() (Credits, error) {
	base, err := f.TotalBaseFee()
	if err != nil {
		return 0, err
	}
	refunds, err := f.TotalRefunds()
	if err != nil {
		return 0, err
	}
	if refunds >= base {
		return 0, nil
	}
	return base - refunds, nil
}

// CheckedAdd 累加另一份费用结果（批内子转换逐项累加）
//
// 同纪元的退款桶累加合并，不产生重复桶；两侧按纪元升序的前提下
// 结果仍然升序。任一累加溢出时不动原值。
func (f *FeeResult) CheckedAdd(other *FeeResult) error {
	storage, err := f.StorageFee.CheckedAdd(other.StorageFee)
	if err != nil {
		return &FeeOverflowError{Operation: "storage fee accumulation"}
	}
	processing, err := f.ProcessingFee.CheckedAdd(other.ProcessingFee)
	if err != nil {
		return &FeeOverflowError{Operation: "processing fee accumulation"}
	}

	merged := make([]FeeRefund, 0, len(f.Refunds)+len(other.Refunds))
	i, j := 0, 0
	for i < len(f.Refunds) && j < len(other.Refunds) {
		switch {
		case f.Refunds[i].Epoch < other.Refunds[j].Epoch:
			merged = append(merged, f.Refunds[i])
			i++
		case f.Refunds[i].Epoch > other.Refunds[j].Epoch:
			merged = append(merged, other.Refunds[j])
			j++
		default:
			amount, err := f.Refunds[i].Amount.CheckedAdd(other.Refunds[j].Amount)
			if err != nil {
				return &FeeOverflowError{Operation: "refund accumulation"}
			}
			merged = append(merged, FeeRefund{Epoch: f.Refunds[i].Epoch, Amount: amount})
			i++
			j++
		}
	}
	merged = append(merged, f.Refunds[i:]...)
	merged = append(merged, other.Refunds[j:]...)

	f.StorageFee = storage
	f.ProcessingFee = processing
	f.Refunds = merged
	return nil
}
