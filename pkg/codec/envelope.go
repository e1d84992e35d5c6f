package codec

// PayloadEncoder 版本化载荷编码能力
type PayloadEncoder interface {
	// EncodePayload 将载荷以确定性格式写入 w
	EncodePayload(w *Writer)
}

// EncodeEnvelope 编码版本化信封：[版本 varint][长度 varint][载荷]
//
// 🎯 **功能**：所有版本化实体（身份、合约、文档、状态转换、共识错误）
// 统一通过本函数产生规范字节，版本标签在前保证旧节点可据此拒绝未知版本。
func EncodeEnvelope(version uint64, payload PayloadEncoder) []byte {
	inner := NewWriter()
	payload.EncodePayload(inner)

	outer := NewWriter()
	outer.WriteVarint(version)
	outer.WriteBytes(inner.Bytes())
	return outer.Bytes()
}

// DecodeEnvelope 解码版本化信封
//
// 返回：
//   - version: 信封携带的版本标签（由调用方判定是否已知）
//   - payload: 定位到载荷起始的读取器，载荷消费完毕后应调用 ExpectEOF
//   - error: 信封本身残缺时返回错误
func DecodeEnvelope(data []byte) (version uint64, payload *Reader, err error) {
	r := NewReader(data)
	version, err = r.ReadVarint()
	if err != nil {
		return 0, nil, err
	}
	body, err := r.ReadBytes()
	if err != nil {
		return 0, nil, err
	}
	if err := r.ExpectEOF(); err != nil {
		return 0, nil, err
	}
	return version, NewReader(body), nil
}
