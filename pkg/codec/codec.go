// Package codec 提供共识规范二进制编码
//
// 🎯 **核心职责**：
// - 版本化信封编码：[版本 varint][长度 varint][载荷]
// - 确定性写入器/读取器（varint、定长、字节串、有序映射）
//
// ⚠️ **核心约束**：
// 本编码是共识格式：相同输入在任何节点上必须产生逐字节相同的输出。
// 因此禁止任何非确定性来源（map 迭代顺序、浮点、时钟），映射键必须
// 由调用方排序后写入。历史数据必须永远可读（版本标签只增不改）。
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrShortBuffer 载荷在期望的字段结束前耗尽
	ErrShortBuffer = errors.New("codec: short buffer")
	// ErrTrailingBytes 载荷解码完成后仍有剩余字节
	ErrTrailingBytes = errors.New("codec: trailing bytes after payload")
	// ErrLengthOverflow 声明的长度超出剩余数据
	ErrLengthOverflow = errors.New("codec: declared length exceeds remaining data")
)

// maxPrealloc 单次预分配上限，防止恶意长度前缀导致内存放大
const maxPrealloc = 1 << 20

// ==================== Writer ====================

// Writer 确定性二进制写入器
//
// 写入内存缓冲，方法不返回错误（内存写入不会失败）。
type Writer struct {
	buf []byte
}

// NewWriter 创建写入器
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// WriteVarint 写入无符号 varint
func (w *Writer) WriteVarint(v uint64) {
	w.buf = binary.AppendUvarint(w.buf, v)
}

// WriteBool 写入布尔值（单字节 0/1）
func (w *Writer) WriteBool(b bool) {
	if b {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteBytes 写入带长度前缀的字节串
func (w *Writer) WriteBytes(b []byte) {
	w.WriteVarint(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteString 写入带长度前缀的字符串
func (w *Writer) WriteString(s string) {
	w.WriteVarint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteFixed 写入定长字节（无长度前缀，长度由类型约定）
func (w *Writer) WriteFixed(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteInt 写入有符号整数（zigzag varint）
func (w *Writer) WriteInt(v int64) {
	w.buf = binary.AppendVarint(w.buf, v)
}

// Bytes 返回已写入的字节
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len 返回已写入的字节数
func (w *Writer) Len() int {
	return len(w.buf)
}

// ==================== Reader ====================

// Reader 二进制读取器
//
// 所有读取方法在数据不足时返回 ErrShortBuffer，不会 panic。
type Reader struct {
	data []byte
	off  int
}

// NewReader 创建读取器
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadVarint 读取无符号 varint
func (r *Reader) ReadVarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		return 0, ErrShortBuffer
	}
	r.off += n
	return v, nil
}

// ReadBool 读取布尔值
func (r *Reader) ReadBool() (bool, error) {
	if r.off >= len(r.data) {
		return false, ErrShortBuffer
	}
	b := r.data[r.off]
	r.off++
	if b > 1 {
		return false, fmt.Errorf("codec: invalid bool byte %d", b)
	}
	return b == 1, nil
}

// ReadBytes 读取带长度前缀的字节串
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(r.data)-r.off) {
		return nil, ErrLengthOverflow
	}
	cap := n
	if cap > maxPrealloc {
		cap = maxPrealloc
	}
	out := make([]byte, 0, cap)
	out = append(out, r.data[r.off:r.off+int(n)]...)
	r.off += int(n)
	return out, nil
}

// ReadString 读取带长度前缀的字符串
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadFixed 读取 n 个定长字节
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	if n > len(r.data)-r.off {
		return nil, ErrShortBuffer
	}
	out := r.data[r.off : r.off+n]
	r.off += n
	return out, nil
}

// ReadInt 读取有符号整数（zigzag varint）
func (r *Reader) ReadInt() (int64, error) {
	v, n := binary.Varint(r.data[r.off:])
	if n <= 0 {
		return 0, ErrShortBuffer
	}
	r.off += n
	return v, nil
}

// Remaining 返回未读字节数
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// ExpectEOF 校验载荷已完整消费
func (r *Reader) ExpectEOF() error {
	if r.Remaining() != 0 {
		return ErrTrailingBytes
	}
	return nil
}
