package drive

import (
	"github.com/evoplatform/v1/pkg/codec"
	"github.com/evoplatform/v1/pkg/types"
)

// 键前缀：两字母加冒号，按领域分区扁平键空间
var (
	prefixIdentity      = []byte("id:") // id:<identity> → Identity
	prefixNonce         = []byte("nc:") // nc:<identity> → varint 全局 nonce
	prefixContractNonce = []byte("cn:") // cn:<identity><contract> → varint 合约 nonce
	prefixContract      = []byte("dc:") // dc:<contract> → DataContract
	prefixDocument      = []byte("dm:") // dm:<contract>|<type>|<doc> → Document
	prefixUniqueIndex   = []byte("ui:") // ui:<contract>|<type>|<index>|<values> → 文档 ID
	prefixAssetLock     = []byte("al:") // al:<outpoint> → 消费转换 ID
	prefixMasternode    = []byte("mn:") // mn:<proTxHash> → Masternode
	prefixTokenStatus   = []byte("ts:") // ts:<token> → TokenStatus
	prefixTokenBalance  = []byte("tb:") // tb:<token><identity> → varint 余额
	prefixTokenFrozen   = []byte("tf:") // tf:<token><identity> → 存在即冻结
	prefixGroupAction   = []byte("ga:") // ga:<action> → GroupAction
	prefixVotePoll      = []byte("vp:") // vp:<poll> → VotePollState
)

func keyIdentity(id types.Identifier) []byte {
	return append(append([]byte{}, prefixIdentity...), id[:]...)
}

func keyNonce(id types.Identifier) []byte {
	return append(append([]byte{}, prefixNonce...), id[:]...)
}

func keyContractNonce(identityID, contractID types.Identifier) []byte {
	key := append(append([]byte{}, prefixContractNonce...), identityID[:]...)
	return append(key, contractID[:]...)
}

func keyContract(id types.Identifier) []byte {
	return append(append([]byte{}, prefixContract...), id[:]...)
}

// keyDocument 文档键；类型名变长，用 codec 写入带长度前缀避免歧义
func keyDocument(contractID types.Identifier, documentType string, documentID types.Identifier) []byte {
	w := codec.NewWriter()
	w.WriteFixed(prefixDocument)
	w.WriteFixed(contractID[:])
	w.WriteString(documentType)
	w.WriteFixed(documentID[:])
	return w.Bytes()
}

// keyUniqueIndex 唯一索引键；取值按索引属性顺序规范编码
func keyUniqueIndex(contractID types.Identifier, documentType, indexName string, values []types.Value) []byte {
	w := codec.NewWriter()
	w.WriteFixed(prefixUniqueIndex)
	w.WriteFixed(contractID[:])
	w.WriteString(documentType)
	w.WriteString(indexName)
	w.WriteVarint(uint64(len(values)))
	for _, v := range values {
		v.Encode(w)
	}
	return w.Bytes()
}

func keyAssetLock(outPoint []byte) []byte {
	return append(append([]byte{}, prefixAssetLock...), outPoint...)
}

func keyMasternode(proTxHash types.Identifier) []byte {
	return append(append([]byte{}, prefixMasternode...), proTxHash[:]...)
}

func keyTokenStatus(tokenID types.Identifier) []byte {
	return append(append([]byte{}, prefixTokenStatus...), tokenID[:]...)
}

func keyTokenBalance(tokenID, identityID types.Identifier) []byte {
	key := append(append([]byte{}, prefixTokenBalance...), tokenID[:]...)
	return append(key, identityID[:]...)
}

func keyTokenFrozen(tokenID, identityID types.Identifier) []byte {
	key := append(append([]byte{}, prefixTokenFrozen...), tokenID[:]...)
	return append(key, identityID[:]...)
}

func keyGroupAction(actionID types.Identifier) []byte {
	return append(append([]byte{}, prefixGroupAction...), actionID[:]...)
}

func keyVotePoll(pollID types.Identifier) []byte {
	return append(append([]byte{}, prefixVotePoll...), pollID[:]...)
}

func encodeUint(v uint64) []byte {
	w := codec.NewWriter()
	w.WriteVarint(v)
	return w.Bytes()
}

func decodeUint(raw []byte) (uint64, error) {
	r := codec.NewReader(raw)
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return v, nil
}
