package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoplatform/v1/pkg/codec"
)

// 代表性错误变体，覆盖四个代码段与各种载荷形态
func sampleConsensusErrors(t *testing.T) []ConsensusError {
	t.Helper()
	id := randomID(t)
	return []ConsensusError{
		&UnsupportedProtocolVersionError{Received: 7, Min: 1, Max: 1},
		&StateTransitionDecodeError{Message: "short buffer"},
		&BatchTransitionsEmptyError{},
		&DuplicatedIdentityPublicKeyIDError{KeyID: 3},
		&IdentityNotFoundError{IdentityID: id},
		&MissingPublicKeyError{IdentityID: id, KeyID: 2},
		&InvalidStateTransitionSignatureError{},
		&IdentityAssetLockTransactionOutPointAlreadyConsumedError{OutPoint: []byte{0x01, 0x02}},
		&IdentityInsufficientBalanceError{IdentityID: id, Balance: 10, Required: 100},
		&InvalidIdentityNonceError{IdentityID: id, ExpectedNonce: 4, ReceivedNonce: 9},
		&DocumentNotFoundError{DocumentID: id},
		&DuplicateUniqueIndexError{DocumentID: id, IndexName: "message"},
		&FeeOverflowError{Operation: "processing byte fee"},
	}
}

// 错误代码及载荷必须无损通过序列化往返（拒绝证明依赖此性质）
func TestConsensusErrorRoundTrip(t *testing.T) {
	for _, original := range sampleConsensusErrors(t) {
		t.Run(original.Error(), func(t *testing.T) {
			data := SerializeConsensusError(original)
			decoded, err := DeserializeConsensusError(data)
			require.NoError(t, err)

			assert.Equal(t, original.Code(), decoded.Code())
			assert.Equal(t, original.Error(), decoded.Error())
			assert.Equal(t, data, SerializeConsensusError(decoded))
		})
	}
}

// 未注册的代码报错而不是 panic：对端可能来自更新版本的软件
func TestDeserializeConsensusErrorUnknownCode(t *testing.T) {
	data := codec.EncodeEnvelope(999_999, &StateTransitionDecodeError{Message: "x"})
	_, err := DeserializeConsensusError(data)
	assert.Error(t, err)
}

func TestDeserializeConsensusErrorTruncatedPayload(t *testing.T) {
	data := SerializeConsensusError(&StateTransitionDecodeError{Message: "truncate me"})
	_, err := DeserializeConsensusError(data[:len(data)-3])
	assert.Error(t, err)
}

// 代码段分配：1xxx 结构 / 2xxx 签名 / 3xxx 状态 / 4xxx 费用
func TestConsensusErrorCodeRanges(t *testing.T) {
	assert.Equal(t, ConsensusErrorCode(1003), (&StateTransitionDecodeError{}).Code())
	assert.Equal(t, ConsensusErrorCode(2001), (&IdentityNotFoundError{}).Code())
	assert.Equal(t, ConsensusErrorCode(3001), (&IdentityInsufficientBalanceError{}).Code())
	assert.Equal(t, ConsensusErrorCode(4001), (&FeeOverflowError{}).Code())
}
