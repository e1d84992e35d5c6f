package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoplatform/v1/pkg/codec"
)

func encodeValue(v Value) []byte {
	w := codec.NewWriter()
	v.Encode(w)
	return w.Bytes()
}

func TestValueRoundTrip(t *testing.T) {
	cases := map[string]Value{
		"null":   NullValue(),
		"bool":   BoolValue(true),
		"int":    IntValue(-42),
		"uint":   UintValue(1 << 40),
		"string": StringValue("alice"),
		"bytes":  BytesValue([]byte{0x01, 0x02, 0x03}),
		"array":  ArrayValue(IntValue(1), StringValue("two"), BoolValue(false)),
		"map": MapValue(map[string]Value{
			"name": StringValue("alice"),
			"age":  UintValue(30),
			"tags": ArrayValue(StringValue("a"), StringValue("b")),
		}),
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			data := encodeValue(v)
			decoded, err := DecodeValue(codec.NewReader(data))
			require.NoError(t, err)
			assert.True(t, v.Equal(decoded), "decoded value differs")
			assert.Equal(t, data, encodeValue(decoded))
		})
	}
}

// 映射编码与插入顺序无关：键排序后写入
func TestValueMapEncodingDeterministic(t *testing.T) {
	a := MapValue(map[string]Value{
		"alpha": UintValue(1),
		"beta":  UintValue(2),
		"gamma": UintValue(3),
	})
	b := MapValue(map[string]Value{
		"gamma": UintValue(3),
		"alpha": UintValue(1),
		"beta":  UintValue(2),
	})
	assert.Equal(t, encodeValue(a), encodeValue(b))
}

func TestValueEqual(t *testing.T) {
	assert.True(t, StringValue("x").Equal(StringValue("x")))
	assert.False(t, StringValue("x").Equal(StringValue("y")))
	assert.False(t, StringValue("1").Equal(UintValue(1)))
	assert.True(t, ArrayValue(IntValue(1)).Equal(ArrayValue(IntValue(1))))
	assert.False(t, ArrayValue(IntValue(1)).Equal(ArrayValue(IntValue(1), IntValue(2))))
}

func TestValueToInterface(t *testing.T) {
	v := MapValue(map[string]Value{
		"name":   StringValue("alice"),
		"active": BoolValue(true),
	})
	out, ok := v.ToInterface().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice", out["name"])
	assert.Equal(t, true, out["active"])
}
