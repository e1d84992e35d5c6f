package types

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoplatform/v1/pkg/codec"
)

func randomID(t *testing.T) Identifier {
	t.Helper()
	var id Identifier
	_, err := rand.Read(id[:])
	require.NoError(t, err)
	return id
}

func testKey(id KeyID) *IdentityPublicKey {
	data := make([]byte, 33)
	data[0] = 0x02
	rand.Read(data[1:])
	return NewIdentityPublicKeyV0(&IdentityPublicKeyV0{
		ID:            id,
		Type:          KeyTypeECDSASecp256k1,
		Purpose:       KeyPurposeAuthentication,
		SecurityLevel: KeySecurityLevelMaster,
		Data:          data,
	})
}

func testAssetLock() *AssetLockProof {
	return &AssetLockProof{
		Transaction:      []byte{0x01, 0x02, 0x03, 0x04},
		OutputIndex:      1,
		InstantLockSig:   []byte{0xaa, 0xbb},
		FundingPublicKey: make([]byte, 33),
	}
}

func testContract(t *testing.T, owner Identifier) *DataContract {
	return NewDataContractV0(&DataContractV0{
		ID:      randomID(t),
		OwnerID: owner,
		DocumentTypes: map[string]*DocumentType{
			"profile": {
				Name:   "profile",
				Schema: MapValue(map[string]Value{"type": StringValue("object")}),
				Indices: []*Index{
					{
						Name:       "name",
						Properties: []IndexProperty{{Field: "name", Ascending: true}},
						Unique:     true,
					},
				},
				DocumentsMutable: true,
			},
		},
	})
}

// 各类别的代表性转换，覆盖全部线格式分支
func sampleTransitions(t *testing.T) map[string]*StateTransition {
	t.Helper()
	owner := randomID(t)
	recipient := randomID(t)
	contract := testContract(t, owner)

	return map[string]*StateTransition{
		"identityCreate": {
			ProtocolVersion: ProtocolVersion1,
			Kind:            KindIdentityCreate,
			IdentityCreate: &IdentityCreateTransition{
				Version: FormatV0,
				V0: &IdentityCreateTransitionV0{
					AssetLock:       testAssetLock(),
					PublicKeys:      []*IdentityPublicKey{testKey(0), testKey(1)},
					UserFeeIncrease: 0,
					Signature:       []byte{0x01},
				},
			},
		},
		"identityTopUp": {
			ProtocolVersion: ProtocolVersion1,
			Kind:            KindIdentityTopUp,
			IdentityTopUp: &IdentityTopUpTransition{
				Version: FormatV0,
				V0: &IdentityTopUpTransitionV0{
					AssetLock:  testAssetLock(),
					IdentityID: owner,
					Signature:  []byte{0x02},
				},
			},
		},
		"identityUpdate": {
			ProtocolVersion: ProtocolVersion1,
			Kind:            KindIdentityUpdate,
			IdentityUpdate: &IdentityUpdateTransition{
				Version: FormatV0,
				V0: &IdentityUpdateTransitionV0{
					IdentityID:        owner,
					Revision:          2,
					Nonce:             5,
					AddPublicKeys:     []*IdentityPublicKey{testKey(3)},
					DisablePublicKeys: []KeyID{1},
					Signature:         []byte{0x03},
				},
			},
		},
		"creditTransfer": {
			ProtocolVersion: ProtocolVersion1,
			Kind:            KindIdentityCreditTransfer,
			IdentityCreditTransfer: &IdentityCreditTransferTransition{
				Version: FormatV0,
				V0: &IdentityCreditTransferTransitionV0{
					IdentityID:      owner,
					RecipientID:     recipient,
					Amount:          50_000,
					Nonce:           1,
					UserFeeIncrease: 10,
					Signature:       []byte{0x04},
				},
			},
		},
		"creditWithdrawal": {
			ProtocolVersion: ProtocolVersion1,
			Kind:            KindIdentityCreditWithdrawal,
			IdentityCreditWithdrawal: &IdentityCreditWithdrawalTransition{
				Version: FormatV0,
				V0: &IdentityCreditWithdrawalTransitionV0{
					IdentityID:     owner,
					Amount:         10_000,
					CoreFeePerByte: 3,
					OutputScript:   []byte{0x76, 0xa9},
					Nonce:          2,
					Signature:      []byte{0x05},
				},
			},
		},
		"contractCreate": {
			ProtocolVersion: ProtocolVersion1,
			Kind:            KindDataContractCreate,
			DataContractCreate: &DataContractCreateTransition{
				Version: FormatV0,
				V0: &DataContractCreateTransitionV0{
					Contract:      contract,
					IdentityNonce: 3,
					Signature:     []byte{0x06},
				},
			},
		},
		"contractUpdate": {
			ProtocolVersion: ProtocolVersion1,
			Kind:            KindDataContractUpdate,
			DataContractUpdate: &DataContractUpdateTransition{
				Version: FormatV0,
				V0: &DataContractUpdateTransitionV0{
					Contract:              contract,
					IdentityContractNonce: 1,
					Signature:             []byte{0x07},
				},
			},
		},
		"batch": {
			ProtocolVersion: ProtocolVersion1,
			Kind:            KindBatch,
			Batch: &BatchTransition{
				Version: FormatV0,
				V0: &BatchTransitionV0{
					OwnerID: owner,
					Transitions: []*BatchedTransition{
						{
							Document: &DocumentTransition{
								Kind: DocumentTransitionCreate,
								Base: DocumentBaseTransition{
									ID:                    randomID(t),
									DocumentTypeName:      "profile",
									DataContractID:        contract.ID(),
									IdentityContractNonce: 1,
								},
								Create: &DocumentCreatePayload{
									Entropy:    [32]byte{0x11},
									Properties: map[string]Value{"name": StringValue("alice")},
								},
							},
						},
						{
							Token: &TokenTransition{
								Kind: TokenTransitionMint,
								Base: TokenBaseTransition{
									DataContractID:        contract.ID(),
									TokenContractPosition: 0,
									IdentityContractNonce: 2,
								},
								Mint: &TokenMintPayload{
									Amount:    500,
									Recipient: &recipient,
									Note:      "issuance",
								},
							},
						},
					},
					SignaturePublicKeyID: 2,
					Signature:            []byte{0x08},
				},
			},
		},
		"masternodeVote": {
			ProtocolVersion: ProtocolVersion1,
			Kind:            KindMasternodeVote,
			MasternodeVote: &MasternodeVoteTransition{
				Version: FormatV0,
				V0: &MasternodeVoteTransitionV0{
					ProTxHash:       randomID(t),
					VoterIdentityID: owner,
					Poll: ContestedResourceVotePoll{
						ContractID:    contract.ID(),
						DocumentType:  "profile",
						IndexName:     "name",
						IndexValues:   []Value{StringValue("alice")},
						EndTimeMillis: 9_000_000,
					},
					Choice: VoteChoice{
						Kind:            VoteChoiceTowardsIdentity,
						TowardsIdentity: recipient,
					},
					Nonce:     7,
					Signature: []byte{0x09},
				},
			},
		},
	}
}

// 每个类别的规范字节必须往返无损：解码再编码得到逐字节相同的结果
func TestStateTransitionRoundTrip(t *testing.T) {
	for name, st := range sampleTransitions(t) {
		t.Run(name, func(t *testing.T) {
			data := st.Serialize()
			decoded, err := DeserializeStateTransition(data)
			require.NoError(t, err)

			assert.Equal(t, st.Kind, decoded.Kind)
			assert.Equal(t, st.ProtocolVersion, decoded.ProtocolVersion)
			assert.Equal(t, st.OwnerID(), decoded.OwnerID())
			assert.Equal(t, data, decoded.Serialize())
		})
	}
}

func TestStateTransitionTransitionID(t *testing.T) {
	transitions := sampleTransitions(t)
	transfer := transitions["creditTransfer"]

	// 相同内容的标识符稳定
	assert.Equal(t, transfer.TransitionID(), transfer.TransitionID())

	// 内容变化后标识符变化
	transfer.IdentityCreditTransfer.V0.Amount++
	changed := transfer.TransitionID()
	transfer.IdentityCreditTransfer.V0.Amount--
	assert.NotEqual(t, transfer.TransitionID(), changed)
}

// 签名覆盖的字节必须排除签名字段本身
func TestStateTransitionSignableBytes(t *testing.T) {
	transfer := sampleTransitions(t)["creditTransfer"]

	before := transfer.SignableBytes()
	transfer.SetSignature([]byte("another signature entirely"))
	after := transfer.SignableBytes()

	assert.Equal(t, before, after)
	assert.NotEqual(t, transfer.Serialize(), after)
}

func TestDeserializeStateTransitionRejectsGarbage(t *testing.T) {
	cases := map[string][]byte{
		"empty":     {},
		"truncated": {0x01},
		"unknownKind": func() []byte {
			w := codec.NewWriter()
			w.WriteVarint(uint64(ProtocolVersion1))
			w.WriteVarint(99)
			w.WriteBytes([]byte{})
			return w.Bytes()
		}(),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DeserializeStateTransition(data)
			assert.Error(t, err)
		})
	}
}

// 载荷信封的未知格式版本必须被守卫拒绝，而不是按 V0 强行解释
func TestDeserializeStateTransitionRejectsUnknownFormatVersion(t *testing.T) {
	transfer := sampleTransitions(t)["creditTransfer"]
	payload := codec.EncodeEnvelope(99, transfer.IdentityCreditTransfer.V0)

	w := codec.NewWriter()
	w.WriteVarint(uint64(ProtocolVersion1))
	w.WriteVarint(uint64(KindIdentityCreditTransfer))
	w.WriteBytes(payload)

	_, err := DeserializeStateTransition(w.Bytes())
	require.Error(t, err)

	var mismatch *UnknownVersionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, uint64(99), mismatch.Received)
}

// 尾随字节意味着载荷被篡改或编码器不一致，必须拒绝
func TestDeserializeStateTransitionRejectsTrailingBytes(t *testing.T) {
	transfer := sampleTransitions(t)["creditTransfer"]
	data := append(transfer.Serialize(), 0x00)

	_, err := DeserializeStateTransition(data)
	assert.Error(t, err)
}

func TestDeriveDocumentID(t *testing.T) {
	contractID := randomID(t)
	owner := randomID(t)
	entropy := [32]byte{0x42}

	id1 := DeriveDocumentID(contractID, "profile", owner, entropy)
	id2 := DeriveDocumentID(contractID, "profile", owner, entropy)
	assert.Equal(t, id1, id2)

	other := DeriveDocumentID(contractID, "note", owner, entropy)
	assert.NotEqual(t, id1, other)
}

func TestIdentityCreateTransitionIdentityID(t *testing.T) {
	create := sampleTransitions(t)["identityCreate"]

	derived := create.IdentityCreate.IdentityID()
	assert.Equal(t, HashIdentifier(create.IdentityCreate.V0.AssetLock.OutPoint()), derived)
	assert.Equal(t, derived, create.OwnerID())
}
