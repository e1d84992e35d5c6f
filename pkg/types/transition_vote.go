package types

import (
	"github.com/evoplatform/v1/pkg/codec"
)

// MasternodeVoteTransition 主节点投票转换（版本化信封）
type MasternodeVoteTransition struct {
	Version FormatVersion
	V0      *MasternodeVoteTransitionV0
}

// MasternodeVoteTransitionV0 主节点投票 V0 格式
//
// 投票以主节点的投票身份签名；VoterIdentityID 必须与主节点列表中
// ProTxHash 对应的投票身份一致。Nonce 作用于投票身份的全局序列。
type MasternodeVoteTransitionV0 struct {
	ProTxHash            Identifier
	VoterIdentityID      Identifier
	Poll                 ContestedResourceVotePoll
	Choice               VoteChoice
	Nonce                uint64
	UserFeeIncrease      uint16
	SignaturePublicKeyID KeyID
	Signature            []byte
}

func (t *MasternodeVoteTransition) serialize() []byte {
	return codec.EncodeEnvelope(uint64(t.Version), t.V0)
}

// EncodePayload 实现 codec.PayloadEncoder
func (v *MasternodeVoteTransitionV0) EncodePayload(w *codec.Writer) {
	w.WriteFixed(v.ProTxHash[:])
	w.WriteFixed(v.VoterIdentityID[:])
	encodeVotePoll(w, &v.Poll)
	w.WriteVarint(uint64(v.Choice.Kind))
	if v.Choice.Kind == VoteChoiceTowardsIdentity {
		w.WriteFixed(v.Choice.TowardsIdentity[:])
	}
	w.WriteVarint(v.Nonce)
	w.WriteVarint(uint64(v.UserFeeIncrease))
	w.WriteVarint(uint64(v.SignaturePublicKeyID))
	w.WriteBytes(v.Signature)
}

func deserializeMasternodeVote(data []byte) (*MasternodeVoteTransition, error) {
	version, r, err := codec.DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch FormatVersion(version) {
	case FormatV0:
		v0 := &MasternodeVoteTransitionV0{}
		if v0.ProTxHash, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if v0.VoterIdentityID, err = readIdentifier(r); err != nil {
			return nil, err
		}
		if v0.Poll, err = decodeVotePoll(r); err != nil {
			return nil, err
		}
		kind, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.Choice.Kind = VoteChoiceKind(kind)
		if v0.Choice.Kind == VoteChoiceTowardsIdentity {
			if v0.Choice.TowardsIdentity, err = readIdentifier(r); err != nil {
				return nil, err
			}
		}
		if v0.Nonce, err = r.ReadVarint(); err != nil {
			return nil, err
		}
		if v0.UserFeeIncrease, err = readUint16(r); err != nil {
			return nil, err
		}
		keyID, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		v0.SignaturePublicKeyID = KeyID(keyID)
		if v0.Signature, err = r.ReadBytes(); err != nil {
			return nil, err
		}
		if err := r.ExpectEOF(); err != nil {
			return nil, err
		}
		return &MasternodeVoteTransition{Version: FormatV0, V0: v0}, nil
	default:
		return nil, &UnknownVersionMismatchError{
			Method:      "MasternodeVoteTransition.Deserialize",
			Received:    version,
			LatestKnown: uint64(FormatV0),
		}
	}
}
