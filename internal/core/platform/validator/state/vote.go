package state

import (
	"context"

	"github.com/evoplatform/v1/pkg/types"
)

// validateMasternodeVote 校验主节点投票
//
// 改票允许：重复投票在记票时替换旧票，不在这里拒绝。
func (v *Validator) validateMasternodeVote(ctx context.Context, a *types.MasternodeVoteAction, block *types.BlockInfo) (*types.SimpleValidationResult, error) {
	if result, err := v.checkGlobalNonce(ctx, a.VoterIdentityID, a.Nonce); result != nil || err != nil {
		return result, err
	}

	masternode, err := v.repo.FetchMasternode(ctx, a.ProTxHash)
	if err != nil {
		return nil, storageFault("state.validateMasternodeVote", err)
	}
	if masternode == nil {
		return reject(&types.MasternodeNotFoundError{ProTxHash: a.ProTxHash}), nil
	}
	if masternode.VotingIdentityID != a.VoterIdentityID {
		return reject(&types.MasternodeIncorrectVotingAddressError{
			ProTxHash: a.ProTxHash,
			VoterID:   a.VoterIdentityID,
		}), nil
	}

	pollID := a.Poll.PollID()
	poll, err := v.repo.FetchVotePollState(ctx, pollID)
	if err != nil {
		return nil, storageFault("state.validateMasternodeVote", err)
	}
	if poll == nil || poll.Closed() || block.TimeMillis >= poll.Poll().EndTimeMillis {
		return reject(&types.VotePollNotAvailableForVotingError{PollID: pollID}), nil
	}

	return accept(), nil
}
