package drive

import (
	"context"
	"fmt"

	"github.com/evoplatform/v1/internal/core/platform/votes"
	"github.com/evoplatform/v1/pkg/types"
)

// CloseExpiredVotePolls 裁决截止的投票议题
//
// 🎯 **功能**：区块边界批处理。按议题 ID 字节序遍历全部议题，对
// 已到截止时间的开放议题做裁决：胜者登记竞争索引条目，落败与锁定
// 的竞争文档删除。议题状态保留（关闭标记）供历史查询。
//
// ⚠️ **核心约束**：各节点在同一区块高度必须得到同一批关闭结果，
// 遍历顺序与裁决都是确定性的。
func (d *Drive) CloseExpiredVotePolls(ctx context.Context, block *types.BlockInfo) ([]types.Identifier, error) {
	type expired struct {
		pollID types.Identifier
		state  *types.VotePollState
	}

	var due []expired
	err := d.store.Scan(prefixVotePoll, func(key, value []byte) error {
		state, err := types.DeserializeVotePollState(value)
		if err != nil {
			return &types.ProtocolError{
				Reason: types.ProtocolFaultCorruptedState,
				Op:     "drive.CloseExpiredVotePolls",
				Err:    err,
			}
		}
		if state.Closed() || block.TimeMillis < state.Poll().EndTimeMillis {
			return nil
		}
		pollID, err := types.NewIdentifierFromBytes(key[len(prefixVotePoll):])
		if err != nil {
			return &types.ProtocolError{
				Reason: types.ProtocolFaultCorruptedState,
				Op:     "drive.CloseExpiredVotePolls",
				Err:    err,
			}
		}
		due = append(due, expired{pollID: pollID, state: state})
		return nil
	})
	if err != nil {
		return nil, err
	}

	closed := make([]types.Identifier, 0, len(due))
	for _, item := range due {
		if err := d.resolvePoll(ctx, item.pollID, item.state); err != nil {
			return nil, err
		}
		closed = append(closed, item.pollID)
	}
	return closed, nil
}

// resolvePoll 对单个到期议题执行裁决并落库
func (d *Drive) resolvePoll(ctx context.Context, pollID types.Identifier, state *types.VotePollState) error {
	outcome := votes.Resolve(state)
	poll := state.Poll()

	for identity, docID := range state.Contenders() {
		if outcome.Winner != nil && identity == *outcome.Winner {
			continue
		}
		if err := d.store.Delete(keyDocument(poll.ContractID, poll.DocumentType, docID)); err != nil {
			return fmt.Errorf("删除落败文档: %w", err)
		}
	}

	if outcome.Winner != nil {
		winnerDoc := state.Contenders()[*outcome.Winner]
		key := keyUniqueIndex(poll.ContractID, poll.DocumentType, poll.IndexName, poll.IndexValues)
		if err := d.store.Set(key, winnerDoc[:]); err != nil {
			return fmt.Errorf("登记胜者索引: %w", err)
		}
		d.logger.Infof("议题裁决: poll=%s winner=%s", pollID, *outcome.Winner)
	} else {
		d.logger.Infof("议题裁决: poll=%s locked=%t", pollID, outcome.Locked)
	}

	state.Close()
	if err := d.store.Set(keyVotePoll(pollID), state.Serialize()); err != nil {
		return fmt.Errorf("写入议题状态: %w", err)
	}
	return nil
}
