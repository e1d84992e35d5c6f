// Package votes 提供争用资源投票议题的记票与裁决
//
// 🎯 **核心职责**：
// - 解码选择摘要并汇总各选择的票数
// - 议题到期时裁决：胜者授予、锁定或流局
//
// 💡 **设计理念**：
// 裁决是纯函数，票数相同按竞争者标识符字节序裁决，保证各节点在
// 同一议题状态上得到同一结论。
//
// 📞 **调用方**：Drive 的区块边界议题关闭批处理
package votes

import (
	"bytes"

	"github.com/evoplatform/v1/pkg/codec"
	"github.com/evoplatform/v1/pkg/types"
)

// Outcome 议题裁决结论
type Outcome struct {
	// Winner 胜出竞争者；nil 表示无人胜出
	Winner *types.Identifier
	// Locked 资源被锁定（多数投了锁定票）
	Locked bool
}

// Resolve 对议题状态做最终裁决
//
// 锁定票数达到或超过最高竞争者票数时资源锁定；否则票数最高的
// 竞争者胜出，平票按标识符字节序取小者。没有任何有效票时流局。
func Resolve(state *types.VotePollState) Outcome {
	tallies := state.Tally()

	var (
		lockVotes uint32
		topVotes  uint32
		winner    *types.Identifier
	)
	for key, count := range tallies {
		choice, ok := decodeChoiceKey(key)
		if !ok {
			continue
		}
		switch choice.Kind {
		case types.VoteChoiceLock:
			lockVotes += count
		case types.VoteChoiceTowardsIdentity:
			candidate := choice.TowardsIdentity
			if count > topVotes || (count == topVotes && winner != nil && bytes.Compare(candidate[:], winner[:]) < 0) {
				topVotes = count
				winner = &candidate
			}
		}
	}

	if winner == nil {
		return Outcome{Locked: lockVotes > 0}
	}
	if lockVotes >= topVotes {
		return Outcome{Locked: true}
	}
	return Outcome{Winner: winner}
}

// decodeChoiceKey 从选择摘要还原投票选择
func decodeChoiceKey(key string) (types.VoteChoice, bool) {
	r := codec.NewReader([]byte(key))
	kind, err := r.ReadVarint()
	if err != nil {
		return types.VoteChoice{}, false
	}
	choice := types.VoteChoice{Kind: types.VoteChoiceKind(kind)}
	if choice.Kind == types.VoteChoiceTowardsIdentity {
		raw, err := r.ReadFixed(types.IdentifierLength)
		if err != nil {
			return types.VoteChoice{}, false
		}
		id, err := types.NewIdentifierFromBytes(raw)
		if err != nil {
			return types.VoteChoice{}, false
		}
		choice.TowardsIdentity = id
	}
	return choice, true
}
