package matcher

import (
	"math/rand"
	"time"

	"deckmate/internal/model"
)

// randomMatcher 随机配对
// 把未配对选手与未占用行做均匀随机排列后逐一对应，较短一侧用尽为止
type randomMatcher struct {
	rng *rand.Rand
}

// NewRandomMatcher 创建随机匹配器
// rng 为空时使用时间种子；测试注入固定种子以获得可复现结果
func NewRandomMatcher(rng *rand.Rand) Matcher {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &randomMatcher{rng: rng}
}

func (m *randomMatcher) Mode() model.PairingMode {
	return model.PairingModeRandom
}

func (m *randomMatcher) Match(players []model.Player, rows []model.SpreadsheetRow, existing model.Mapping) model.Mapping {
	result, claimed := begin(existing)

	var pool []model.SpreadsheetRow
	for _, row := range rows {
		if !claimed[row.ID] {
			pool = append(pool, row)
		}
	}
	m.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	free := unassigned(players, result)
	for i := 0; i < len(free) && i < len(pool); i++ {
		result[free[i].ID] = model.MappingEntry{RowID: pool[i].ID, Mode: model.PairingModeRandom}
	}
	return result
}
