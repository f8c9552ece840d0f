// Package matcher 实现选手与表格行的配对策略
// 所有策略共享同一契约：从已有映射的副本出发，只填充未配对的选手，
// 同一轮内已被占用的行不再复用，找不到候选时选手保持未配对，不报错
package matcher

import (
	"fmt"
	"math/rand"

	"deckmate/internal/model"
)

// DefaultLevenshteinThreshold 编辑距离匹配的默认接受阈值
const DefaultLevenshteinThreshold = 2

// Matcher 配对策略
type Matcher interface {
	// Mode 返回策略对应的配对模式标记
	Mode() model.PairingMode
	// Match 在 existing 的副本上补齐未配对选手，原映射不被修改
	Match(players []model.Player, rows []model.SpreadsheetRow, existing model.Mapping) model.Mapping
}

// Options 策略构造参数
type Options struct {
	Rand                 *rand.Rand // 随机策略的随机源，为空时由调用方决定种子
	LevenshteinThreshold int        // 编辑距离阈值，0 取默认值
}

// ForMode 按配对模式取得策略实现
// manual 不是自动策略，请求它会报错
func ForMode(mode model.PairingMode, opts Options) (Matcher, error) {
	switch mode {
	case model.PairingModeRandom:
		return NewRandomMatcher(opts.Rand), nil
	case model.PairingModeNameStrict:
		return NewNameStrictMatcher(), nil
	case model.PairingModeNameSwap:
		return NewNameSwapMatcher(), nil
	case model.PairingModeNameFirstInital:
		return NewNameFirstInitialMatcher(), nil
	case model.PairingModeNameLastInitial:
		return NewNameLastInitialMatcher(), nil
	case model.PairingModeNameLevenshtein:
		threshold := opts.LevenshteinThreshold
		if threshold <= 0 {
			threshold = DefaultLevenshteinThreshold
		}
		return NewLevenshteinMatcher(threshold), nil
	case model.PairingModeManual:
		return nil, fmt.Errorf("manual is not an automated matcher")
	default:
		return nil, fmt.Errorf("unknown pairing mode: %s", mode)
	}
}

// begin 复制已有映射并标记已占用的行
// nil 映射视为空映射
func begin(existing model.Mapping) (model.Mapping, map[string]bool) {
	if existing == nil {
		existing = model.Mapping{}
	}
	result := existing.Clone()
	return result, result.ClaimedRows()
}

// unassigned 按名单顺序返回尚未配对的选手
// 先到先得的分配顺序即名单迭代顺序
func unassigned(players []model.Player, mapping model.Mapping) []model.Player {
	var out []model.Player
	for _, p := range players {
		if _, ok := mapping[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out
}
