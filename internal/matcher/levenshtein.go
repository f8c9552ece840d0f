package matcher

import (
	"deckmate/internal/model"
	"deckmate/internal/parser"
)

// levenshteinMatcher 编辑距离匹配
// 对每个未配对选手，在未占用行中找折叠全名编辑距离最小且不超过阈值的行
// 同距离取行序靠前者
type levenshteinMatcher struct {
	threshold int
}

// NewLevenshteinMatcher 创建编辑距离匹配器
func NewLevenshteinMatcher(threshold int) Matcher {
	return &levenshteinMatcher{threshold: threshold}
}

func (m *levenshteinMatcher) Mode() model.PairingMode {
	return model.PairingModeNameLevenshtein
}

func (m *levenshteinMatcher) Match(players []model.Player, rows []model.SpreadsheetRow, existing model.Mapping) model.Mapping {
	result, claimed := begin(existing)

	for _, p := range unassigned(players, result) {
		playerName := fullName(p.FirstName, p.LastName)
		if playerName == "" {
			continue
		}

		bestRow := ""
		bestDistance := m.threshold + 1
		for _, row := range rows {
			if claimed[row.ID] {
				continue
			}
			rowName := fullName(row.FirstName, row.LastName)
			if rowName == "" {
				continue
			}
			if d := parser.Levenshtein(playerName, rowName); d < bestDistance {
				bestDistance = d
				bestRow = row.ID
			}
		}

		if bestRow != "" {
			result[p.ID] = model.MappingEntry{RowID: bestRow, Mode: model.PairingModeNameLevenshtein}
			claimed[bestRow] = true
		}
	}
	return result
}

// fullName 折叠后的全名，姓名皆空时返回空串
func fullName(first, last string) string {
	f := parser.FoldName(first)
	l := parser.FoldName(last)
	switch {
	case f == "":
		return l
	case l == "":
		return f
	default:
		return f + " " + l
	}
}
