package matcher

import (
	"deckmate/internal/model"
	"deckmate/internal/parser"
)

// foldedName 折叠后的姓名对
type foldedName struct {
	First string
	Last  string
}

func fold(first, last string) foldedName {
	return foldedName{First: parser.FoldName(first), Last: parser.FoldName(last)}
}

// nameMatcher 基于姓名比较的配对策略
// 各变体只在接受谓词上不同，遍历与占用规则完全一致
type nameMatcher struct {
	mode    model.PairingMode
	accepts func(p, r foldedName) bool
}

func (m *nameMatcher) Mode() model.PairingMode { return m.mode }

func (m *nameMatcher) Match(players []model.Player, rows []model.SpreadsheetRow, existing model.Mapping) model.Mapping {
	result, claimed := begin(existing)

	for _, p := range unassigned(players, result) {
		pn := fold(p.FirstName, p.LastName)
		if pn.First == "" && pn.Last == "" {
			continue
		}
		for _, row := range rows {
			if claimed[row.ID] {
				continue
			}
			if m.accepts(pn, fold(row.FirstName, row.LastName)) {
				result[p.ID] = model.MappingEntry{RowID: row.ID, Mode: m.mode}
				claimed[row.ID] = true
				break
			}
		}
	}
	return result
}

// NewNameStrictMatcher 姓名严格匹配：折叠后姓与名都完全一致
func NewNameStrictMatcher() Matcher {
	return &nameMatcher{
		mode: model.PairingModeNameStrict,
		accepts: func(p, r foldedName) bool {
			return r.First != "" && p.First == r.First && p.Last == r.Last
		},
	}
}

// NewNameSwapMatcher 姓名交换匹配：严格一致或首末互换后一致
// 兼容姓名列填反的表格
func NewNameSwapMatcher() Matcher {
	return &nameMatcher{
		mode: model.PairingModeNameSwap,
		accepts: func(p, r foldedName) bool {
			if r.First == "" && r.Last == "" {
				return false
			}
			if p.First == r.First && p.Last == r.Last {
				return true
			}
			return p.First == r.Last && p.Last == r.First
		},
	}
}

// NewNameFirstInitialMatcher 名首字母匹配：姓完全一致且名首字母一致
func NewNameFirstInitialMatcher() Matcher {
	return &nameMatcher{
		mode: model.PairingModeNameFirstInital,
		accepts: func(p, r foldedName) bool {
			if p.Last == "" || p.Last != r.Last {
				return false
			}
			pi, ri := parser.Initial(p.First), parser.Initial(r.First)
			return pi != 0 && pi == ri
		},
	}
}

// NewNameLastInitialMatcher 姓首字母匹配：名完全一致且姓首字母一致
func NewNameLastInitialMatcher() Matcher {
	return &nameMatcher{
		mode: model.PairingModeNameLastInitial,
		accepts: func(p, r foldedName) bool {
			if p.First == "" || p.First != r.First {
				return false
			}
			pi, ri := parser.Initial(p.Last), parser.Initial(r.Last)
			return pi != 0 && pi == ri
		},
	}
}
