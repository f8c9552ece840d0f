package model

// PairingMode 配对来源标记，记录映射条目由哪种策略产生
type PairingMode string

const (
	PairingModeManual          PairingMode = "manual"             // 用户手工指定
	PairingModeRandom          PairingMode = "random"             // 随机配对
	PairingModeNameStrict      PairingMode = "name_strict"        // 姓名严格匹配
	PairingModeNameSwap        PairingMode = "name_swap"          // 姓名交换匹配
	PairingModeNameFirstInital PairingMode = "name_first_initial" // 名首字母匹配
	PairingModeNameLastInitial PairingMode = "name_last_initial"  // 姓首字母匹配
	PairingModeNameLevenshtein PairingMode = "name_levenshtein"   // 编辑距离匹配
)

// ValidPairingMode 判断配对模式是否合法
func ValidPairingMode(mode PairingMode) bool {
	switch mode {
	case PairingModeManual, PairingModeRandom,
		PairingModeNameStrict, PairingModeNameSwap,
		PairingModeNameFirstInital, PairingModeNameLastInitial,
		PairingModeNameLevenshtein:
		return true
	}
	return false
}

// MappingEntry 单个选手的配对结果
type MappingEntry struct {
	RowID string      `json:"rowId"`
	Mode  PairingMode `json:"mode"`
}

// Mapping 选手到表格行的映射，键为选手 ID
// 每个选手至多映射一行；自动匹配器只填充空位，绝不覆盖已有条目
type Mapping map[string]MappingEntry

// Clone 复制映射
// 匹配器输出必须从已有映射的副本出发，保证原映射不被修改
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ClaimedRows 返回已被占用的行 ID 集合
func (m Mapping) ClaimedRows() map[string]bool {
	out := make(map[string]bool, len(m))
	for _, e := range m {
		out[e.RowID] = true
	}
	return out
}

// CountDiff 比较两个映射版本，返回变化的配对数
// 任一侧缺失键或 (rowId, mode) 不一致均计一次，结果对称且 CountDiff(a, a) == 0
func CountDiff(a, b Mapping) int {
	count := 0
	for k, va := range a {
		vb, ok := b[k]
		if !ok || va != vb {
			count++
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			count++
		}
	}
	return count
}
