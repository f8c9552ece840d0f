package matcher

import "deckmate/internal/model"

// Assign 手工指定一对配对，标记为 manual
// 手工条目是重新指派语义：若目标行已被其他选手占用，先解除旧条目，
// 保证配对保持一对一
func Assign(existing model.Mapping, playerID, rowID string) model.Mapping {
	result, _ := begin(existing)
	for pid, entry := range result {
		if entry.RowID == rowID && pid != playerID {
			delete(result, pid)
		}
	}
	result[playerID] = model.MappingEntry{RowID: rowID, Mode: model.PairingModeManual}
	return result
}

// Unassign 解除某选手的配对
func Unassign(existing model.Mapping, playerID string) model.Mapping {
	result, _ := begin(existing)
	delete(result, playerID)
	return result
}
