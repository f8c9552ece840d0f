package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"deckmate/internal/model"
)

// RowID 由唯一标识列的值计算确定性行 ID
// 值先去空白并小写，保证同一来源重复导入时 ID 稳定、已建立的映射不失效
func RowID(uniqueValue string) string {
	key := strings.ToLower(strings.TrimSpace(uniqueValue))
	sum := sha256.Sum256([]byte("row:" + key))
	return hex.EncodeToString(sum[:10])
}

// FallbackRowID 无唯一标识列时的兜底行 ID：姓名 + 原型拼接散列
// 已知局限：同名同原型的两行会冲突，与原始行为保持一致，不做更强保证
func FallbackRowID(firstName, lastName, archetype string) string {
	key := FoldName(firstName) + "|" + FoldName(lastName) + "|" + FoldName(archetype)
	sum := sha256.Sum256([]byte("row-fallback:" + key))
	return hex.EncodeToString(sum[:10])
}

// Normalize 把原始行投影成规范化行并解决重复
// 流程：先过滤（过滤优先于去重），再按列类型投影，最后按策略去重
// 返回的行集合中不存在重复 ID
func Normalize(rawRows [][]string, meta *model.SpreadsheetMetadata) []model.SpreadsheetRow {
	uniqueCol := meta.UniqueIDColumn()

	rows := make([]model.SpreadsheetRow, 0, len(rawRows))
	for _, raw := range rawRows {
		if !passesFilters(raw, meta.Filters) {
			continue
		}
		row := project(raw, meta.Columns)
		if uniqueCol != nil {
			row.ID = RowID(cellAt(raw, uniqueCol.Index))
		} else {
			row.ID = FallbackRowID(row.FirstName, row.LastName, row.Archetype)
		}
		rows = append(rows, row)
	}

	return dedupe(rows, meta.DuplicateStrategy)
}

// project 按列类型把一行原始数据投影到规范化结构
func project(raw []string, columns []model.ColumnMetaData) model.SpreadsheetRow {
	row := model.SpreadsheetRow{Player: make(map[string]string)}
	for _, col := range columns {
		value := NormalizeCell(cellAt(raw, col.Index))
		if value == "" {
			continue
		}
		switch col.Type {
		case model.ColumnTypeFirstName:
			row.FirstName = value
		case model.ColumnTypeLastName:
			row.LastName = value
		case model.ColumnTypeArchetype:
			row.Archetype = value
		case model.ColumnTypeDecklistURL:
			row.DecklistURL = value
		case model.ColumnTypeDecklistTxt:
			// 套牌文本保留内部换行
			row.DecklistTxt = strings.TrimSpace(strings.ReplaceAll(cellAt(raw, col.Index), "\r", ""))
		case model.ColumnTypePlayerData, model.ColumnTypeUniqueID, model.ColumnTypeFilter:
			row.Player[col.Name] = value
		}
	}
	return row
}

// passesFilters 判断原始行是否通过全部激活过滤器
func passesFilters(raw []string, filters []model.SpreadsheetFilter) bool {
	for i := range filters {
		if !filters[i].Accepts(NormalizeCell(cellAt(raw, filters[i].ColumnIndex))) {
			return false
		}
	}
	return true
}

// dedupe 按策略解决重复 ID，被丢弃的行整行剔除，不做字段合并
func dedupe(rows []model.SpreadsheetRow, strategy model.DuplicateStrategy) []model.SpreadsheetRow {
	out := make([]model.SpreadsheetRow, 0, len(rows))
	position := make(map[string]int, len(rows))

	for _, row := range rows {
		if pos, seen := position[row.ID]; seen {
			if strategy == model.DuplicateKeepLast {
				out[pos] = row
			}
			// keep_first：忽略后出现的行
			continue
		}
		position[row.ID] = len(out)
		out = append(out, row)
	}
	return out
}

// HasDuplicates 检查规范化前的行集合中是否存在重复 ID
// 设置流程用它决定是否需要用户确认重复策略
func HasDuplicates(rawRows [][]string, meta *model.SpreadsheetMetadata) bool {
	uniqueCol := meta.UniqueIDColumn()
	if uniqueCol == nil {
		return false
	}
	seen := make(map[string]bool, len(rawRows))
	for _, raw := range rawRows {
		if !passesFilters(raw, meta.Filters) {
			continue
		}
		id := RowID(cellAt(raw, uniqueCol.Index))
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}

func cellAt(raw []string, idx int) string {
	if idx < 0 || idx >= len(raw) {
		return ""
	}
	return raw[idx]
}
