package model

// ColumnType 列语义类型
type ColumnType string

const (
	ColumnTypeUniqueID    ColumnType = "unique_id"    // 唯一标识列
	ColumnTypeArchetype   ColumnType = "archetype"    // 套牌原型列
	ColumnTypeFirstName   ColumnType = "first_name"   // 名
	ColumnTypeLastName    ColumnType = "last_name"    // 姓
	ColumnTypeDecklistURL ColumnType = "decklist_url" // 套牌链接列
	ColumnTypeDecklistTxt ColumnType = "decklist_txt" // 套牌文本列
	ColumnTypeIgnored     ColumnType = "ignored"      // 忽略列
	ColumnTypePlayerData  ColumnType = "player_data"  // 通用选手数据列
	ColumnTypeFilter      ColumnType = "filter"       // 过滤列
)

// ColumnMetaData 列元数据
type ColumnMetaData struct {
	Name         string     `json:"name"`         // 展示名（可被用户改写）
	OriginalName string     `json:"originalName"` // 表头原始名，重新识别时用于对齐
	Index        int        `json:"index"`        // 列序号
	Type         ColumnType `json:"type"`         // 语义类型
	UserSet      bool       `json:"userSet"`      // 是否由用户手工指定类型
}

// ColumnTypePriority 类型优先级，数值越小优先级越高
// 识别打分相同时按此顺序决出唯一结果，保证识别确定性
func ColumnTypePriority(t ColumnType) int {
	switch t {
	case ColumnTypeUniqueID:
		return 0
	case ColumnTypeDecklistURL:
		return 1
	case ColumnTypeDecklistTxt:
		return 2
	case ColumnTypeFirstName:
		return 3
	case ColumnTypeLastName:
		return 4
	case ColumnTypeArchetype:
		return 5
	default:
		return 99
	}
}
