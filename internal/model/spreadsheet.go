package model

// DuplicateStrategy 重复行处理策略
type DuplicateStrategy string

const (
	DuplicateKeepFirst DuplicateStrategy = "keep_first" // 保留文件顺序中靠前的行
	DuplicateKeepLast  DuplicateStrategy = "keep_last"  // 保留文件顺序中靠后的行
)

// FilterOperator 过滤操作符
type FilterOperator string

const (
	FilterOperatorIn    FilterOperator = "in"     // 值在接受集合中
	FilterOperatorNotIn FilterOperator = "not_in" // 值不在集合中
)

// SpreadsheetFilter 行过滤器：作用于某一列，不匹配的行在去重前被剔除
type SpreadsheetFilter struct {
	ColumnIndex int            `json:"columnIndex"`
	Operator    FilterOperator `json:"operator"`
	Values      []string       `json:"values"`
}

// Accepts 判断单元格值是否通过过滤
func (f *SpreadsheetFilter) Accepts(value string) bool {
	found := false
	for _, v := range f.Values {
		if v == value {
			found = true
			break
		}
	}
	if f.Operator == FilterOperatorNotIn {
		return !found
	}
	return found
}

// SpreadsheetMetadata 导入会话元数据
// 上传时创建，设置流程中随用户编辑变化，finalized 后冻结
type SpreadsheetMetadata struct {
	EventID           string              `json:"eventId"`
	Source            string              `json:"source"` // 文件名或远程表格 URL
	SheetName         string              `json:"sheetName"`
	Columns           []ColumnMetaData    `json:"columns"`
	Filters           []SpreadsheetFilter `json:"filters"`
	DuplicateStrategy DuplicateStrategy   `json:"duplicateStrategy"`
	Finalized         bool                `json:"finalized"`
}

// Clone 深拷贝元数据
// 会话对外只交出副本，持锁之外的读取不受后续编辑影响
func (m *SpreadsheetMetadata) Clone() *SpreadsheetMetadata {
	if m == nil {
		return nil
	}
	out := *m
	out.Columns = append([]ColumnMetaData(nil), m.Columns...)
	out.Filters = append([]SpreadsheetFilter(nil), m.Filters...)
	for i := range out.Filters {
		out.Filters[i].Values = append([]string(nil), m.Filters[i].Values...)
	}
	return &out
}

// UniqueIDColumn 返回唯一标识列，不存在时返回 nil
func (m *SpreadsheetMetadata) UniqueIDColumn() *ColumnMetaData {
	for i := range m.Columns {
		if m.Columns[i].Type == ColumnTypeUniqueID {
			return &m.Columns[i]
		}
	}
	return nil
}

// ColumnsOfType 返回指定类型的所有列
func (m *SpreadsheetMetadata) ColumnsOfType(t ColumnType) []ColumnMetaData {
	var out []ColumnMetaData
	for _, c := range m.Columns {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// SpreadsheetRow 规范化后的表格行，匹配的基本单元
// ID 由唯一标识列的值稳定散列得出，同一来源重复导入时保持不变
type SpreadsheetRow struct {
	ID          string            `json:"id"`
	Player      map[string]string `json:"player"` // 通用选手数据，键为列名
	Archetype   string            `json:"archetype"`
	DecklistURL string            `json:"decklistUrl"`
	DecklistTxt string            `json:"decklistTxt"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
}
