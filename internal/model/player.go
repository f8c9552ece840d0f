package model

import "strings"

// Player 赛事名单中的选手，来自抓取子系统，与表格数据无关
type Player struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Archetype string `json:"archetype"`
	TableName string `json:"tableName"` // EventLink 展示名，可能与姓名字段不一致
}

// Event 赛事记录
type Event struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"` // YYYY-MM-DD
	Organizer string `json:"organizer"`
	Format    string `json:"format"`
}

// KnownIdentities 名单参考集
// 由赛事名单构建，列识别器用成员命中率给姓名列打分
type KnownIdentities struct {
	FirstNames map[string]bool
	LastNames  map[string]bool
}

// BuildKnownIdentities 从名单选手构建参考集，统一小写比较
func BuildKnownIdentities(players []Player) KnownIdentities {
	known := KnownIdentities{
		FirstNames: make(map[string]bool),
		LastNames:  make(map[string]bool),
	}
	for _, p := range players {
		if fn := strings.ToLower(strings.TrimSpace(p.FirstName)); fn != "" {
			known.FirstNames[fn] = true
		}
		if ln := strings.ToLower(strings.TrimSpace(p.LastName)); ln != "" {
			known.LastNames[ln] = true
		}
	}
	return known
}
