package parser

import (
	"sort"

	"deckmate/internal/model"
)

// DefaultMinConfidence 默认识别置信度阈值，低于阈值的列归为忽略列
const DefaultMinConfidence = 0.6

// ColumnDetector 列类型识别器
// 用名单参考集给姓名列打分，其余类型按值形状与唯一率打分
type ColumnDetector struct {
	firstNames    map[string]bool // 折叠后的名集合
	lastNames     map[string]bool // 折叠后的姓集合
	minConfidence float64
}

// NewColumnDetector 创建识别器，参考集键在此统一折叠
func NewColumnDetector(known model.KnownIdentities, minConfidence float64) *ColumnDetector {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	d := &ColumnDetector{
		firstNames:    make(map[string]bool, len(known.FirstNames)),
		lastNames:     make(map[string]bool, len(known.LastNames)),
		minConfidence: minConfidence,
	}
	for name := range known.FirstNames {
		d.firstNames[FoldName(name)] = true
	}
	for name := range known.LastNames {
		d.lastNames[FoldName(name)] = true
	}
	return d
}

// candidate 单列的候选类型及得分
type candidate struct {
	Type  model.ColumnType
	Score float64
}

// DetectColumns 识别每列的语义类型
// rows 为去掉表头后的数据行；空数据集不做识别，全部列忽略
// 同一次识别中唯一标识列至多保留一个，多余候选降级为次优类型
func (d *ColumnDetector) DetectColumns(rows [][]string) map[int]model.ColumnType {
	result := make(map[int]model.ColumnType)

	columnCount := 0
	for _, row := range rows {
		if len(row) > columnCount {
			columnCount = len(row)
		}
	}
	if columnCount == 0 {
		return result
	}

	// 每列的候选列表，按得分降序、同分按固定优先级排序
	candidates := make([][]candidate, columnCount)
	for idx := 0; idx < columnCount; idx++ {
		values := columnValues(rows, idx)
		candidates[idx] = d.scoreColumn(values, len(rows))
		result[idx] = d.pick(candidates[idx])
	}

	d.resolveUniqueID(result, candidates)
	return result
}

// columnValues 收集某列的非空值
func columnValues(rows [][]string, idx int) []string {
	var values []string
	for _, row := range rows {
		if idx >= len(row) {
			continue
		}
		v := NormalizeCell(row[idx])
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

// scoreColumn 给单列的各候选类型打分
func (d *ColumnDetector) scoreColumn(values []string, rowCount int) []candidate {
	if len(values) == 0 {
		return nil
	}

	urlScore := fractionOf(values, IsLikelyURL)
	txtScore := fractionOf(values, LooksLikeDecklist)
	firstScore := d.membership(values, d.firstNames)
	lastScore := d.membership(values, d.lastNames)

	distinct := make(map[string]bool, len(values))
	totalLen := 0
	for _, v := range values {
		distinct[FoldName(v)] = true
		totalLen += len(v)
	}
	uniqueness := float64(len(distinct)) / float64(len(values))
	avgLen := totalLen / len(values)

	var cands []candidate
	cands = append(cands,
		candidate{model.ColumnTypeDecklistURL, urlScore},
		candidate{model.ColumnTypeDecklistTxt, txtScore},
	)

	// 单行数据集上唯一率恒为 1，不足以区分标识列与普通数据列
	// 此时只信任 URL / 套牌文本这类形状判定
	if rowCount > 1 {
		nameLike := firstScore
		if lastScore > nameLike {
			nameLike = lastScore
		}
		uniqueIDScore := 0.0
		if nameLike < 0.5 && urlScore < 0.5 && txtScore < 0.5 {
			uniqueIDScore = uniqueness
		}
		archetypeScore := 0.0
		if avgLen <= 24 && urlScore < 0.5 && txtScore < 0.5 {
			archetypeScore = 1 - uniqueness
		}
		cands = append(cands,
			candidate{model.ColumnTypeUniqueID, uniqueIDScore},
			candidate{model.ColumnTypeFirstName, firstScore},
			candidate{model.ColumnTypeLastName, lastScore},
			candidate{model.ColumnTypeArchetype, archetypeScore},
		)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return model.ColumnTypePriority(cands[i].Type) < model.ColumnTypePriority(cands[j].Type)
	})
	return cands
}

// pick 取最高分候选，不过阈值则忽略该列
func (d *ColumnDetector) pick(cands []candidate) model.ColumnType {
	if len(cands) == 0 || cands[0].Score < d.minConfidence {
		return model.ColumnTypeIgnored
	}
	return cands[0].Type
}

// resolveUniqueID 保证唯一标识列至多一个
// 多列竞争时保留得分最高者（同分取序号最小），落选列降级为次优过阈值候选
func (d *ColumnDetector) resolveUniqueID(result map[int]model.ColumnType, candidates [][]candidate) {
	best := -1
	bestScore := -1.0
	for idx := 0; idx < len(candidates); idx++ {
		if result[idx] != model.ColumnTypeUniqueID {
			continue
		}
		score := candidates[idx][0].Score
		if score > bestScore {
			best = idx
			bestScore = score
		}
	}
	if best < 0 {
		return
	}
	for idx := 0; idx < len(candidates); idx++ {
		if idx == best || result[idx] != model.ColumnTypeUniqueID {
			continue
		}
		result[idx] = model.ColumnTypeIgnored
		for _, c := range candidates[idx][1:] {
			if c.Type != model.ColumnTypeUniqueID && c.Score >= d.minConfidence {
				result[idx] = c.Type
				break
			}
		}
	}
}

// BuildColumns 识别并组装列元数据，表头作为列名
func (d *ColumnDetector) BuildColumns(headers []string, rows [][]string) []model.ColumnMetaData {
	types := d.DetectColumns(rows)
	columns := make([]model.ColumnMetaData, len(headers))
	for i, h := range headers {
		name := NormalizeCell(h)
		t, ok := types[i]
		if !ok {
			t = model.ColumnTypeIgnored
		}
		columns[i] = model.ColumnMetaData{
			Name:         name,
			OriginalName: name,
			Index:        i,
			Type:         t,
		}
	}
	return columns
}

// MergeUserColumns 重新识别后套用用户已手工指定的类型
// 以 OriginalName 对齐前后两份列元数据，用户指定的列不被自动结果覆盖
// 用户指定过唯一标识列时，自动识别出的其他唯一标识列降级为通用数据列，
// 维持至多一个唯一标识列，行 ID 跨重新导入保持稳定
func MergeUserColumns(detected, prior []model.ColumnMetaData) []model.ColumnMetaData {
	byOriginal := make(map[string]model.ColumnMetaData, len(prior))
	for _, c := range prior {
		if c.UserSet {
			byOriginal[c.OriginalName] = c
		}
	}
	userUnique := false
	for i := range detected {
		if p, ok := byOriginal[detected[i].OriginalName]; ok {
			detected[i].Type = p.Type
			detected[i].Name = p.Name
			detected[i].UserSet = true
			if p.Type == model.ColumnTypeUniqueID {
				userUnique = true
			}
		}
	}
	if userUnique {
		for i := range detected {
			if !detected[i].UserSet && detected[i].Type == model.ColumnTypeUniqueID {
				detected[i].Type = model.ColumnTypePlayerData
			}
		}
	}
	return detected
}

// fractionOf 统计满足谓词的值占比
func fractionOf(values []string, pred func(string) bool) float64 {
	if len(values) == 0 {
		return 0
	}
	n := 0
	for _, v := range values {
		if pred(v) {
			n++
		}
	}
	return float64(n) / float64(len(values))
}

// membership 统计折叠后落在参考集中的值占比
func (d *ColumnDetector) membership(values []string, set map[string]bool) float64 {
	if len(set) == 0 || len(values) == 0 {
		return 0
	}
	n := 0
	for _, v := range values {
		if set[FoldName(v)] {
			n++
		}
	}
	return float64(n) / float64(len(values))
}
