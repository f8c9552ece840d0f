package session

// Step 设置流程步骤
type Step string

const (
	StepUpload   Step = "upload"   // 上传表格
	StepColumns  Step = "columns"  // 列类型确认
	StepFilters  Step = "filters"  // 过滤与重复处理
	StepPairing  Step = "pairing"  // 选手配对
	StepFinalize Step = "finalize" // 定稿
)

// StepOrder 步骤固定顺序
var StepOrder = []Step{StepUpload, StepColumns, StepFilters, StepPairing, StepFinalize}

// Status 会话状态快照，步骤完成判定是它的纯函数
type Status struct {
	HasData           bool `json:"hasData"`           // 已有解析后的表格数据
	IsMappingComplete bool `json:"isMappingComplete"` // 列类型已可支撑匹配
	HasDuplicates     bool `json:"hasDuplicates"`     // 存在未决的重复行
	HasAllPairings    bool `json:"hasAllPairings"`    // 所有选手都已配对
	Finalized         bool `json:"finalized"`         // 元数据已冻结
	PendingChanges    int  `json:"pendingChanges"`    // 与上次保存版本相比变化的配对数
}

// IsComplete 判定某步骤在给定状态下是否完成
func (s Step) IsComplete(st Status) bool {
	switch s {
	case StepUpload:
		return st.HasData
	case StepColumns:
		return st.IsMappingComplete
	case StepFilters:
		return st.HasData && !st.HasDuplicates
	case StepPairing:
		return st.HasAllPairings
	case StepFinalize:
		return st.Finalized
	default:
		return false
	}
}

// StepState 步骤展示状态
type StepState struct {
	Step     Step `json:"step"`
	Complete bool `json:"complete"`
	Enabled  bool `json:"enabled"` // 前序步骤全部完成后才可进入
}

// StepStates 按固定顺序计算各步骤的完成与可进入状态
func StepStates(st Status) []StepState {
	out := make([]StepState, 0, len(StepOrder))
	allBefore := true
	for _, step := range StepOrder {
		out = append(out, StepState{
			Step:     step,
			Complete: step.IsComplete(st),
			Enabled:  allBefore,
		})
		allBefore = allBefore && step.IsComplete(st)
	}
	return out
}
