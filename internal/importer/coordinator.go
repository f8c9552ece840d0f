package importer

import (
	"fmt"
	"time"

	"deckmate/internal/model"
	"deckmate/internal/parser"
	"deckmate/internal/session"
)

// Coordinator 导入协调器
// 串起取数、解码、列识别与会话状态更新，进度以事件流向外暴露
type Coordinator struct {
	sessions      *session.Manager
	minConfidence float64
}

// NewCoordinator 创建导入协调器
func NewCoordinator(sessions *session.Manager, minConfidence float64) *Coordinator {
	return &Coordinator{
		sessions:      sessions,
		minConfidence: minConfidence,
	}
}

// ImportOptions 导入选项
// Data 为空且适配器支持远程取数时，由适配器按 Source 取回字节
type ImportOptions struct {
	EventID string
	Source  string // 文件名或远程表格 URL
	Data    []byte
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/info/warning/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ImportReport 导入报告
type ImportReport struct {
	Source      string                 `json:"source"`
	RowCount    int                    `json:"rowCount"`
	ColumnCount int                    `json:"columnCount"`
	Columns     []model.ColumnMetaData `json:"columns"`
	Duration    time.Duration          `json:"duration"`
}

// Import 执行导入，返回进度通道
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(opts, progressChan)
	}()

	return progressChan
}

// doImport 执行导入逻辑
// 解码失败对本次导入是致命的，立即报错，不静默退化为空数据集
func (c *Coordinator) doImport(opts ImportOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()
	c.send(progressChan, "start", fmt.Sprintf("开始导入: %s", opts.Source), nil)

	sess, err := c.sessions.Get(opts.EventID)
	if err != nil {
		c.send(progressChan, "error", fmt.Sprintf("加载会话失败: %v", err), nil)
		return
	}

	imp, err := ForSource(opts.Source)
	if err != nil {
		c.send(progressChan, "error", err.Error(), nil)
		return
	}

	data := opts.Data
	if data == nil {
		fetcher, ok := imp.(Fetcher)
		if !ok {
			c.send(progressChan, "error", fmt.Sprintf("来源 %s 需要上传文件内容", opts.Source), nil)
			return
		}
		c.send(progressChan, "info", "正在拉取远程表格...", nil)
		data, err = fetcher.Fetch(opts.Source)
		if err != nil {
			c.send(progressChan, "error", fmt.Sprintf("拉取失败: %v", err), nil)
			return
		}
	}

	// 名单参考集给姓名列打分，名单为空时识别退化但不报错
	known := model.BuildKnownIdentities(sess.Players())
	detector := parser.NewColumnDetector(known, c.minConfidence)

	grid, err := imp.Parse(data, detector)
	if err != nil {
		c.send(progressChan, "error", fmt.Sprintf("解析 %s 失败: %v", opts.Source, err), nil)
		return
	}

	c.send(progressChan, "info",
		fmt.Sprintf("解析完成: %d 行, %d 列", len(grid.Rows), len(grid.Columns)),
		map[string]int{"rows": len(grid.Rows), "columns": len(grid.Columns)})

	meta := &model.SpreadsheetMetadata{
		EventID:           opts.EventID,
		Source:            opts.Source,
		Columns:           grid.Columns,
		Filters:           []model.SpreadsheetFilter{},
		DuplicateStrategy: model.DuplicateKeepFirst,
	}

	if err := sess.ApplyImport(meta, grid.Rows); err != nil {
		c.send(progressChan, "error", fmt.Sprintf("应用导入结果失败: %v", err), nil)
		return
	}
	if err := sess.Save(); err != nil {
		c.send(progressChan, "warning", fmt.Sprintf("保存导入结果失败: %v", err), nil)
	}

	report := &ImportReport{
		Source:      opts.Source,
		RowCount:    len(grid.Rows),
		ColumnCount: len(grid.Columns),
		Columns:     sess.Meta().Columns,
		Duration:    time.Since(startTime),
	}
	c.send(progressChan, "done", "导入完成", report)
}

// send 发送进度事件，通道满时丢弃
func (c *Coordinator) send(ch chan ProgressEvent, eventType, message string, data interface{}) {
	select {
	case ch <- ProgressEvent{Type: eventType, Message: message, Data: data, Timestamp: time.Now()}:
	default:
	}
}
