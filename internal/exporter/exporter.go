// Package exporter 对账结果导出
// 把定稿后的配对结果写成 Excel 工作簿：配对明细一张表，未决项一张表，
// 供赛事主办方存档或交给下游取牌流程
package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"deckmate/internal/model"
	"deckmate/internal/store"
)

const (
	sheetPairings   = "配对明细"
	sheetUnresolved = "未决项"
)

// Exporter 对账报告导出器
type Exporter struct {
	store *store.Store
}

// NewExporter 创建导出器
func NewExporter(st *store.Store) *Exporter {
	return &Exporter{store: st}
}

// Export 导出赛事的对账报告
// 只有定稿后的赛事才有落盘的规范化行，未定稿直接报错
func (e *Exporter) Export(eventID string) (*excelize.File, error) {
	meta, err := e.store.GetSpreadsheetMeta(eventID)
	if err != nil {
		return nil, fmt.Errorf("加载表格元数据失败: %w", err)
	}
	if !meta.Finalized {
		return nil, fmt.Errorf("赛事 %s 尚未定稿，不能导出", eventID)
	}

	players, err := e.store.GetPlayers(eventID)
	if err != nil {
		return nil, fmt.Errorf("加载名单失败: %w", err)
	}
	rows, err := e.store.GetNormalizedRows(eventID)
	if err != nil {
		return nil, fmt.Errorf("加载规范化行失败: %w", err)
	}
	mapping, err := e.store.GetMapping(eventID)
	if err != nil {
		return nil, fmt.Errorf("加载配对结果失败: %w", err)
	}

	f := excelize.NewFile()
	if err := e.writePairings(f, players, rows, mapping); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := e.writeUnresolved(f, players, rows, mapping); err != nil {
		_ = f.Close()
		return nil, err
	}

	// 默认的 Sheet1 已被重命名为配对明细
	f.SetActiveSheet(0)
	return f, nil
}

// writePairings 配对明细表：每个已配对选手一行
func (e *Exporter) writePairings(f *excelize.File, players []model.Player, rows []model.SpreadsheetRow, mapping model.Mapping) error {
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetPairings); err != nil {
		return fmt.Errorf("重命名工作表失败: %w", err)
	}

	header := []interface{}{"选手ID", "名", "姓", "表格行-名", "表格行-姓", "原型", "牌表链接", "牌表文本", "配对方式"}
	if err := f.SetSheetRow(sheetPairings, "A1", &header); err != nil {
		return fmt.Errorf("写表头失败: %w", err)
	}

	byID := rowIndex(rows)
	line := 2
	for _, p := range players {
		entry, ok := mapping[p.ID]
		if !ok {
			continue
		}
		row := byID[entry.RowID]
		cells := []interface{}{
			p.ID, p.FirstName, p.LastName,
			row.FirstName, row.LastName, row.Archetype,
			row.DecklistURL, row.DecklistTxt, string(entry.Mode),
		}
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetPairings, cell, &cells); err != nil {
			return fmt.Errorf("写第 %d 行失败: %w", line, err)
		}
		line++
	}
	return nil
}

// writeUnresolved 未决项表：未配对的选手与未被认领的表格行
func (e *Exporter) writeUnresolved(f *excelize.File, players []model.Player, rows []model.SpreadsheetRow, mapping model.Mapping) error {
	if _, err := f.NewSheet(sheetUnresolved); err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}

	header := []interface{}{"类别", "标识", "名", "姓", "原型"}
	if err := f.SetSheetRow(sheetUnresolved, "A1", &header); err != nil {
		return fmt.Errorf("写表头失败: %w", err)
	}

	line := 2
	writeLine := func(cells []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetUnresolved, cell, &cells); err != nil {
			return fmt.Errorf("写第 %d 行失败: %w", line, err)
		}
		line++
		return nil
	}

	for _, p := range players {
		if _, ok := mapping[p.ID]; ok {
			continue
		}
		if err := writeLine([]interface{}{"未配对选手", p.ID, p.FirstName, p.LastName, p.Archetype}); err != nil {
			return err
		}
	}

	claimed := mapping.ClaimedRows()
	for _, r := range rows {
		if claimed[r.ID] {
			continue
		}
		if err := writeLine([]interface{}{"未认领行", r.ID, r.FirstName, r.LastName, r.Archetype}); err != nil {
			return err
		}
	}
	return nil
}

func rowIndex(rows []model.SpreadsheetRow) map[string]model.SpreadsheetRow {
	out := make(map[string]model.SpreadsheetRow, len(rows))
	for _, r := range rows {
		out[r.ID] = r
	}
	return out
}
