package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"deckmate/internal/model"
)

// SaveSpreadsheet 保存导入会话：元数据 + 原始行整体替换
// 重新上传同一赛事的表格会覆盖旧的原始行
func (s *Store) SaveSpreadsheet(meta *model.SpreadsheetMetadata, rawRows [][]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertMeta(tx, meta); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM spreadsheet_raw_rows WHERE event_id = ?`, meta.EventID); err != nil {
		return fmt.Errorf("failed to clear raw rows: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO spreadsheet_raw_rows (event_id, row_no, cells_json) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range rawRows {
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		if _, err := stmt.Exec(meta.EventID, i, string(cells)); err != nil {
			return fmt.Errorf("failed to insert raw row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// UpdateSpreadsheetMeta 只更新元数据（列编辑、过滤器、冻结状态）
func (s *Store) UpdateSpreadsheetMeta(meta *model.SpreadsheetMetadata) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertMeta(tx, meta); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertMeta(tx *sql.Tx, meta *model.SpreadsheetMetadata) error {
	columns, err := json.Marshal(meta.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}
	filters, err := json.Marshal(meta.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}

	finalized := 0
	if meta.Finalized {
		finalized = 1
	}

	_, err = tx.Exec(`
		INSERT INTO spreadsheet_meta (event_id, source, sheet_name, columns_json, filters_json, duplicate_strategy, finalized)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			source = excluded.source,
			sheet_name = excluded.sheet_name,
			columns_json = excluded.columns_json,
			filters_json = excluded.filters_json,
			duplicate_strategy = excluded.duplicate_strategy,
			finalized = excluded.finalized
	`, meta.EventID, meta.Source, meta.SheetName, string(columns), string(filters), string(meta.DuplicateStrategy), finalized)
	if err != nil {
		return fmt.Errorf("failed to save spreadsheet meta: %w", err)
	}
	return nil
}

// GetSpreadsheetMeta 取导入会话元数据，不存在返回 sql.ErrNoRows
func (s *Store) GetSpreadsheetMeta(eventID string) (*model.SpreadsheetMetadata, error) {
	meta := &model.SpreadsheetMetadata{}
	var columnsJSON, filtersJSON, strategy string
	var finalized int

	err := s.db.QueryRow(`
		SELECT event_id, source, sheet_name, columns_json, filters_json, duplicate_strategy, finalized
		FROM spreadsheet_meta WHERE event_id = ?
	`, eventID).Scan(&meta.EventID, &meta.Source, &meta.SheetName, &columnsJSON, &filtersJSON, &strategy, &finalized)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(columnsJSON), &meta.Columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns: %w", err)
	}
	if err := json.Unmarshal([]byte(filtersJSON), &meta.Filters); err != nil {
		return nil, fmt.Errorf("failed to decode filters: %w", err)
	}
	meta.DuplicateStrategy = model.DuplicateStrategy(strategy)
	meta.Finalized = finalized != 0
	return meta, nil
}

// GetRawRows 按文件顺序取原始行
func (s *Store) GetRawRows(eventID string) ([][]string, error) {
	rows, err := s.db.Query(`
		SELECT cells_json FROM spreadsheet_raw_rows WHERE event_id = ? ORDER BY row_no
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw rows: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var cellsJSON string
		if err := rows.Scan(&cellsJSON); err != nil {
			return nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return nil, fmt.Errorf("failed to decode raw row: %w", err)
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

// ReplaceNormalizedRows 整体替换规范化行，finalize 时调用
func (s *Store) ReplaceNormalizedRows(eventID string, normalized []model.SpreadsheetRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM spreadsheet_rows WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to clear normalized rows: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO spreadsheet_rows (event_id, row_id, first_name, last_name, archetype, decklist_url, decklist_txt, player_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range normalized {
		player, err := json.Marshal(r.Player)
		if err != nil {
			return fmt.Errorf("failed to encode player data: %w", err)
		}
		if _, err := stmt.Exec(eventID, r.ID, r.FirstName, r.LastName, r.Archetype, r.DecklistURL, r.DecklistTxt, string(player)); err != nil {
			return fmt.Errorf("failed to insert row %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// GetNormalizedRows 取规范化行
func (s *Store) GetNormalizedRows(eventID string) ([]model.SpreadsheetRow, error) {
	rows, err := s.db.Query(`
		SELECT row_id, first_name, last_name, archetype, decklist_url, decklist_txt, player_json
		FROM spreadsheet_rows WHERE event_id = ? ORDER BY rowid
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query normalized rows: %w", err)
	}
	defer rows.Close()

	var out []model.SpreadsheetRow
	for rows.Next() {
		var r model.SpreadsheetRow
		var playerJSON string
		if err := rows.Scan(&r.ID, &r.FirstName, &r.LastName, &r.Archetype, &r.DecklistURL, &r.DecklistTxt, &playerJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(playerJSON), &r.Player); err != nil {
			return nil, fmt.Errorf("failed to decode player data: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
