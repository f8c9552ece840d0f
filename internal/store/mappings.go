package store

import (
	"fmt"

	"deckmate/internal/model"
)

// SaveMapping 整体替换赛事的配对结果
func (s *Store) SaveMapping(eventID string, mapping model.Mapping) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM mappings WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to clear mapping: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO mappings (event_id, player_id, row_id, mode) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for playerID, entry := range mapping {
		if _, err := stmt.Exec(eventID, playerID, entry.RowID, string(entry.Mode)); err != nil {
			return fmt.Errorf("failed to insert mapping for %s: %w", playerID, err)
		}
	}
	return tx.Commit()
}

// GetMapping 取赛事的配对结果，没有记录时返回空映射
func (s *Store) GetMapping(eventID string) (model.Mapping, error) {
	rows, err := s.db.Query(`
		SELECT player_id, row_id, mode FROM mappings WHERE event_id = ?
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping: %w", err)
	}
	defer rows.Close()

	mapping := model.Mapping{}
	for rows.Next() {
		var playerID, rowID, mode string
		if err := rows.Scan(&playerID, &rowID, &mode); err != nil {
			return nil, err
		}
		mapping[playerID] = model.MappingEntry{RowID: rowID, Mode: model.PairingMode(mode)}
	}
	return mapping, rows.Err()
}
