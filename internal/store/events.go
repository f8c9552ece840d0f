package store

import (
	"database/sql"
	"fmt"

	"deckmate/internal/model"
)

// SaveEvent 新建或更新赛事
func (s *Store) SaveEvent(e *model.Event) error {
	_, err := s.db.Exec(`
		INSERT INTO events (id, name, date, organizer, format)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			date = excluded.date,
			organizer = excluded.organizer,
			format = excluded.format
	`, e.ID, e.Name, e.Date, e.Organizer, e.Format)
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// GetEvent 按 ID 取赛事，不存在返回 sql.ErrNoRows
func (s *Store) GetEvent(id string) (*model.Event, error) {
	e := &model.Event{}
	err := s.db.QueryRow(`
		SELECT id, name, date, organizer, format FROM events WHERE id = ?
	`, id).Scan(&e.ID, &e.Name, &e.Date, &e.Organizer, &e.Format)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEvents 按创建时间倒序列出赛事
func (s *Store) ListEvents() ([]*model.Event, error) {
	rows, err := s.db.Query(`
		SELECT id, name, date, organizer, format FROM events ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		e := &model.Event{}
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Organizer, &e.Format); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ReplacePlayers 整体替换赛事名单
// 抓取子系统每次推送完整名单，这里不做增量合并
func (s *Store) ReplacePlayers(eventID string, players []model.Player) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM players WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to clear players: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO players (event_id, id, first_name, last_name, archetype, table_name)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.Exec(eventID, p.ID, p.FirstName, p.LastName, p.Archetype, p.TableName); err != nil {
			return fmt.Errorf("failed to insert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// GetPlayers 按插入顺序取赛事名单
func (s *Store) GetPlayers(eventID string) ([]model.Player, error) {
	rows, err := s.db.Query(`
		SELECT id, first_name, last_name, archetype, table_name
		FROM players WHERE event_id = ? ORDER BY rowid
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Archetype, &p.TableName); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// HasEvent 判断赛事是否存在
func (s *Store) HasEvent(id string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM events WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
