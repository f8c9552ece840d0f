package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"deckmate/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "deckmate.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEventRoundTrip(t *testing.T) {
	e := &model.Event{ID: "evt1", Name: "FNM Modern", Date: "2026-08-28", Organizer: "LGS", Format: "modern"}
	s := newTestStore(t)

	if err := s.SaveEvent(e); err != nil {
		t.Fatalf("save event: %v", err)
	}
	got, err := s.GetEvent("evt1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if *got != *e {
		t.Fatalf("event mismatch: got=%+v want=%+v", got, e)
	}

	// upsert 语义
	e.Name = "FNM Modern (updated)"
	if err := s.SaveEvent(e); err != nil {
		t.Fatalf("update event: %v", err)
	}
	got, err = s.GetEvent("evt1")
	if err != nil {
		t.Fatalf("get updated event: %v", err)
	}
	if got.Name != "FNM Modern (updated)" {
		t.Fatalf("update not applied: %+v", got)
	}

	if _, err := s.GetEvent("missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("missing event should return sql.ErrNoRows, got %v", err)
	}

	ok, err := s.HasEvent("evt1")
	if err != nil || !ok {
		t.Fatalf("HasEvent(evt1) = %v, %v", ok, err)
	}
	ok, err = s.HasEvent("missing")
	if err != nil || ok {
		t.Fatalf("HasEvent(missing) = %v, %v", ok, err)
	}
}

func TestReplacePlayers(t *testing.T) {
	s := newTestStore(t)

	first := []model.Player{
		{ID: "p1", FirstName: "Jane", LastName: "Doe", Archetype: "Burn", TableName: "1"},
		{ID: "p2", FirstName: "John", LastName: "Smith"},
	}
	if err := s.ReplacePlayers("evt1", first); err != nil {
		t.Fatalf("replace players: %v", err)
	}

	got, err := s.GetPlayers("evt1")
	if err != nil {
		t.Fatalf("get players: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p2" {
		t.Fatalf("players mismatch: %+v", got)
	}

	// 整体替换，不做增量合并
	second := []model.Player{{ID: "p3", FirstName: "Ada", LastName: "Lovelace"}}
	if err := s.ReplacePlayers("evt1", second); err != nil {
		t.Fatalf("replace players again: %v", err)
	}
	got, err = s.GetPlayers("evt1")
	if err != nil {
		t.Fatalf("get players: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p3" {
		t.Fatalf("old roster should be gone: %+v", got)
	}
}

func TestSpreadsheetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	meta := &model.SpreadsheetMetadata{
		EventID:   "evt1",
		Source:    "roster.csv",
		SheetName: "Sheet1",
		Columns: []model.ColumnMetaData{
			{Name: "id", OriginalName: "id", Index: 0, Type: model.ColumnTypeUniqueID},
			{Name: "first", OriginalName: "first", Index: 1, Type: model.ColumnTypeFirstName, UserSet: true},
		},
		Filters: []model.SpreadsheetFilter{
			{ColumnIndex: 2, Operator: model.FilterOperatorIn, Values: []string{"confirmed"}},
		},
		DuplicateStrategy: model.DuplicateKeepLast,
	}
	rawRows := [][]string{
		{"1", "Jane", "confirmed"},
		{"2", "John", "dropped"},
	}
	if err := s.SaveSpreadsheet(meta, rawRows); err != nil {
		t.Fatalf("save spreadsheet: %v", err)
	}

	gotMeta, err := s.GetSpreadsheetMeta("evt1")
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if gotMeta.Source != "roster.csv" || gotMeta.DuplicateStrategy != model.DuplicateKeepLast {
		t.Fatalf("meta mismatch: %+v", gotMeta)
	}
	if len(gotMeta.Columns) != 2 || !gotMeta.Columns[1].UserSet {
		t.Fatalf("columns not preserved: %+v", gotMeta.Columns)
	}
	if len(gotMeta.Filters) != 1 || gotMeta.Filters[0].Operator != model.FilterOperatorIn {
		t.Fatalf("filters not preserved: %+v", gotMeta.Filters)
	}

	gotRows, err := s.GetRawRows("evt1")
	if err != nil {
		t.Fatalf("get raw rows: %v", err)
	}
	if len(gotRows) != 2 || gotRows[0][1] != "Jane" || gotRows[1][2] != "dropped" {
		t.Fatalf("raw rows mismatch: %+v", gotRows)
	}

	// 重新上传覆盖旧行
	if err := s.SaveSpreadsheet(meta, [][]string{{"9", "Ada", "confirmed"}}); err != nil {
		t.Fatalf("re-save spreadsheet: %v", err)
	}
	gotRows, err = s.GetRawRows("evt1")
	if err != nil {
		t.Fatalf("get raw rows: %v", err)
	}
	if len(gotRows) != 1 || gotRows[0][0] != "9" {
		t.Fatalf("re-upload should replace rows: %+v", gotRows)
	}
}

func TestUpdateSpreadsheetMeta_Finalized(t *testing.T) {
	s := newTestStore(t)

	meta := &model.SpreadsheetMetadata{EventID: "evt1", Source: "roster.csv"}
	if err := s.SaveSpreadsheet(meta, nil); err != nil {
		t.Fatalf("save spreadsheet: %v", err)
	}

	meta.Finalized = true
	if err := s.UpdateSpreadsheetMeta(meta); err != nil {
		t.Fatalf("update meta: %v", err)
	}
	got, err := s.GetSpreadsheetMeta("evt1")
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if !got.Finalized {
		t.Fatalf("finalized flag should persist")
	}
}

func TestNormalizedRowsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	rows := []model.SpreadsheetRow{
		{
			ID: "r1", FirstName: "Jane", LastName: "Doe", Archetype: "Burn",
			DecklistURL: "https://www.moxfield.com/decks/a",
			Player:      map[string]string{"id": "1"},
		},
		{ID: "r2", FirstName: "John", LastName: "Smith", DecklistTxt: "4 Lightning Bolt\n20 Mountain"},
	}
	if err := s.ReplaceNormalizedRows("evt1", rows); err != nil {
		t.Fatalf("replace normalized rows: %v", err)
	}

	got, err := s.GetNormalizedRows("evt1")
	if err != nil {
		t.Fatalf("get normalized rows: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Player["id"] != "1" {
		t.Fatalf("player data not preserved: %+v", got[0])
	}
	if got[1].DecklistTxt != "4 Lightning Bolt\n20 Mountain" {
		t.Fatalf("decklist newlines must survive storage: %q", got[1].DecklistTxt)
	}
}

func TestMappingRoundTrip(t *testing.T) {
	s := newTestStore(t)

	mapping := model.Mapping{
		"p1": {RowID: "r1", Mode: model.PairingModeManual},
		"p2": {RowID: "r2", Mode: model.PairingModeNameStrict},
	}
	if err := s.SaveMapping("evt1", mapping); err != nil {
		t.Fatalf("save mapping: %v", err)
	}

	got, err := s.GetMapping("evt1")
	if err != nil {
		t.Fatalf("get mapping: %v", err)
	}
	if model.CountDiff(mapping, got) != 0 {
		t.Fatalf("mapping mismatch: got=%+v want=%+v", got, mapping)
	}

	// 空映射视为有效状态
	empty, err := s.GetMapping("unknown")
	if err != nil {
		t.Fatalf("get mapping for unknown event: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty mapping, got %+v", empty)
	}

	// 整体替换
	if err := s.SaveMapping("evt1", model.Mapping{"p1": {RowID: "r9", Mode: model.PairingModeRandom}}); err != nil {
		t.Fatalf("re-save mapping: %v", err)
	}
	got, err = s.GetMapping("evt1")
	if err != nil {
		t.Fatalf("get mapping: %v", err)
	}
	if len(got) != 1 || got["p1"].RowID != "r9" {
		t.Fatalf("mapping should be replaced: %+v", got)
	}
}
