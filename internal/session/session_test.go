package session

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"deckmate/internal/config"
	"deckmate/internal/model"
	"deckmate/internal/store"
)

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{LevenshteinThreshold: 2, MinConfidence: 0.6}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "deckmate.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestSession(t *testing.T, st *store.Store) *Session {
	t.Helper()
	players := []model.Player{
		{ID: "p1", FirstName: "Jane", LastName: "Doe"},
		{ID: "p2", FirstName: "John", LastName: "Smith"},
	}
	if err := st.ReplacePlayers("evt1", players); err != nil {
		t.Fatalf("seed players: %v", err)
	}
	s, err := New("evt1", st, testMatchingConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func testMeta() *model.SpreadsheetMetadata {
	return &model.SpreadsheetMetadata{
		EventID: "evt1",
		Source:  "roster.csv",
		Columns: []model.ColumnMetaData{
			{Name: "id", OriginalName: "id", Index: 0, Type: model.ColumnTypeUniqueID},
			{Name: "first", OriginalName: "first", Index: 1, Type: model.ColumnTypeFirstName},
			{Name: "last", OriginalName: "last", Index: 2, Type: model.ColumnTypeLastName},
		},
		DuplicateStrategy: model.DuplicateKeepFirst,
	}
}

func testRawRows() [][]string {
	return [][]string{
		{"1", "Jane", "Doe"},
		{"2", "John", "Smith"},
	}
}

func TestSession_EmptyStatus(t *testing.T) {
	s := newTestSession(t, newTestStore(t))

	st := s.Status()
	if st.HasData || st.Finalized || st.HasAllPairings {
		t.Fatalf("fresh session should be empty: %+v", st)
	}

	steps := s.Steps()
	if !steps[0].Enabled || steps[0].Complete {
		t.Fatalf("upload step should be enabled and incomplete: %+v", steps[0])
	}
	for _, step := range steps[1:] {
		if step.Enabled {
			t.Fatalf("step %s should be locked before upload", step.Step)
		}
	}
}

func TestSession_FullFlow(t *testing.T) {
	st := newTestStore(t)
	s := newTestSession(t, st)

	if err := s.ApplyImport(testMeta(), testRawRows()); err != nil {
		t.Fatalf("apply import: %v", err)
	}

	status := s.Status()
	if !status.HasData || !status.IsMappingComplete {
		t.Fatalf("import should complete upload and columns steps: %+v", status)
	}
	if rows := s.Rows(); len(rows) != 2 {
		t.Fatalf("expected 2 normalized rows, got %d", len(rows))
	}

	changed, err := s.RunMatcher(model.PairingModeNameStrict)
	if err != nil {
		t.Fatalf("run matcher: %v", err)
	}
	if changed != 2 {
		t.Fatalf("expected 2 new pairings, got %d", changed)
	}
	if !s.Status().HasAllPairings {
		t.Fatalf("all players should be paired")
	}
	if s.Status().PendingChanges != 2 {
		t.Fatalf("unsaved pairings should be reported, got %d", s.Status().PendingChanges)
	}

	// 重复执行同一策略不再改变映射
	changed, err = s.RunMatcher(model.PairingModeNameStrict)
	if err != nil {
		t.Fatalf("run matcher again: %v", err)
	}
	if changed != 0 {
		t.Fatalf("second pass should change nothing, got %d", changed)
	}

	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.Status().PendingChanges != 0 {
		t.Fatalf("save should clear pending changes, got %d", s.Status().PendingChanges)
	}

	if err := s.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !s.Status().Finalized {
		t.Fatalf("session should be finalized")
	}

	// 冻结后的元数据编辑全部拒绝
	if err := s.SetColumnType(0, model.ColumnTypeIgnored); !errors.Is(err, ErrFinalized) {
		t.Fatalf("column edit after finalize: got %v, want ErrFinalized", err)
	}
	if err := s.SetFilters(nil); !errors.Is(err, ErrFinalized) {
		t.Fatalf("filter edit after finalize: got %v, want ErrFinalized", err)
	}
	if err := s.SetDuplicateStrategy(model.DuplicateKeepLast); !errors.Is(err, ErrFinalized) {
		t.Fatalf("strategy edit after finalize: got %v, want ErrFinalized", err)
	}
	if err := s.ApplyImport(testMeta(), testRawRows()); !errors.Is(err, ErrFinalized) {
		t.Fatalf("re-import after finalize: got %v, want ErrFinalized", err)
	}

	// 定稿落盘规范化行
	normalized, err := st.GetNormalizedRows("evt1")
	if err != nil {
		t.Fatalf("get normalized rows: %v", err)
	}
	if len(normalized) != 2 {
		t.Fatalf("finalize should persist 2 normalized rows, got %d", len(normalized))
	}

	// 解冻后重新可编辑
	if err := s.Reopen(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := s.SetColumnType(0, model.ColumnTypeUniqueID); err != nil {
		t.Fatalf("edit after reopen: %v", err)
	}
}

func TestSession_RestoredFromStore(t *testing.T) {
	st := newTestStore(t)
	s := newTestSession(t, st)

	if err := s.ApplyImport(testMeta(), testRawRows()); err != nil {
		t.Fatalf("apply import: %v", err)
	}
	if _, err := s.RunMatcher(model.PairingModeNameStrict); err != nil {
		t.Fatalf("run matcher: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	// 新会话从存储恢复
	restored, err := New("evt1", st, testMatchingConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("restore session: %v", err)
	}
	if len(restored.Players()) != 2 {
		t.Fatalf("players should be restored")
	}
	if restored.Meta() == nil || restored.Meta().Source != "roster.csv" {
		t.Fatalf("meta should be restored: %+v", restored.Meta())
	}
	if len(restored.Mapping()) != 2 {
		t.Fatalf("mapping should be restored, got %+v", restored.Mapping())
	}
	if restored.Status().PendingChanges != 0 {
		t.Fatalf("restored session has no pending changes")
	}
}

func TestSession_SetColumnTypeDemotesUniqueID(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	if err := s.ApplyImport(testMeta(), testRawRows()); err != nil {
		t.Fatalf("apply import: %v", err)
	}

	// 把第 1 列设为唯一标识，原第 0 列应降级
	if err := s.SetColumnType(1, model.ColumnTypeUniqueID); err != nil {
		t.Fatalf("set column type: %v", err)
	}
	meta := s.Meta()
	if meta.Columns[0].Type != model.ColumnTypePlayerData {
		t.Fatalf("old unique column should demote to player_data, got %s", meta.Columns[0].Type)
	}
	if meta.Columns[1].Type != model.ColumnTypeUniqueID || !meta.Columns[1].UserSet {
		t.Fatalf("new unique column wrong: %+v", meta.Columns[1])
	}

	if err := s.SetColumnType(99, model.ColumnTypeIgnored); err == nil {
		t.Fatalf("out-of-range index must error")
	}
}

func TestSession_ReimportKeepsUserColumns(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	if err := s.ApplyImport(testMeta(), testRawRows()); err != nil {
		t.Fatalf("apply import: %v", err)
	}
	if err := s.SetColumnType(2, model.ColumnTypeArchetype); err != nil {
		t.Fatalf("set column type: %v", err)
	}

	if err := s.ApplyImport(testMeta(), testRawRows()); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	meta := s.Meta()
	if meta.Columns[2].Type != model.ColumnTypeArchetype || !meta.Columns[2].UserSet {
		t.Fatalf("user column choice should survive re-import: %+v", meta.Columns[2])
	}
}

func TestSession_ReimportKeepsUserUniqueIDColumn(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	if err := s.ApplyImport(testMeta(), testRawRows()); err != nil {
		t.Fatalf("apply import: %v", err)
	}

	// 用户把第 2 列改成唯一标识，原第 0 列降级
	if err := s.SetColumnType(2, model.ColumnTypeUniqueID); err != nil {
		t.Fatalf("set column type: %v", err)
	}
	idsBefore := rowIDs(s.Rows())

	// 重新导入同一来源：自动识别仍把第 0 列判成唯一标识
	if err := s.ApplyImport(testMeta(), testRawRows()); err != nil {
		t.Fatalf("re-import: %v", err)
	}

	meta := s.Meta()
	count := 0
	for _, c := range meta.Columns {
		if c.Type == model.ColumnTypeUniqueID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one unique_id column after re-import, got %d (%v)", count, meta.Columns)
	}
	if meta.Columns[2].Type != model.ColumnTypeUniqueID {
		t.Fatalf("user-set unique column must survive re-import: %+v", meta.Columns[2])
	}
	if meta.Columns[0].Type != model.ColumnTypePlayerData {
		t.Fatalf("re-detected unique column should demote, got %s", meta.Columns[0].Type)
	}

	idsAfter := rowIDs(s.Rows())
	if len(idsBefore) != len(idsAfter) {
		t.Fatalf("row count changed across re-import: %d vs %d", len(idsBefore), len(idsAfter))
	}
	for i := range idsBefore {
		if idsBefore[i] != idsAfter[i] {
			t.Fatalf("row ids must be stable across re-import: before=%s after=%s", idsBefore[i], idsAfter[i])
		}
	}
}

func rowIDs(rows []model.SpreadsheetRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestSession_MetaReturnsCopy(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	if err := s.ApplyImport(testMeta(), testRawRows()); err != nil {
		t.Fatalf("apply import: %v", err)
	}

	// 改写返回的副本不得影响会话内部状态
	leaked := s.Meta()
	leaked.Columns[0].Type = model.ColumnTypeIgnored
	leaked.Finalized = true

	meta := s.Meta()
	if meta.Columns[0].Type != model.ColumnTypeUniqueID {
		t.Fatalf("session metadata was mutated through the returned pointer: %+v", meta.Columns[0])
	}
	if meta.Finalized {
		t.Fatalf("finalized flag must not leak through the copy")
	}
}

func TestSession_FinalizeRollsBackOnStoreFailure(t *testing.T) {
	st := newTestStore(t)
	s := newTestSession(t, st)
	if err := s.ApplyImport(testMeta(), testRawRows()); err != nil {
		t.Fatalf("apply import: %v", err)
	}

	// 存储不可用时定稿必须失败且不留下已冻结状态
	st.Close()
	if err := s.Finalize(); err == nil {
		t.Fatalf("finalize must fail when the store is unavailable")
	}
	if s.Status().Finalized {
		t.Fatalf("finalized flag must be rolled back after a failed finalize")
	}
	if err := s.SetColumnType(0, model.ColumnTypeUniqueID); err != nil {
		t.Fatalf("session must stay editable after a failed finalize: %v", err)
	}
}

func TestSession_DuplicateStrategy(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	dup := [][]string{
		{"42", "Jane", "Doe"},
		{"42", "John", "Smith"},
	}
	if err := s.ApplyImport(testMeta(), dup); err != nil {
		t.Fatalf("apply import: %v", err)
	}

	if !s.Status().HasDuplicates {
		t.Fatalf("duplicates should block the filters step")
	}
	steps := s.Steps()
	if steps[2].Complete {
		t.Fatalf("filters step incomplete while duplicates pending")
	}

	if err := s.SetDuplicateStrategy("keep_some"); err == nil {
		t.Fatalf("unknown strategy must error")
	}
	if err := s.SetDuplicateStrategy(model.DuplicateKeepLast); err != nil {
		t.Fatalf("set strategy: %v", err)
	}
	if s.Status().HasDuplicates {
		t.Fatalf("explicit strategy resolves the duplicate question")
	}
	if rows := s.Rows(); len(rows) != 1 || rows[0].FirstName != "John" {
		t.Fatalf("keep_last should retain the later row: %+v", rows)
	}
}

func TestSession_ManualAssignment(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	if err := s.ApplyImport(testMeta(), testRawRows()); err != nil {
		t.Fatalf("apply import: %v", err)
	}
	rows := s.Rows()

	if err := s.AssignManual("p1", rows[1].ID); err != nil {
		t.Fatalf("assign manual: %v", err)
	}
	if got := s.Mapping()["p1"]; got.RowID != rows[1].ID || got.Mode != model.PairingModeManual {
		t.Fatalf("manual assignment wrong: %+v", got)
	}

	// 自动匹配不得覆盖手工条目
	if _, err := s.RunMatcher(model.PairingModeNameStrict); err != nil {
		t.Fatalf("run matcher: %v", err)
	}
	if got := s.Mapping()["p1"]; got.RowID != rows[1].ID || got.Mode != model.PairingModeManual {
		t.Fatalf("manual entry must survive automated pass: %+v", got)
	}

	if err := s.AssignManual("p1", "no-such-row"); err == nil {
		t.Fatalf("unknown row must error")
	}
	if err := s.AssignManual("ghost", rows[0].ID); err == nil {
		t.Fatalf("unknown player must error")
	}

	s.Unassign("p1")
	if _, ok := s.Mapping()["p1"]; ok {
		t.Fatalf("unassign should remove the entry")
	}
}

func TestSession_NoSpreadsheetErrors(t *testing.T) {
	s := newTestSession(t, newTestStore(t))

	if err := s.SetColumnType(0, model.ColumnTypeIgnored); !errors.Is(err, ErrNoSpreadsheet) {
		t.Fatalf("got %v, want ErrNoSpreadsheet", err)
	}
	if _, err := s.RunMatcher(model.PairingModeRandom); !errors.Is(err, ErrNoSpreadsheet) {
		t.Fatalf("got %v, want ErrNoSpreadsheet", err)
	}
	if err := s.Finalize(); !errors.Is(err, ErrNoSpreadsheet) {
		t.Fatalf("got %v, want ErrNoSpreadsheet", err)
	}
}

func TestManager_CachesSessions(t *testing.T) {
	st := newTestStore(t)
	m := NewManager(st, testMatchingConfig(), rand.New(rand.NewSource(1)))

	a, err := m.Get("evt1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	b, err := m.Get("evt1")
	if err != nil {
		t.Fatalf("get session again: %v", err)
	}
	if a != b {
		t.Fatalf("same event must share one session instance")
	}

	m.Drop("evt1")
	c, err := m.Get("evt1")
	if err != nil {
		t.Fatalf("get session after drop: %v", err)
	}
	if c == a {
		t.Fatalf("drop should discard the cached session")
	}
}
