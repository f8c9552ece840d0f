// Package session 主持设置流程：上传、列确认、过滤去重、配对、定稿
// 会话独占持有工作中的映射与元数据，所有匹配调用经互斥锁串行化，
// 保证同一会话同一时刻至多一次配对计算在进行
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"deckmate/internal/config"
	"deckmate/internal/matcher"
	"deckmate/internal/model"
	"deckmate/internal/parser"
	"deckmate/internal/store"
)

var (
	// ErrFinalized 元数据已冻结，编辑前需显式重新进入设置模式
	ErrFinalized = errors.New("spreadsheet metadata is finalized")
	// ErrNoSpreadsheet 会话还没有导入数据
	ErrNoSpreadsheet = errors.New("no spreadsheet imported")
)

// Session 单个赛事的对账会话
type Session struct {
	mu sync.Mutex

	eventID string
	store   *store.Store
	cfg     config.MatchingConfig
	rng     *rand.Rand

	players []model.Player
	meta    *model.SpreadsheetMetadata
	rawRows [][]string

	mapping      model.Mapping
	savedMapping model.Mapping // 上次持久化的版本，用于未保存变更提示

	strategyChosen bool
}

// New 创建会话并从存储加载既有状态
// rng 为空时随机匹配用时间种子
func New(eventID string, st *store.Store, cfg config.MatchingConfig, rng *rand.Rand) (*Session, error) {
	s := &Session{
		eventID: eventID,
		store:   st,
		cfg:     cfg,
		rng:     rng,
		mapping: model.Mapping{},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load 从存储恢复名单、元数据、原始行与映射
func (s *Session) load() error {
	players, err := s.store.GetPlayers(s.eventID)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	s.players = players

	meta, err := s.store.GetSpreadsheetMeta(s.eventID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load spreadsheet meta: %w", err)
	}
	if meta != nil {
		s.meta = meta
		s.strategyChosen = meta.Finalized
		rawRows, err := s.store.GetRawRows(s.eventID)
		if err != nil {
			return fmt.Errorf("load raw rows: %w", err)
		}
		s.rawRows = rawRows
	}

	mapping, err := s.store.GetMapping(s.eventID)
	if err != nil {
		return fmt.Errorf("load mapping: %w", err)
	}
	s.mapping = mapping
	s.savedMapping = mapping.Clone()
	return nil
}

// EventID 会话所属赛事
func (s *Session) EventID() string { return s.eventID }

// SetPlayers 更新名单（抓取子系统推送后调用）
func (s *Session) SetPlayers(players []model.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = players
}

// Players 当前名单
func (s *Session) Players() []model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players
}

// ApplyImport 接收导入结果，重置上传步骤之后的工作状态
// 已冻结的会话拒绝导入
func (s *Session) ApplyImport(meta *model.SpreadsheetMetadata, rawRows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta != nil && s.meta.Finalized {
		return ErrFinalized
	}

	// 重新上传时保留用户已手工指定的列类型
	if s.meta != nil {
		meta.Columns = parser.MergeUserColumns(meta.Columns, s.meta.Columns)
	}
	s.meta = meta
	s.rawRows = rawRows
	s.strategyChosen = false
	return nil
}

// Meta 当前元数据的深拷贝
// 调用方在锁外持有返回值，必须与会话内部状态隔离
func (s *Session) Meta() *model.SpreadsheetMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.Clone()
}

// Rows 当前规范化行（过滤 + 投影 + 去重后的结果）
func (s *Session) Rows() []model.SpreadsheetRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowsLocked()
}

func (s *Session) rowsLocked() []model.SpreadsheetRow {
	if s.meta == nil {
		return nil
	}
	return parser.Normalize(s.rawRows, s.meta)
}

// SetColumnType 用户手工指定列类型
// 指定唯一标识列时，原唯一标识列降级为通用数据列，维持至多一个的约束
func (s *Session) SetColumnType(index int, t model.ColumnType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta == nil {
		return ErrNoSpreadsheet
	}
	if s.meta.Finalized {
		return ErrFinalized
	}
	if index < 0 || index >= len(s.meta.Columns) {
		return fmt.Errorf("column index %d out of range", index)
	}

	if t == model.ColumnTypeUniqueID {
		for i := range s.meta.Columns {
			if i != index && s.meta.Columns[i].Type == model.ColumnTypeUniqueID {
				s.meta.Columns[i].Type = model.ColumnTypePlayerData
			}
		}
	}
	s.meta.Columns[index].Type = t
	s.meta.Columns[index].UserSet = true
	return nil
}

// SetFilters 更新行过滤器
func (s *Session) SetFilters(filters []model.SpreadsheetFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta == nil {
		return ErrNoSpreadsheet
	}
	if s.meta.Finalized {
		return ErrFinalized
	}
	s.meta.Filters = filters
	return nil
}

// SetDuplicateStrategy 选择重复行处理策略
func (s *Session) SetDuplicateStrategy(strategy model.DuplicateStrategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta == nil {
		return ErrNoSpreadsheet
	}
	if s.meta.Finalized {
		return ErrFinalized
	}
	if strategy != model.DuplicateKeepFirst && strategy != model.DuplicateKeepLast {
		return fmt.Errorf("unknown duplicate strategy: %s", strategy)
	}
	s.meta.DuplicateStrategy = strategy
	s.strategyChosen = true
	return nil
}

// RunMatcher 执行一轮自动配对，返回本轮引起的映射变化数
// 已有条目（含手工条目）原样保留，匹配器只填充空位
func (s *Session) RunMatcher(mode model.PairingMode) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta == nil {
		return 0, ErrNoSpreadsheet
	}

	m, err := matcher.ForMode(mode, matcher.Options{
		Rand:                 s.rng,
		LevenshteinThreshold: s.cfg.LevenshteinThreshold,
	})
	if err != nil {
		return 0, err
	}

	before := s.mapping
	s.mapping = m.Match(s.players, s.rowsLocked(), before)
	return model.CountDiff(before, s.mapping), nil
}

// AssignManual 手工配对一名选手
func (s *Session) AssignManual(playerID, rowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta == nil {
		return ErrNoSpreadsheet
	}
	if !s.hasRowLocked(rowID) {
		return fmt.Errorf("row %s not found", rowID)
	}
	if !s.hasPlayerLocked(playerID) {
		return fmt.Errorf("player %s not found", playerID)
	}
	s.mapping = matcher.Assign(s.mapping, playerID, rowID)
	return nil
}

// Unassign 解除一名选手的配对
func (s *Session) Unassign(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapping = matcher.Unassign(s.mapping, playerID)
}

// Mapping 当前映射的副本
func (s *Session) Mapping() model.Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapping.Clone()
}

// Status 计算会话状态快照
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	st := Status{
		PendingChanges: model.CountDiff(s.savedMapping, s.mapping),
	}
	if s.meta == nil {
		return st
	}

	st.HasData = len(s.rawRows) > 0
	st.Finalized = s.meta.Finalized
	st.IsMappingComplete = s.columnsUsableLocked()
	st.HasDuplicates = !s.strategyChosen && parser.HasDuplicates(s.rawRows, s.meta)

	if st.HasData && len(s.players) > 0 {
		st.HasAllPairings = true
		for _, p := range s.players {
			if _, ok := s.mapping[p.ID]; !ok {
				st.HasAllPairings = false
				break
			}
		}
	}
	return st
}

// columnsUsableLocked 列类型是否足以支撑匹配：
// 有唯一标识列，或同时有姓名两列
func (s *Session) columnsUsableLocked() bool {
	if s.meta.UniqueIDColumn() != nil {
		return true
	}
	hasFirst := len(s.meta.ColumnsOfType(model.ColumnTypeFirstName)) > 0
	hasLast := len(s.meta.ColumnsOfType(model.ColumnTypeLastName)) > 0
	return hasFirst && hasLast
}

// Steps 各步骤完成与可进入状态
func (s *Session) Steps() []StepState {
	return StepStates(s.Status())
}

// Save 持久化元数据、原始行与映射
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Session) saveLocked() error {
	if s.meta != nil {
		if err := s.store.SaveSpreadsheet(s.meta, s.rawRows); err != nil {
			return err
		}
	}
	if err := s.store.SaveMapping(s.eventID, s.mapping); err != nil {
		return err
	}
	s.savedMapping = s.mapping.Clone()
	return nil
}

// Finalize 冻结元数据并落盘规范化行
// 冻结后行规范化确定且可复现，下游取牌流程可以开始
func (s *Session) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta == nil {
		return ErrNoSpreadsheet
	}

	// 先落规范化行，再持久化冻结标记
	// 任一步失败都回退标记，不留下已冻结却没有行数据的半截状态
	s.meta.Finalized = true
	if err := s.store.ReplaceNormalizedRows(s.eventID, s.rowsLocked()); err != nil {
		s.meta.Finalized = false
		return err
	}
	if err := s.saveLocked(); err != nil {
		s.meta.Finalized = false
		return err
	}
	return nil
}

// Reopen 重新进入设置模式，解冻元数据，所有步骤重新开放编辑
func (s *Session) Reopen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta == nil {
		return ErrNoSpreadsheet
	}
	s.meta.Finalized = false
	return s.store.UpdateSpreadsheetMeta(s.meta)
}

func (s *Session) hasRowLocked(rowID string) bool {
	for _, r := range s.rowsLocked() {
		if r.ID == rowID {
			return true
		}
	}
	return false
}

func (s *Session) hasPlayerLocked(playerID string) bool {
	for _, p := range s.players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
