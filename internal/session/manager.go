package session

import (
	"math/rand"
	"sync"

	"deckmate/internal/config"
	"deckmate/internal/store"
)

// Manager 按赛事缓存对账会话
// 同一赛事的请求共享同一个会话实例，保证映射只有一个持有者
type Manager struct {
	mu       sync.Mutex
	store    *store.Store
	cfg      config.MatchingConfig
	rng      *rand.Rand
	sessions map[string]*Session
}

// NewManager 创建会话管理器
func NewManager(st *store.Store, cfg config.MatchingConfig, rng *rand.Rand) *Manager {
	return &Manager{
		store:    st,
		cfg:      cfg,
		rng:      rng,
		sessions: make(map[string]*Session),
	}
}

// Get 取得赛事的会话，首次访问时从存储加载
func (m *Manager) Get(eventID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[eventID]; ok {
		return s, nil
	}
	s, err := New(eventID, m.store, m.cfg, m.rng)
	if err != nil {
		return nil, err
	}
	m.sessions[eventID] = s
	return s, nil
}

// Drop 丢弃赛事的内存会话（测试与赛事删除用）
func (m *Manager) Drop(eventID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, eventID)
}
