package productedit

import (
	"context"
	"sync"
	"time"

	"github.com/bizdesk/internal/logger"

	"github.com/google/uuid"
)

// SessionFactory 为新编辑页创建会话，notices 作为该会话的通知接收方
type SessionFactory func(notices *NoticeLog) *Session

type storedSession struct {
	session  *Session
	notices  *NoticeLog
	lastSeen time.Time
}

// Store 内存中的编辑会话表，空闲超过 ttl 的会话由 Sweep 关闭
type Store struct {
	mu       sync.Mutex
	sessions map[string]*storedSession
	ttl      time.Duration
	factory  SessionFactory
	now      func() time.Time
}

// NewStore 创建会话表
func NewStore(ttl time.Duration, factory SessionFactory) *Store {
	return &Store{
		sessions: make(map[string]*storedSession),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
	}
}

// Create 创建并登记新会话
func (s *Store) Create() (string, *Session, *NoticeLog) {
	notices := NewNoticeLog()
	session := s.factory(notices)
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &storedSession{session: session, notices: notices, lastSeen: s.now()}
	s.mu.Unlock()
	return id, session, notices
}

// Get 读取会话并刷新活跃时间
func (s *Store) Get(id string) (*Session, *NoticeLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, nil, false
	}
	entry.lastSeen = s.now()
	return entry.session, entry.notices, true
}

// Close 关闭并移除会话
func (s *Store) Close(id string) bool {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	entry.session.Close()
	return true
}

// Sweep 关闭所有过期会话，返回关闭数量
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	deadline := s.now().Add(-s.ttl)
	var expired []*Session

	s.mu.Lock()
	for id, entry := range s.sessions {
		if entry.lastSeen.Before(deadline) {
			expired = append(expired, entry.session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		session.Close()
	}
	if len(expired) > 0 {
		logger.Infow("console_sessions_expired", "count", len(expired))
	}
	return len(expired)
}

// Run 周期性清理，直到 ctx 结束
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// CloseAll 关闭全部会话
func (s *Store) CloseAll() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for id, entry := range s.sessions {
		sessions = append(sessions, entry.session)
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	for _, session := range sessions {
		session.Close()
	}
}

// Len 当前会话数
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
