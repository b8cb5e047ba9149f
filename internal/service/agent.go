package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"skybridge/internal/metrics"
	"skybridge/internal/model"
	"skybridge/internal/repository"
)

// ErrFillLogDisabled is returned when no confirmed-fill log is configured
var ErrFillLogDisabled = errors.New("fill log disabled")

const (
	fillLogTimeout   = 3 * time.Second
	defaultFillLimit = 20
	maxFillLimit     = 200
)

// SessionStore persists dialogue state between turns
type SessionStore interface {
	// Get returns repository.ErrSessionNotFound for unknown or expired sessions
	Get(ctx context.Context, sessionID string) (model.SessionState, error)
	Save(ctx context.Context, state model.SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

// FillLog records committed field sets
type FillLog interface {
	LogConfirmedFill(ctx context.Context, rec *model.ConfirmedFillRecord) error
	ListRecent(ctx context.Context, limit int) ([]model.ConfirmedFillRecord, error)
}

// AgentOption configures an AgentService
type AgentOption func(*AgentService)

// WithFillLog enables the confirmed-fill audit log
func WithFillLog(log FillLog) AgentOption {
	return func(s *AgentService) { s.fills = log }
}

// WithAgentLogger sets the service logger
func WithAgentLogger(logger *zap.Logger) AgentOption {
	return func(s *AgentService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionIDGenerator replaces the UUID generator
func WithSessionIDGenerator(gen func() string) AgentOption {
	return func(s *AgentService) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// AgentService runs dialogue turns against stored sessions
type AgentService struct {
	engine   *Engine
	sessions SessionStore
	fills    FillLog
	logger   *zap.Logger
	locks    *sessionLocks
	newID    func() string
}

// NewAgentService creates the agent service. A nil store makes every turn rely on
// the context sent by the client.
func NewAgentService(engine *Engine, sessions SessionStore, opts ...AgentOption) *AgentService {
	s := &AgentService{
		engine:   engine,
		sessions: sessions,
		logger:   zap.NewNop(),
		locks:    newSessionLocks(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleTurn processes one request and returns the reply and the session id used.
// Turns for the same session are serialized.
func (s *AgentService) HandleTurn(ctx context.Context, req model.TurnRequest) (model.Response, string) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = s.newID()
	}

	message, ok := req.Text()
	if !ok || strings.TrimSpace(message) == "" {
		s.logger.Debug("malformed turn", zap.String("session_id", sessionID))
		resp := MalformedRequest()
		metrics.TurnsTotal.WithLabelValues(string(resp.Type())).Inc()
		return resp, sessionID
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	state := s.load(ctx, sessionID)
	if req.Context != nil {
		state = state.WithContext(*req.Context)
	}

	resp, next := s.engine.Turn(ctx, message, state)
	s.save(ctx, next)

	if fill, ok := resp.(model.ConfirmedFill); ok {
		s.recordFill(ctx, sessionID, fill.ProposedFields)
	}

	metrics.TurnsTotal.WithLabelValues(string(resp.Type())).Inc()
	s.logger.Info("turn completed",
		zap.String("session_id", sessionID),
		zap.String("type", string(resp.Type())),
		zap.String("phase", string(next.Phase())),
	)
	return resp, sessionID
}

// Session returns the stored state of a session
func (s *AgentService) Session(ctx context.Context, sessionID string) (model.SessionState, error) {
	if s.sessions == nil {
		return model.SessionState{}, repository.ErrSessionNotFound
	}
	return s.sessions.Get(ctx, sessionID)
}

// ResetSession forgets a session
func (s *AgentService) ResetSession(ctx context.Context, sessionID string) error {
	if s.sessions == nil {
		return nil
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.sessions.Delete(ctx, sessionID)
}

// RecentFills lists the latest confirmed fills, newest first
func (s *AgentService) RecentFills(ctx context.Context, limit int) ([]model.ConfirmedFillRecord, error) {
	if s.fills == nil {
		return nil, ErrFillLogDisabled
	}
	if limit <= 0 {
		limit = defaultFillLimit
	}
	if limit > maxFillLimit {
		limit = maxFillLimit
	}
	return s.fills.ListRecent(ctx, limit)
}

func (s *AgentService) load(ctx context.Context, sessionID string) model.SessionState {
	if s.sessions == nil {
		return model.NewSessionState(sessionID)
	}
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			s.logger.Warn("failed to load session, starting fresh", zap.String("session_id", sessionID), zap.Error(err))
		}
		return model.NewSessionState(sessionID)
	}
	return state
}

func (s *AgentService) save(ctx context.Context, state model.SessionState) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Save(ctx, state); err != nil {
		s.logger.Warn("failed to save session", zap.String("session_id", state.SessionID), zap.Error(err))
	}
}

// recordFill writes the audit entry. Failures never affect the reply.
func (s *AgentService) recordFill(ctx context.Context, sessionID string, fields model.BookingFields) {
	trip := "unknown"
	if fields.TripType != nil {
		trip = string(*fields.TripType)
	}
	metrics.ConfirmedFillsTotal.WithLabelValues(trip).Inc()

	if s.fills == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillLogTimeout)
	defer cancel()

	rec := model.NewConfirmedFillRecord(sessionID, fields, time.Now().UTC())
	if err := s.fills.LogConfirmedFill(ctx, &rec); err != nil {
		s.logger.Warn("failed to log confirmed fill", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// sessionLocks hands out one mutex per session id and frees it when unused
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
