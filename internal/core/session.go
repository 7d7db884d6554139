package core

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"musicwizard/internal/chat"
)

// Session is one user's conversational context. It is only ever touched by
// that user's worker goroutine, so its fields need no locking.
type Session struct {
	UserID string
	ChatID string
	Locale string
	State  State
	Draft  *PlaylistDraft

	queue chan *chat.Event
}

// TurnFunc processes one inbound event against a session to completion.
type TurnFunc func(ctx context.Context, sess *Session, ev *chat.Event)

// SessionStore keys sessions by user identity and runs one worker goroutine
// per session, so turns within a session are strictly sequential while
// independent sessions progress concurrently.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session

	queueSize     int
	defaultLocale string
	handler       TurnFunc
	logger        *zap.Logger
}

func NewSessionStore(queueSize int, defaultLocale string, handler TurnFunc, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		sessions:      make(map[string]*Session),
		queueSize:     queueSize,
		defaultLocale: defaultLocale,
		handler:       handler,
		logger:        logger,
	}
}

// Dispatch enqueues an event onto its session's worker, creating the session
// on first contact. Events arriving while the queue is full are dropped, not
// interleaved with the in-flight turn.
func (st *SessionStore) Dispatch(ctx context.Context, ev *chat.Event) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[ev.UserID]
	if !ok {
		sess = &Session{
			UserID: ev.UserID,
			ChatID: ev.ChatID,
			Locale: st.defaultLocale,
			State:  StateChooseLanguage,
			queue:  make(chan *chat.Event, st.queueSize),
		}
		st.sessions[ev.UserID] = sess
		go st.run(ctx, sess)

		st.logger.Debug("Session created", zap.String("user_id", ev.UserID))
	}

	select {
	case sess.queue <- ev:
	default:
		st.logger.Warn("Session queue full, dropping event",
			zap.String("user_id", ev.UserID))
	}
}

// End removes a session and stops its worker once the queue drains.
func (st *SessionStore) End(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[userID]
	if !ok {
		return
	}

	delete(st.sessions, userID)
	close(sess.queue)

	st.logger.Debug("Session ended", zap.String("user_id", userID))
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) run(ctx context.Context, sess *Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sess.queue:
			if !ok {
				return
			}
			st.handler(ctx, sess, ev)
		}
	}
}
