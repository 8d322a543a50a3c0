package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"memberhub/internal/entity"
	"memberhub/internal/llm"
	"memberhub/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// 单次发言缓冲的音频帧上限，超出按入站顺序拒绝。
const liveMaxAudioFrames = 512

const liveTurnTimeout = 2 * time.Minute

// Live session event names pushed to the SSE stream.
const (
	LiveEventAudio       = "audio"
	LiveEventTurnDone    = "turn_complete"
	LiveEventInterrupted = "interrupted"
	LiveEventError       = "error"
)

var (
	ErrSessionNotFound = errors.New("live session not found")
	ErrSessionOwner    = errors.New("live session belongs to another member")
	ErrSessionBusy     = errors.New("previous turn is still being processed")
	ErrTurnEmpty       = errors.New("turn has no buffered audio")
	ErrFrameOverflow   = errors.New("audio buffer is full")
	ErrBadFrameKind    = errors.New("unsupported frame kind")
)

// liveSession 缓冲一个会员一次发言的媒体帧。
type liveSession struct {
	id     string
	userID uint

	mu       sync.Mutex
	audio    []string
	snapshot string
	busy     bool
}

// LiveService 实时辅导会话管理：会话建立、媒体帧缓冲、发言合成与打断。
type LiveService struct {
	backend llm.SpeechBackend

	mu       sync.Mutex
	sessions map[string]*liveSession

	// notifyFunc 把合成结果事件推给下行通道（由调用方设置，用于 SSE 推送）
	notifyFunc func(sessionID string, event string, data string)
}

// NewLiveService 创建实时会话服务实例。
func NewLiveService(backend llm.SpeechBackend) *LiveService {
	return &LiveService{
		backend:  backend,
		sessions: make(map[string]*liveSession),
	}
}

// SetNotifyFunc 设置事件通知函数（用于 SSE 推送）
func (s *LiveService) SetNotifyFunc(fn func(sessionID string, event string, data string)) {
	s.notifyFunc = fn
}

func (s *LiveService) notify(sessionID, event, data string) {
	if s.notifyFunc != nil {
		s.notifyFunc(sessionID, event, data)
	}
}

// CreateSession opens a fresh session for the member. A member holds at most
// one live session: any previous session is torn down first.
func (s *LiveService) CreateSession(userID uint) *entity.LiveSessionCreateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.userID == userID {
			delete(s.sessions, id)
		}
	}

	sess := &liveSession{
		id:     uuid.NewString(),
		userID: userID,
	}
	s.sessions[sess.id] = sess

	logrus.WithFields(logrus.Fields{
		"session_id": sess.id,
		"user_id":    userID,
	}).Info("live session created")
	return &entity.LiveSessionCreateResponse{SessionID: sess.id}
}

func (s *LiveService) lookup(sessionID string, userID uint) (*liveSession, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.userID != userID {
		return nil, ErrSessionOwner
	}
	return sess, nil
}

// PushFrame buffers one media frame. Audio frames accumulate in capture
// order; an image frame replaces the previous camera snapshot.
func (s *LiveService) PushFrame(sessionID string, userID uint, frame entity.LiveFrameRequest) error {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return err
	}

	data := strings.TrimSpace(frame.Data)
	if data == "" {
		return ErrBadFrameKind
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch frame.Kind {
	case entity.LiveFrameAudio:
		if len(sess.audio) >= liveMaxAudioFrames {
			return ErrFrameOverflow
		}
		sess.audio = append(sess.audio, data)
	case entity.LiveFrameImage:
		// 浏览器端常送 data URL，后端要的是裸 base64
		_, snapshot := utils.SplitDataURL(data)
		if strings.TrimSpace(snapshot) == "" {
			return ErrBadFrameKind
		}
		sess.snapshot = snapshot
	default:
		return ErrBadFrameKind
	}
	return nil
}

// EndTurn seals the buffered frames as one member utterance and synthesizes
// the spoken reply asynchronously. Results arrive through the notify
// function as audio events followed by turn_complete.
func (s *LiveService) EndTurn(sessionID string, userID uint) error {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.busy {
		sess.mu.Unlock()
		return ErrSessionBusy
	}
	if len(sess.audio) == 0 {
		sess.mu.Unlock()
		return ErrTurnEmpty
	}
	turn := llm.SpeechTurn{
		AudioFrames: sess.audio,
		Snapshot:    sess.snapshot,
	}
	sess.audio = nil
	sess.snapshot = ""
	sess.busy = true
	sess.mu.Unlock()

	go s.handleTurn(sess, turn)
	return nil
}

// handleTurn 处理一次发言合成的核心逻辑
func (s *LiveService) handleTurn(sess *liveSession, turn llm.SpeechTurn) {
	defer func() {
		sess.mu.Lock()
		sess.busy = false
		sess.mu.Unlock()
	}()

	logger := logrus.WithFields(logrus.Fields{
		"session_id":   sess.id,
		"user_id":      sess.userID,
		"audio_frames": len(turn.AudioFrames),
	})

	if s.backend == nil {
		logger.Warn("live speech backend not configured")
		s.notify(sess.id, LiveEventError, "live tutoring is not available right now")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), liveTurnTimeout)
	defer cancel()

	chunks, err := s.backend.GenerateSpeech(ctx, turn)
	if err != nil {
		logger.WithError(err).Error("live turn synthesis failed")
		s.notify(sess.id, LiveEventError, "live tutoring is not available right now")
		return
	}

	for _, chunk := range chunks {
		s.notify(sess.id, LiveEventAudio, chunk)
	}
	s.notify(sess.id, LiveEventTurnDone, "")
	logger.WithField("chunk_count", len(chunks)).Info("live turn completed")
}

// Interrupt discards the frames buffered so far and tells the downstream
// player to stop immediately.
func (s *LiveService) Interrupt(sessionID string, userID uint) error {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.audio = nil
	sess.snapshot = ""
	sess.mu.Unlock()

	s.notify(sessionID, LiveEventInterrupted, "")
	return nil
}

// CloseSession tears the session down and releases its buffers.
func (s *LiveService) CloseSession(sessionID string, userID uint) error {
	if _, err := s.lookup(sessionID, userID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"session_id": sessionID,
		"user_id":    userID,
	}).Info("live session closed")
	return nil
}
