package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"memberhub/internal/entity"
	"memberhub/internal/llm"
)

type fakeSpeechBackend struct {
	mu    sync.Mutex
	turns []llm.SpeechTurn

	chunks []string
	err    error
}

func (f *fakeSpeechBackend) GenerateSpeech(ctx context.Context, turn llm.SpeechTurn) ([]string, error) {
	f.mu.Lock()
	f.turns = append(f.turns, turn)
	f.mu.Unlock()
	return f.chunks, f.err
}

type liveEvent struct {
	sessionID string
	event     string
	data      string
}

// eventCollector 收集通知事件，turn_complete / error 时发信号。
type eventCollector struct {
	mu     sync.Mutex
	events []liveEvent
	done   chan struct{}
}

func newEventCollector() *eventCollector {
	return &eventCollector{done: make(chan struct{}, 4)}
}

func (c *eventCollector) notify(sessionID, event, data string) {
	c.mu.Lock()
	c.events = append(c.events, liveEvent{sessionID: sessionID, event: event, data: data})
	c.mu.Unlock()
	if event == LiveEventTurnDone || event == LiveEventError {
		c.done <- struct{}{}
	}
}

func (c *eventCollector) wait(t *testing.T) []liveEvent {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for turn events")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]liveEvent(nil), c.events...)
}

func TestLiveSessionTurn(t *testing.T) {
	backend := &fakeSpeechBackend{chunks: []string{"AAA", "BBB"}}
	collector := newEventCollector()
	svc := NewLiveService(backend)
	svc.SetNotifyFunc(collector.notify)

	created := svc.CreateSession(42)
	if created.SessionID == "" {
		t.Fatal("expected a session id")
	}

	frames := []entity.LiveFrameRequest{
		{Kind: entity.LiveFrameAudio, Data: "frame1"},
		{Kind: entity.LiveFrameAudio, Data: "frame2"},
		{Kind: entity.LiveFrameImage, Data: "snap1"},
		{Kind: entity.LiveFrameImage, Data: "data:image/jpeg;base64,snap2"},
	}
	for _, frame := range frames {
		if err := svc.PushFrame(created.SessionID, 42, frame); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := svc.EndTurn(created.SessionID, 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := collector.wait(t)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %#v", events)
	}
	if events[0].event != LiveEventAudio || events[0].data != "AAA" {
		t.Fatalf("unexpected first event: %#v", events[0])
	}
	if events[2].event != LiveEventTurnDone {
		t.Fatalf("expected turn_complete last, got %#v", events[2])
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.turns) != 1 {
		t.Fatalf("expected 1 synthesized turn, got %d", len(backend.turns))
	}
	turn := backend.turns[0]
	if len(turn.AudioFrames) != 2 || turn.AudioFrames[0] != "frame1" {
		t.Fatalf("audio frames must keep capture order: %#v", turn.AudioFrames)
	}
	if turn.Snapshot != "snap2" {
		t.Fatalf("latest snapshot must win and data URL prefixes must be stripped, got %q", turn.Snapshot)
	}
}

func TestLiveSessionTurnFailure(t *testing.T) {
	backend := &fakeSpeechBackend{err: errors.New("upstream down")}
	collector := newEventCollector()
	svc := NewLiveService(backend)
	svc.SetNotifyFunc(collector.notify)

	created := svc.CreateSession(1)
	if err := svc.PushFrame(created.SessionID, 1, entity.LiveFrameRequest{Kind: entity.LiveFrameAudio, Data: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.EndTurn(created.SessionID, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := collector.wait(t)
	if len(events) != 1 || events[0].event != LiveEventError {
		t.Fatalf("expected a single error event, got %#v", events)
	}
}

func TestLiveSessionGuards(t *testing.T) {
	svc := NewLiveService(&fakeSpeechBackend{})
	created := svc.CreateSession(1)

	if err := svc.PushFrame("missing", 1, entity.LiveFrameRequest{Kind: entity.LiveFrameAudio, Data: "x"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.PushFrame(created.SessionID, 2, entity.LiveFrameRequest{Kind: entity.LiveFrameAudio, Data: "x"}); !errors.Is(err, ErrSessionOwner) {
		t.Fatalf("expected ErrSessionOwner, got %v", err)
	}
	if err := svc.PushFrame(created.SessionID, 1, entity.LiveFrameRequest{Kind: "video", Data: "x"}); !errors.Is(err, ErrBadFrameKind) {
		t.Fatalf("expected ErrBadFrameKind, got %v", err)
	}
	if err := svc.PushFrame(created.SessionID, 1, entity.LiveFrameRequest{Kind: entity.LiveFrameImage, Data: "data:image/png;base64"}); !errors.Is(err, ErrBadFrameKind) {
		t.Fatalf("expected ErrBadFrameKind for an empty snapshot payload, got %v", err)
	}
	if err := svc.EndTurn(created.SessionID, 1); !errors.Is(err, ErrTurnEmpty) {
		t.Fatalf("expected ErrTurnEmpty, got %v", err)
	}
}

func TestLiveSessionInterruptFlushesBuffers(t *testing.T) {
	backend := &fakeSpeechBackend{chunks: []string{"AAA"}}
	collector := newEventCollector()
	svc := NewLiveService(backend)
	svc.SetNotifyFunc(collector.notify)

	created := svc.CreateSession(1)
	if err := svc.PushFrame(created.SessionID, 1, entity.LiveFrameRequest{Kind: entity.LiveFrameAudio, Data: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Interrupt(created.SessionID, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	collector.mu.Lock()
	if len(collector.events) != 1 || collector.events[0].event != LiveEventInterrupted {
		t.Fatalf("expected interrupted event, got %#v", collector.events)
	}
	collector.mu.Unlock()

	// 打断后缓冲应为空，结束发言必须报 ErrTurnEmpty。
	if err := svc.EndTurn(created.SessionID, 1); !errors.Is(err, ErrTurnEmpty) {
		t.Fatalf("expected ErrTurnEmpty after interrupt, got %v", err)
	}
}

func TestLiveSessionReplacedAndClosed(t *testing.T) {
	svc := NewLiveService(&fakeSpeechBackend{})

	first := svc.CreateSession(5)
	second := svc.CreateSession(5)
	if err := svc.PushFrame(first.SessionID, 5, entity.LiveFrameRequest{Kind: entity.LiveFrameAudio, Data: "x"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("creating a new session must tear down the old one, got %v", err)
	}

	if err := svc.CloseSession(second.SessionID, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.CloseSession(second.SessionID, 5); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
