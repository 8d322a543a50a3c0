package api

import "github.com/sirupsen/logrus"

type sseMessage struct {
	event string
	data  interface{}
}

// SSE 扇出按实时会话 ID 分组，一个会话可以挂多个下行连接。

func (h *HTTPHandler) registerSSEClient(sessionID string, ch chan sseMessage) {
	if h == nil || ch == nil || sessionID == "" {
		return
	}
	h.sseMu.Lock()
	defer h.sseMu.Unlock()

	if h.sseClients == nil {
		h.sseClients = make(map[string][]chan sseMessage)
	}
	h.sseClients[sessionID] = append(h.sseClients[sessionID], ch)
}

func (h *HTTPHandler) unregisterSSEClient(sessionID string, target chan sseMessage) {
	if h == nil || target == nil || sessionID == "" {
		return
	}
	h.sseMu.Lock()
	defer h.sseMu.Unlock()

	current := h.sseClients[sessionID]
	if len(current) == 0 {
		return
	}

	remaining := current[:0]
	for _, ch := range current {
		if ch == target {
			continue
		}
		remaining = append(remaining, ch)
	}

	if len(remaining) == 0 {
		delete(h.sseClients, sessionID)
		return
	}

	h.sseClients[sessionID] = remaining
}

func (h *HTTPHandler) publishSSEMessage(sessionID string, msg sseMessage) {
	if h == nil || sessionID == "" {
		return
	}

	h.sseMu.Lock()
	channels := append([]chan sseMessage(nil), h.sseClients[sessionID]...)
	h.sseMu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- msg:
		default:
			logrus.WithFields(logrus.Fields{
				"session_id": sessionID,
				"event":      msg.event,
			}).Warn("dropping sse message due to slow consumer")
		}
	}
}
