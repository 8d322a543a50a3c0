package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"memberhub/internal/entity"
	"memberhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AskTutor 针对某节课向辅导助手提问。上游故障以兜底回答的形式
// 返回 200，绝不把原始错误抛给会员。
func (h *HTTPHandler) AskTutor(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.TutorAskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	course, _, ok := h.catalog.Lesson(req.CourseID, req.LessonID)
	if !ok {
		NotFound(c, ErrCodeLessonNotFound, "lesson not found")
		return
	}
	if !entity.CanAccess(user.Role, course.MinRole) {
		Forbidden(c, ErrCodeTierRequired, "course requires a higher membership tier")
		return
	}

	resp, err := h.tutorService.Ask(c.Request.Context(), user.ID, req)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			NotFound(c, ErrCodeLessonNotFound, "lesson not found")
			return
		}
		logrus.WithError(err).WithField("user_id", user.ID).Error("tutor ask failed")
		InternalError(c, "failed to answer question")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateLiveSession 开启实时辅导会话。
func (h *HTTPHandler) CreateLiveSession(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	c.JSON(http.StatusCreated, h.liveService.CreateSession(user.ID))
}

// PushLiveFrame 上行一帧音频或摄像头快照。
func (h *HTTPHandler) PushLiveFrame(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.LiveFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	sessionID := c.Param("sessionID")
	if err := h.liveService.PushFrame(sessionID, user.ID, req); err != nil {
		h.respondLiveError(c, sessionID, err)
		return
	}

	c.JSON(http.StatusAccepted, entity.LiveTurnResponse{SessionID: sessionID, Accepted: true})
}

// EndLiveTurn 宣告一次发言结束，触发异步合成。
func (h *HTTPHandler) EndLiveTurn(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	sessionID := c.Param("sessionID")
	if err := h.liveService.EndTurn(sessionID, user.ID); err != nil {
		h.respondLiveError(c, sessionID, err)
		return
	}

	c.JSON(http.StatusAccepted, entity.LiveTurnResponse{SessionID: sessionID, Accepted: true})
}

// InterruptLive 打断当前回合，清空缓冲。
func (h *HTTPHandler) InterruptLive(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	sessionID := c.Param("sessionID")
	if err := h.liveService.Interrupt(sessionID, user.ID); err != nil {
		h.respondLiveError(c, sessionID, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CloseLiveSession 结束会话并释放缓冲。
func (h *HTTPHandler) CloseLiveSession(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	sessionID := c.Param("sessionID")
	if err := h.liveService.CloseSession(sessionID, user.ID); err != nil {
		h.respondLiveError(c, sessionID, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) respondLiveError(c *gin.Context, sessionID string, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		NotFound(c, ErrCodeSessionNotFound, "live session not found")
	case errors.Is(err, service.ErrSessionOwner):
		Forbidden(c, ErrCodeForbidden, "live session belongs to another member")
	case errors.Is(err, service.ErrSessionBusy):
		Conflict(c, ErrCodeInvalidRequest, "previous turn is still being processed")
	case errors.Is(err, service.ErrTurnEmpty):
		BadRequest(c, ErrCodeInvalidRequest, "turn has no buffered audio")
	case errors.Is(err, service.ErrFrameOverflow):
		BadRequest(c, ErrCodeInvalidRequest, "audio buffer is full")
	case errors.Is(err, service.ErrBadFrameKind):
		BadRequest(c, ErrCodeInvalidRequest, "frame kind must be audio or image")
	default:
		logrus.WithError(err).WithField("session_id", sessionID).Error("live session operation failed")
		InternalError(c, "live session operation failed")
	}
}

// StreamLiveEvents 实时会话的下行 SSE 通道：合成音频分片、回合结束、
// 打断与错误事件都从这里推送。
func (h *HTTPHandler) StreamLiveEvents(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	sessionID := strings.TrimSpace(c.Param("sessionID"))
	if sessionID == "" {
		BadRequest(c, ErrCodeInvalidRequest, "session id is required")
		return
	}

	ctx := c.Request.Context()
	events := make(chan sseMessage, 16)
	h.registerSSEClient(sessionID, events)
	defer h.unregisterSSEClient(sessionID, events)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	if flusher, ok := c.Writer.(http.Flusher); ok {
		flusher.Flush()
	}

	heartbeatTicker := time.NewTicker(10 * time.Second)
	defer heartbeatTicker.Stop()

	logrus.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"session_id": sessionID,
	}).Info("live sse connected")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			logrus.WithFields(logrus.Fields{
				"user_id":    user.ID,
				"session_id": sessionID,
			}).Info("live sse disconnected")
			return false
		case <-heartbeatTicker.C:
			c.SSEvent("ping", gin.H{"ts": time.Now().UnixMilli()})
			return true
		case msg, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(msg.event, msg.data)
			return true
		}
	})
}
