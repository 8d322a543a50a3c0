package api

import (
	"errors"
	"net/http"

	"memberhub/internal/entity"
	"memberhub/internal/progress"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ToggleLesson 打勾/撤销一节课的完成标记，返回新状态。
// 所属课程的等级门槛同样适用：摸不到的课也记不了进度。
func (h *HTTPHandler) ToggleLesson(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.ProgressToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	course, foundCourse := h.catalog.CourseForLesson(req.LessonID)
	if !foundCourse {
		NotFound(c, ErrCodeLessonNotFound, "lesson not found")
		return
	}
	if !entity.CanAccess(user.Role, course.MinRole) {
		Forbidden(c, ErrCodeTierRequired, "course requires a higher membership tier")
		return
	}

	completed, err := h.tracker.Toggle(c.Request.Context(), user.ID, req.LessonID)
	if err != nil {
		if errors.Is(err, progress.ErrUnknownLesson) {
			NotFound(c, ErrCodeLessonNotFound, "lesson not found")
			return
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":   user.ID,
			"lesson_id": req.LessonID,
		}).Error("failed to toggle lesson completion")
		InternalError(c, "failed to update progress")
		return
	}

	c.JSON(http.StatusOK, entity.ProgressToggleResponse{
		LessonID:  req.LessonID,
		Completed: completed,
	})
}

// GetProgressSummary 返回本人在可访问课程上的完成度汇总。
func (h *HTTPHandler) GetProgressSummary(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	summary, err := h.tracker.Summary(c.Request.Context(), user.ID, user.Role)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to build progress summary")
		InternalError(c, "failed to load progress")
		return
	}

	c.JSON(http.StatusOK, summary)
}
