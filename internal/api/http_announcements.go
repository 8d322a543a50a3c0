package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"memberhub/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ListAnnouncements 返回公告，最新在前。limit=0 表示全部。
func (h *HTTPHandler) ListAnnouncements(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			BadRequest(c, ErrCodeInvalidRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	announcements, err := h.repo.ListAnnouncements(ctx, limit)
	if err != nil {
		logrus.WithError(err).Error("failed to list announcements")
		InternalError(c, "failed to load announcements")
		return
	}

	c.JSON(http.StatusOK, entity.AnnouncementListResponse{Announcements: announcements})
}

// CreateAnnouncement 发布一条公告（管理端）。
func (h *HTTPHandler) CreateAnnouncement(c *gin.Context) {
	var req entity.AnnouncementCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	priority := entity.ParseAnnouncementPriority(req.Priority)
	if priority == "" {
		if strings.TrimSpace(req.Priority) != "" {
			BadRequest(c, ErrCodeInvalidRequest, "priority must be low, medium or high")
			return
		}
		priority = entity.AnnouncementPriorityMedium
	}

	announcement := &entity.DbAnnouncement{
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Priority: priority,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateAnnouncement(ctx, announcement); err != nil {
		logrus.WithError(err).Error("failed to create announcement")
		InternalError(c, "failed to create announcement")
		return
	}

	user := CurrentUser(c)
	logrus.WithFields(logrus.Fields{
		"announcement_id": announcement.ID,
		"priority":        announcement.Priority,
		"created_by":      user.ID,
	}).Info("announcement published")

	c.JSON(http.StatusCreated, announcement)
}
