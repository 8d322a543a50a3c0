package api

import (
	"context"
	"net/http"
	"time"

	"memberhub/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 仪表盘展示最近几条公告即可。
const dashboardAnnouncementLimit = 5

// Dashboard 聚合会员首页需要的数据：档案、课程卡片、完成度、
// 最新公告和待审的升级申请。
func (h *HTTPHandler) Dashboard(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load member for dashboard")
		InternalError(c, "failed to load dashboard")
		return
	}

	completed, err := h.tracker.CompletionSet(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load completion set")
		InternalError(c, "failed to load dashboard")
		return
	}

	courses := h.catalog.Courses()
	summaries := make([]entity.CourseSummary, 0, len(courses))
	totalCompleted := 0
	for i := range courses {
		summary := makeCourseSummary(&courses[i], user.Role, completed)
		summaries = append(summaries, summary)
		if !summary.Accessible {
			continue
		}
		for _, lesson := range courses[i].Lessons {
			if _, ok := completed[lesson.ID]; ok {
				totalCompleted++
			}
		}
	}

	announcements, err := h.repo.ListAnnouncements(ctx, dashboardAnnouncementLimit)
	if err != nil {
		logrus.WithError(err).Error("failed to list announcements for dashboard")
		InternalError(c, "failed to load dashboard")
		return
	}

	pending, err := h.upgradeService.PendingFor(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load pending upgrade for dashboard")
		InternalError(c, "failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, entity.DashboardResponse{
		User:           h.makeUserSummary(dbUser),
		Courses:        summaries,
		TotalCompleted: totalCompleted,
		Announcements:  announcements,
		PendingUpgrade: pending,
	})
}
