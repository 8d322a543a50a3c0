package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"memberhub/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListMembers 管理端分页列出花名册，可按等级过滤或按关键字搜索。
func (h *HTTPHandler) ListMembers(c *gin.Context) {
	var params entity.UserQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, meta, err := h.repo.ListUsers(ctx, &params)
	if err != nil {
		logrus.WithError(err).Error("failed to list members")
		InternalError(c, "failed to list members")
		return
	}

	summaries := make([]entity.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, h.makeUserSummary(&users[i]))
	}

	c.JSON(http.StatusOK, entity.UserListResponse{Users: summaries, Meta: meta})
}

// DeleteMember 将会员移出花名册并清掉其完成记录。
// 中间件每个请求都重查花名册，被删会员的 token 随之失效。
func (h *HTTPHandler) DeleteMember(c *gin.Context) {
	admin := CurrentUser(c)

	memberID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || memberID == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid member id")
		return
	}

	if admin != nil && admin.ID == uint(memberID) {
		BadRequest(c, ErrCodeCannotDeleteSelf, "cannot remove your own account")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.repo.DeleteUser(ctx, uint(memberID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeUserNotFound, "member not found")
			return
		}
		logrus.WithError(err).WithField("member_id", memberID).Error("failed to delete member")
		InternalError(c, "failed to delete member")
		return
	}

	if err := h.tracker.Forget(ctx, uint(memberID)); err != nil {
		// 完成记录清理失败不影响删除结果，留日志排查
		logrus.WithError(err).WithField("member_id", memberID).Warn("failed to clear completions for deleted member")
	}

	logrus.WithFields(logrus.Fields{
		"member_id":  memberID,
		"deleted_by": admin.ID,
	}).Info("member removed from roster")
	c.Status(http.StatusNoContent)
}

// AdminStats 管理后台头部统计。
func (h *HTTPHandler) AdminStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	totalMembers, err := h.repo.CountUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count members")
		InternalError(c, "failed to load stats")
		return
	}

	pendingUpgrades, err := h.repo.CountUpgradeRequests(ctx, entity.UpgradeStatusPending)
	if err != nil {
		logrus.WithError(err).Error("failed to count pending upgrade requests")
		InternalError(c, "failed to load stats")
		return
	}

	c.JSON(http.StatusOK, entity.AdminStatsResponse{
		TotalMembers:    totalMembers,
		TotalCourses:    h.catalog.Len(),
		PendingUpgrades: pendingUpgrades,
	})
}
