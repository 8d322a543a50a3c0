package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"memberhub/internal/entity"
	"memberhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SubmitUpgrade 提交升级申请。路由白名单已挡掉 LEADERSHIP，
// 服务层再验一次目标等级与待审申请唯一性。
func (h *HTTPHandler) SubmitUpgrade(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.UpgradeSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load member for upgrade")
		InternalError(c, "failed to submit upgrade request")
		return
	}

	request, err := h.upgradeService.Submit(ctx, dbUser, req.RequestedRole)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUpgradePending):
			Conflict(c, ErrCodeUpgradePending, "an upgrade request is already pending")
		case errors.Is(err, service.ErrUpgradeNotEligible):
			BadRequest(c, ErrCodeNotEligible, "requested role is not an upgrade")
		default:
			logrus.WithError(err).WithField("user_id", user.ID).Error("failed to submit upgrade request")
			InternalError(c, "failed to submit upgrade request")
		}
		return
	}

	c.JSON(http.StatusCreated, request)
}

// MyUpgradeRequest 返回本人的待审申请，没有则为 null。
func (h *HTTPHandler) MyUpgradeRequest(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	pending, err := h.upgradeService.PendingFor(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load pending upgrade request")
		InternalError(c, "failed to load upgrade request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": pending})
}

// ListUpgradeRequests 管理端按时间倒序列出申请，可按状态过滤。
func (h *HTTPHandler) ListUpgradeRequests(c *gin.Context) {
	var params entity.UpgradeRequestQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.upgradeService.List(ctx, &params)
	if err != nil {
		logrus.WithError(err).Error("failed to list upgrade requests")
		InternalError(c, "failed to list upgrade requests")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ResolveUpgrade 管理端审批一条申请。重复审批返回 409。
func (h *HTTPHandler) ResolveUpgrade(c *gin.Context) {
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || requestID == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid request id")
		return
	}

	var req entity.UpgradeResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	request, err := h.upgradeService.Resolve(ctx, uint(requestID), req.Decision)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadDecision):
			BadRequest(c, ErrCodeInvalidRequest, "decision must be approve or reject")
		case errors.Is(err, service.ErrUpgradeNotFound):
			NotFound(c, ErrCodeRequestNotFound, "upgrade request not found")
		case errors.Is(err, service.ErrUpgradeResolved):
			Conflict(c, ErrCodeUpgradeConflict, "upgrade request is already resolved")
		default:
			logrus.WithError(err).WithField("request_id", requestID).Error("failed to resolve upgrade request")
			InternalError(c, "failed to resolve upgrade request")
		}
		return
	}

	c.JSON(http.StatusOK, request)
}
