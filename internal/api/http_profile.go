package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"memberhub/internal/entity"
	"memberhub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetProfile 返回当前会员的资料。
func (h *HTTPHandler) GetProfile(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load profile")
		InternalError(c, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, h.makeUserSummary(dbUser))
}

// UpdateProfile 更新当前会员的展示名或头像。
// 头像既接受 base64/data URL（上传到对象存储），也接受外链 URL。
// 等级不在本接口修改，升级只能走申请流程。
func (h *HTTPHandler) UpdateProfile(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	updates := entity.UserUpdates{}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			MissingField(c, "display_name")
			return
		}
		updates.DisplayName = &name
	}

	if req.Avatar != nil {
		avatar, ok := h.resolveAvatar(c, user.ID, *req.Avatar)
		if !ok {
			return
		}
		updates.Avatar = &avatar
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if !updates.IsEmpty() {
		if err := h.repo.UpdateUser(ctx, user.ID, updates); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Error("failed to update profile")
			InternalError(c, "failed to update profile")
			return
		}
	}

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to reload profile")
		InternalError(c, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, h.makeUserSummary(dbUser))
}

// UploadAvatar 只换头像，其他资料不动。
func (h *HTTPHandler) UploadAvatar(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	avatar, ok := h.resolveAvatar(c, user.ID, req.Avatar)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	updates := entity.UserUpdates{Avatar: &avatar}
	if err := h.repo.UpdateUser(ctx, user.ID, updates); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to update avatar")
		InternalError(c, "failed to update avatar")
		return
	}

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to reload profile")
		InternalError(c, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, h.makeUserSummary(dbUser))
}

// resolveAvatar 把头像输入转成可持久化的值。返回 false 时已写好错误响应。
func (h *HTTPHandler) resolveAvatar(c *gin.Context, userID uint, raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		MissingField(c, "avatar")
		return "", false
	}

	// 外链头像直接存 URL
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed, true
	}

	if h.storage == nil {
		ServiceUnavailable(c, "avatar storage not available")
		return "", false
	}

	data, ext, err := utils.DecodeMediaPayload(trimmed)
	if err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid avatar payload")
		return "", false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	key, err := h.storage.PutAvatar(ctx, userID, data, ext)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("failed to store avatar")
		InternalError(c, "failed to store avatar")
		return "", false
	}
	return key, true
}
