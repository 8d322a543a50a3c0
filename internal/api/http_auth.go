package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"memberhub/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Login 按邮箱查找花名册条目，找不到时按请求的等级现场建档。
// 身份存储是演示用途的开放名册，不校验口令。
func (h *HTTPHandler) Login(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "member roster not available")
		return
	}

	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).WithField("email", email).Error("failed to load member for login")
			InternalError(c, "failed to sign in")
			return
		}

		// 首次登录：选择的等级只在建档时生效，之后的登录忽略该字段。
		role := entity.ParseRole(req.Role)
		if !entity.IsValidRole(role) {
			role = entity.RoleBasic
		}
		user = &entity.DbUser{
			Email:       email,
			DisplayName: displayNameFromEmail(email),
			Role:        role,
			JoinedAt:    time.Now().UTC(),
			Avatar:      defaultAvatarURL(email),
		}
		if err := h.repo.CreateUser(ctx, user); err != nil {
			logrus.WithError(err).WithField("email", email).Error("failed to create member on first login")
			InternalError(c, "failed to sign in")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"email":   email,
			"role":    role,
		}).Info("member created on first login")
	}

	h.respondWithSession(c, http.StatusOK, user)
}

// Register 建立新会员档案，始终从 BASIC 等级起步。
func (h *HTTPHandler) Register(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "member roster not available")
		return
	}

	var req entity.AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if name == "" {
		MissingField(c, "name")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.repo.GetUserByEmail(ctx, email); err == nil {
		Conflict(c, ErrCodeEmailExists, "email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).WithField("email", email).Error("failed to check existing member")
		InternalError(c, "failed to register")
		return
	}

	user := &entity.DbUser{
		Email:       email,
		DisplayName: name,
		Role:        entity.RoleBasic,
		JoinedAt:    time.Now().UTC(),
		Avatar:      defaultAvatarURL(email),
	}
	if err := h.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Conflict(c, ErrCodeEmailExists, "email already registered")
			return
		}
		logrus.WithError(err).WithField("email", email).Error("failed to create member")
		InternalError(c, "failed to register")
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   email,
	}).Info("member registered")
	h.respondWithSession(c, http.StatusCreated, user)
}

// Logout 注销是无状态的：客户端丢弃 token 即可，服务端无会话可清理。
func (h *HTTPHandler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Me 返回当前会员档案。
func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load member profile")
		InternalError(c, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, h.makeUserSummary(dbUser))
}

func (h *HTTPHandler) respondWithSession(c *gin.Context, status int, user *entity.DbUser) {
	token, expiresAt, err := h.authManager.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		InternalError(c, "failed to create session")
		return
	}

	c.JSON(status, entity.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      h.makeUserSummary(user),
	})
}

func (h *HTTPHandler) makeUserSummary(user *entity.DbUser) entity.UserSummary {
	if user == nil {
		return entity.UserSummary{}
	}
	return entity.UserSummary{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		JoinedAt:    user.JoinedAt,
		Avatar:      h.publicAvatarURL(user.Avatar),
		CreatedAt:   user.CreatedAt,
	}
}

// publicAvatarURL 把存储 key 转成可访问的 URL，外链头像原样返回。
func (h *HTTPHandler) publicAvatarURL(avatar string) string {
	trimmed := strings.TrimSpace(avatar)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	base := h.storagePublicBase
	if base == "" {
		base = "/files"
	}
	return base + "/" + strings.TrimLeft(trimmed, "/")
}

func displayNameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	if local == "" {
		return "member"
	}
	return local
}

func defaultAvatarURL(email string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", email)
}
