package service

import (
	"context"
	"errors"
	"strings"

	"memberhub/internal/entity"
	"memberhub/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrUpgradePending 该会员已有一条待审批的升级申请。
	ErrUpgradePending = errors.New("an upgrade request is already pending")
	// ErrUpgradeNotEligible 申请的目标等级不高于当前等级或不存在。
	ErrUpgradeNotEligible = errors.New("requested role is not an upgrade")
	// ErrUpgradeResolved 申请已进入终态，不可再次审批。
	ErrUpgradeResolved = errors.New("upgrade request is already resolved")
	// ErrUpgradeNotFound 申请不存在。
	ErrUpgradeNotFound = errors.New("upgrade request not found")
	// ErrBadDecision 审批动作不是 approve/reject。
	ErrBadDecision = errors.New("decision must be approve or reject")
)

// UpgradeService 会员等级升级申请的提交与审批。
type UpgradeService struct {
	repo model.Repository
}

// NewUpgradeService 创建升级申请服务实例。
func NewUpgradeService(repo model.Repository) *UpgradeService {
	return &UpgradeService{repo: repo}
}

// Submit files an upgrade request for the member. One member holds at most
// one PENDING request, and the requested role must rank strictly above the
// member's current role.
func (s *UpgradeService) Submit(ctx context.Context, user *entity.DbUser, requestedRole string) (*entity.DbUpgradeRequest, error) {
	target := entity.ParseRole(requestedRole)
	if !entity.IsValidRole(target) {
		return nil, ErrUpgradeNotEligible
	}
	if entity.RoleRank(target) <= entity.RoleRank(user.Role) {
		return nil, ErrUpgradeNotEligible
	}

	pending, err := s.repo.FindPendingUpgradeRequest(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrUpgradePending
	}

	request := &entity.DbUpgradeRequest{
		UserID:        user.ID,
		UserName:      user.DisplayName,
		CurrentRole:   user.Role,
		RequestedRole: target,
		Status:        entity.UpgradeStatusPending,
	}
	if err := s.repo.CreateUpgradeRequest(ctx, request); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id":     request.ID,
		"user_id":        user.ID,
		"current_role":   user.Role,
		"requested_role": target,
	}).Info("upgrade request submitted")
	return request, nil
}

// Resolve applies an admin decision to a pending request. Approval writes
// the requested role back onto the member's roster row; a request that has
// already left PENDING cannot be resolved again.
func (s *UpgradeService) Resolve(ctx context.Context, requestID uint, decision string) (*entity.DbUpgradeRequest, error) {
	var status string
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case "approve":
		status = entity.UpgradeStatusApproved
	case "reject":
		status = entity.UpgradeStatusRejected
	default:
		return nil, ErrBadDecision
	}

	request, err := s.repo.GetUpgradeRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUpgradeNotFound
		}
		return nil, err
	}
	if request == nil {
		return nil, ErrUpgradeNotFound
	}
	if request.IsTerminal() {
		return nil, ErrUpgradeResolved
	}

	if status == entity.UpgradeStatusApproved {
		// 先改会员等级再落终态，等级写失败时申请仍保持 PENDING 可重试。
		role := request.RequestedRole
		if err := s.repo.UpdateUser(ctx, request.UserID, entity.UserUpdates{Role: &role}); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateUpgradeRequest(ctx, requestID, entity.UpgradeRequestUpdates{Status: &status}); err != nil {
		return nil, err
	}
	request.Status = status

	logrus.WithFields(logrus.Fields{
		"request_id":     requestID,
		"user_id":        request.UserID,
		"requested_role": request.RequestedRole,
		"status":         status,
	}).Info("upgrade request resolved")
	return request, nil
}

// List returns requests newest first, optionally filtered by status or member.
func (s *UpgradeService) List(ctx context.Context, params *entity.UpgradeRequestQuery) (*entity.UpgradeRequestListResponse, error) {
	requests, meta, err := s.repo.ListUpgradeRequests(ctx, params)
	if err != nil {
		return nil, err
	}
	return &entity.UpgradeRequestListResponse{Requests: requests, Meta: meta}, nil
}

// PendingFor returns the member's open request, or nil when none exists.
func (s *UpgradeService) PendingFor(ctx context.Context, userID uint) (*entity.DbUpgradeRequest, error) {
	return s.repo.FindPendingUpgradeRequest(ctx, userID)
}
