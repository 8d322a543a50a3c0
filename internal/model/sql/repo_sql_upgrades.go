package sql

import (
	"context"
	"errors"
	"fmt"

	"memberhub/internal/entity"

	"gorm.io/gorm"
)

// CreateUpgradeRequest persists a new upgrade request.
func (r *GormRepository) CreateUpgradeRequest(ctx context.Context, request *entity.DbUpgradeRequest) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if request == nil {
		return fmt.Errorf("upgrade request is nil")
	}
	return r.db.WithContext(ctx).Create(request).Error
}

// GetUpgradeRequest loads one upgrade request by ID.
func (r *GormRepository) GetUpgradeRequest(ctx context.Context, id uint) (*entity.DbUpgradeRequest, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid upgrade request id")
	}
	var request entity.DbUpgradeRequest
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// UpdateUpgradeRequest applies partial updates to an upgrade request.
func (r *GormRepository) UpdateUpgradeRequest(ctx context.Context, id uint, updates entity.UpgradeRequestUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid upgrade request id")
	}
	values := updates.ToMap()
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbUpgradeRequest{}).Where("id = ?", id).Updates(values).Error
}

// ListUpgradeRequests returns paginated requests, most recent first.
func (r *GormRepository) ListUpgradeRequests(ctx context.Context, params *entity.UpgradeRequestQuery) ([]entity.DbUpgradeRequest, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbUpgradeRequest{})
	if params != nil {
		if params.UserID > 0 {
			query = query.Where("user_id = ?", params.UserID)
		}
		if params.Status != "" {
			query = query.Where("status = ?", params.Status)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page := 1
	pageSize := 20
	if params != nil {
		if params.Page > 0 {
			page = int(params.Page)
		}
		if params.PageSize > 0 {
			pageSize = int(params.PageSize)
		}
	}

	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	var requests []entity.DbUpgradeRequest
	if err := query.Order("id DESC").Offset(offset).Limit(pageSize).Find(&requests).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return requests, meta, nil
}

// FindPendingUpgradeRequest returns the user's PENDING request, nil when none.
func (r *GormRepository) FindPendingUpgradeRequest(ctx context.Context, userID uint) (*entity.DbUpgradeRequest, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var request entity.DbUpgradeRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, entity.UpgradeStatusPending).
		Order("id DESC").
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// CountUpgradeRequests counts requests, optionally filtered by status.
func (r *GormRepository) CountUpgradeRequests(ctx context.Context, status string) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	query := r.db.WithContext(ctx).Model(&entity.DbUpgradeRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
