package sql

import (
	"context"
	"fmt"

	"memberhub/internal/entity"
)

// CreateAnnouncement persists a new announcement.
func (r *GormRepository) CreateAnnouncement(ctx context.Context, announcement *entity.DbAnnouncement) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if announcement == nil {
		return fmt.Errorf("announcement is nil")
	}
	return r.db.WithContext(ctx).Create(announcement).Error
}

// ListAnnouncements returns announcements, most recent first.
// A limit of 0 returns the full board.
func (r *GormRepository) ListAnnouncements(ctx context.Context, limit int) ([]entity.DbAnnouncement, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	query := r.db.WithContext(ctx).Model(&entity.DbAnnouncement{}).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var announcements []entity.DbAnnouncement
	if err := query.Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

// CountAnnouncements returns the announcement count.
func (r *GormRepository) CountAnnouncements(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbAnnouncement{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
