package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"memberhub/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddLessonCompletion marks a lesson complete for a user. Adding an already
// present pair is a no-op, so the operation stays idempotent.
func (r *GormRepository) AddLessonCompletion(ctx context.Context, userID uint, lessonID string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 || strings.TrimSpace(lessonID) == "" {
		return fmt.Errorf("invalid completion key")
	}
	completion := entity.DbLessonCompletion{UserID: userID, LessonID: lessonID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&completion).Error
}

// RemoveLessonCompletion clears a completion mark. Removing an absent pair
// is not an error.
func (r *GormRepository) RemoveLessonCompletion(ctx context.Context, userID uint, lessonID string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 || strings.TrimSpace(lessonID) == "" {
		return fmt.Errorf("invalid completion key")
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Delete(&entity.DbLessonCompletion{}).Error
}

// HasLessonCompletion reports whether a lesson is marked complete.
func (r *GormRepository) HasLessonCompletion(ctx context.Context, userID uint, lessonID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repository not initialised")
	}
	var completion entity.DbLessonCompletion
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&completion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListLessonCompletions returns every completed lesson id for a user.
func (r *GormRepository) ListLessonCompletions(ctx context.Context, userID uint) ([]string, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var lessonIDs []string
	err := r.db.WithContext(ctx).
		Model(&entity.DbLessonCompletion{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("lesson_id", &lessonIDs).Error
	if err != nil {
		return nil, err
	}
	return lessonIDs, nil
}

// DeleteLessonCompletions removes all completion rows for a user, used when
// the roster entry itself is removed.
func (r *GormRepository) DeleteLessonCompletions(ctx context.Context, userID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return fmt.Errorf("invalid user id")
	}
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&entity.DbLessonCompletion{}).Error
}
