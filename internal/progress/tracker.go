// Package progress 跟踪会员的课程完成情况并推导完成度。
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"memberhub/internal/catalog"
	"memberhub/internal/entity"

	"github.com/sirupsen/logrus"
)

// ErrUnknownLesson 指向目录中不存在的课程节。
var ErrUnknownLesson = errors.New("lesson not found in catalog")

// CompletionStore is the slice of the repository the tracker needs.
type CompletionStore interface {
	AddLessonCompletion(ctx context.Context, userID uint, lessonID string) error
	RemoveLessonCompletion(ctx context.Context, userID uint, lessonID string) error
	HasLessonCompletion(ctx context.Context, userID uint, lessonID string) (bool, error)
	ListLessonCompletions(ctx context.Context, userID uint) ([]string, error)
	DeleteLessonCompletions(ctx context.Context, userID uint) error
}

// Tracker records which lessons a member has completed. The database is the
// source of truth; the Redis cache is write-through and best-effort.
type Tracker struct {
	repo    CompletionStore
	catalog *catalog.Catalog
	cache   *Cache
}

// NewTracker creates a tracker. cache may be nil.
func NewTracker(repo CompletionStore, cat *catalog.Catalog, cache *Cache) *Tracker {
	return &Tracker{
		repo:    repo,
		catalog: cat,
		cache:   cache,
	}
}

// Toggle flips the completion mark for one lesson and reports the new state.
// Toggling twice returns to the original state.
func (t *Tracker) Toggle(ctx context.Context, userID uint, lessonID string) (bool, error) {
	if t == nil || t.repo == nil {
		return false, fmt.Errorf("progress tracker not initialised")
	}
	lessonID = strings.TrimSpace(lessonID)
	if userID == 0 || lessonID == "" {
		return false, fmt.Errorf("invalid completion key")
	}
	if !t.catalog.HasLesson(lessonID) {
		return false, ErrUnknownLesson
	}

	completed, err := t.repo.HasLessonCompletion(ctx, userID, lessonID)
	if err != nil {
		return false, err
	}

	if completed {
		if err := t.repo.RemoveLessonCompletion(ctx, userID, lessonID); err != nil {
			return false, err
		}
		if err := t.cache.Remove(ctx, userID, lessonID); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to update completion cache")
		}
		return false, nil
	}

	if err := t.repo.AddLessonCompletion(ctx, userID, lessonID); err != nil {
		return false, err
	}
	if err := t.cache.Add(ctx, userID, lessonID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to update completion cache")
	}
	return true, nil
}

// CompletionSet returns the set of completed lesson ids for a member,
// preferring the cache and falling back to the database.
func (t *Tracker) CompletionSet(ctx context.Context, userID uint) (map[string]struct{}, error) {
	if t == nil || t.repo == nil {
		return nil, fmt.Errorf("progress tracker not initialised")
	}

	if lessonIDs, ok, err := t.cache.Members(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("completion cache read failed")
	} else if ok {
		return toSet(lessonIDs), nil
	}

	lessonIDs, err := t.repo.ListLessonCompletions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := t.cache.Warm(ctx, userID, lessonIDs); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to warm completion cache")
	}
	return toSet(lessonIDs), nil
}

// CompletionRatio is the share of a course's lessons present in the set,
// 0 for a course with no lessons.
func CompletionRatio(course *entity.Course, completed map[string]struct{}) float64 {
	if course == nil || len(course.Lessons) == 0 {
		return 0
	}
	done := 0
	for _, lesson := range course.Lessons {
		if _, ok := completed[lesson.ID]; ok {
			done++
		}
	}
	return float64(done) / float64(len(course.Lessons))
}

// Summary folds the completion set over every course the role can access.
// The aggregate is derived on demand and never stored.
func (t *Tracker) Summary(ctx context.Context, userID uint, role entity.Role) (*entity.ProgressSummaryResponse, error) {
	completed, err := t.CompletionSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &entity.ProgressSummaryResponse{
		CompletedLessonIDs: make([]string, 0, len(completed)),
		Courses:            make([]entity.CourseProgress, 0, t.catalog.Len()),
	}

	for _, course := range t.catalog.Courses() {
		if !entity.CanAccess(role, course.MinRole) {
			continue
		}
		done := 0
		for _, lesson := range course.Lessons {
			if _, ok := completed[lesson.ID]; ok {
				done++
				summary.CompletedLessonIDs = append(summary.CompletedLessonIDs, lesson.ID)
			}
		}
		summary.TotalCompleted += done
		summary.Courses = append(summary.Courses, entity.CourseProgress{
			CourseID:         course.ID,
			CompletedLessons: done,
			TotalLessons:     len(course.Lessons),
			Ratio:            CompletionRatio(&course, completed),
		})
	}

	return summary, nil
}

// Forget drops all completion state for a member (roster removal).
func (t *Tracker) Forget(ctx context.Context, userID uint) error {
	if t == nil || t.repo == nil {
		return fmt.Errorf("progress tracker not initialised")
	}
	if err := t.repo.DeleteLessonCompletions(ctx, userID); err != nil {
		return err
	}
	if err := t.cache.Invalidate(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to invalidate completion cache")
	}
	return nil
}

func toSet(lessonIDs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(lessonIDs))
	for _, id := range lessonIDs {
		set[id] = struct{}{}
	}
	return set
}
