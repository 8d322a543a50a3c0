package entity

import "time"

// DbLessonCompletion 记录某个会员完成了某节课程。
// (user_id, lesson_id) 唯一：重复打勾等价于撤销。
type DbLessonCompletion struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"column:user_id;uniqueIndex:idx_user_lesson;not null" json:"user_id"`
	LessonID  string    `gorm:"column:lesson_id;type:varchar(64);uniqueIndex:idx_user_lesson;not null" json:"lesson_id"`
}

// TableName 指定表名。
func (DbLessonCompletion) TableName() string {
	return "lesson_completions"
}

type ProgressToggleRequest struct {
	LessonID string `json:"lesson_id" binding:"required"`
}

type ProgressToggleResponse struct {
	LessonID  string `json:"lesson_id"`
	Completed bool   `json:"completed"`
}

// CourseProgress 单门课程的完成度。
type CourseProgress struct {
	CourseID         string  `json:"course_id"`
	CompletedLessons int     `json:"completed_lessons"`
	TotalLessons     int     `json:"total_lessons"`
	Ratio            float64 `json:"ratio"`
}

type ProgressSummaryResponse struct {
	CompletedLessonIDs []string         `json:"completed_lesson_ids"`
	Courses            []CourseProgress `json:"courses"`
	TotalCompleted     int              `json:"total_completed"`
}
