package api

import (
	"net/http"

	"memberhub/internal/entity"
	"memberhub/internal/progress"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ListCourses 返回全目录。低等级会员也能看到高等级课程的卡片，
// 但 accessible 标记为 false；完成度只对可访问课程有意义。
func (h *HTTPHandler) ListCourses(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	completed, err := h.tracker.CompletionSet(c.Request.Context(), user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load completion set")
		InternalError(c, "failed to load courses")
		return
	}

	courses := h.catalog.Courses()
	summaries := make([]entity.CourseSummary, 0, len(courses))
	for i := range courses {
		summaries = append(summaries, makeCourseSummary(&courses[i], user.Role, completed))
	}

	c.JSON(http.StatusOK, entity.CourseListResponse{Courses: summaries})
}

// GetCourse 返回课程详情与本人的完成标记。
// 路由层面任何会员都可达，内容按课程最低等级独立把关。
func (h *HTTPHandler) GetCourse(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	course, ok := h.catalog.Course(c.Param("id"))
	if !ok {
		NotFound(c, ErrCodeCourseNotFound, "course not found")
		return
	}

	completed, err := h.tracker.CompletionSet(c.Request.Context(), user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load completion set")
		InternalError(c, "failed to load course")
		return
	}

	detail := *course
	if !entity.CanAccess(user.Role, course.MinRole) {
		// 等级不足时只展示大纲，正文内容留白
		lessons := make([]entity.Lesson, len(course.Lessons))
		copy(lessons, course.Lessons)
		for i := range lessons {
			lessons[i].Content = ""
		}
		detail.Lessons = lessons
	}

	completedIDs := make([]string, 0, len(course.Lessons))
	for _, lesson := range course.Lessons {
		if _, ok := completed[lesson.ID]; ok {
			completedIDs = append(completedIDs, lesson.ID)
		}
	}

	c.JSON(http.StatusOK, entity.CourseDetailResponse{
		Course:             detail,
		CompletedLessonIDs: completedIDs,
		Progress:           progress.CompletionRatio(course, completed),
	})
}

// GetLesson 返回单节课正文。等级不足时拒绝，未知节返回 404。
func (h *HTTPHandler) GetLesson(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	course, lesson, ok := h.catalog.Lesson(c.Param("id"), c.Param("lessonID"))
	if !ok {
		NotFound(c, ErrCodeLessonNotFound, "lesson not found")
		return
	}

	if !entity.CanAccess(user.Role, course.MinRole) {
		Forbidden(c, ErrCodeTierRequired, "course requires a higher membership tier")
		return
	}

	completed, err := h.tracker.CompletionSet(c.Request.Context(), user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load completion set")
		InternalError(c, "failed to load lesson")
		return
	}
	_, done := completed[lesson.ID]

	c.JSON(http.StatusOK, entity.LessonDetailResponse{
		CourseID:    course.ID,
		CourseTitle: course.Title,
		Lesson:      *lesson,
		Completed:   done,
	})
}

func makeCourseSummary(course *entity.Course, role entity.Role, completed map[string]struct{}) entity.CourseSummary {
	return entity.CourseSummary{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Category:    course.Category,
		MinRole:     course.MinRole,
		Thumbnail:   course.Thumbnail,
		LessonCount: len(course.Lessons),
		Accessible:  entity.CanAccess(role, course.MinRole),
		Progress:    progress.CompletionRatio(course, completed),
	}
}
