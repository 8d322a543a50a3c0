package entity

// Course 课程目录中的一门课。目录只读，进程启动时载入一次。
type Course struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	MinRole     Role     `json:"min_role"`
	Thumbnail   string   `json:"thumbnail"`
	Lessons     []Lesson `json:"lessons"`
}

// Lesson 课程中的一节课。LessonID 在全目录范围内引用（进度跟踪按它记账）。
type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Duration string `json:"duration"`
}

// CourseSummary is a course listing entry decorated with the caller's
// access and progress state.
type CourseSummary struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	MinRole     Role    `json:"min_role"`
	Thumbnail   string  `json:"thumbnail"`
	LessonCount int     `json:"lesson_count"`
	Accessible  bool    `json:"accessible"`
	Progress    float64 `json:"progress"`
}

// CourseDetailResponse carries one course with per-lesson completion flags.
type CourseDetailResponse struct {
	Course             Course   `json:"course"`
	CompletedLessonIDs []string `json:"completed_lesson_ids"`
	Progress           float64  `json:"progress"`
}

type CourseListResponse struct {
	Courses []CourseSummary `json:"courses"`
}

type LessonDetailResponse struct {
	CourseID    string `json:"course_id"`
	CourseTitle string `json:"course_title"`
	Lesson      Lesson `json:"lesson"`
	Completed   bool   `json:"completed"`
}
