package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memberhub/internal/catalog"
	"memberhub/internal/entity"
	"memberhub/internal/llm"

	"github.com/sirupsen/logrus"
)

// FallbackAnswer 上游生成失败时返回给会员的兜底回答。
const FallbackAnswer = "I'm sorry, I'm having trouble connecting to my knowledge base right now. Please try again later."

const tutorSystemInstruction = "You are a friendly and knowledgeable tutor for a members-only learning platform. Provide concise, helpful, and motivating answers based on the lesson content provided."

// 提示词里引用的课文内容截断长度，避免超长课文撑爆请求。
const lessonExcerptLimit = 1000

const tutorTimeout = 60 * time.Second

// ErrLessonNotFound 提问指向的课程或节不存在。
var ErrLessonNotFound = errors.New("lesson not found")

// TutorService 课程辅导问答服务。
type TutorService struct {
	catalog *catalog.Catalog
	backend llm.TextBackend
}

// NewTutorService 创建辅导服务实例。backend 可以为 nil，此时所有提问
// 都走兜底回答。
func NewTutorService(cat *catalog.Catalog, backend llm.TextBackend) *TutorService {
	return &TutorService{catalog: cat, backend: backend}
}

// Ask answers a member question about one lesson. Upstream failures never
// surface to the caller: the response degrades to a fixed apology instead.
func (s *TutorService) Ask(ctx context.Context, userID uint, req entity.TutorAskRequest) (*entity.TutorAskResponse, error) {
	course, lesson, ok := s.catalog.Lesson(req.CourseID, req.LessonID)
	if !ok {
		return nil, ErrLessonNotFound
	}

	logger := logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"course_id": course.ID,
		"lesson_id": lesson.ID,
	})

	if s.backend == nil {
		logger.Warn("tutor backend not configured, returning fallback answer")
		return &entity.TutorAskResponse{Answer: FallbackAnswer, Degraded: true}, nil
	}

	prompt := buildTutorPrompt(lesson, req.Question)

	askCtx, cancel := context.WithTimeout(ctx, tutorTimeout)
	defer cancel()

	answer, err := s.backend.GenerateAnswer(askCtx, tutorSystemInstruction, prompt, true)
	if err != nil {
		logger.WithError(err).Warn("tutor answer generation failed, returning fallback answer")
		return &entity.TutorAskResponse{Answer: FallbackAnswer, Degraded: true}, nil
	}

	return &entity.TutorAskResponse{
		Answer:  answer.Text,
		Sources: answer.Sources,
	}, nil
}

func buildTutorPrompt(lesson *entity.Lesson, question string) string {
	excerpt := lesson.Content
	if runes := []rune(excerpt); len(runes) > lessonExcerptLimit {
		excerpt = string(runes[:lessonExcerptLimit]) + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Lesson: %s\n", lesson.Title)
	fmt.Fprintf(&b, "Lesson content: %s\n\n", excerpt)
	fmt.Fprintf(&b, "Member question: %s", strings.TrimSpace(question))
	return b.String()
}
