// Package catalog 持有只读的课程目录。目录在进程启动时从内嵌数据载入一次，
// 运行期间不会变更。
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"memberhub/internal/entity"
)

//go:embed courses.json
var coursesJSON []byte

// Catalog 课程目录，载入后只读。
type Catalog struct {
	courses  []entity.Course
	byID     map[string]*entity.Course
	byLesson map[string]string // lesson id -> course id
}

// Load parses the embedded course data. Called once from main.
func Load() (*Catalog, error) {
	return loadFrom(coursesJSON)
}

func loadFrom(data []byte) (*Catalog, error) {
	var courses []entity.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("parse course catalog: %w", err)
	}

	c := &Catalog{
		courses:  courses,
		byID:     make(map[string]*entity.Course, len(courses)),
		byLesson: make(map[string]string),
	}
	for i := range c.courses {
		course := &c.courses[i]
		if course.ID == "" {
			return nil, fmt.Errorf("course %d has no id", i)
		}
		if _, exists := c.byID[course.ID]; exists {
			return nil, fmt.Errorf("duplicate course id %q", course.ID)
		}
		if entity.RoleRank(course.MinRole) < 0 {
			return nil, fmt.Errorf("course %q has invalid min role %q", course.ID, course.MinRole)
		}
		c.byID[course.ID] = course
		for _, lesson := range course.Lessons {
			if _, exists := c.byLesson[lesson.ID]; exists {
				return nil, fmt.Errorf("duplicate lesson id %q", lesson.ID)
			}
			c.byLesson[lesson.ID] = course.ID
		}
	}
	return c, nil
}

// Courses returns all courses in catalog order.
func (c *Catalog) Courses() []entity.Course {
	if c == nil {
		return nil
	}
	return c.courses
}

// Course looks up one course by id.
func (c *Catalog) Course(id string) (*entity.Course, bool) {
	if c == nil {
		return nil, false
	}
	course, ok := c.byID[id]
	return course, ok
}

// Lesson looks up a lesson inside a given course.
func (c *Catalog) Lesson(courseID, lessonID string) (*entity.Course, *entity.Lesson, bool) {
	course, ok := c.Course(courseID)
	if !ok {
		return nil, nil, false
	}
	for i := range course.Lessons {
		if course.Lessons[i].ID == lessonID {
			return course, &course.Lessons[i], true
		}
	}
	return nil, nil, false
}

// CourseForLesson finds the course a lesson belongs to.
func (c *Catalog) CourseForLesson(lessonID string) (*entity.Course, bool) {
	if c == nil {
		return nil, false
	}
	courseID, ok := c.byLesson[lessonID]
	if !ok {
		return nil, false
	}
	return c.Course(courseID)
}

// HasLesson reports whether a lesson id exists anywhere in the catalog.
func (c *Catalog) HasLesson(lessonID string) bool {
	if c == nil {
		return false
	}
	_, ok := c.byLesson[lessonID]
	return ok
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.courses)
}
