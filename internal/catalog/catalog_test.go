package catalog

import (
	"testing"

	"memberhub/internal/entity"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("unexpected error loading catalog: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("expected at least one course")
	}

	course, ok := c.Course("c1")
	if !ok {
		t.Fatal("expected course c1 to exist")
	}
	if course.MinRole != entity.RoleBasic {
		t.Fatalf("expected c1 min role BASIC, got %s", course.MinRole)
	}
	if len(course.Lessons) == 0 {
		t.Fatal("expected c1 to have lessons")
	}

	if _, ok := c.Course("missing"); ok {
		t.Fatal("expected lookup of unknown course to fail")
	}
}

func TestLessonLookup(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("unexpected error loading catalog: %v", err)
	}

	course, lesson, ok := c.Lesson("c1", "l1")
	if !ok {
		t.Fatal("expected lesson l1 in course c1")
	}
	if course.ID != "c1" || lesson.ID != "l1" {
		t.Fatalf("unexpected lookup result: course %s lesson %s", course.ID, lesson.ID)
	}

	if _, _, ok := c.Lesson("c1", "l5"); ok {
		t.Fatal("lesson of another course must not resolve under c1")
	}
	if !c.HasLesson("l5") {
		t.Fatal("expected l5 to exist globally")
	}
	if c.HasLesson("nope") {
		t.Fatal("unknown lesson id must not resolve")
	}
}

func TestLoadRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"missing course id", `[{"title":"x","min_role":"BASIC","lessons":[]}]`},
		{"invalid role", `[{"id":"c1","min_role":"GOLD","lessons":[]}]`},
		{"duplicate course", `[{"id":"c1","min_role":"BASIC","lessons":[]},{"id":"c1","min_role":"BASIC","lessons":[]}]`},
		{"duplicate lesson", `[{"id":"c1","min_role":"BASIC","lessons":[{"id":"l1"},{"id":"l1"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadFrom([]byte(tt.data)); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}
