package entity

import (
	"strings"
	"time"
)

// 公告优先级。
const (
	AnnouncementPriorityLow    = "low"
	AnnouncementPriorityMedium = "medium"
	AnnouncementPriorityHigh   = "high"
)

// DbAnnouncement 表示一条面向全体会员的广播公告。
// 公告只增不改：本系统未定义编辑/删除操作。
type DbAnnouncement struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
	Title     string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	Priority  string    `gorm:"column:priority;type:varchar(10);not null;default:medium" json:"priority"`
}

// TableName 指定表名。
func (DbAnnouncement) TableName() string {
	return "announcements"
}

// ParseAnnouncementPriority normalises a priority string, "" when invalid.
func ParseAnnouncementPriority(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case AnnouncementPriorityLow:
		return AnnouncementPriorityLow
	case AnnouncementPriorityMedium:
		return AnnouncementPriorityMedium
	case AnnouncementPriorityHigh:
		return AnnouncementPriorityHigh
	default:
		return ""
	}
}

type AnnouncementCreateRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Priority string `json:"priority"`
}

type AnnouncementListResponse struct {
	Announcements []DbAnnouncement `json:"announcements"`
}
