package model

import (
	"context"

	"memberhub/internal/entity"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 会员花名册
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	DeleteUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)

	// 升级申请
	CreateUpgradeRequest(ctx context.Context, request *entity.DbUpgradeRequest) error
	GetUpgradeRequest(ctx context.Context, id uint) (*entity.DbUpgradeRequest, error)
	UpdateUpgradeRequest(ctx context.Context, id uint, updates entity.UpgradeRequestUpdates) error
	ListUpgradeRequests(ctx context.Context, params *entity.UpgradeRequestQuery) ([]entity.DbUpgradeRequest, *entity.Meta, error)
	FindPendingUpgradeRequest(ctx context.Context, userID uint) (*entity.DbUpgradeRequest, error)
	CountUpgradeRequests(ctx context.Context, status string) (int64, error)

	// 公告
	CreateAnnouncement(ctx context.Context, announcement *entity.DbAnnouncement) error
	ListAnnouncements(ctx context.Context, limit int) ([]entity.DbAnnouncement, error)
	CountAnnouncements(ctx context.Context) (int64, error)

	// 课程完成记录
	AddLessonCompletion(ctx context.Context, userID uint, lessonID string) error
	RemoveLessonCompletion(ctx context.Context, userID uint, lessonID string) error
	HasLessonCompletion(ctx context.Context, userID uint, lessonID string) (bool, error)
	ListLessonCompletions(ctx context.Context, userID uint) ([]string, error)
	DeleteLessonCompletions(ctx context.Context, userID uint) error
}
