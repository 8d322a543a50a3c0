package entity

import "time"

// DbUser 表示花名册中持久化的会员账户。
type DbUser struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Email       string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName string    `gorm:"column:display_name;type:varchar(255)" json:"display_name"`
	Role        Role      `gorm:"column:role;type:varchar(20);index;not null" json:"role"`
	JoinedAt    time.Time `gorm:"column:joined_at;not null" json:"joined_at"`
	Avatar      string    `gorm:"column:avatar;type:varchar(512)" json:"avatar"`
}

// TableName 指定表名。
func (DbUser) TableName() string {
	return "users"
}

// UserSummary is the user description returned to clients.
type UserSummary struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
	Avatar      string    `json:"avatar"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserUpdates carries partial roster-row updates.
type UserUpdates struct {
	DisplayName *string
	Role        *Role
	Avatar      *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.DisplayName != nil {
		updates["display_name"] = *u.DisplayName
	}
	if u.Role != nil {
		updates["role"] = *u.Role
	}
	if u.Avatar != nil {
		updates["avatar"] = *u.Avatar
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// UserQuery supports listing roster members with pagination.
type UserQuery struct {
	BaseParams
	Role    string `json:"role" form:"role" query:"role"`
	Keyword string `json:"keyword" form:"keyword" query:"keyword"`
}

type AuthLoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

type AuthRegisterRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}

type ProfileUpdateRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

type AvatarUploadRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Meta  *Meta         `json:"meta"`
}
