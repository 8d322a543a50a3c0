package entity

import "time"

// 升级请求状态。PENDING 为初始态，APPROVED/REJECTED 为终态，终态不可再变更。
const (
	UpgradeStatusPending  = "PENDING"
	UpgradeStatusApproved = "APPROVED"
	UpgradeStatusRejected = "REJECTED"
)

// DbUpgradeRequest 表示一条会员等级升级申请。
// UserName 与 CurrentRole 是提交时刻的快照，审批后不回填。
type DbUpgradeRequest struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UserID        uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	UserName      string    `gorm:"column:user_name;type:varchar(255)" json:"user_name"`
	CurrentRole   Role      `gorm:"column:current_role;type:varchar(20);not null" json:"current_role"`
	RequestedRole Role      `gorm:"column:requested_role;type:varchar(20);not null" json:"requested_role"`
	Status        string    `gorm:"column:status;type:varchar(20);index;not null;default:PENDING" json:"status"`
}

// TableName 指定表名。
func (DbUpgradeRequest) TableName() string {
	return "upgrade_requests"
}

// IsTerminal reports whether the request has left PENDING.
func (r *DbUpgradeRequest) IsTerminal() bool {
	if r == nil {
		return false
	}
	return r.Status == UpgradeStatusApproved || r.Status == UpgradeStatusRejected
}

// UpgradeRequestUpdates carries partial updates for an upgrade request.
type UpgradeRequestUpdates struct {
	Status *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UpgradeRequestUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	return updates
}

// UpgradeRequestQuery supports listing requests with pagination.
type UpgradeRequestQuery struct {
	BaseParams
	UserID uint   `json:"user_id" form:"user_id" query:"user_id"`
	Status string `json:"status" form:"status" query:"status"`
}

type UpgradeSubmitRequest struct {
	RequestedRole string `json:"requested_role" binding:"required"`
}

type UpgradeResolveRequest struct {
	Decision string `json:"decision" binding:"required"`
}

type UpgradeRequestListResponse struct {
	Requests []DbUpgradeRequest `json:"requests"`
	Meta     *Meta              `json:"meta"`
}
