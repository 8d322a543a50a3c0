package entity

type Meta struct {
	Page     int64 `json:"page"`
	PageSize int64 `json:"page_size"`
	Total    int64 `json:"total"`
}

type BaseParams struct {
	PageSize int64 `json:"page_size" form:"page_size" query:"page_size"`
	Page     int64 `json:"page" form:"page" query:"page"`
}

// DashboardResponse 会员仪表盘聚合数据。
type DashboardResponse struct {
	User           UserSummary       `json:"user"`
	Courses        []CourseSummary   `json:"courses"`
	TotalCompleted int               `json:"total_completed"`
	Announcements  []DbAnnouncement  `json:"announcements"`
	PendingUpgrade *DbUpgradeRequest `json:"pending_upgrade,omitempty"`
}

// AdminStatsResponse 管理后台的头部统计数字。
type AdminStatsResponse struct {
	TotalMembers    int64 `json:"total_members"`
	TotalCourses    int   `json:"total_courses"`
	PendingUpgrades int64 `json:"pending_upgrades"`
}
