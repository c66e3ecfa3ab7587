package model

// AdminUser 租户管理员表 — 对应 admin_users
type AdminUser struct {
	AdminID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"admin_id"`
	TenantID     string `gorm:"type:uuid;not null;index"                       json:"tenant_id"`
	Username     string `gorm:"type:varchar(100);not null"                     json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'operator'"   json:"role"`
	VersionedModel

	// 关联
	Tenant *Tenant `gorm:"foreignKey:TenantID;references:TenantID" json:"tenant,omitempty"`
}

// TableName 指定表名
func (AdminUser) TableName() string { return "admin_users" }
