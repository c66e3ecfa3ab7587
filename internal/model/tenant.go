package model

// Tenant 租户表 — 对应 tenants
// 租户不做物理删除，停用即逻辑下线
type Tenant struct {
	TenantID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tenant_id"`
	Name     string `gorm:"type:varchar(200);not null"                     json:"name"`
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"code"`
	IsActive bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Tenant) TableName() string { return "tenants" }
