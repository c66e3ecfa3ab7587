package model

// Student 学生表 — 对应 students（门禁与餐券的主体）
type Student struct {
	StudentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	TenantID  string `gorm:"type:uuid;not null;index"                       json:"tenant_id"`
	RegNo     string `gorm:"type:varchar(50);not null"                      json:"reg_no"`
	Name      string `gorm:"type:varchar(200);not null"                     json:"name"`
	Phone     string `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	IsActive  bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Tenant *Tenant `gorm:"foreignKey:TenantID;references:TenantID" json:"tenant,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
