package model

import "time"

// MealRecord 就餐台账表 — 对应 meal_records
// 登记（register）与核销（consume）各记一行；
// (tenant, student, meal, action, date) 唯一约束兜底单次使用
type MealRecord struct {
	RecordID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	TenantID   string    `gorm:"type:uuid;not null;index:idx_meal_records_tenant_date" json:"tenant_id"`
	StudentID  string    `gorm:"type:uuid;not null"                             json:"student_id"`
	MealType   string    `gorm:"type:varchar(10);not null"                      json:"meal_type"`
	Action     string    `gorm:"type:varchar(10);not null"                      json:"action"`
	RecordDate string    `gorm:"type:date;not null;index:idx_meal_records_tenant_date" json:"record_date"`
	RecordedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"recorded_at"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (MealRecord) TableName() string { return "meal_records" }
