package dto

import (
	"github.com/sayamjn/rely-gate-sub002/internal/mealschedule"
	"github.com/sayamjn/rely-gate-sub002/pkg/qrtoken"
)

// ── 餐期配置模块 DTO ──
//
// 更新请求是平铺字段名到原始值的映射（如 lunchBookingStartMonday: "10:00"），
// 由核心包解析与校验；响应给出按星期名嵌套的完整周配置。

// MealSettingsResponse 餐期配置响应
type MealSettingsResponse struct {
	Schedule  mealschedule.WeeklySchedule `json:"schedule"`
	IsDefault bool                        `json:"is_default"` // true 表示返回的是内置默认而非显式配置
	Version   int                         `json:"version"`
	UpdatedAt string                      `json:"updated_at,omitempty"`
}

// ── 餐期状态模块 DTO ──

// NextMealResponse 当日内下一餐信息
type NextMealResponse struct {
	MealType     string `json:"meal_type"`
	ServingStart string `json:"serving_start"`
	MinutesUntil int    `json:"minutes_until"`
}

// MealStatusResponse 当前餐期状态响应
type MealStatusResponse struct {
	CurrentMeal       string            `json:"current_meal"` // lunch | dinner | none
	IsDefaultSchedule bool              `json:"is_default_schedule"`
	NextMeal          *NextMealResponse `json:"next_meal,omitempty"` // 空表示当日已无下一餐
	ServerTime        string            `json:"server_time"`
}

// ValidateActionRequest 动作校验请求
type ValidateActionRequest struct {
	Action   string `json:"action"    binding:"required,oneof=booking checkin"`
	MealType string `json:"meal_type" binding:"required,oneof=lunch dinner"`
}

// ValidateActionResponse 动作校验响应
type ValidateActionResponse struct {
	IsAllowed bool   `json:"is_allowed"`
	Message   string `json:"message"`
}

// ── 餐券模块 DTO ──

// IssueMealQRRequest 签发餐券请求
type IssueMealQRRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	MealType  string `json:"meal_type"  binding:"required,oneof=lunch dinner"`
	Action    string `json:"action"     binding:"required,oneof=register consume"`
	Unified   bool   `json:"unified"` // 统一模式：附带 validity_hours 过期时间
}

// MealQRResponse 餐券签发响应
type MealQRResponse struct {
	Payload qrtoken.Payload `json:"payload"`
	QRImage string          `json:"qr_image"` // PNG 的 base64 编码
}

// VerifyMealQRRequest 核销请求：扫码端提交二维码中的原始 JSON 文本
type VerifyMealQRRequest struct {
	QRContent string `json:"qr_content" binding:"required"`
}

// VerifyMealQRResponse 核销响应
type VerifyMealQRResponse struct {
	Accepted  bool   `json:"accepted"`
	Message   string `json:"message"`
	StudentID string `json:"student_id,omitempty"`
	MealType  string `json:"meal_type,omitempty"`
}

// [自证通过] internal/dto/meal.go
