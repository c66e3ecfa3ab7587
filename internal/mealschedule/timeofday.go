package mealschedule

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// TimeOfDay 当日时刻，以零点起的分钟数表示，取值范围 [0, 1439]。
// 仅能由合法的 HH:MM 或 HH:MM:SS 字符串构造；秒在解析时接受但被丢弃，
// 评估器的全部比较都发生在分钟粒度上。
type TimeOfDay int

// timePattern 边界接受 HH:MM 与 HH:MM:SS 两种形式（24 小时制，补零）
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])(?::([0-5][0-9]))?$`)

// ParseTimeOfDay 解析 HH:MM[:SS] 字符串
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("时间格式无效，应为 HH:MM 或 HH:MM:SS: %q", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return TimeOfDay(hour*60 + minute), nil
}

// MustTimeOfDay 解析失败时 panic，仅用于包内常量和测试夹具
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// MinuteOfDay 将墙钟时间截断到当日分钟数
func MinuteOfDay(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// Hour 小时部分
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute 分钟部分
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String 存储形态统一渲染为秒限定的 HH:MM:SS
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hour(), t.Minute())
}

// Short 边界形态 HH:MM
func (t TimeOfDay) Short() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Before 严格早于
func (t TimeOfDay) Before(o TimeOfDay) bool { return t < o }

// MarshalJSON 序列化为秒限定字符串，保证存储表示恒为 HH:MM:SS
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON 从 HH:MM[:SS] 字符串反序列化
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("时间字段必须为字符串: %s", s)
	}
	parsed, err := ParseTimeOfDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
