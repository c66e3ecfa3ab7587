package mealschedule

import (
	"fmt"
	"strings"
	"time"
)

// Weekday 星期枚举（周一为一周起点）
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// weekdayNames 规范化英文星期名，索引即 Weekday 值
var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Weekdays 按周一到周日的顺序返回全部星期，供遍历使用
func Weekdays() [7]Weekday {
	return [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// String 返回规范化的英文星期名（首字母大写）
func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// ParseWeekday 解析星期名，大小写不敏感；非法取值返回错误
func ParseWeekday(s string) (Weekday, error) {
	for i, name := range weekdayNames {
		if strings.EqualFold(s, name) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("无效的星期名: %q", s)
}

// WeekdayOf 将 time.Weekday 映射为本包的 Weekday
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// MealType 餐别枚举
type MealType string

const (
	MealLunch  MealType = "lunch"
	MealDinner MealType = "dinner"
	MealNone   MealType = "none"
)

// MealTypes 可配置的餐别（不含 MealNone）
func MealTypes() [2]MealType {
	return [2]MealType{MealLunch, MealDinner}
}

// ParseMealType 解析餐别，大小写不敏感；仅接受 lunch / dinner
func ParseMealType(s string) (MealType, error) {
	switch strings.ToLower(s) {
	case string(MealLunch):
		return MealLunch, nil
	case string(MealDinner):
		return MealDinner, nil
	}
	return "", fmt.Errorf("无效的餐别: %q", s)
}

// Segment 时段字段枚举：预订窗口与供餐窗口的起止
type Segment string

const (
	SegBookingStart Segment = "BookingStart"
	SegBookingEnd   Segment = "BookingEnd"
	SegServingStart Segment = "ServingStart"
	SegServingEnd   Segment = "ServingEnd"
)

// Segments 四个时段字段的固定顺序
func Segments() [4]Segment {
	return [4]Segment{SegBookingStart, SegBookingEnd, SegServingStart, SegServingEnd}
}
