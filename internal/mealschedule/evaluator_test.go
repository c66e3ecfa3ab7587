package mealschedule

import (
	"testing"
	"time"
)

// at 构造测试时刻：2026-03-02 是周一
func at(day Weekday, clock string) time.Time {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	t := MustTimeOfDay(clock)
	return base.AddDate(0, 0, int(day)).Add(time.Duration(t) * time.Minute)
}

func TestCurrentMealType_ServingHalfOpenBoundary(t *testing.T) {
	week := DefaultWeeklySchedule() // 午餐供餐 13:00–15:00

	if got := CurrentMealType(week, at(Monday, "14:59")); got != MealLunch {
		t.Errorf("14:59 应为午餐，实际=%s", got)
	}
	if got := CurrentMealType(week, at(Monday, "15:00")); got != MealNone {
		t.Errorf("15:00 恰在供餐上界，应不属于任何餐别，实际=%s", got)
	}
	if got := CurrentMealType(week, at(Monday, "13:00")); got != MealLunch {
		t.Errorf("13:00 恰在供餐下界，应为午餐，实际=%s", got)
	}
	if got := CurrentMealType(week, at(Monday, "19:30")); got != MealDinner {
		t.Errorf("19:30 应为晚餐，实际=%s", got)
	}
}

func TestCurrentMealType_DisabledMealNeverActive(t *testing.T) {
	week := DefaultWeeklySchedule()
	week[Monday].Lunch.Enabled = false

	if got := CurrentMealType(week, at(Monday, "14:00")); got != MealNone {
		t.Errorf("停用餐别在窗口内也不应活跃，实际=%s", got)
	}
	// 其他天不受影响
	if got := CurrentMealType(week, at(Tuesday, "14:00")); got != MealLunch {
		t.Errorf("周二午餐应正常活跃，实际=%s", got)
	}
}

func TestCurrentMealType_Deterministic(t *testing.T) {
	week := DefaultWeeklySchedule()
	now := at(Wednesday, "13:30")

	first := CurrentMealType(week, now)
	second := CurrentMealType(week, now)
	if first != second {
		t.Errorf("相同输入应产生相同输出: %s vs %s", first, second)
	}
}

func TestIsBookingAllowed_ClosedUpperBound(t *testing.T) {
	week := DefaultWeeklySchedule() // 午餐预订 10:00–12:00

	if !IsBookingAllowed(week, at(Monday, "12:00"), MealLunch) {
		t.Error("预订窗口为闭区间，12:00 整应允许预订")
	}
	if IsBookingAllowed(week, at(Monday, "12:01"), MealLunch) {
		t.Error("12:01 已过预订截止，应拒绝")
	}
	if !IsBookingAllowed(week, at(Monday, "10:00"), MealLunch) {
		t.Error("10:00 整应允许预订")
	}
	if IsBookingAllowed(week, at(Monday, "09:59"), MealLunch) {
		t.Error("09:59 尚未开放预订，应拒绝")
	}
}

func TestIsBookingAllowed_DisabledMeal(t *testing.T) {
	week := DefaultWeeklySchedule()
	week[Friday].Dinner.Enabled = false

	if IsBookingAllowed(week, at(Friday, "17:00"), MealDinner) {
		t.Error("停用餐别在预订窗口内也应拒绝")
	}
}

func TestValidateAction_DisabledDayShortCircuits(t *testing.T) {
	week := DefaultWeeklySchedule()
	week[Monday].Lunch.Enabled = false

	// 供餐窗口内的核销仍被停用短路拒绝
	result := ValidateAction(week, at(Monday, "14:00"), ActionCheckin, MealLunch)
	if result.Allowed {
		t.Error("停用日应短路拒绝核销")
	}
	if result.Message != "周一午餐未开放" {
		t.Errorf("应返回按天说明的停用消息，实际=%q", result.Message)
	}

	// 预订同样短路
	result = ValidateAction(week, at(Monday, "11:00"), ActionBooking, MealLunch)
	if result.Allowed {
		t.Error("停用日应短路拒绝预订")
	}
}

func TestValidateAction_BookingDefersToWindow(t *testing.T) {
	week := DefaultWeeklySchedule()

	if r := ValidateAction(week, at(Monday, "11:00"), ActionBooking, MealLunch); !r.Allowed {
		t.Errorf("预订窗口内应允许: %s", r.Message)
	}
	if r := ValidateAction(week, at(Monday, "13:30"), ActionBooking, MealLunch); r.Allowed {
		t.Error("预订窗口外应拒绝")
	}
}

func TestValidateAction_CheckinRequiresActiveMeal(t *testing.T) {
	week := DefaultWeeklySchedule()

	if r := ValidateAction(week, at(Monday, "13:30"), ActionCheckin, MealLunch); !r.Allowed {
		t.Errorf("供餐窗口内核销应允许: %s", r.Message)
	}
	// 午餐窗口内核销晚餐：餐别不匹配
	if r := ValidateAction(week, at(Monday, "13:30"), ActionCheckin, MealDinner); r.Allowed {
		t.Error("非活跃餐别的核销应拒绝")
	}
	// 供餐上界整点核销拒绝（半开区间）
	if r := ValidateAction(week, at(Monday, "15:00"), ActionCheckin, MealLunch); r.Allowed {
		t.Error("供餐结束整点的核销应拒绝")
	}
}

func TestNextMealInfo_SameDayOnly(t *testing.T) {
	week := DefaultWeeklySchedule()

	// 早晨：下一餐为午餐
	next, ok := NextMealInfo(week, at(Monday, "08:00"))
	if !ok || next.Meal != MealLunch {
		t.Fatalf("08:00 的下一餐应为午餐，实际=%v ok=%v", next, ok)
	}
	if next.MinutesUntil != 5*60 {
		t.Errorf("08:00 距午餐供餐开始应为 300 分钟，实际=%d", next.MinutesUntil)
	}

	// 午餐供餐中：下一餐为晚餐
	next, ok = NextMealInfo(week, at(Monday, "14:00"))
	if !ok || next.Meal != MealDinner {
		t.Errorf("14:00 的下一餐应为晚餐，实际=%v ok=%v", next, ok)
	}

	// 晚餐供餐开始后：当日无下一餐，不回卷到次日
	if _, ok := NextMealInfo(week, at(Monday, "19:00")); ok {
		t.Error("过了当日全部供餐开始时间后应返回无下一餐")
	}
}

func TestNextMealInfo_SkipsDisabledMeal(t *testing.T) {
	week := DefaultWeeklySchedule()
	week[Monday].Lunch.Enabled = false

	next, ok := NextMealInfo(week, at(Monday, "08:00"))
	if !ok || next.Meal != MealDinner {
		t.Errorf("午餐停用时下一餐应跳到晚餐，实际=%v ok=%v", next, ok)
	}
}
