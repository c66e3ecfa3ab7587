package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sayamjn/rely-gate-sub002/internal/mealschedule"
	"github.com/sayamjn/rely-gate-sub002/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRecords    = errors.New("所选日期范围内无就餐记录")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 就餐台账导出为 Excel (.xlsx)，按核销时间排序
//   - 餐期配置导出为 iCalendar (.ics)，一周供餐窗口各生成一个 VEVENT
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportMealRecords 导出日期范围内的就餐台账为 Excel
	ExportMealRecords(ctx context.Context, tenantID, fromDate, toDate string) (*bytes.Buffer, string, error)
	// ExportScheduleICS 将本周供餐窗口导出为 iCalendar
	ExportScheduleICS(ctx context.Context, tenantID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time // 测试注入固定时钟
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportMealRecords — 导出就餐台账为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 表头: | 学号 | 姓名 | 餐别 | 动作 | 日期 | 时间 |
//   - 按核销时间排序（仓储层保证）
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportMealRecords(ctx context.Context, tenantID, fromDate, toDate string) (*bytes.Buffer, string, error) {
	records, err := s.repo.MealRecord.ListByDateRange(ctx, tenantID, fromDate, toDate)
	if err != nil {
		s.logger.Error("查询就餐台账失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "就餐记录"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 18)
	f.SetColWidth(sheetName, "C", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 14)
	f.SetColWidth(sheetName, "F", "F", 12)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("就餐记录 %s ~ %s", fromDate, toDate))
	f.MergeCell(sheetName, "A1", "F1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"学号", "姓名", "餐别", "动作", "日期", "时间"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, fmt.Sprintf("%s2", col), h)
	}

	// 数据行
	row := 3
	for _, rec := range records {
		regNo, name := rec.StudentID, "-"
		if rec.Student != nil {
			regNo = rec.Student.RegNo
			name = rec.Student.Name
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), regNo)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), mealTypeLabel(rec.MealType))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), actionLabel(rec.Action))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), rec.RecordDate)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), rec.RecordedAt.Format("15:04:05"))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("就餐记录_%s_%s.xlsx", fromDate, toDate)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportScheduleICS — 导出本周供餐窗口为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 以本周一为基准日，启用的每个供餐窗口生成一个 VEVENT；
// 停用的餐别不生成事件。

func (s *exportService) ExportScheduleICS(ctx context.Context, tenantID string) (*bytes.Buffer, string, error) {
	week, _, err := loadWeek(ctx, s.repo, s.logger, tenantID)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	monday := startOfWeek(now)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//rely-gate//meal-schedule//CN")

	for _, day := range mealschedule.Weekdays() {
		date := monday.AddDate(0, 0, int(day))
		for _, meal := range mealschedule.MealTypes() {
			w := week.Day(day).Meal(meal)
			if !w.Enabled {
				continue
			}

			uid := fmt.Sprintf("%s-%s-%s@rely-gate", tenantID, date.Format("20060102"), meal)
			event := cal.AddEvent(uid)
			event.SetCreatedTime(now)
			event.SetDtStampTime(now)
			event.SetStartAt(atMinute(date, w.ServingStart))
			event.SetEndAt(atMinute(date, w.ServingEnd))
			event.SetSummary(fmt.Sprintf("%s供餐", mealTypeLabel(string(meal))))
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("供餐安排_%s.ics", monday.Format("2006-01-02"))
	return buf, filename, nil
}

// ── 辅助函数 ──

// startOfWeek 返回 t 所在周的周一零点（保留 t 的时区）
func startOfWeek(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(mealschedule.WeekdayOf(t)))
}

// atMinute 将日零点加上分钟偏移得到具体时刻
func atMinute(date time.Time, tod mealschedule.TimeOfDay) time.Time {
	return date.Add(time.Duration(tod) * time.Minute)
}

func mealTypeLabel(mealType string) string {
	if mealType == string(mealschedule.MealDinner) {
		return "晚餐"
	}
	return "午餐"
}

func actionLabel(action string) string {
	if action == "consume" || action == "checkin" {
		return "核销"
	}
	return "登记"
}
