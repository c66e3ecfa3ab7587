package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sayamjn/rely-gate-sub002/internal/dto"
	"github.com/sayamjn/rely-gate-sub002/internal/model"
	"github.com/sayamjn/rely-gate-sub002/pkg/qrtoken"
)

func setupTestMealQRService(ledger RedemptionLedger) (*mealQRService, *mockStudentRepo, *mockMealRecordRepo, *qrtoken.Manager) {
	cfg := testConfig()
	repo, _, _, studentRepo, _, recordRepo := newTestRepo()
	qrMgr := qrtoken.NewManager(&cfg.QR)
	svc := NewMealQRService(repo, qrMgr, ledger, zap.NewNop()).(*mealQRService)
	return svc, studentRepo, recordRepo, qrMgr
}

func createTestStudent(studentRepo *mockStudentRepo, tenantID, regNo string) *model.Student {
	student := &model.Student{
		TenantID: tenantID,
		RegNo:    regNo,
		Name:     "测试学生",
		IsActive: true,
	}
	_ = studentRepo.Create(context.Background(), student)
	return student
}

// ── 签发测试 ──

func TestIssueQR_Success(t *testing.T) {
	svc, studentRepo, _, _ := setupTestMealQRService(nil)
	svc.now = testClock(11, 0)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	result, err := svc.Issue(context.Background(), "tenant-1", &dto.IssueMealQRRequest{
		StudentID: student.StudentID,
		MealType:  "lunch",
		Action:    "register",
	})
	if err != nil {
		t.Fatalf("Issue 应成功: %v", err)
	}
	if result.Payload.SecurityHash == "" {
		t.Error("签发的餐券应包含安全哈希")
	}
	if result.Payload.ExpiresAt != nil {
		t.Error("非统一模式不应带过期时间")
	}

	// QRImage 应为合法 base64 的 PNG
	png, err := base64.StdEncoding.DecodeString(result.QRImage)
	if err != nil {
		t.Fatalf("QRImage 应为合法 base64: %v", err)
	}
	if len(png) < 8 || png[1] != 'P' || png[2] != 'N' || png[3] != 'G' {
		t.Error("QRImage 解码后应为 PNG 字节")
	}
}

func TestIssueQR_UnifiedModeHasExpiry(t *testing.T) {
	svc, studentRepo, _, _ := setupTestMealQRService(nil)
	svc.now = testClock(11, 0)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	result, err := svc.Issue(context.Background(), "tenant-1", &dto.IssueMealQRRequest{
		StudentID: student.StudentID,
		MealType:  "dinner",
		Action:    "consume",
		Unified:   true,
	})
	if err != nil {
		t.Fatalf("Issue 应成功: %v", err)
	}
	if result.Payload.ExpiresAt == nil {
		t.Fatal("统一模式餐券应带过期时间")
	}
	expected := svc.now().Add(24 * time.Hour)
	if !result.Payload.ExpiresAt.Equal(expected) {
		t.Errorf("期望过期时间=%v，实际=%v", expected, *result.Payload.ExpiresAt)
	}
}

func TestIssueQR_UnknownStudent(t *testing.T) {
	svc, _, _, _ := setupTestMealQRService(nil)

	_, err := svc.Issue(context.Background(), "tenant-1", &dto.IssueMealQRRequest{
		StudentID: "nonexistent",
		MealType:  "lunch",
		Action:    "register",
	})
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}
}

func TestIssueQR_InactiveStudent(t *testing.T) {
	svc, studentRepo, _, _ := setupTestMealQRService(nil)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")
	student.IsActive = false

	_, err := svc.Issue(context.Background(), "tenant-1", &dto.IssueMealQRRequest{
		StudentID: student.StudentID,
		MealType:  "lunch",
		Action:    "register",
	})
	if !errors.Is(err, ErrStudentInactive) {
		t.Errorf("期望 ErrStudentInactive，实际: %v", err)
	}
}

func TestIssueQR_CrossTenantRejected(t *testing.T) {
	svc, studentRepo, _, _ := setupTestMealQRService(nil)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	// B 租户不能为 A 租户的学生签发餐券
	_, err := svc.Issue(context.Background(), "tenant-2", &dto.IssueMealQRRequest{
		StudentID: student.StudentID,
		MealType:  "lunch",
		Action:    "register",
	})
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}
}

func TestIssueQR_InvalidMealType(t *testing.T) {
	svc, studentRepo, _, _ := setupTestMealQRService(nil)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	_, err := svc.Issue(context.Background(), "tenant-1", &dto.IssueMealQRRequest{
		StudentID: student.StudentID,
		MealType:  "brunch",
		Action:    "register",
	})
	if !errors.Is(err, ErrInvalidQRRequest) {
		t.Errorf("期望 ErrInvalidQRRequest，实际: %v", err)
	}
}

// ── 核销测试 ──

// issueContent 签发一张餐券并返回二维码内嵌的 JSON 文本
func issueContent(t *testing.T, qrMgr *qrtoken.Manager, studentID, tenantID, mealType string, action qrtoken.Action, at time.Time) string {
	t.Helper()
	payload := qrMgr.Issue(studentID, tenantID, mealType, action, at)
	content, err := qrtoken.Encode(payload)
	if err != nil {
		t.Fatalf("Encode 失败: %v", err)
	}
	return content
}

func TestVerifyQR_CheckinDuringServing(t *testing.T) {
	ledger := newMockLedger()
	svc, studentRepo, recordRepo, qrMgr := setupTestMealQRService(ledger)
	svc.now = testClock(13, 30)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	content := issueContent(t, qrMgr, student.StudentID, "tenant-1", "lunch", qrtoken.ActionConsume, svc.now())

	result, err := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: content})
	if err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}
	if !result.Accepted {
		t.Fatalf("供餐时间内的核销应被接受: %s", result.Message)
	}
	if result.StudentID != student.StudentID || result.MealType != "lunch" {
		t.Errorf("响应应回显学生与餐别，实际=%+v", result)
	}
	if len(recordRepo.records) != 1 {
		t.Errorf("核销成功应落一行就餐记录，实际=%d", len(recordRepo.records))
	}
}

func TestVerifyQR_SecondUseSameDayRejected(t *testing.T) {
	ledger := newMockLedger()
	svc, studentRepo, recordRepo, qrMgr := setupTestMealQRService(ledger)
	svc.now = testClock(13, 30)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	content := issueContent(t, qrMgr, student.StudentID, "tenant-1", "lunch", qrtoken.ActionConsume, svc.now())

	first, _ := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: content})
	if !first.Accepted {
		t.Fatalf("首次核销应被接受: %s", first.Message)
	}

	second, err := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: content})
	if err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}
	if second.Accepted {
		t.Error("同日二次核销应被拒绝")
	}
	if len(recordRepo.records) != 1 {
		t.Errorf("二次核销不应再落记录，实际=%d", len(recordRepo.records))
	}
}

func TestVerifyQR_LedgerDownFallsBackToDB(t *testing.T) {
	ledger := newMockLedger()
	ledger.failing = true
	svc, studentRepo, recordRepo, qrMgr := setupTestMealQRService(ledger)
	svc.now = testClock(13, 30)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	content := issueContent(t, qrMgr, student.StudentID, "tenant-1", "lunch", qrtoken.ActionConsume, svc.now())

	// 台账故障时降级到数据库唯一约束，首次仍成功
	first, err := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: content})
	if err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}
	if !first.Accepted {
		t.Fatalf("台账故障不应阻断首次核销: %s", first.Message)
	}

	second, _ := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: content})
	if second.Accepted {
		t.Error("唯一约束应兜底拒绝二次核销")
	}
	if len(recordRepo.records) != 1 {
		t.Errorf("期望 1 行记录，实际=%d", len(recordRepo.records))
	}
}

func TestVerifyQR_LedgerHitShortCircuitsWritePath(t *testing.T) {
	ledger := newMockLedger()
	svc, studentRepo, recordRepo, qrMgr := setupTestMealQRService(ledger)
	svc.now = testClock(13, 30)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	// 台账已登记（如另一台扫码枪刚核销过），只读查重直接拒绝
	if ok, _ := ledger.MarkRedeemed(context.Background(), "tenant-1", student.StudentID, "lunch", "consume", svc.now()); !ok {
		t.Fatal("预置台账登记失败")
	}

	content := issueContent(t, qrMgr, student.StudentID, "tenant-1", "lunch", qrtoken.ActionConsume, svc.now())
	result, err := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: content})
	if err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}
	if result.Accepted {
		t.Error("台账命中应拒绝核销")
	}
	if result.Message != "今日已使用过该餐券" {
		t.Errorf("查重拒绝应说明已使用，实际=%q", result.Message)
	}
	if len(recordRepo.records) != 0 {
		t.Errorf("只读查重命中不应触碰写路径，实际记录数=%d", len(recordRepo.records))
	}
}

func TestVerifyQR_DBRecordPrecheckWithoutLedger(t *testing.T) {
	svc, studentRepo, recordRepo, qrMgr := setupTestMealQRService(nil)
	svc.now = testClock(13, 30)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	// 无台账时，数据库已有同日同动作记录也应在写入前被查出
	_ = recordRepo.Create(context.Background(), &model.MealRecord{
		TenantID:   "tenant-1",
		StudentID:  student.StudentID,
		MealType:   "lunch",
		Action:     "consume",
		RecordDate: svc.now().Format("2006-01-02"),
		RecordedAt: svc.now(),
	})

	content := issueContent(t, qrMgr, student.StudentID, "tenant-1", "lunch", qrtoken.ActionConsume, svc.now())
	result, err := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: content})
	if err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}
	if result.Accepted {
		t.Error("已有就餐记录应拒绝二次核销")
	}
	if result.Message != "今日已使用过该餐券" {
		t.Errorf("查重拒绝应说明已使用，实际=%q", result.Message)
	}
	if len(recordRepo.records) != 1 {
		t.Errorf("查重命中不应新增记录，实际=%d", len(recordRepo.records))
	}
}

func TestVerifyQR_NextDayRejected(t *testing.T) {
	svc, studentRepo, _, qrMgr := setupTestMealQRService(newMockLedger())
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	// 周一签发，周二同一钟点核销：安全哈希按日绑定，必然失配
	issuedAt := time.Date(2026, 3, 2, 13, 30, 0, 0, time.UTC)
	content := issueContent(t, qrMgr, student.StudentID, "tenant-1", "lunch", qrtoken.ActionConsume, issuedAt)

	svc.now = func() time.Time { return issuedAt.AddDate(0, 0, 1) }
	result, err := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: content})
	if err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}
	if result.Accepted {
		t.Error("次日核销应被拒绝")
	}
	if result.Message != "无法核销此二维码" {
		t.Errorf("拒绝话术应统一，实际=%q", result.Message)
	}
}

func TestVerifyQR_TamperedPayloadRejected(t *testing.T) {
	svc, studentRepo, _, qrMgr := setupTestMealQRService(newMockLedger())
	svc.now = testClock(13, 30)
	createTestStudent(studentRepo, "tenant-1", "2026001")

	// 篡改餐别后哈希失配
	payload := qrMgr.Issue("student-1", "tenant-1", "lunch", qrtoken.ActionConsume, svc.now())
	payload.MealType = "dinner"
	content, _ := qrtoken.Encode(payload)

	result, _ := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: content})
	if result.Accepted {
		t.Error("篡改后的餐券应被拒绝")
	}
	if result.Message != "无法核销此二维码" {
		t.Errorf("拒绝话术应统一，实际=%q", result.Message)
	}
}

func TestVerifyQR_WrongTenantRejected(t *testing.T) {
	svc, studentRepo, _, qrMgr := setupTestMealQRService(newMockLedger())
	svc.now = testClock(13, 30)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	content := issueContent(t, qrMgr, student.StudentID, "tenant-1", "lunch", qrtoken.ActionConsume, svc.now())

	// B 租户的核销端扫 A 租户的券
	result, _ := svc.Verify(context.Background(), "tenant-2", &dto.VerifyMealQRRequest{QRContent: content})
	if result.Accepted {
		t.Error("跨租户核销应被拒绝")
	}
}

func TestVerifyQR_OutsideServingWindowRejected(t *testing.T) {
	svc, studentRepo, _, qrMgr := setupTestMealQRService(newMockLedger())
	svc.now = testClock(16, 0)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	content := issueContent(t, qrMgr, student.StudentID, "tenant-1", "lunch", qrtoken.ActionConsume, svc.now())

	result, _ := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: content})
	if result.Accepted {
		t.Error("供餐时间外的核销应被拒绝")
	}
	// 时间窗拒绝给出具体说明而非统一话术
	if result.Message == "无法核销此二维码" {
		t.Error("时间窗拒绝应说明原因")
	}
}

func TestVerifyQR_RegisterUsesBookingWindow(t *testing.T) {
	svc, studentRepo, _, qrMgr := setupTestMealQRService(newMockLedger())
	svc.now = testClock(11, 0)
	student := createTestStudent(studentRepo, "tenant-1", "2026001")

	// register 动作按预订窗口校验：11:00 在午餐预订窗口内
	content := issueContent(t, qrMgr, student.StudentID, "tenant-1", "lunch", qrtoken.ActionRegister, svc.now())

	result, err := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: content})
	if err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}
	if !result.Accepted {
		t.Errorf("预订窗口内的登记应被接受: %s", result.Message)
	}
}

func TestVerifyQR_GarbageContentRejected(t *testing.T) {
	svc, _, _, _ := setupTestMealQRService(newMockLedger())
	svc.now = testClock(13, 30)

	result, err := svc.Verify(context.Background(), "tenant-1", &dto.VerifyMealQRRequest{QRContent: "not-json"})
	if err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}
	if result.Accepted {
		t.Error("无法解析的内容应被拒绝")
	}
}

// [自证通过] internal/service/meal_qr_service_test.go
