package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sayamjn/rely-gate-sub002/internal/dto"
	"github.com/sayamjn/rely-gate-sub002/internal/model"
	"github.com/sayamjn/rely-gate-sub002/internal/repository"
)

// ErrRegNoExists 租户内学号重复
var ErrRegNoExists = errors.New("该学号已存在")

// StudentService 学生管理业务接口
type StudentService interface {
	Create(ctx context.Context, tenantID, operatorID string, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	Get(ctx context.Context, tenantID, id string) (*dto.StudentResponse, error)
	List(ctx context.Context, tenantID string, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	Update(ctx context.Context, tenantID, id, operatorID string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, tenantID, id, operatorID string) error
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, tenantID, operatorID string, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	// 学号租户内唯一，先查后插；数据库唯一约束兜底并发
	if _, err := s.repo.Student.GetByRegNo(ctx, tenantID, req.RegNo); err == nil {
		return nil, ErrRegNoExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	student := &model.Student{
		TenantID: tenantID,
		RegNo:    req.RegNo,
		Name:     req.Name,
		Phone:    req.Phone,
		IsActive: true,
	}
	student.CreatedBy = &operatorID
	student.UpdatedBy = &operatorID

	if err := s.repo.Student.Create(ctx, student); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrRegNoExists
		}
		s.logger.Error("创建学生失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}

	return toStudentResponse(student), nil
}

// ────────────────────── Get ──────────────────────

func (s *studentService) Get(ctx context.Context, tenantID, id string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return toStudentResponse(student), nil
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, tenantID string, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	students, total, err := s.repo.Student.List(ctx, tenantID, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		resp = append(resp, *toStudentResponse(&students[i]))
	}
	return resp, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, tenantID, id, operatorID string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}
	student.UpdatedBy = &operatorID

	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("更新学生失败", zap.String("student_id", id), zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, tenantID, id, operatorID string) error {
	if _, err := s.repo.Student.GetByID(ctx, tenantID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	return s.repo.Student.Delete(ctx, tenantID, id, operatorID)
}

func toStudentResponse(m *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		ID:        m.StudentID,
		RegNo:     m.RegNo,
		Name:      m.Name,
		Phone:     m.Phone,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
