package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sayamjn/rely-gate-sub002/internal/model"
)

// StudentRepository 学生数据访问接口。
// 全部查询以 tenant_id 为第一维度，跨租户访问在此层即被隔离。
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, tenantID, id string) (*model.Student, error)
	GetByRegNo(ctx context.Context, tenantID, regNo string) (*model.Student, error)
	List(ctx context.Context, tenantID string, offset, limit int) ([]model.Student, int64, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, tenantID, id string, deletedBy string) error
}

// studentRepo StudentRepository 的 GORM 实现
type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, tenantID, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND student_id = ?", tenantID, id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByRegNo(ctx context.Context, tenantID, regNo string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reg_no = ?", tenantID, regNo).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context, tenantID string, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	base := r.db.WithContext(ctx).Model(&model.Student{}).Where("tenant_id = ?", tenantID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Order("reg_no").
		Offset(offset).
		Limit(limit).
		Find(&students).Error
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepo) Delete(ctx context.Context, tenantID, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("tenant_id = ? AND student_id = ?", tenantID, id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
