package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sayamjn/rely-gate-sub002/internal/model"
)

// MealRecordRepository 就餐台账数据访问接口
type MealRecordRepository interface {
	Create(ctx context.Context, record *model.MealRecord) error
	ListByDateRange(ctx context.Context, tenantID, fromDate, toDate string) ([]model.MealRecord, error)
	Exists(ctx context.Context, tenantID, studentID, mealType, action, recordDate string) (bool, error)
}

// mealRecordRepo MealRecordRepository 的 GORM 实现
type mealRecordRepo struct {
	db *gorm.DB
}

// NewMealRecordRepo 创建 MealRecordRepository 实例
func NewMealRecordRepo(db *gorm.DB) MealRecordRepository {
	return &mealRecordRepo{db: db}
}

func (r *mealRecordRepo) Create(ctx context.Context, record *model.MealRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *mealRecordRepo) ListByDateRange(ctx context.Context, tenantID, fromDate, toDate string) ([]model.MealRecord, error) {
	var records []model.MealRecord
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("tenant_id = ? AND record_date >= ? AND record_date <= ?", tenantID, fromDate, toDate).
		Order("recorded_at").
		Find(&records).Error
	return records, err
}

func (r *mealRecordRepo) Exists(ctx context.Context, tenantID, studentID, mealType, action, recordDate string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.MealRecord{}).
		Where("tenant_id = ? AND student_id = ? AND meal_type = ? AND action = ? AND record_date = ?",
			tenantID, studentID, mealType, action, recordDate).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
