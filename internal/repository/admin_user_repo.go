package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sayamjn/rely-gate-sub002/internal/model"
)

// AdminUserRepository 租户管理员数据访问接口
type AdminUserRepository interface {
	Create(ctx context.Context, admin *model.AdminUser) error
	GetByID(ctx context.Context, id string) (*model.AdminUser, error)
	GetByUsername(ctx context.Context, tenantID, username string) (*model.AdminUser, error)
	Update(ctx context.Context, admin *model.AdminUser) error
}

// adminUserRepo AdminUserRepository 的 GORM 实现
type adminUserRepo struct {
	db *gorm.DB
}

// NewAdminUserRepo 创建 AdminUserRepository 实例
func NewAdminUserRepo(db *gorm.DB) AdminUserRepository {
	return &adminUserRepo{db: db}
}

func (r *adminUserRepo) Create(ctx context.Context, admin *model.AdminUser) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminUserRepo) GetByID(ctx context.Context, id string) (*model.AdminUser, error) {
	var admin model.AdminUser
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Where("admin_id = ?", id).
		First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminUserRepo) GetByUsername(ctx context.Context, tenantID, username string) (*model.AdminUser, error) {
	var admin model.AdminUser
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Where("tenant_id = ? AND username = ?", tenantID, username).
		First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminUserRepo) Update(ctx context.Context, admin *model.AdminUser) error {
	return r.db.WithContext(ctx).Save(admin).Error
}
