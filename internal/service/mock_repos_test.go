package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sayamjn/rely-gate-sub002/internal/model"
	apperrors "github.com/sayamjn/rely-gate-sub002/pkg/errors"
)

// ── Mock TenantRepository ──

type mockTenantRepo struct {
	tenants map[string]*model.Tenant // key: tenant_id 与 code 双索引
}

func newMockTenantRepo() *mockTenantRepo {
	return &mockTenantRepo{tenants: make(map[string]*model.Tenant)}
}

func (m *mockTenantRepo) Create(_ context.Context, tenant *model.Tenant) error {
	if tenant.TenantID == "" {
		tenant.TenantID = "tenant-" + tenant.Code
	}
	m.tenants[tenant.TenantID] = tenant
	m.tenants["code:"+tenant.Code] = tenant
	return nil
}

func (m *mockTenantRepo) GetByID(_ context.Context, id string) (*model.Tenant, error) {
	if t, ok := m.tenants[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTenantRepo) GetByCode(_ context.Context, code string) (*model.Tenant, error) {
	if t, ok := m.tenants["code:"+code]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTenantRepo) List(_ context.Context) ([]model.Tenant, error) {
	seen := make(map[string]bool)
	var result []model.Tenant
	for _, t := range m.tenants {
		if !seen[t.TenantID] {
			seen[t.TenantID] = true
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *mockTenantRepo) Update(_ context.Context, tenant *model.Tenant) error {
	m.tenants[tenant.TenantID] = tenant
	m.tenants["code:"+tenant.Code] = tenant
	return nil
}

// ── Mock AdminUserRepository ──

type mockAdminUserRepo struct {
	admins map[string]*model.AdminUser
}

func newMockAdminUserRepo() *mockAdminUserRepo {
	return &mockAdminUserRepo{admins: make(map[string]*model.AdminUser)}
}

func (m *mockAdminUserRepo) Create(_ context.Context, admin *model.AdminUser) error {
	if admin.AdminID == "" {
		admin.AdminID = "admin-" + admin.Username
	}
	m.admins[admin.AdminID] = admin
	return nil
}

func (m *mockAdminUserRepo) GetByID(_ context.Context, id string) (*model.AdminUser, error) {
	if a, ok := m.admins[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminUserRepo) GetByUsername(_ context.Context, tenantID, username string) (*model.AdminUser, error) {
	for _, a := range m.admins {
		if a.TenantID == tenantID && a.Username == username {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminUserRepo) Update(_ context.Context, admin *model.AdminUser) error {
	m.admins[admin.AdminID] = admin
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
	seq      int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		m.seq++
		student.StudentID = fmt.Sprintf("student-%d", m.seq)
	}
	student.CreatedAt = time.Now()
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, tenantID, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok && s.TenantID == tenantID {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByRegNo(_ context.Context, tenantID, regNo string) (*model.Student, error) {
	for _, s := range m.students {
		if s.TenantID == tenantID && s.RegNo == regNo {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context, tenantID string, offset, limit int) ([]model.Student, int64, error) {
	var all []model.Student
	for _, s := range m.students {
		if s.TenantID == tenantID {
			all = append(all, *s)
		}
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, tenantID, id string, _ string) error {
	if s, ok := m.students[id]; ok && s.TenantID == tenantID {
		delete(m.students, id)
		return nil
	}
	return gorm.ErrRecordNotFound
}

// ── Mock MealSettingsRepository ──

type mockMealSettingsRepo struct {
	byTenant map[string]*model.MealSettings
	// createErr 注入建行失败，用于测试引导降级路径
	createErr error
}

func newMockMealSettingsRepo() *mockMealSettingsRepo {
	return &mockMealSettingsRepo{byTenant: make(map[string]*model.MealSettings)}
}

func (m *mockMealSettingsRepo) GetByTenant(_ context.Context, tenantID string) (*model.MealSettings, error) {
	if s, ok := m.byTenant[tenantID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMealSettingsRepo) Create(_ context.Context, settings *model.MealSettings) error {
	if m.createErr != nil {
		return m.createErr
	}
	if settings.SettingsID == "" {
		settings.SettingsID = "settings-" + settings.TenantID
	}
	cp := *settings
	m.byTenant[settings.TenantID] = &cp
	return nil
}

// Update 模拟乐观锁：版本不匹配返回 ErrOptimisticLock
func (m *mockMealSettingsRepo) Update(_ context.Context, settings *model.MealSettings) error {
	current, ok := m.byTenant[settings.TenantID]
	if !ok || current.Version != settings.Version {
		return apperrors.ErrOptimisticLock
	}
	settings.Version++
	cp := *settings
	m.byTenant[settings.TenantID] = &cp
	return nil
}

// ── Mock MealRecordRepository ──

type mockMealRecordRepo struct {
	records []model.MealRecord
}

func newMockMealRecordRepo() *mockMealRecordRepo {
	return &mockMealRecordRepo{}
}

func (m *mockMealRecordRepo) Create(_ context.Context, record *model.MealRecord) error {
	// 模拟 (tenant, student, meal, action, date) 唯一约束
	for _, r := range m.records {
		if r.TenantID == record.TenantID && r.StudentID == record.StudentID &&
			r.MealType == record.MealType && r.Action == record.Action &&
			r.RecordDate == record.RecordDate {
			return fmt.Errorf("ERROR: duplicate key value violates unique constraint \"uq_meal_records_once\"")
		}
	}
	if record.RecordID == "" {
		record.RecordID = fmt.Sprintf("record-%d", len(m.records)+1)
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *mockMealRecordRepo) ListByDateRange(_ context.Context, tenantID, fromDate, toDate string) ([]model.MealRecord, error) {
	var result []model.MealRecord
	for _, r := range m.records {
		if r.TenantID == tenantID && r.RecordDate >= fromDate && r.RecordDate <= toDate {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockMealRecordRepo) Exists(_ context.Context, tenantID, studentID, mealType, action, recordDate string) (bool, error) {
	for _, r := range m.records {
		if r.TenantID == tenantID && r.StudentID == studentID &&
			r.MealType == mealType && r.Action == action && r.RecordDate == recordDate {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock RedemptionLedger ──

type mockLedger struct {
	redeemed map[string]bool
	failing  bool
}

func newMockLedger() *mockLedger {
	return &mockLedger{redeemed: make(map[string]bool)}
}

func (m *mockLedger) MarkRedeemed(_ context.Context, tenantID, studentID, mealType, action string, day time.Time) (bool, error) {
	if m.failing {
		return false, fmt.Errorf("redis: connection refused")
	}
	key := fmt.Sprintf("%s:%s:%s:%s:%s", tenantID, studentID, mealType, action, day.Format("2006-01-02"))
	if m.redeemed[key] {
		return false, nil
	}
	m.redeemed[key] = true
	return true, nil
}

func (m *mockLedger) IsRedeemed(_ context.Context, tenantID, studentID, mealType, action string, day time.Time) (bool, error) {
	if m.failing {
		return false, fmt.Errorf("redis: connection refused")
	}
	key := fmt.Sprintf("%s:%s:%s:%s:%s", tenantID, studentID, mealType, action, day.Format("2006-01-02"))
	return m.redeemed[key], nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	entries map[string]bool
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{entries: make(map[string]bool)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	m.entries[jti] = true
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return m.entries[jti], nil
}
