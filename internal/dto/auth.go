package dto

// ── 认证模块 DTO ──

// LoginRequest 管理员登录请求
type LoginRequest struct {
	TenantCode string `json:"tenant_code" binding:"required"`
	Username   string `json:"username"    binding:"required"`
	Password   string `json:"password"    binding:"required,min=6"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	ExpiresIn    int           `json:"expires_in"` // Access Token 有效期（秒）
	Admin        AdminResponse `json:"admin"`
}

// AdminResponse 管理员信息响应（脱敏）
type AdminResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name,omitempty"`
}
