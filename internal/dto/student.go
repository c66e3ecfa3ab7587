package dto

// ── 学生模块 DTO ──

// CreateStudentRequest 创建学生请求
type CreateStudentRequest struct {
	RegNo string `json:"reg_no" binding:"required,max=50"`
	Name  string `json:"name"   binding:"required,max=200"`
	Phone string `json:"phone"  binding:"omitempty,max=20"`
}

// UpdateStudentRequest 更新学生请求（部分更新）
type UpdateStudentRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=1,max=200"`
	Phone    *string `json:"phone"     binding:"omitempty,max=20"`
	IsActive *bool   `json:"is_active"`
}

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	Page     int `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	ID        string `json:"id"`
	RegNo     string `json:"reg_no"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}
