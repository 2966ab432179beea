package dto

// CreateStaffRequest registers an admin or gate operator account.
type CreateStaffRequest struct {
	Email    string `json:"email" validate:"required,email,max=160"`
	FullName string `json:"fullName" validate:"required,max=120"`
	Role     string `json:"role" validate:"required,oneof=ADMIN GATEKEEPER"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateStaffRequest changes an account. Nil fields are left untouched.
type UpdateStaffRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=120"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN GATEKEEPER"`
	Active   *bool   `json:"active"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// StaffQuery captures staff list query parameters.
type StaffQuery struct {
	Role     string `form:"role"`
	Active   *bool  `form:"active"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
