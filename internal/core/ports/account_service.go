package ports

import (
	"context"

	"github.com/adminhub/user-accounts/internal/core/domain"
)

// RegisterInput carries a registration request.
type RegisterInput struct {
	UserName string        `json:"userName" validate:"required"`
	Email    string        `json:"email"    validate:"required,email"`
	Password string        `json:"password" validate:"required,min=6,max=16"`
	Phone    string        `json:"phone"    validate:"omitempty,number,len=10,startsnotwith=0"`
	Role     string        `json:"role"     validate:"required,oneof=admin superadmin"`
	Images   []ImageUpload `json:"image"    validate:"max=10,dive"`
}

// RegisterResult is returned by Register.
type RegisterResult struct {
	User *domain.User
	// AlreadyExists is true when (email, role) was taken; User is nil in that case.
	AlreadyExists bool
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=16"`
	Role     string `json:"role"     validate:"required,oneof=admin superadmin"`
}

// LoginResult is returned by Login.
type LoginResult struct {
	Token string
	User  *domain.User
}

// UpdateProfileInput carries a profile update. Empty fields are left untouched.
type UpdateProfileInput struct {
	UserID   string
	UserName string
	Phone    string
	Image    *ImageUpload
}

// ChangePasswordInput carries a password change request.
type ChangePasswordInput struct {
	UserID          string `json:"-"`
	OldPassword     string `json:"oldPassword"      validate:"required,min=6,max=16"`
	NewPassword     string `json:"newPassword"      validate:"required,min=6,max=16"`
	ConfirmPassword string `json:"confirm_password" validate:"required,min=6,max=16"`
}

// AccountService defines the account use cases.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, in ChangePasswordInput) error
	GetUserDetails(ctx context.Context, userID, role string) (*domain.User, error)
	RemoveUser(ctx context.Context, userID, role string) error
}
