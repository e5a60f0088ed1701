package auth

import "foodgram/internal/domain"

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// RegisterResult is the created account plus the token issued with it.
type RegisterResult struct {
	User  *domain.User
	Token string
}

type RegisterResponse struct {
	Email     string `json:"email"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AuthToken string `json:"auth_token"`
}

type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

type JWTResponse struct {
	Access    string `json:"access"`
	ExpiresIn int64  `json:"expires_in"`
}
