package domain

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"omitempty,max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type AuthUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type UpdateProfileRequest struct {
	Name          string `json:"name" validate:"omitempty,max=120"`
	Phone         string `json:"phone" validate:"omitempty,max=32"`
	City          string `json:"city" validate:"omitempty,max=120"`
	Country       string `json:"country" validate:"omitempty,max=120"`
	BirthDate     string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	FoodInterests string `json:"foodInterests"`
	NewPassword   string `json:"newPassword" validate:"omitempty,min=6"`
}
