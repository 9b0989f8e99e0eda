package domain

// UserSession identifies a logged-in user. Absence means anonymous.
type UserSession struct {
	UserID   int    `json:"userId"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// LoginInput represents login credentials
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupInput represents user registration data
type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
