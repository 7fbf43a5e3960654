package domain

import "time"

const (
	RoleUser     = "USER"
	RoleOperator = "OPERATOR"
	RoleAdmin    = "ADMIN"
)

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleOperator || role == RoleAdmin
}

// Account holds the login credentials and role for a User.
type Account struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	Password string    `json:"-"`
	Role     string    `json:"role"`
	Created  time.Time `json:"created"`
	Changed  time.Time `json:"changed"`
}

type RegisterDTO struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=100"`
	Email    string `json:"email" binding:"required,email"`
}

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponseDTO struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Principal identifies the authenticated caller for ownership checks.
type Principal struct {
	UserID int64
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
