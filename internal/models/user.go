package models

import "time"

// User represents an account stored in the users table.
type User struct {
	ID                    string     `db:"id" json:"id"`
	Login                 string     `db:"login" json:"login"`
	Email                 string     `db:"email" json:"email"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	IsConfirmed           bool       `db:"is_confirmed" json:"-"`
	ConfirmationCode      *string    `db:"confirmation_code" json:"-"`
	ConfirmationExpiresAt *time.Time `db:"confirmation_expires_at" json:"-"`
	CreatedAt             time.Time  `db:"created_at" json:"createdAt"`
}

// UserView is the admin facing representation of a user.
type UserView struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// View strips credentials from the user.
func (u *User) View() UserView {
	return UserView{ID: u.ID, Login: u.Login, Email: u.Email, CreatedAt: u.CreatedAt}
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	ListQuery
	SearchLoginTerm string
	SearchEmailTerm string
}

// CreateUserRequest is the admin payload for creating a confirmed user.
type CreateUserRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=10,login"`
	Password string `json:"password" validate:"required,min=6,max=20"`
	Email    string `json:"email" validate:"required,email"`
}

// RecoveryCode binds a single-use password reset code to an email.
type RecoveryCode struct {
	Code      string    `db:"code"`
	Email     string    `db:"email"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
