package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the account type. Admins may upload laws, citizens may only ask.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleCitizen Role = "Citizen"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCitizen
}

// User is an account of the legal assistant.
type User struct {
	gorm.Model

	Username    string     `gorm:"uniqueIndex;not null;size:150"`
	Email       string     `gorm:"uniqueIndex;not null;size:255"`
	Password    string     `gorm:"size:255" json:"-"` // bcrypt hash
	Role        Role       `gorm:"type:varchar(10);default:'Citizen';not null"`
	LastLoginAt *time.Time
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may manage the law corpus.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserView is the public representation returned on login.
type UserView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// View strips the password hash and gorm bookkeeping.
func (u *User) View() UserView {
	return UserView{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
