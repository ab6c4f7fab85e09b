package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email         string             `json:"email" bson:"email"`
	Password      string             `json:"-" bson:"password"`
	Role          UserRole           `json:"role" bson:"role"`
	FirstName     string             `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName      string             `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Phone         string             `json:"phone,omitempty" bson:"phone,omitempty"`
	IsActive      bool               `json:"isActive" bson:"isActive"`
	LoginAttempts int                `json:"-" bson:"loginAttempts"`
	LockUntil     *time.Time         `json:"-" bson:"lockUntil,omitempty"`
	LastLogin     *time.Time         `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsLocked reports whether a lock is set and still in the future at now.
func (u User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// LockLapsed reports a lock that was set but whose window has passed.
func (u User) LockLapsed(now time.Time) bool {
	return u.LockUntil != nil && !u.LockUntil.After(now)
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail is applied before every lookup and insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (LoginRequest) FieldMessage(field, tag string) string {
	if field == "email" {
		return "Please provide a valid email address"
	}
	return "Password must be at least 6 characters long"
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UserView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      UserRole   `json:"role"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	FullName  string     `json:"fullName,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (u User) View() UserView {
	return UserView{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}
