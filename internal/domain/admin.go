package domain

import "time"

const (
	AdminRoleAdmin   = "admin"
	AdminRoleManager = "manager"
)

// AdminUser is a back-office account. The password hash never leaves the
// server.
type AdminUser struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// AdminSession is a live server-side login
type AdminSession struct {
	ID        string    `json:"id"`
	AdminID   int64     `json:"adminId"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}
