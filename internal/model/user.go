package model

import "time"

// User 用户账号
type User struct {
	ID           int64     `json:"id" db:"id"`
	FullName     string    `json:"full_name" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"` // user / admin
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ScanRecord 扫描历史记录，ResultJSON保存完整ScanResult
type ScanRecord struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Target     string    `json:"target" db:"target"`
	PortRange  string    `json:"port_range" db:"port_range"`
	ResultJSON string    `json:"-" db:"result_json"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
