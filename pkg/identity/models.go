package identity

import "time"

const (
	RoleAdmin  = "Admin"
	RoleDoctor = "Doctor"
	RoleNurse  = "Nurse"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey;column:id"`
	Username     string    `json:"username" gorm:"column:username;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:hashed_password"`
	Role         string    `json:"role" gorm:"column:role"`
	Active       bool      `json:"is_active" gorm:"column:is_active"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}
