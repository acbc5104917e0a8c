package user

import "time"

type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	Email        string    `gorm:"column:email;not null"`
	Phone        string    `gorm:"column:phone"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserRole is a role membership.
type UserRole struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:36"`
	RoleID    string    `gorm:"column:role_id;primaryKey;size:36"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
