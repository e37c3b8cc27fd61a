package domain

import (
	"time"

	"gorm.io/gorm"
)

// User represents an administrator account
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"uniqueIndex;not null" json:"username"`
	HashedPassword string     `gorm:"not null" json:"-"`
	IsActive       bool       `gorm:"default:true" json:"isActive"`
	IsAdmin        bool       `gorm:"default:false" json:"isAdmin"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := tx.NowFunc()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate hook
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = tx.NowFunc()
	return nil
}
