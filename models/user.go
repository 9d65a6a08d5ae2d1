package models

import "time"

type User struct {
	UserID    string     `gorm:"primaryKey;size:32" json:"user_id"`
	Username  string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Password  string     `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}
