package model

import (
	"time"
)

// User is an API account able to log in and call the customer endpoints.
type User struct {
	ID         uint       `gorm:"primaryKey"`
	Username   string     `gorm:"column:username;size:150;uniqueIndex;not null"`
	Email      string     `gorm:"column:email;size:254;index;not null"`
	Password   string     `gorm:"column:password;size:128;not null"`
	FirstName  string     `gorm:"column:first_name;size:150;not null"`
	LastName   string     `gorm:"column:last_name;size:150;not null"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true"`
	LastLogin  *time.Time `gorm:"column:last_login"`
	DateJoined time.Time  `gorm:"column:date_joined;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
