package model

import "time"

// Token is an opaque bearer credential. A user owns at most one token row.
type Token struct {
	Key     string    `gorm:"column:key;primaryKey;size:40"`
	UserID  uint      `gorm:"column:user_id;uniqueIndex;not null"`
	Created time.Time `gorm:"column:created;not null"`
	User    User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Token) TableName() string {
	return "auth_tokens"
}
