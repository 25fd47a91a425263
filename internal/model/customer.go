package model

import (
	"time"

	"github.com/google/uuid"
)

// CustomerUser is the identity owned by exactly one Customer.
type CustomerUser struct {
	ID         uint      `gorm:"primaryKey"`
	Email      string    `gorm:"column:email;size:254;uniqueIndex;not null"`
	Name       string    `gorm:"column:name;size:50;not null"`
	LastName   string    `gorm:"column:last_name;size:50;not null"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	DateJoined time.Time `gorm:"column:date_joined;autoCreateTime"`
}

func (CustomerUser) TableName() string {
	return "customer_users"
}

// Customer is a wallet holder. CreatedAt is stamped once on insert and never
// written again.
type Customer struct {
	ID        uint         `gorm:"primaryKey"`
	WalletID  uuid.UUID    `gorm:"column:wallet_id;type:uuid;uniqueIndex;not null"`
	SexTape   string       `gorm:"column:sex_tape;size:6;not null"`
	DNI       int64        `gorm:"column:dni;uniqueIndex;not null"`
	BirthDate time.Time    `gorm:"column:birth_date;not null"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;<-:create"`
	UserID    uint         `gorm:"column:user_id;uniqueIndex;not null"`
	User      CustomerUser `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Customer) TableName() string {
	return "customers"
}
