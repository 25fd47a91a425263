package database

import (
	"github.com/Payphone-Digital/customer-service/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Token{},
		&model.CustomerUser{},
		&model.Customer{},
	); err != nil {
		return err
	}
	return EnsureIndexes(db)
}
