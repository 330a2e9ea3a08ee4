package models

import (
	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin creates the first admin account when no admin exists.
func InitDefaultAdmin(email, password string) error {
	var count int64
	DB.Model(&User{}).Where("role = ?", constants.UserRoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	if email == "" {
		email = "admin@swadeshika.in"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  "Administrator",
		Role:         constants.UserRoleAdmin,
		Status:       constants.UserStatusActive,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "email", email)
		logger.Warnw("default_admin_password_change_required", "email", email)
	} else {
		logger.Warnw("default_admin_created", "email", email, "password_hidden", true)
	}
	return nil
}
