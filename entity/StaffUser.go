package entity

import "gorm.io/gorm"

// StaffUser สำหรับ waiter desk / admin panel
type StaffUser struct {
	gorm.Model
	Username string `gorm:"uniqueIndex" json:"username"`
	Password string `json:"-"` // bcrypt hash
	Role     string `json:"role"`
}
