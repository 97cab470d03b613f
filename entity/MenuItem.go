package entity

import "gorm.io/gorm"

// MenuItem เป็นแค่ reference ของ order item — การจัดการเมนูอยู่นอก scope ระบบนี้
type MenuItem struct {
	gorm.Model
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    Money  `json:"price"`
}
