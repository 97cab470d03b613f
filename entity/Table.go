package entity

import "gorm.io/gorm"

// Table = โต๊ะในร้าน (ลูกค้า scan QR ของโต๊ะแล้วสั่ง)
type Table struct {
	gorm.Model
	Number int `gorm:"uniqueIndex" json:"number"`
}
