package configs

import (
	"log"
	"strconv"

	"backend/entity"

	"golang.org/x/crypto/bcrypt"
)

// สร้าง staff account ครั้งแรก
func SeedStaff() error {
	db := DB()
	username := getEnv("STAFF_USERNAME", "")
	pass := getEnv("STAFF_PASSWORD", "")
	if username == "" || pass == "" {
		log.Println("skip seeding staff: missing STAFF_USERNAME/STAFF_PASSWORD")
		return nil
	}

	var count int64
	db.Model(&entity.StaffUser{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		log.Println("staff already exists:", username)
		return nil
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	staff := entity.StaffUser{
		Username: username,
		Password: string(hash),
		Role:     "staff",
	}
	return db.Create(&staff).Error
}

// Seed โต๊ะตามจำนวนใน env (default 12) + เมนูตัวอย่างถ้ายังว่าง
func SeedLookups() error {
	db := DB()

	tables := 12
	if v, err := strconv.Atoi(getEnv("TABLE_COUNT", "12")); err == nil && v > 0 {
		tables = v
	}
	for n := 1; n <= tables; n++ {
		db.FirstOrCreate(&entity.Table{}, entity.Table{Number: n})
	}

	var menuCount int64
	db.Model(&entity.MenuItem{}).Count(&menuCount)
	if menuCount == 0 {
		db.Create(&[]entity.MenuItem{
			{Name: "Margherita Pizza", Category: "Pizza", Price: 1250},
			{Name: "Quattro Formaggi", Category: "Pizza", Price: 1490},
			{Name: "Coca-Cola 0.33", Category: "Drinks", Price: 250},
		})
	}

	log.Println("lookup tables seeded")
	return nil
}
