package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SelectedOption = snapshot ของ option ที่ลูกค้าเลือก ณ เวลาสั่ง
type SelectedOption struct {
	Name  string `json:"name"`
	Price Money  `json:"price"`
}

// OptionList serialize ลงคอลัมน์ TEXT เพราะเป็น snapshot ไม่ต้อง query ย่อย
type OptionList []SelectedOption

func (l OptionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *OptionList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		if len(v) == 0 {
			*l = nil
			return nil
		}
		return json.Unmarshal(v, l)
	case string:
		if v == "" {
			*l = nil
			return nil
		}
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into OptionList", src)
	}
}

type OrderItem struct {
	ID      uint `gorm:"primarykey" json:"id"`
	OrderID uint `gorm:"index" json:"order_id"`

	// nullable: ถ้าเมนูถูกลบทีหลัง ชื่อ/ราคาที่ capture ไว้ยังถูกต้อง
	MenuItemID *uint `json:"menu_item_id"`

	Name     string `json:"name"`
	Size     string `json:"size,omitempty"`
	Quantity int    `json:"quantity"`

	// ราคาต่อหน่วย ณ เวลาสั่ง (ไม่รวม options)
	Price Money `json:"price"`

	SelectedOptions OptionList `gorm:"type:text" json:"selected_options"`
}

// UnitPrice = ราคาต่อหน่วยรวม options
func (i *OrderItem) UnitPrice() Money {
	unit := i.Price
	for _, o := range i.SelectedOptions {
		unit += o.Price
	}
	return unit
}

// LineTotal derived ไม่เก็บลง DB
func (i *OrderItem) LineTotal() Money {
	return i.UnitPrice() * Money(i.Quantity)
}
