package entity

import (
	"time"
)

// Order kinds
const (
	KindDineIn   = "dine_in"
	KindDelivery = "delivery"
)

type Order struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// dine-in: อ้างโต๊ะ / delivery: snapshot ข้อมูลลูกค้า (mutually exclusive)
	TableID *uint  `gorm:"index" json:"table_id"`
	Table   *Table `json:"-"`

	CustomerName    string `json:"customer_name,omitempty"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	DeliveryAddress string `json:"delivery_address,omitempty"`

	Status        string `gorm:"index" json:"status"`
	Total         Money  `json:"total"`
	Notes         string `json:"notes"`
	PaymentMethod string `json:"payment_method"`

	// นาทีโดยประมาณ ใส่ตอนรับออเดอร์ (accepted/preparing) เท่านั้น
	WaitTime *int `json:"wait_time"`

	FeedbackRating  *int   `json:"feedback_rating"`
	FeedbackComment string `json:"feedback_comment,omitempty"`

	// กันลูกค้า retry แล้วได้ออเดอร์ซ้ำ
	IdempotencyKey *string `gorm:"uniqueIndex" json:"-"`

	// preload แค่ตอน detail/broadcast
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// Kind ดูจากว่าออเดอร์ผูกโต๊ะหรือไม่
func (o *Order) Kind() string {
	if o.TableID != nil {
		return KindDineIn
	}
	return KindDelivery
}
