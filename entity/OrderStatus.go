package entity

// สถานะออเดอร์ เดินหน้าอย่างเดียว: pending → accepted → preparing → ready → completed
// และทางออกข้าง pending → declined
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusDeclined  = "declined"
)

// Payment methods (บันทึกอย่างเดียว ไม่มีการตัดเงินจริง)
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// IsTerminalStatus = สถานะจบแล้ว เปลี่ยนต่อไม่ได้
func IsTerminalStatus(s string) bool {
	return s == StatusCompleted || s == StatusDeclined
}

// IsValidStatus เช็คว่าเป็นสถานะที่ระบบรู้จัก
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusPreparing, StatusReady, StatusCompleted, StatusDeclined:
		return true
	}
	return false
}
