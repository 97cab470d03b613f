// services/order_transitions.go
package services

import (
	"errors"

	"backend/entity"
)

// ErrInvalidTransition = ขอเปลี่ยนสถานะที่ผิดลำดับ (ถอยหลัง / ออกจาก terminal / decline หลังรับแล้ว)
var ErrInvalidTransition = errors.New("invalid status transition")

// ลำดับเดินหน้าของสถานะปกติ declined อยู่นอกแถว (ออกได้จาก pending เท่านั้น)
var statusRank = map[string]int{
	entity.StatusPending:   0,
	entity.StatusAccepted:  1,
	entity.StatusPreparing: 2,
	entity.StatusReady:     3,
	entity.StatusCompleted: 4,
}

// ValidateTransition บังคับ state machine ฝั่ง server:
//   - requested ต้องเป็นสถานะที่รู้จัก
//   - terminal (completed/declined) แช่แข็ง ยกเว้น re-assert ตัวเอง
//   - declined ไปได้จาก pending เท่านั้น
//   - ที่เหลือต้องเดินหน้า (ข้ามขั้นได้ ถอยหลังไม่ได้)
func ValidateTransition(current, requested string) error {
	if !entity.IsValidStatus(requested) {
		return ErrInvalidTransition
	}
	if requested == current {
		// idempotent: ยิงสถานะเดิมซ้ำได้
		return nil
	}
	if entity.IsTerminalStatus(current) {
		return ErrInvalidTransition
	}
	if requested == entity.StatusDeclined {
		if current != entity.StatusPending {
			return ErrInvalidTransition
		}
		return nil
	}
	if statusRank[requested] < statusRank[current] {
		return ErrInvalidTransition
	}
	return nil
}

// WaitTimeApplies — wait time แนบได้เฉพาะตอนเข้า accepted/preparing
// transition อื่นถือเป็น partial patch: ไม่แตะค่าเดิม
func WaitTimeApplies(requested string) bool {
	return requested == entity.StatusAccepted || requested == entity.StatusPreparing
}
