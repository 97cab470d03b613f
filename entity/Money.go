package entity

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Money เก็บจำนวนเงินเป็นหน่วยย่อย (cents) เพื่อเลี่ยง floating point
type Money int64

// ParseMoney แปลง decimal string เช่น "12.5" → 1250 cents
// เกิน 2 ตำแหน่งทศนิยม = reject ไม่ปัดเศษเงียบ ๆ
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 2 {
		return 0, fmt.Errorf("too many decimal places: %s", s)
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %s", s)
	}
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %s", s)
	}
	cents := whole*100 + frac
	if neg {
		cents = -cents
	}
	return Money(cents), nil
}

// String คืนค่าแบบทศนิยม 2 ตำแหน่ง เช่น "25.00"
func (m Money) String() string {
	cents := int64(m)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON ส่งออกเป็น JSON number ทศนิยม 2 ตำแหน่ง
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON รับได้ทั้ง number (12.5) และ string ("8.25")
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = 0
	case int64:
		*m = Money(v)
	case float64:
		*m = Money(int64(v))
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return err
		}
		*m = Money(n)
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
	return nil
}
