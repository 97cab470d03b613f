package repository

import (
	"errors"
	"strings"
	"time"

	"backend/entity"

	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// ---------------- Orders (CRUD หลัก) ----------------

// POST /orders → สร้าง order (เรียกใน transaction เสมอ)
func (r *OrderRepository) CreateOrder(tx *gorm.DB, o *entity.Order) error {
	return tx.Create(o).Error
}

func (r *OrderRepository) GetOrder(orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := r.DB.First(&o, orderID).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrderWithItems = order + รายการ ใช้ตอน detail/broadcast
func (r *OrderRepository) GetOrderWithItems(orderID uint) (*entity.Order, error) {
	o, err := r.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	items, err := r.GetOrderItems(o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// PUT /orders/:id → partial update ด้วย primary key
// RowsAffected == 0 แปลว่าไม่มี order นี้
func (r *OrderRepository) UpdateOrder(tx *gorm.DB, orderID uint, updates map[string]any) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ?", orderID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// เช็ค retry ซ้ำจาก idempotency key (nil, nil = ไม่เคยมี)
func (r *OrderRepository) FindByIdempotencyKey(key string) (*entity.Order, error) {
	var o entity.Order
	err := r.DB.Where("idempotency_key = ?", key).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// ---------------- Listing ----------------

// คอลัมน์ที่ sort ได้ — whitelist กัน SQL injection จาก client-supplied identifier
var sortColumns = map[string]string{
	"created_at":      "created_at",
	"total":           "total",
	"table_id":        "table_id",
	"status":          "status",
	"feedback_rating": "feedback_rating",
}

type OrderFilter struct {
	StartDate *time.Time
	EndDate   *time.Time // exclusive
	Status    string
	TableID   *uint
	Kind      string // dine_in | delivery

	SortBy    string
	SortOrder string // asc | desc
	Page      int
	Limit     int
}

// GET /orders → รายการ order พร้อม count ทั้งหมด
// แต่ละ order เติม items ด้วย fetch แยกต่อ order
func (r *OrderRepository) ListOrders(f OrderFilter) ([]entity.Order, int64, error) {
	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	offset := (page - 1) * limit

	applyFilter := func(q *gorm.DB) *gorm.DB {
		if f.StartDate != nil {
			q = q.Where("created_at >= ?", *f.StartDate)
		}
		if f.EndDate != nil {
			q = q.Where("created_at < ?", *f.EndDate)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.TableID != nil && *f.TableID != 0 {
			q = q.Where("table_id = ?", *f.TableID)
		}
		switch f.Kind {
		case entity.KindDineIn:
			q = q.Where("table_id IS NOT NULL")
		case entity.KindDelivery:
			q = q.Where("table_id IS NULL")
		}
		return q
	}

	var total int64
	if err := applyFilter(r.DB.Model(&entity.Order{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}

	orders := make([]entity.Order, 0, limit)
	q := applyFilter(r.DB.Model(&entity.Order{}))
	if err := q.Order(col + " " + dir).Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	for i := range orders {
		items, err := r.GetOrderItems(orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

// ---------------- Order Items ----------------

func (r *OrderRepository) CreateOrderItem(tx *gorm.DB, oi *entity.OrderItem) error {
	return tx.Create(oi).Error
}

func (r *OrderRepository) GetOrderItems(orderID uint) ([]entity.OrderItem, error) {
	items := make([]entity.OrderItem, 0) // ให้ marshal เป็น [] ไม่ใช่ null
	err := r.DB.Model(&entity.OrderItem{}).
		Where("order_id = ?", orderID).
		Find(&items).Error
	return items, err
}

// ---------------- Validations / Helpers ----------------

// เช็คโต๊ะว่ามีอยู่จริงมั้ย
func (r *OrderRepository) TableExists(id uint) (bool, error) {
	var cnt int64
	if err := r.DB.Model(&entity.Table{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}
