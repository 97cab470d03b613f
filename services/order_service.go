package services

import (
	"errors"
	"log"
	"strings"

	"backend/entity"
	"backend/repository"
	"backend/ws"

	"gorm.io/gorm"
)

// ErrOrderNotFound = อ้าง order id ที่ไม่มีในระบบ
var ErrOrderNotFound = errors.New("order not found")

// ValidationError → 400 พร้อมข้อความอ่านรู้เรื่อง
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// Broadcaster คือ realtime channel ที่ service ยิง event เข้าหลัง commit
// แยกเป็น interface เพื่อ inject ตัวปลอมตอนเทสต์
type Broadcaster interface {
	Publish(event string, order *entity.Order) error
}

type OrderService struct {
	DB   *gorm.DB
	Repo *repository.OrderRepository
	Hub  Broadcaster
}

func NewOrderService(db *gorm.DB, repo *repository.OrderRepository, hub Broadcaster) *OrderService {
	return &OrderService{DB: db, Repo: repo, Hub: hub}
}

// ----- DTOs from Controller -----

type CartOptionIn struct {
	Name  string       `json:"name" binding:"required"`
	Price entity.Money `json:"price"`
}

type CartItemIn struct {
	ID              *uint          `json:"id"`
	Name            string         `json:"name" binding:"required"`
	Price           entity.Money   `json:"price"`
	Quantity        int            `json:"quantity" binding:"required,min=1"`
	Size            string         `json:"size"`
	SelectedOptions []CartOptionIn `json:"selectedOptions"`
}

type PlaceOrderReq struct {
	Cart           []CartItemIn `json:"cart" binding:"required,min=1"`
	TableID        uint         `json:"tableId" binding:"required"`
	Notes          string       `json:"notes"`
	PaymentMethod  string       `json:"paymentMethod"`
	IdempotencyKey string       `json:"idempotencyKey"`
}

type PlaceDeliveryOrderReq struct {
	Cart           []CartItemIn `json:"cart" binding:"required,min=1"`
	CustomerName   string       `json:"customerName" binding:"required"`
	CustomerPhone  string       `json:"customerPhone" binding:"required"`
	Address        string       `json:"address" binding:"required"`
	Notes          string       `json:"notes"`
	PaymentMethod  string       `json:"paymentMethod"`
	IdempotencyKey string       `json:"idempotencyKey"`
}

type UpdateStatusReq struct {
	Status   string `json:"status" binding:"required"`
	WaitTime *int   `json:"waitTime"`
}

type FeedbackReq struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// ----- Cart validation / pricing -----

func validateCart(cart []CartItemIn) error {
	if len(cart) == 0 {
		return ValidationError("cart is empty")
	}
	for _, it := range cart {
		if strings.TrimSpace(it.Name) == "" {
			return ValidationError("cart item name is required")
		}
		if it.Quantity < 1 {
			return ValidationError("cart item quantity must be at least 1")
		}
		if it.Price < 0 {
			return ValidationError("cart item price must not be negative")
		}
	}
	return nil
}

func normalizePaymentMethod(m string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(m)) {
	case "", entity.PaymentCash:
		return entity.PaymentCash, nil
	case entity.PaymentCard:
		return entity.PaymentCard, nil
	}
	return "", ValidationError("payment method must be cash or card")
}

// cartTotal คิดราคาฝั่ง server เสมอ ไม่เชื่อ total จาก client
// total = Σ (unit_price + Σ option.price) × qty คิดเป็น cents ล้วน ๆ
func cartTotal(cart []CartItemIn) entity.Money {
	var total entity.Money
	for _, it := range cart {
		unit := it.Price
		for _, o := range it.SelectedOptions {
			unit += o.Price
		}
		total += unit * entity.Money(it.Quantity)
	}
	return total
}

func cartToItems(cart []CartItemIn) []entity.OrderItem {
	items := make([]entity.OrderItem, 0, len(cart))
	for _, it := range cart {
		opts := make(entity.OptionList, 0, len(it.SelectedOptions))
		for _, o := range it.SelectedOptions {
			opts = append(opts, entity.SelectedOption{Name: o.Name, Price: o.Price})
		}
		items = append(items, entity.OrderItem{
			MenuItemID:      it.ID,
			Name:            it.Name,
			Size:            it.Size,
			Quantity:        it.Quantity,
			Price:           it.Price,
			SelectedOptions: opts,
		})
	}
	return items
}

// ----- Create -----

// PlaceDineIn: POST /api/orders
func (s *OrderService) PlaceDineIn(req *PlaceOrderReq) (*entity.Order, error) {
	if err := validateCart(req.Cart); err != nil {
		return nil, err
	}
	if req.TableID == 0 {
		return nil, ValidationError("table is required")
	}
	pm, err := normalizePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	ok, err := s.Repo.TableExists(req.TableID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ValidationError("table not found")
	}

	tableID := req.TableID
	order := &entity.Order{
		TableID:       &tableID,
		Status:        entity.StatusPending,
		Notes:         req.Notes,
		PaymentMethod: pm,
	}
	return s.createOrder(order, req.Cart, req.IdempotencyKey)
}

// PlaceDelivery: POST /api/delivery-order
func (s *OrderService) PlaceDelivery(req *PlaceDeliveryOrderReq) (*entity.Order, error) {
	if err := validateCart(req.Cart); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CustomerName) == "" ||
		strings.TrimSpace(req.CustomerPhone) == "" ||
		strings.TrimSpace(req.Address) == "" {
		return nil, ValidationError("customer name, phone and address are required")
	}
	pm, err := normalizePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.Address,
		Status:          entity.StatusPending,
		Notes:           req.Notes,
		PaymentMethod:   pm,
	}
	return s.createOrder(order, req.Cart, req.IdempotencyKey)
}

func (s *OrderService) createOrder(order *entity.Order, cart []CartItemIn, idemKey string) (*entity.Order, error) {
	if key := strings.TrimSpace(idemKey); key != "" {
		existing, err := s.Repo.FindByIdempotencyKey(key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			// client retry เดิม → คืนออเดอร์เดิม ไม่สร้างซ้ำ
			return s.Repo.GetOrderWithItems(existing.ID)
		}
		order.IdempotencyKey = &key
	}

	order.Total = cartTotal(cart)

	created, isNew, err := s.insertOrder(order, cartToItems(cart))
	if err != nil {
		return nil, err
	}
	if !isNew {
		// แพ้ insert ให้ request คู่แฝด — ออเดอร์เดิมถูก broadcast ไปแล้วตอนนั้น
		return created, nil
	}

	// broadcast หลัง commit เท่านั้น best-effort: พังแค่ log
	if err := s.Hub.Publish(ws.EventNewOrder, created); err != nil {
		log.Printf("broadcast new_order failed: %v", err)
	}
	return created, nil
}

// insertOrder commit order + items ใน transaction เดียว
// check-then-insert ของ idempotency key ไม่ atomic: สอง request คีย์เดียวกัน
// อาจผ่าน Find พร้อมกันได้ทั้งคู่ — ตัวที่แพ้จะชน unique index ตรงนี้
// แล้ว replay ออเดอร์ที่ผู้ชนะสร้างไว้แทนที่จะพ่น 500
func (s *OrderService) insertOrder(order *entity.Order, items []entity.OrderItem) (*entity.Order, bool, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.CreateOrder(tx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := s.Repo.CreateOrderItem(tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if order.IdempotencyKey != nil && isDuplicateKeyError(err) {
			existing, findErr := s.Repo.FindByIdempotencyKey(*order.IdempotencyKey)
			if findErr == nil && existing != nil {
				replayed, getErr := s.Repo.GetOrderWithItems(existing.ID)
				if getErr == nil {
					return replayed, false, nil
				}
			}
		}
		return nil, false, err
	}
	order.Items = items
	return order, true, nil
}

// ครอบทั้ง sqlite ("UNIQUE constraint failed") และ postgres ("duplicate key value
// violates unique constraint") เผื่อ driver ไม่ translate เป็น ErrDuplicatedKey
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// ----- Status update -----

// UpdateStatus: PUT /api/orders/:id
// last-commit-wins ถ้า staff สองคนแย่งกัน — ไม่มี version check
func (s *OrderService) UpdateStatus(orderID uint, req *UpdateStatusReq) (*entity.Order, error) {
	status := strings.ToLower(strings.TrimSpace(req.Status))

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var o entity.Order
		if err := tx.First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if err := ValidateTransition(o.Status, status); err != nil {
			return err
		}

		updates := map[string]any{"status": status}
		if req.WaitTime != nil && WaitTimeApplies(status) {
			updates["wait_time"] = *req.WaitTime
		}
		affected, err := s.Repo.UpdateOrder(tx, orderID, updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.GetOrderWithItems(orderID)
	if err != nil {
		return nil, err
	}
	if err := s.Hub.Publish(ws.EventOrderStatusUpdate, order); err != nil {
		log.Printf("broadcast order_status_update failed: %v", err)
	}
	return order, nil
}

// ----- Feedback -----

// AttachFeedback: POST /api/orders/:id/feedback — ลูกค้าไม่ล็อกอิน จงใจเปิด public
func (s *OrderService) AttachFeedback(orderID uint, req *FeedbackReq) (*entity.Order, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ValidationError("rating must be between 1 and 5")
	}

	affected, err := s.Repo.UpdateOrder(s.DB, orderID, map[string]any{
		"feedback_rating":  req.Rating,
		"feedback_comment": req.Comment,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrOrderNotFound
	}
	return s.Repo.GetOrderWithItems(orderID)
}

// ----- List & Detail -----

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalOrders int64 `json:"totalOrders"`
}

type OrderListOut struct {
	Orders     []entity.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

func (s *OrderService) List(f repository.OrderFilter) (*OrderListOut, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 20
	}
	if f.Status != "" && !entity.IsValidStatus(f.Status) {
		return nil, ValidationError("unknown status filter")
	}

	orders, total, err := s.Repo.ListOrders(f)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return &OrderListOut{
		Orders: orders,
		Pagination: Pagination{
			CurrentPage: f.Page,
			TotalPages:  totalPages,
			TotalOrders: total,
		},
	}, nil
}

func (s *OrderService) Detail(orderID uint) (*entity.Order, error) {
	o, err := s.Repo.GetOrderWithItems(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}
