package controllers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"backend/pkg/resp"
	"backend/repository"
	"backend/services"
	"backend/utils"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service *services.OrderService
}

func NewOrderController(svc *services.OrderService) *OrderController {
	return &OrderController{Service: svc}
}

// แปลง service error → HTTP status + {message}
func writeOrderError(c *gin.Context, err error) {
	var ve services.ValidationError
	switch {
	case errors.As(err, &ve):
		resp.BadRequest(c, ve.Error())
	case errors.Is(err, services.ErrOrderNotFound):
		resp.NotFound(c, "order not found")
	case errors.Is(err, services.ErrInvalidTransition):
		resp.Conflict(c, "invalid status transition")
	default:
		resp.ServerError(c, err)
	}
}

// ===== Create Order =====

// POST /api/orders (dine-in, ลูกค้าไม่ล็อกอิน)
func (oc *OrderController) Create(c *gin.Context) {
	var req services.PlaceOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	order, err := oc.Service.PlaceDineIn(&req)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	resp.Created(c, order)
}

// POST /api/delivery-order
func (oc *OrderController) CreateDelivery(c *gin.Context) {
	var req services.PlaceDeliveryOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	order, err := oc.Service.PlaceDelivery(&req)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	resp.Created(c, order)
}

// ===== Status =====

// PUT /api/orders/:id (staff)
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		resp.BadRequest(c, "invalid order id")
		return
	}

	var req services.UpdateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	order, err := oc.Service.UpdateStatus(uint(id), &req)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	// audit trail: ใครเป็นคนกด (มาจาก JWT ที่ middleware แกะไว้)
	log.Printf("order %d → %s by %s #%d", order.ID, order.Status,
		utils.CurrentRole(c), utils.CurrentUserID(c))

	resp.OK(c, order)
}

// ===== Feedback =====

// POST /api/orders/:id/feedback (public — ลูกค้าที่สั่งไม่มี account)
func (oc *OrderController) Feedback(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		resp.BadRequest(c, "invalid order id")
		return
	}

	var req services.FeedbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	order, err := oc.Service.AttachFeedback(uint(id), &req)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	resp.OK(c, order)
}

// ===== List & Detail =====

// GET /api/orders (staff)
// ?page&limit&startDate&endDate&status&tableId&kind&sortBy&sortOrder
func (oc *OrderController) List(c *gin.Context) {
	var f repository.OrderFilter

	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	f.Status = c.Query("status")
	f.Kind = c.Query("kind")
	f.SortBy = c.Query("sortBy")
	f.SortOrder = c.Query("sortOrder")

	if v := c.Query("tableId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			resp.BadRequest(c, "invalid tableId")
			return
		}
		tid := uint(id)
		f.TableID = &tid
	}
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			resp.BadRequest(c, "startDate must be YYYY-MM-DD")
			return
		}
		f.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			resp.BadRequest(c, "endDate must be YYYY-MM-DD")
			return
		}
		end := t.Add(24 * time.Hour) // รวมทั้งวันสุดท้าย
		f.EndDate = &end
	}

	out, err := oc.Service.List(f)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	resp.OK(c, out)
}

// GET /api/orders/:id — ลูกค้าใช้ sync สถานะตอน reconnect (ไม่มี event replay)
func (oc *OrderController) Detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		resp.BadRequest(c, "invalid order id")
		return
	}

	order, err := oc.Service.Detail(uint(id))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	resp.OK(c, order)
}
