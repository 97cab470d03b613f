package services

import (
	"fmt"
	"testing"

	"backend/entity"
	"backend/repository"
	"backend/ws"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeHub อัดทุก event ที่ service ยิงออก
type fakeHub struct {
	events []ws.Event
}

func (f *fakeHub) Publish(event string, order *entity.Order) error {
	f.events = append(f.events, ws.Event{Event: event, Data: order})
	return nil
}

func newTestService(t *testing.T) (*OrderService, *fakeHub) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.Table{}, &entity.MenuItem{},
		&entity.Order{}, &entity.OrderItem{},
	))
	for n := 1; n <= 5; n++ {
		require.NoError(t, db.Create(&entity.Table{Number: n}).Error)
	}

	hub := &fakeHub{}
	return NewOrderService(db, repository.NewOrderRepository(db), hub), hub
}

func dineInReq(tableID uint, cart ...CartItemIn) *PlaceOrderReq {
	return &PlaceOrderReq{Cart: cart, TableID: tableID, PaymentMethod: "cash"}
}

func TestPlaceDineInLifecycle(t *testing.T) {
	svc, hub := newTestService(t)

	// สั่ง Margherita ×2 ที่โต๊ะ 3
	order, err := svc.PlaceDineIn(dineInReq(3, CartItemIn{
		Name: "Margherita Pizza", Price: 1250, Quantity: 2,
	}))
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, order.Status)
	assert.Equal(t, entity.Money(2500), order.Total)
	assert.Equal(t, "25.00", order.Total.String())
	require.NotNil(t, order.TableID)
	assert.Equal(t, uint(3), *order.TableID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	require.Len(t, hub.events, 1)
	assert.Equal(t, ws.EventNewOrder, hub.events[0].Event)
	assert.Equal(t, order.ID, hub.events[0].Data.ID)

	// รับออเดอร์ พร้อมบอกเวลารอ
	wt := 15
	updated, err := svc.UpdateStatus(order.ID, &UpdateStatusReq{Status: "accepted", WaitTime: &wt})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, updated.Status)
	require.NotNil(t, updated.WaitTime)
	assert.Equal(t, 15, *updated.WaitTime)

	require.Len(t, hub.events, 2)
	assert.Equal(t, ws.EventOrderStatusUpdate, hub.events[1].Event)
	assert.Equal(t, entity.StatusAccepted, hub.events[1].Data.Status)

	// ปิดออเดอร์โดยไม่ส่ง waitTime → ค่าเดิมต้องอยู่
	done, err := svc.UpdateStatus(order.ID, &UpdateStatusReq{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, done.Status)
	require.NotNil(t, done.WaitTime)
	assert.Equal(t, 15, *done.WaitTime)
	assert.Len(t, hub.events, 3)
}

func TestPlaceDineInWithOptions(t *testing.T) {
	svc, _ := newTestService(t)

	order, err := svc.PlaceDineIn(dineInReq(1, CartItemIn{
		Name:     "Quattro Formaggi",
		Price:    1000,
		Quantity: 2,
		Size:     "Large",
		SelectedOptions: []CartOptionIn{
			{Name: "Extra cheese", Price: 150},
		},
	}))
	require.NoError(t, err)

	// (1000 + 150) × 2
	assert.Equal(t, entity.Money(2300), order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Large", order.Items[0].Size)
	require.Len(t, order.Items[0].SelectedOptions, 1)
	assert.Equal(t, entity.Money(150), order.Items[0].SelectedOptions[0].Price)
}

func TestPlaceDineInValidation(t *testing.T) {
	svc, hub := newTestService(t)

	_, err := svc.PlaceDineIn(&PlaceOrderReq{TableID: 1})
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.PlaceDineIn(dineInReq(99, CartItemIn{Name: "Cola", Price: 250, Quantity: 1}))
	assert.ErrorAs(t, err, &ve, "unknown table must be rejected")

	_, err = svc.PlaceDineIn(&PlaceOrderReq{
		Cart:          []CartItemIn{{Name: "Cola", Price: 250, Quantity: 1}},
		TableID:       1,
		PaymentMethod: "bitcoin",
	})
	assert.ErrorAs(t, err, &ve)

	assert.Empty(t, hub.events, "no broadcast for rejected orders")
}

func TestPlaceDelivery(t *testing.T) {
	svc, hub := newTestService(t)

	_, err := svc.PlaceDelivery(&PlaceDeliveryOrderReq{
		Cart:          []CartItemIn{{Name: "Cola", Price: 250, Quantity: 1}},
		CustomerName:  "Ana",
		CustomerPhone: "0812345678",
	})
	var ve ValidationError
	assert.ErrorAs(t, err, &ve, "address is required")

	order, err := svc.PlaceDelivery(&PlaceDeliveryOrderReq{
		Cart:          []CartItemIn{{Name: "Cola", Price: 250, Quantity: 3}},
		CustomerName:  "Ana",
		CustomerPhone: "0812345678",
		Address:       "12 Via Roma",
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Nil(t, order.TableID)
	assert.Equal(t, entity.KindDelivery, order.Kind())
	assert.Equal(t, entity.Money(750), order.Total)
	assert.Equal(t, entity.PaymentCard, order.PaymentMethod)
	assert.Len(t, hub.events, 1)
}

func TestIdempotencyKeyReplay(t *testing.T) {
	svc, hub := newTestService(t)

	req := dineInReq(2, CartItemIn{Name: "Cola", Price: 250, Quantity: 1})
	req.IdempotencyKey = "client-abc-1"

	first, err := svc.PlaceDineIn(req)
	require.NoError(t, err)

	second, err := svc.PlaceDineIn(req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "retry with same key must not create a duplicate")
	assert.Len(t, hub.events, 1, "replay must not re-broadcast")

	var count int64
	svc.DB.Model(&entity.Order{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestIdempotencyKeyConflictReplaysExisting(t *testing.T) {
	svc, hub := newTestService(t)

	req := dineInReq(2, CartItemIn{Name: "Cola", Price: 250, Quantity: 1})
	req.IdempotencyKey = "client-abc-1"
	winner, err := svc.PlaceDineIn(req)
	require.NoError(t, err)

	// จำลองตัวที่แพ้ race: ผ่าน pre-check ไปแล้ว (ไม่ได้เรียก Find) แต่ insert
	// ชน unique index → ต้องได้ออเดอร์ของผู้ชนะกลับมา ไม่ใช่ error
	key := "client-abc-1"
	loser := &entity.Order{
		TableID:        winner.TableID,
		Status:         entity.StatusPending,
		Total:          250,
		PaymentMethod:  entity.PaymentCash,
		IdempotencyKey: &key,
	}
	got, isNew, err := svc.insertOrder(loser, cartToItems(req.Cart))
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, winner.ID, got.ID)

	var count int64
	svc.DB.Model(&entity.Order{}).Count(&count)
	assert.EqualValues(t, 1, count)
	assert.Len(t, hub.events, 1, "only the winning insert broadcasts")
}

func TestUpdateStatusErrors(t *testing.T) {
	svc, hub := newTestService(t)

	_, err := svc.UpdateStatus(999, &UpdateStatusReq{Status: "accepted"})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	order, err := svc.PlaceDineIn(dineInReq(1, CartItemIn{Name: "Cola", Price: 250, Quantity: 1}))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(order.ID, &UpdateStatusReq{Status: "accepted"})
	require.NoError(t, err)

	// decline ได้แค่จาก pending
	_, err = svc.UpdateStatus(order.ID, &UpdateStatusReq{Status: "declined"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// ถอยหลังไม่ได้
	_, err = svc.UpdateStatus(order.ID, &UpdateStatusReq{Status: "pending"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(order.ID, &UpdateStatusReq{Status: "completed"})
	require.NoError(t, err)

	// terminal แช่แข็ง
	_, err = svc.UpdateStatus(order.ID, &UpdateStatusReq{Status: "preparing"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// create + accepted + completed เท่านั้นที่ broadcast
	assert.Len(t, hub.events, 3)
}

func TestUpdateStatusIdempotent(t *testing.T) {
	svc, hub := newTestService(t)

	order, err := svc.PlaceDineIn(dineInReq(1, CartItemIn{Name: "Cola", Price: 250, Quantity: 1}))
	require.NoError(t, err)

	first, err := svc.UpdateStatus(order.ID, &UpdateStatusReq{Status: "preparing"})
	require.NoError(t, err)
	second, err := svc.UpdateStatus(order.ID, &UpdateStatusReq{Status: "preparing"})
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Total, second.Total)
	// สอง request = สอง broadcast แต่ state ปลายทางเหมือนเดิม
	assert.Len(t, hub.events, 3)
}

func TestAttachFeedback(t *testing.T) {
	svc, hub := newTestService(t)

	order, err := svc.PlaceDineIn(dineInReq(1, CartItemIn{Name: "Cola", Price: 250, Quantity: 1}))
	require.NoError(t, err)

	_, err = svc.AttachFeedback(order.ID, &FeedbackReq{Rating: 6})
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.AttachFeedback(999, &FeedbackReq{Rating: 4})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	updated, err := svc.AttachFeedback(order.ID, &FeedbackReq{Rating: 4, Comment: "great"})
	require.NoError(t, err)
	require.NotNil(t, updated.FeedbackRating)
	assert.Equal(t, 4, *updated.FeedbackRating)
	assert.Equal(t, "great", updated.FeedbackComment)

	// feedback ไม่ broadcast
	assert.Len(t, hub.events, 1)
}

func TestListPagination(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 1; i <= 25; i++ {
		_, err := svc.PlaceDineIn(dineInReq(1, CartItemIn{
			Name: fmt.Sprintf("item-%d", i), Price: entity.Money(i * 100), Quantity: 1,
		}))
		require.NoError(t, err)
	}

	out, err := svc.List(repository.OrderFilter{
		Page: 2, Limit: 10, SortBy: "total", SortOrder: "asc",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Pagination.CurrentPage)
	assert.Equal(t, 3, out.Pagination.TotalPages)
	assert.EqualValues(t, 25, out.Pagination.TotalOrders)
	require.Len(t, out.Orders, 10)
	// หน้า 2 เริ่มที่ออเดอร์ลำดับ 11 (total 11.00)
	assert.Equal(t, entity.Money(1100), out.Orders[0].Total)
	assert.Equal(t, entity.Money(2000), out.Orders[9].Total)
}

func TestListRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	menuID := uint(7)
	created, err := svc.PlaceDineIn(dineInReq(2, CartItemIn{
		ID: &menuID, Name: "Margherita Pizza", Price: 1250, Quantity: 2, Size: "Family",
		SelectedOptions: []CartOptionIn{{Name: "Extra cheese", Price: 150}},
	}))
	require.NoError(t, err)

	out, err := svc.List(repository.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, out.Orders, 1)

	got := out.Orders[0]
	assert.Equal(t, created.ID, got.ID)
	require.Len(t, got.Items, 1)
	item := got.Items[0]
	assert.Equal(t, "Margherita Pizza", item.Name)
	assert.Equal(t, "Family", item.Size)
	assert.Equal(t, entity.Money(1250), item.Price)
	require.NotNil(t, item.MenuItemID)
	assert.Equal(t, uint(7), *item.MenuItemID)
	require.Len(t, item.SelectedOptions, 1)
	assert.Equal(t, entity.SelectedOption{Name: "Extra cheese", Price: 150}, item.SelectedOptions[0])
}

func TestListKindFilter(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PlaceDineIn(dineInReq(1, CartItemIn{Name: "Cola", Price: 250, Quantity: 1}))
	require.NoError(t, err)
	_, err = svc.PlaceDelivery(&PlaceDeliveryOrderReq{
		Cart:          []CartItemIn{{Name: "Cola", Price: 250, Quantity: 1}},
		CustomerName:  "Ana",
		CustomerPhone: "0812345678",
		Address:       "12 Via Roma",
	})
	require.NoError(t, err)

	dineIn, err := svc.List(repository.OrderFilter{Kind: entity.KindDineIn})
	require.NoError(t, err)
	require.Len(t, dineIn.Orders, 1)
	assert.NotNil(t, dineIn.Orders[0].TableID)

	delivery, err := svc.List(repository.OrderFilter{Kind: entity.KindDelivery})
	require.NoError(t, err)
	require.Len(t, delivery.Orders, 1)
	assert.Nil(t, delivery.Orders[0].TableID)
}
