package service

import (
	"context"
	"errors"
	"testing"

	"marketplace-service/internal/models"
	"marketplace-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrderStore struct {
	getItemsByIDsFunc     func(ctx context.Context, ids []int64) ([]models.Item, error)
	createOrderFunc       func(ctx context.Context, order *models.Order, items []models.OrderItem) error
	getOrderByIDFunc      func(ctx context.Context, id int64) (*models.Order, error)
	updateOrderStatusFunc func(ctx context.Context, orderID int64, status models.OrderStatus) error
	getStoreOrdersFunc    func(ctx context.Context, shopID int64, limit int, statusFilter string) ([]models.Order, error)
	getOrderItemFeedFunc  func(ctx context.Context) ([]models.OrderFeedRow, error)
}

func (m *mockOrderStore) GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error) {
	return m.getItemsByIDsFunc(ctx, ids)
}

func (m *mockOrderStore) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return m.createOrderFunc(ctx, order, items)
}

func (m *mockOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	return m.getOrderByIDFunc(ctx, id)
}

func (m *mockOrderStore) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	return m.updateOrderStatusFunc(ctx, orderID, status)
}

func (m *mockOrderStore) GetStoreOrders(ctx context.Context, shopID int64, limit int, statusFilter string) ([]models.Order, error) {
	return m.getStoreOrdersFunc(ctx, shopID, limit, statusFilter)
}

func (m *mockOrderStore) GetOrderItemFeed(ctx context.Context) ([]models.OrderFeedRow, error) {
	return m.getOrderItemFeedFunc(ctx)
}

type mockOrderEvents struct {
	orderCreated  []*models.OrderCreatedEvent
	statusChanged []*models.OrderStatusChangedEvent
}

func (m *mockOrderEvents) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	m.orderCreated = append(m.orderCreated, event)
	return nil
}

func (m *mockOrderEvents) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	m.statusChanged = append(m.statusChanged, event)
	return nil
}

type mockInvalidator struct {
	invalidated []int64
}

func (m *mockInvalidator) InvalidateRevenue(ctx context.Context, shopID int64) error {
	m.invalidated = append(m.invalidated, shopID)
	return nil
}

func testCatalog() map[int64]models.Item {
	return map[int64]models.Item{
		101: {ID: 101, ShopID: 7, Name: "Masala Dosa", Price: 5},
		102: {ID: 102, ShopID: 7, Name: "Filter Coffee", Price: 3},
		201: {ID: 201, ShopID: 9, Name: "Veg Thali", Price: 12},
	}
}

func itemsByIDsFromCatalog(catalog map[int64]models.Item) func(ctx context.Context, ids []int64) ([]models.Item, error) {
	return func(ctx context.Context, ids []int64) ([]models.Item, error) {
		var items []models.Item
		for _, id := range ids {
			if item, ok := catalog[id]; ok {
				items = append(items, item)
			}
		}
		return items, nil
	}
}

func TestCreateOrder_ComputesLineTotalsServerSide(t *testing.T) {
	var persistedOrder *models.Order
	var persistedItems []models.OrderItem

	st := &mockOrderStore{
		getItemsByIDsFunc: itemsByIDsFromCatalog(testCatalog()),
		createOrderFunc: func(ctx context.Context, order *models.Order, items []models.OrderItem) error {
			order.ID = 42
			persistedOrder = order
			persistedItems = items
			return nil
		},
	}
	events := &mockOrderEvents{}
	cache := &mockInvalidator{}
	svc := NewOrderService(st, events, cache)

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID: 1,
		Items: []OrderItemRequest{
			{ItemID: 101, Quantity: 2},
			{ItemID: 102, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.OrderID)
	assert.Equal(t, models.OrderStatusPending, resp.Status)
	assert.Equal(t, int64(13), resp.Total)

	require.NotNil(t, persistedOrder)
	assert.Equal(t, int64(7), persistedOrder.ShopID)
	assert.Equal(t, int64(13), persistedOrder.Total)
	assert.Equal(t, models.OrderStatusPending, persistedOrder.Status)

	require.Len(t, persistedItems, 2)
	assert.Equal(t, int64(10), persistedItems[0].LineTotal)
	assert.Equal(t, 2, persistedItems[0].Quantity)
	assert.Equal(t, int64(3), persistedItems[1].LineTotal)

	require.Len(t, events.orderCreated, 1)
	assert.Equal(t, int64(42), events.orderCreated[0].OrderID)
	assert.Equal(t, []int64{7}, cache.invalidated)
}

func TestCreateOrder_IgnoresClientTotal(t *testing.T) {
	var persistedOrder *models.Order

	st := &mockOrderStore{
		getItemsByIDsFunc: itemsByIDsFromCatalog(testCatalog()),
		createOrderFunc: func(ctx context.Context, order *models.Order, items []models.OrderItem) error {
			order.ID = 1
			persistedOrder = order
			return nil
		},
	}
	svc := NewOrderService(st, &mockOrderEvents{}, &mockInvalidator{})

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID: 1,
		Items:  []OrderItemRequest{{ItemID: 101, Quantity: 2}},
		Total:  999,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), resp.Total)
	assert.Equal(t, int64(10), persistedOrder.Total)
}

func TestCreateOrder_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		items     []OrderItemRequest
		wantErrIs error
	}{
		{
			name:      "no_items",
			items:     nil,
			wantErrIs: ErrValidation,
		},
		{
			name:      "zero_quantity",
			items:     []OrderItemRequest{{ItemID: 101, Quantity: 0}},
			wantErrIs: ErrValidation,
		},
		{
			name: "items_span_two_shops",
			items: []OrderItemRequest{
				{ItemID: 101, Quantity: 1},
				{ItemID: 201, Quantity: 1},
			},
			wantErrIs: ErrShopMismatch,
		},
		{
			name:      "missing_item",
			items:     []OrderItemRequest{{ItemID: 999, Quantity: 1}},
			wantErrIs: store.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := false
			st := &mockOrderStore{
				getItemsByIDsFunc: itemsByIDsFromCatalog(testCatalog()),
				createOrderFunc: func(ctx context.Context, order *models.Order, items []models.OrderItem) error {
					created = true
					return nil
				},
			}
			events := &mockOrderEvents{}
			svc := NewOrderService(st, events, &mockInvalidator{})

			_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{UserID: 1, Items: tt.items})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErrIs))
			assert.False(t, created, "nothing may be persisted on rejection")
			assert.Empty(t, events.orderCreated)
		})
	}
}

func TestCreateOrder_StoreFailurePublishesNothing(t *testing.T) {
	st := &mockOrderStore{
		getItemsByIDsFunc: itemsByIDsFromCatalog(testCatalog()),
		createOrderFunc: func(ctx context.Context, order *models.Order, items []models.OrderItem) error {
			return errors.New("insert failed")
		},
	}
	events := &mockOrderEvents{}
	cache := &mockInvalidator{}
	svc := NewOrderService(st, events, cache)

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID: 1,
		Items:  []OrderItemRequest{{ItemID: 101, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Empty(t, events.orderCreated)
	assert.Empty(t, cache.invalidated)
}

func TestSetOrderStatus(t *testing.T) {
	tests := []struct {
		name        string
		current     models.OrderStatus
		next        models.OrderStatus
		wantErrIs   error
		wantUpdated bool
	}{
		{name: "pending_to_accepted", current: models.OrderStatusPending, next: models.OrderStatusAccepted, wantUpdated: true},
		{name: "pending_to_cancelled", current: models.OrderStatusPending, next: models.OrderStatusCancelled, wantUpdated: true},
		{name: "preparing_to_completed", current: models.OrderStatusPreparing, next: models.OrderStatusCompleted, wantUpdated: true},
		{name: "pending_skips_to_completed", current: models.OrderStatusPending, next: models.OrderStatusCompleted, wantErrIs: ErrInvalidTransition},
		{name: "completed_is_terminal", current: models.OrderStatusCompleted, next: models.OrderStatusAccepted, wantErrIs: ErrInvalidTransition},
		{name: "unknown_status", current: models.OrderStatusPending, next: "SHIPPED", wantErrIs: ErrValidation},
		{name: "same_status_is_noop", current: models.OrderStatusAccepted, next: models.OrderStatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := false
			st := &mockOrderStore{
				getOrderByIDFunc: func(ctx context.Context, id int64) (*models.Order, error) {
					return &models.Order{ID: id, ShopID: 7, Status: tt.current}, nil
				},
				updateOrderStatusFunc: func(ctx context.Context, orderID int64, status models.OrderStatus) error {
					updated = true
					return nil
				},
			}
			events := &mockOrderEvents{}
			svc := NewOrderService(st, events, &mockInvalidator{})

			order, err := svc.SetOrderStatus(context.Background(), 5, tt.next)
			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErrIs))
				assert.False(t, updated)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.next, order.Status)
			assert.Equal(t, tt.wantUpdated, updated)
			if tt.wantUpdated {
				require.Len(t, events.statusChanged, 1)
				assert.Equal(t, tt.current, events.statusChanged[0].OldStatus)
				assert.Equal(t, tt.next, events.statusChanged[0].NewStatus)
			}
		})
	}
}

func TestSetOrderStatus_OrderNotFound(t *testing.T) {
	st := &mockOrderStore{
		getOrderByIDFunc: func(ctx context.Context, id int64) (*models.Order, error) {
			return nil, store.ErrNotFound
		},
	}
	svc := NewOrderService(st, &mockOrderEvents{}, &mockInvalidator{})

	_, err := svc.SetOrderStatus(context.Background(), 404, models.OrderStatusAccepted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestGetOrderStatus_RoundTrip(t *testing.T) {
	current := models.OrderStatusPending
	st := &mockOrderStore{
		getOrderByIDFunc: func(ctx context.Context, id int64) (*models.Order, error) {
			return &models.Order{ID: id, ShopID: 7, Status: current}, nil
		},
		updateOrderStatusFunc: func(ctx context.Context, orderID int64, status models.OrderStatus) error {
			current = status
			return nil
		},
	}
	svc := NewOrderService(st, &mockOrderEvents{}, &mockInvalidator{})

	_, err := svc.SetOrderStatus(context.Background(), 5, models.OrderStatusAccepted)
	require.NoError(t, err)

	status, err := svc.GetOrderStatus(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, status)
}

func TestListStoreOrders_RejectsUnknownFilter(t *testing.T) {
	svc := NewOrderService(&mockOrderStore{}, &mockOrderEvents{}, &mockInvalidator{})

	_, err := svc.ListStoreOrders(context.Background(), 7, 3, "DELIVERED")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestListStoreOrders_PassesFilterThrough(t *testing.T) {
	var gotShopID int64
	var gotLimit int
	var gotFilter string

	st := &mockOrderStore{
		getStoreOrdersFunc: func(ctx context.Context, shopID int64, limit int, statusFilter string) ([]models.Order, error) {
			gotShopID, gotLimit, gotFilter = shopID, limit, statusFilter
			return []models.Order{}, nil
		},
	}
	svc := NewOrderService(st, &mockOrderEvents{}, &mockInvalidator{})

	orders, err := svc.ListStoreOrders(context.Background(), 7, 5, models.OrderFilterAll)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, int64(7), gotShopID)
	assert.Equal(t, 5, gotLimit)
	assert.Equal(t, models.OrderFilterAll, gotFilter)
}

func TestListAllOrdersGrouped_RecomputesReceiptTotals(t *testing.T) {
	st := &mockOrderStore{
		getOrderItemFeedFunc: func(ctx context.Context) ([]models.OrderFeedRow, error) {
			return []models.OrderFeedRow{
				{OrderID: 1, ItemID: 101, Quantity: 2, ItemName: "Masala Dosa", ItemPrice: 5, ShopID: 7, StoreName: "Udupi Corner"},
				{OrderID: 1, ItemID: 102, Quantity: 1, ItemName: "Filter Coffee", ItemPrice: 3, ShopID: 7, StoreName: "Udupi Corner"},
				{OrderID: 2, ItemID: 201, Quantity: 3, ItemName: "Veg Thali", ItemPrice: 12, ShopID: 9, StoreName: "Annapurna"},
			}, nil
		},
	}
	svc := NewOrderService(st, &mockOrderEvents{}, &mockInvalidator{})

	receipts, err := svc.ListAllOrdersGrouped(context.Background())
	require.NoError(t, err)
	require.Len(t, receipts, 2)

	first := receipts[1]
	assert.Equal(t, int64(7), first.ShopID)
	assert.Equal(t, "Udupi Corner", first.StoreName)
	assert.Equal(t, int64(13), first.Total)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Masala Dosa", first.Items[0].ItemName)
	assert.Equal(t, 2, first.Items[0].Quantity)

	second := receipts[2]
	assert.Equal(t, int64(36), second.Total)
	require.Len(t, second.Items, 1)
}

func TestListAllOrdersGrouped_EmptyFeed(t *testing.T) {
	st := &mockOrderStore{
		getOrderItemFeedFunc: func(ctx context.Context) ([]models.OrderFeedRow, error) {
			return []models.OrderFeedRow{}, nil
		},
	}
	svc := NewOrderService(st, &mockOrderEvents{}, &mockInvalidator{})

	receipts, err := svc.ListAllOrdersGrouped(context.Background())
	require.NoError(t, err)
	assert.Empty(t, receipts)
}
