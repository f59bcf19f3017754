package service

import (
	"context"
	"fmt"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the persistence surface the order engine needs
type OrderStore interface {
	GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error)
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
	GetStoreOrders(ctx context.Context, shopID int64, limit int, statusFilter string) ([]models.Order, error)
	GetOrderItemFeed(ctx context.Context) ([]models.OrderFeedRow, error)
}

// OrderEvents publishes order lifecycle events to the analytics stream
type OrderEvents interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// RevenueInvalidator drops a shop's cached revenue stats
type RevenueInvalidator interface {
	InvalidateRevenue(ctx context.Context, shopID int64) error
}

// OrderService handles the order lifecycle: creation with line items,
// status reads/writes, per-shop listings, and receipt reconstruction
type OrderService struct {
	store  OrderStore
	events OrderEvents
	cache  RevenueInvalidator
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, events OrderEvents, cache RevenueInvalidator) *OrderService {
	return &OrderService{
		store:  store,
		events: events,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order.
// Total is the client's echo of its own sum; it is never persisted, only
// compared against the server-computed total for a mismatch warning.
type CreateOrderRequest struct {
	UserID int64              `json:"user_id" binding:"required"`
	Items  []OrderItemRequest `json:"items" binding:"required,min=1"`
	Total  int64              `json:"total"`
}

// OrderItemRequest represents one requested line item
type OrderItemRequest struct {
	ItemID   int64 `json:"item_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	OrderID int64              `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
	Total   int64              `json:"total"`
}

// CreateOrder creates an order with its line items in one transaction.
// The order's shop is derived from the first item; every item must belong
// to that shop. Line totals are price x quantity, computed server-side.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if len(req.Items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("no_items").Inc()
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			util.OrdersFailedTotal.WithLabelValues("bad_quantity").Inc()
			return nil, fmt.Errorf("%w: quantity for item %d must be at least 1", ErrValidation, item.ItemID)
		}
	}

	catalog, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("missing_item").Inc()
		return nil, err
	}

	shopID := catalog[req.Items[0].ItemID].ShopID
	for _, item := range req.Items {
		if catalog[item.ItemID].ShopID != shopID {
			util.OrdersFailedTotal.WithLabelValues("shop_mismatch").Inc()
			return nil, fmt.Errorf("%w: item %d belongs to shop %d, order is against shop %d",
				ErrShopMismatch, item.ItemID, catalog[item.ItemID].ShopID, shopID)
		}
	}

	lines := make([]models.OrderItem, 0, len(req.Items))
	var total int64
	for _, item := range req.Items {
		lineTotal := catalog[item.ItemID].Price * int64(item.Quantity)
		lines = append(lines, models.OrderItem{
			ItemID:    item.ItemID,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		total += lineTotal
	}

	if req.Total != 0 && req.Total != total {
		s.logger.Warn("Client-supplied total disagrees with computed total",
			zap.Int64("client_total", req.Total),
			zap.Int64("computed_total", total))
	}

	order := &models.Order{
		UserID: req.UserID,
		ShopID: shopID,
		Total:  total,
		Status: models.OrderStatusPending,
	}

	if err := s.store.CreateOrder(ctx, order, lines); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("shop_id", shopID),
		zap.Int64("total", total))

	if err := s.cache.InvalidateRevenue(ctx, shopID); err != nil {
		s.logger.Warn("Failed to invalidate revenue cache", zap.Int64("shop_id", shopID), zap.Error(err))
	}

	eventItems := make([]models.OrderItemData, 0, len(lines))
	for _, line := range lines {
		eventItems = append(eventItems, models.OrderItemData{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID: order.ID,
		UserID:  order.UserID,
		ShopID:  shopID,
		Total:   total,
		Items:   eventItems,
	}
	if err := s.events.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return &CreateOrderResponse{
		OrderID: order.ID,
		Status:  order.Status,
		Total:   total,
	}, nil
}

// resolveItems batch-fetches every referenced item and verifies none is missing
func (s *OrderService) resolveItems(ctx context.Context, items []OrderItemRequest) (map[int64]models.Item, error) {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if !seen[item.ItemID] {
			seen[item.ItemID] = true
			ids = append(ids, item.ItemID)
		}
	}

	fetched, err := s.store.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}

	catalog := make(map[int64]models.Item, len(fetched))
	for _, item := range fetched {
		catalog[item.ID] = item
	}

	for _, id := range ids {
		if _, ok := catalog[id]; !ok {
			return nil, fmt.Errorf("item %d: %w", id, store.ErrNotFound)
		}
	}

	return catalog, nil
}

// GetOrderStatus returns an order's current status
func (s *OrderService) GetOrderStatus(ctx context.Context, orderID int64) (models.OrderStatus, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

// SetOrderStatus moves an order to a new status, enforcing the transition
// table. Setting the current status again is a no-op. Concurrent updates on
// the same order follow last-write-wins.
func (s *OrderService) SetOrderStatus(ctx context.Context, orderID int64, newStatus models.OrderStatus) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SetOrderStatus")
	defer span.End()

	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == newStatus {
		return order, nil
	}

	if !order.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(newStatus.String()).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("old_status", order.Status.String()),
		zap.String("new_status", newStatus.String()))

	if err := s.cache.InvalidateRevenue(ctx, order.ShopID); err != nil {
		s.logger.Warn("Failed to invalidate revenue cache", zap.Int64("shop_id", order.ShopID), zap.Error(err))
	}

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:   orderID,
		ShopID:    order.ShopID,
		OldStatus: order.Status,
		NewStatus: newStatus,
	}
	if err := s.events.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	order.Status = newStatus
	return order, nil
}

// ListStoreOrders returns up to limit orders of a shop, newest first,
// each with its line items and catalog items eagerly joined. statusFilter
// "ALL" returns every status; otherwise it must name a declared status.
func (s *OrderService) ListStoreOrders(ctx context.Context, shopID int64, limit int, statusFilter string) ([]models.Order, error) {
	if statusFilter != models.OrderFilterAll && !models.OrderStatus(statusFilter).Valid() {
		return nil, fmt.Errorf("%w: unknown status filter %q", ErrValidation, statusFilter)
	}

	orders, err := s.store.GetStoreOrders(ctx, shopID, limit, statusFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list store orders: %w", err)
	}
	return orders, nil
}

// ListAllOrdersGrouped reconstructs the flat order-item feed into per-order
// receipts. Receipt totals are recomputed as price x quantity per line,
// a derived view distinct from the persisted header total. All names come
// pre-joined from a single query.
func (s *OrderService) ListAllOrdersGrouped(ctx context.Context) (map[int64]models.OrderReceipt, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListAllOrdersGrouped")
	defer span.End()

	feed, err := s.store.GetOrderItemFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order item feed: %w", err)
	}

	receipts := make(map[int64]models.OrderReceipt, len(feed))
	for _, row := range feed {
		receipt, ok := receipts[row.OrderID]
		if !ok {
			receipt = models.OrderReceipt{
				ShopID:    row.ShopID,
				StoreName: row.StoreName,
				Items:     []models.ReceiptItem{},
			}
		}
		receipt.Items = append(receipt.Items, models.ReceiptItem{
			ItemID:   row.ItemID,
			Quantity: row.Quantity,
			ItemName: row.ItemName,
		})
		receipt.Total += row.ItemPrice * int64(row.Quantity)
		receipts[row.OrderID] = receipt
	}

	return receipts, nil
}
