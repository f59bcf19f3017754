package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeReviewCreated      = "REVIEW_CREATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is created
type OrderCreatedEvent struct {
	BaseEvent
	OrderID int64           `json:"order_id"`
	UserID  int64           `json:"user_id"`
	ShopID  int64           `json:"shop_id"`
	Total   int64           `json:"total"`
	Items   []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published when an order moves to a new status
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID   int64       `json:"order_id"`
	ShopID    int64       `json:"shop_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
}

// ReviewCreatedEvent published when a review is created
type ReviewCreatedEvent struct {
	BaseEvent
	ReviewID int64 `json:"review_id"`
	UserID   int64 `json:"user_id"`
	ShopID   int64 `json:"shop_id"`
	ItemID   int64 `json:"item_id"`
	Rating   int   `json:"rating"`
}

// OrderItemData represents line item data in events
type OrderItemData struct {
	ItemID    int64 `json:"item_id"`
	Quantity  int   `json:"quantity"`
	LineTotal int64 `json:"line_total"`
}
