package models

import "time"

// User represents a registered customer
type User struct {
	ID          int64  `db:"id" json:"id"`
	RollNo      string `db:"roll_no" json:"roll_no"`
	Name        string `db:"name" json:"name"`
	Email       string `db:"email" json:"email"`
	PhoneNumber string `db:"phone_number" json:"phone_number"`
}

// Shop represents a vendor offering items
type Shop struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Address     string  `db:"address" json:"address"`
	Description string  `db:"description" json:"description"`
	Contact     string  `db:"contact" json:"contact"`
	Tags        string  `db:"tags" json:"tags"`
	Image       string  `db:"image" json:"image"`
	AvgRating   float64 `db:"avg_rating" json:"avg_rating"`
}

// Item represents a purchasable product owned by exactly one shop.
// Price is in minor currency units.
type Item struct {
	ID          int64   `db:"id" json:"id"`
	ShopID      int64   `db:"shop_id" json:"shop_id"`
	Name        string  `db:"name" json:"name"`
	Category    string  `db:"category" json:"category"`
	Veg         bool    `db:"veg" json:"veg"`
	Description string  `db:"description" json:"description"`
	Price       int64   `db:"price" json:"price"`
	Available   bool    `db:"available" json:"available"`
	Rating      float64 `db:"rating" json:"rating"`
	NumRatings  int     `db:"num_ratings" json:"num_ratings"`
}

// OrderStatus is the closed set of order states
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderFilterAll disables status filtering when listing a shop's orders
const OrderFilterAll = "ALL"

// OrderTransitions declares every allowed status transition.
// COMPLETED and CANCELLED are terminal.
var OrderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {
		OrderStatusAccepted:  true,
		OrderStatusCancelled: true,
	},
	OrderStatusAccepted: {
		OrderStatusPreparing: true,
		OrderStatusCancelled: true,
	},
	OrderStatusPreparing: {
		OrderStatusCompleted: true,
		OrderStatusCancelled: true,
	},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

func (s OrderStatus) String() string {
	return string(s)
}

// Valid reports whether s is a declared order status
func (s OrderStatus) Valid() bool {
	_, ok := OrderTransitions[s]
	return ok
}

// CanTransitionTo reports whether s -> next is an allowed transition
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return OrderTransitions[s][next]
}

// Order represents a purchase request against one shop.
// Total is server-computed as the sum of line totals.
type Order struct {
	ID        int64       `db:"id" json:"id"`
	UserID    int64       `db:"user_id" json:"user_id"`
	ShopID    int64       `db:"shop_id" json:"shop_id"`
	Total     int64       `db:"total" json:"total"`
	Status    OrderStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	Lines     []OrderLine `db:"-" json:"items,omitempty"`
}

// OrderItem is one line of an order
type OrderItem struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"order_id"`
	ItemID    int64 `db:"item_id" json:"item_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
	LineTotal int64 `db:"line_total" json:"line_total"`
}

// OrderLine is an order item with its catalog item eagerly joined
type OrderLine struct {
	OrderItem
	Item Item `db:"item" json:"item"`
}

// Review is a rating and comment for one item within a shop
type Review struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ShopID    int64     `db:"shop_id" json:"shop_id"`
	ItemID    int64     `db:"item_id" json:"item_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ShopReview is a review joined with reviewer and item identity
type ShopReview struct {
	Review
	ReviewerName string `db:"reviewer_name" json:"reviewer_name"`
	ItemName     string `db:"item_name" json:"item_name"`
}

// CategoryItem is one entry of a per-category item listing
type CategoryItem struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	ItemID    int64  `json:"item_id"`
}

// OrderFeedRow is one row of the flat order-item feed, with the names
// needed for receipt reconstruction joined in a single query.
type OrderFeedRow struct {
	OrderID   int64  `db:"order_id"`
	ItemID    int64  `db:"item_id"`
	Quantity  int    `db:"quantity"`
	ItemName  string `db:"item_name"`
	ItemPrice int64  `db:"item_price"`
	ShopID    int64  `db:"shop_id"`
	StoreName string `db:"store_name"`
}

// ReceiptItem is one line of a reconstructed order receipt
type ReceiptItem struct {
	ItemID   int64  `json:"item_id"`
	Quantity int    `json:"quantity"`
	ItemName string `json:"item_name"`
}

// OrderReceipt is the derived per-order view of the flat order-item feed.
// Total is recomputed from item prices, not read from the order header.
type OrderReceipt struct {
	ShopID    int64         `json:"shop_id"`
	StoreName string        `json:"store_name"`
	Items     []ReceiptItem `json:"items"`
	Total     int64         `json:"total"`
}

// RevenueStats holds trailing-window revenue sums for one shop
type RevenueStats struct {
	Daily   int64 `json:"daily"`
	Weekly  int64 `json:"weekly"`
	Monthly int64 `json:"monthly"`
}

// ShopMaterial is a raw material joined with its per-shop availability
type ShopMaterial struct {
	MaterialID int64  `db:"material_id" json:"material_id"`
	Name       string `db:"name" json:"name"`
	Available  bool   `db:"available" json:"available"`
}

// ProcessedEvent records a consumed event for worker idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
