package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketplace-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateOrder persists an order header and all of its line items in one
// transaction. Any failure rolls back the whole order; concurrent readers
// never observe a partial order.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	headerQuery := `
		INSERT INTO orders (user_id, shop_id, total, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err = tx.QueryRowxContext(ctx, headerQuery,
		order.UserID, order.ShopID, order.Total, order.Status).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, item_id, quantity, line_total)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.QueryRowxContext(ctx, itemQuery,
			items[i].OrderID, items[i].ItemID, items[i].Quantity, items[i].LineTotal).
			Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item for item %d: %w", items[i].ItemID, err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order header by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus updates an order's status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return nil
}

// GetStoreOrders retrieves up to limit orders of a shop, newest first,
// optionally filtered by exact status. Line items and their catalog items
// are attached via one batched query, not one query per order.
func (s *Store) GetStoreOrders(ctx context.Context, shopID int64, limit int, statusFilter string) ([]models.Order, error) {
	var orders []models.Order
	var err error

	if statusFilter == models.OrderFilterAll {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders WHERE shop_id = $1 ORDER BY created_at DESC LIMIT $2",
			shopID, limit)
	} else {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders WHERE shop_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT $3",
			shopID, statusFilter, limit)
	}
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []models.Order{}, nil
	}

	orderIDs := make([]int64, len(orders))
	index := make(map[int64]*models.Order, len(orders))
	for i := range orders {
		orders[i].Lines = []models.OrderLine{}
		orderIDs[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	lineQuery := `
		SELECT oi.id, oi.order_id, oi.item_id, oi.quantity, oi.line_total,
		       i.id AS "item.id", i.shop_id AS "item.shop_id", i.name AS "item.name",
		       i.category AS "item.category", i.veg AS "item.veg",
		       i.description AS "item.description", i.price AS "item.price",
		       i.available AS "item.available", i.rating AS "item.rating",
		       i.num_ratings AS "item.num_ratings"
		FROM order_items oi
		JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id IN (?)`

	query, args, err := sqlx.In(lineQuery, orderIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var lines []models.OrderLine
	if err := s.db.SelectContext(ctx, &lines, query, args...); err != nil {
		return nil, err
	}

	for _, line := range lines {
		if order, ok := index[line.OrderID]; ok {
			order.Lines = append(order.Lines, line)
		}
	}

	return orders, nil
}

// GetOrderItemFeed retrieves every order item with its parent order's shop,
// the item name and price, and the store name joined in a single query.
func (s *Store) GetOrderItemFeed(ctx context.Context) ([]models.OrderFeedRow, error) {
	var rows []models.OrderFeedRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT oi.order_id, oi.item_id, oi.quantity,
		       i.name AS item_name, i.price AS item_price,
		       o.shop_id, s.name AS store_name
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN items i ON i.id = oi.item_id
		JOIN shops s ON s.id = o.shop_id
		ORDER BY oi.order_id, oi.id`)
	return rows, err
}

// SumOrderTotals sums the persisted order totals of a shop created at or
// after since. No matching orders is a legitimate zero, not an error.
func (s *Store) SumOrderTotals(ctx context.Context, shopID int64, since time.Time) (int64, error) {
	var total int64
	err := s.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(total), 0) FROM orders WHERE shop_id = $1 AND created_at >= $2",
		shopID, since)
	return total, err
}
