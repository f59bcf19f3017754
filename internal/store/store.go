package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNotFound marks a missing shop/item/order/user/review row. Callers match
// it with errors.Is; the transport layer maps it to a 404. Empty result sets
// are returned as empty slices, never as ErrNotFound.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetShops retrieves all shops
func (s *Store) GetShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	err := s.db.SelectContext(ctx, &shops, "SELECT * FROM shops ORDER BY id")
	return shops, err
}

// GetShopByID retrieves a shop by ID
func (s *Store) GetShopByID(ctx context.Context, id int64) (*models.Shop, error) {
	var shop models.Shop
	err := s.db.GetContext(ctx, &shop, "SELECT * FROM shops WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shop %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetItemByID retrieves an item by ID
func (s *Store) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	err := s.db.GetContext(ctx, &item, "SELECT * FROM items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemsByIDs retrieves multiple items in one query
func (s *Store) GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM items WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.Item
	err = s.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

// GetAvailableItems retrieves a shop's items with available = true
func (s *Store) GetAvailableItems(ctx context.Context, shopID int64) ([]models.Item, error) {
	var items []models.Item
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM items WHERE shop_id = $1 AND available = true ORDER BY id", shopID)
	return items, err
}

// GetShopItems retrieves all items of a shop
func (s *Store) GetShopItems(ctx context.Context, shopID int64) ([]models.Item, error) {
	var items []models.Item
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM items WHERE shop_id = $1 ORDER BY id", shopID)
	return items, err
}

// CreateItem inserts a new catalog item
func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (shop_id, name, category, veg, description, price, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	return s.db.GetContext(ctx, &item.ID, query,
		item.ShopID, item.Name, item.Category, item.Veg, item.Description, item.Price, item.Available)
}

// SetItemAvailability sets an item's availability to an explicit value
func (s *Store) SetItemAvailability(ctx context.Context, itemID int64, available bool) (*models.Item, error) {
	var item models.Item
	err := s.db.GetContext(ctx, &item,
		"UPDATE items SET available = $1 WHERE id = $2 RETURNING *", available, itemID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FlipItemAvailability inverts an item's current availability atomically
func (s *Store) FlipItemAvailability(ctx context.Context, itemID int64) (*models.Item, error) {
	var item models.Item
	err := s.db.GetContext(ctx, &item,
		"UPDATE items SET available = NOT available WHERE id = $1 RETURNING *", itemID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ItemBelongsToShop reports whether the item exists and is owned by the shop
func (s *Store) ItemBelongsToShop(ctx context.Context, shopID, itemID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM items WHERE id = $1 AND shop_id = $2)", itemID, shopID)
	return exists, err
}

// GetShopMaterials retrieves a shop's raw materials with per-shop
// availability, names joined in one query
func (s *Store) GetShopMaterials(ctx context.Context, shopID int64) ([]models.ShopMaterial, error) {
	var materials []models.ShopMaterial
	err := s.db.SelectContext(ctx, &materials, `
		SELECT sm.material_id, m.name, sm.available
		FROM shop_materials sm
		JOIN raw_materials m ON m.id = sm.material_id
		WHERE sm.shop_id = $1
		ORDER BY sm.material_id`, shopID)
	return materials, err
}

// SetMaterialAvailability updates availability on the shop/material junction row
func (s *Store) SetMaterialAvailability(ctx context.Context, shopID, materialID int64, available bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE shop_materials SET available = $1 WHERE shop_id = $2 AND material_id = $3",
		available, shopID, materialID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("material %d for shop %d: %w", materialID, shopID, ErrNotFound)
	}
	return nil
}

// GetMaterialShops retrieves the shops stocking a raw material by name,
// optionally excluding one shop
func (s *Store) GetMaterialShops(ctx context.Context, materialName string, excludeShopID int64) ([]models.Shop, error) {
	var shops []models.Shop
	err := s.db.SelectContext(ctx, &shops, `
		SELECT s.*
		FROM shops s
		JOIN shop_materials sm ON sm.shop_id = s.id
		JOIN raw_materials m ON m.id = sm.material_id
		WHERE m.name = $1 AND s.id <> $2
		ORDER BY s.id`, materialName, excludeShopID)
	return shops, err
}
