package service

import (
	"context"
	"fmt"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// CatalogStore is the persistence surface the catalog service needs
type CatalogStore interface {
	GetShops(ctx context.Context) ([]models.Shop, error)
	GetShopByID(ctx context.Context, id int64) (*models.Shop, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAvailableItems(ctx context.Context, shopID int64) ([]models.Item, error)
	GetShopItems(ctx context.Context, shopID int64) ([]models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	SetItemAvailability(ctx context.Context, itemID int64, available bool) (*models.Item, error)
	FlipItemAvailability(ctx context.Context, itemID int64) (*models.Item, error)
	GetShopMaterials(ctx context.Context, shopID int64) ([]models.ShopMaterial, error)
	SetMaterialAvailability(ctx context.Context, shopID, materialID int64, available bool) error
	GetMaterialShops(ctx context.Context, materialName string, excludeShopID int64) ([]models.Shop, error)
}

// CatalogService handles shop/item catalog reads, availability toggling,
// and the thin directory lookups (users, raw materials)
type CatalogService struct {
	store  CatalogStore
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ListShops returns all shops; an empty marketplace is an empty list
func (s *CatalogService) ListShops(ctx context.Context) ([]models.Shop, error) {
	return s.store.GetShops(ctx)
}

// GetUser returns a user by ID
func (s *CatalogService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// ListAvailableItems returns a shop's items with available = true.
// An empty result is a valid response, not an error.
func (s *CatalogService) ListAvailableItems(ctx context.Context, shopID int64) ([]models.Item, error) {
	return s.store.GetAvailableItems(ctx, shopID)
}

// GroupItemsByCategory maps every item of a shop into its category.
// Each item appears exactly once; key order across categories carries no
// guarantee, entries within a category keep the store's scan order.
func (s *CatalogService) GroupItemsByCategory(ctx context.Context, shopID int64) (map[string][]models.CategoryItem, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GroupItemsByCategory")
	defer span.End()

	items, err := s.store.GetShopItems(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shop items: %w", err)
	}

	grouped := make(map[string][]models.CategoryItem)
	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], models.CategoryItem{
			Name:      item.Name,
			Available: item.Available,
			ItemID:    item.ID,
		})
	}

	return grouped, nil
}

// CreateItem adds a new item to a shop's catalog
func (s *CatalogService) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if _, err := s.store.GetShopByID(ctx, item.ShopID); err != nil {
		return nil, err
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("Item created",
		zap.Int64("item_id", item.ID),
		zap.Int64("shop_id", item.ShopID))
	return item, nil
}

// SetItemAvailability applies the toggle affordance: an explicit true sets
// availability to true, while false (the absent sentinel) flips the current
// value. Callers that want "set to true" must pass true.
func (s *CatalogService) SetItemAvailability(ctx context.Context, itemID int64, available bool) (*models.Item, error) {
	var item *models.Item
	var err error

	if available {
		item, err = s.store.SetItemAvailability(ctx, itemID, true)
	} else {
		item, err = s.store.FlipItemAvailability(ctx, itemID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Item availability updated",
		zap.Int64("item_id", itemID),
		zap.Bool("available", item.Available))
	return item, nil
}

// ListShopMaterials returns a shop's raw materials with availability
func (s *CatalogService) ListShopMaterials(ctx context.Context, shopID int64) ([]models.ShopMaterial, error) {
	return s.store.GetShopMaterials(ctx, shopID)
}

// SetMaterialAvailability sets availability on a shop's raw-material link
func (s *CatalogService) SetMaterialAvailability(ctx context.Context, shopID, materialID int64, available bool) error {
	return s.store.SetMaterialAvailability(ctx, shopID, materialID, available)
}

// ListMaterialShops returns the shops stocking a raw material, optionally
// excluding one shop (0 excludes none)
func (s *CatalogService) ListMaterialShops(ctx context.Context, materialName string, excludeShopID int64) ([]models.Shop, error) {
	return s.store.GetMaterialShops(ctx, materialName, excludeShopID)
}
