package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/service"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog          *service.CatalogService
	orders           *service.OrderService
	revenue          *service.RevenueService
	reviews          *service.ReviewService
	storeOrdersLimit int
}

// NewHandler creates a new HTTP handler. storeOrdersLimit is the default
// page size for per-shop order listings.
func NewHandler(
	catalog *service.CatalogService,
	orders *service.OrderService,
	revenue *service.RevenueService,
	reviews *service.ReviewService,
	storeOrdersLimit int,
) *Handler {
	return &Handler{
		catalog:          catalog,
		orders:           orders,
		revenue:          revenue,
		reviews:          reviews,
		storeOrdersLimit: storeOrdersLimit,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/shops", h.listShops)
		v1.GET("/shops/:shop_id/available-items", h.listAvailableItems)
		v1.GET("/shops/:shop_id/items", h.groupStoreItems)
		v1.POST("/shops/:shop_id/items", h.createItem)
		v1.POST("/shops/:shop_id/items/:item_id/reviews", h.createReview)
		v1.GET("/shops/:shop_id/items/:item_id/reviews", h.listItemReviews)
		v1.GET("/shops/:shop_id/reviews", h.listShopReviews)
		v1.GET("/shops/:shop_id/orders", h.listStoreOrders)
		v1.GET("/shops/:shop_id/revenue", h.getRevenueStats)
		v1.GET("/shops/:shop_id/materials", h.listShopMaterials)
		v1.PUT("/shops/:shop_id/materials/:material_id", h.setMaterialAvailability)

		v1.POST("/orders", h.createOrder)
		v1.GET("/orders", h.listAllOrdersGrouped)
		v1.GET("/orders/:order_id/status", h.getOrderStatus)
		v1.PUT("/orders/:order_id/status", h.setOrderStatus)

		v1.PATCH("/items/:item_id/availability", h.setItemAvailability)

		v1.GET("/users/:user_id", h.getUser)
		v1.GET("/materials/:name/shops", h.listMaterialShops)
	}
}

// statusForError maps core error kinds to HTTP statuses. Empty aggregates
// never reach this path; a legitimate zero is a 200.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrShopMismatch), errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listShops(c *gin.Context) {
	shops, err := h.catalog.ListShops(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shops)
}

func (h *Handler) getUser(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	user, err := h.catalog.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) listAvailableItems(c *gin.Context) {
	shopID, ok := pathID(c, "shop_id")
	if !ok {
		return
	}

	items, err := h.catalog.ListAvailableItems(c.Request.Context(), shopID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) groupStoreItems(c *gin.Context) {
	shopID, ok := pathID(c, "shop_id")
	if !ok {
		return
	}

	grouped, err := h.catalog.GroupItemsByCategory(c.Request.Context(), shopID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grouped)
}

type createItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Veg         bool   `json:"veg"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=1"`
	Available   bool   `json:"available"`
}

func (h *Handler) createItem(c *gin.Context) {
	shopID, ok := pathID(c, "shop_id")
	if !ok {
		return
	}

	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	item := &models.Item{
		ShopID:      shopID,
		Name:        req.Name,
		Category:    req.Category,
		Veg:         req.Veg,
		Description: req.Description,
		Price:       req.Price,
		Available:   req.Available,
	}

	created, err := h.catalog.CreateItem(c.Request.Context(), item)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

type setAvailabilityRequest struct {
	// Omitted or false flips the current value; true sets it.
	Available bool `json:"available"`
}

func (h *Handler) setItemAvailability(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	// An empty body is a plain toggle request.
	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	item, err := h.catalog.SetItemAvailability(c.Request.Context(), itemID, req.Available)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) listAllOrdersGrouped(c *gin.Context) {
	receipts, err := h.orders.ListAllOrdersGrouped(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipts)
}

func (h *Handler) getOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}

	status, err := h.orders.GetOrderStatus(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": status})
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) setOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	order, err := h.orders.SetOrderStatus(c.Request.Context(), orderID, models.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) listStoreOrders(c *gin.Context) {
	shopID, ok := pathID(c, "shop_id")
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.storeOrdersLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	statusFilter := c.DefaultQuery("status", models.OrderFilterAll)

	orders, err := h.orders.ListStoreOrders(c.Request.Context(), shopID, limit, statusFilter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getRevenueStats(c *gin.Context) {
	shopID, ok := pathID(c, "shop_id")
	if !ok {
		return
	}

	stats, err := h.revenue.GetRevenueStats(c.Request.Context(), shopID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) createReview(c *gin.Context) {
	shopID, ok := pathID(c, "shop_id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req service.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), shopID, itemID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *Handler) listItemReviews(c *gin.Context) {
	shopID, ok := pathID(c, "shop_id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListItemReviews(c.Request.Context(), shopID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) listShopReviews(c *gin.Context) {
	shopID, ok := pathID(c, "shop_id")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListShopReviews(c.Request.Context(), shopID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) listShopMaterials(c *gin.Context) {
	shopID, ok := pathID(c, "shop_id")
	if !ok {
		return
	}

	materials, err := h.catalog.ListShopMaterials(c.Request.Context(), shopID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

type setMaterialAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

func (h *Handler) setMaterialAvailability(c *gin.Context) {
	shopID, ok := pathID(c, "shop_id")
	if !ok {
		return
	}
	materialID, ok := pathID(c, "material_id")
	if !ok {
		return
	}

	var req setMaterialAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalog.SetMaterialAvailability(c.Request.Context(), shopID, materialID, *req.Available); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop_id": shopID, "material_id": materialID, "available": *req.Available})
}

func (h *Handler) listMaterialShops(c *gin.Context) {
	var excludeShopID int64
	if raw := c.Query("exclude"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exclude"})
			return
		}
		excludeShopID = id
	}

	shops, err := h.catalog.ListMaterialShops(c.Request.Context(), c.Param("name"), excludeShopID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shops)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
