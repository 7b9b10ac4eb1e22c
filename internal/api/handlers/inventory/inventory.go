package inventory

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eat-backend/internal/api/middleware"
	"eat-backend/internal/models"
	"eat-backend/internal/pkg/common"
	"eat-backend/internal/storage"
)

// Handler serves the inventory CRUD endpoints.
type Handler struct {
	repo *storage.InventoryRepository
}

// NewHandler creates the inventory handler.
func NewHandler(repo *storage.InventoryRepository) *Handler {
	return &Handler{repo: repo}
}

// CreateRequest is the body of POST /inventory.
type CreateRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
}

// AdjustRequest is the body of PATCH /inventory/:id/quantity. Delta may be
// negative; the resulting quantity is clamped at zero.
type AdjustRequest struct {
	Delta float64 `json:"delta"`
}

// List returns the caller's items, newest first.
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		common.LogError("failed to list inventory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list inventory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "inventory": items})
}

// Create adds a new item for the caller.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if req.Quantity < 0 || req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity and price must be non-negative"})
		return
	}

	item := &models.InventoryItem{
		UserID:   userID,
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Price:    req.Price,
	}
	if err := h.repo.Create(c.Request.Context(), item); err != nil {
		common.LogError("failed to create inventory item", zap.Error(err), zap.String("name", req.Name))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create inventory item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "item": item})
}

// AdjustQuantity applies a manual +/- adjustment. Reaching zero deletes the
// row, the same depletion policy cooking applies.
func (h *Handler) AdjustQuantity(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id := c.Param("id")
	item, err := h.repo.GetForUser(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "inventory item not found"})
			return
		}
		common.LogError("failed to load inventory item", zap.Error(err), zap.String("item_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inventory item"})
		return
	}

	quantity := item.Quantity + req.Delta
	if quantity < 0 {
		quantity = 0
	}

	if quantity == 0 {
		if err := h.repo.Delete(c.Request.Context(), id, userID); err != nil {
			common.LogError("failed to delete depleted inventory item", zap.Error(err), zap.String("item_id", id))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete inventory item"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "deleted": true})
		return
	}

	if err := h.repo.UpdateQuantity(c.Request.Context(), id, userID, quantity); err != nil {
		common.LogError("failed to update inventory quantity", zap.Error(err), zap.String("item_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update inventory item"})
		return
	}

	item.Quantity = quantity
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

// Delete removes one item explicitly.
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id := c.Param("id")
	if err := h.repo.Delete(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "inventory item not found"})
			return
		}
		common.LogError("failed to delete inventory item", zap.Error(err), zap.String("item_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete inventory item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
